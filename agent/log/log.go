// Copyright 2024 Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"). You may not
// use this file except in compliance with the License. A copy of the
// License is located at
//
// http://aws.amazon.com/apache2.0/
//
// or in the "license" file accompanying this file. This file is distributed
// on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND,
// either express or implied. See the License for the specific language governing
// permissions and limitations under the License.

// Package log is used to initialize the logger. The master process and every
// worker process load it once from main and pass log.T down through contexts.
package log

import (
	"fmt"
	"io/ioutil"
	"os"
	"sync"

	"github.com/cihub/seelog"
)

const (
	LogFile       = "clusterd.log"
	ErrorFile     = "errors.log"
	WorkerLogFile = "clusterd-worker.log"

	// DefaultSeelogConfigFilePath overrides the built-in configuration when present.
	// The underlying logger is based of https://github.com/cihub/seelog
	DefaultSeelogConfigFilePath = "/etc/clusterd/seelog.xml"

	// LogTimeEnvVar is set by the master on workers whose config asks for timestamps.
	LogTimeEnvVar = "CLUSTERD_LOG_TIME"
)

// DefaultLogDir is a var so tests and the CLI can redirect output.
var DefaultLogDir = "/var/log/clusterd"

// pkgMutex is the lock used to serialize calls to the logger.
var pkgMutex = new(sync.Mutex)

var loadedLogger *T
var lock sync.RWMutex

// Logger loads the master logger, it returns the loaded version if any exists.
func Logger() T {
	if !isLoaded() {
		cache(initLogger(LogFile, true))
	}
	return getCached()
}

// WorkerLogger loads the logger used inside worker processes.
// Timestamps are only printed when the master sets CLUSTERD_LOG_TIME.
func WorkerLogger() T {
	if !isLoaded() {
		cache(initLogger(WorkerLogFile, os.Getenv(LogTimeEnvVar) != ""))
	}
	return getCached()
}

func isLoaded() bool {
	lock.RLock()
	defer lock.RUnlock()
	return loadedLogger != nil
}

func cache(logger T) {
	lock.Lock()
	defer lock.Unlock()
	loadedLogger = &logger
}

func getCached() T {
	lock.RLock()
	defer lock.RUnlock()
	return *loadedLogger
}

// initLogger prefers the seelog.xml override and falls back to the built-in config.
func initLogger(logFile string, withTime bool) (logger T) {
	logConfigBytes, err := ioutil.ReadFile(DefaultSeelogConfigFilePath)
	if err != nil {
		logConfigBytes = LoadLog(DefaultLogDir, logFile, withTime)
	}
	return initLoggerFromBytes(logConfigBytes)
}

// WithContext creates a logger that includes the given context with every log message.
func withContext(logger seelog.LoggerInterface, context ...string) (contextLogger T) {
	formatFilter := &ContextFormatFilter{Context: context}
	contextLogger = &Wrapper{Delegate: logger, Format: formatFilter, M: pkgMutex}

	// stack depth 0 would print the function in the seelog logger (e.g. seelog.Debug)
	// stack depth 1 would print the function in the wrapper (e.g. wrapper.Debug)
	// stack depth 2 prints the function calling the logger (wrapper), which is what we want.
	logger.SetAdditionalStackDepth(2)
	return contextLogger
}

// ContextFormatFilter is a filter that can add a context to the parameters of a log message.
type ContextFormatFilter struct {
	Context []string
}

// Filter adds the context at the beginning of the parameter slice.
func (f ContextFormatFilter) Filter(params ...interface{}) (newParams []interface{}) {
	newParams = make([]interface{}, 0, len(f.Context)+len(params))
	for _, param := range f.Context {
		newParams = append(newParams, param+" ")
	}
	return append(newParams, params...)
}

// Filterf adds the context in front of the format string.
func (f ContextFormatFilter) Filterf(format string, params ...interface{}) (newFormat string, newParams []interface{}) {
	for _, param := range f.Context {
		newFormat += param + " "
	}
	return newFormat + format, params
}

func initLoggerFromBytes(seelogConfig []byte) T {
	seelogger, err := seelog.LoggerFromConfigAsBytes(seelogConfig)
	if err != nil {
		fmt.Println("Error parsing logger config, falling back to console:", err)
		seelogger, _ = seelog.LoggerFromWriterWithMinLevelAndFormat(os.Stdout, seelog.InfoLvl, "%Date %Time %LEVEL %Msg%n")
	}
	return withContext(seelogger)
}
