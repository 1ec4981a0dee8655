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

// Package workerconf normalizes raw launch configuration into WorkerConf values.
package workerconf

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/Jeffail/gabs"
	"github.com/google/shlex"
)

const (
	// MinWatchdogRestart floors killTimeout.
	MinWatchdogRestart = 3 * time.Second

	DefaultListenTimeout = 8 * time.Second
	DefaultKillTimeout   = 60 * time.Second
	DefaultMaxRestarts   = 16
	DefaultInstances     = 1

	indexScript = "index"
)

var (
	ErrMissingName   = errors.New("workerconf: name is required")
	ErrMissingScript = errors.New("workerconf: script is required")
)

// interpreters maps recognized script extensions to the program that runs them.
// An empty interpreter executes the script directly.
var interpreters = map[string]string{
	".js":  "node",
	".mjs": "node",
	".cjs": "node",
	".py":  "python3",
	".sh":  "/bin/sh",
	".bin": "",
	".exe": "",
}

// WorkerConf is the normalized launch configuration of one application.
// Values are built once by Normalize and only read afterwards.
type WorkerConf struct {
	Name        string
	Script      string
	Interpreter string
	Cwd         string
	Args        []string
	Env         map[string]string

	Instances              int
	Autorestart            bool
	MaxRestarts            int
	WaitReady              bool
	ListenTimeout          time.Duration
	RestartDelay           time.Duration
	ExpBackoffRestartDelay time.Duration
	KillTimeout            time.Duration

	// MaxMemoryRestart is in megabytes; zero disables the check.
	MaxMemoryRestart float64

	Time        bool
	PidFile     string
	OutFile     string
	ErrorFile   string
	CombineLogs bool

	CronRestart         string
	KillSignal          string
	ShutdownWithMessage bool
}

// New normalizes raw using the machine's cpu count.
func New(raw map[string]interface{}) (WorkerConf, error) {
	return Normalize(raw, runtime.NumCPU())
}

// Normalize builds a WorkerConf from raw untyped configuration.
func Normalize(raw map[string]interface{}, cpuCount int) (conf WorkerConf, err error) {
	c, err := gabs.Consume(raw)
	if err != nil {
		return conf, err
	}

	if conf.Name = getString(c, "name"); conf.Name == "" {
		return conf, ErrMissingName
	}
	script := getString(c, "script")
	if script == "" {
		return conf, ErrMissingScript
	}
	conf.Cwd = getString(c, "cwd")
	conf.Script, conf.Interpreter = resolveScript(script, conf.Cwd)

	if conf.Args, err = getArgs(c, "args"); err != nil {
		return conf, fmt.Errorf("%s: %v", conf.Name, err)
	}
	conf.Env = getEnv(c, "env")

	conf.Instances = DefaultInstances
	if n, ok := getNumber(c, "instances"); ok {
		conf.Instances = clampInstances(int(n), cpuCount)
	}

	conf.Autorestart = getBool(c, "autorestart", true)
	conf.MaxRestarts = int(getNumberOr(c, "max_restarts", DefaultMaxRestarts))
	conf.WaitReady = getBool(c, "wait_ready", false)
	conf.ListenTimeout = getDuration(c, "listen_timeout", DefaultListenTimeout)
	conf.RestartDelay = getDuration(c, "restart_delay", 0)
	conf.ExpBackoffRestartDelay = getDuration(c, "exp_backoff_restart_delay", 0)
	conf.KillTimeout = getDuration(c, "kill_timeout", DefaultKillTimeout)
	if conf.KillTimeout < MinWatchdogRestart {
		conf.KillTimeout = MinWatchdogRestart
	}

	if c.Exists("max_memory_restart") {
		if conf.MaxMemoryRestart, err = parseMemoryValue(c.S("max_memory_restart").Data()); err != nil {
			return conf, fmt.Errorf("%s: %v", conf.Name, err)
		}
	}

	conf.Time = getBool(c, "time", false)
	conf.PidFile = getString(c, "pid_file")
	conf.OutFile = getString(c, "out_file")
	conf.ErrorFile = getString(c, "error_file")
	conf.CombineLogs = getBool(c, "combine_logs", false)

	conf.CronRestart = getString(c, "cron_restart")
	conf.KillSignal = getString(c, "kill_signal")
	conf.ShutdownWithMessage = getBool(c, "shutdown_with_message", false)
	return conf, nil
}

// clampInstances applies the sign rules: negative leaves one cpu free,
// zero uses every cpu, anything else is capped at the cpu count.
func clampInstances(n int, cpuCount int) int {
	switch {
	case n < 0:
		n = cpuCount - 1
	case n == 0 || n > cpuCount:
		n = cpuCount
	}
	if n < 1 {
		n = 1
	}
	return n
}

func resolveScript(script string, cwd string) (string, string) {
	if cwd != "" && !filepath.IsAbs(script) {
		script = filepath.Join(cwd, script)
	}
	if interpreter, ok := interpreters[strings.ToLower(filepath.Ext(script))]; ok {
		return script, interpreter
	}
	return filepath.Join(script, indexScript), ""
}

// ParseMemory converts "512K", "1M", "2G" or a plain byte count into megabytes.
func ParseMemory(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("invalid memory value %q", s)
	}
	var multiplier float64
	switch s[len(s)-1] {
	case 'K', 'k':
		multiplier = 1024
	case 'M', 'm':
		multiplier = 1024 * 1024
	case 'G', 'g':
		multiplier = 1024 * 1024 * 1024
	}
	if multiplier != 0 {
		v, err := strconv.ParseFloat(s[:len(s)-1], 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("invalid memory value %q", s)
		}
		return v * multiplier / (1024 * 1024), nil
	}
	bytes, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid memory value %q", s)
	}
	return float64(bytes) / (1024 * 1024), nil
}

func parseMemoryValue(v interface{}) (float64, error) {
	switch t := v.(type) {
	case string:
		return ParseMemory(t)
	case float64, int:
		n, _ := toFloat(t)
		if n < 0 {
			return 0, fmt.Errorf("invalid memory value %v", t)
		}
		return n / (1024 * 1024), nil
	}
	return 0, fmt.Errorf("invalid memory value %v", v)
}

func getString(c *gabs.Container, key string) string {
	switch v := c.S(key).Data().(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func getBool(c *gabs.Container, key string, defaultValue bool) bool {
	switch v := c.S(key).Data().(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

func getNumber(c *gabs.Container, key string) (float64, bool) {
	return toFloat(c.S(key).Data())
}

func getNumberOr(c *gabs.Container, key string, defaultValue float64) float64 {
	if n, ok := getNumber(c, key); ok && n >= 0 {
		return n
	}
	return defaultValue
}

// getDuration reads a millisecond count.
func getDuration(c *gabs.Container, key string, defaultValue time.Duration) time.Duration {
	if n, ok := getNumber(c, key); ok && n >= 0 {
		return time.Duration(n * float64(time.Millisecond))
	}
	return defaultValue
}

func getArgs(c *gabs.Container, key string) ([]string, error) {
	switch v := c.S(key).Data().(type) {
	case nil:
		return nil, nil
	case string:
		return shlex.Split(v)
	case []interface{}:
		args := make([]string, 0, len(v))
		for _, a := range v {
			args = append(args, fmt.Sprint(a))
		}
		return args, nil
	default:
		return nil, fmt.Errorf("args must be a string or a list")
	}
}

func getEnv(c *gabs.Container, key string) map[string]string {
	children, err := c.S(key).ChildrenMap()
	if err != nil || len(children) == 0 {
		return nil
	}
	env := make(map[string]string, len(children))
	for k, v := range children {
		env[k] = fmt.Sprint(v.Data())
	}
	return env
}
