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

// Package worker is the library side of clusterd used inside worker processes.
package worker

import (
	"fmt"
	"os"
	"sync"

	"github.com/cenkalti/backoff/v4"
	"github.com/clusterd/clusterd/agent/appconfig"
	"github.com/clusterd/clusterd/agent/backoffconfig"
	"github.com/clusterd/clusterd/agent/log"
	"github.com/clusterd/clusterd/common/bridge"
	"github.com/clusterd/clusterd/common/channel"
	"github.com/clusterd/clusterd/common/message"
)

var (
	// exit is replaced in tests
	exit = os.Exit

	hooksLock     sync.Mutex
	shutdownHooks []func()

	connLock sync.Mutex
	current  *bridge.Bridge
)

// ID returns the address the master gave this process, or master when it
// was not forked by clusterd.
func ID() message.Address {
	return idFromEnv(os.Getenv)
}

// IsWorker reports whether this process runs under a clusterd master.
func IsWorker() bool {
	return ID().IsWorker()
}

func idFromEnv(getenv func(string) string) message.Address {
	raw := getenv(appconfig.WorkerIDEnvVar)
	if raw == "" {
		return message.Master
	}
	id, err := message.ParseAddress(raw)
	if err != nil || !id.IsWorker() {
		return message.Master
	}
	return id
}

// Connect returns the process bridge. Under a master it dials the worker's
// channel and announces itself; otherwise it runs on an in-process LocalMaster.
func Connect() (*bridge.Bridge, error) {
	connLock.Lock()
	defer connLock.Unlock()
	if current != nil {
		return current, nil
	}
	b, err := connect(log.WorkerLogger(), os.Getenv)
	if err != nil {
		return nil, err
	}
	current = b
	return b, nil
}

func connect(logger log.T, getenv func(string) string) (*bridge.Bridge, error) {
	id := idFromEnv(getenv)
	address := getenv(appconfig.IPCAddressEnvVar)
	if !id.IsWorker() || address == "" {
		logger.Debug("no master found, running on a local master")
		b := bridge.NewBridge(logger, message.Master, channel.NewLocalMaster(logger))
		b.PrependCallback(handleShutdown)
		return b, nil
	}

	logger = logger.WithContext(fmt.Sprintf("[Worker %v]", id))
	ch := channel.NewChannel()
	if err := ch.Initialize(); err != nil {
		return nil, err
	}
	policy, err := backoffconfig.GetDefaultDialBackoff()
	if err != nil {
		ch.Close()
		return nil, err
	}
	if err = backoff.Retry(func() error { return ch.Dial(address) }, policy); err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to dial master at %s: %v", address, err)
	}

	port := channel.NewIPCPort(logger, ch)
	b := bridge.NewBridge(logger, id, port)
	b.PrependCallback(handleShutdown)
	port.Start()

	online := message.NewData(message.Online)
	online["version"] = message.ProtocolVersion
	online["pid"] = os.Getpid()
	if err = b.Post(online, message.Master); err != nil {
		port.Close()
		return nil, err
	}
	logger.Infof("connected to master at %s", address)
	return b, nil
}

// Listening tells the master the application is ready for work.
func Listening(b *bridge.Bridge) error {
	return b.Post(message.NewData(message.Listening), message.Master)
}

// OnShutdown registers fn to run before the process exits on a shutdown message.
func OnShutdown(fn func()) {
	hooksLock.Lock()
	defer hooksLock.Unlock()
	shutdownHooks = append(shutdownHooks, fn)
}

func handleShutdown(b *bridge.Bridge, pkt *message.Packet, reply bridge.ReplyFunc) bool {
	if pkt.Data.Kind() != message.Shutdown || pkt.Source != message.Master {
		return false
	}
	reply(message.NewData(message.Shutdown))

	hooksLock.Lock()
	hooks := append([]func(){}, shutdownHooks...)
	hooksLock.Unlock()
	for _, hook := range hooks {
		hook()
	}
	exit(0)
	return true
}
