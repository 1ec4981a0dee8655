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

//go:build !windows
// +build !windows

package main

import (
	"os"
	"os/signal"
	"syscall"

	logger "github.com/clusterd/clusterd/agent/log"
	"github.com/clusterd/clusterd/core/app"
)

// supervise relays signals to the master until it reports an exit code.
// SIGHUP reloads the launch file; SIGINT and SIGTERM stop the cluster.
func supervise(log logger.T, master app.ClusterMaster) int {
	// We must use a buffered channel or risk missing the signal
	// if we're not ready to receive when the signal is sent.
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(c)

	for {
		select {
		case s := <-c:
			log.Info("Got signal:", s)
			if s == syscall.SIGHUP {
				go master.Reload()
				continue
			}
			master.Stop()
		case code := <-master.Done():
			return code
		}
	}
}
