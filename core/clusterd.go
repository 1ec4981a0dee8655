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

// Package main represents the entry point of the cluster master.
package main

import (
	"os"
	"runtime/debug"

	"github.com/clusterd/clusterd/agent/appconfig"
	logger "github.com/clusterd/clusterd/agent/log"
	"github.com/clusterd/clusterd/core/app"
	"github.com/clusterd/clusterd/core/app/context"
	"github.com/clusterd/clusterd/core/cluster"
	"github.com/clusterd/clusterd/core/executor"
)

func start(log logger.T, config appconfig.ClusterConfig, configPath string) (app.ClusterMaster, error) {
	ctx := context.NewCoreContext(log, &config, configPath)
	orchestrator := cluster.NewOrchestrator(ctx, executor.NewProcessExecutor(log))
	master := app.NewMaster(ctx, orchestrator)
	if err := master.Start(); err != nil {
		master.Close()
		return nil, err
	}
	return master, nil
}

// run starts the master and supervises until the cluster is gone. It returns the exit code.
func run(log logger.T, config appconfig.ClusterConfig, configPath string) (exitCode int) {
	defer func() {
		if msg := recover(); msg != nil {
			log.Errorf("clusterd crashed with message %v!", msg)
			log.Errorf("%s: %s", msg, debug.Stack())
			exitCode = 1
		}
	}()

	master, err := start(log, config, configPath)
	if err != nil {
		log.Errorf("error occurred when starting clusterd: %v", err)
		return app.ExitCode(err)
	}
	defer master.Close()
	return supervise(log, master)
}

func main() {
	configPath := parseFlags()

	config, err := appconfig.Config(false)
	if err != nil {
		config = appconfig.DefaultConfig()
	}
	logger.DefaultLogDir = config.Log.Dir

	log := logger.Logger()
	if err != nil {
		log.Warnf("using default settings: %v", err)
	}

	exitCode := run(log, config, configPath)
	log.Flush()
	log.Close()
	os.Exit(exitCode)
}
