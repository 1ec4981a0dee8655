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

// Package appconfig manages the configuration of the clusterd master.
package appconfig

import (
	"fmt"
	"os"
	"sync"

	"github.com/clusterd/clusterd/agent/jsonutil"
)

var loadedConfig *ClusterConfig
var lock sync.RWMutex

// Config loads the master configuration.
// If reload is true, it loads the config afresh,
// otherwise it returns a previous loaded version, if any.
func Config(reload bool) (ClusterConfig, error) {
	if reload || !isLoaded() {
		config := DefaultConfig()
		path, pathErr := getAppConfigPath()
		if pathErr != nil {
			cache(config)
			return config, nil
		}

		fmt.Printf("Applying config override from %s.\n", path)
		if err := jsonutil.UnmarshalFile(path, &config); err != nil {
			fmt.Println("Failed to unmarshal config override. Fall back to default.")
			config = DefaultConfig()
			cache(config)
			return config, err
		}
		parser(&config)
		cache(config)
	}
	return getCached(), nil
}

func isLoaded() bool {
	lock.RLock()
	defer lock.RUnlock()
	return loadedConfig != nil
}

func cache(config ClusterConfig) {
	lock.Lock()
	defer lock.Unlock()
	loadedConfig = &config
}

func getCached() ClusterConfig {
	lock.RLock()
	defer lock.RUnlock()
	return *loadedConfig
}

// getAppConfigPath prefers CLUSTERD_CONFIG over the default location.
func getAppConfigPath() (path string, err error) {
	path = DefaultConfigPath
	if env := os.Getenv(ConfigPathEnvVar); env != "" {
		path = env
	}
	if _, err = os.Stat(path); err != nil {
		return "", err
	}
	return path, nil
}

// DefaultConfig returns default master configuration
func DefaultConfig() ClusterConfig {
	return ClusterConfig{
		Cluster: ClusterCfg{
			MaintenanceIntervalSeconds: DefaultMaintenanceIntervalSeconds,
			PingTimeoutMillis:          DefaultPingTimeoutMillis,
			ApmTimeoutMillis:           DefaultApmTimeoutMillis,
			GlobalKillTimeoutMillis:    DefaultGlobalKillTimeoutMillis,
			SocketDir:                  DefaultSocketDir,
			LockFile:                   DefaultLockFile,
		},
		Log: LogCfg{
			Dir: DefaultLogDir,
		},
	}
}
