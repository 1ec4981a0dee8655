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

// Overrides are clamped to their limits; out of range values fall back to defaults.

package appconfig

import (
	"log"
)

func parser(config *ClusterConfig) {
	log.Printf("processing appconfig overrides")

	config.Cluster.MaintenanceIntervalSeconds = getNumericValue(
		config.Cluster.MaintenanceIntervalSeconds,
		DefaultMaintenanceIntervalSecondsMin,
		DefaultMaintenanceIntervalSecondsMax,
		DefaultMaintenanceIntervalSeconds)
	config.Cluster.PingTimeoutMillis = getNumericValue(
		config.Cluster.PingTimeoutMillis,
		DefaultPingTimeoutMillisMin,
		DefaultPingTimeoutMillisMax,
		DefaultPingTimeoutMillis)
	config.Cluster.ApmTimeoutMillis = getNumericValue(
		config.Cluster.ApmTimeoutMillis,
		DefaultApmTimeoutMillisMin,
		DefaultApmTimeoutMillisMax,
		DefaultApmTimeoutMillis)
	config.Cluster.GlobalKillTimeoutMillis = getNumericValue(
		config.Cluster.GlobalKillTimeoutMillis,
		DefaultGlobalKillTimeoutMillisMin,
		DefaultGlobalKillTimeoutMillisMax,
		DefaultGlobalKillTimeoutMillis)
	config.Cluster.SocketDir = getStringValue(config.Cluster.SocketDir, DefaultSocketDir)
	config.Cluster.LockFile = getStringValue(config.Cluster.LockFile, DefaultLockFile)

	config.Log.Dir = getStringValue(config.Log.Dir, DefaultLogDir)
}

// getStringValue returns the default value if config is empty, else the config value
func getStringValue(configValue string, defaultValue string) string {
	if configValue == "" {
		return defaultValue
	}
	return configValue
}

func getNumericValue(configValue int, minValue int, maxValue int, defaultValue int) int {
	if configValue < minValue || configValue > maxValue {
		return defaultValue
	}
	return configValue
}
