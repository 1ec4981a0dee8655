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

package appconfig

import "time"

const (
	// DefaultConfigPath holds optional overrides for the master.
	DefaultConfigPath = "/etc/clusterd/clusterd.json"

	// ConfigPathEnvVar points at an alternative override file.
	ConfigPathEnvVar = "CLUSTERD_CONFIG"

	DefaultLogDir    = "/var/log/clusterd"
	DefaultSocketDir = "/tmp"
	DefaultLockFile  = "/tmp/clusterd.lock"

	DefaultMaintenanceIntervalSeconds    = 5
	DefaultMaintenanceIntervalSecondsMin = 1
	DefaultMaintenanceIntervalSecondsMax = 60

	DefaultPingTimeoutMillis    = 3000
	DefaultPingTimeoutMillisMin = 100
	DefaultPingTimeoutMillisMax = 60000

	DefaultApmTimeoutMillis    = 5000
	DefaultApmTimeoutMillisMin = 100
	DefaultApmTimeoutMillisMax = 60000

	// DefaultGlobalKillTimeoutMillis is both the grace period of a
	// disconnected worker and the shutdown fail-safe.
	DefaultGlobalKillTimeoutMillis    = 10000
	DefaultGlobalKillTimeoutMillisMin = 1000
	DefaultGlobalKillTimeoutMillisMax = 300000

	// ReadWriteAccess is the mode of files the master creates for workers.
	ReadWriteAccess = 0644
	// ReadWriteExecuteAccess is the mode of directories the master creates.
	ReadWriteExecuteAccess = 0755

	// CPUThresholdPercent is the cpu level counted as a health breach.
	CPUThresholdPercent = 99.0
)

// Environment passed to every worker.
const (
	WorkerIDEnvVar   = "CLUSTERD_WORKER_ID"
	IPCAddressEnvVar = "CLUSTERD_IPC_ADDRESS"
	AppNameEnvVar    = "CLUSTERD_APP_NAME"
	LogTimeEnvVar    = "CLUSTERD_LOG_TIME"
	InstanceEnvVar   = "CLUSTERD_INSTANCE"
)

func millis(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}
