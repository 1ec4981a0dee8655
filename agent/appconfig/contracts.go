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

// ClusterCfg tunes the orchestrator.
type ClusterCfg struct {
	MaintenanceIntervalSeconds int
	PingTimeoutMillis          int
	ApmTimeoutMillis           int
	GlobalKillTimeoutMillis    int
	SocketDir                  string
	LockFile                   string
	// NoKill keeps unhealthy workers alive, for debugging.
	NoKill bool
	// WatchConfig reloads the cluster when the launch file changes.
	WatchConfig bool
}

// LogCfg locates log output.
type LogCfg struct {
	Dir string
}

// ClusterConfig is the runtime configuration of the master process.
type ClusterConfig struct {
	Cluster ClusterCfg
	Log     LogCfg
}

// MaintenanceInterval returns the health pass period.
func (c ClusterConfig) MaintenanceInterval() time.Duration {
	return time.Duration(c.Cluster.MaintenanceIntervalSeconds) * time.Second
}

// PingTimeout returns how long a health ping may take.
func (c ClusterConfig) PingTimeout() time.Duration {
	return millis(c.Cluster.PingTimeoutMillis)
}

// ApmTimeout returns how long the apm fan-out waits per worker.
func (c ClusterConfig) ApmTimeout() time.Duration {
	return millis(c.Cluster.ApmTimeoutMillis)
}

// GlobalKillTimeout returns the disconnected grace period and shutdown fail-safe.
func (c ClusterConfig) GlobalKillTimeout() time.Duration {
	return millis(c.Cluster.GlobalKillTimeoutMillis)
}
