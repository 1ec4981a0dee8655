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

//Package context contains context details needed by the master to execute
package context

import (
	"github.com/clusterd/clusterd/agent/appconfig"
	"github.com/clusterd/clusterd/agent/log"
	"github.com/clusterd/clusterd/common/channel"
)

// ICoreContext defines a type that carries context specific data such as the logger.
type ICoreContext interface {
	Log() log.T
	AppConfig() *appconfig.ClusterConfig
	AppVariable() *AppVariable
	With(context string) ICoreContext
}

// CoreContext defines a type that carries context specific data such as the logger.
type CoreContext struct {
	context     []string
	log         log.T
	appConfig   *appconfig.ClusterConfig
	appVariable *AppVariable
}

// AppVariable contains values fixed for the lifetime of one master process.
type AppVariable struct {
	// ClusterID keeps socket names of concurrent masters apart.
	ClusterID string
	// ConfigPath is the launch file the cluster was started from.
	ConfigPath string
}

// With updates the contextSlice that changes the log prefix
func (c *CoreContext) With(logContext string) ICoreContext {
	contextSlice := append(append([]string{}, c.context...), logContext)
	return &CoreContext{
		context:     contextSlice,
		log:         c.log.WithContext(logContext),
		appConfig:   c.appConfig,
		appVariable: c.appVariable,
	}
}

// Log returns the log
func (c *CoreContext) Log() log.T {
	return c.log
}

// AppConfig returns app config
func (c *CoreContext) AppConfig() *appconfig.ClusterConfig {
	return c.appConfig
}

// AppVariable returns app variable
func (c *CoreContext) AppVariable() *AppVariable {
	return c.appVariable
}

// NewCoreContext creates and returns a new master context with a fresh cluster id.
func NewCoreContext(logger log.T, config *appconfig.ClusterConfig, configPath string) ICoreContext {
	return &CoreContext{
		log:       logger,
		appConfig: config,
		appVariable: &AppVariable{
			ClusterID:  channel.NewClusterID(),
			ConfigPath: configPath,
		},
	}
}
