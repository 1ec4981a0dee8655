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

package context

import (
	"testing"

	"github.com/clusterd/clusterd/agent/appconfig"
	"github.com/clusterd/clusterd/agent/log"
	"github.com/stretchr/testify/assert"
)

func TestCreateContext(t *testing.T) {
	logger := log.NewMockLog()
	config := appconfig.DefaultConfig()

	context := NewCoreContext(logger, &config, "/srv/apps.json")
	assert.Equal(t, logger, context.Log())
	assert.Equal(t, &config, context.AppConfig())
	assert.Equal(t, "/srv/apps.json", context.AppVariable().ConfigPath)
	assert.NotEmpty(t, context.AppVariable().ClusterID)
}

func TestWithContextKeepsSharedState(t *testing.T) {
	config := appconfig.DefaultConfig()
	context := NewCoreContext(log.NewMockLog(), &config, "apps.json")

	child := context.With("[Cluster]").With("[Worker 1]")
	assert.Equal(t, []string{"[Cluster]", "[Worker 1]"}, child.(*CoreContext).context)
	assert.Equal(t, context.AppVariable(), child.AppVariable())
	assert.Equal(t, context.AppConfig(), child.AppConfig())

	sibling := context.With("[Bridge]")
	assert.Equal(t, []string{"[Bridge]"}, sibling.(*CoreContext).context)
}
