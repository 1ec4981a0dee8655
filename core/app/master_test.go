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

package app

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/clusterd/clusterd/agent/appconfig"
	"github.com/clusterd/clusterd/agent/log"
	"github.com/clusterd/clusterd/core/app/context"
	"github.com/clusterd/clusterd/core/cluster/mocks"
	"github.com/clusterd/clusterd/core/workerconf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const launchFile = `{"apps": [{"name": "api", "script": "server.js", "instances": 2}]}`

// MasterTestSuite drives Master against a mocked orchestrator.
type MasterTestSuite struct {
	suite.Suite
	dir          string
	configPath   string
	config       appconfig.ClusterConfig
	orchestrator *mocks.IOrchestrator
}

func TestMasterTestSuite(t *testing.T) {
	suite.Run(t, new(MasterTestSuite))
}

func (suite *MasterTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()
	suite.configPath = filepath.Join(suite.dir, "cluster.json")
	suite.config = appconfig.DefaultConfig()
	suite.config.Cluster.LockFile = filepath.Join(suite.dir, "clusterd.lock")
	suite.orchestrator = &mocks.IOrchestrator{}
}

func (suite *MasterTestSuite) master() *Master {
	ctx := context.NewCoreContext(log.NewMockLog(), &suite.config, suite.configPath)
	return NewMaster(ctx, suite.orchestrator)
}

func (suite *MasterTestSuite) writeConfig(content string) {
	assert.Nil(suite.T(), ioutil.WriteFile(suite.configPath, []byte(content), 0644))
}

func (suite *MasterTestSuite) TestStartForksConfiguredApps() {
	suite.writeConfig(launchFile)
	suite.orchestrator.On("Start", mock.MatchedBy(func(confs []workerconf.WorkerConf) bool {
		return len(confs) == 1 && confs[0].Name == "api" && confs[0].Instances == 2
	})).Return(nil)

	master := suite.master()
	defer master.Close()

	assert.Nil(suite.T(), master.Start())
	suite.orchestrator.AssertExpectations(suite.T())
	_, err := os.Stat(suite.config.Cluster.LockFile)
	assert.Nil(suite.T(), err)
}

func (suite *MasterTestSuite) TestMissingConfigIsENOENT() {
	err := suite.master().Start()

	assert.NotNil(suite.T(), err)
	assert.Equal(suite.T(), 2, ExitCode(err))
	suite.orchestrator.AssertNotCalled(suite.T(), "Start", mock.Anything)
	_, err = os.Stat(suite.config.Cluster.LockFile)
	assert.True(suite.T(), os.IsNotExist(err))
}

func (suite *MasterTestSuite) TestMalformedConfigIsEINVAL() {
	for _, content := range []string{`{"apps": [`, `{"apps": []}`, `[{"script": "a.js"}]`} {
		suite.writeConfig(content)
		err := suite.master().Start()
		assert.Equal(suite.T(), 22, ExitCode(err), content)
	}
}

func (suite *MasterTestSuite) TestSecondMasterIsEBUSY() {
	suite.writeConfig(launchFile)
	// the parent of the test binary is alive for as long as the test runs
	owner := fmt.Sprintf("%d\n", os.Getppid())
	assert.Nil(suite.T(), ioutil.WriteFile(suite.config.Cluster.LockFile, []byte(owner), 0644))

	err := suite.master().Start()

	assert.Equal(suite.T(), 16, ExitCode(err))
	suite.orchestrator.AssertNotCalled(suite.T(), "Start", mock.Anything)
}

func (suite *MasterTestSuite) TestReloadKeepsClusterOnBadFile() {
	suite.writeConfig(`not json`)

	err := suite.master().Reload()

	assert.Equal(suite.T(), 22, ExitCode(err))
	suite.orchestrator.AssertNotCalled(suite.T(), "Reload", mock.Anything)
}

func (suite *MasterTestSuite) TestWatcherReloadsOnChange() {
	suite.config.Cluster.WatchConfig = true
	suite.writeConfig(launchFile)
	reloaded := make(chan []workerconf.WorkerConf, 1)
	suite.orchestrator.On("Start", mock.Anything).Return(nil)
	suite.orchestrator.On("Reload", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		select {
		case reloaded <- args.Get(0).([]workerconf.WorkerConf):
		default:
		}
	})

	master := suite.master()
	defer master.Close()
	assert.Nil(suite.T(), master.Start())

	suite.writeConfig(`[{"name": "worker", "script": "worker.py"}]`)

	select {
	case confs := <-reloaded:
		assert.Equal(suite.T(), "worker", confs[0].Name)
		assert.Equal(suite.T(), "python3", confs[0].Interpreter)
	case <-time.After(5 * time.Second):
		suite.T().Fatal("launch file change did not reload the cluster")
	}
}

func (suite *MasterTestSuite) TestExitCode() {
	assert.Equal(suite.T(), 0, ExitCode(nil))
	assert.Equal(suite.T(), 16, ExitCode(ErrLocked))
	assert.Equal(suite.T(), 1, ExitCode(fmt.Errorf("boom")))
}
