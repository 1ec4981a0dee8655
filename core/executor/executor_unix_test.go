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

package executor

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/clusterd/clusterd/agent/log"
	"github.com/mitchellh/go-ps"
	"github.com/stretchr/testify/assert"
)

func waitExit(t *testing.T, p *Process) ExitStatus {
	select {
	case status := <-p.Exited:
		return status
	case <-time.After(5 * time.Second):
		assert.Fail(t, "process did not exit")
		return ExitStatus{}
	}
}

func TestStartCapturesOutputAndEnv(t *testing.T) {
	exc := NewProcessExecutor(log.NewMockLog())
	var out bytes.Buffer
	dir := t.TempDir()
	p, err := exc.Start(&StartSpec{
		Path:   "/bin/sh",
		Args:   []string{"-c", `echo "$CLUSTERD_WORKER_ID $(pwd)"`},
		Dir:    dir,
		Env:    []string{"CLUSTERD_WORKER_ID=7"},
		Stdout: &out,
	})
	assert.Nil(t, err)
	assert.True(t, p.Pid > 0)
	status := waitExit(t, p)
	assert.Nil(t, status.Err)
	assert.Equal(t, 0, status.Code)
	assert.Contains(t, out.String(), "7 ")
}

func TestExitCode(t *testing.T) {
	exc := NewProcessExecutor(log.NewMockLog())
	p, err := exc.Start(&StartSpec{Path: "/bin/sh", Args: []string{"-c", "exit 3"}})
	assert.Nil(t, err)
	status := waitExit(t, p)
	assert.Equal(t, 3, status.Code)
	assert.NotNil(t, status.Err)
}

func TestKillProcessGroup(t *testing.T) {
	exc := NewProcessExecutor(log.NewMockLog())
	p, err := exc.Start(&StartSpec{Path: "/bin/sh", Args: []string{"-c", "sleep 30"}})
	assert.Nil(t, err)
	assert.Nil(t, exc.Kill(p.Pid))
	status := waitExit(t, p)
	assert.Equal(t, "SIGKILL", status.Signal)
}

func TestSignalByName(t *testing.T) {
	exc := NewProcessExecutor(log.NewMockLog())
	p, err := exc.Start(&StartSpec{Path: "/bin/sh", Args: []string{"-c", "sleep 30"}})
	assert.Nil(t, err)
	assert.NotNil(t, exc.Signal(p.Pid, "SIGBOGUS"))
	assert.Nil(t, exc.Signal(p.Pid, "SIGTERM"))
	status := waitExit(t, p)
	assert.Equal(t, "SIGTERM", status.Signal)
}

func TestStartMissingBinary(t *testing.T) {
	exc := NewProcessExecutor(log.NewMockLog())
	_, err := exc.Start(&StartSpec{Path: "/nonexistent/worker"})
	assert.NotNil(t, err)
}

type fakeProcess struct{ pid int }

func (f fakeProcess) Pid() int           { return f.pid }
func (f fakeProcess) PPid() int          { return 1 }
func (f fakeProcess) Executable() string { return "worker" }

func TestIsPidRunning(t *testing.T) {
	exc := NewProcessExecutor(log.NewMockLog())

	oldFind := findProcess
	findProcess = func(pid int) (ps.Process, error) {
		if pid == 1 {
			return fakeProcess{pid: 1}, nil
		}
		if pid == 13 {
			return nil, errors.New("permission denied")
		}
		return nil, nil
	}
	defer func() { findProcess = oldFind }()

	running, err := exc.IsPidRunning(1)
	assert.True(t, running)
	assert.Nil(t, err)

	running, err = exc.IsPidRunning(2)
	assert.False(t, running)
	assert.Nil(t, err)

	running, err = exc.IsPidRunning(13)
	assert.False(t, running)
	assert.NotNil(t, err)
}
