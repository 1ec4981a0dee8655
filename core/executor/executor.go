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

// Package executor starts and signals worker processes.
package executor

import (
	"fmt"
	"io"
	"os/exec"

	"github.com/clusterd/clusterd/agent/log"
	"github.com/mitchellh/go-ps"
)

// StartSpec describes one process launch. Env is the full environment of the child.
type StartSpec struct {
	Path   string
	Args   []string
	Dir    string
	Env    []string
	Stdout io.Writer
	Stderr io.Writer
}

// ExitStatus is delivered once the process has been reaped.
type ExitStatus struct {
	Code   int
	Signal string
	Err    error
}

// Process is a started child.
type Process struct {
	Pid    int
	Exited <-chan ExitStatus
}

// IExecutor is the interface type for ProcessExecutor.
type IExecutor interface {
	Start(spec *StartSpec) (*Process, error)
	IsPidRunning(pid int) (bool, error)
	Kill(pid int) error
	Signal(pid int, signal string) error
}

// ProcessExecutor runs real OS processes.
type ProcessExecutor struct {
	log log.T
}

// NewProcessExecutor returns a ProcessExecutor.
func NewProcessExecutor(log log.T) *ProcessExecutor {
	return &ProcessExecutor{
		log: log,
	}
}

// Start launches the process in its own process group and reaps it in the background.
func (exc *ProcessExecutor) Start(spec *StartSpec) (*Process, error) {
	exc.log.Debugf("Starting process %s %v", spec.Path, spec.Args)
	command := exec.Command(spec.Path, spec.Args...)
	command.Dir = spec.Dir
	command.Env = spec.Env
	command.Stdout = spec.Stdout
	command.Stderr = spec.Stderr
	prepareProcess(command)

	if err := command.Start(); err != nil {
		return nil, err
	}

	exited := make(chan ExitStatus, 1)
	go func() {
		exited <- exitStatus(command.Wait())
		close(exited)
	}()

	return &Process{
		Pid:    command.Process.Pid,
		Exited: exited,
	}, nil
}

// IsPidRunning returns true if process with pid is running
func (exc *ProcessExecutor) IsPidRunning(pid int) (bool, error) {
	process, err := findProcess(pid)
	if err != nil {
		return false, err
	}
	return process != nil, nil
}

// Kill sends SIGKILL to the process group led by pid.
func (exc *ProcessExecutor) Kill(pid int) error {
	exc.log.Debugf("Killing process group %v", pid)
	if err := killProcess(pid); err != nil {
		return fmt.Errorf("failed to kill process %v, %s", pid, err)
	}
	return nil
}

// Signal sends the named signal (e.g. SIGINT) to pid.
func (exc *ProcessExecutor) Signal(pid int, signal string) error {
	exc.log.Debugf("Sending %s to process %v", signal, pid)
	return signalProcess(pid, signal)
}

var findProcess = ps.FindProcess
