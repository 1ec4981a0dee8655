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

// Package model contains the runtime records the orchestrator keeps per worker.
package model

import (
	"time"
)

// State is the lifecycle state of a worker instance.
type State string

const (
	Init         State = "init"
	Online       State = "online"
	Listening    State = "listening"
	Pinging      State = "pinging"
	Disconnected State = "disconnected"
)

// WorkerInfo is the mutable runtime record of one worker process.
// It lives in the orchestrator's side table keyed by worker address.
type WorkerInfo struct {
	Idx        int       `json:"idx"`
	Pid        int       `json:"pid"`
	Restarts   int       `json:"restarts"`
	LastUpdate time.Time `json:"lastUpdate"`
	LastCPU    float64   `json:"lastCpu"`
	LastMem    float64   `json:"lastMem"`
	State      State     `json:"state"`
}

// NewWorkerInfo creates the record of a freshly forked worker.
func NewWorkerInfo(idx int, restarts int, now time.Time) *WorkerInfo {
	return &WorkerInfo{
		Idx:        idx,
		Restarts:   restarts,
		LastUpdate: now,
		State:      Init,
	}
}

// SetState moves the worker to state and refreshes LastUpdate.
func (w *WorkerInfo) SetState(state State, now time.Time) {
	w.State = state
	w.LastUpdate = now
}

// Touch refreshes LastUpdate.
func (w *WorkerInfo) Touch(now time.Time) {
	w.LastUpdate = now
}

// Elapsed returns the time since the last update.
func (w *WorkerInfo) Elapsed(now time.Time) time.Duration {
	return now.Sub(w.LastUpdate)
}

// Sample records a health sample and reports whether both it and the
// previous sample breach the limits. maxMem of zero disables the memory check.
func (w *WorkerInfo) Sample(cpu float64, mem float64, cpuLimit float64, maxMem float64) (overLimit bool) {
	breach := func(c, m float64) bool {
		return c >= cpuLimit || (maxMem > 0 && m > maxMem)
	}
	overLimit = breach(cpu, mem) && breach(w.LastCPU, w.LastMem)
	w.LastCPU = cpu
	w.LastMem = mem
	return overLimit
}
