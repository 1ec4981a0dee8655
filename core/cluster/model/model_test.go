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

package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSetStateRefreshesUpdate(t *testing.T) {
	start := time.Unix(1000, 0)
	w := NewWorkerInfo(2, 1, start)
	assert.Equal(t, Init, w.State)
	assert.Equal(t, 1, w.Restarts)

	later := start.Add(5 * time.Second)
	w.SetState(Online, later)
	assert.Equal(t, Online, w.State)
	assert.Equal(t, time.Duration(0), w.Elapsed(later))
	assert.Equal(t, 2*time.Second, w.Elapsed(later.Add(2*time.Second)))
}

func TestTwoStrikeRule(t *testing.T) {
	w := NewWorkerInfo(0, 0, time.Now())
	assert.False(t, w.Sample(100, 10, 99, 0), "single cpu breach")
	assert.True(t, w.Sample(99, 10, 99, 0), "second consecutive cpu breach")

	w = NewWorkerInfo(0, 0, time.Now())
	assert.False(t, w.Sample(100, 10, 99, 0))
	assert.False(t, w.Sample(20, 10, 99, 0), "recovered sample")
	assert.False(t, w.Sample(100, 10, 99, 0))
}

func TestMemoryBreach(t *testing.T) {
	w := NewWorkerInfo(0, 0, time.Now())
	assert.False(t, w.Sample(1, 600, 99, 512))
	assert.True(t, w.Sample(1, 700, 99, 512))

	w = NewWorkerInfo(0, 0, time.Now())
	assert.False(t, w.Sample(1, 600, 99, 0))
	assert.False(t, w.Sample(1, 700, 99, 0), "memory limit disabled")
}
