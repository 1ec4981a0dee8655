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

// Package sysinfo samples the cpu and memory figures reported in pong replies.
package sysinfo

import (
	"math"
	"runtime"
)

const mb = 1024 * 1024

// Memory usage in megabytes.
type Memory struct {
	RSS       float64 `json:"rss"`
	HeapTotal float64 `json:"heapTotal"`
	HeapUsed  float64 `json:"heapUsed"`
	External  float64 `json:"external"`
}

// CPUPercent derives a usage percentage from the one minute load average
// divided over the available cpus.
func CPUPercent() float64 {
	load, err := loadAverage1()
	if err != nil {
		return 0
	}
	return round(load / float64(runtime.NumCPU()) * 100)
}

// MemoryUsage samples resident size plus the Go heap.
func MemoryUsage() Memory {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	rss, err := residentBytes()
	if err != nil {
		rss = ms.Sys
	}
	return Memory{
		RSS:       round(float64(rss) / mb),
		HeapTotal: round(float64(ms.HeapSys) / mb),
		HeapUsed:  round(float64(ms.HeapAlloc) / mb),
		External:  round(float64(ms.Sys-ms.HeapSys) / mb),
	}
}

func round(v float64) float64 {
	return math.Round(v*100) / 100
}
