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

package apm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapshot(t *testing.T) {
	r := NewRegistry()
	r.Counter("http.requests").Add(3)
	r.Counter("http.requests").Inc()
	r.Meter("queue depth").Set(7)
	r.Histogram("latency").Observe(0.25)
	r.Histogram("latency").Observe(0.75)

	snap, err := r.Snapshot()
	assert.Nil(t, err)
	assert.Equal(t, 4.0, snap[Counters].(map[string]interface{})["http.requests"])
	assert.Equal(t, 7.0, snap[Meters].(map[string]interface{})["queue depth"])
	h := snap[Histograms].(map[string]interface{})["latency"].(map[string]interface{})
	assert.Equal(t, 2.0, h["count"])
	assert.Equal(t, 1.0, h["sum"])
}

func TestEmptySnapshot(t *testing.T) {
	snap, err := NewRegistry().Snapshot()
	assert.Nil(t, err)
	assert.Empty(t, snap[Counters])
	assert.Empty(t, snap[Meters])
	assert.Empty(t, snap[Histograms])
}

func TestMetricName(t *testing.T) {
	assert.Equal(t, "counters_a_b_c", metricName("counters_a.b-c"))
	assert.Equal(t, "_9lives", metricName("9lives"))
}

func TestAggregateMerge(t *testing.T) {
	agg := NewAggregate()
	agg.Merge(map[string]interface{}{
		Counters:   map[string]interface{}{"hits": 2.0},
		Histograms: map[string]interface{}{"latency": map[string]interface{}{"count": 1.0, "sum": 0.5}},
	})
	agg.Merge(map[string]interface{}{
		Counters:   map[string]interface{}{"hits": 3.0, "misses": 1.0},
		Meters:     map[string]interface{}{"version": "1.2"},
		Histograms: map[string]interface{}{"latency": map[string]interface{}{"count": 2.0, "sum": 1.5}},
	})
	agg.AddError()

	result := agg.Result()
	assert.Equal(t, 5.0, result[Counters].(map[string]interface{})["hits"])
	assert.Equal(t, 1.0, result[Counters].(map[string]interface{})["misses"])
	assert.Equal(t, "1.2", result[Meters].(map[string]interface{})["version"])
	latency := result[Histograms].(map[string]interface{})["latency"].(map[string]interface{})
	assert.Equal(t, 3.0, latency["count"])
	assert.Equal(t, 2.0, latency["sum"])
	assert.Equal(t, 1, agg.Errors())
}
