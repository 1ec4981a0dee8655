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

// Package apm keeps the process local counters, meters and histograms
// returned by the apm message, and merges snapshots across the pool.
package apm

import (
	"regexp"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

const (
	Counters   = "counters"
	Meters     = "meters"
	Histograms = "histograms"
)

var invalidMetricChars = regexp.MustCompile(`[^a-zA-Z0-9_:]`)

// Registry holds named metrics on a private prometheus registry.
type Registry struct {
	reg     *prometheus.Registry
	factory promauto.Factory

	mu         sync.Mutex
	names      map[string]string
	counters   map[string]prometheus.Counter
	meters     map[string]prometheus.Gauge
	histograms map[string]prometheus.Histogram
}

// DefaultRegistry is the registry served by the apm handler.
var DefaultRegistry = NewRegistry()

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	return &Registry{
		reg:        reg,
		factory:    promauto.With(reg),
		names:      make(map[string]string),
		counters:   make(map[string]prometheus.Counter),
		meters:     make(map[string]prometheus.Gauge),
		histograms: make(map[string]prometheus.Histogram),
	}
}

func metricName(name string) string {
	n := invalidMetricChars.ReplaceAllString(name, "_")
	if n == "" || (n[0] >= '0' && n[0] <= '9') {
		n = "_" + n
	}
	return n
}

// Counter returns the named counter, creating it on first use.
func (r *Registry) Counter(name string) prometheus.Counter {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.counters[name]; ok {
		return c
	}
	id := metricName(Counters + "_" + name)
	r.names[id] = name
	c := r.factory.NewCounter(prometheus.CounterOpts{Name: id, Help: "counter " + name})
	r.counters[name] = c
	return c
}

// Meter returns the named gauge, creating it on first use.
func (r *Registry) Meter(name string) prometheus.Gauge {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.meters[name]; ok {
		return g
	}
	id := metricName(Meters + "_" + name)
	r.names[id] = name
	g := r.factory.NewGauge(prometheus.GaugeOpts{Name: id, Help: "meter " + name})
	r.meters[name] = g
	return g
}

// Histogram returns the named histogram, creating it on first use.
func (r *Registry) Histogram(name string) prometheus.Histogram {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.histograms[name]; ok {
		return h
	}
	id := metricName(Histograms + "_" + name)
	r.names[id] = name
	h := r.factory.NewHistogram(prometheus.HistogramOpts{Name: id, Help: "histogram " + name})
	r.histograms[name] = h
	return h
}

// Snapshot returns {counters:{..}, meters:{..}, histograms:{name:{count,sum}}}.
func (r *Registry) Snapshot() (map[string]interface{}, error) {
	families, err := r.reg.Gather()
	if err != nil {
		return nil, err
	}
	counters := map[string]interface{}{}
	meters := map[string]interface{}{}
	histograms := map[string]interface{}{}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, family := range families {
		name, ok := r.names[family.GetName()]
		if !ok || len(family.GetMetric()) == 0 {
			continue
		}
		metric := family.GetMetric()[0]
		switch family.GetType() {
		case dto.MetricType_COUNTER:
			counters[name] = metric.GetCounter().GetValue()
		case dto.MetricType_GAUGE:
			meters[name] = metric.GetGauge().GetValue()
		case dto.MetricType_HISTOGRAM:
			h := metric.GetHistogram()
			histograms[name] = map[string]interface{}{
				"count": float64(h.GetSampleCount()),
				"sum":   h.GetSampleSum(),
			}
		}
	}
	return map[string]interface{}{
		Counters:   counters,
		Meters:     meters,
		Histograms: histograms,
	}, nil
}
