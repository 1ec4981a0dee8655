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
	"github.com/Jeffail/gabs"
)

// Aggregate accumulates worker snapshots by summing numeric leaves that share a key path.
type Aggregate struct {
	root   *gabs.Container
	errors int
}

// NewAggregate returns an empty aggregate with the three metric sections present.
func NewAggregate() *Aggregate {
	root := gabs.New()
	root.Set(map[string]interface{}{}, Counters)
	root.Set(map[string]interface{}{}, Meters)
	root.Set(map[string]interface{}{}, Histograms)
	return &Aggregate{root: root}
}

// Merge folds one snapshot into the aggregate. Non numeric leaves overwrite.
func (a *Aggregate) Merge(snapshot map[string]interface{}) {
	for _, section := range []string{Counters, Meters, Histograms} {
		if values, ok := snapshot[section].(map[string]interface{}); ok {
			a.merge(values, []string{section})
		}
	}
}

func (a *Aggregate) merge(values map[string]interface{}, path []string) {
	for key, value := range values {
		p := append(append([]string{}, path...), key)
		switch v := value.(type) {
		case map[string]interface{}:
			a.merge(v, p)
		case float64:
			if existing, ok := a.root.Search(p...).Data().(float64); ok {
				v += existing
			}
			a.root.Set(v, p...)
		default:
			a.root.Set(v, p...)
		}
	}
}

// AddError counts a worker that failed to answer.
func (a *Aggregate) AddError() {
	a.errors++
}

// Errors returns the number of failed workers.
func (a *Aggregate) Errors() int {
	return a.errors
}

// Result returns the merged snapshot.
func (a *Aggregate) Result() map[string]interface{} {
	data, _ := a.root.Data().(map[string]interface{})
	return data
}
