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

package cluster

import (
	"github.com/gorhill/cronexpr"
)

// scheduleCron restarts app idx every time expr fires until stop is closed.
func (o *Orchestrator) scheduleCron(idx int, expr string, stop chan struct{}) error {
	schedule, err := cronexpr.Parse(expr)
	if err != nil {
		return err
	}
	go func() {
		for {
			next := schedule.Next(o.clock.Now())
			if next.IsZero() {
				return
			}
			select {
			case <-stop:
				return
			case <-o.clock.After(next.Sub(o.clock.Now())):
				o.cronRestart(idx)
			}
		}
	}()
	return nil
}
