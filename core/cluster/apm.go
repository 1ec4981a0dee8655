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
	"sync"

	"github.com/clusterd/clusterd/common/apm"
	"github.com/clusterd/clusterd/common/bridge"
	"github.com/clusterd/clusterd/common/message"
	"github.com/clusterd/clusterd/core/cluster/model"
	"golang.org/x/sync/errgroup"
)

// aggregateApm asks every pinging worker for its metrics and replies with the sum.
func (o *Orchestrator) aggregateApm(reply bridge.ReplyFunc) {
	o.Lock()
	var targets []message.Address
	for id, info := range o.infos {
		if info.State == model.Pinging {
			targets = append(targets, id)
		}
	}
	o.Unlock()

	timeout := o.context.AppConfig().ApmTimeout()
	aggregate := apm.NewAggregate()
	var mu sync.Mutex
	var group errgroup.Group
	for _, id := range targets {
		id := id
		group.Go(func() error {
			rep, err := o.bridge.Send(message.NewData(message.Apm), id, timeout)
			mu.Lock()
			defer mu.Unlock()
			if err != nil || rep.Data.Error() != "" {
				o.log.Debugf("apm from worker %v failed: %v", id, err)
				aggregate.AddError()
				return nil
			}
			aggregate.Merge(rep.Data)
			return nil
		})
	}
	group.Wait()

	data := message.NewData(message.Apm)
	for k, v := range aggregate.Result() {
		data[k] = v
	}
	data["errors"] = aggregate.Errors()
	data["workers"] = len(targets)
	reply(data)
}
