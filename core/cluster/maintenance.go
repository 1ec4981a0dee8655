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
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/clusterd/clusterd/agent/appconfig"
	"github.com/clusterd/clusterd/agent/jsonutil"
	"github.com/clusterd/clusterd/agent/times"
	"github.com/clusterd/clusterd/common/bridge"
	"github.com/clusterd/clusterd/common/message"
	"github.com/clusterd/clusterd/core/cluster/model"
	"github.com/clusterd/clusterd/core/workerconf"
	"golang.org/x/sync/errgroup"
)

type healthTarget struct {
	id    message.Address
	pid   int
	conf  *workerconf.WorkerConf
	state model.State
	last  time.Time
	age   time.Duration
}

// pongSample is the part of a pong the health check reads.
type pongSample struct {
	CPU    float64 `json:"cpu"`
	Memory struct {
		RSS float64 `json:"rss"`
	} `json:"memory"`
}

// maintain is one health pass. Overlapping passes are skipped.
func (o *Orchestrator) maintain() {
	if !atomic.CompareAndSwapInt32(&o.maintaining, 0, 1) {
		return
	}
	defer atomic.StoreInt32(&o.maintaining, 0)
	defer func() {
		if r := recover(); r != nil {
			o.log.Errorf("maintenance panic: %v", r)
			o.log.Errorf("Stacktrace:\n%s", debug.Stack())
		}
	}()

	config := o.context.AppConfig()
	now := o.clock.Now()

	o.Lock()
	if o.shuttingDown || o.reloading {
		o.Unlock()
		return
	}
	targets := make([]healthTarget, 0, len(o.workers))
	for id, w := range o.workers {
		if w.stopping {
			continue
		}
		info := o.infos[id]
		targets = append(targets, healthTarget{
			id:    id,
			pid:   info.Pid,
			conf:  w.conf,
			state: info.State,
			last:  info.LastUpdate,
			age:   info.Elapsed(now),
		})
	}
	o.Unlock()

	var mu sync.Mutex
	var kill []message.Address
	markKill := func(target healthTarget, reason string) {
		mu.Lock()
		defer mu.Unlock()
		o.log.Warnf("worker %v marked for kill: %s (last seen %s)", target.id, reason, times.ToIso8601UTC(target.last))
		kill = append(kill, target.id)
	}

	var group errgroup.Group
	for _, target := range targets {
		target := target
		if running, err := o.exec.IsPidRunning(target.pid); err == nil && !running {
			markKill(target, "process is gone")
			continue
		}

		switch target.state {
		case model.Init, model.Online:
			if target.conf.WaitReady && target.age > target.conf.ListenTimeout {
				markKill(target, "not listening after listen_timeout")
			}
		case model.Listening, model.Pinging:
			if target.state == model.Pinging && target.age > target.conf.KillTimeout {
				markKill(target, "no message within kill_timeout")
				continue
			}
			group.Go(func() error {
				if o.ping(target, config.PingTimeout()) {
					markKill(target, "cpu or memory over limit twice in a row")
				}
				return nil
			})
		default:
			if target.age > config.GlobalKillTimeout() {
				markKill(target, "disconnected for too long")
			}
		}
	}
	group.Wait()

	if len(kill) == 0 {
		return
	}
	if config.Cluster.NoKill {
		o.log.Warnf("not killing %v, kills are disabled", kill)
		return
	}
	for _, id := range kill {
		o.kill(id)
	}
}

// ping samples one worker and reports whether it breached its limits twice in a row.
// A worker that does not answer is left alone.
func (o *Orchestrator) ping(target healthTarget, timeout time.Duration) bool {
	rep, err := o.bridge.Send(message.NewData(message.Ping), target.id, timeout)
	if err != nil {
		if bridge.IsTimeout(err) {
			o.log.Debugf("worker %v did not answer ping", target.id)
		} else {
			o.log.Debugf("ping to worker %v failed: %v", target.id, err)
		}
		return false
	}
	if rep.Data.Error() != "" {
		return false
	}

	var sample pongSample
	if err = jsonutil.Remarshal(rep.Data, &sample); err != nil {
		o.log.Debugf("worker %v sent an unreadable pong: %v", target.id, err)
		return false
	}

	o.Lock()
	defer o.Unlock()
	info, ok := o.infos[target.id]
	if !ok {
		return false
	}
	info.SetState(model.Pinging, o.clock.Now())
	return info.Sample(sample.CPU, sample.Memory.RSS, appconfig.CPUThresholdPercent, target.conf.MaxMemoryRestart)
}

// kill force-destroys a worker. Its exit is handled by the wait goroutine.
func (o *Orchestrator) kill(id message.Address) {
	o.Lock()
	info, ok := o.infos[id]
	o.Unlock()
	if !ok {
		return
	}
	if err := o.exec.Kill(info.Pid); err != nil {
		o.log.Warnf("failed to kill worker %v (pid %d): %v", id, info.Pid, err)
	}
}
