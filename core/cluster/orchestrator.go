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

// Package cluster implements the master: it forks workers, routes packets
// between them, keeps them healthy and restarts or stops them.
package cluster

import (
	"io"
	"sync"
	"time"

	"github.com/carlescere/scheduler"
	"github.com/clusterd/clusterd/agent/log"
	"github.com/clusterd/clusterd/agent/times"
	"github.com/clusterd/clusterd/common/bridge"
	"github.com/clusterd/clusterd/common/channel"
	"github.com/clusterd/clusterd/common/message"
	"github.com/clusterd/clusterd/core/app/context"
	"github.com/clusterd/clusterd/core/cluster/model"
	"github.com/clusterd/clusterd/core/executor"
	"github.com/clusterd/clusterd/core/workerconf"
)

// IOrchestrator is the lifecycle surface used by the master process.
type IOrchestrator interface {
	Start(confs []workerconf.WorkerConf) error
	Reload(confs []workerconf.WorkerConf) error
	Shutdown()
	Bridge() *bridge.Bridge
	Workers() map[message.Address]model.WorkerInfo
	Done() <-chan int
}

// worker is a live child process and its channel.
type worker struct {
	id       message.Address
	idx      int
	instance int
	conf     *workerconf.WorkerConf
	process  *executor.Process
	port     *channel.IPCPort
	address  string
	pidFile  string
	logs     []io.Closer

	// stopping is set when the master asked the worker to go away
	stopping bool
	// cronRestart re-forks the worker right away without counting a restart
	cronRestart bool
}

// Orchestrator owns the worker pool. WorkerInfo lives in a side table keyed
// by worker address, not on the worker handle.
type Orchestrator struct {
	sync.Mutex
	context    context.ICoreContext
	log        log.T
	exec       executor.IExecutor
	newChannel func() channel.IChannel
	clock      times.Clock

	bridge       *bridge.Bridge
	masterHandle func(pkt *message.Packet)

	confs      []workerconf.WorkerConf
	workers    map[message.Address]*worker
	infos      map[message.Address]*model.WorkerInfo
	lastID     message.Address
	restarting map[*time.Timer]struct{}

	maintenanceJob *scheduler.Job
	maintaining    int32
	cronStop       chan struct{}

	shuttingDown bool
	reloading    bool
	done         chan int
	exitOnce     sync.Once
}

// NewOrchestrator creates the master and its bridge.
func NewOrchestrator(ctx context.ICoreContext, exec executor.IExecutor) *Orchestrator {
	clusterCtx := ctx.With("[Cluster]")
	o := &Orchestrator{
		context:    clusterCtx,
		log:        clusterCtx.Log(),
		exec:       exec,
		newChannel: channel.NewChannel,
		clock:      times.DefaultClock,
		workers:    make(map[message.Address]*worker),
		infos:      make(map[message.Address]*model.WorkerInfo),
		restarting: make(map[*time.Timer]struct{}),
		done:       make(chan int, 1),
	}
	o.bridge = bridge.NewBridge(ctx.Log(), message.Master, o)
	o.bridge.PrependCallback(o.handleMaster)
	return o
}

// Bridge returns the master's own endpoint.
func (o *Orchestrator) Bridge() *bridge.Bridge {
	return o.bridge
}

// Done yields the exit code once the master has nothing left to supervise.
func (o *Orchestrator) Done() <-chan int {
	return o.done
}

// Start forks every configured instance and begins health maintenance.
func (o *Orchestrator) Start(confs []workerconf.WorkerConf) error {
	o.Lock()
	o.confs = confs
	o.Unlock()

	if err := o.startAll(); err != nil {
		return err
	}
	return o.startTimers()
}

func (o *Orchestrator) startAll() error {
	o.Lock()
	confs := o.confs
	o.Unlock()

	var firstErr error
	for idx := range confs {
		for instance := 0; instance < confs[idx].Instances; instance++ {
			if err := o.fork(idx, instance, 0); err != nil {
				o.log.Errorf("failed to start %s instance %d: %v", confs[idx].Name, instance, err)
				if firstErr == nil {
					firstErr = err
				}
			}
		}
	}
	if o.liveCount() == 0 && firstErr != nil {
		return firstErr
	}
	return nil
}

func (o *Orchestrator) startTimers() error {
	interval := o.context.AppConfig().Cluster.MaintenanceIntervalSeconds
	job, err := scheduler.Every(interval).Seconds().NotImmediately().Run(o.maintain)
	if err != nil {
		return err
	}
	stop := make(chan struct{})

	o.Lock()
	o.maintenanceJob = job
	o.cronStop = stop
	confs := o.confs
	o.Unlock()

	for idx := range confs {
		if confs[idx].CronRestart != "" {
			if err := o.scheduleCron(idx, confs[idx].CronRestart, stop); err != nil {
				o.log.Errorf("invalid cron_restart for %s: %v", confs[idx].Name, err)
			}
		}
	}
	return nil
}

func (o *Orchestrator) stopTimers() {
	o.Lock()
	defer o.Unlock()
	if o.maintenanceJob != nil {
		o.maintenanceJob.Quit <- true
		o.maintenanceJob = nil
	}
	if o.cronStop != nil {
		close(o.cronStop)
		o.cronStop = nil
	}
	for timer := range o.restarting {
		timer.Stop()
	}
	o.restarting = make(map[*time.Timer]struct{})
}

// Workers returns a copy of the WorkerInfo table.
func (o *Orchestrator) Workers() map[message.Address]model.WorkerInfo {
	o.Lock()
	defer o.Unlock()
	result := make(map[message.Address]model.WorkerInfo, len(o.infos))
	for id, info := range o.infos {
		result[id] = *info
	}
	return result
}

func (o *Orchestrator) liveCount() int {
	o.Lock()
	defer o.Unlock()
	return len(o.workers)
}

func (o *Orchestrator) exit(code int) {
	o.exitOnce.Do(func() {
		o.stopTimers()
		o.log.Infof("master exiting with code %d", code)
		o.done <- code
	})
}

// Send implements channel.Port for the master bridge.
func (o *Orchestrator) Send(pkt *message.Packet) error {
	o.dispatch(message.Master, pkt)
	return nil
}

// OnPacket implements channel.Port for the master bridge.
func (o *Orchestrator) OnPacket(fn func(pkt *message.Packet)) {
	o.Lock()
	defer o.Unlock()
	o.masterHandle = fn
}
