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
	"fmt"
	"time"

	"github.com/clusterd/clusterd/common/message"
	"github.com/clusterd/clusterd/core/workerconf"
)

const reloadPollInterval = 100 * time.Millisecond

// Shutdown stops every worker gracefully. The master exits once they are all
// gone or after the global kill timeout, whichever comes first.
func (o *Orchestrator) Shutdown() {
	o.Lock()
	if o.shuttingDown {
		o.Unlock()
		return
	}
	o.shuttingDown = true
	o.Unlock()

	o.log.Info("shutting down cluster")
	o.stopTimers()
	o.stopAll()

	if o.liveCount() == 0 {
		o.exit(0)
		return
	}
	time.AfterFunc(o.context.AppConfig().GlobalKillTimeout(), func() {
		if n := o.liveCount(); n > 0 {
			o.log.Warnf("%d workers still alive after the global kill timeout, exiting anyway", n)
		}
		o.exit(0)
	})
}

// Reload stops the running workers without exiting the master and starts confs.
func (o *Orchestrator) Reload(confs []workerconf.WorkerConf) error {
	o.Lock()
	if o.shuttingDown {
		o.Unlock()
		return fmt.Errorf("cluster is shutting down")
	}
	if o.reloading {
		o.Unlock()
		return fmt.Errorf("reload already in progress")
	}
	o.reloading = true
	o.Unlock()

	o.log.Info("reloading cluster")
	o.stopTimers()
	o.stopAll()

	deadline := o.clock.Now().Add(o.context.AppConfig().GlobalKillTimeout())
	for o.liveCount() > 0 && o.clock.Now().Before(deadline) {
		time.Sleep(reloadPollInterval)
	}
	o.Lock()
	stragglers := make([]int, 0, len(o.infos))
	for _, info := range o.infos {
		stragglers = append(stragglers, info.Pid)
	}
	o.Unlock()
	for _, pid := range stragglers {
		o.log.Warnf("killing pid %d that outlived the reload", pid)
		o.exec.Kill(pid)
	}

	o.Lock()
	o.confs = confs
	o.reloading = false
	shuttingDown := o.shuttingDown
	o.Unlock()
	if shuttingDown {
		o.exitIfIdle()
		return nil
	}

	if err := o.startAll(); err != nil {
		o.exitIfIdle()
		return err
	}
	return o.startTimers()
}

// cronRestart replaces every running instance of app idx.
func (o *Orchestrator) cronRestart(idx int) {
	o.Lock()
	if o.shuttingDown || o.reloading {
		o.Unlock()
		return
	}
	var targets []*worker
	for _, w := range o.workers {
		if w.idx == idx && !w.stopping {
			w.cronRestart = true
			w.stopping = true
			targets = append(targets, w)
		}
	}
	o.Unlock()

	for _, w := range targets {
		o.log.Infof("cron restart of worker %v (%s)", w.id, w.conf.Name)
		o.stopWorker(w)
	}
}

func (o *Orchestrator) stopAll() {
	o.Lock()
	targets := make([]*worker, 0, len(o.workers))
	for _, w := range o.workers {
		w.stopping = true
		targets = append(targets, w)
	}
	o.Unlock()

	for _, w := range targets {
		o.stopWorker(w)
	}
}

// stopWorker asks a worker to exit: a shutdown message, then its kill signal,
// then a hard kill when neither applies or fails.
func (o *Orchestrator) stopWorker(w *worker) {
	var err error
	switch {
	case w.conf.ShutdownWithMessage:
		err = o.bridge.Post(message.NewData(message.Shutdown), w.id)
	case w.conf.KillSignal != "":
		err = o.exec.Signal(w.process.Pid, w.conf.KillSignal)
	default:
		err = o.exec.Kill(w.process.Pid)
		if err != nil {
			o.log.Warnf("failed to kill worker %v: %v", w.id, err)
		}
		return
	}
	if err != nil {
		o.log.Warnf("graceful stop of worker %v failed (%v), killing it", w.id, err)
		if err = o.exec.Kill(w.process.Pid); err != nil {
			o.log.Warnf("failed to kill worker %v: %v", w.id, err)
		}
	}
}
