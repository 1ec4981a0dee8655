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
	"time"

	"github.com/clusterd/clusterd/agent/backoffconfig"
)

// wait blocks until the worker's process is reaped.
func (o *Orchestrator) wait(w *worker) {
	status := <-w.process.Exited
	o.onExit(w, status.Code, status.Signal)
}

// onExit drops the dead worker and applies the restart policy.
func (o *Orchestrator) onExit(w *worker, code int, signal string) {
	o.Lock()
	info, ok := o.infos[w.id]
	restarts := 0
	if ok {
		restarts = info.Restarts
	}
	delete(o.workers, w.id)
	delete(o.infos, w.id)
	quiescing := o.shuttingDown || o.reloading
	o.Unlock()

	w.release()
	if signal != "" {
		o.log.Infof("worker %v (pid %d) exited on signal %s", w.id, w.process.Pid, signal)
	} else {
		o.log.Infof("worker %v (pid %d) exited with code %d", w.id, w.process.Pid, code)
	}

	switch {
	case quiescing:
	case w.cronRestart:
		if err := o.fork(w.idx, w.instance, restarts); err != nil {
			o.log.Errorf("failed to restart %s instance %d: %v", w.conf.Name, w.instance, err)
		}
	case w.conf.Autorestart && !w.stopping && restarts < w.conf.MaxRestarts:
		o.scheduleRestart(w, restarts)
	case w.conf.Autorestart && !w.stopping:
		o.log.Errorf("%s instance %d: too many restarts (%d), giving up", w.conf.Name, w.instance, restarts)
	}

	o.exitIfIdle()
}

// scheduleRestart re-forks the slot after base + step*restarts.
func (o *Orchestrator) scheduleRestart(w *worker, restarts int) {
	delay := backoffconfig.RestartDelay(w.conf.RestartDelay, w.conf.ExpBackoffRestartDelay, restarts)
	o.log.Infof("restarting %s instance %d in %v", w.conf.Name, w.instance, delay)

	o.Lock()
	defer o.Unlock()
	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		o.Lock()
		_, pending := o.restarting[timer]
		o.Unlock()
		if !pending {
			return
		}
		err := o.fork(w.idx, w.instance, restarts+1)
		// the slot stays reserved until the fork settled
		o.Lock()
		delete(o.restarting, timer)
		o.Unlock()
		if err != nil {
			o.log.Errorf("failed to restart %s instance %d: %v", w.conf.Name, w.instance, err)
			o.exitIfIdle()
		}
	})
	o.restarting[timer] = struct{}{}
}

// exitIfIdle ends the master once no worker is alive or about to be.
func (o *Orchestrator) exitIfIdle() {
	o.Lock()
	idle := len(o.workers) == 0 && len(o.restarting) == 0 && !o.reloading
	o.Unlock()
	if idle {
		o.exit(0)
	}
}
