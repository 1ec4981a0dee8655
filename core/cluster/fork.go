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
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/clusterd/clusterd/agent/appconfig"
	"github.com/clusterd/clusterd/agent/backoffconfig"
	"github.com/clusterd/clusterd/agent/fileutil"
	"github.com/clusterd/clusterd/common/channel"
	"github.com/clusterd/clusterd/common/message"
	"github.com/clusterd/clusterd/core/cluster/model"
	"github.com/clusterd/clusterd/core/executor"
	"github.com/clusterd/clusterd/core/workerconf"
)

const (
	listenRetries       = 5
	listenRetryInterval = 20 * time.Millisecond
)

// fork starts instance `instance` of app idx. restarts is carried over from
// the worker this one replaces.
func (o *Orchestrator) fork(idx int, instance int, restarts int) error {
	o.Lock()
	if idx >= len(o.confs) {
		o.Unlock()
		return fmt.Errorf("no app at index %d", idx)
	}
	conf := &o.confs[idx]
	o.lastID++
	id := o.lastID
	o.Unlock()

	if !fileutil.IsFile(conf.Script) {
		return fmt.Errorf("script %s not found", conf.Script)
	}

	address := channel.IPCAddress(o.context.AppConfig().Cluster.SocketDir, o.context.AppVariable().ClusterID, id)
	port, err := o.listen(id, address)
	if err != nil {
		return err
	}

	w := &worker{
		id:       id,
		idx:      idx,
		instance: instance,
		conf:     conf,
		port:     port,
		address:  address,
	}

	spec := o.startSpec(conf, id, instance, address)
	if spec.Stdout, spec.Stderr, w.logs, err = openLogs(conf, id); err != nil {
		port.Close()
		return err
	}

	process, err := o.exec.Start(spec)
	if err != nil {
		w.release()
		return fmt.Errorf("failed to spawn %s: %v", conf.Script, err)
	}
	w.process = process
	info := model.NewWorkerInfo(idx, restarts, o.clock.Now())
	info.Pid = process.Pid

	o.Lock()
	o.workers[id] = w
	o.infos[id] = info
	o.Unlock()

	if conf.PidFile != "" {
		w.pidFile = expandTemplate(conf.PidFile, conf, id, conf.CombineLogs)
		if err := fileutil.WriteAllText(w.pidFile, strconv.Itoa(process.Pid)); err != nil {
			o.log.Warnf("failed to write pid file %s: %v", w.pidFile, err)
			w.pidFile = ""
		}
	}

	o.log.Infof("worker %v (%s instance %d, pid %d) forked, restarts %d", id, conf.Name, instance, process.Pid, restarts)
	go o.wait(w)
	return nil
}

// listen opens the master side of a worker's channel before the worker exists.
func (o *Orchestrator) listen(id message.Address, address string) (*channel.IPCPort, error) {
	ch := o.newChannel()
	if err := ch.Initialize(); err != nil {
		return nil, err
	}
	ch.OnPipeEvent(func(attached bool) {
		o.onPipeEvent(id, attached)
	})

	policy, err := backoffconfig.GetDialBackoff(listenRetryInterval, listenRetries)
	if err != nil {
		ch.Close()
		return nil, err
	}
	if err = backoff.Retry(func() error { return ch.Listen(address) }, policy); err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to listen on %s: %v", address, err)
	}

	port := channel.NewIPCPort(o.log, ch)
	port.OnPacket(func(pkt *message.Packet) {
		o.onWorkerPacket(id, pkt)
	})
	port.Start()
	return port, nil
}

// startSpec builds the command line and environment of one worker. The
// environment is scoped to the child; the master's own is never modified.
func (o *Orchestrator) startSpec(conf *workerconf.WorkerConf, id message.Address, instance int, address string) *executor.StartSpec {
	spec := &executor.StartSpec{Dir: conf.Cwd}
	if conf.Interpreter != "" {
		spec.Path = conf.Interpreter
		spec.Args = append([]string{conf.Script}, conf.Args...)
	} else {
		spec.Path = conf.Script
		spec.Args = append([]string{}, conf.Args...)
	}
	if spec.Dir == "" {
		spec.Dir = filepath.Dir(conf.Script)
	}

	appName := conf.Name
	if conf.Instances > 1 {
		appName = fmt.Sprintf("%s-%d", conf.Name, instance)
	}
	env := os.Environ()
	for k, v := range conf.Env {
		env = append(env, k+"="+v)
	}
	env = append(env,
		appconfig.WorkerIDEnvVar+"="+id.String(),
		appconfig.IPCAddressEnvVar+"="+address,
		appconfig.AppNameEnvVar+"="+appName,
		appconfig.InstanceEnvVar+"="+strconv.Itoa(instance),
	)
	if conf.Time {
		env = append(env, appconfig.LogTimeEnvVar+"=1")
	}
	spec.Env = env
	return spec
}

func expandTemplate(template string, conf *workerconf.WorkerConf, id message.Address, combined bool) string {
	return fileutil.ExpandTemplate(template, conf.Name, id.String(), combined)
}

// openLogs opens the out and error files of a worker. Empty templates
// inherit the master's streams.
func openLogs(conf *workerconf.WorkerConf, id message.Address) (stdout io.Writer, stderr io.Writer, closers []io.Closer, err error) {
	stdout, stderr = os.Stdout, os.Stderr
	opened := map[string]*os.File{}
	open := func(template string) (io.Writer, error) {
		path := expandTemplate(template, conf, id, conf.CombineLogs)
		if f, ok := opened[path]; ok {
			return f, nil
		}
		f, err := fileutil.OpenAppend(path)
		if err != nil {
			return nil, err
		}
		opened[path] = f
		closers = append(closers, f)
		return f, nil
	}
	if conf.OutFile != "" {
		if stdout, err = open(conf.OutFile); err != nil {
			return nil, nil, closers, err
		}
	}
	if conf.ErrorFile != "" {
		if stderr, err = open(conf.ErrorFile); err != nil {
			for _, c := range closers {
				c.Close()
			}
			return nil, nil, nil, err
		}
	}
	return stdout, stderr, closers, nil
}

// release closes everything the master holds for the worker.
func (w *worker) release() {
	if w.port != nil {
		w.port.Close()
	}
	for _, c := range w.logs {
		c.Close()
	}
	if w.pidFile != "" {
		fileutil.DeleteFile(w.pidFile)
	}
	if path := channel.SocketPath(w.address); path != "" {
		fileutil.DeleteFile(path)
	}
}
