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

// Package app represents the cluster master object
package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/clusterd/clusterd/agent/jsonutil"
	"github.com/clusterd/clusterd/agent/version"
	"github.com/clusterd/clusterd/common/message"
	"github.com/clusterd/clusterd/core/app/context"
	"github.com/clusterd/clusterd/core/cluster"
	"github.com/clusterd/clusterd/core/workerconf"
	"github.com/fsnotify/fsnotify"
	"github.com/nightlyone/lockfile"
	"golang.org/x/sys/unix"
)

const reloadDebounce = 500 * time.Millisecond

var (
	// ErrLocked is returned when another master holds the lock file.
	ErrLocked = errors.New("another master is already running")

	// ErrInvalidConfig wraps launch files that cannot be turned into workers.
	ErrInvalidConfig = errors.New("invalid launch configuration")
)

// ClusterMaster is the master process surface driven by main.
type ClusterMaster interface {
	Start() error
	Reload() error
	Stop()
	Done() <-chan int
	Close()
}

// Master ties the orchestrator to its launch file, lock and watcher.
type Master struct {
	context      context.ICoreContext
	orchestrator cluster.IOrchestrator
	load         func(path string) ([]workerconf.WorkerConf, error)

	mu        sync.Mutex
	lock      *lockfile.Lockfile
	watcher   *fsnotify.Watcher
	stopWatch chan struct{}
}

// NewMaster creates a master for the launch file recorded in the context.
func NewMaster(ctx context.ICoreContext, orchestrator cluster.IOrchestrator) *Master {
	return &Master{
		context:      ctx.With("[Master]"),
		orchestrator: orchestrator,
		load:         workerconf.LoadFile,
	}
}

// Start takes the lock, loads the launch file and forks the workers.
func (m *Master) Start() error {
	log := m.context.Log()
	log.Infof("clusterd - %v", version.String(message.ProtocolVersion))
	log.Infof("OS: %s, Arch: %s", runtime.GOOS, runtime.GOARCH)
	log.Debugf("settings: %s", jsonutil.MarshalIndent(m.context.AppConfig()))

	if err := m.acquireLock(); err != nil {
		return err
	}

	confs, err := m.loadConfig()
	if err != nil {
		m.releaseLock()
		return err
	}
	log.Infof("starting %d apps from %s", len(confs), m.context.AppVariable().ConfigPath)
	if err = m.orchestrator.Start(confs); err != nil {
		m.releaseLock()
		return err
	}

	if m.context.AppConfig().Cluster.WatchConfig {
		if err = m.watch(); err != nil {
			log.Warnf("not watching %s: %v", m.context.AppVariable().ConfigPath, err)
		}
	}
	return nil
}

// Reload re-reads the launch file and restarts the cluster with it. A bad
// file leaves the running cluster untouched.
func (m *Master) Reload() error {
	confs, err := m.loadConfig()
	if err != nil {
		m.context.Log().Errorf("keeping current cluster, reload failed: %v", err)
		return err
	}
	return m.orchestrator.Reload(confs)
}

// Stop shuts the cluster down gracefully; Done yields once it is over.
func (m *Master) Stop() {
	m.context.Log().Info("Stopping cluster")
	m.orchestrator.Shutdown()
}

// Done yields the exit code of the master.
func (m *Master) Done() <-chan int {
	return m.orchestrator.Done()
}

// Close stops watching and releases the lock.
func (m *Master) Close() {
	m.mu.Lock()
	if m.stopWatch != nil {
		close(m.stopWatch)
		m.stopWatch = nil
	}
	if m.watcher != nil {
		m.watcher.Close()
		m.watcher = nil
	}
	m.mu.Unlock()
	m.releaseLock()
}

func (m *Master) loadConfig() ([]workerconf.WorkerConf, error) {
	confs, err := m.load(m.context.AppVariable().ConfigPath)
	if err == nil {
		return confs, nil
	}
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return nil, err
	}
	return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
}

func (m *Master) acquireLock() error {
	path, err := filepath.Abs(m.context.AppConfig().Cluster.LockFile)
	if err != nil {
		return err
	}
	lock, err := lockfile.New(path)
	if err != nil {
		return err
	}
	if err = lock.TryLock(); err != nil {
		if errors.Is(err, lockfile.ErrBusy) {
			if owner, ownerErr := lock.GetOwner(); ownerErr == nil {
				return fmt.Errorf("%w (pid %d)", ErrLocked, owner.Pid)
			}
			return ErrLocked
		}
		return fmt.Errorf("failed to lock %s: %v", path, err)
	}
	m.mu.Lock()
	m.lock = &lock
	m.mu.Unlock()
	return nil
}

func (m *Master) releaseLock() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lock == nil {
		return
	}
	if err := m.lock.Unlock(); err != nil {
		m.context.Log().Warnf("failed to release lock: %v", err)
	}
	m.lock = nil
}

// watch reloads the cluster when the launch file changes. The directory is
// watched because editors usually replace the file instead of writing it.
func (m *Master) watch() error {
	configPath, err := filepath.Abs(m.context.AppVariable().ConfigPath)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err = watcher.Add(filepath.Dir(configPath)); err != nil {
		watcher.Close()
		return err
	}
	stop := make(chan struct{})
	m.mu.Lock()
	m.watcher = watcher
	m.stopWatch = stop
	m.mu.Unlock()

	go m.watchLoop(watcher, configPath, stop)
	return nil
}

func (m *Master) watchLoop(watcher *fsnotify.Watcher, configPath string, stop chan struct{}) {
	log := m.context.Log()
	var debounce *time.Timer
	for {
		select {
		case <-stop:
			if debounce != nil {
				debounce.Stop()
			}
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != configPath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			log.Debugf("launch file event %v", event)
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, func() {
				log.Infof("%s changed, reloading", configPath)
				m.Reload()
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Warnf("launch file watcher error: %v", err)
		}
	}
}

// ExitCode maps a start failure to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, os.ErrNotExist):
		return int(unix.ENOENT)
	case errors.Is(err, ErrInvalidConfig):
		return int(unix.EINVAL)
	case errors.Is(err, ErrLocked):
		return int(unix.EBUSY)
	default:
		return 1
	}
}
