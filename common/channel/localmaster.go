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

package channel

import (
	"runtime/debug"
	"sync"

	"github.com/Workiva/go-datastructures/queue"
	"github.com/clusterd/clusterd/agent/log"
	"github.com/clusterd/clusterd/common/message"
)

const (
	localQueueHint = 64

	// NoWorkerPool is the transport error returned for packets addressed to workers.
	NoWorkerPool = "no worker pool"
)

// LocalMaster is an in-process Port for code running without an orchestrator.
// The process acts as the master: packets addressed to master loop back,
// anything addressed to a worker fails with a transport error.
type LocalMaster struct {
	log   log.T
	queue *queue.Queue

	mu      sync.Mutex
	handler func(pkt *message.Packet)
	once    sync.Once
}

// NewLocalMaster creates the port and starts its dispatcher.
func NewLocalMaster(log log.T) *LocalMaster {
	lm := &LocalMaster{
		log:   log,
		queue: queue.New(localQueueHint),
	}
	go lm.dispatch()
	return lm
}

// Send enqueues the packet for asynchronous delivery.
func (lm *LocalMaster) Send(pkt *message.Packet) error {
	return lm.queue.Put(pkt)
}

// OnPacket sets the local delivery callback.
func (lm *LocalMaster) OnPacket(fn func(pkt *message.Packet)) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	lm.handler = fn
}

// Close stops the dispatcher. Pending packets are dropped.
func (lm *LocalMaster) Close() {
	lm.once.Do(func() {
		lm.queue.Dispose()
	})
}

func (lm *LocalMaster) dispatch() {
	defer func() {
		if r := recover(); r != nil {
			lm.log.Errorf("local master dispatcher panic: %v", r)
			lm.log.Errorf("Stacktrace:\n%s", debug.Stack())
		}
	}()

	for {
		items, err := lm.queue.Get(1)
		if err != nil {
			// queue.ErrDisposed
			return
		}
		for _, item := range items {
			lm.route(item.(*message.Packet))
		}
	}
}

func (lm *LocalMaster) route(pkt *message.Packet) {
	switch {
	case pkt.Dest == message.Master:
		lm.deliver(pkt)
	case pkt.Dest == message.Bcast:
		// nobody to broadcast to, only the sender's reply is owed
		if pkt.ShouldReply {
			data := message.NewData(pkt.Data.Kind())
			data["sent"] = 0
			lm.deliver(message.Reply(pkt, data))
		}
	default:
		if pkt.ShouldReply {
			lm.deliver(message.TransportErrorReply(pkt, NoWorkerPool))
		} else {
			lm.log.Debugf("dropping %s for %v: %s", pkt.Data.Kind(), pkt.Dest, NoWorkerPool)
		}
	}
}

func (lm *LocalMaster) deliver(pkt *message.Packet) {
	lm.mu.Lock()
	handler := lm.handler
	lm.mu.Unlock()
	if handler != nil {
		handler(pkt)
	}
}
