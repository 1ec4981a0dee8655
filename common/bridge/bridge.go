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

// Package bridge layers request/reply and post semantics over a Port.
package bridge

import (
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/clusterd/clusterd/agent/log"
	"github.com/clusterd/clusterd/common/apm"
	"github.com/clusterd/clusterd/common/channel"
	"github.com/clusterd/clusterd/common/message"
)

// ReplyFunc answers the packet a handler is processing. Calls after the first are ignored.
type ReplyFunc func(data message.Data)

// Handler inspects an inbound request. Returning true claims it and stops the chain.
type Handler func(b *Bridge, pkt *message.Packet, reply ReplyFunc) bool

// CallbackID identifies a registered handler for RemoveCallback.
type CallbackID int

// Result is the outcome of SendAsync.
type Result struct {
	Packet *message.Packet
	Err    error
}

type pendingReply struct {
	result chan Result
	timer  *time.Timer
}

type callback struct {
	id      CallbackID
	handler Handler
}

// Bridge is one endpoint of the master/worker protocol.
type Bridge struct {
	log     log.T
	self    message.Address
	port    channel.Port
	metrics *apm.Registry

	mu       sync.Mutex
	pending  map[int64]*pendingReply
	handlers []callback
	lastCbID CallbackID
	shared   map[string]interface{}
}

// NewBridge binds a bridge at address self to port and appends the default handler.
func NewBridge(logger log.T, self message.Address, port channel.Port) *Bridge {
	b := &Bridge{
		log:     logger.WithContext("[Bridge]"),
		self:    self,
		port:    port,
		metrics: apm.DefaultRegistry,
		pending: make(map[int64]*pendingReply),
		shared:  make(map[string]interface{}),
	}
	b.AddCallback(DefaultHandler)
	port.OnPacket(b.Receive)
	return b
}

// Self returns the bridge's own address.
func (b *Bridge) Self() message.Address {
	return b.self
}

// Metrics returns the registry answered by the apm handler.
func (b *Bridge) Metrics() *apm.Registry {
	return b.metrics
}

// SetShared replaces the context passed to plugin initializers.
func (b *Bridge) SetShared(shared map[string]interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shared = shared
}

func (b *Bridge) sharedContext() map[string]interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.shared
}

// SendAsync transmits a request and returns a channel that yields exactly one Result.
// A timeout of zero never expires.
func (b *Bridge) SendAsync(data message.Data, to message.Address, timeout time.Duration) <-chan Result {
	result := make(chan Result, 1)
	if data.Kind() == "" {
		result <- Result{Err: ErrMissingKind}
		return result
	}

	pkt := message.CreatePacket(b.self, to, data, true)
	entry := &pendingReply{result: result}

	b.mu.Lock()
	b.pending[pkt.ID] = entry
	if timeout > 0 {
		entry.timer = time.AfterFunc(timeout, func() {
			if b.take(pkt.ID) != nil {
				result <- Result{Err: fmt.Errorf("%s to %v after %v: %w", data.Kind(), to, timeout, ErrTimeout)}
			}
		})
	}
	b.mu.Unlock()

	if err := b.port.Send(pkt); err != nil {
		if b.take(pkt.ID) != nil {
			result <- Result{Err: &TransportError{Reason: err.Error()}}
		}
	}
	return result
}

// Send transmits a request and waits for its reply. A reply carrying an
// application error still returns a nil error; inspect Data.Error().
func (b *Bridge) Send(data message.Data, to message.Address, timeout time.Duration) (*message.Packet, error) {
	res := <-b.SendAsync(data, to, timeout)
	return res.Packet, res.Err
}

// Post transmits a packet that expects no reply.
func (b *Bridge) Post(data message.Data, to message.Address) error {
	if data.Kind() == "" {
		return ErrMissingKind
	}
	if err := b.port.Send(message.CreatePacket(b.self, to, data, false)); err != nil {
		return &TransportError{Reason: err.Error()}
	}
	return nil
}

// Pending returns the number of outstanding requests.
func (b *Bridge) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

func (b *Bridge) take(id int64) *pendingReply {
	b.mu.Lock()
	defer b.mu.Unlock()
	entry, ok := b.pending[id]
	if !ok {
		return nil
	}
	delete(b.pending, id)
	if entry.timer != nil {
		entry.timer.Stop()
	}
	return entry
}

// AddCallback appends a handler to the chain.
func (b *Bridge) AddCallback(h Handler) CallbackID {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastCbID++
	b.handlers = append(b.handlers, callback{id: b.lastCbID, handler: h})
	return b.lastCbID
}

// PrependCallback puts a handler in front of the chain.
func (b *Bridge) PrependCallback(h Handler) CallbackID {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastCbID++
	b.handlers = append([]callback{{id: b.lastCbID, handler: h}}, b.handlers...)
	return b.lastCbID
}

// RemoveCallback removes the given handlers, or every handler when called without ids.
func (b *Bridge) RemoveCallback(ids ...CallbackID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(ids) == 0 {
		b.handlers = nil
		return
	}
	for _, id := range ids {
		for i, cb := range b.handlers {
			if cb.id == id {
				b.handlers = append(b.handlers[:i:i], b.handlers[i+1:]...)
				break
			}
		}
	}
}

// Inject delivers a locally addressed packet to this bridge asynchronously.
func (b *Bridge) Inject(pkt *message.Packet) {
	go b.Receive(pkt)
}

// Receive handles one inbound packet. A reply resolves its pending send on
// the caller's goroutine; anything else runs through the handler chain on a
// goroutine of its own, so handlers may Send without stalling the port.
func (b *Bridge) Receive(pkt *message.Packet) {
	if pkt == nil || pkt.Topic != message.Topic {
		return
	}
	if pkt.Source == message.Bcast {
		b.log.Warnf("dropping packet %d with broadcast source", pkt.ID)
		return
	}

	if !pkt.ShouldReply {
		if entry := b.take(pkt.ID); entry != nil {
			if pkt.TransportError != "" {
				entry.result <- Result{Err: &TransportError{Reason: pkt.TransportError}}
			} else {
				entry.result <- Result{Packet: pkt}
			}
			return
		}
	}

	request := *pkt
	request.Data = pkt.Data.Clone()
	delete(request.Data, message.KeyError)
	request.TransportError = ""
	go b.dispatchRequest(&request)
}

func (b *Bridge) dispatchRequest(request *message.Packet) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Errorf("Bridge handler panic: %v", r)
			b.log.Errorf("Stacktrace:\n%s", debug.Stack())
		}
	}()

	var once sync.Once
	reply := func(data message.Data) {
		if !request.ShouldReply {
			return
		}
		once.Do(func() {
			if err := b.port.Send(message.Reply(request, data)); err != nil {
				b.log.Debugf("failed to reply to %s from %v: %v", request.Data.Kind(), request.Source, err)
			}
		})
	}

	b.mu.Lock()
	handlers := make([]callback, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.Unlock()

	for _, cb := range handlers {
		if cb.handler(b, request, reply) {
			return
		}
	}

	kind := request.Data.Kind()
	if request.ShouldReply {
		data := message.NewData(kind)
		data[message.KeyError] = fmt.Sprintf("%s unknown", kind)
		reply(data)
	} else {
		b.log.Debugf("no handler for %s from %v", kind, request.Source)
	}
}
