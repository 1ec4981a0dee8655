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

	"github.com/clusterd/clusterd/agent/log"
	"github.com/clusterd/clusterd/common/message"
)

// Port is a raw duplex packet channel. Delivery is at most once.
type Port interface {
	Send(pkt *message.Packet) error
	OnPacket(fn func(pkt *message.Packet))
}

// IPCPort adapts an IChannel into a Port by running a receive loop.
type IPCPort struct {
	log     log.T
	channel IChannel

	mu      sync.Mutex
	handler func(pkt *message.Packet)
	closed  bool
	done    chan struct{}
}

// NewIPCPort wraps an initialized channel. Call Start to begin receiving.
func NewIPCPort(log log.T, channel IChannel) *IPCPort {
	return &IPCPort{
		log:     log,
		channel: channel,
		done:    make(chan struct{}),
	}
}

// Send writes the packet to the peer.
func (p *IPCPort) Send(pkt *message.Packet) error {
	return p.channel.Send(pkt)
}

// OnPacket sets the callback invoked for every decoded inbound packet.
func (p *IPCPort) OnPacket(fn func(pkt *message.Packet)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handler = fn
}

// Channel returns the underlying channel.
func (p *IPCPort) Channel() IChannel {
	return p.channel
}

// Start launches the receive loop.
func (p *IPCPort) Start() {
	go p.receive()
}

// Done is closed when the receive loop exits.
func (p *IPCPort) Done() <-chan struct{} {
	return p.done
}

// Close stops the receive loop and closes the channel.
func (p *IPCPort) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()
	return p.channel.Close()
}

func (p *IPCPort) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *IPCPort) receive() {
	defer close(p.done)
	defer func() {
		if r := recover(); r != nil {
			p.log.Errorf("IPC receive loop panic: %v", r)
			p.log.Errorf("Stacktrace:\n%s", debug.Stack())
		}
	}()

	for {
		raw, err := p.channel.Recv()
		if err != nil {
			if err == ErrClosed || p.isClosed() {
				return
			}
			p.log.Debugf("failed to receive packet: %v", err)
			continue
		}
		pkt, err := message.Decode(raw)
		if err != nil {
			p.log.Warnf("dropping malformed packet: %v", err)
			continue
		}
		p.mu.Lock()
		handler := p.handler
		p.mu.Unlock()
		if handler != nil {
			handler(pkt)
		}
	}
}
