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

// Package channel implements the ports a bridge sends packets through.
package channel

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/clusterd/clusterd/common/message"
	"github.com/twinj/uuid"
	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/pair"

	// register ipc transport
	_ "go.nanomsg.org/mangos/v3/transport/ipc"
)

const (
	ipcPrefix = "ipc://"

	// sendDeadline bounds how long a send waits for a peer that went away.
	sendDeadline = 2 * time.Second

	ErrorListenDial = "invoke listen or dial before this call"
)

// ErrClosed is returned by Recv once the channel has been closed.
var ErrClosed = mangos.ErrClosed

// IChannel is a point-to-point message channel between the master and one worker.
type IChannel interface {
	Initialize() error
	Send(pkt *message.Packet) error
	Close() error
	Recv() ([]byte, error)
	SetOption(name string, value interface{}) error
	Listen(addr string) error
	Dial(addr string) error
	IsConnect() bool
	OnPipeEvent(fn func(attached bool))
}

// Channel is an IChannel backed by a mangos pair socket.
type Channel struct {
	socket mangos.Socket
	mu     sync.Mutex
	hook   func(attached bool)
}

// NewChannel creates an new instance of Channel
func NewChannel() IChannel {
	return &Channel{}
}

// Initialize creates the underlying pair socket.
func (channel *Channel) Initialize() error {
	socket, err := pair.NewSocket()
	if err != nil {
		return err
	}
	if err = socket.SetOption(mangos.OptionSendDeadline, sendDeadline); err != nil {
		socket.Close()
		return err
	}
	socket.SetPipeEventHook(func(event mangos.PipeEvent, _ mangos.Pipe) {
		channel.mu.Lock()
		hook := channel.hook
		channel.mu.Unlock()
		if hook == nil {
			return
		}
		switch event {
		case mangos.PipeEventAttached:
			hook(true)
		case mangos.PipeEventDetached:
			hook(false)
		}
	})
	channel.socket = socket
	return nil
}

// OnPipeEvent registers a callback for peer attach and detach.
func (channel *Channel) OnPipeEvent(fn func(attached bool)) {
	channel.mu.Lock()
	defer channel.mu.Unlock()
	channel.hook = fn
}

// Send encodes the packet and puts it on the outbound queue.
func (channel *Channel) Send(pkt *message.Packet) error {
	if channel.socket == nil {
		return errors.New(ErrorListenDial)
	}
	msg, err := message.Encode(pkt)
	if err != nil {
		return err
	}
	return channel.socket.Send(msg)
}

func (channel *Channel) Close() error {
	if channel.socket == nil {
		return nil
	}
	return channel.socket.Close()
}

// Recv receives a complete message.
func (channel *Channel) Recv() ([]byte, error) {
	if channel.socket == nil {
		return nil, errors.New(ErrorListenDial)
	}
	return channel.socket.Recv()
}

// SetOption is used to set an option for a socket.
func (channel *Channel) SetOption(name string, value interface{}) error {
	return channel.socket.SetOption(name, value)
}

// Listen connects a local endpoint to the Socket.
func (channel *Channel) Listen(addr string) error {
	return channel.socket.Listen(addr)
}

// Dial connects a remote endpoint to the Socket.
func (channel *Channel) Dial(addr string) error {
	return channel.socket.Dial(addr)
}

// IsConnect returns true if channel is ready to use
func (channel *Channel) IsConnect() bool {
	return channel.socket != nil
}

func init() {
	uuid.SwitchFormat(uuid.CleanHyphen)
}

// NewClusterID returns a fresh id used to keep socket names of concurrent masters apart.
func NewClusterID() string {
	return uuid.NewV4().String()
}

// IPCAddress returns the socket address the master listens on for one worker.
func IPCAddress(dir string, clusterID string, worker message.Address) string {
	return ipcPrefix + filepath.Join(dir, fmt.Sprintf("clusterd-%s-%d.ipc", clusterID, int(worker)))
}

// SocketPath strips the transport prefix from an ipc address.
func SocketPath(addr string) string {
	if len(addr) > len(ipcPrefix) && addr[:len(ipcPrefix)] == ipcPrefix {
		return addr[len(ipcPrefix):]
	}
	return addr
}
