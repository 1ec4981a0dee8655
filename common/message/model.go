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

// Package message contains the packet envelope exchanged between the master and its workers.
package message

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync/atomic"
)

// Address identifies a bridge endpoint. Positive values are worker ids.
type Address int

const (
	// Master is the orchestrator endpoint.
	Master Address = 0
	// Bcast addresses every live worker except the sender. Only valid as a destination.
	Bcast Address = -1
)

const (
	masterName = "master"
	bcastName  = "bcast"
)

// IsWorker reports whether the address names a worker.
func (a Address) IsWorker() bool {
	return a > 0
}

func (a Address) String() string {
	switch a {
	case Master:
		return masterName
	case Bcast:
		return bcastName
	}
	return strconv.Itoa(int(a))
}

// ParseAddress accepts "master", "bcast" or a positive worker id.
func ParseAddress(s string) (Address, error) {
	switch s {
	case masterName:
		return Master, nil
	case bcastName:
		return Bcast, nil
	}
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return Master, fmt.Errorf("invalid address %q", s)
	}
	return Address(id), nil
}

// MarshalJSON writes workers as numbers and the two literals as strings.
func (a Address) MarshalJSON() ([]byte, error) {
	if a.IsWorker() {
		return []byte(strconv.Itoa(int(a))), nil
	}
	if a != Master && a != Bcast {
		return nil, fmt.Errorf("invalid address %d", int(a))
	}
	return json.Marshal(a.String())
}

// UnmarshalJSON reads either form written by MarshalJSON.
func (a *Address) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		addr, err := ParseAddress(s)
		if err != nil {
			return err
		}
		*a = addr
		return nil
	}
	var id int
	if err := json.Unmarshal(b, &id); err != nil {
		return fmt.Errorf("invalid address %s", string(b))
	}
	if id <= 0 {
		return fmt.Errorf("invalid address %d", id)
	}
	*a = Address(id)
	return nil
}

// Kind is the value carried under the "msg" key of a payload.
type Kind string

const (
	Ping      Kind = "ping"
	Pong      Kind = "pong"
	Apm       Kind = "apm"
	Signal    Kind = "signal"
	Require   Kind = "require"
	Plugin    Kind = "plugin"
	Online    Kind = "online"
	Listening Kind = "listening"
	Shutdown  Kind = "shutdown"
)

const (
	KeyMsg   = "msg"
	KeyError = "error"
)

// Data is an open payload. It always carries the kind under "msg".
type Data map[string]interface{}

// NewData creates a payload of the given kind.
func NewData(kind Kind) Data {
	return Data{KeyMsg: string(kind)}
}

// Kind returns the message kind, or "" when absent.
func (d Data) Kind() Kind {
	if d == nil {
		return ""
	}
	s, _ := d[KeyMsg].(string)
	return Kind(s)
}

// Error returns the application level error, or "" when absent.
func (d Data) Error() string {
	if d == nil {
		return ""
	}
	s, _ := d[KeyError].(string)
	return s
}

// Clone returns a shallow copy.
func (d Data) Clone() Data {
	c := make(Data, len(d))
	for k, v := range d {
		c[k] = v
	}
	return c
}

// Packet is the transport envelope. Packets are treated as immutable: helpers
// in this package always return new values.
type Packet struct {
	Topic          string  `json:"topic"`
	Source         Address `json:"source"`
	Dest           Address `json:"dest"`
	Data           Data    `json:"data"`
	ShouldReply    bool    `json:"shouldReply"`
	ID             int64   `json:"id"`
	TransportError string  `json:"transportError,omitempty"`
}

// Topic discriminates bridge traffic from anything else on a channel.
const Topic = "clusterd:bridge"

// ProtocolVersion is announced by workers in their online message.
const ProtocolVersion = "1.0.0"

var lastID = int64(os.Getpid()) << 32

// NextID returns a process-local, monotonically increasing packet id.
func NextID() int64 {
	return atomic.AddInt64(&lastID, 1)
}

// CreatePacket builds a new request or post with a fresh id.
func CreatePacket(source, dest Address, data Data, shouldReply bool) *Packet {
	return &Packet{
		Topic:       Topic,
		Source:      source,
		Dest:        dest,
		Data:        data,
		ShouldReply: shouldReply,
		ID:          NextID(),
	}
}

// Reply answers pkt with data. Replies to broadcasts come from the master.
func Reply(pkt *Packet, data Data) *Packet {
	source := pkt.Dest
	if source == Bcast {
		source = Master
	}
	return &Packet{
		Topic:  Topic,
		Source: source,
		Dest:   pkt.Source,
		Data:   data,
		ID:     pkt.ID,
	}
}

// TransportErrorReply answers pkt with a transport level failure.
func TransportErrorReply(pkt *Packet, reason string) *Packet {
	reply := Reply(pkt, NewData(pkt.Data.Kind()))
	reply.TransportError = reason
	return reply
}

// WithDest returns a copy of pkt addressed to dest.
func WithDest(pkt *Packet, dest Address, shouldReply bool) *Packet {
	c := *pkt
	c.Dest = dest
	c.ShouldReply = shouldReply
	return &c
}

// Encode serializes a packet for the wire.
func Encode(pkt *Packet) ([]byte, error) {
	return json.Marshal(pkt)
}

// Decode parses a wire packet.
func Decode(b []byte) (*Packet, error) {
	var pkt Packet
	if err := json.Unmarshal(b, &pkt); err != nil {
		return nil, fmt.Errorf("failed to decode packet: %v", err)
	}
	return &pkt, nil
}
