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

	"github.com/clusterd/clusterd/agent/versionutil"
	"github.com/clusterd/clusterd/common/bridge"
	"github.com/clusterd/clusterd/common/message"
	"github.com/clusterd/clusterd/core/cluster/model"
)

// dispatch routes a packet that arrived at the master, either from a worker
// channel or from the master's own bridge. origin is the endpoint it came from.
func (o *Orchestrator) dispatch(origin message.Address, pkt *message.Packet) {
	if pkt == nil || pkt.Topic != message.Topic {
		return
	}

	switch {
	case pkt.Source == message.Master && pkt.Dest == message.Master && pkt.ShouldReply:
		o.bridge.Inject(pkt)

	case pkt.Source == message.Bcast:
		o.log.Warnf("rejecting packet %d from %v with broadcast source", pkt.ID, origin)
		if pkt.ShouldReply {
			reply := message.TransportErrorReply(pkt, "broadcast is not a valid source")
			reply.Dest = origin
			o.route(reply)
		}

	case pkt.Dest == message.Master:
		o.deliverLocal(pkt)

	case pkt.Dest == message.Bcast:
		o.broadcast(pkt)

	default:
		o.forward(pkt)
	}
}

// route sends a master-built packet to its destination.
func (o *Orchestrator) route(pkt *message.Packet) {
	if pkt.Dest == message.Master {
		o.deliverLocal(pkt)
		return
	}
	o.forward(pkt)
}

func (o *Orchestrator) deliverLocal(pkt *message.Packet) {
	o.Lock()
	handle := o.masterHandle
	o.Unlock()
	if handle != nil {
		handle(pkt)
	}
}

// forward writes pkt to a single worker's channel. Undeliverable requests
// are answered with a transport error.
func (o *Orchestrator) forward(pkt *message.Packet) {
	o.Lock()
	w, ok := o.workers[pkt.Dest]
	o.Unlock()

	var err error
	if !ok {
		err = fmt.Errorf("worker %v not found", pkt.Dest)
	} else {
		err = w.port.Send(pkt)
	}
	if err == nil {
		return
	}
	o.log.Debugf("failed to deliver %s to %v: %v", pkt.Data.Kind(), pkt.Dest, err)
	if pkt.ShouldReply && pkt.Source != pkt.Dest {
		o.route(message.TransportErrorReply(pkt, err.Error()))
	}
}

// broadcast copies pkt to every worker but its sender; the sender gets one reply.
func (o *Orchestrator) broadcast(pkt *message.Packet) {
	o.Lock()
	targets := make([]*worker, 0, len(o.workers))
	for id, w := range o.workers {
		if id != pkt.Source {
			targets = append(targets, w)
		}
	}
	o.Unlock()

	sent := 0
	copyPkt := message.WithDest(pkt, message.Bcast, false)
	for _, w := range targets {
		if err := w.port.Send(copyPkt); err != nil {
			o.log.Debugf("broadcast %s to %v failed: %v", pkt.Data.Kind(), w.id, err)
			continue
		}
		sent++
	}

	if pkt.ShouldReply {
		data := message.NewData(pkt.Data.Kind())
		data["sent"] = sent
		o.route(message.Reply(pkt, data))
	}
}

// onWorkerPacket refreshes the sender's record and routes the packet.
func (o *Orchestrator) onWorkerPacket(id message.Address, pkt *message.Packet) {
	o.Lock()
	if info, ok := o.infos[id]; ok {
		info.Touch(o.clock.Now())
	}
	o.Unlock()
	o.dispatch(id, pkt)
}

// onPipeEvent maps channel attach and detach to online and disconnected.
func (o *Orchestrator) onPipeEvent(id message.Address, attached bool) {
	if attached {
		o.advance(id, model.Online)
		return
	}
	o.Lock()
	defer o.Unlock()
	if info, ok := o.infos[id]; ok {
		info.SetState(model.Disconnected, o.clock.Now())
		o.log.Infof("worker %v disconnected", id)
	}
}

var stateOrder = map[model.State]int{
	model.Init:      0,
	model.Online:    1,
	model.Listening: 2,
	model.Pinging:   3,
}

// advance moves a worker forward in init → online → listening, never back.
func (o *Orchestrator) advance(id message.Address, state model.State) {
	o.Lock()
	defer o.Unlock()
	info, ok := o.infos[id]
	if !ok {
		return
	}
	current, known := stateOrder[info.State]
	if !known || current >= stateOrder[state] {
		return
	}
	info.SetState(state, o.clock.Now())
	o.log.Debugf("worker %v is %s", id, state)
}

// handleMaster serves the kinds the master answers itself.
func (o *Orchestrator) handleMaster(b *bridge.Bridge, pkt *message.Packet, reply bridge.ReplyFunc) bool {
	switch pkt.Data.Kind() {
	case message.Online:
		if !pkt.Source.IsWorker() {
			return false
		}
		o.checkVersion(pkt.Source, pkt.Data)
		o.advance(pkt.Source, model.Online)
		reply(message.NewData(message.Online))
	case message.Listening:
		if !pkt.Source.IsWorker() {
			return false
		}
		o.advance(pkt.Source, model.Listening)
		reply(message.NewData(message.Listening))
	case message.Apm:
		go o.aggregateApm(reply)
	case message.Shutdown:
		reply(message.NewData(message.Shutdown))
		go o.Shutdown()
	default:
		return false
	}
	return true
}

// checkVersion warns when a worker speaks another major protocol version.
func (o *Orchestrator) checkVersion(id message.Address, data message.Data) {
	theirs, _ := data["version"].(string)
	if theirs == "" {
		return
	}
	compatible, err := versionutil.Compatible(message.ProtocolVersion, theirs)
	if err != nil {
		o.log.Warnf("worker %v sent an unusable protocol version: %v", id, err)
		return
	}
	if !compatible {
		o.log.Warnf("worker %v speaks protocol %s, master speaks %s", id, theirs, message.ProtocolVersion)
	}
}
