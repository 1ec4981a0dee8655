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

package bridge

import (
	"fmt"
	"runtime/debug"

	"github.com/clusterd/clusterd/common/message"
	"github.com/clusterd/clusterd/common/sysinfo"
	"golang.org/x/sys/unix"
)

// DefaultSignal is raised by a signal message that names none.
const DefaultSignal = "SIGINFO"

// DefaultHandler answers the built-in kinds every endpoint understands.
func DefaultHandler(b *Bridge, pkt *message.Packet, reply ReplyFunc) bool {
	switch pkt.Data.Kind() {
	case message.Ping:
		reply(pong())
	case message.Signal:
		reply(raiseSignal(pkt.Data))
	case message.Apm:
		reply(snapshot(b))
	case message.Require, message.Plugin:
		reply(loadPlugin(b, pkt.Data))
	default:
		return false
	}
	return true
}

func pong() message.Data {
	mem := sysinfo.MemoryUsage()
	data := message.NewData(message.Pong)
	data["cpu"] = sysinfo.CPUPercent()
	data["memory"] = map[string]interface{}{
		"rss":       mem.RSS,
		"heapTotal": mem.HeapTotal,
		"heapUsed":  mem.HeapUsed,
		"external":  mem.External,
	}
	return data
}

// raiseSignal re-raises a signal on this process. A numeric "code" overrides the name.
func raiseSignal(req message.Data) message.Data {
	data := message.NewData(message.Signal)
	name, _ := req["signal"].(string)
	if name == "" {
		name = DefaultSignal
	}
	sig := unix.SignalNum(name)
	if code, ok := number(req["code"]); ok {
		sig = unix.Signal(int(code))
	}
	data["signal"] = name
	if sig == 0 {
		data[message.KeyError] = fmt.Sprintf("unknown signal %s", name)
		return data
	}
	if err := unix.Kill(unix.Getpid(), sig); err != nil {
		data[message.KeyError] = err.Error()
	}
	return data
}

func snapshot(b *Bridge) message.Data {
	data := message.NewData(message.Apm)
	snap, err := b.Metrics().Snapshot()
	if err != nil {
		data[message.KeyError] = err.Error()
		return data
	}
	for k, v := range snap {
		data[k] = v
	}
	return data
}

func loadPlugin(b *Bridge, req message.Data) (data message.Data) {
	data = message.NewData(req.Kind())
	name, _ := req["name"].(string)
	data["name"] = name
	defer func() {
		if r := recover(); r != nil {
			b.log.Errorf("plugin %s panicked: %v\n%s", name, r, debug.Stack())
			data[message.KeyError] = fmt.Sprintf("plugin %s panicked: %v", name, r)
		}
	}()

	initFn, ok := lookupPlugin(name)
	if !ok {
		data[message.KeyError] = fmt.Sprintf("plugin %s is not registered", name)
		return data
	}
	if err := initFn(b, b.sharedContext()); err != nil {
		data[message.KeyError] = err.Error()
	}
	return data
}

// number reads a json number that may arrive as any numeric Go type.
func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
