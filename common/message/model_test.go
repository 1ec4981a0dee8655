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

package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextIDIsIncreasing(t *testing.T) {
	a := NextID()
	b := NextID()
	assert.True(t, b > a)
}

func TestReplySwapsAddresses(t *testing.T) {
	req := CreatePacket(Address(3), Address(5), NewData(Ping), true)
	rep := Reply(req, NewData(Pong))
	assert.Equal(t, Address(5), rep.Source)
	assert.Equal(t, Address(3), rep.Dest)
	assert.Equal(t, req.ID, rep.ID)
	assert.False(t, rep.ShouldReply)
	assert.Equal(t, Topic, rep.Topic)
}

func TestReplyToBroadcastComesFromMaster(t *testing.T) {
	req := CreatePacket(Address(2), Bcast, NewData("hello"), true)
	rep := Reply(req, NewData("hello"))
	assert.Equal(t, Master, rep.Source)
	assert.Equal(t, Address(2), rep.Dest)
}

func TestTransportErrorReply(t *testing.T) {
	req := CreatePacket(Address(2), Address(9), NewData("job"), true)
	rep := TransportErrorReply(req, "no such worker")
	assert.Equal(t, "no such worker", rep.TransportError)
	assert.Equal(t, Kind("job"), rep.Data.Kind())
	assert.Equal(t, "", rep.Data.Error())
}

func TestEncodeAddresses(t *testing.T) {
	pkt := &Packet{Topic: Topic, Source: Master, Dest: Bcast, Data: NewData(Ping), ID: 7}
	b, err := Encode(pkt)
	assert.Nil(t, err)
	assert.JSONEq(t, `{"topic":"clusterd:bridge","source":"master","dest":"bcast","data":{"msg":"ping"},"shouldReply":false,"id":7}`, string(b))

	decoded, err := Decode([]byte(`{"topic":"clusterd:bridge","source":4,"dest":"master","data":{"msg":"pong","cpu":12.5},"shouldReply":true,"id":42,"transportError":"x"}`))
	assert.Nil(t, err)
	assert.Equal(t, Address(4), decoded.Source)
	assert.Equal(t, Master, decoded.Dest)
	assert.Equal(t, Pong, decoded.Data.Kind())
	assert.Equal(t, 12.5, decoded.Data["cpu"])
	assert.Equal(t, "x", decoded.TransportError)
}

func TestDecodeRejectsBadAddress(t *testing.T) {
	_, err := Decode([]byte(`{"topic":"clusterd:bridge","source":-3,"dest":"master","data":{},"id":1}`))
	assert.NotNil(t, err)
	_, err = Decode([]byte(`{"topic":"clusterd:bridge","source":"nobody","dest":"master","data":{},"id":1}`))
	assert.NotNil(t, err)
}

func TestParseAddress(t *testing.T) {
	for in, want := range map[string]Address{"master": Master, "bcast": Bcast, "12": Address(12)} {
		got, err := ParseAddress(in)
		assert.Nil(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseAddress("0")
	assert.NotNil(t, err)
}
