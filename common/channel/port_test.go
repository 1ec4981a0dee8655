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
	"errors"
	"testing"
	"time"

	"github.com/clusterd/clusterd/agent/log"
	"github.com/clusterd/clusterd/common/channel/mocks"
	"github.com/clusterd/clusterd/common/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestIPCPortDeliversDecodedPackets(t *testing.T) {
	pkt := message.CreatePacket(message.Address(2), message.Master, message.NewData("hello"), true)
	raw, _ := message.Encode(pkt)

	channelMock := &mocks.IChannel{}
	channelMock.On("Recv").Return(raw, nil).Once()
	channelMock.On("Recv").Return([]byte("{not json"), nil).Once()
	channelMock.On("Recv").Return(nil, ErrClosed)

	port := NewIPCPort(log.NewMockLog(), channelMock)
	received := make(chan *message.Packet, 2)
	port.OnPacket(func(p *message.Packet) { received <- p })
	port.Start()

	select {
	case <-port.Done():
	case <-time.After(time.Second):
		assert.Fail(t, "receive loop did not stop")
	}
	assert.Len(t, received, 1)
	got := <-received
	assert.Equal(t, pkt.ID, got.ID)
	assert.True(t, got.ShouldReply)
}

func TestIPCPortSendAndClose(t *testing.T) {
	channelMock := &mocks.IChannel{}
	channelMock.On("Send", mock.Anything).Return(errors.New("broken pipe"))
	channelMock.On("Close").Return(nil).Once()

	port := NewIPCPort(log.NewMockLog(), channelMock)
	err := port.Send(message.CreatePacket(message.Master, message.Address(1), message.NewData(message.Ping), true))
	assert.EqualError(t, err, "broken pipe")

	assert.Nil(t, port.Close())
	assert.Nil(t, port.Close())
	channelMock.AssertNumberOfCalls(t, "Close", 1)
}
