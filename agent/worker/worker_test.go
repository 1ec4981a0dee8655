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

package worker

import (
	"testing"
	"time"

	"github.com/clusterd/clusterd/agent/appconfig"
	"github.com/clusterd/clusterd/agent/log"
	"github.com/clusterd/clusterd/common/channel"
	"github.com/clusterd/clusterd/common/message"
	"github.com/stretchr/testify/assert"
	"go.nanomsg.org/mangos/v3"
)

func env(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestIDFromEnv(t *testing.T) {
	assert.Equal(t, message.Address(3), idFromEnv(env(map[string]string{appconfig.WorkerIDEnvVar: "3"})))
	assert.Equal(t, message.Master, idFromEnv(env(nil)))
	assert.Equal(t, message.Master, idFromEnv(env(map[string]string{appconfig.WorkerIDEnvVar: "bcast"})))
	assert.Equal(t, message.Master, idFromEnv(env(map[string]string{appconfig.WorkerIDEnvVar: "x"})))
}

func TestConnectWithoutMasterUsesLocalMaster(t *testing.T) {
	b, err := connect(log.NewMockLog(), env(nil))
	assert.Nil(t, err)
	assert.Equal(t, message.Master, b.Self())

	rep, err := b.Send(message.NewData(message.Ping), message.Master, time.Second)
	assert.Nil(t, err)
	assert.Equal(t, message.Pong, rep.Data.Kind())

	_, err = b.Send(message.NewData(message.Ping), message.Address(2), time.Second)
	assert.NotNil(t, err)
}

func TestConnectAnnouncesToMaster(t *testing.T) {
	address := channel.IPCAddress(t.TempDir(), channel.NewClusterID(), message.Address(4))
	master := channel.NewChannel()
	assert.Nil(t, master.Initialize())
	defer master.Close()
	assert.Nil(t, master.Listen(address))
	assert.Nil(t, master.SetOption(mangos.OptionRecvDeadline, 5*time.Second))

	b, err := connect(log.NewMockLog(), env(map[string]string{
		appconfig.WorkerIDEnvVar:   "4",
		appconfig.IPCAddressEnvVar: address,
	}))
	assert.Nil(t, err)
	assert.Equal(t, message.Address(4), b.Self())

	raw, err := master.Recv()
	assert.Nil(t, err)
	online, err := message.Decode(raw)
	assert.Nil(t, err)
	assert.Equal(t, message.Online, online.Data.Kind())
	assert.Equal(t, message.Address(4), online.Source)
	assert.Equal(t, message.ProtocolVersion, online.Data["version"])

	assert.Nil(t, Listening(b))
	raw, err = master.Recv()
	assert.Nil(t, err)
	listening, _ := message.Decode(raw)
	assert.Equal(t, message.Listening, listening.Data.Kind())
}

func TestShutdownRunsHooksAndExits(t *testing.T) {
	exited := make(chan int, 1)
	original := exit
	exit = func(code int) { exited <- code }
	defer func() { exit = original }()

	hooked := make(chan struct{}, 1)
	OnShutdown(func() { hooked <- struct{}{} })

	b, err := connect(log.NewMockLog(), env(nil))
	assert.Nil(t, err)
	rep, err := b.Send(message.NewData(message.Shutdown), message.Master, time.Second)
	assert.Nil(t, err)
	assert.Equal(t, message.Shutdown, rep.Data.Kind())

	select {
	case code := <-exited:
		assert.Equal(t, 0, code)
	case <-time.After(time.Second):
		t.Fatal("shutdown did not exit")
	}
	<-hooked
}
