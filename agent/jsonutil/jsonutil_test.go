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

package jsonutil

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type ioUtilStub struct {
	content []byte
	err     error
}

func (a ioUtilStub) ReadFile(filename string) ([]byte, error) {
	return a.content, a.err
}

type sample struct {
	CPU    float64 `json:"cpu"`
	Memory struct {
		RSS float64 `json:"rss"`
	} `json:"memory"`
}

func ExampleMarshalIndent() {
	fmt.Println(MarshalIndent(map[string]int{"instances": 2}))
	// Output:
	// {
	//   "instances": 2
	// }
}

func TestRemarshal(t *testing.T) {
	payload := map[string]interface{}{
		"msg":    "pong",
		"cpu":    12.5,
		"memory": map[string]interface{}{"rss": 40.25},
	}
	var s sample
	assert.Nil(t, Remarshal(payload, &s))
	assert.Equal(t, 12.5, s.CPU)
	assert.Equal(t, 40.25, s.Memory.RSS)

	assert.NotNil(t, Remarshal(map[string]interface{}{"cpu": "high"}, &s))
}

func TestUnmarshalFile(t *testing.T) {
	defer func(original ioUtility) { ioUtil = original }(ioUtil)

	ioUtil = ioUtilStub{content: []byte(`{"cpu": 1.5}`)}
	var s sample
	assert.Nil(t, UnmarshalFile("cluster.json", &s))
	assert.Equal(t, 1.5, s.CPU)

	ioUtil = ioUtilStub{content: []byte(`{`)}
	err := UnmarshalFile("cluster.json", &s)
	assert.Contains(t, err.Error(), "cluster.json")

	ioUtil = ioUtilStub{err: fmt.Errorf("permission denied")}
	assert.NotNil(t, UnmarshalFile("cluster.json", &s))
}
