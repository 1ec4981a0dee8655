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

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLaunchFile(t *testing.T) {
	path, err := launchFile([]string{"run", "cluster.yml"})
	assert.Nil(t, err)
	assert.Equal(t, "cluster.yml", path)

	for _, args := range [][]string{nil, {"start", "cluster.yml"}, {"run"}, {"run", "a.json", "b.json"}, {"run", ""}} {
		_, err = launchFile(args)
		assert.NotNil(t, err, "%v", args)
	}
}
