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

package versionutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompare(t *testing.T) {
	var testCases = []struct {
		this, other string
		sign        int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.2.0", "1.10.0", -1},
		{"2.0.0", "1.9.9", 1},
		{"1.0.0-beta", "1.0.0", -1},
	}
	for _, tc := range testCases {
		result, err := Compare(tc.this, tc.other)
		assert.Nil(t, err)
		switch {
		case tc.sign < 0:
			assert.True(t, result < 0, "%s < %s", tc.this, tc.other)
		case tc.sign > 0:
			assert.True(t, result > 0, "%s > %s", tc.this, tc.other)
		default:
			assert.Equal(t, 0, result)
		}
	}

	_, err := Compare("1.0", "1.0.0")
	assert.NotNil(t, err)
}

func TestCompatible(t *testing.T) {
	ok, err := Compatible("1.0.0", "1.4.2")
	assert.Nil(t, err)
	assert.True(t, ok)

	ok, err = Compatible("1.0.0", "2.0.0")
	assert.Nil(t, err)
	assert.False(t, ok)

	_, err = Compatible("1.0.0", "latest")
	assert.NotNil(t, err)
}
