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

package fileutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteAndReadAllText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run", "api.pid")

	assert.False(t, Exists(path))
	assert.Nil(t, WriteAllText(path, "4242"))
	assert.True(t, Exists(path))
	assert.True(t, IsFile(path))
	assert.False(t, IsFile(filepath.Dir(path)))

	text, err := ReadAllText(path)
	assert.Nil(t, err)
	assert.Equal(t, "4242", text)

	assert.Nil(t, DeleteFile(path))
	assert.False(t, Exists(path))
	assert.Nil(t, DeleteFile(path))
}

func TestOpenAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "out.log")
	for _, line := range []string{"first\n", "second\n"} {
		f, err := OpenAppend(path)
		assert.Nil(t, err)
		f.WriteString(line)
		f.Close()
	}
	text, err := ReadAllText(path)
	assert.Nil(t, err)
	assert.Equal(t, "first\nsecond\n", text)
}

func TestExpandTemplate(t *testing.T) {
	var testCases = []struct {
		template string
		shared   bool
		expected string
	}{
		{"/var/log/{name}.log", false, "/var/log/api-3.log"},
		{"/var/log/{name}.log", true, "/var/log/api.log"},
		{"/var/log/{name}-{id}.out", false, "/var/log/api-3.out"},
		{"/var/run/app", false, "/var/run/app-3"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, ExpandTemplate(tc.template, "api", "3", tc.shared), tc.template)
	}
}
