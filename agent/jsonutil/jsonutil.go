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

// Package jsonutil contains various utilities for dealing with json data.
package jsonutil

import (
	"encoding/json"
	"fmt"
)

const jsonIndent = "  "

// Remarshal converts between shapes of the same document, typically from the
// untyped payload of a packet to a struct.
func Remarshal(obj interface{}, remarshalledObj interface{}) error {
	b, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, remarshalledObj)
}

// UnmarshalFile decodes the json file at filePath into dest.
func UnmarshalFile(filePath string, dest interface{}) error {
	content, err := ioUtil.ReadFile(filePath)
	if err != nil {
		return err
	}
	if err = json.Unmarshal(content, dest); err != nil {
		return fmt.Errorf("failed to parse %s: %v", filePath, err)
	}
	return nil
}

// MarshalIndent renders obj as indented json for logs. Returns empty string if marshal fails.
func MarshalIndent(obj interface{}) string {
	b, err := json.MarshalIndent(obj, "", jsonIndent)
	if err != nil {
		return ""
	}
	return string(b)
}
