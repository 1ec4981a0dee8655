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

//go:build !linux
// +build !linux

package sysinfo

import (
	"errors"
)

var errUnsupported = errors.New("procfs is not available on this platform")

func loadAverage1() (float64, error) {
	return 0, errUnsupported
}

func residentBytes() (uint64, error) {
	return 0, errUnsupported
}
