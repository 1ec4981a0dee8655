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

// Package versionutil compares protocol versions exchanged between master and workers.
package versionutil

import (
	"fmt"

	"github.com/coreos/go-semver/semver"
)

// Compare returns 0 if two versions are equal a negative number if this < other and a positive number if this > other
func Compare(this string, other string) (int, error) {
	thisVersion, otherVersion, err := parse(this, other)
	if err != nil {
		return 0, err
	}
	return thisVersion.Compare(*otherVersion), nil
}

// Compatible reports whether two versions of the protocol can talk to each
// other, which is the case when their major versions match.
func Compatible(this string, other string) (bool, error) {
	thisVersion, otherVersion, err := parse(this, other)
	if err != nil {
		return false, err
	}
	return thisVersion.Major == otherVersion.Major, nil
}

func parse(this string, other string) (*semver.Version, *semver.Version, error) {
	thisVersion, err := semver.NewVersion(this)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid version %q: %v", this, err)
	}
	otherVersion, err := semver.NewVersion(other)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid version %q: %v", other, err)
	}
	return thisVersion, otherVersion, nil
}
