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

// Package version contains clusterd version information
package version

import "fmt"

// Version is the release version of clusterd.
const Version = "1.0.0"

// String returns the release and protocol versions.
func String(protocol string) string {
	return fmt.Sprintf("%s (protocol %s)", Version, protocol)
}
