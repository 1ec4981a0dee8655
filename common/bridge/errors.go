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

package bridge

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout rejects a send that got no reply in time.
	ErrTimeout = errors.New("bridge: reply timed out")

	// ErrMissingKind rejects a payload without a "msg" key before anything is sent.
	ErrMissingKind = errors.New("bridge: message has no kind")
)

// TransportError reports a packet that could not be routed or delivered.
type TransportError struct {
	Reason string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("bridge: transport error: %s", e.Reason)
}

// IsTimeout reports whether err came from an expired send.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsTransport reports whether err is a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
