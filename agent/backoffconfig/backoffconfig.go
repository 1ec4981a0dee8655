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

// Package backoffconfig holds the retry and restart delay policies of the cluster.
package backoffconfig

import (
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultMultiplier      = 2.0
	defaultJitterFactor    = 0.2
	defaultInitialInterval = 50 * time.Millisecond
	defaultMaxInterval     = 2 * time.Second
	defaultMaxRetries      = 10
)

// GetDefaultDialBackoff returns the policy a worker uses to reach its master socket.
func GetDefaultDialBackoff() (backoff.BackOff, error) {
	return GetDialBackoff(defaultInitialInterval, defaultMaxRetries)
}

// GetDialBackoff returns an exponential policy that gives up after maxRetries attempts.
// maxRetries is clamped to [1, 100].
func GetDialBackoff(initialInterval time.Duration, maxRetries int) (backoff.BackOff, error) {
	if initialInterval <= 0 {
		initialInterval = defaultInitialInterval
	}
	maxRetries, err := bound(maxRetries, 1, 100)
	if err != nil {
		return nil, err
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = initialInterval
	exp.MaxInterval = defaultMaxInterval
	exp.Multiplier = defaultMultiplier
	exp.RandomizationFactor = defaultJitterFactor
	// the retry count is the only stop condition
	exp.MaxElapsedTime = 0
	exp.Reset()
	return backoff.WithMaxRetries(exp, uint64(maxRetries)), nil
}

// RestartDelay is the wait before re-forking a worker that already restarted
// `restarts` times: base + step*restarts.
func RestartDelay(base time.Duration, step time.Duration, restarts int) time.Duration {
	if restarts < 0 {
		restarts = 0
	}
	return base + step*time.Duration(restarts)
}

// bound constrains number to [min, max].
func bound(number int, min int, max int) (int, error) {
	if max < min {
		return number, errors.New(fmt.Sprintf("Invalid input. min (%d) is greater than max (%d)", min, max))
	}
	if number < min {
		return min, nil
	}
	if number > max {
		return max, nil
	}
	return number, nil
}
