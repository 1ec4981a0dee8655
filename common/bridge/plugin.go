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
	"sync"
)

// PluginInit initializes a compiled-in extension against a bridge.
type PluginInit func(b *Bridge, shared map[string]interface{}) error

var plugins = struct {
	sync.RWMutex
	m map[string]PluginInit
}{m: make(map[string]PluginInit)}

// RegisterPlugin makes name loadable through require and plugin messages.
// Registering the same name again replaces it.
func RegisterPlugin(name string, initFn PluginInit) {
	plugins.Lock()
	defer plugins.Unlock()
	plugins.m[name] = initFn
}

func lookupPlugin(name string) (PluginInit, bool) {
	plugins.RLock()
	defer plugins.RUnlock()
	initFn, ok := plugins.m[name]
	return initFn, ok
}
