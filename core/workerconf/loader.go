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

package workerconf

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"
)

var (
	// ErrMalformed wraps any launch file that cannot be decoded into app records.
	ErrMalformed = errors.New("workerconf: malformed launch configuration")

	// ErrEmptyAppList is returned for a launch file without apps.
	ErrEmptyAppList = errors.New("workerconf: no apps configured")
)

// LoadFile reads a JSON or YAML launch file holding either an array of app
// records or an object with an "apps" array.
func LoadFile(path string) ([]WorkerConf, error) {
	content, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var root interface{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		var doc interface{}
		if err = yaml.Unmarshal(content, &doc); err == nil {
			root = fromYAML(doc)
		}
	default:
		err = json.Unmarshal(content, &root)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return Parse(root)
}

// Parse normalizes every app record found in a decoded launch document.
func Parse(root interface{}) ([]WorkerConf, error) {
	if obj, ok := root.(map[string]interface{}); ok {
		root = obj["apps"]
	}
	apps, ok := root.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: expected a list of apps", ErrMalformed)
	}
	if len(apps) == 0 {
		return nil, ErrEmptyAppList
	}
	confs := make([]WorkerConf, 0, len(apps))
	for i, app := range apps {
		raw, ok := app.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: app %d is not an object", ErrMalformed, i)
		}
		conf, err := New(raw)
		if err != nil {
			return nil, err
		}
		confs = append(confs, conf)
	}
	return confs, nil
}

// fromYAML turns the map[interface{}]interface{} values yaml.v2 produces into JSON shaped maps.
func fromYAML(v interface{}) interface{} {
	switch t := v.(type) {
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = fromYAML(val)
		}
		return m
	case []interface{}:
		for i, val := range t {
			t[i] = fromYAML(val)
		}
		return t
	default:
		return v
	}
}
