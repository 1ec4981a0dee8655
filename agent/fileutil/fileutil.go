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

//Package fileutil contains utilities for working with the file system.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/clusterd/clusterd/agent/appconfig"
)

// DeleteFile deletes the specified file. A missing file is not an error.
func DeleteFile(filepath string) (err error) {
	if err = fs.Remove(filepath); err != nil && fs.IsNotExist(err) {
		return nil
	}
	return err
}

// ReadAllText reads all content from the specified file
func ReadAllText(filePath string) (text string, err error) {
	content, err := fs.ReadFile(filePath)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// WriteAllText writes all text content to the specified file, creating its directory.
func WriteAllText(filePath string, text string) (err error) {
	if err = MakeDirs(filepath.Dir(filePath)); err != nil {
		return err
	}
	if err = fs.WriteFile(filePath, []byte(text), appconfig.ReadWriteAccess); err != nil {
		return fmt.Errorf("failed to write %v: %v", filePath, err)
	}
	return nil
}

// OpenAppend opens filePath for appending, creating it and its directory when needed.
func OpenAppend(filePath string) (*os.File, error) {
	if err := MakeDirs(filepath.Dir(filePath)); err != nil {
		return nil, err
	}
	f, err := fs.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, appconfig.ReadWriteAccess)
	if err != nil {
		return nil, fmt.Errorf("failed to open the file at %v: %v", filePath, err)
	}
	return f, nil
}

// Exists returns true if the given file exists, false otherwise, ignoring any underlying error
func Exists(filePath string) bool {
	exist, _ := LocalFileExist(filePath)
	return exist
}

// LocalFileExist returns true if the given file exists, false otherwise.
func LocalFileExist(path string) (bool, error) {
	_, err := fs.Stat(path)
	if err == nil {
		return true, nil
	}
	if fs.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// MakeDirs create the directories along the path if missing.
func MakeDirs(destinationDir string) (err error) {
	if destinationDir == "" || destinationDir == "." {
		return nil
	}
	if err = fs.MkdirAll(destinationDir, appconfig.ReadWriteExecuteAccess); err != nil {
		err = fmt.Errorf("failed to create directory %v. %v", destinationDir, err)
	}
	return
}

// IsFile returns true if the path exists and is a regular file.
func IsFile(srcPath string) bool {
	info, err := fs.Stat(srcPath)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// ExpandTemplate fills {name} and {id} in a per-worker file name. Without an
// {id} placeholder "-<id>" goes before the extension unless the file is shared.
func ExpandTemplate(template string, name string, id string, shared bool) string {
	path := strings.ReplaceAll(template, "{name}", name)
	if strings.Contains(path, "{id}") {
		return strings.ReplaceAll(path, "{id}", id)
	}
	if shared {
		return path
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "-" + id + ext
}
