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

// Package main represents the entry point of the cluster master.
// Parser contains logic for commandline handling flags
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/clusterd/clusterd/agent/version"
	"github.com/clusterd/clusterd/common/message"
	"golang.org/x/sys/unix"
)

const (
	versionFlag = "version"
	runCommand  = "run"
)

var printVersion bool

// parseFlags handles flags and returns the launch file to run. It exits on
// -version and on invalid usage.
func parseFlags() string {
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	flag.Usage = flagUsage
	flag.BoolVar(&printVersion, versionFlag, false, "")
	flag.Parse()

	if printVersion {
		fmt.Println("clusterd version: " + version.String(message.ProtocolVersion))
		os.Exit(0)
	}

	configPath, err := launchFile(flag.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flagUsage()
		os.Exit(int(unix.EINVAL))
	}
	return configPath
}

// launchFile validates the positional arguments: run <config>.
func launchFile(args []string) (string, error) {
	if len(args) == 0 || args[0] != runCommand {
		return "", fmt.Errorf("unknown command")
	}
	if len(args) != 2 || args[1] == "" {
		return "", fmt.Errorf("%s expects exactly one launch file", runCommand)
	}
	return args[1], nil
}

// flagUsage displays a command-line friendly usage message
func flagUsage() {
	fmt.Fprintln(os.Stderr, "\n\nCommand-line Usage:")
	fmt.Fprintln(os.Stderr, "\tclusterd run <config>\tstart the cluster described by a .json, .yml or .yaml launch file")
	fmt.Fprintln(os.Stderr, "\tclusterd -version\tprint the version")
}
