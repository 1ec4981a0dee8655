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

package log

import "path/filepath"

// LoadLog builds the seelog configuration: console plus a rolling log file,
// with error and critical entries copied to errors.log.
func LoadLog(logDir string, logFile string, withTime bool) []byte {
	logFilePath := filepath.Join(logDir, logFile)
	errorFilePath := filepath.Join(logDir, ErrorFile)

	infoFormat := "%LEVEL %Msg%n"
	if withTime {
		infoFormat = "%Date %Time %LEVEL %Msg%n"
	}

	logConfig := `
<seelog type="adaptive" mininterval="2000000" maxinterval="100000000" critmsgcount="500" minlevel="info">
    <outputs formatid="fmtinfo">
        <console formatid="fmtinfo"/>
        `
	logConfig += `<rollingfile type="size" filename="` + logFilePath + `" maxsize="30000000" maxrolls="5"/>`
	logConfig += `
        <filter levels="error,critical" formatid="fmterror">
        `
	logConfig += `<rollingfile type="size" filename="` + errorFilePath + `" maxsize="10000000" maxrolls="5"/>`
	logConfig += `
        </filter>
    </outputs>
    <formats>
        <format id="fmterror" format="%Date %Time %LEVEL [%FuncShort @ %File.%Line] %Msg%n"/>
        `
	logConfig += `<format id="fmtinfo" format="` + infoFormat + `"/>`
	logConfig += `
    </formats>
</seelog>
`
	return []byte(logConfig)
}
