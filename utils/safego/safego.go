/*
 * Copyright 2025 Olake By Datazip
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package safego

import (
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/datazip-inc/slicer/utils/logger"
)

var startTime time.Time

// Go runs f in a new goroutine; a panic is logged instead of crashing the process.
func Go(f func()) {
	go func() {
		defer Recovery(false)
		f()
	}()
}

// Recovery must be deferred directly. When exit is set, a recovered panic terminates the process
// with status 1 after the stack has been logged.
func Recovery(exit bool) {
	err := recover()
	if err == nil {
		return
	}
	logger.Error(err)
	// capture stacks trace
	for _, str := range strings.Split(string(debug.Stack()), "\n") {
		logger.Error(strings.ReplaceAll(str, "\t", ""))
	}
	if exit {
		logger.Infof("Time of execution %v", time.Since(startTime).String())
		os.Exit(1)
	}
}

func init() {
	startTime = time.Now()
}
