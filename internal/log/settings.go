// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
)

type contextKeyValues struct {
	key    string
	values []string
}

type settings struct {
	writer  io.Writer
	level   *Level
	format  *Format
	caller  *bool
	context []contextKeyValues
}

func newSettings(options []Option) (s settings) {
	for _, option := range options {
		option(&s)
	}
	return s
}

// mergeWith sets values of other settings on top of s
// for fields that are set in other.
func (s *settings) mergeWith(other settings) {
	if other.writer != nil {
		s.writer = other.writer
	}

	if other.level != nil {
		level := *other.level
		s.level = &level
	}

	if other.format != nil {
		format := *other.format
		s.format = &format
	}

	if other.caller != nil {
		caller := *other.caller
		s.caller = &caller
	}

	for _, kv := range other.context {
		values := make([]string, len(kv.values))
		copy(values, kv.values)
		s.addContext(kv.key, values...)
	}
}

func (s *settings) addContext(key string, values ...string) {
	for i := range s.context {
		if s.context[i].key == key {
			s.context[i].values = append(s.context[i].values, values...)
			return
		}
	}
	s.context = append(s.context, contextKeyValues{key: key, values: values})
}

func (s *settings) setDefaults() {
	if s.writer == nil {
		s.writer = os.Stdout
	}

	if s.level == nil {
		level := Info
		s.level = &level
	}

	if s.format == nil {
		format := FormatConsole
		s.format = &format
	}

	if s.caller == nil {
		caller := false
		s.caller = &caller
	}
}

func callerString(depth int) string {
	_, file, line, ok := runtime.Caller(depth)
	if !ok {
		return "???"
	}
	return fmt.Sprintf("%s:L%d", filepath.Base(file), line)
}
