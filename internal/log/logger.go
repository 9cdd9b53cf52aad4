// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package log

import (
	"sync"
)

// Logger is the logger implementation structure.
// It is thread safe to use.
type Logger struct {
	settings settings
	mutex    *sync.Mutex // shared with child loggers
	childs   []*Logger
}

// New creates a new logger.
// If you want to create more loggers with different settings for the
// same writer, child loggers can be created using the New(options) method,
// to ensure thread safety on the same writer.
func New(options ...Option) *Logger {
	s := newSettings(options)
	s.setDefaults()

	return &Logger{
		settings: s,
		mutex:    new(sync.Mutex),
	}
}

// New creates a new thread safe child logger.
// It inherits the settings of its parent, and options given
// are applied on top of them.
func (l *Logger) New(options ...Option) *Logger {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	var childSettings settings
	childSettings.mergeWith(l.settings)
	childSettings.mergeWith(newSettings(options))
	childSettings.setDefaults()

	child := &Logger{
		settings: childSettings,
		mutex:    l.mutex,
	}
	l.childs = append(l.childs, child)
	return child
}

// Patch patches the existing settings with any option given.
// Context options are ignored on children so each child keeps
// its own package context.
func (l *Logger) Patch(options ...Option) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.patch(options...)
}

func (l *Logger) patch(options ...Option) {
	l.settings.mergeWith(newSettings(options))

	inherited := newSettings(options)
	inherited.context = nil
	l.patchChilds(inherited)
}

func (l *Logger) patchChilds(s settings) {
	for _, child := range l.childs {
		child.settings.mergeWith(s)
		child.patchChilds(s)
	}
}

// PatchLevel patches the level of the logger and its children.
func (l *Logger) PatchLevel(level Level) {
	l.Patch(SetLevel(level))
}
