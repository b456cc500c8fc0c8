// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package diag holds the advisory diagnostic sinks. A sink accepts one
// human-readable line at a time and never reports failure back: nothing a
// sink does may influence a control decision.
package diag

import (
	"fmt"
	"log"
	"sync"
)

// Sink accepts a diagnostic line. Fire-and-forget.
type Sink interface {
	Println(line string)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(line string)

func (f SinkFunc) Println(line string) { f(line) }

// Printf formats a line and hands it to s. A nil sink is ignored.
func Printf(s Sink, format string, args ...any) {
	if s == nil {
		return
	}
	s.Println(fmt.Sprintf(format, args...))
}

// Discard drops every line.
var Discard Sink = SinkFunc(func(string) {})

// Logger writes lines through a standard library logger.
type Logger struct {
	l *log.Logger
}

// NewLogger returns a sink writing to l, or to the default logger if l is nil.
func NewLogger(l *log.Logger) *Logger {
	if l == nil {
		l = log.Default()
	}
	return &Logger{l: l}
}

func (s *Logger) Println(line string) { s.l.Println(line) }

// Multi fans each line out to every sink.
type Multi []Sink

func (m Multi) Println(line string) {
	for _, s := range m {
		if s != nil {
			s.Println(line)
		}
	}
}

// Recorder keeps every line in memory. Safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *Recorder) Println(line string) {
	r.mu.Lock()
	r.lines = append(r.lines, line)
	r.mu.Unlock()
}

// Lines returns a copy of the recorded lines.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}

// Reset forgets all recorded lines.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.lines = nil
	r.mu.Unlock()
}
