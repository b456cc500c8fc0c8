// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package fault

import "errors"

// Code is a stable anomaly identifier. It is comparable and implements error.
type Code string

func (c Code) Error() string { return string(c) }

const (
	OK Code = "ok"

	// SampleOutOfRange: a reading fell outside [0, MaxRaw].
	SampleOutOfRange Code = "sample_out_of_range"
	// ReadFailed: the analog input capability returned no reading at all.
	ReadFailed Code = "read_failed"
	// NoActivation is a normal classification outcome, not a fault.
	NoActivation Code = "no_activation"
	// Overcurrent: an actuator's current draw exceeded the limit.
	Overcurrent Code = "overcurrent"

	Error Code = "error" // generic fallback
)

// E wraps a Code with the operation and channel it happened on.
type E struct {
	C       Code
	Op      string
	Channel string
	Msg     string
	Err     error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Channel != "" {
		s += " on " + e.Channel
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Is lets errors.Is(err, fault.Overcurrent) match a wrapped *E.
func (e *E) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.C
}

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	type coder interface{ Code() Code }
	var x coder
	if errors.As(err, &x) {
		return x.Code()
	}
	var c Code
	if errors.As(err, &c) {
		return c
	}
	return Error
}
