// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sampler

import (
	"fmt"

	"github.com/relabs-tech/emg_controller/internal/channel"
	"github.com/relabs-tech/emg_controller/internal/config"
	"github.com/relabs-tech/emg_controller/internal/diag"
	"github.com/relabs-tech/emg_controller/internal/fault"
	"github.com/relabs-tech/emg_controller/internal/mathx"
)

// Reader is the analog input capability: one raw reading per call.
type Reader interface {
	ReadRaw(ch channel.Channel) (int, error)
}

// Sample is one reading of one channel. Either Err is nil and Value lies in
// [0, MaxRaw], or Err is set and Value holds the error sentinel.
type Sample struct {
	Channel channel.Channel
	Value   int
	Err     error
}

// OK reports whether the reading succeeded.
func (s Sample) OK() bool { return s.Err == nil }

// Sampler validates readings from a Reader. It never returns an error:
// failures are encoded in the Sample.
type Sampler struct {
	in       Reader
	maxRaw   int
	sentinel int
	sink     diag.Sink
}

// New returns a Sampler using the raw range and sentinel from ctl.
func New(in Reader, ctl config.Control, sink diag.Sink) *Sampler {
	if sink == nil {
		sink = diag.Discard
	}
	return &Sampler{
		in:       in,
		maxRaw:   ctl.MaxRaw,
		sentinel: ctl.ErrorSentinel,
		sink:     sink,
	}
}

// Read acquires one reading from ch.
func (s *Sampler) Read(ch channel.Channel) Sample {
	raw, err := s.in.ReadRaw(ch)
	if err != nil {
		return s.fail(ch, &fault.E{C: fault.ReadFailed, Op: "read", Channel: ch.String(), Err: err})
	}
	if !mathx.Between(raw, 0, s.maxRaw) {
		return s.fail(ch, &fault.E{
			C:       fault.SampleOutOfRange,
			Op:      "read",
			Channel: ch.String(),
			Msg:     fmt.Sprintf("raw=%d want [0,%d]", raw, s.maxRaw),
		})
	}
	return Sample{Channel: ch, Value: raw}
}

// ReadAll reads every channel in order.
func (s *Sampler) ReadAll(chs []channel.Channel) []Sample {
	out := make([]Sample, len(chs))
	for i, ch := range chs {
		out[i] = s.Read(ch)
	}
	return out
}

func (s *Sampler) fail(ch channel.Channel, err error) Sample {
	diag.Printf(s.sink, "error reading input %s: %v", ch, err)
	return Sample{Channel: ch, Value: s.sentinel, Err: err}
}
