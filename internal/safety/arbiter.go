// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package safety

import (
	"fmt"

	"github.com/relabs-tech/emg_controller/internal/channel"
	"github.com/relabs-tech/emg_controller/internal/config"
	"github.com/relabs-tech/emg_controller/internal/diag"
	"github.com/relabs-tech/emg_controller/internal/fault"
	"github.com/relabs-tech/emg_controller/internal/filter"
	"github.com/relabs-tech/emg_controller/internal/sampler"
)

// Decision is the outcome of arbitrating one actuator for one cycle.
type Decision struct {
	Channel    channel.Channel
	Applied    filter.Command
	Overridden bool
	Reason     error // nil unless Overridden
}

// Arbiter vetoes the proposed command on any actuator whose current draw is
// above the limit or could not be read. Channels are judged independently.
type Arbiter struct {
	limit   int
	neutral filter.Command
	sink    diag.Sink
}

func NewArbiter(ctl config.Control, sink diag.Sink) *Arbiter {
	if sink == nil {
		sink = diag.Discard
	}
	return &Arbiter{
		limit:   ctl.CurrentLimit,
		neutral: filter.Command{Angle: ctl.NeutralAngle},
		sink:    sink,
	}
}

// Arbitrate returns the command to apply on ch and whether it was overridden.
func (a *Arbiter) Arbitrate(ch channel.Channel, current sampler.Sample, proposed filter.Command) (filter.Command, bool) {
	d := a.Decide(ch, current, proposed)
	return d.Applied, d.Overridden
}

// Decide is Arbitrate with the reason for an override attached.
func (a *Arbiter) Decide(ch channel.Channel, current sampler.Sample, proposed filter.Command) Decision {
	if current.OK() && current.Value <= a.limit {
		return Decision{Channel: ch, Applied: proposed}
	}

	var reason error
	if !current.OK() {
		reason = &fault.E{C: fault.Overcurrent, Op: "arbitrate", Channel: ch.String(), Msg: "current sensor fault", Err: current.Err}
		diag.Printf(a.sink, "current sensor fault on %s, stopping actuator: %v", ch, current.Err)
	} else {
		reason = &fault.E{C: fault.Overcurrent, Op: "arbitrate", Channel: ch.String(), Msg: fmt.Sprintf("current=%d limit=%d", current.Value, a.limit)}
		diag.Printf(a.sink, "overcurrent detected on %s (current=%d limit=%d)", ch, current.Value, a.limit)
	}
	return Decision{Channel: ch, Applied: a.neutral, Overridden: true, Reason: reason}
}
