// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"time"

	"github.com/relabs-tech/emg_controller/internal/control"
	"github.com/relabs-tech/emg_controller/internal/fault"
	"github.com/relabs-tech/emg_controller/internal/filter"
)

// Cycle is one control cycle as published on MQTT and the websocket.
type Cycle struct {
	Session string `json:"session"`
	Seq     uint64 `json:"seq"`
	Time    string `json:"time"` // RFC3339Nano

	EMGRaw   int    `json:"emg_raw"`
	EMGOK    bool   `json:"emg_ok"`
	EMGFault string `json:"emg_fault,omitempty"`

	Angle  int    `json:"angle"`            // classified command
	Valid  bool   `json:"valid"`            // false = no activation, neutral
	Reason string `json:"reason,omitempty"` // why the command is neutral

	Actuators []Actuator `json:"actuators"`
}

// Actuator is the per-channel part of a Cycle.
type Actuator struct {
	Name       string `json:"name"`
	Current    int    `json:"current"`
	CurrentOK  bool   `json:"current_ok"`
	Angle      int    `json:"angle"` // what was actually driven
	Overridden bool   `json:"overridden"`
}

// Anomaly is published once per overridden actuator or failed EMG read.
type Anomaly struct {
	Session string `json:"session"`
	Seq     uint64 `json:"seq"`
	Time    string `json:"time"`
	Channel string `json:"channel"`
	Code    string `json:"code"`
	Detail  string `json:"detail"`
}

// FromReport converts a loop report into its wire form.
func FromReport(session string, r control.Report) Cycle {
	c := Cycle{
		Session:   session,
		Seq:       r.Seq,
		Time:      r.At.Format(time.RFC3339Nano),
		EMGRaw:    r.EMG.Value,
		EMGOK:     r.EMG.OK(),
		Angle:     r.Command.Angle,
		Valid:     r.Command.Valid,
		Actuators: make([]Actuator, len(r.Actuators)),
	}
	if r.EMG.Err != nil {
		c.EMGFault = string(fault.Of(r.EMG.Err))
	}
	if reason := filter.Reason(r.Command); reason != nil {
		c.Reason = string(fault.Of(reason))
	}
	for i, a := range r.Actuators {
		c.Actuators[i] = Actuator{
			Name:       a.Channel.String(),
			Current:    a.Current.Value,
			CurrentOK:  a.Current.OK(),
			Angle:      a.Applied.Angle,
			Overridden: a.Overridden,
		}
	}
	return c
}

// AnomaliesFromReport lists the anomalies of one cycle, EMG first.
func AnomaliesFromReport(session string, r control.Report) []Anomaly {
	ts := r.At.Format(time.RFC3339Nano)
	var out []Anomaly
	if r.EMG.Err != nil {
		out = append(out, Anomaly{
			Session: session,
			Seq:     r.Seq,
			Time:    ts,
			Channel: r.EMG.Channel.String(),
			Code:    string(fault.Of(r.EMG.Err)),
			Detail:  r.EMG.Err.Error(),
		})
	}
	for _, a := range r.Actuators {
		if !a.Overridden {
			continue
		}
		an := Anomaly{
			Session: session,
			Seq:     r.Seq,
			Time:    ts,
			Channel: a.Channel.String(),
			Code:    string(fault.Of(a.Reason)),
		}
		if a.Reason != nil {
			an.Detail = a.Reason.Error()
		}
		out = append(out, an)
	}
	return out
}
