// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package filter turns a raw EMG reading into an actuator command using a
// single activation threshold. It keeps no state between cycles, so a
// single noisy sample above the threshold moves the actuators.
package filter

import (
	"github.com/relabs-tech/emg_controller/internal/config"
	"github.com/relabs-tech/emg_controller/internal/fault"
	"github.com/relabs-tech/emg_controller/internal/mathx"
)

// Command is a normalized actuator setpoint in degrees.
// Valid is true only when the angle came from genuine muscle activation.
type Command struct {
	Angle int  `json:"angle"`
	Valid bool `json:"valid"`
}

// Classifier maps raw EMG counts onto the actuator angle range.
type Classifier struct {
	threshold int
	maxRaw    int
	minAngle  int
	maxAngle  int
	neutral   int
}

func NewClassifier(ctl config.Control) Classifier {
	return Classifier{
		threshold: ctl.ActivationThreshold,
		maxRaw:    ctl.MaxRaw,
		minAngle:  ctl.MinAngle,
		maxAngle:  ctl.MaxAngle,
		neutral:   ctl.NeutralAngle,
	}
}

// Neutral returns the fail-safe command.
func (c Classifier) Neutral() Command {
	return Command{Angle: c.neutral}
}

// Classify returns the command for one raw reading. Readings strictly above
// the threshold are rescaled from (threshold, maxRaw] to [minAngle, maxAngle];
// anything else, including the error sentinel, yields the neutral command.
func (c Classifier) Classify(raw int) Command {
	if raw <= c.threshold {
		return c.Neutral()
	}
	return Command{
		Angle: mathx.MapRound(raw, c.threshold, c.maxRaw, c.minAngle, c.maxAngle),
		Valid: true,
	}
}

// Reason explains an invalid command. Valid commands have no reason.
func Reason(cmd Command) error {
	if cmd.Valid {
		return nil
	}
	return fault.NoActivation
}
