// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package control

import (
	"context"
	"fmt"
	"time"

	"github.com/relabs-tech/emg_controller/internal/channel"
	"github.com/relabs-tech/emg_controller/internal/config"
	"github.com/relabs-tech/emg_controller/internal/diag"
	"github.com/relabs-tech/emg_controller/internal/filter"
	"github.com/relabs-tech/emg_controller/internal/safety"
	"github.com/relabs-tech/emg_controller/internal/sampler"
)

// Driver is the actuator drive capability. It is assumed to always succeed.
type Driver interface {
	Drive(ch channel.Channel, angle int)
}

// Observer is told about every completed cycle.
type Observer interface {
	ObserveCycle(r Report)
}

// ObserverFunc adapts a function to an Observer.
type ObserverFunc func(r Report)

func (f ObserverFunc) ObserveCycle(r Report) { f(r) }

// ActuatorReport is what happened to one actuator in one cycle.
type ActuatorReport struct {
	Channel    channel.Channel
	Current    sampler.Sample
	Applied    filter.Command
	Overridden bool
	Reason     error
}

// Report describes one full cycle.
type Report struct {
	Seq       uint64
	At        time.Time
	EMG       sampler.Sample
	Command   filter.Command
	Actuators []ActuatorReport
}

// Overridden returns the actuator channels that were forced to neutral.
func (r Report) Overridden() []channel.Channel {
	var out []channel.Channel
	for _, a := range r.Actuators {
		if a.Overridden {
			out = append(out, a.Channel)
		}
	}
	return out
}

// Loop runs the read-filter-arbitrate-actuate cycle on a single goroutine.
type Loop struct {
	cfg *config.Config

	emg       channel.Channel
	currents  []channel.Channel
	actuators []channel.Channel

	sampler    *sampler.Sampler
	classifier filter.Classifier
	arbiter    *safety.Arbiter
	driver     Driver
	pacer      Pacer
	observers  []Observer
	now        func() time.Time

	seq uint64
}

// New binds every channel named in cfg and returns a ready loop.
// cfg is read-only from here on.
func New(cfg *config.Config, in sampler.Reader, drv Driver, pacer Pacer, sink diag.Sink, observers ...Observer) (*Loop, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("control: invalid config: %w", err)
	}
	if in == nil || drv == nil || pacer == nil {
		return nil, fmt.Errorf("control: reader, driver and pacer are required")
	}
	if sink == nil {
		sink = diag.Discard
	}

	emg, currents, actuators := Bind(cfg)
	return &Loop{
		cfg:        cfg,
		emg:        emg,
		currents:   currents,
		actuators:  actuators,
		sampler:    sampler.New(in, cfg.Control, sink),
		classifier: filter.NewClassifier(cfg.Control),
		arbiter:    safety.NewArbiter(cfg.Control, sink),
		driver:     drv,
		pacer:      pacer,
		observers:  observers,
		now:        time.Now,
	}, nil
}

// Bind derives the logical channels from the configured bindings. Input
// index 0 is the EMG line, inputs 1..N are the current sensors of
// actuators 0..N-1.
func Bind(cfg *config.Config) (emg channel.Channel, currents, actuators []channel.Channel) {
	emg = channel.In(0, cfg.EMG.Name)
	currents = make([]channel.Channel, len(cfg.Currents))
	for i, b := range cfg.Currents {
		currents[i] = channel.In(i+1, b.Name)
	}
	actuators = make([]channel.Channel, len(cfg.Actuators))
	for i, b := range cfg.Actuators {
		actuators[i] = channel.Out(i, b.Name)
	}
	return emg, currents, actuators
}

// Actuators returns the bound actuator channels.
func (l *Loop) Actuators() []channel.Channel {
	out := make([]channel.Channel, len(l.actuators))
	copy(out, l.actuators)
	return out
}

// Cycle runs one iteration: sample, classify, arbitrate, drive.
func (l *Loop) Cycle() Report {
	l.seq++
	r := Report{Seq: l.seq, At: l.now()}

	r.EMG = l.sampler.Read(l.emg)
	currents := l.sampler.ReadAll(l.currents)

	// A failed EMG read already carries the sentinel, which classifies as neutral.
	r.Command = l.classifier.Classify(r.EMG.Value)

	r.Actuators = make([]ActuatorReport, len(l.actuators))
	for i, ch := range l.actuators {
		d := l.arbiter.Decide(ch, currents[i], r.Command)
		l.driver.Drive(ch, d.Applied.Angle)
		r.Actuators[i] = ActuatorReport{
			Channel:    ch,
			Current:    currents[i],
			Applied:    d.Applied,
			Overridden: d.Overridden,
			Reason:     d.Reason,
		}
	}

	for _, o := range l.observers {
		o.ObserveCycle(r)
	}
	return r
}

// Run cycles until ctx is done. Nothing inside a cycle can stop the loop;
// in production ctx never ends.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		l.Cycle()
		if err := l.pacer.Wait(ctx); err != nil {
			return err
		}
	}
}
