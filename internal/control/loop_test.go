// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package control

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/emg_controller/internal/channel"
	"github.com/relabs-tech/emg_controller/internal/config"
	"github.com/relabs-tech/emg_controller/internal/diag"
	"github.com/relabs-tech/emg_controller/internal/fault"
	"github.com/relabs-tech/emg_controller/internal/filter"
)

// fakeInputs serves raw values by input index; index 0 is EMG.
type fakeInputs struct {
	raw  map[int]int
	errs map[int]error
}

func newInputs(emg int, currents ...int) *fakeInputs {
	f := &fakeInputs{raw: map[int]int{0: emg}, errs: map[int]error{}}
	for i, c := range currents {
		f.raw[i+1] = c
	}
	return f
}

func (f *fakeInputs) ReadRaw(ch channel.Channel) (int, error) {
	if err := f.errs[ch.Index]; err != nil {
		return 0, err
	}
	return f.raw[ch.Index], nil
}

type recordingDriver struct {
	calls []driveCall
}

type driveCall struct {
	ch    channel.Channel
	angle int
}

func (d *recordingDriver) Drive(ch channel.Channel, angle int) {
	d.calls = append(d.calls, driveCall{ch, angle})
}

func (d *recordingDriver) angles() []int {
	out := make([]int, len(d.calls))
	for i, c := range d.calls {
		out[i] = c.angle
	}
	return out
}

// countingPacer cancels the loop after n waits.
type countingPacer struct {
	n      int
	waits  int
	cancel context.CancelFunc
}

func (p *countingPacer) Wait(ctx context.Context) error {
	p.waits++
	if p.waits >= p.n {
		p.cancel()
	}
	return ctx.Err()
}

func newLoop(t *testing.T, in *fakeInputs, sink diag.Sink, obs ...Observer) (*Loop, *recordingDriver) {
	t.Helper()
	drv := &recordingDriver{}
	l, err := New(config.Default(), in, drv, &countingPacer{n: 1, cancel: func() {}}, sink, obs...)
	require.NoError(t, err)
	return l, drv
}

func TestCycle_ActivationAllSafe(t *testing.T) {
	l, drv := newLoop(t, newInputs(700, 100, 200, 300, 400, 512), nil)

	r := l.Cycle()

	assert.Equal(t, filter.Command{Angle: 69, Valid: true}, r.Command)
	assert.Equal(t, []int{69, 69, 69, 69, 69}, drv.angles())
	assert.Empty(t, r.Overridden())
	for i, a := range r.Actuators {
		assert.Equal(t, channel.Out(i, config.Default().Actuators[i].Name), a.Channel)
		assert.NoError(t, a.Reason)
	}
}

func TestCycle_BelowThresholdIgnoresCurrents(t *testing.T) {
	l, drv := newLoop(t, newInputs(300, 0, 900, 100, 1023, 0), nil)

	r := l.Cycle()

	assert.Equal(t, filter.Command{Angle: 90, Valid: false}, r.Command)
	assert.Equal(t, []int{90, 90, 90, 90, 90}, drv.angles())
}

func TestCycle_OvercurrentOnOneChannel(t *testing.T) {
	var sink diag.Recorder
	l, drv := newLoop(t, newInputs(700, 100, 100, 600, 100, 100), &sink)

	r := l.Cycle()

	assert.Equal(t, []int{69, 69, 90, 69, 69}, drv.angles())
	require.Len(t, r.Overridden(), 1)
	assert.Equal(t, "servo3", r.Overridden()[0].Name)
	assert.True(t, r.Actuators[2].Overridden)
	assert.False(t, r.Actuators[2].Applied.Valid)
	assert.Equal(t, fault.Overcurrent, fault.Of(r.Actuators[2].Reason))
	for _, i := range []int{0, 1, 3, 4} {
		assert.False(t, r.Actuators[i].Overridden)
		assert.Equal(t, filter.Command{Angle: 69, Valid: true}, r.Actuators[i].Applied)
	}

	require.Len(t, sink.Lines(), 1)
	assert.Contains(t, sink.Lines()[0], "overcurrent detected on servo3")
}

func TestCycle_ThresholdBoundary(t *testing.T) {
	l, drv := newLoop(t, newInputs(500, 0, 0, 0, 0, 0), nil)
	r := l.Cycle()
	assert.False(t, r.Command.Valid)
	assert.Equal(t, []int{90, 90, 90, 90, 90}, drv.angles())
}

func TestCycle_FailedEMGIsNeutral(t *testing.T) {
	in := newInputs(0, 0, 0, 0, 0, 0)
	in.errs[0] = errors.New("adc timeout")
	var sink diag.Recorder
	l, drv := newLoop(t, in, &sink)

	r := l.Cycle()

	assert.False(t, r.EMG.OK())
	assert.Equal(t, config.ErrorSentinel, r.EMG.Value)
	assert.Equal(t, filter.Command{Angle: 90}, r.Command)
	assert.Equal(t, []int{90, 90, 90, 90, 90}, drv.angles())
	assert.Empty(t, r.Overridden(), "an EMG fault is not a safety override")
	require.Len(t, sink.Lines(), 1)
	assert.Contains(t, sink.Lines()[0], "error reading input emg")
}

func TestCycle_FailedCurrentReadOverrides(t *testing.T) {
	in := newInputs(1023, 0, 0, 0, 0, 2000) // last current out of range
	in.errs[2] = errors.New("i2c nack")     // second current unreadable
	l, drv := newLoop(t, in, nil)

	r := l.Cycle()

	assert.Equal(t, []int{180, 90, 180, 180, 90}, drv.angles())
	assert.Len(t, r.Overridden(), 2)
}

func TestCycle_NoStaleCommand(t *testing.T) {
	in := newInputs(1023, 0, 0, 0, 0, 0)
	l, drv := newLoop(t, in, nil)

	r1 := l.Cycle()
	in.raw[0] = 100
	r2 := l.Cycle()

	assert.Equal(t, uint64(1), r1.Seq)
	assert.Equal(t, uint64(2), r2.Seq)
	assert.Equal(t, []int{180, 180, 180, 180, 180, 90, 90, 90, 90, 90}, drv.angles())
}

func TestCycle_NotifiesObservers(t *testing.T) {
	var got []Report
	obs := ObserverFunc(func(r Report) { got = append(got, r) })
	l, _ := newLoop(t, newInputs(700, 0, 0, 0, 0, 0), nil, obs)

	l.Cycle()
	l.Cycle()

	require.Len(t, got, 2)
	assert.Equal(t, uint64(2), got[1].Seq)
	assert.Len(t, got[0].Actuators, config.NumActuators)
}

func TestRun_CyclesUntilContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	drv := &recordingDriver{}
	pacer := &countingPacer{n: 3, cancel: cancel}
	l, err := New(config.Default(), newInputs(700, 0, 0, 0, 0, 0), drv, pacer, nil)
	require.NoError(t, err)

	err = l.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, pacer.waits)
	assert.Len(t, drv.calls, 3*config.NumActuators)
}

func TestNew_Validates(t *testing.T) {
	cfg := config.Default()
	cfg.Currents = cfg.Currents[:2]
	_, err := New(cfg, newInputs(0), &recordingDriver{}, &countingPacer{}, nil)
	require.Error(t, err)

	_, err = New(config.Default(), nil, &recordingDriver{}, &countingPacer{}, nil)
	require.Error(t, err)
}

func TestBind(t *testing.T) {
	emg, currents, actuators := Bind(config.Default())
	assert.Equal(t, channel.In(0, "emg"), emg)
	require.Len(t, currents, 5)
	assert.Equal(t, channel.In(1, "current1"), currents[0])
	assert.Equal(t, channel.In(5, "current5"), currents[4])
	require.Len(t, actuators, 5)
	assert.Equal(t, channel.Out(4, "servo5"), actuators[4])
}
