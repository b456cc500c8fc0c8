// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"

	"github.com/relabs-tech/emg_controller/internal/channel"
	"github.com/relabs-tech/emg_controller/internal/config"
)

func TestVoltsToRaw(t *testing.T) {
	ref := 5 * physic.Volt
	tests := []struct {
		name string
		v    physic.ElectricPotential
		want int
	}{
		{"zero", 0, 0},
		{"full scale", ref, 1023},
		{"half", 2500 * physic.MilliVolt, 512}, // 511.5 rounds up
		{"above reference", 6 * physic.Volt, 1228},
		{"negative", -100 * physic.MilliVolt, -20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VoltsToRaw(tt.v, ref, 1023))
		})
	}
	assert.Equal(t, -1, VoltsToRaw(physic.Volt, 0, 1023))
}

func TestAngleToDuty(t *testing.T) {
	cfg := config.Default()
	duty := func(angle int) gpio.Duty {
		return AngleToDuty(angle, cfg.Control.MinAngle, cfg.Control.MaxAngle, cfg.ServoMinUS, cfg.ServoMaxUS)
	}

	assert.Equal(t, gpio.Duty(102), duty(0))   // 500us
	assert.Equal(t, gpio.Duty(307), duty(90))  // 1500us
	assert.Equal(t, gpio.Duty(512), duty(180)) // 2500us
	assert.Equal(t, duty(180), duty(400), "clamped above")
	assert.Equal(t, duty(0), duty(-20), "clamped below")

	prev := duty(0)
	for a := 1; a <= 180; a++ {
		d := duty(a)
		assert.GreaterOrEqual(t, d, prev)
		prev = d
	}
}

func TestMockADC(t *testing.T) {
	m := NewMockADC(5)
	clock := m.start
	m.now = func() time.Time { return clock }

	emg := channel.In(0, "emg")
	sawActive, sawRest := false, false
	for i := 0; i < 400; i++ {
		clock = m.start.Add(time.Duration(i) * 50 * time.Millisecond)
		raw, err := m.ReadRaw(emg)
		require.NoError(t, err)
		assert.True(t, raw >= 0 && raw <= config.MaxRaw, "raw=%d", raw)
		if raw > config.ActivationThreshold {
			sawActive = true
		} else {
			sawRest = true
		}
	}
	assert.True(t, sawActive)
	assert.True(t, sawRest)

	// First stall window hits actuator 0 only.
	clock = m.start.Add(500 * time.Millisecond)
	c1, _ := m.ReadRaw(channel.In(1, "current1"))
	c2, _ := m.ReadRaw(channel.In(2, "current2"))
	assert.Greater(t, c1, config.CurrentLimit)
	assert.LessOrEqual(t, c2, config.CurrentLimit)

	// Second window moves to actuator 1.
	clock = m.start.Add(7*time.Second + 500*time.Millisecond)
	c1, _ = m.ReadRaw(channel.In(1, "current1"))
	c2, _ = m.ReadRaw(channel.In(2, "current2"))
	assert.LessOrEqual(t, c1, config.CurrentLimit)
	assert.Greater(t, c2, config.CurrentLimit)
}

func TestRecordingDriver(t *testing.T) {
	d := NewRecordingDriver(true)
	ch := channel.Out(2, "servo3")

	_, ok := d.Angle(ch)
	assert.False(t, ok)

	d.Drive(ch, 69)
	d.Drive(ch, 90)
	a, ok := d.Angle(ch)
	assert.True(t, ok)
	assert.Equal(t, 90, a)
}
