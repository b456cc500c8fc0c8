// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"log"
	"math"
	"sync"
	"time"

	"github.com/relabs-tech/emg_controller/internal/channel"
)

// MockADC generates smooth synthetic readings: an EMG envelope that rises
// above and falls below the activation threshold every few seconds, and
// current draws that stay low except for one actuator at a time which
// stalls for a second every stallEvery.
type MockADC struct {
	start      time.Time
	now        func() time.Time
	actuators  int
	stallEvery time.Duration
}

// NewMockADC creates a mock input source for n actuators.
func NewMockADC(n int) *MockADC {
	return &MockADC{start: time.Now(), now: time.Now, actuators: n, stallEvery: 7 * time.Second}
}

// ReadRaw implements sampler.Reader. Index 0 is EMG, 1..n are currents.
func (m *MockADC) ReadRaw(ch channel.Channel) (int, error) {
	elapsed := m.now().Sub(m.start)
	secs := elapsed.Seconds()

	if ch.Index == 0 {
		// 0.25 Hz envelope between ~50 and ~1000 counts.
		return int(525 + 475*math.Sin(secs*math.Pi/2)), nil
	}

	act := ch.Index - 1
	base := int(200 + 60*math.Sin(secs+float64(act)))
	if m.actuators > 0 && m.stallEvery > 0 {
		period := int(elapsed / m.stallEvery)
		inStall := elapsed%m.stallEvery < time.Second
		if inStall && period%m.actuators == act {
			return 700, nil
		}
	}
	return base, nil
}

// RecordingDriver remembers the last angle driven on each actuator and
// logs changes. It implements control.Driver.
type RecordingDriver struct {
	mu     sync.Mutex
	angles map[channel.Channel]int
	quiet  bool
}

func NewRecordingDriver(quiet bool) *RecordingDriver {
	return &RecordingDriver{angles: map[channel.Channel]int{}, quiet: quiet}
}

func (d *RecordingDriver) Drive(ch channel.Channel, angle int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	prev, seen := d.angles[ch]
	d.angles[ch] = angle
	if !d.quiet && (!seen || prev != angle) {
		log.Printf("mock: %s -> %d°", ch, angle)
	}
}

// Angle returns the last angle driven on ch.
func (d *RecordingDriver) Angle(ch channel.Channel) (int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	a, ok := d.angles[ch]
	return a, ok
}
