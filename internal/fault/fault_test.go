// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package fault

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOf(t *testing.T) {
	assert.Equal(t, OK, Of(nil))
	assert.Equal(t, Overcurrent, Of(Overcurrent))
	assert.Equal(t, Error, Of(errors.New("boom")))

	e := &E{C: SampleOutOfRange, Op: "read", Channel: "emg"}
	assert.Equal(t, SampleOutOfRange, Of(e))
	assert.Equal(t, SampleOutOfRange, Of(fmt.Errorf("cycle 3: %w", e)))
}

func TestE(t *testing.T) {
	cause := errors.New("i2c nack")
	e := &E{C: ReadFailed, Op: "read", Channel: "current2", Err: cause}

	assert.Equal(t, "read: read_failed on current2: i2c nack", e.Error())
	assert.ErrorIs(t, e, ReadFailed)
	assert.ErrorIs(t, e, cause)
	assert.NotErrorIs(t, e, Overcurrent)

	msg := &E{C: Overcurrent, Channel: "servo3", Msg: "current=600 limit=512"}
	assert.Equal(t, "overcurrent on servo3: current=600 limit=512", msg.Error())
}
