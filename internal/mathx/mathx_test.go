// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mathx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 5, Clamp(5, 0, 10))
	assert.Equal(t, 0, Clamp(-3, 0, 10))
	assert.Equal(t, 10, Clamp(42, 0, 10))
	assert.Equal(t, 10, Clamp(42, 10, 0))
	assert.InDelta(t, 0.5, Clamp(0.5, 0.0, 1.0), 1e-9)
}

func TestBetween(t *testing.T) {
	assert.True(t, Between(0, 0, 1023))
	assert.True(t, Between(1023, 0, 1023))
	assert.False(t, Between(-1, 0, 1023))
	assert.False(t, Between(1024, 0, 1023))
}

func TestMapRound(t *testing.T) {
	tests := []struct {
		x, inMin, inMax, outMin, outMax, want int
	}{
		{700, 500, 1023, 0, 180, 69}, // 68.83
		{1023, 500, 1023, 0, 180, 180},
		{500, 500, 1023, 0, 180, 0},
		{2000, 500, 1023, 0, 180, 180}, // clamped
		{0, 500, 1023, 0, 180, 0},      // clamped
		{5, 0, 10, 100, 0, 50},         // reversed output
		{3, 5, 5, 7, 9, 7},             // degenerate
		{1, 0, 2, 0, 1, 1},             // half rounds up
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MapRound(tt.x, tt.inMin, tt.inMax, tt.outMin, tt.outMax),
			"MapRound(%d, %d, %d, %d, %d)", tt.x, tt.inMin, tt.inMax, tt.outMin, tt.outMax)
	}
}

func TestMapRound_Monotonic(t *testing.T) {
	prev := MapRound(501, 500, 1023, 0, 180)
	for x := 502; x <= 1023; x++ {
		got := MapRound(x, 500, 1023, 0, 180)
		assert.GreaterOrEqual(t, got, prev, "x=%d", x)
		prev = got
	}
}
