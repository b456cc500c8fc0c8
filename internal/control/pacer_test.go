// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package control

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock records requested sleeps and advances instantly.
type fakeClock struct {
	t      time.Time
	sleeps []time.Duration
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) after(d time.Duration) <-chan time.Time {
	c.sleeps = append(c.sleeps, d)
	c.t = c.t.Add(d)
	ch := make(chan time.Time, 1)
	ch <- c.t
	return ch
}

func newFakePacer(period time.Duration) (*DeadlinePacer, *fakeClock) {
	clk := &fakeClock{t: time.Unix(1000, 0)}
	p := NewPacer(period)
	p.now = clk.now
	p.after = clk.after
	return p, clk
}

func TestDeadlinePacer_SleepsRemainder(t *testing.T) {
	p, clk := newFakePacer(100 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, p.Wait(ctx))
	clk.t = clk.t.Add(30 * time.Millisecond)
	require.NoError(t, p.Wait(ctx))
	clk.t = clk.t.Add(70 * time.Millisecond)
	require.NoError(t, p.Wait(ctx))

	assert.Equal(t, []time.Duration{
		100 * time.Millisecond,
		70 * time.Millisecond,
		30 * time.Millisecond,
	}, clk.sleeps)
}

func TestDeadlinePacer_OverrunResyncs(t *testing.T) {
	p, clk := newFakePacer(100 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, p.Wait(ctx))
	clk.t = clk.t.Add(350 * time.Millisecond)
	require.NoError(t, p.Wait(ctx))

	assert.Equal(t, []time.Duration{100 * time.Millisecond, 100 * time.Millisecond}, clk.sleeps)
}

func TestDeadlinePacer_Cancel(t *testing.T) {
	p := NewPacer(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Wait(ctx), context.Canceled)
}
