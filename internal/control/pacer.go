// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package control

import (
	"context"
	"time"
)

// Pacer blocks until the next cycle is due.
type Pacer interface {
	Wait(ctx context.Context) error
}

// DeadlinePacer sleeps until the next multiple of Period after the previous
// deadline. A cycle that overruns is not caught up: the next deadline is
// measured from now, so there is never a burst of back-to-back cycles.
type DeadlinePacer struct {
	Period time.Duration

	now   func() time.Time
	after func(time.Duration) <-chan time.Time
	next  time.Time
}

func NewPacer(period time.Duration) *DeadlinePacer {
	return &DeadlinePacer{Period: period, now: time.Now, after: time.After}
}

func (p *DeadlinePacer) Wait(ctx context.Context) error {
	now := p.now()
	if p.next.IsZero() || now.Sub(p.next) >= p.Period {
		// First cycle, or we fell a whole period behind.
		p.next = now.Add(p.Period)
	}
	wait := p.next.Sub(now)
	p.next = p.next.Add(p.Period)

	if wait <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.after(wait):
		return nil
	}
}
