// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package diag

import (
	"sync/atomic"

	"golang.org/x/time/rate"
)

// Throttle forwards lines to a slower sink and drops the excess.
// The count of dropped lines is reported with the next line that passes.
type Throttle struct {
	next    Sink
	limiter *rate.Limiter
	dropped atomic.Uint64
}

// NewThrottle allows perSecond lines per second with a burst of the same size.
func NewThrottle(next Sink, perSecond int) *Throttle {
	if perSecond <= 0 {
		perSecond = 1
	}
	return &Throttle{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), perSecond),
	}
}

func (t *Throttle) Println(line string) {
	if !t.limiter.Allow() {
		t.dropped.Add(1)
		return
	}
	if n := t.dropped.Swap(0); n > 0 {
		Printf(t.next, "(%d diagnostic lines dropped)", n)
	}
	t.next.Println(line)
}

// Dropped returns the number of lines dropped since the last forwarded line.
func (t *Throttle) Dropped() uint64 { return t.dropped.Load() }
