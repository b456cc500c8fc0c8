// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package diag

import (
	"sync"
	"sync/atomic"
)

// Async hands lines to a slow sink on its own goroutine. Println never
// blocks: when the queue is full the line is dropped.
type Async struct {
	next    Sink
	queue   chan string
	dropped atomic.Uint64
	done    chan struct{}
	once    sync.Once
}

// NewAsync starts the forwarding goroutine. Call Close once no more lines
// will be written.
func NewAsync(next Sink, size int) *Async {
	if size <= 0 {
		size = 1
	}
	a := &Async{
		next:  next,
		queue: make(chan string, size),
		done:  make(chan struct{}),
	}
	go a.run()
	return a
}

// Println must not be called after Close.
func (a *Async) Println(line string) {
	select {
	case a.queue <- line:
	default:
		a.dropped.Add(1)
	}
}

// Dropped returns the number of lines lost to a full queue.
func (a *Async) Dropped() uint64 { return a.dropped.Load() }

// Close flushes the queued lines and stops the goroutine.
func (a *Async) Close() {
	a.once.Do(func() { close(a.queue) })
	<-a.done
}

func (a *Async) run() {
	defer close(a.done)
	for line := range a.queue {
		a.next.Println(line)
	}
}
