// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/relabs-tech/emg_controller/internal/control"
)

const (
	// publishTimeout bounds how long the sender waits on one broker ack.
	publishTimeout = 20 * time.Millisecond
	// queueSize holds a few cycles worth of messages.
	queueSize = 64
)

type outgoing struct {
	topic    string
	retained bool
	payload  []byte
}

// Publisher pushes every cycle to MQTT. It implements control.Observer.
// ObserveCycle only marshals and enqueues; a background goroutine talks to
// the broker. Messages are dropped while the broker is unreachable or the
// queue is full.
type Publisher struct {
	client       mqtt.Client
	session      string
	topicCycle   string
	topicAnomaly string

	queue     chan outgoing
	dropped   atomic.Uint64
	done      chan struct{}
	closeOnce sync.Once
}

// NewPublisher tags every message with a fresh session ID and starts the
// sender goroutine. Call Close when the loop has stopped.
func NewPublisher(client mqtt.Client, topicCycle, topicAnomaly string) *Publisher {
	p := &Publisher{
		client:       client,
		session:      uuid.NewString(),
		topicCycle:   topicCycle,
		topicAnomaly: topicAnomaly,
		queue:        make(chan outgoing, queueSize),
		done:         make(chan struct{}),
	}
	go p.run()
	return p
}

// Session returns the ID stamped on this publisher's messages.
func (p *Publisher) Session() string { return p.session }

// Dropped returns the number of messages that never reached the sender.
func (p *Publisher) Dropped() uint64 { return p.dropped.Load() }

// ObserveCycle never blocks. It must not be called after Close.
func (p *Publisher) ObserveCycle(r control.Report) {
	if !p.client.IsConnectionOpen() {
		return
	}

	payload, err := json.Marshal(FromReport(p.session, r))
	if err != nil {
		log.Printf("telemetry: cycle marshal error: %v", err)
		return
	}
	p.enqueue(outgoing{topic: p.topicCycle, retained: true, payload: payload})

	for _, an := range AnomaliesFromReport(p.session, r) {
		payload, err := json.Marshal(an)
		if err != nil {
			log.Printf("telemetry: anomaly marshal error: %v", err)
			continue
		}
		p.enqueue(outgoing{topic: p.topicAnomaly, payload: payload})
	}
}

// Close stops accepting messages and waits for the queue to drain.
func (p *Publisher) Close() {
	p.closeOnce.Do(func() { close(p.queue) })
	<-p.done
}

func (p *Publisher) enqueue(m outgoing) {
	select {
	case p.queue <- m:
	default:
		p.dropped.Add(1)
	}
}

func (p *Publisher) run() {
	defer close(p.done)
	var reported uint64
	for m := range p.queue {
		if n := p.dropped.Load(); n != reported {
			log.Printf("telemetry: %d messages dropped so far (queue full)", n)
			reported = n
		}
		token := p.client.Publish(m.topic, 0, m.retained, m.payload)
		if !token.WaitTimeout(publishTimeout) {
			continue
		}
		if err := token.Error(); err != nil {
			log.Printf("telemetry: MQTT publish error (%s): %v", m.topic, err)
		}
	}
}
