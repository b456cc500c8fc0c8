// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package diag

import (
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTT publishes each line as a plain-text message. QoS 0, not retained:
// lines are advisory and may be lost.
type MQTT struct {
	client mqtt.Client
	topic  string
}

func NewMQTT(client mqtt.Client, topic string) *MQTT {
	return &MQTT{client: client, topic: topic}
}

func (m *MQTT) Println(line string) {
	if !m.client.IsConnectionOpen() {
		return
	}
	m.client.Publish(m.topic, 0, false, line)
}
