// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/emg_controller/internal/config"
	"github.com/relabs-tech/emg_controller/internal/telemetry"
)

// RunConsoleMQTT prints live cycles, anomalies and diagnostic lines until
// Ctrl+C. With onlyAnomalies set, cycle lines are suppressed.
func RunConsoleMQTT(cfg *config.Config, broker string, onlyAnomalies bool) error {
	client, err := connectMQTT(broker, cfg.MQTTClientIDConsole)
	if err != nil {
		return err
	}
	log.Printf("console: connected to MQTT broker at %s", broker)

	if !onlyAnomalies {
		err := subscribe(client, cfg.TopicCycle, func(_ mqtt.Client, msg mqtt.Message) {
			var c telemetry.Cycle
			if err := json.Unmarshal(msg.Payload(), &c); err != nil {
				log.Printf("console: cycle unmarshal error: %v", err)
				return
			}
			fmt.Println(formatCycle(c))
		})
		if err != nil {
			return err
		}
		log.Printf("console: subscribed to %s", cfg.TopicCycle)
	}

	err = subscribe(client, cfg.TopicAnomaly, func(_ mqtt.Client, msg mqtt.Message) {
		var a telemetry.Anomaly
		if err := json.Unmarshal(msg.Payload(), &a); err != nil {
			log.Printf("console: anomaly unmarshal error: %v", err)
			return
		}
		fmt.Println(formatAnomaly(a))
	})
	if err != nil {
		return err
	}
	log.Printf("console: subscribed to %s", cfg.TopicAnomaly)

	err = subscribe(client, cfg.TopicDiag, func(_ mqtt.Client, msg mqtt.Message) {
		fmt.Printf("[DIAG] %s\n", msg.Payload())
	})
	if err != nil {
		return err
	}
	log.Printf("console: subscribed to %s", cfg.TopicDiag)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}

// formatCycle renders one cycle on one line. Overridden actuators are
// marked with '!', failed current reads with '?'.
func formatCycle(c telemetry.Cycle) string {
	var b strings.Builder
	emg := fmt.Sprintf("%4d", c.EMGRaw)
	if !c.EMGOK {
		emg = " ERR"
	}
	state := "ACT"
	if !c.Valid {
		state = "REST"
	}
	fmt.Fprintf(&b, "[CYCLE %6d] emg=%s cmd=%3d° %-4s |", c.Seq, emg, c.Angle, state)
	for _, a := range c.Actuators {
		mark := ' '
		switch {
		case !a.CurrentOK:
			mark = '?'
		case a.Overridden:
			mark = '!'
		}
		fmt.Fprintf(&b, " %s=%3d°%c", a.Name, a.Angle, mark)
	}
	return b.String()
}

func formatAnomaly(a telemetry.Anomaly) string {
	return fmt.Sprintf("[ANOM  %6d] %-10s %-20s %s", a.Seq, a.Channel, a.Code, a.Detail)
}
