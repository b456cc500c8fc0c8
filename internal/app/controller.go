// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"log"

	"github.com/relabs-tech/emg_controller/internal/config"
	"github.com/relabs-tech/emg_controller/internal/control"
	"github.com/relabs-tech/emg_controller/internal/diag"
	"github.com/relabs-tech/emg_controller/internal/sampler"
	"github.com/relabs-tech/emg_controller/internal/sensors"
	"github.com/relabs-tech/emg_controller/internal/telemetry"
)

// ControllerOptions selects the I/O around the control loop. None of these
// change control behaviour.
type ControllerOptions struct {
	Mock       bool   // synthetic inputs and a logging driver instead of I2C hardware
	Broker     string // MQTT broker URL; "" disables telemetry
	SerialPort string // serial diagnostic output; "" disables it
	Quiet      bool   // mock driver: don't log every angle change
}

// diagQueueSize bounds the lines waiting for a slow diagnostic transport.
const diagQueueSize = 32

// RunController runs the control loop forever.
func RunController(cfg *config.Config, opts ControllerOptions) error {
	return runController(context.Background(), cfg, opts)
}

func runController(ctx context.Context, cfg *config.Config, opts ControllerOptions) error {
	log.Println("controller: starting EMG actuator controller")

	// --- diagnostic sinks ---
	sinks := diag.Multi{diag.NewLogger(nil)}
	if opts.SerialPort != "" {
		s, err := diag.OpenSerial(opts.SerialPort, cfg.SerialBaudRate)
		if err != nil {
			// Diagnostics are advisory; run without them.
			log.Printf("controller: WARNING: serial diagnostics disabled: %v", err)
		} else {
			defer s.Close()
			serialSink := diag.NewAsync(diag.NewThrottle(s, cfg.SerialMaxLines), diagQueueSize)
			defer serialSink.Close()
			sinks = append(sinks, serialSink)
			log.Printf("controller: serial diagnostics on %s at %d baud", opts.SerialPort, cfg.SerialBaudRate)
		}
	}

	// --- telemetry ---
	var observers []control.Observer
	if opts.Broker != "" {
		client := connectMQTTBackground(opts.Broker, cfg.MQTTClientIDController)
		defer client.Disconnect(250)

		pub := telemetry.NewPublisher(client, cfg.TopicCycle, cfg.TopicAnomaly)
		defer pub.Close()
		observers = append(observers, pub)

		mqttSink := diag.NewAsync(diag.NewMQTT(client, cfg.TopicDiag), diagQueueSize)
		defer mqttSink.Close()
		sinks = append(sinks, mqttSink)
		log.Printf("controller: telemetry to %s (session %s)", opts.Broker, pub.Session())
	}

	// --- I/O capabilities ---
	var (
		in  sampler.Reader
		drv control.Driver
	)
	if opts.Mock {
		log.Println("controller: using mock inputs and driver")
		in = sensors.NewMockADC(len(cfg.Actuators))
		drv = sensors.NewRecordingDriver(opts.Quiet)
	} else {
		bus, err := sensors.OpenI2C(cfg.I2CBus)
		if err != nil {
			return err
		}
		defer bus.Close()

		adc, err := sensors.OpenADCBank(bus, cfg)
		if err != nil {
			return fmt.Errorf("ADC bank: %w", err)
		}
		defer adc.Halt()

		servos, err := sensors.OpenServoBank(bus, cfg, sinks)
		if err != nil {
			return fmt.Errorf("servo bank: %w", err)
		}
		in, drv = adc, servos
	}

	loop, err := control.New(cfg, in, drv, control.NewPacer(cfg.Control.Period), sinks, observers...)
	if err != nil {
		return err
	}

	log.Printf("controller: running %d actuators every %s (threshold=%d limit=%d)",
		len(loop.Actuators()), cfg.Control.Period, cfg.Control.ActivationThreshold, cfg.Control.CurrentLimit)
	return loop.Run(ctx)
}
