// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/relabs-tech/emg_controller/internal/app"
	"github.com/relabs-tech/emg_controller/internal/config"
)

func main() {
	cfg := config.Default()
	var opts app.ControllerOptions

	root := &cobra.Command{
		Use:   "controller",
		Short: "EMG-driven actuator controller with per-channel overcurrent cut-off",
		Long: "Reads the EMG input and every actuator's current sensor once per cycle,\n" +
			"maps muscle activation to a servo angle and forces any overcurrent\n" +
			"actuator to neutral. Runs until power-off.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Println("starting emg-controller control loop (EMG → servos)")

			if err := config.InitGlobal(cfg); err != nil {
				return err
			}
			return app.RunController(config.Get(), opts)
		},
	}
	root.Flags().BoolVar(&opts.Mock, "mock", false, "use synthetic inputs and a logging driver instead of I2C hardware")
	root.Flags().StringVar(&opts.Broker, "broker", cfg.MQTTBroker, "MQTT broker for telemetry (empty disables)")
	root.Flags().StringVar(&opts.SerialPort, "serial", cfg.SerialPort, "serial port for diagnostic lines (empty disables)")
	root.Flags().BoolVar(&opts.Quiet, "quiet", false, "mock driver: don't log every angle change")
	root.Flags().StringVar(&cfg.I2CBus, "i2c", cfg.I2CBus, "I2C bus name (empty = first bus)")

	if err := root.Execute(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
