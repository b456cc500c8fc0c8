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
	var broker string

	root := &cobra.Command{
		Use:          "display",
		Short:        "Show the latest controller cycle on an SSD1306 OLED",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Println("starting emg-controller status display (MQTT → OLED)")
			return app.RunDisplay(cfg, broker)
		},
	}
	root.Flags().StringVar(&broker, "broker", cfg.MQTTBroker, "MQTT broker URL")
	root.Flags().StringVar(&cfg.I2CBus, "i2c", cfg.I2CBus, "I2C bus name (empty = first bus)")
	root.Flags().IntVar(&cfg.DisplayUpdateInterval, "interval", cfg.DisplayUpdateInterval, "refresh interval in milliseconds")

	if err := root.Execute(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
