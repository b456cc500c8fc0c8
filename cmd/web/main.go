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
		Use:          "web",
		Short:        "Serve controller status (/api/status) and a live websocket stream (/ws)",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Println("starting emg-controller web server (MQTT subscriber)")
			return app.RunWeb(cfg, broker)
		},
	}
	root.Flags().StringVar(&broker, "broker", cfg.MQTTBroker, "MQTT broker URL")
	root.Flags().IntVar(&cfg.WebServerPort, "port", cfg.WebServerPort, "HTTP listen port")

	if err := root.Execute(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
