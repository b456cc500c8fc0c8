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
	var (
		broker        string
		onlyAnomalies bool
	)

	root := &cobra.Command{
		Use:          "console_mqtt",
		Short:        "Print live controller cycles and anomalies from MQTT",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Println("starting emg-controller console (MQTT subscriber)")
			return app.RunConsoleMQTT(cfg, broker, onlyAnomalies)
		},
	}
	root.Flags().StringVar(&broker, "broker", cfg.MQTTBroker, "MQTT broker URL")
	root.Flags().BoolVar(&onlyAnomalies, "anomalies", false, "only print anomalies and diagnostic lines")

	if err := root.Execute(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
