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
		port string
		baud int
		out  string
	)

	root := &cobra.Command{
		Use:          "serial_logger",
		Short:        "Log the controller's serial diagnostic lines to a file",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunSerialLogger(port, baud, out)
		},
	}
	root.Flags().StringVar(&port, "port", "/dev/ttyUSB0", "serial port to read")
	root.Flags().IntVar(&baud, "baud", cfg.SerialBaudRate, "baud rate")
	root.Flags().StringVarP(&out, "out", "o", "serial_output.txt", "file to append lines to")

	if err := root.Execute(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
