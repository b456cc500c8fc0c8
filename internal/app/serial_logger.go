// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	serial "github.com/jacobsa/go-serial/serial"
)

// RunSerialLogger reads diagnostic lines from the controller's serial port,
// echoes them to stdout and appends them to outPath until Ctrl+C.
func RunSerialLogger(portName string, baud int, outPath string) error {
	serialOpts := serial.OpenOptions{
		PortName:              portName,
		BaudRate:              uint(baud),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(serialOpts)
	if err != nil {
		return err
	}
	defer port.Close()

	out, err := os.OpenFile(outPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer out.Close()

	log.Printf("serial logger: logging %s at %d baud to %s, press Ctrl+C to stop", portName, baud, outPath)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	done := make(chan error, 1)
	go func() { done <- copyLines(port, out, os.Stdout) }()

	select {
	case <-sigCh:
		log.Println("serial logger: logging stopped")
		return nil
	case err := <-done:
		return err
	}
}

// copyLines copies trimmed, non-empty lines from r to every writer.
// It returns nil when r is exhausted.
func copyLines(r io.Reader, ws ...io.Writer) error {
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			for _, w := range ws {
				if _, werr := io.WriteString(w, trimmed+"\n"); werr != nil {
					return fmt.Errorf("write log line: %w", werr)
				}
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("serial read: %w", err)
		}
	}
}
