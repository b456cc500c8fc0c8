// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package diag

import (
	"fmt"
	"io"
	"log"
	"sync"

	serial "github.com/jacobsa/go-serial/serial"
)

// Serial writes CRLF-terminated lines to a serial port.
type Serial struct {
	mu   sync.Mutex
	port io.WriteCloser
	name string
}

// OpenSerial opens portName at baud (8N1) for diagnostic output.
func OpenSerial(portName string, baud int) (*Serial, error) {
	opts := serial.OpenOptions{
		PortName:        portName,
		BaudRate:        uint(baud),
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
		ParityMode:      serial.PARITY_NONE,
	}
	port, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", portName, err)
	}
	return NewSerial(port, portName), nil
}

// NewSerial wraps an already opened port.
func NewSerial(port io.WriteCloser, name string) *Serial {
	return &Serial{port: port, name: name}
}

func (s *Serial) Println(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := io.WriteString(s.port, line+"\r\n"); err != nil {
		// Advisory only; report locally and carry on.
		log.Printf("diag: serial %s write error: %v", s.name, err)
	}
}

func (s *Serial) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port.Close()
}
