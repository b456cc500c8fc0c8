// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"fmt"
	"sync"
	"time"
)

// Build-time control constants. Changing any of these requires a rebuild.
const (
	SamplePeriod = 100 * time.Millisecond

	MaxRaw        = 1023 // 10-bit counts, same scale as the bench board
	ErrorSentinel = -1   // value carried by a failed sample; below any threshold

	ActivationThreshold = 500
	CurrentLimit        = 512

	MinAngle     = 0
	MaxAngle     = 180
	NeutralAngle = 90

	NumActuators = 5
)

// Control holds the numeric parameters of the read-filter-arbitrate loop.
type Control struct {
	Period              time.Duration
	MaxRaw              int
	ErrorSentinel       int
	ActivationThreshold int
	CurrentLimit        int
	MinAngle            int
	MaxAngle            int
	NeutralAngle        int
}

// InputBinding ties a logical input channel to an ADS1115 input.
type InputBinding struct {
	Name       string
	ADCAddr    uint16 // I2C address of the ADS1115
	ADCChannel int    // single-ended input 0-3
}

// OutputBinding ties a logical actuator channel to a PCA9685 output.
type OutputBinding struct {
	Name       string
	PWMChannel int // 0-15
}

// Config holds all application configuration values.
type Config struct {
	Control Control

	// Channel bindings
	I2CBus     string
	ADCRefMV   int // full-scale reference in millivolts, maps to MaxRaw
	EMG        InputBinding
	Currents   []InputBinding // one per actuator, same order as Actuators
	Actuators  []OutputBinding
	PWMAddr    uint16
	ServoMinUS int // pulse width at MinAngle, microseconds
	ServoMaxUS int // pulse width at MaxAngle, microseconds

	// MQTT
	MQTTBroker             string
	MQTTClientIDController string
	MQTTClientIDConsole    string
	MQTTClientIDWeb        string
	MQTTClientIDDisplay    string

	// Topics
	TopicCycle   string
	TopicAnomaly string
	TopicDiag    string

	// Serial diagnostics
	SerialPort     string
	SerialBaudRate int
	SerialMaxLines int // per second, excess lines are dropped

	// Web Server
	WebServerPort int

	// Display
	DisplayUpdateInterval int // milliseconds
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: only reachable through InitGlobal/Get.
//   - configOnce: ensures InitGlobal() only runs once.
//   - configMu: guards globalConfig for concurrent readers.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// ADS1115 inputs are filled in order starting at this address, four per
// converter, with EMG on the first input.
const (
	firstADCAddr = 0x48
	inputsPerADC = 4
)

// Default returns the build-time configuration. Pin bindings match the
// wearable harness: EMG and the first three current sensors on the ADS1115
// at 0x48, the remaining two current sensors on the one at 0x49.
func Default() *Config {
	return &Config{
		Control: Control{
			Period:              SamplePeriod,
			MaxRaw:              MaxRaw,
			ErrorSentinel:       ErrorSentinel,
			ActivationThreshold: ActivationThreshold,
			CurrentLimit:        CurrentLimit,
			MinAngle:            MinAngle,
			MaxAngle:            MaxAngle,
			NeutralAngle:        NeutralAngle,
		},

		I2CBus:     "",
		ADCRefMV:   5000,
		EMG:        InputBinding{Name: "emg", ADCAddr: firstADCAddr, ADCChannel: 0},
		Currents:   defaultCurrents(NumActuators),
		Actuators:  defaultActuators(NumActuators),
		PWMAddr:    0x40,
		ServoMinUS: 500,
		ServoMaxUS: 2500,

		MQTTBroker:             "tcp://localhost:1883",
		MQTTClientIDController: "emg-controller",
		MQTTClientIDConsole:    "emg-console-subscriber",
		MQTTClientIDWeb:        "emg-web-subscriber",
		MQTTClientIDDisplay:    "emg-display",

		TopicCycle:   "emg/cycle",
		TopicAnomaly: "emg/anomaly",
		TopicDiag:    "emg/diag",

		SerialPort:     "",
		SerialBaudRate: 9600,
		SerialMaxLines: 20,

		WebServerPort: 8080,

		DisplayUpdateInterval: 250,
	}
}

// defaultCurrents binds current sensor i to the (i+1)th ADC input.
func defaultCurrents(n int) []InputBinding {
	out := make([]InputBinding, n)
	for i := range out {
		input := i + 1
		out[i] = InputBinding{
			Name:       fmt.Sprintf("current%d", i+1),
			ADCAddr:    uint16(firstADCAddr + input/inputsPerADC),
			ADCChannel: input % inputsPerADC,
		}
	}
	return out
}

// defaultActuators binds servo i to PCA9685 channel i.
func defaultActuators(n int) []OutputBinding {
	out := make([]OutputBinding, n)
	for i := range out {
		out[i] = OutputBinding{Name: fmt.Sprintf("servo%d", i+1), PWMChannel: i}
	}
	return out
}

// Validate checks that the configuration describes a consistent loop.
func (c *Config) Validate() error {
	ctl := c.Control
	if ctl.Period <= 0 {
		return fmt.Errorf("control period must be positive, got %s", ctl.Period)
	}
	if ctl.MaxRaw <= 0 {
		return fmt.Errorf("max raw must be positive, got %d", ctl.MaxRaw)
	}
	if ctl.ActivationThreshold < 0 || ctl.ActivationThreshold >= ctl.MaxRaw {
		return fmt.Errorf("activation threshold must be in [0,%d), got %d", ctl.MaxRaw, ctl.ActivationThreshold)
	}
	if ctl.ErrorSentinel > ctl.ActivationThreshold || (ctl.ErrorSentinel >= 0 && ctl.ErrorSentinel <= ctl.MaxRaw) {
		return fmt.Errorf("error sentinel %d must lie outside [0,%d] and not above the threshold", ctl.ErrorSentinel, ctl.MaxRaw)
	}
	if ctl.CurrentLimit < 0 || ctl.CurrentLimit > ctl.MaxRaw {
		return fmt.Errorf("current limit must be in [0,%d], got %d", ctl.MaxRaw, ctl.CurrentLimit)
	}
	if ctl.MinAngle >= ctl.MaxAngle {
		return fmt.Errorf("angle range [%d,%d] is empty", ctl.MinAngle, ctl.MaxAngle)
	}
	if ctl.NeutralAngle < ctl.MinAngle || ctl.NeutralAngle > ctl.MaxAngle {
		return fmt.Errorf("neutral angle %d outside [%d,%d]", ctl.NeutralAngle, ctl.MinAngle, ctl.MaxAngle)
	}

	if len(c.Actuators) == 0 {
		return fmt.Errorf("at least one actuator is required")
	}
	if len(c.Currents) != len(c.Actuators) {
		return fmt.Errorf("need one current input per actuator: %d currents, %d actuators", len(c.Currents), len(c.Actuators))
	}
	if c.EMG.Name == "" {
		return fmt.Errorf("EMG input binding is required")
	}

	seenIn := map[InputBinding]bool{}
	for _, in := range append([]InputBinding{c.EMG}, c.Currents...) {
		if in.ADCChannel < 0 || in.ADCChannel > 3 {
			return fmt.Errorf("input %q: ADC channel must be 0-3, got %d", in.Name, in.ADCChannel)
		}
		key := InputBinding{ADCAddr: in.ADCAddr, ADCChannel: in.ADCChannel}
		if seenIn[key] {
			return fmt.Errorf("input %q: ADC 0x%02X channel %d bound twice", in.Name, in.ADCAddr, in.ADCChannel)
		}
		seenIn[key] = true
	}

	seenOut := map[int]bool{}
	for _, out := range c.Actuators {
		if out.PWMChannel < 0 || out.PWMChannel > 15 {
			return fmt.Errorf("actuator %q: PWM channel must be 0-15, got %d", out.Name, out.PWMChannel)
		}
		if seenOut[out.PWMChannel] {
			return fmt.Errorf("actuator %q: PWM channel %d bound twice", out.Name, out.PWMChannel)
		}
		seenOut[out.PWMChannel] = true
	}

	if c.ADCRefMV <= 0 {
		return fmt.Errorf("ADC reference must be positive, got %dmV", c.ADCRefMV)
	}
	if c.ServoMinUS <= 0 || c.ServoMaxUS <= c.ServoMinUS {
		return fmt.Errorf("servo pulse range [%d,%d]us is invalid", c.ServoMinUS, c.ServoMaxUS)
	}
	return nil
}

// InitGlobal validates cfg and installs it as the process-wide configuration.
// Only the first call has an effect.
func InitGlobal(cfg *Config) error {
	var err error
	configOnce.Do(func() {
		if err = cfg.Validate(); err != nil {
			return
		}
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig = cfg
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
