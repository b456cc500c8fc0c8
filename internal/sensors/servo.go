// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"log"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/pca9685"

	"github.com/relabs-tech/emg_controller/internal/channel"
	"github.com/relabs-tech/emg_controller/internal/config"
	"github.com/relabs-tech/emg_controller/internal/diag"
	"github.com/relabs-tech/emg_controller/internal/mathx"
)

const (
	servoFrequency = 50 * physic.Hertz
	servoPeriodUS  = 20000 // 1 / 50 Hz
	pwmResolution  = 4096  // PCA9685 ticks per period
)

// ServoBank drives hobby servos on a PCA9685. It implements control.Driver.
type ServoBank struct {
	dev     *pca9685.Dev
	outputs map[int]int // logical actuator index -> PWM channel
	ctl     config.Control
	minUS   int
	maxUS   int
	sink    diag.Sink
}

// OpenServoBank configures the PCA9685 for 50 Hz and parks every actuator
// at neutral.
func OpenServoBank(bus i2c.Bus, cfg *config.Config, sink diag.Sink) (*ServoBank, error) {
	dev, err := pca9685.NewI2C(bus, cfg.PWMAddr)
	if err != nil {
		return nil, fmt.Errorf("PCA9685 at 0x%02X: %w", cfg.PWMAddr, err)
	}
	if err := dev.SetPwmFreq(servoFrequency); err != nil {
		return nil, fmt.Errorf("PCA9685 set frequency: %w", err)
	}
	if sink == nil {
		sink = diag.Discard
	}

	b := &ServoBank{
		dev:     dev,
		outputs: map[int]int{},
		ctl:     cfg.Control,
		minUS:   cfg.ServoMinUS,
		maxUS:   cfg.ServoMaxUS,
		sink:    sink,
	}
	for i, out := range cfg.Actuators {
		b.outputs[i] = out.PWMChannel
		b.Drive(channel.Out(i, out.Name), cfg.Control.NeutralAngle)
		log.Printf("sensors: actuator %s bound to PCA9685 channel %d", out.Name, out.PWMChannel)
	}
	return b, nil
}

// Drive sets the servo pulse for angle. Device errors are reported to the
// diagnostic sink only.
func (b *ServoBank) Drive(ch channel.Channel, angle int) {
	pwmCh, ok := b.outputs[ch.Index]
	if !ok {
		diag.Printf(b.sink, "actuator %s is not bound", ch)
		return
	}
	duty := AngleToDuty(angle, b.ctl.MinAngle, b.ctl.MaxAngle, b.minUS, b.maxUS)
	if err := b.dev.SetPwm(pwmCh, 0, duty); err != nil {
		diag.Printf(b.sink, "actuator %s: set pwm: %v", ch, err)
	}
}

// AngleToDuty converts an angle into the PCA9685 off-tick for a 50 Hz
// servo pulse between minUS and maxUS. Angles outside the range are clamped.
func AngleToDuty(angle, minAngle, maxAngle, minUS, maxUS int) gpio.Duty {
	pulse := mathx.MapRound(angle, minAngle, maxAngle, minUS, maxUS)
	return gpio.Duty(mathx.MapRound(pulse, 0, servoPeriodUS, 0, pwmResolution))
}
