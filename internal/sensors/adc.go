// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"log"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"

	"github.com/relabs-tech/emg_controller/internal/channel"
	"github.com/relabs-tech/emg_controller/internal/config"
	"github.com/relabs-tech/emg_controller/internal/control"
)

// adcSampleRate is fast enough for six conversions well inside one cycle.
const adcSampleRate = 860 * physic.Hertz

var singleEnded = [4]ads1x15.Channel{
	ads1x15.Channel0,
	ads1x15.Channel1,
	ads1x15.Channel2,
	ads1x15.Channel3,
}

// ADCBank reads the EMG and current inputs from one or more ADS1115
// converters. It implements sampler.Reader.
type ADCBank struct {
	pins   map[int]ads1x15.PinADC // by logical input index
	ref    physic.ElectricPotential
	maxRaw int
}

// OpenADCBank creates one ADS1115 per distinct address in cfg and one pin
// per input binding. Input indexes follow control.Bind.
func OpenADCBank(bus i2c.Bus, cfg *config.Config) (*ADCBank, error) {
	ref := physic.ElectricPotential(cfg.ADCRefMV) * physic.MilliVolt
	b := &ADCBank{
		pins:   map[int]ads1x15.PinADC{},
		ref:    ref,
		maxRaw: cfg.Control.MaxRaw,
	}

	emg, currents, _ := control.Bind(cfg)
	bindings := append([]config.InputBinding{cfg.EMG}, cfg.Currents...)
	logical := append([]channel.Channel{emg}, currents...)

	devs := map[uint16]*ads1x15.Dev{}
	for i, in := range bindings {
		dev, ok := devs[in.ADCAddr]
		if !ok {
			var err error
			dev, err = ads1x15.NewADS1115(bus, &ads1x15.Opts{I2cAddress: in.ADCAddr})
			if err != nil {
				b.Halt()
				return nil, fmt.Errorf("ADS1115 at 0x%02X: %w", in.ADCAddr, err)
			}
			devs[in.ADCAddr] = dev
			log.Printf("sensors: ADS1115 at 0x%02X ready", in.ADCAddr)
		}

		pin, err := dev.PinForChannel(singleEnded[in.ADCChannel], ref, adcSampleRate, ads1x15.SaveEnergy)
		if err != nil {
			b.Halt()
			return nil, fmt.Errorf("input %q (0x%02X/%d): %w", in.Name, in.ADCAddr, in.ADCChannel, err)
		}
		b.pins[logical[i].Index] = pin
		log.Printf("sensors: input %s bound to ADS1115 0x%02X channel %d", in.Name, in.ADCAddr, in.ADCChannel)
	}
	return b, nil
}

// ReadRaw converts one reading into counts on the [0, MaxRaw] scale.
// Voltages outside [0, ref] produce out-of-range counts on purpose.
func (b *ADCBank) ReadRaw(ch channel.Channel) (int, error) {
	pin, ok := b.pins[ch.Index]
	if !ok {
		return 0, fmt.Errorf("input %s is not bound", ch)
	}
	s, err := pin.Read()
	if err != nil {
		return 0, fmt.Errorf("input %s: %w", ch, err)
	}
	return VoltsToRaw(s.V, b.ref, b.maxRaw), nil
}

// Halt stops every pin.
func (b *ADCBank) Halt() {
	for idx, pin := range b.pins {
		if err := pin.Halt(); err != nil {
			log.Printf("sensors: halt input %d: %v", idx, err)
		}
	}
}

// VoltsToRaw scales v against ref onto [0, maxRaw], rounding to nearest.
// The result is not clamped.
func VoltsToRaw(v, ref physic.ElectricPotential, maxRaw int) int {
	if ref <= 0 {
		return -1
	}
	num := int64(v) * int64(maxRaw)
	den := int64(ref)
	if num >= 0 {
		return int((num + den/2) / den)
	}
	return -int((-num + den/2) / den)
}
