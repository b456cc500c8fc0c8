// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"image"
	"log"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/relabs-tech/emg_controller/internal/config"
	"github.com/relabs-tech/emg_controller/internal/sensors"
	"github.com/relabs-tech/emg_controller/internal/telemetry"
)

const (
	displayW = 128
	displayH = 64
	lineH    = 13 // basicfont.Face7x13

	actuatorsPerLine = 3
)

// RunDisplay shows the latest cycle on an SSD1306 OLED.
func RunDisplay(cfg *config.Config, broker string) error {
	bus, err := sensors.OpenI2C(cfg.I2CBus)
	if err != nil {
		return err
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Println("display: initialized")

	if err := dev.Draw(dev.Bounds(), renderLines("EMG controller", "Waiting..."), image.Point{}); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	var (
		mu   sync.RWMutex
		last *telemetry.Cycle
	)

	client, err := connectMQTT(broker, cfg.MQTTClientIDDisplay)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	log.Printf("display: connected to MQTT broker at %s", broker)

	err = subscribe(client, cfg.TopicCycle, func(_ mqtt.Client, msg mqtt.Message) {
		var c telemetry.Cycle
		if err := json.Unmarshal(msg.Payload(), &c); err != nil {
			log.Printf("display: cycle unmarshal error: %v", err)
			return
		}
		mu.Lock()
		last = &c
		mu.Unlock()
	})
	if err != nil {
		return err
	}
	log.Printf("display: subscribed to %s", cfg.TopicCycle)

	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")
	for range ticker.C {
		mu.RLock()
		var snapshot *telemetry.Cycle
		if last != nil {
			c := *last
			snapshot = &c
		}
		mu.RUnlock()

		if err := dev.Draw(dev.Bounds(), renderStatus(snapshot), image.Point{}); err != nil {
			log.Printf("display: error updating display: %v", err)
		}
	}
	return nil
}

// statusLines is the text layout for one cycle: command on top, then the
// actuators three per line, then the override count.
func statusLines(c *telemetry.Cycle) []string {
	if c == nil {
		return []string{"EMG controller", "Waiting..."}
	}

	head := "EMG ERR"
	if c.EMGOK {
		head = fmt.Sprintf("EMG %4d", c.EMGRaw)
	}
	if c.Valid {
		head += fmt.Sprintf(" ACT %3d", c.Angle)
	} else {
		head += " REST"
	}
	lines := []string{head}

	overridden := 0
	var row []string
	for i, a := range c.Actuators {
		mark := ""
		if a.Overridden {
			mark = "!"
			overridden++
		}
		row = append(row, fmt.Sprintf("%d:%d%s", i+1, a.Angle, mark))
		if len(row) == actuatorsPerLine {
			lines = append(lines, strings.Join(row, " "))
			row = nil
		}
	}
	if len(row) > 0 {
		lines = append(lines, strings.Join(row, " "))
	}
	lines = append(lines, fmt.Sprintf("OVR %d  #%d", overridden, c.Seq))
	return lines
}

func renderStatus(c *telemetry.Cycle) *image1bit.VerticalLSB {
	return renderLines(statusLines(c)...)
}

func renderLines(lines ...string) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, displayW, displayH))

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	for i, line := range lines {
		y := (i + 1) * lineH
		if y > displayH {
			break
		}
		drawer.Dot = fixed.P(0, y)
		drawer.DrawString(line)
	}
	return img
}
