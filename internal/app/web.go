// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/emg_controller/internal/config"
	"github.com/relabs-tech/emg_controller/internal/telemetry"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

const wsWriteTimeout = time.Second

// cycleHub keeps the latest cycle and the recent anomalies, and pushes
// every new cycle to connected websocket clients.
type cycleHub struct {
	mu        sync.RWMutex
	last      telemetry.Cycle
	haveCycle bool
	anomalies []telemetry.Anomaly
	maxAnom   int

	clientsMu sync.Mutex
	clients   map[*wsClient]struct{}
}

type wsClient struct {
	conn *websocket.Conn
	send chan telemetry.Cycle
}

func newCycleHub(maxAnomalies int) *cycleHub {
	return &cycleHub{maxAnom: maxAnomalies, clients: map[*wsClient]struct{}{}}
}

func (h *cycleHub) updateCycle(c telemetry.Cycle) {
	h.mu.Lock()
	h.last = c
	h.haveCycle = true
	h.mu.Unlock()

	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	for cl := range h.clients {
		select {
		case cl.send <- c:
		default:
			// Slow client: it misses this cycle.
		}
	}
}

func (h *cycleHub) addAnomaly(a telemetry.Anomaly) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.anomalies = append(h.anomalies, a)
	if over := len(h.anomalies) - h.maxAnom; over > 0 {
		h.anomalies = append([]telemetry.Anomaly(nil), h.anomalies[over:]...)
	}
}

// status is the /api/status body.
type status struct {
	Cycle     telemetry.Cycle     `json:"cycle"`
	Anomalies []telemetry.Anomaly `json:"anomalies"`
}

func (h *cycleHub) handleStatus(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.haveCycle {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	body := status{Cycle: h.last, Anomalies: h.anomalies}
	if body.Anomalies == nil {
		body.Anomalies = []telemetry.Anomaly{}
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("web: json encode error: %v", err)
	}
}

// handleWS streams every cycle as JSON until the client goes away.
func (h *cycleHub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	cl := &wsClient{conn: conn, send: make(chan telemetry.Cycle, 8)}
	h.clientsMu.Lock()
	h.clients[cl] = struct{}{}
	h.clientsMu.Unlock()
	defer func() {
		h.clientsMu.Lock()
		delete(h.clients, cl)
		h.clientsMu.Unlock()
	}()

	// Reader goroutine only notices the close.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	h.mu.RLock()
	last, have := h.last, h.haveCycle
	h.mu.RUnlock()
	if have {
		select {
		case cl.send <- last:
		default:
		}
	}

	for {
		select {
		case <-gone:
			return
		case c := <-cl.send:
			if err := conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
				log.Printf("web: websocket deadline error: %v", err)
				return
			}
			if err := conn.WriteJSON(c); err != nil {
				log.Printf("web: websocket write error: %v", err)
				return
			}
		}
	}
}

func (h *cycleHub) routes(staticDir string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", h.handleStatus)
	mux.HandleFunc("/ws", h.handleWS)
	if staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}
	return mux
}

// RunWeb serves the live controller status fed from MQTT.
func RunWeb(cfg *config.Config, broker string) error {
	hub := newCycleHub(50)

	client, err := connectMQTT(broker, cfg.MQTTClientIDWeb)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	log.Printf("web: connected to MQTT broker at %s", broker)

	err = subscribe(client, cfg.TopicCycle, func(_ mqtt.Client, msg mqtt.Message) {
		var c telemetry.Cycle
		if err := json.Unmarshal(msg.Payload(), &c); err != nil {
			log.Printf("web: cycle unmarshal error: %v", err)
			return
		}
		hub.updateCycle(c)
	})
	if err != nil {
		return err
	}
	log.Printf("web: subscribed to %s", cfg.TopicCycle)

	err = subscribe(client, cfg.TopicAnomaly, func(_ mqtt.Client, msg mqtt.Message) {
		var a telemetry.Anomaly
		if err := json.Unmarshal(msg.Payload(), &a); err != nil {
			log.Printf("web: anomaly unmarshal error: %v", err)
			return
		}
		hub.addAnomaly(a)
	})
	if err != nil {
		return err
	}
	log.Printf("web: subscribed to %s", cfg.TopicAnomaly)

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web: server listening on %s", addr)
	return http.ListenAndServe(addr, hub.routes("web"))
}
