// go-nfcbridge
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-nfcbridge.
//
// go-nfcbridge is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-nfcbridge is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-nfcbridge; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

// Package metrics exposes bridge loop counters to Prometheus
package metrics

import (
	"net/http"

	"github.com/ZaparooProject/go-nfcbridge/bridge"
	"github.com/ZaparooProject/go-nfcbridge/protocol"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "nfcbridge"

// NewRegistry creates a registry with the Go and process collectors
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves reg in the Prometheus text format
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// BridgeMetrics records loop events. It implements bridge.Recorder.
type BridgeMetrics struct {
	FramesSent     *prometheus.CounterVec // labels: command
	FramesRejected prometheus.Counter
	Commands       *prometheus.CounterVec // labels: command
	Polls          *prometheus.CounterVec // labels: result
	LinkDropped    prometheus.Gauge
}

// NewBridgeMetrics registers and returns the loop metrics
func NewBridgeMetrics(reg prometheus.Registerer) *BridgeMetrics {
	m := &BridgeMetrics{
		FramesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_sent_total",
			Help:      "Frames written to the host link by command.",
		}, []string{"command"}),
		FramesRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_rejected_total",
			Help:      "Inbound frames dropped as invalid.",
		}),
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Valid inbound frames by command.",
		}, []string{"command"}),
		Polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_total",
			Help:      "NFC polls by result.",
		}, []string{"result"}),
		LinkDropped: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "link_dropped_bytes",
			Help:      "Inbound bytes discarded because the receive buffer was full.",
		}),
	}
	reg.MustRegister(m.FramesSent, m.FramesRejected, m.Commands, m.Polls, m.LinkDropped)
	return m
}

// FrameSent implements bridge.Recorder
func (m *BridgeMetrics) FrameSent(command byte) {
	m.FramesSent.WithLabelValues(protocol.CommandName(command)).Inc()
}

// FrameRejected implements bridge.Recorder
func (m *BridgeMetrics) FrameRejected() {
	m.FramesRejected.Inc()
}

// CommandDispatched implements bridge.Recorder
func (m *BridgeMetrics) CommandDispatched(command byte) {
	m.Commands.WithLabelValues(protocol.CommandName(command)).Inc()
}

// PollCompleted implements bridge.Recorder
func (m *BridgeMetrics) PollCompleted(result bridge.PollResult) {
	m.Polls.WithLabelValues(string(result)).Inc()
}

// SetLinkDropped publishes the link's dropped byte count
func (m *BridgeMetrics) SetLinkDropped(n int) {
	m.LinkDropped.Set(float64(n))
}

var _ bridge.Recorder = (*BridgeMetrics)(nil)
