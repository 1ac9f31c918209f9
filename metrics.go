// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tube

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Byte accounting, opt-in: EnableMetrics registers per-tube transfer
// counters with the given registerer. When metrics are not enabled the
// hot-path hooks are no-ops.

type tubeMetrics struct {
	received *prometheus.CounterVec
	sent     *prometheus.CounterVec
	pumped   *prometheus.CounterVec
}

var (
	metricsMu sync.RWMutex
	metrics   *tubeMetrics
)

// EnableMetrics registers the tube byte counters with reg (for example
// prometheus.DefaultRegisterer) and turns on accounting for all tubes.
// A later successful call replaces the active set; if reg rejects a
// collector (for example because it already holds one of the same name),
// the error is returned and the active set is left unchanged.
func EnableMetrics(reg prometheus.Registerer) error {
	m := &tubeMetrics{
		received: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tube",
			Name:      "bytes_received_total",
			Help:      "Bytes received from the raw transport, per tube.",
		}, []string{"tube"}),
		sent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tube",
			Name:      "bytes_sent_total",
			Help:      "Bytes sent to the raw transport, per tube.",
		}, []string{"tube"}),
		pumped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tube",
			Name:      "pump_bytes_total",
			Help:      "Bytes moved by tube-to-tube pumps, per destination tube.",
		}, []string{"tube"}),
	}
	for _, c := range []*prometheus.CounterVec{m.received, m.sent, m.pumped} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	metricsMu.Lock()
	metrics = m
	metricsMu.Unlock()
	return nil
}

// DisableMetrics turns accounting back off. Collectors registered by
// EnableMetrics stay registered; unregister them through the registerer.
func DisableMetrics() {
	metricsMu.Lock()
	metrics = nil
	metricsMu.Unlock()
}

func metricsRecv(id string, n int) {
	metricsMu.RLock()
	m := metrics
	metricsMu.RUnlock()
	if m != nil {
		m.received.WithLabelValues(id).Add(float64(n))
	}
}

func metricsSend(id string, n int) {
	metricsMu.RLock()
	m := metrics
	metricsMu.RUnlock()
	if m != nil {
		m.sent.WithLabelValues(id).Add(float64(n))
	}
}

func metricsPump(id string, n int) {
	metricsMu.RLock()
	m := metrics
	metricsMu.RUnlock()
	if m != nil {
		m.pumped.WithLabelValues(id).Add(float64(n))
	}
}
