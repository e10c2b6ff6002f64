// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts ingestion events in a private registry that can be
// written as a node_exporter textfile at the end of a run. A nil
// *Metrics records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	reports   *prometheus.CounterVec
	rows      *prometheus.CounterVec
	groups    *prometheus.CounterVec
	refreshes prometheus.Counter
	progress  prometheus.Gauge
}

// NewMetrics registers the ingestion collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "industry_leverage",
			Subsystem: "ingest",
			Name:      "reports_total",
			Help:      "Extractions by result.",
		}, []string{"result"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "industry_leverage",
			Subsystem: "ingest",
			Name:      "rows_written_total",
			Help:      "Result rows written by outcome.",
		}, []string{"outcome"}),
		groups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "industry_leverage",
			Subsystem: "ingest",
			Name:      "groups_total",
			Help:      "Report groups committed or skipped.",
		}, []string{"state"}),
		refreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "industry_leverage",
			Subsystem: "ingest",
			Name:      "token_refreshes_total",
			Help:      "Access token refreshes after the first.",
		}),
		progress: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "industry_leverage",
			Subsystem: "ingest",
			Name:      "progress_ratio",
			Help:      "Fraction of input reports handled.",
		}),
	}
	m.Registry.MustRegister(m.reports, m.rows, m.groups, m.refreshes, m.progress)
	return m
}

func (m *Metrics) extracted(result string) {
	if m != nil {
		m.reports.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) stored(outcome string) {
	if m != nil {
		m.rows.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) group(state string) {
	if m != nil {
		m.groups.WithLabelValues(state).Inc()
	}
}

func (m *Metrics) refreshed() {
	if m != nil {
		m.refreshes.Inc()
	}
}

func (m *Metrics) setProgress(done, total int) {
	if m != nil && total > 0 {
		m.progress.Set(float64(done) / float64(total))
	}
}

// WriteTextfile writes the registry in Prometheus text format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}
