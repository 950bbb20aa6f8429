// Package metrics exposes Prometheus counters for the scan pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScansTotal counts verify requests by outcome: granted, denied,
	// not_found, ambiguous, error. Duplicate scans are counted under their
	// decision outcome and additionally in DuplicateScans.
	ScansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gocampus_scans_total",
		Help: "Verify requests by outcome.",
	}, []string{"outcome"})

	// DuplicateScans counts same-day repeat scans.
	DuplicateScans = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gocampus_duplicate_scans_total",
		Help: "Same-day repeat scans flagged by the duplicate guard.",
	})

	// QRRenders counts QR artifact generation attempts by result.
	QRRenders = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gocampus_qr_renders_total",
		Help: "QR artifact render attempts by result.",
	}, []string{"result"})
)

// ScanOutcome maps a decision to its counter label.
func ScanOutcome(granted bool) string {
	if granted {
		return "granted"
	}
	return "denied"
}
