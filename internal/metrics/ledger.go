// Package metrics exposes application metrics collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ledgerAppendTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bookingledger",
		Subsystem: "ledger",
		Name:      "append_total",
		Help:      "Count of block admission attempts by outcome.",
	}, []string{"ledger", "status"})

	ledgerLength = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "bookingledger",
		Subsystem: "ledger",
		Name:      "length",
		Help:      "Number of blocks in the chain.",
	}, []string{"ledger"})

	ledgerValidateTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bookingledger",
		Subsystem: "ledger",
		Name:      "validate_total",
		Help:      "Count of full chain validations by result.",
	}, []string{"ledger", "status"})

	ledgerValidateDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bookingledger",
		Subsystem: "ledger",
		Name:      "validate_duration_seconds",
		Help:      "Duration of full chain validations.",
		Buckets:   []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"ledger", "status"})
)

// Ledger tracks metrics for a ledger instance.
type Ledger struct {
	name string
}

// NewLedger creates a Ledger metrics collector labeled with name.
func NewLedger(name string) *Ledger {
	if name == "" {
		name = "unknown"
	}
	return &Ledger{name: name}
}

// ObserveAppend records an admission outcome and the resulting chain length.
func (m Ledger) ObserveAppend(admitted bool, length int) {
	status := "admitted"
	if !admitted {
		status = "rejected"
	}
	ledgerAppendTotal.WithLabelValues(m.name, status).Inc()
	ledgerLength.WithLabelValues(m.name).Set(float64(length))
}

// ObserveValidate records a validation result and its duration.
func (m Ledger) ObserveValidate(valid bool, length int, started time.Time) {
	status := "valid"
	if !valid {
		status = "invalid"
	}
	ledgerValidateTotal.WithLabelValues(m.name, status).Inc()
	ledgerValidateDuration.WithLabelValues(m.name, status).Observe(time.Since(started).Seconds())
	ledgerLength.WithLabelValues(m.name).Set(float64(length))
}
