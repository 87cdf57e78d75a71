package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recorderRecordTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bookingledger",
		Subsystem: "booking_recorder",
		Name:      "record_total",
		Help:      "Count of booking record attempts.",
	}, []string{"status"})

	recorderRecordDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bookingledger",
		Subsystem: "booking_recorder",
		Name:      "record_duration_seconds",
		Help:      "Duration of recording a booking, retries included.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"status"})

	recorderAppendAttempts = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "bookingledger",
		Subsystem: "booking_recorder",
		Name:      "append_attempts",
		Help:      "Ledger append attempts needed per booking.",
		Buckets:   prometheus.LinearBuckets(1, 1, 8),
	})
)

// BookingRecorder tracks metrics for the booking recorder service.
type BookingRecorder struct{}

// NewBookingRecorder creates a BookingRecorder metrics collector.
func NewBookingRecorder() *BookingRecorder {
	return &BookingRecorder{}
}

// ObserveRecord records the outcome of recording one booking.
func (m BookingRecorder) ObserveRecord(err error, attempts int, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	recorderRecordTotal.WithLabelValues(status).Inc()
	recorderRecordDuration.WithLabelValues(status).Observe(time.Since(started).Seconds())
	if attempts > 0 {
		recorderAppendAttempts.Observe(float64(attempts))
	}
}
