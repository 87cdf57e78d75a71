package transport

import (
	"context"
	"time"

	"github.com/goodnatureofminers/bookingledger-backend/internal/clock"
	"go.uber.org/zap"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// LedgerServiceName is the gRPC health service name reported for the ledger.
const LedgerServiceName = "bookingledger.v1.Ledger"

// HealthReporter periodically verifies the chain and publishes the result to a gRPC health server.
type HealthReporter struct {
	chain    Verifier
	server   *health.Server
	interval time.Duration
	logger   *zap.Logger
	sleep    func(context.Context, time.Duration) error

	last healthpb.HealthCheckResponse_ServingStatus
}

// NewHealthReporter returns a HealthReporter publishing into server.
func NewHealthReporter(chain Verifier, server *health.Server, interval time.Duration, logger *zap.Logger) *HealthReporter {
	return &HealthReporter{
		chain:    chain,
		server:   server,
		interval: interval,
		logger:   logger,
		sleep:    clock.SleepWithContext,
		last:     healthpb.HealthCheckResponse_UNKNOWN,
	}
}

// Check verifies the chain once and updates the serving status.
func (h *HealthReporter) Check() healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	err := h.chain.Verify()
	if err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}

	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(LedgerServiceName, status)

	if status != h.last {
		if err != nil {
			h.logger.Error("ledger integrity lost", zap.Error(err))
		} else {
			h.logger.Info("ledger serving", zap.String("previous", h.last.String()))
		}
		h.last = status
	}
	return status
}

// Run checks the chain every interval until ctx is canceled, then marks the server as shutting down.
func (h *HealthReporter) Run(ctx context.Context) error {
	for {
		h.Check()
		if err := h.sleep(ctx, h.interval); err != nil {
			h.server.Shutdown()
			return err
		}
	}
}
