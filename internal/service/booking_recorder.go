package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/bookingledger-backend/internal/clock"
	"github.com/goodnatureofminers/bookingledger-backend/internal/ledger"
	"github.com/goodnatureofminers/bookingledger-backend/internal/model"
	"github.com/goodnatureofminers/bookingledger-backend/pkg/workerpool"
	"go.uber.org/zap"
)

var (
	// ErrSerialize is returned when a booking could not be turned into a ledger payload.
	ErrSerialize = errors.New("serialize booking")
	// ErrNotAdmitted is returned when every append attempt lost the race for the tail.
	ErrNotAdmitted = errors.New("booking not admitted to ledger")
)

// Serializer turns a booking into the opaque payload stored in a block.
type Serializer func(model.Booking) (string, error)

// JSONSerializer encodes a booking as JSON.
func JSONSerializer(b model.Booking) (string, error) {
	raw, err := json.Marshal(b)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// RecorderConfig tunes retry and concurrency of a BookingRecorder. Zero values use defaults.
type RecorderConfig struct {
	AppendAttempts int
	AppendBackoff  time.Duration
	MaxBackoff     time.Duration
	WorkerCount    int
}

// BookingRecorder serializes bookings and admits them to the ledger, retrying lost races.
type BookingRecorder struct {
	ledger      Ledger
	metrics     RecorderMetrics
	logger      *zap.Logger
	serialize   Serializer
	sleep       func(context.Context, time.Duration) error
	maxAttempts int
	backoff     time.Duration
	maxBackoff  time.Duration
	workerCount int
}

// NewBookingRecorder builds a BookingRecorder with dependencies.
func NewBookingRecorder(
	ledger Ledger,
	metrics RecorderMetrics,
	logger *zap.Logger,
	cfg RecorderConfig,
) (*BookingRecorder, error) {
	if ledger == nil {
		return nil, errors.New("booking recorder ledger is required")
	}
	if metrics == nil {
		return nil, errors.New("booking recorder metrics is required")
	}
	if cfg.AppendAttempts <= 0 {
		cfg.AppendAttempts = defaultAppendAttempts
	}
	if cfg.AppendBackoff <= 0 {
		cfg.AppendBackoff = defaultAppendBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = defaultMaxBackoff
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = defaultWorkerCount
	}

	return &BookingRecorder{
		ledger:      ledger,
		metrics:     metrics,
		logger:      logger,
		serialize:   JSONSerializer,
		sleep:       clock.SleepWithContext,
		maxAttempts: cfg.AppendAttempts,
		backoff:     cfg.AppendBackoff,
		maxBackoff:  cfg.MaxBackoff,
		workerCount: cfg.WorkerCount,
	}, nil
}

// Record validates, serializes and appends a booking, returning the hash of the block that holds it.
// Serialization failures never reach the ledger.
func (r *BookingRecorder) Record(ctx context.Context, b model.Booking) (hash string, err error) {
	started := time.Now()
	attempts := 0
	defer func() {
		r.metrics.ObserveRecord(err, attempts, started)
	}()

	if err := b.Validate(); err != nil {
		return "", err
	}
	payload, err := r.serialize(b)
	if err != nil {
		return "", fmt.Errorf("%w %s: %w", ErrSerialize, b.ID, err)
	}

	for attempts < r.maxAttempts {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		attempts++
		block := ledger.NewBlock(payload, r.ledger.TailHash())
		if r.ledger.Admit(block) {
			r.logger.Debug("booking recorded",
				zap.String("booking_id", b.ID),
				zap.String("room_id", b.RoomID),
				zap.Int("nights", b.Nights()),
				zap.String("hash", block.Hash()),
				zap.Int("attempts", attempts),
			)
			return block.Hash(), nil
		}
		if attempts == r.maxAttempts {
			break
		}
		wait := clock.LinearBackoff(r.backoff, r.maxBackoff, attempts)
		r.logger.Debug("append lost race, retrying",
			zap.String("booking_id", b.ID),
			zap.Int("attempt", attempts),
			zap.Duration("backoff", wait),
		)
		if sleepErr := r.sleep(ctx, wait); sleepErr != nil {
			return "", sleepErr
		}
	}

	r.logger.Warn("booking not admitted", zap.String("booking_id", b.ID), zap.Int("attempts", attempts))
	return "", fmt.Errorf("%w: booking %s after %d attempts", ErrNotAdmitted, b.ID, attempts)
}

// RecordAll records bookings concurrently; the first failure cancels the rest.
func (r *BookingRecorder) RecordAll(ctx context.Context, bookings []model.Booking) error {
	record := func(ctx context.Context, b model.Booking) error {
		_, err := r.Record(ctx, b)
		return err
	}
	if err := workerpool.Process(ctx, r.workerCount, bookings, record, nil); err != nil {
		return fmt.Errorf("record %d bookings: %w", len(bookings), err)
	}
	return nil
}
