package service

import (
	"context"
	"errors"
	"time"

	"github.com/goodnatureofminers/bookingledger-backend/internal/model"
	"github.com/goodnatureofminers/bookingledger-backend/pkg/batcher"
	"go.uber.org/zap"
)

// ErrQueueClosed is returned by Enqueue after the queue was stopped.
var ErrQueueClosed = errors.New("booking queue closed")

// QueueConfig tunes the flushing of a BookingQueue. Zero values use defaults.
type QueueConfig struct {
	FlushSize     int
	FlushInterval time.Duration
	FlushRPS      int
}

// BookingQueue buffers bookings and records them in batches.
type BookingQueue struct {
	logger  *zap.Logger
	batcher *batcher.Batcher[model.Booking]
}

// NewBookingQueue builds a BookingQueue flushing into recorder.
func NewBookingQueue(recorder BatchRecorder, logger *zap.Logger, cfg QueueConfig) (*BookingQueue, error) {
	if recorder == nil {
		return nil, errors.New("booking queue recorder is required")
	}
	if cfg.FlushSize <= 0 {
		cfg.FlushSize = defaultQueueFlushSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = defaultQueueFlushInterval
	}
	if cfg.FlushRPS <= 0 {
		cfg.FlushRPS = defaultQueueFlushRPS
	}

	return &BookingQueue{
		logger: logger,
		batcher: batcher.New[model.Booking](
			logger.Named("batcher"),
			recorder.RecordAll,
			cfg.FlushSize,
			cfg.FlushInterval,
			cfg.FlushRPS,
		),
	}, nil
}

// Start begins background flushing until ctx is canceled or Stop is called.
func (q *BookingQueue) Start(ctx context.Context) {
	q.logger.Info("starting booking queue")
	q.batcher.Start(ctx)
}

// Stop records what is still buffered and waits for the flush loop to exit.
func (q *BookingQueue) Stop() {
	q.batcher.Stop()
	q.logger.Info("booking queue stopped")
}

// Enqueue validates a booking and buffers it for the next flush.
func (q *BookingQueue) Enqueue(ctx context.Context, b model.Booking) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if err := q.batcher.Add(ctx, b); err != nil {
		if errors.Is(err, batcher.ErrStopped) {
			return ErrQueueClosed
		}
		return err
	}
	return nil
}
