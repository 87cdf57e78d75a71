// Package service records bookings into the ledger.
package service

import (
	"context"
	"time"

	"github.com/goodnatureofminers/bookingledger-backend/internal/ledger"
	"github.com/goodnatureofminers/bookingledger-backend/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Ledger interface {
		TailHash() string
		Admit(block ledger.Block) bool
	}
	RecorderMetrics interface {
		ObserveRecord(err error, attempts int, started time.Time)
	}
	BatchRecorder interface {
		RecordAll(ctx context.Context, bookings []model.Booking) error
	}
)
