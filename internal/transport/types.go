// Package transport exposes the ledger over HTTP and reports its health over gRPC.
package transport

import (
	"context"

	"github.com/goodnatureofminers/bookingledger-backend/internal/ledger"
	"github.com/goodnatureofminers/bookingledger-backend/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Chain interface {
		Snapshot() []ledger.Block
		TailHash() string
		VerifyLen() (int, error)
	}
	Verifier interface {
		Verify() error
	}
	BookingRecorder interface {
		Record(ctx context.Context, b model.Booking) (string, error)
	}
	BookingQueue interface {
		Enqueue(ctx context.Context, b model.Booking) error
	}
)
