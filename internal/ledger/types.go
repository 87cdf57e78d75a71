// Package ledger implements an in-memory append-only hash-chained ledger.
package ledger

import "time"

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Metrics interface {
		ObserveAppend(admitted bool, length int)
		ObserveValidate(valid bool, length int, started time.Time)
	}
)
