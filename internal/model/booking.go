// Package model defines the booking domain model recorded in the ledger.
package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidBooking is wrapped by every booking validation failure.
var ErrInvalidBooking = errors.New("invalid booking")

// Booking is a room reservation serialized into a ledger block.
type Booking struct {
	ID        string    `json:"id"`
	GuestName string    `json:"guest_name"`
	RoomID    string    `json:"room_id"`
	CheckIn   time.Time `json:"check_in"`
	CheckOut  time.Time `json:"check_out"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the fields a booking must carry before it is recorded.
func (b Booking) Validate() error {
	switch {
	case b.GuestName == "":
		return fmt.Errorf("%w: guest name is required", ErrInvalidBooking)
	case b.RoomID == "":
		return fmt.Errorf("%w: room id is required", ErrInvalidBooking)
	case b.CheckIn.IsZero() || b.CheckOut.IsZero():
		return fmt.Errorf("%w: check-in and check-out are required", ErrInvalidBooking)
	case !b.CheckOut.After(b.CheckIn):
		return fmt.Errorf("%w: check-out %s is not after check-in %s",
			ErrInvalidBooking, b.CheckOut.Format(time.DateOnly), b.CheckIn.Format(time.DateOnly))
	}
	return nil
}

// Nights returns the number of nights between check-in and check-out.
func (b Booking) Nights() int {
	return int(b.CheckOut.Sub(b.CheckIn).Hours() / 24)
}
