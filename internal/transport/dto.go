package transport

import "github.com/goodnatureofminers/bookingledger-backend/internal/model"

type blockResponse struct {
	Height       uint64 `json:"height"`
	Data         string `json:"data"`
	PreviousHash string `json:"previous_hash"`
	Hash         string `json:"hash"`
}

type chainResponse struct {
	Length int             `json:"length"`
	Blocks []blockResponse `json:"blocks"`
}

type tailResponse struct {
	Hash string `json:"hash"`
}

type validateResponse struct {
	Valid  bool   `json:"valid"`
	Length int    `json:"length"`
	Error  string `json:"error,omitempty"`
}

type recordResponse struct {
	BookingID string `json:"booking_id"`
	BlockHash string `json:"block_hash"`
}

type batchRequest struct {
	Bookings []model.Booking `json:"bookings"`
}

type batchResponse struct {
	Queued     int      `json:"queued"`
	BookingIDs []string `json:"booking_ids"`
}

type errorResponse struct {
	Error string `json:"error"`
}
