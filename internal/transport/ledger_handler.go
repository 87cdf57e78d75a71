package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goodnatureofminers/bookingledger-backend/internal/model"
	"github.com/goodnatureofminers/bookingledger-backend/internal/service"
	"github.com/goodnatureofminers/bookingledger-backend/pkg/safe"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// LedgerHandler serves chain queries and booking intake.
type LedgerHandler struct {
	chain    Chain
	recorder BookingRecorder
	queue    BookingQueue
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

// NewLedgerHandler returns a LedgerHandler instance.
func NewLedgerHandler(chain Chain, recorder BookingRecorder, queue BookingQueue, logger *zap.Logger) *LedgerHandler {
	return &LedgerHandler{
		chain:    chain,
		recorder: recorder,
		queue:    queue,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

// Register adds the handler routes to mux.
func (h *LedgerHandler) Register(mux *runtime.ServeMux) error {
	routes := []struct {
		method  string
		pattern string
		handler runtime.HandlerFunc
	}{
		{http.MethodGet, "/v1/chain", h.Chain},
		{http.MethodGet, "/v1/chain/tail", h.Tail},
		{http.MethodGet, "/v1/chain/validate", h.Validate},
		{http.MethodPost, "/v1/bookings", h.RecordBooking},
		{http.MethodPost, "/v1/bookings/batch", h.EnqueueBookings},
	}
	for _, r := range routes {
		if err := mux.HandlePath(r.method, r.pattern, r.handler); err != nil {
			return fmt.Errorf("register %s %s: %w", r.method, r.pattern, err)
		}
	}
	return nil
}

// Chain lists every block newest first.
func (h *LedgerHandler) Chain(w http.ResponseWriter, _ *http.Request, _ map[string]string) {
	blocks := h.chain.Snapshot()
	resp := chainResponse{
		Length: len(blocks),
		Blocks: make([]blockResponse, 0, len(blocks)),
	}
	for i, b := range blocks {
		height, err := safe.Height(len(blocks), i)
		if err != nil {
			h.writeError(w, http.StatusInternalServerError, err)
			return
		}
		resp.Blocks = append(resp.Blocks, blockResponse{
			Height:       height,
			Data:         b.Data(),
			PreviousHash: b.PreviousHash(),
			Hash:         b.Hash(),
		})
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// Tail returns the hash of the newest block.
func (h *LedgerHandler) Tail(w http.ResponseWriter, _ *http.Request, _ map[string]string) {
	h.writeJSON(w, http.StatusOK, tailResponse{Hash: h.chain.TailHash()})
}

// Validate re-verifies the whole chain. A broken chain is reported in the body, not as an HTTP error.
func (h *LedgerHandler) Validate(w http.ResponseWriter, _ *http.Request, _ map[string]string) {
	length, err := h.chain.VerifyLen()
	resp := validateResponse{Valid: err == nil, Length: length}
	if err != nil {
		resp.Error = err.Error()
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// RecordBooking records a single booking synchronously and returns the hash of its block.
func (h *LedgerHandler) RecordBooking(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var b model.Booking
	if err := decodeBody(r, &b); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	b = h.stamp(b)

	hash, err := h.recorder.Record(r.Context(), b)
	if err != nil {
		h.writeError(w, recordStatus(err), err)
		return
	}
	h.writeJSON(w, http.StatusCreated, recordResponse{BookingID: b.ID, BlockHash: hash})
}

// EnqueueBookings validates a batch and hands it to the asynchronous queue.
func (h *LedgerHandler) EnqueueBookings(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req batchRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(req.Bookings) == 0 {
		h.writeError(w, http.StatusBadRequest, errors.New("bookings are required"))
		return
	}

	bookings := make([]model.Booking, 0, len(req.Bookings))
	for i, b := range req.Bookings {
		b = h.stamp(b)
		if err := b.Validate(); err != nil {
			h.writeError(w, http.StatusBadRequest, fmt.Errorf("booking %d: %w", i, err))
			return
		}
		bookings = append(bookings, b)
	}

	resp := batchResponse{BookingIDs: make([]string, 0, len(bookings))}
	for _, b := range bookings {
		if err := h.queue.Enqueue(r.Context(), b); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, service.ErrQueueClosed) {
				status = http.StatusServiceUnavailable
			}
			h.writeError(w, status, fmt.Errorf("queued %d of %d: %w", resp.Queued, len(bookings), err))
			return
		}
		resp.Queued++
		resp.BookingIDs = append(resp.BookingIDs, b.ID)
	}
	h.writeJSON(w, http.StatusAccepted, resp)
}

func (h *LedgerHandler) stamp(b model.Booking) model.Booking {
	if b.ID == "" {
		b.ID = h.newID()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = h.now()
	}
	return b
}

func recordStatus(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidBooking):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrSerialize):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrNotAdmitted):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func (h *LedgerHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("write response failed", zap.Error(err))
	}
}

func (h *LedgerHandler) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.Int("status", status), zap.Error(err))
	} else {
		h.logger.Debug("request rejected", zap.Int("status", status), zap.Error(err))
	}
	h.writeJSON(w, status, errorResponse{Error: err.Error()})
}
