package seat

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/tripline/internal/http/respond"
	"github.com/MrJamesThe3rd/tripline/internal/seat"
	"github.com/MrJamesThe3rd/tripline/internal/trip"
)

// Handler adjusts seat counts directly, outside the request workflow.
type Handler struct {
	ledger *seat.Ledger
}

func NewHandler(ledger *seat.Ledger) *Handler {
	return &Handler{ledger: ledger}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/{tripID}/reserve", h.reserve)
	r.Post("/{tripID}/release", h.release)
}

type seatsRequest struct {
	Seats int `json:"seats" validate:"gt=0"`
}

type seatsResponse struct {
	TripID    trip.ID `json:"trip_id"`
	Available int     `json:"available"`
}

func (h *Handler) reserve(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, "reserved", h.ledger.Reserve)
}

func (h *Handler) release(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, "released", h.ledger.Release)
}

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request, verb string, apply func(ctx context.Context, id trip.ID, seats int) error) {
	id, err := trip.ParseID(chi.URLParam(r, "tripID"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req seatsRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	if err := apply(r.Context(), id, req.Seats); err != nil {
		respond.Error(w, r, err)
		return
	}

	slog.Info("seats "+verb, "trip_id", id.String(), "seats", req.Seats, "actor_id", respond.Actor(r))

	avail, err := h.ledger.Check(r.Context(), id, 1)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, seatsResponse{TripID: id, Available: avail.Available})
}
