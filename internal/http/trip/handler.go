package trip

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tripline/internal/http/respond"
	"github.com/MrJamesThe3rd/tripline/internal/identity"
	"github.com/MrJamesThe3rd/tripline/internal/manifest"
	"github.com/MrJamesThe3rd/tripline/internal/schedule"
	"github.com/MrJamesThe3rd/tripline/internal/seat"
	"github.com/MrJamesThe3rd/tripline/internal/trip"
)

type Handler struct {
	svc       *trip.Service
	ledger    *seat.Ledger
	manifests *manifest.Service
}

func NewHandler(svc *trip.Service, ledger *seat.Ledger, manifests *manifest.Service) *Handler {
	return &Handler{svc: svc, ledger: ledger, manifests: manifests}
}

func (h *Handler) Routes(r chi.Router) {
	r.With(identity.Require(identity.RoleOperator)).Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/departures", h.departures)
	r.Get("/segments/{tripID}/availability", h.availability)
	r.With(identity.Require(identity.RoleOperator)).Get("/segments/{tripID}/manifest", h.manifest)
	r.Get("/{recordID}", h.get)
}

type segmentRequest struct {
	Origin      string             `json:"origin" validate:"required"`
	Destination string             `json:"destination" validate:"required"`
	Departure   schedule.TimeLabel `json:"departure"`
	Arrival     schedule.TimeLabel `json:"arrival"`
	Capacity    int                `json:"capacity" validate:"gt=0"`
}

type createTripRequest struct {
	OriginalDate string           `json:"original_date"`
	Segments     []segmentRequest `json:"segments" validate:"required,dive"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTripRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	date, err := respond.ParseDate(req.OriginalDate)
	if err != nil {
		http.Error(w, "original_date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	params := trip.CreateParams{OriginalDate: date, Segments: make([]trip.SegmentParams, len(req.Segments))}
	for i, s := range req.Segments {
		params.Segments[i] = trip.SegmentParams(s)
	}

	t, err := h.svc.Create(r.Context(), params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	slog.Info("trip created", "record_id", t.RecordID, "segments", len(t.Segments), "actor_id", respond.Actor(r))

	respond.JSON(w, http.StatusCreated, toResponse(t))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := trip.ListFilter{}

	if s := r.URL.Query().Get("start_date"); s != "" {
		if t, err := respond.ParseDate(s); err == nil {
			filter.StartDate = new(t)
		}
	}

	if s := r.URL.Query().Get("end_date"); s != "" {
		if t, err := respond.ParseDate(s); err == nil {
			filter.EndDate = new(t)
		}
	}

	trips, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(trips))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "recordID"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	t, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(t))
}

func (h *Handler) departures(w http.ResponseWriter, r *http.Request) {
	date, err := respond.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		http.Error(w, "date query parameter must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	deps, err := h.svc.Departures(r.Context(), date)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toDepartureList(deps))
}

func (h *Handler) availability(w http.ResponseWriter, r *http.Request) {
	id, err := trip.ParseID(chi.URLParam(r, "tripID"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	seats := 1

	if s := r.URL.Query().Get("seats"); s != "" {
		if seats, err = strconv.Atoi(s); err != nil {
			http.Error(w, "seats must be a number", http.StatusBadRequest)
			return
		}
	}

	avail, err := h.ledger.Check(r.Context(), id, seats)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, availabilityResponse{
		TripID:    id,
		Seats:     seats,
		OK:        avail.OK,
		Available: avail.Available,
		Sharing:   string(h.ledger.Sharing()),
	})
}

func (h *Handler) manifest(w http.ResponseWriter, r *http.Request) {
	id, err := trip.ParseID(chi.URLParam(r, "tripID"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	m, err := h.manifests.Build(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", manifest.Filename(m)))

	if err := manifest.WriteCSV(w, m); err != nil {
		slog.Error("failed to write manifest", "trip_id", id.String(), "error", err)
	}
}
