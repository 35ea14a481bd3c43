package parcel

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tripline/internal/http/respond"
	"github.com/MrJamesThe3rd/tripline/internal/money"
	"github.com/MrJamesThe3rd/tripline/internal/parcel"
	"github.com/MrJamesThe3rd/tripline/internal/reservation"
	"github.com/MrJamesThe3rd/tripline/internal/trip"
)

type Handler struct {
	svc *parcel.Service
}

func NewHandler(svc *parcel.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}/status", h.updateStatus)
}

type parcelResponse struct {
	ID            uuid.UUID                 `json:"id"`
	TripID        trip.ID                   `json:"trip_id"`
	DepartureDate string                    `json:"departure_date"`
	Sender        string                    `json:"sender"`
	SenderPhone   string                    `json:"sender_phone,omitempty"`
	Receiver      string                    `json:"receiver"`
	ReceiverPhone string                    `json:"receiver_phone,omitempty"`
	Description   string                    `json:"description,omitempty"`
	Charge        money.Amount              `json:"charge"`
	PaymentStatus reservation.PaymentStatus `json:"payment_status"`
	Status        parcel.Status             `json:"status"`
	CreatedBy     string                    `json:"created_by"`
	CreatedAt     time.Time                 `json:"created_at"`
	UpdatedAt     time.Time                 `json:"updated_at"`
}

func toResponse(p *parcel.Parcel) parcelResponse {
	return parcelResponse{
		ID:            p.ID,
		TripID:        p.TripID,
		DepartureDate: respond.Date(p.DepartureDate),
		Sender:        p.Sender,
		SenderPhone:   p.SenderPhone,
		Receiver:      p.Receiver,
		ReceiverPhone: p.ReceiverPhone,
		Description:   p.Description,
		Charge:        money.Amount(p.Charge),
		PaymentStatus: p.PaymentStatus,
		Status:        p.Status,
		CreatedBy:     p.CreatedBy,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

type createParcelRequest struct {
	TripID        trip.ID                   `json:"trip_id"`
	Sender        string                    `json:"sender" validate:"required"`
	SenderPhone   string                    `json:"sender_phone"`
	Receiver      string                    `json:"receiver" validate:"required"`
	ReceiverPhone string                    `json:"receiver_phone"`
	Description   string                    `json:"description"`
	Charge        money.Amount              `json:"charge"`
	PaymentStatus reservation.PaymentStatus `json:"payment_status"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createParcelRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	p, err := h.svc.Create(r.Context(), parcel.CreateParams{
		TripID:        req.TripID,
		Sender:        req.Sender,
		SenderPhone:   req.SenderPhone,
		Receiver:      req.Receiver,
		ReceiverPhone: req.ReceiverPhone,
		Description:   req.Description,
		Charge:        int64(req.Charge),
		PaymentStatus: req.PaymentStatus,
	}, respond.Actor(r))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(p))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := parcel.ListFilter{}
	q := r.URL.Query()

	if s := q.Get("date"); s != "" {
		d, err := respond.ParseDate(s)
		if err != nil {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		filter.DepartureDate = &d
	}

	if s := q.Get("trip_id"); s != "" {
		id, err := trip.ParseID(s)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		filter.TripID = &id
	}

	if s := q.Get("status"); s != "" {
		filter.Status = new(parcel.Status(s))
	}

	parcels, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]parcelResponse, len(parcels))
	for i, p := range parcels {
		resp[i] = toResponse(p)
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(p))
}

type updateStatusRequest struct {
	Status parcel.Status `json:"status" validate:"required,oneof=booked dispatched delivered cancelled"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateStatusRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	p, err := h.svc.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(p))
}
