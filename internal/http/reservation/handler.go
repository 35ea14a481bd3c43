package reservation

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tripline/internal/http/respond"
	"github.com/MrJamesThe3rd/tripline/internal/identity"
	"github.com/MrJamesThe3rd/tripline/internal/money"
	"github.com/MrJamesThe3rd/tripline/internal/reservation"
	"github.com/MrJamesThe3rd/tripline/internal/trip"
)

type Handler struct {
	svc *reservation.Service
}

func NewHandler(svc *reservation.Service) *Handler {
	return &Handler{svc: svc}
}

var operatorOnly = identity.Require(identity.RoleOperator)

// RequestRoutes mounts the booking request workflow.
func (h *Handler) RequestRoutes(r chi.Router) {
	r.Post("/", h.submit)
	r.Get("/", h.listRequests)
	r.Get("/{id}", h.getRequest)
	r.With(operatorOnly).Post("/{id}/approve", h.approve)
	r.With(operatorOnly).Post("/{id}/reject", h.reject)
}

// ReservationRoutes mounts confirmed reservations.
func (h *Handler) ReservationRoutes(r chi.Router) {
	r.With(operatorOnly).Post("/", h.createDirect)
	r.Get("/", h.listReservations)
	r.Get("/{id}", h.getReservation)
	r.With(operatorOnly).Post("/{id}/cancel", h.cancel)
}

type bookingRequest struct {
	TripID        trip.ID                     `json:"trip_id"`
	Seats         int                         `json:"seats" validate:"gt=0"`
	Passengers    []reservation.PassengerInfo `json:"passengers" validate:"required"`
	PaymentMethod reservation.PaymentMethod   `json:"payment_method" validate:"required"`
	PaymentStatus reservation.PaymentStatus   `json:"payment_status"`
	AdvanceAmount money.Amount                `json:"advance_amount"`
	TotalAmount   money.Amount                `json:"total_amount"`
}

func (b bookingRequest) params() reservation.BookingParams {
	return reservation.BookingParams{
		TripID:        b.TripID,
		Seats:         b.Seats,
		Passengers:    b.Passengers,
		PaymentMethod: b.PaymentMethod,
		PaymentStatus: b.PaymentStatus,
		AdvanceAmount: int64(b.AdvanceAmount),
		TotalAmount:   int64(b.TotalAmount),
	}
}

func decodeBooking(w http.ResponseWriter, r *http.Request) (bookingRequest, bool) {
	var req bookingRequest
	ok := respond.Decode(w, r, &req)

	return req, ok
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeBooking(w, r)
	if !ok {
		return
	}

	req, err := h.svc.Submit(r.Context(), body.params(), respond.Actor(r))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toRequestResponse(req))
}

func (h *Handler) listRequests(w http.ResponseWriter, r *http.Request) {
	filter := reservation.RequestFilter{}
	q := r.URL.Query()

	if s := q.Get("status"); s != "" {
		filter.Status = new(reservation.Status(s))
	}

	if s := q.Get("trip_id"); s != "" {
		id, err := trip.ParseID(s)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		filter.TripID = &id
	}

	// Agents only ever see their own requests.
	if u, _ := identity.FromContext(r.Context()); u.Role == identity.RoleAgent {
		filter.RequesterID = &u.ID
	} else if s := q.Get("requester_id"); s != "" {
		filter.RequesterID = &s
	}

	reqs, err := h.svc.ListRequests(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toRequestList(reqs))
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return uuid.Nil, false
	}

	return id, true
}

func (h *Handler) getRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	req, err := h.svc.GetRequest(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if u, _ := identity.FromContext(r.Context()); u.Role == identity.RoleAgent && req.RequesterID != u.ID {
		respond.Error(w, r, reservation.ErrRequestNotFound)
		return
	}

	respond.JSON(w, http.StatusOK, toRequestResponse(req))
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	res, err := h.svc.Approve(r.Context(), id, respond.Actor(r))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toReservationResponse(res))
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var body rejectRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	req, err := h.svc.Reject(r.Context(), id, respond.Actor(r), body.Reason)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toRequestResponse(req))
}

func (h *Handler) createDirect(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeBooking(w, r)
	if !ok {
		return
	}

	res, err := h.svc.CreateDirect(r.Context(), body.params(), respond.Actor(r))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toReservationResponse(res))
}

func (h *Handler) listReservations(w http.ResponseWriter, r *http.Request) {
	filter := reservation.ReservationFilter{}
	q := r.URL.Query()

	if s := q.Get("status"); s != "" {
		filter.Status = new(reservation.Status(s))
	}

	if s := q.Get("trip_id"); s != "" {
		id, err := trip.ParseID(s)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		filter.TripID = &id
	}

	if s := q.Get("date"); s != "" {
		if d, err := respond.ParseDate(s); err == nil {
			filter.DepartureDate = &d
		}
	}

	// Passenger details are only shown to the agent who booked them.
	if u, _ := identity.FromContext(r.Context()); u.Role == identity.RoleAgent {
		filter.CreatedBy = &u.ID
	} else if s := q.Get("created_by"); s != "" {
		filter.CreatedBy = &s
	}

	list, err := h.svc.ListReservations(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toReservationList(list))
}

func (h *Handler) getReservation(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	res, err := h.svc.GetReservation(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if u, _ := identity.FromContext(r.Context()); u.Role == identity.RoleAgent && res.CreatedBy != u.ID {
		respond.Error(w, r, reservation.ErrNotFound)
		return
	}

	respond.JSON(w, http.StatusOK, toReservationResponse(res))
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	res, err := h.svc.Cancel(r.Context(), id, respond.Actor(r))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toReservationResponse(res))
}
