package reservation

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tripline/internal/http/respond"
	"github.com/MrJamesThe3rd/tripline/internal/money"
	"github.com/MrJamesThe3rd/tripline/internal/reservation"
	"github.com/MrJamesThe3rd/tripline/internal/trip"
)

type requestResponse struct {
	ID              uuid.UUID                   `json:"id"`
	TripID          trip.ID                     `json:"trip_id"`
	DepartureDate   string                      `json:"departure_date"`
	Seats           int                         `json:"seats"`
	Passengers      []reservation.PassengerInfo `json:"passengers"`
	PaymentMethod   reservation.PaymentMethod   `json:"payment_method"`
	PaymentStatus   reservation.PaymentStatus   `json:"payment_status"`
	AdvanceAmount   money.Amount                `json:"advance_amount"`
	TotalAmount     money.Amount                `json:"total_amount"`
	RequesterID     string                      `json:"requester_id"`
	Status          reservation.Status          `json:"status"`
	ResolvedBy      string                      `json:"resolved_by,omitempty"`
	ResolvedAt      *time.Time                  `json:"resolved_at,omitempty"`
	RejectionReason string                      `json:"rejection_reason,omitempty"`
	ReservationID   *uuid.UUID                  `json:"reservation_id,omitempty"`
	LastFailure     string                      `json:"last_failure,omitempty"`
	CreatedAt       time.Time                   `json:"created_at"`
}

type passengerResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Phone string    `json:"phone,omitempty"`
	Seat  string    `json:"seat,omitempty"`
}

type transactionResponse struct {
	ID        uuid.UUID                 `json:"id"`
	Amount    money.Amount              `json:"amount"`
	Method    reservation.PaymentMethod `json:"method"`
	UserID    string                    `json:"user_id"`
	CreatedAt time.Time                 `json:"created_at"`
}

type reservationResponse struct {
	ID            uuid.UUID                 `json:"id"`
	RequestID     *uuid.UUID                `json:"request_id,omitempty"`
	TripID        trip.ID                   `json:"trip_id"`
	DepartureDate string                    `json:"departure_date"`
	Seats         int                       `json:"seats"`
	Status        reservation.Status        `json:"status"`
	PaymentMethod reservation.PaymentMethod `json:"payment_method"`
	PaymentStatus reservation.PaymentStatus `json:"payment_status"`
	AdvanceAmount money.Amount              `json:"advance_amount"`
	TotalAmount   money.Amount              `json:"total_amount"`
	CreatedBy     string                    `json:"created_by"`
	ApprovedBy    string                    `json:"approved_by"`
	CancelledBy   string                    `json:"cancelled_by,omitempty"`
	CancelledAt   *time.Time                `json:"cancelled_at,omitempty"`
	Passengers    []passengerResponse       `json:"passengers"`
	Transaction   *transactionResponse      `json:"transaction,omitempty"`
	CreatedAt     time.Time                 `json:"created_at"`
}

func toRequestResponse(req *reservation.Request) requestResponse {
	return requestResponse{
		ID:              req.ID,
		TripID:          req.TripID,
		DepartureDate:   respond.Date(req.DepartureDate),
		Seats:           req.Seats,
		Passengers:      req.Passengers,
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   req.PaymentStatus,
		AdvanceAmount:   money.Amount(req.AdvanceAmount),
		TotalAmount:     money.Amount(req.TotalAmount),
		RequesterID:     req.RequesterID,
		Status:          req.Status,
		ResolvedBy:      req.ResolvedBy,
		ResolvedAt:      req.ResolvedAt,
		RejectionReason: req.RejectionReason,
		ReservationID:   req.ReservationID,
		LastFailure:     req.LastFailure,
		CreatedAt:       req.CreatedAt,
	}
}

func toRequestList(reqs []*reservation.Request) []requestResponse {
	resp := make([]requestResponse, len(reqs))
	for i, req := range reqs {
		resp[i] = toRequestResponse(req)
	}

	return resp
}

func toReservationResponse(res *reservation.Reservation) reservationResponse {
	resp := reservationResponse{
		ID:            res.ID,
		RequestID:     res.RequestID,
		TripID:        res.TripID,
		DepartureDate: respond.Date(res.DepartureDate),
		Seats:         res.Seats,
		Status:        res.Status,
		PaymentMethod: res.PaymentMethod,
		PaymentStatus: res.PaymentStatus,
		AdvanceAmount: money.Amount(res.AdvanceAmount),
		TotalAmount:   money.Amount(res.TotalAmount),
		CreatedBy:     res.CreatedBy,
		ApprovedBy:    res.ApprovedBy,
		CancelledBy:   res.CancelledBy,
		CancelledAt:   res.CancelledAt,
		Passengers:    make([]passengerResponse, len(res.Passengers)),
		CreatedAt:     res.CreatedAt,
	}

	for i, p := range res.Passengers {
		resp.Passengers[i] = passengerResponse{ID: p.ID, Name: p.Name, Phone: p.Phone, Seat: p.Seat}
	}

	if t := res.Transaction; t != nil {
		resp.Transaction = &transactionResponse{
			ID:        t.ID,
			Amount:    money.Amount(t.Amount),
			Method:    t.Method,
			UserID:    t.UserID,
			CreatedAt: t.CreatedAt,
		}
	}

	return resp
}

func toReservationList(list []*reservation.Reservation) []reservationResponse {
	resp := make([]reservationResponse, len(list))
	for i, res := range list {
		resp[i] = toReservationResponse(res)
	}

	return resp
}
