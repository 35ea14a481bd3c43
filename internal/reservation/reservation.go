package reservation

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tripline/internal/database"
	"github.com/MrJamesThe3rd/tripline/internal/trip"
)

var (
	ErrNotFound = errors.New("reservation not found")
	// ErrRequestNotFound matches ErrNotFound.
	ErrRequestNotFound = fmt.Errorf("request: %w", ErrNotFound)
	ErrAlreadyResolved = errors.New("already resolved")
	ErrInvalidRequest  = errors.New("invalid reservation request")
	// ErrTransientFailure means the whole operation may be retried unchanged.
	ErrTransientFailure = database.ErrTransient
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentPending, PaymentPartial, PaymentPaid:
		return true
	}

	return false
}

// IsPaid reports whether the full amount has been collected.
func (p PaymentStatus) IsPaid() bool {
	return p == PaymentPaid
}

// PaymentMethod is a free-form label such as "cash" or "transfer".
type PaymentMethod string

// PassengerInfo is a passenger as entered on a request.
type PassengerInfo struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Seat  string `json:"seat,omitempty"`
}

// Request is a booking proposal awaiting approval. It is resolved exactly once.
type Request struct {
	ID              uuid.UUID
	TripID          trip.ID
	DepartureDate   time.Time
	Seats           int
	Passengers      []PassengerInfo
	PaymentMethod   PaymentMethod
	PaymentStatus   PaymentStatus
	AdvanceAmount   int64
	TotalAmount     int64
	RequesterID     string
	Status          Status
	ResolvedBy      string
	ResolvedAt      *time.Time
	RejectionReason string
	ReservationID   *uuid.UUID
	// LastFailure is the reason the most recent approval attempt failed.
	LastFailure string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Reservation is a confirmed booking. CreatedBy is the original requester,
// ApprovedBy the actor who confirmed it.
type Reservation struct {
	ID            uuid.UUID
	RequestID     *uuid.UUID
	TripID        trip.ID
	DepartureDate time.Time
	Seats         int
	Status        Status
	PaymentMethod PaymentMethod
	PaymentStatus PaymentStatus
	AdvanceAmount int64
	TotalAmount   int64
	CreatedBy     string
	ApprovedBy    string
	CancelledBy   string
	CancelledAt   *time.Time
	Passengers    []*Passenger
	Transaction   *Transaction
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Passenger struct {
	ID            uuid.UUID
	ReservationID uuid.UUID
	Name          string
	Phone         string
	Seat          string
	CreatedAt     time.Time
}

// Transaction records money collected for a reservation. UserID is the
// actor who authorized it.
type Transaction struct {
	ID            uuid.UUID
	ReservationID uuid.UUID
	Amount        int64
	Method        PaymentMethod
	UserID        string
	CreatedAt     time.Time
}

// EventType names a committed workflow transition.
type EventType string

const (
	EventApproved  EventType = "reservation.approved"
	EventRejected  EventType = "reservation.rejected"
	EventCancelled EventType = "reservation.cancelled"
)

type Event struct {
	Type          EventType
	ReservationID *uuid.UUID
	RequestID     *uuid.UUID
	TripID        trip.ID
	Seats         int
	ActorID       string
	OccurredAt    time.Time
}
