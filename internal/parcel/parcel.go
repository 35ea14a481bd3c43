package parcel

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tripline/internal/reservation"
	"github.com/MrJamesThe3rd/tripline/internal/trip"
)

var (
	ErrNotFound          = errors.New("parcel not found")
	ErrInvalidParcel     = errors.New("invalid parcel")
	ErrInvalidTransition = errors.New("invalid parcel status transition")
)

type Status string

const (
	StatusBooked     Status = "booked"
	StatusDispatched Status = "dispatched"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusBooked:     {StatusDispatched, StatusCancelled},
	StatusDispatched: {StatusDelivered},
}

// CanTransition reports whether a parcel in status s may move to next.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

// Parcel is a courier shipment carried on a trip segment. It never takes seats.
type Parcel struct {
	ID            uuid.UUID
	TripID        trip.ID
	DepartureDate time.Time
	Sender        string
	SenderPhone   string
	Receiver      string
	ReceiverPhone string
	Description   string
	Charge        int64
	PaymentStatus reservation.PaymentStatus
	Status        Status
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
