package memory

import (
	"slices"

	"github.com/MrJamesThe3rd/tripline/internal/reservation"
	"github.com/MrJamesThe3rd/tripline/internal/trip"
)

func cloneTrip(t *trip.Trip) *trip.Trip {
	c := *t
	c.Segments = make([]*trip.Segment, len(t.Segments))

	for i, seg := range t.Segments {
		s := *seg
		c.Segments[i] = &s
	}

	return &c
}

func cloneRequest(req *reservation.Request) *reservation.Request {
	c := *req
	c.Passengers = slices.Clone(req.Passengers)

	if req.ResolvedAt != nil {
		at := *req.ResolvedAt
		c.ResolvedAt = &at
	}

	if req.ReservationID != nil {
		id := *req.ReservationID
		c.ReservationID = &id
	}

	return &c
}

func cloneReservation(res *reservation.Reservation) *reservation.Reservation {
	c := *res

	if res.RequestID != nil {
		id := *res.RequestID
		c.RequestID = &id
	}

	if res.CancelledAt != nil {
		at := *res.CancelledAt
		c.CancelledAt = &at
	}

	if res.Passengers != nil {
		c.Passengers = make([]*reservation.Passenger, len(res.Passengers))

		for i, p := range res.Passengers {
			pc := *p
			c.Passengers[i] = &pc
		}
	}

	if res.Transaction != nil {
		tc := *res.Transaction
		c.Transaction = &tc
	}

	return &c
}
