// Package manifest lists who travels on a segment and what they paid.
package manifest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tripline/internal/money"
	"github.com/MrJamesThe3rd/tripline/internal/reservation"
	"github.com/MrJamesThe3rd/tripline/internal/schedule"
	"github.com/MrJamesThe3rd/tripline/internal/trip"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=manifest
type Reservations interface {
	ListReservations(ctx context.Context, filter reservation.ReservationFilter) ([]*reservation.Reservation, error)
}

// Row is one passenger. Money columns are filled on the first passenger of
// each reservation only so totals add up when summed.
type Row struct {
	ReservationID uuid.UUID
	Passenger     string
	Phone         string
	Seat          string
	PaymentStatus reservation.PaymentStatus
	Collected     int64
	Due           int64
	First         bool
}

type Manifest struct {
	TripID        trip.ID
	Origin        string
	Destination   string
	DepartureDate time.Time
	Departure     schedule.TimeLabel
	Capacity      int
	Available     int
	Rows          []Row
	Seats         int
	Collected     int64
	Due           int64
}

type Service struct {
	trips        reservation.Trips
	reservations Reservations
}

func NewService(trips reservation.Trips, reservations Reservations) *Service {
	return &Service{trips: trips, reservations: reservations}
}

// Build collects the approved reservations on id.
func (s *Service) Build(ctx context.Context, id trip.ID) (*Manifest, error) {
	t, seg, err := s.trips.Segment(ctx, id)
	if err != nil {
		return nil, err
	}

	approved := reservation.StatusApproved

	list, err := s.reservations.ListReservations(ctx, reservation.ReservationFilter{Status: &approved, TripID: &id})
	if err != nil {
		return nil, fmt.Errorf("listing reservations: %w", err)
	}

	m := &Manifest{
		TripID:        id,
		Origin:        seg.Origin,
		Destination:   seg.Destination,
		DepartureDate: seg.DepartureDate(t.OriginalDate),
		Departure:     seg.Departure,
		Capacity:      seg.Capacity,
		Available:     seg.AvailableSeats,
	}

	for _, res := range list {
		var collected int64
		if res.Transaction != nil {
			collected = res.Transaction.Amount
		}

		due := max(res.TotalAmount-collected, 0)

		m.Seats += res.Seats
		m.Collected += collected
		m.Due += due

		for i, p := range res.Passengers {
			row := Row{
				ReservationID: res.ID,
				Passenger:     p.Name,
				Phone:         p.Phone,
				Seat:          p.Seat,
				PaymentStatus: res.PaymentStatus,
				First:         i == 0,
			}

			if row.First {
				row.Collected, row.Due = collected, due
			}

			m.Rows = append(m.Rows, row)
		}
	}

	return m, nil
}

var header = []string{"reservation", "passenger", "phone", "seat", "payment_status", "collected", "due"}

// WriteCSV writes one row per passenger after a header row.
func WriteCSV(w io.Writer, m *Manifest) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, r := range m.Rows {
		collected, due := "", ""
		if r.First {
			collected, due = money.Format(r.Collected), money.Format(r.Due)
		}

		record := []string{r.ReservationID.String(), r.Passenger, r.Phone, r.Seat, string(r.PaymentStatus), collected, due}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// Filename names a manifest download, e.g. "manifest_20250614_Feni-Chittagong_1.csv".
func Filename(m *Manifest) string {
	return fmt.Sprintf("manifest_%s_%s-%s_%s.csv",
		m.DepartureDate.Format("20060102"), safe(m.Origin), safe(m.Destination), strconv.Itoa(m.TripID.SegmentIndex))
}

func safe(s string) string {
	out := []rune(s)
	for i, r := range out {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' {
			continue
		}

		out[i] = '_'
	}

	return string(out)
}
