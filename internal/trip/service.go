package trip

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tripline/internal/schedule"
)

// SearchWindowDays bounds how many days before the searched date a trip may
// have started and still have a leg departing on it. Trips whose legs depart
// later than that are rejected at creation.
const SearchWindowDays = 3

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=trip
type Repository interface {
	CreateTrip(ctx context.Context, t *Trip) error
	CreateTrips(ctx context.Context, ts []*Trip) error
	GetTrip(ctx context.Context, recordID uuid.UUID) (*Trip, error)
	ListTrips(ctx context.Context, filter ListFilter) ([]*Trip, error)
}

// Cache holds recently computed departure lists.
type Cache interface {
	GetDepartures(ctx context.Context, date time.Time) ([]Departure, bool)
	SetDepartures(ctx context.Context, date time.Time, deps []Departure)
}

type ListFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
}

type Service struct {
	repo  Repository
	cache Cache
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// WithCache enables a read-through cache for Departures.
func (s *Service) WithCache(c Cache) *Service {
	s.cache = c
	return s
}

type SegmentParams struct {
	Origin      string
	Destination string
	Departure   schedule.TimeLabel
	Arrival     schedule.TimeLabel
	Capacity    int
}

type CreateParams struct {
	OriginalDate time.Time
	Segments     []SegmentParams
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Trip, error) {
	t, err := buildTrip(params)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateTrip(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}

// CreateBatch stores all trips or none of them.
func (s *Service) CreateBatch(ctx context.Context, params []CreateParams) ([]*Trip, error) {
	if len(params) == 0 {
		return nil, nil
	}

	trips := make([]*Trip, len(params))

	for i, p := range params {
		t, err := buildTrip(p)
		if err != nil {
			return nil, fmt.Errorf("trip %d: %w", i+1, err)
		}

		trips[i] = t
	}

	if err := s.repo.CreateTrips(ctx, trips); err != nil {
		return nil, err
	}

	return trips, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Trip, error) {
	return s.repo.ListTrips(ctx, filter)
}

func (s *Service) Get(ctx context.Context, recordID uuid.UUID) (*Trip, error) {
	return s.repo.GetTrip(ctx, recordID)
}

// Segment loads the trip owning id and the addressed segment.
func (s *Service) Segment(ctx context.Context, id ID) (*Trip, *Segment, error) {
	t, err := s.repo.GetTrip(ctx, id.RecordID)
	if err != nil {
		return nil, nil, err
	}

	seg, ok := t.Segment(id.SegmentIndex)
	if !ok {
		return nil, nil, fmt.Errorf("%w: segment %s", ErrNotFound, id)
	}

	return t, seg, nil
}

// Departures lists every segment whose resolved departure date is date,
// regardless of the date its trip started on.
func (s *Service) Departures(ctx context.Context, date time.Time) ([]Departure, error) {
	day := schedule.DateOf(date, 0)

	if s.cache != nil {
		if deps, ok := s.cache.GetDepartures(ctx, day); ok {
			return deps, nil
		}
	}

	start := day.AddDate(0, 0, -SearchWindowDays)

	trips, err := s.repo.ListTrips(ctx, ListFilter{StartDate: &start, EndDate: &day})
	if err != nil {
		return nil, fmt.Errorf("listing trips: %w", err)
	}

	deps := DeparturesOn(trips, day)

	if s.cache != nil {
		s.cache.SetDepartures(ctx, day, deps)
	}

	return deps, nil
}

// DeparturesOn filters the segments of trips that depart on day.
func DeparturesOn(trips []*Trip, day time.Time) []Departure {
	day = schedule.DateOf(day, 0)

	var deps []Departure

	for _, t := range trips {
		for _, seg := range t.Segments {
			if !sameDay(seg.DepartureDate(t.OriginalDate), day) {
				continue
			}

			deps = append(deps, Departure{
				TripID:       seg.ID(),
				Date:         day,
				OriginalDate: t.OriginalDate,
				Segment:      seg,
			})
		}
	}

	sort.SliceStable(deps, func(i, j int) bool {
		a, b := deps[i].Segment.Departure.Clock(), deps[j].Segment.Departure.Clock()
		if a != b {
			return a < b
		}

		return deps[i].Segment.Origin < deps[j].Segment.Origin
	})

	return deps
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()

	return ay == by && am == bm && ad == bd
}

func buildTrip(params CreateParams) (*Trip, error) {
	if params.OriginalDate.IsZero() {
		return nil, fmt.Errorf("%w: original date is required", ErrInvalidTrip)
	}

	if len(params.Segments) == 0 {
		return nil, fmt.Errorf("%w: at least one segment is required", ErrInvalidTrip)
	}

	if params.Segments[0].Departure.DayOffset != 0 {
		return nil, fmt.Errorf("%w: first segment must depart on the original date", ErrInvalidTrip)
	}

	t := &Trip{
		RecordID:     uuid.New(),
		OriginalDate: schedule.DateOf(params.OriginalDate, 0),
		Segments:     make([]*Segment, len(params.Segments)),
	}

	for i, p := range params.Segments {
		origin := strings.TrimSpace(p.Origin)
		destination := strings.TrimSpace(p.Destination)

		if origin == "" || destination == "" {
			return nil, fmt.Errorf("%w: segment %d needs origin and destination", ErrInvalidTrip, i)
		}

		if p.Capacity <= 0 {
			return nil, fmt.Errorf("%w: segment %d capacity must be positive", ErrInvalidTrip, i)
		}

		if p.Arrival.DayOffset < p.Departure.DayOffset {
			return nil, fmt.Errorf("%w: segment %d arrives before it departs", ErrInvalidTrip, i)
		}

		if p.Departure.DayOffset > SearchWindowDays {
			return nil, fmt.Errorf("%w: segment %d departs more than %d days after the trip starts", ErrInvalidTrip, i, SearchWindowDays)
		}

		if i > 0 && p.Departure.DayOffset < params.Segments[i-1].Departure.DayOffset {
			return nil, fmt.Errorf("%w: segment %d departs on an earlier day than segment %d", ErrInvalidTrip, i, i-1)
		}

		t.Segments[i] = &Segment{
			RecordID:       t.RecordID,
			Index:          i,
			Origin:         origin,
			Destination:    destination,
			Departure:      p.Departure,
			Arrival:        p.Arrival,
			Capacity:       p.Capacity,
			AvailableSeats: p.Capacity,
		}
	}

	return t, nil
}
