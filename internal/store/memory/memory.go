// Package memory keeps every repository in process memory. It honours the
// same unit-of-work and per-record locking rules as the Postgres stores.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tripline/internal/database"
	"github.com/MrJamesThe3rd/tripline/internal/parcel"
	"github.com/MrJamesThe3rd/tripline/internal/reservation"
	"github.com/MrJamesThe3rd/tripline/internal/seat"
	"github.com/MrJamesThe3rd/tripline/internal/stop"
	"github.com/MrJamesThe3rd/tripline/internal/trip"
)

var (
	_ trip.Repository        = (*Store)(nil)
	_ seat.Repository        = (*Store)(nil)
	_ reservation.Repository = (*Store)(nil)
	_ parcel.Repository      = (*Store)(nil)
	_ stop.Repository        = (*Store)(nil)
)

type alias struct {
	alias     string
	canonical string
	seq       int
}

type Store struct {
	mu sync.RWMutex

	trips        map[uuid.UUID]*trip.Trip
	requests     map[uuid.UUID]*reservation.Request
	requestOrder []uuid.UUID
	reservations map[uuid.UUID]*reservation.Reservation
	resOrder     []uuid.UUID
	parcels      map[uuid.UUID]*parcel.Parcel
	parcelOrder  []uuid.UUID
	aliases      map[string]alias
	aliasSeq     int

	locks keyedLocks
}

func New() *Store {
	return &Store{
		trips:        make(map[uuid.UUID]*trip.Trip),
		requests:     make(map[uuid.UUID]*reservation.Request),
		reservations: make(map[uuid.UUID]*reservation.Reservation),
		parcels:      make(map[uuid.UUID]*parcel.Parcel),
		aliases:      make(map[string]alias),
		locks:        keyedLocks{m: make(map[string]chan struct{})},
	}
}

// keyedLocks is a set of mutexes addressed by key. Waiting honours ctx.
type keyedLocks struct {
	mu sync.Mutex
	m  map[string]chan struct{}
}

func (k *keyedLocks) lock(ctx context.Context, key string) error {
	k.mu.Lock()

	ch, ok := k.m[key]
	if !ok {
		ch = make(chan struct{}, 1)
		k.m[key] = ch
	}

	k.mu.Unlock()

	select {
	case ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for %s: %w", key, database.Classify(ctx.Err()))
	}
}

func (k *keyedLocks) unlock(key string) {
	k.mu.Lock()
	ch := k.m[key]
	k.mu.Unlock()

	<-ch
}

// Trips.

func (s *Store) CreateTrip(ctx context.Context, t *trip.Trip) error {
	return s.CreateTrips(ctx, []*trip.Trip{t})
}

func (s *Store) CreateTrips(_ context.Context, ts []*trip.Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range ts {
		if _, ok := s.trips[t.RecordID]; ok {
			return fmt.Errorf("creating trip: record %s already exists", t.RecordID)
		}
	}

	now := time.Now()

	for _, t := range ts {
		t.CreatedAt = now
		s.trips[t.RecordID] = cloneTrip(t)
	}

	return nil
}

func (s *Store) GetTrip(_ context.Context, recordID uuid.UUID) (*trip.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.trips[recordID]
	if !ok {
		return nil, trip.ErrNotFound
	}

	return cloneTrip(t), nil
}

func (s *Store) ListTrips(_ context.Context, filter trip.ListFilter) ([]*trip.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var trips []*trip.Trip

	for _, t := range s.trips {
		if filter.StartDate != nil && t.OriginalDate.Before(*filter.StartDate) {
			continue
		}

		if filter.EndDate != nil && t.OriginalDate.After(*filter.EndDate) {
			continue
		}

		trips = append(trips, cloneTrip(t))
	}

	sort.Slice(trips, func(i, j int) bool {
		if !trips[i].OriginalDate.Equal(trips[j].OriginalDate) {
			return trips[i].OriginalDate.Before(trips[j].OriginalDate)
		}

		return trips[i].RecordID.String() < trips[j].RecordID.String()
	})

	return trips, nil
}

// Seats.

func (s *Store) GetSegments(ctx context.Context, recordID uuid.UUID) ([]*trip.Segment, error) {
	t, err := s.GetTrip(ctx, recordID)
	if err != nil {
		return nil, err
	}

	return t.Segments, nil
}

func (s *Store) BeginSeats(_ context.Context) (seat.SeatsTx, error) {
	return s.newTx(), nil
}

// Requests and reservations.

func (s *Store) Begin(_ context.Context) (reservation.Tx, error) {
	return s.newTx(), nil
}

func (s *Store) CreateRequest(_ context.Context, req *reservation.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	req.CreatedAt, req.UpdatedAt = now, now

	s.requests[req.ID] = cloneRequest(req)
	s.requestOrder = append(s.requestOrder, req.ID)

	return nil
}

func (s *Store) GetRequest(_ context.Context, id uuid.UUID) (*reservation.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req, ok := s.requests[id]
	if !ok {
		return nil, reservation.ErrRequestNotFound
	}

	return cloneRequest(req), nil
}

func (s *Store) ListRequests(_ context.Context, filter reservation.RequestFilter) ([]*reservation.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var reqs []*reservation.Request

	for _, id := range s.requestOrder {
		req := s.requests[id]

		if filter.Status != nil && req.Status != *filter.Status {
			continue
		}

		if filter.RequesterID != nil && req.RequesterID != *filter.RequesterID {
			continue
		}

		if filter.TripID != nil && req.TripID != *filter.TripID {
			continue
		}

		reqs = append(reqs, cloneRequest(req))
	}

	return reqs, nil
}

func (s *Store) RecordFailure(_ context.Context, id uuid.UUID, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok || req.Status != reservation.StatusPending {
		return nil
	}

	req.LastFailure = reason
	req.UpdatedAt = time.Now()

	return nil
}

func (s *Store) GetReservation(_ context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res, ok := s.reservations[id]
	if !ok {
		return nil, reservation.ErrNotFound
	}

	return cloneReservation(res), nil
}

func (s *Store) ListReservations(_ context.Context, filter reservation.ReservationFilter) ([]*reservation.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var list []*reservation.Reservation

	for _, id := range s.resOrder {
		res := s.reservations[id]

		if filter.Status != nil && res.Status != *filter.Status {
			continue
		}

		if filter.TripID != nil && res.TripID != *filter.TripID {
			continue
		}

		if filter.DepartureDate != nil && !sameDay(res.DepartureDate, *filter.DepartureDate) {
			continue
		}

		if filter.CreatedBy != nil && res.CreatedBy != *filter.CreatedBy {
			continue
		}

		list = append(list, cloneReservation(res))
	}

	return list, nil
}

// Parcels.

func (s *Store) CreateParcel(_ context.Context, p *parcel.Parcel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now

	c := *p
	s.parcels[p.ID] = &c
	s.parcelOrder = append(s.parcelOrder, p.ID)

	return nil
}

func (s *Store) GetParcel(_ context.Context, id uuid.UUID) (*parcel.Parcel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.parcels[id]
	if !ok {
		return nil, parcel.ErrNotFound
	}

	c := *p

	return &c, nil
}

func (s *Store) ListParcels(_ context.Context, filter parcel.ListFilter) ([]*parcel.Parcel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var parcels []*parcel.Parcel

	for _, id := range s.parcelOrder {
		p := s.parcels[id]

		if filter.DepartureDate != nil && !sameDay(p.DepartureDate, *filter.DepartureDate) {
			continue
		}

		if filter.TripID != nil && p.TripID != *filter.TripID {
			continue
		}

		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}

		c := *p
		parcels = append(parcels, &c)
	}

	return parcels, nil
}

func (s *Store) UpdateStatus(_ context.Context, id uuid.UUID, from, to parcel.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.parcels[id]
	if !ok {
		return parcel.ErrNotFound
	}

	if p.Status != from {
		return fmt.Errorf("%w: parcel is no longer %s", parcel.ErrInvalidTransition, from)
	}

	p.Status = to
	p.UpdatedAt = time.Now()

	return nil
}

// Stop aliases.

func (s *Store) FindCanonical(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	padded := " " + key + " "

	var best *alias

	for _, a := range s.aliases {
		if !strings.Contains(padded, " "+a.alias+" ") {
			continue
		}

		if best == nil || len(a.alias) > len(best.alias) || (len(a.alias) == len(best.alias) && a.seq > best.seq) {
			best = &a
		}
	}

	if best == nil {
		return "", nil
	}

	return best.canonical, nil
}

func (s *Store) CreateAlias(_ context.Context, name, canonical string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.aliasSeq++
	s.aliases[name] = alias{alias: name, canonical: canonical, seq: s.aliasSeq}

	return nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()

	return ay == by && am == bm && ad == bd
}
