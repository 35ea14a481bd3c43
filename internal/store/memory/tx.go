package memory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tripline/internal/reservation"
	"github.com/MrJamesThe3rd/tripline/internal/seat"
	"github.com/MrJamesThe3rd/tripline/internal/trip"
)

var errTxDone = errors.New("transaction has already been committed or rolled back")

type seatKey struct {
	recordID uuid.UUID
	index    int
}

// tx buffers writes until Commit and holds its keyed locks until it ends.
// Locks are taken lazily; callers lock requests or reservations before trips.
type tx struct {
	s      *Store
	held   []string
	seats  map[seatKey]int
	ops    []func()
	closed bool
}

func (s *Store) newTx() *tx {
	return &tx{s: s, seats: make(map[seatKey]int)}
}

func (t *tx) acquire(ctx context.Context, key string) error {
	if t.closed {
		return errTxDone
	}

	if slices.Contains(t.held, key) {
		return nil
	}

	if err := t.s.locks.lock(ctx, key); err != nil {
		return err
	}

	t.held = append(t.held, key)

	return nil
}

func (t *tx) release() {
	for i := len(t.held) - 1; i >= 0; i-- {
		t.s.locks.unlock(t.held[i])
	}

	t.held = nil
}

func (t *tx) Commit() error {
	if t.closed {
		return errTxDone
	}

	t.s.mu.Lock()

	for k, available := range t.seats {
		if tr, ok := t.s.trips[k.recordID]; ok {
			tr.Segments[k.index].AvailableSeats = available
		}
	}

	for _, op := range t.ops {
		op()
	}

	t.s.mu.Unlock()

	t.closed = true
	t.release()

	return nil
}

func (t *tx) Rollback() error {
	if t.closed {
		return nil
	}

	t.closed = true
	t.release()

	return nil
}

func (t *tx) LockSegments(ctx context.Context, recordID uuid.UUID) ([]*trip.Segment, error) {
	if err := t.acquire(ctx, "trip:"+recordID.String()); err != nil {
		return nil, err
	}

	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	tr, ok := t.s.trips[recordID]
	if !ok {
		return nil, trip.ErrNotFound
	}

	segs := cloneTrip(tr).Segments
	for _, seg := range segs {
		if available, ok := t.seats[seatKey{recordID, seg.Index}]; ok {
			seg.AvailableSeats = available
		}
	}

	return segs, nil
}

func (t *tx) UpdateAvailableSeats(_ context.Context, recordID uuid.UUID, index, available int) error {
	if t.closed {
		return errTxDone
	}

	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	tr, ok := t.s.trips[recordID]
	if !ok || index < 0 || index >= len(tr.Segments) {
		return trip.ErrNotFound
	}

	if capacity := tr.Segments[index].Capacity; available < 0 || available > capacity {
		return fmt.Errorf("%w: %d of %d seats", seat.ErrInvariantViolation, available, capacity)
	}

	t.seats[seatKey{recordID, index}] = available

	return nil
}

func (t *tx) LockRequest(ctx context.Context, id uuid.UUID) (*reservation.Request, error) {
	if err := t.acquire(ctx, "request:"+id.String()); err != nil {
		return nil, err
	}

	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	req, ok := t.s.requests[id]
	if !ok {
		return nil, reservation.ErrRequestNotFound
	}

	return cloneRequest(req), nil
}

func (t *tx) LockReservation(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	if err := t.acquire(ctx, "reservation:"+id.String()); err != nil {
		return nil, err
	}

	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	res, ok := t.s.reservations[id]
	if !ok {
		return nil, reservation.ErrNotFound
	}

	return cloneReservation(res), nil
}

func (t *tx) CreateReservation(_ context.Context, res *reservation.Reservation) error {
	if t.closed {
		return errTxDone
	}

	now := time.Now()
	res.CreatedAt, res.UpdatedAt = now, now

	c := cloneReservation(res)
	c.Passengers, c.Transaction = nil, nil

	t.ops = append(t.ops, func() {
		t.s.reservations[c.ID] = c
		t.s.resOrder = append(t.s.resOrder, c.ID)
	})

	return nil
}

func (t *tx) CreatePassengers(_ context.Context, passengers []*reservation.Passenger) error {
	if t.closed {
		return errTxDone
	}

	now := time.Now()
	copies := make([]*reservation.Passenger, len(passengers))

	for i, p := range passengers {
		p.CreatedAt = now
		c := *p
		copies[i] = &c
	}

	t.ops = append(t.ops, func() {
		for _, p := range copies {
			if res, ok := t.s.reservations[p.ReservationID]; ok {
				res.Passengers = append(res.Passengers, p)
			}
		}
	})

	return nil
}

func (t *tx) CreateTransaction(_ context.Context, tr *reservation.Transaction) error {
	if t.closed {
		return errTxDone
	}

	tr.CreatedAt = time.Now()
	c := *tr

	t.ops = append(t.ops, func() {
		if res, ok := t.s.reservations[c.ReservationID]; ok {
			res.Transaction = &c
		}
	})

	return nil
}

func (t *tx) ResolveRequest(_ context.Context, req *reservation.Request) error {
	if !slices.Contains(t.held, "request:"+req.ID.String()) {
		return fmt.Errorf("resolving request %s: not locked by this transaction", req.ID)
	}

	c := cloneRequest(req)
	c.UpdatedAt = time.Now()

	t.ops = append(t.ops, func() {
		t.s.requests[c.ID] = c
	})

	return nil
}

func (t *tx) UpdateReservationStatus(_ context.Context, res *reservation.Reservation) error {
	if t.closed {
		return errTxDone
	}

	status, cancelledBy, cancelledAt := res.Status, res.CancelledBy, res.CancelledAt
	now := time.Now()

	t.ops = append(t.ops, func() {
		stored, ok := t.s.reservations[res.ID]
		if !ok {
			return
		}

		stored.Status = status
		stored.CancelledBy = cancelledBy
		stored.CancelledAt = cancelledAt
		stored.UpdatedAt = now
	})

	return nil
}
