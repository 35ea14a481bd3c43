package seat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tripline/internal/trip"
)

// Tx is the part of a unit of work the ledger needs. LockSegments blocks
// until the caller owns every segment of the record for the rest of the tx.
//
//go:generate mockgen -source=ledger.go -destination=repository_mock.go -package=seat
type Tx interface {
	LockSegments(ctx context.Context, recordID uuid.UUID) ([]*trip.Segment, error)
	UpdateAvailableSeats(ctx context.Context, recordID uuid.UUID, index, available int) error
}

type SeatsTx interface {
	Tx
	Commit() error
	Rollback() error
}

type Repository interface {
	BeginSeats(ctx context.Context) (SeatsTx, error)
	GetSegments(ctx context.Context, recordID uuid.UUID) ([]*trip.Segment, error)
}

type Ledger struct {
	repo    Repository
	sharing Sharing
}

func NewLedger(repo Repository, sharing Sharing) *Ledger {
	if sharing == "" {
		sharing = SharingSegment
	}

	return &Ledger{repo: repo, sharing: sharing}
}

func (l *Ledger) Sharing() Sharing {
	return l.sharing
}

// Check reports whether seats fit on every leg id consumes. It never mutates.
func (l *Ledger) Check(ctx context.Context, id trip.ID, seats int) (Availability, error) {
	if seats <= 0 {
		return Availability{}, ErrInvalidSeatCount
	}

	segs, err := l.repo.GetSegments(ctx, id.RecordID)
	if err != nil {
		return Availability{}, err
	}

	return l.availability(id, segs, seats)
}

// CheckTx is Check against segments already locked by tx.
func (l *Ledger) CheckTx(ctx context.Context, tx Tx, id trip.ID, seats int) (Availability, error) {
	if seats <= 0 {
		return Availability{}, ErrInvalidSeatCount
	}

	segs, err := tx.LockSegments(ctx, id.RecordID)
	if err != nil {
		return Availability{}, err
	}

	return l.availability(id, segs, seats)
}

func (l *Ledger) availability(id trip.ID, segs []*trip.Segment, seats int) (Availability, error) {
	affected, err := l.affected(id, segs)
	if err != nil {
		return Availability{}, err
	}

	available := affected[0].AvailableSeats
	for _, seg := range affected[1:] {
		available = min(available, seg.AvailableSeats)
	}

	return Availability{OK: seats <= available, Available: max(available, 0)}, nil
}

// Reserve takes seats from every affected leg in its own unit of work.
func (l *Ledger) Reserve(ctx context.Context, id trip.ID, seats int) error {
	if seats <= 0 {
		return ErrInvalidSeatCount
	}

	return l.inTx(ctx, func(tx Tx) error {
		return l.ReserveTx(ctx, tx, id, seats)
	})
}

// Release gives seats back in its own unit of work.
func (l *Ledger) Release(ctx context.Context, id trip.ID, seats int) error {
	if seats <= 0 {
		return ErrInvalidSeatCount
	}

	return l.inTx(ctx, func(tx Tx) error {
		return l.ReleaseTx(ctx, tx, id, seats)
	})
}

// ReserveTx decrements every affected leg or none of them. Counts already
// outside [0, capacity] abort with ErrInvariantViolation.
func (l *Ledger) ReserveTx(ctx context.Context, tx Tx, id trip.ID, seats int) error {
	if seats <= 0 {
		return ErrInvalidSeatCount
	}

	segs, err := tx.LockSegments(ctx, id.RecordID)
	if err != nil {
		return err
	}

	affected, err := l.affected(id, segs)
	if err != nil {
		return err
	}

	for _, seg := range affected {
		if seg.AvailableSeats < 0 || seg.AvailableSeats > seg.Capacity {
			slog.Error("seat count out of range", "trip_id", seg.ID().String(), "available", seg.AvailableSeats, "capacity", seg.Capacity)

			return fmt.Errorf("%w: %s has %d of %d seats", ErrInvariantViolation, seg.ID(), seg.AvailableSeats, seg.Capacity)
		}

		if seg.AvailableSeats < seats {
			return &CapacityError{TripID: seg.ID(), Requested: seats, Available: seg.AvailableSeats}
		}
	}

	for _, seg := range affected {
		next := seg.AvailableSeats - seats

		if err := tx.UpdateAvailableSeats(ctx, seg.RecordID, seg.Index, next); err != nil {
			return fmt.Errorf("reserving seats on %s: %w", seg.ID(), err)
		}

		seg.AvailableSeats = next
	}

	return nil
}

// ReleaseTx increments every affected leg, clamped to its capacity.
func (l *Ledger) ReleaseTx(ctx context.Context, tx Tx, id trip.ID, seats int) error {
	if seats <= 0 {
		return ErrInvalidSeatCount
	}

	segs, err := tx.LockSegments(ctx, id.RecordID)
	if err != nil {
		return err
	}

	affected, err := l.affected(id, segs)
	if err != nil {
		return err
	}

	for _, seg := range affected {
		next := min(max(seg.AvailableSeats+seats, 0), seg.Capacity)
		if next == seg.AvailableSeats {
			continue
		}

		if err := tx.UpdateAvailableSeats(ctx, seg.RecordID, seg.Index, next); err != nil {
			return fmt.Errorf("releasing seats on %s: %w", seg.ID(), err)
		}

		seg.AvailableSeats = next
	}

	return nil
}

// affected returns the legs a booking on id consumes under the sharing mode.
func (l *Ledger) affected(id trip.ID, segs []*trip.Segment) ([]*trip.Segment, error) {
	var target *trip.Segment

	for _, seg := range segs {
		if seg.Index == id.SegmentIndex {
			target = seg
			break
		}
	}

	if target == nil {
		return nil, fmt.Errorf("%w: segment %s", trip.ErrNotFound, id)
	}

	if l.sharing == SharingVehicle {
		return segs, nil
	}

	return []*trip.Segment{target}, nil
}

func (l *Ledger) inTx(ctx context.Context, fn func(tx Tx) error) error {
	stx, err := l.repo.BeginSeats(ctx)
	if err != nil {
		return err
	}
	defer stx.Rollback()

	if err := fn(stx); err != nil {
		return err
	}

	return stx.Commit()
}
