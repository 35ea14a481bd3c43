package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrJamesThe3rd/tripline/internal/database"
	"github.com/MrJamesThe3rd/tripline/internal/seat"
	"github.com/MrJamesThe3rd/tripline/internal/trip"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const checkViolation = "23514"

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

const selectSegmentColumns = `
	record_id, segment_index, origin, destination, departure_time, arrival_time, capacity, available_seats
`

func (s *Store) GetSegments(ctx context.Context, recordID uuid.UUID) ([]*trip.Segment, error) {
	query := `SELECT ` + selectSegmentColumns + `
		FROM trip_segments
		WHERE record_id = $1
		ORDER BY segment_index ASC`

	return querySegments(ctx, s.db, query, recordID)
}

func (s *Store) BeginSeats(ctx context.Context) (seat.SeatsTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning seats tx: %w", database.Classify(err))
	}

	return NewTx(dbTx), nil
}

func querySegments(ctx context.Context, q querier, query string, recordID uuid.UUID) ([]*trip.Segment, error) {
	rows, err := q.QueryContext(ctx, query, recordID)
	if err != nil {
		return nil, fmt.Errorf("querying segments: %w", database.Classify(err))
	}
	defer rows.Close()

	var segs []*trip.Segment

	for rows.Next() {
		var seg trip.Segment
		if err := rows.Scan(
			&seg.RecordID, &seg.Index, &seg.Origin, &seg.Destination,
			&seg.Departure, &seg.Arrival, &seg.Capacity, &seg.AvailableSeats,
		); err != nil {
			return nil, fmt.Errorf("scanning segment: %w", err)
		}

		segs = append(segs, &seg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating segment rows: %w", database.Classify(err))
	}

	if len(segs) == 0 {
		return nil, trip.ErrNotFound
	}

	return segs, nil
}

// Tx serializes seat mutations per record inside one database transaction.
// Other stores embed it to share the unit of work.
type Tx struct {
	tx     *sql.Tx
	locked map[uuid.UUID]bool
}

func NewTx(dbTx *sql.Tx) *Tx {
	return &Tx{tx: dbTx, locked: make(map[uuid.UUID]bool)}
}

// SQL exposes the underlying transaction to embedding stores.
func (t *Tx) SQL() *sql.Tx { return t.tx }

func (t *Tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", database.Classify(err))
	}

	return nil
}

func (t *Tx) Rollback() error { return t.tx.Rollback() }

// LockSegments takes the record's advisory lock once per tx, then row-locks
// and returns its segments.
func (t *Tx) LockSegments(ctx context.Context, recordID uuid.UUID) ([]*trip.Segment, error) {
	if !t.locked[recordID] {
		lockKey := database.LockKey("trip", recordID.String())
		if _, err := t.tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", lockKey); err != nil {
			return nil, fmt.Errorf("acquiring trip lock: %w", database.Classify(err))
		}

		t.locked[recordID] = true
	}

	query := `SELECT ` + selectSegmentColumns + `
		FROM trip_segments
		WHERE record_id = $1
		ORDER BY segment_index ASC
		FOR UPDATE`

	return querySegments(ctx, t.tx, query, recordID)
}

func (t *Tx) UpdateAvailableSeats(ctx context.Context, recordID uuid.UUID, index, available int) error {
	query := `
		UPDATE trip_segments
		SET available_seats = $1
		WHERE record_id = $2 AND segment_index = $3
	`

	res, err := t.tx.ExecContext(ctx, query, available, recordID, index)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == checkViolation {
			return fmt.Errorf("%w: %s", seat.ErrInvariantViolation, pgErr.ConstraintName)
		}

		return fmt.Errorf("updating available seats: %w", database.Classify(err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating available seats: %w", err)
	}

	if n == 0 {
		return trip.ErrNotFound
	}

	return nil
}
