package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tripline/internal/database"
	"github.com/MrJamesThe3rd/tripline/internal/trip"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) CreateTrip(ctx context.Context, t *trip.Trip) error {
	return s.CreateTrips(ctx, []*trip.Trip{t})
}

func (s *Store) CreateTrips(ctx context.Context, ts []*trip.Trip) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", database.Classify(err))
	}
	defer dbTx.Rollback()

	for _, t := range ts {
		if err := insertTrip(ctx, dbTx, t); err != nil {
			return err
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing trips: %w", database.Classify(err))
	}

	return nil
}

func insertTrip(ctx context.Context, e execer, t *trip.Trip) error {
	tripQuery := `
		INSERT INTO trips (record_id, original_date, created_at)
		VALUES ($1, $2, NOW())
		RETURNING created_at
	`
	if err := e.QueryRowContext(ctx, tripQuery, t.RecordID, t.OriginalDate).Scan(&t.CreatedAt); err != nil {
		return fmt.Errorf("creating trip: %w", database.Classify(err))
	}

	segmentQuery := `
		INSERT INTO trip_segments (record_id, segment_index, origin, destination, departure_time, arrival_time, capacity, available_seats)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	for _, seg := range t.Segments {
		_, err := e.ExecContext(ctx, segmentQuery,
			t.RecordID,
			seg.Index,
			seg.Origin,
			seg.Destination,
			seg.Departure,
			seg.Arrival,
			seg.Capacity,
			seg.AvailableSeats,
		)
		if err != nil {
			return fmt.Errorf("creating segment %d: %w", seg.Index, database.Classify(err))
		}
	}

	return nil
}

const selectTripColumns = `
	t.record_id, t.original_date, t.created_at,
	s.segment_index, s.origin, s.destination, s.departure_time, s.arrival_time, s.capacity, s.available_seats
`

func (s *Store) GetTrip(ctx context.Context, recordID uuid.UUID) (*trip.Trip, error) {
	query := `SELECT ` + selectTripColumns + `
		FROM trips t
		JOIN trip_segments s ON s.record_id = t.record_id
		WHERE t.record_id = $1
		ORDER BY s.segment_index ASC`

	rows, err := s.db.QueryContext(ctx, query, recordID)
	if err != nil {
		return nil, fmt.Errorf("getting trip: %w", database.Classify(err))
	}
	defer rows.Close()

	trips, err := scanTrips(rows)
	if err != nil {
		return nil, err
	}

	if len(trips) == 0 {
		return nil, trip.ErrNotFound
	}

	return trips[0], nil
}

func (s *Store) ListTrips(ctx context.Context, filter trip.ListFilter) ([]*trip.Trip, error) {
	query := `SELECT ` + selectTripColumns + `
		FROM trips t
		JOIN trip_segments s ON s.record_id = t.record_id
		WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND t.original_date >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND t.original_date <= $%d", argIdx)

		args = append(args, *filter.EndDate)
		argIdx++
	}

	query += " ORDER BY t.original_date ASC, t.record_id ASC, s.segment_index ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing trips: %w", database.Classify(err))
	}
	defer rows.Close()

	return scanTrips(rows)
}

// scanTrips groups joined trip/segment rows. Rows must be ordered by record_id.
func scanTrips(rows *sql.Rows) ([]*trip.Trip, error) {
	var (
		trips   []*trip.Trip
		current *trip.Trip
	)

	for rows.Next() {
		var (
			t   trip.Trip
			seg trip.Segment
		)

		if err := rows.Scan(
			&t.RecordID, &t.OriginalDate, &t.CreatedAt,
			&seg.Index, &seg.Origin, &seg.Destination, &seg.Departure, &seg.Arrival, &seg.Capacity, &seg.AvailableSeats,
		); err != nil {
			return nil, fmt.Errorf("scanning trip: %w", err)
		}

		if current == nil || current.RecordID != t.RecordID {
			current = &t
			trips = append(trips, current)
		}

		seg.RecordID = current.RecordID
		current.Segments = append(current.Segments, &seg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating trip rows: %w", database.Classify(err))
	}

	return trips, nil
}
