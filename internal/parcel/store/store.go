package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tripline/internal/database"
	"github.com/MrJamesThe3rd/tripline/internal/parcel"
	"github.com/MrJamesThe3rd/tripline/internal/reservation"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

// Expected column order matches selectParcelColumns.
func scanParcel(s scanner) (*parcel.Parcel, error) {
	var p parcel.Parcel

	var paymentStr, statusStr string

	if err := s.Scan(
		&p.ID, &p.TripID.RecordID, &p.TripID.SegmentIndex, &p.DepartureDate,
		&p.Sender, &p.SenderPhone, &p.Receiver, &p.ReceiverPhone, &p.Description,
		&p.Charge, &paymentStr, &statusStr, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	p.PaymentStatus = reservation.PaymentStatus(paymentStr)
	p.Status = parcel.Status(statusStr)

	return &p, nil
}

const selectParcelColumns = `
	id, record_id, segment_index, departure_date,
	sender, sender_phone, receiver, receiver_phone, description,
	charge, payment_status, status, created_by, created_at, updated_at
`

func (s *Store) CreateParcel(ctx context.Context, p *parcel.Parcel) error {
	query := `
		INSERT INTO parcels (id, record_id, segment_index, departure_date, sender, sender_phone, receiver, receiver_phone,
			description, charge, payment_status, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		p.ID,
		p.TripID.RecordID,
		p.TripID.SegmentIndex,
		p.DepartureDate,
		p.Sender,
		p.SenderPhone,
		p.Receiver,
		p.ReceiverPhone,
		p.Description,
		p.Charge,
		p.PaymentStatus,
		p.Status,
		p.CreatedBy,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating parcel: %w", database.Classify(err))
	}

	return nil
}

func (s *Store) GetParcel(ctx context.Context, id uuid.UUID) (*parcel.Parcel, error) {
	query := `SELECT ` + selectParcelColumns + ` FROM parcels WHERE id = $1`

	p, err := scanParcel(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, parcel.ErrNotFound
		}

		return nil, fmt.Errorf("getting parcel: %w", database.Classify(err))
	}

	return p, nil
}

func (s *Store) ListParcels(ctx context.Context, filter parcel.ListFilter) ([]*parcel.Parcel, error) {
	query := `SELECT ` + selectParcelColumns + ` FROM parcels WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.DepartureDate != nil {
		query += fmt.Sprintf(" AND departure_date = $%d", argIdx)

		args = append(args, *filter.DepartureDate)
		argIdx++
	}

	if filter.TripID != nil {
		query += fmt.Sprintf(" AND record_id = $%d AND segment_index = $%d", argIdx, argIdx+1)

		args = append(args, filter.TripID.RecordID, filter.TripID.SegmentIndex)
		argIdx += 2
	}

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	query += " ORDER BY departure_date ASC, created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing parcels: %w", database.Classify(err))
	}
	defer rows.Close()

	var parcels []*parcel.Parcel

	for rows.Next() {
		p, err := scanParcel(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning parcel: %w", err)
		}

		parcels = append(parcels, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating parcel rows: %w", err)
	}

	return parcels, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, from, to parcel.Status) error {
	query := `
		UPDATE parcels
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`

	res, err := s.db.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return fmt.Errorf("updating parcel status: %w", database.Classify(err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating parcel status: %w", err)
	}

	if n == 0 {
		return fmt.Errorf("%w: parcel is no longer %s", parcel.ErrInvalidTransition, from)
	}

	return nil
}
