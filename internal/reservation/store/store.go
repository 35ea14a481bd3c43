package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tripline/internal/database"
	"github.com/MrJamesThe3rd/tripline/internal/reservation"
	seatStore "github.com/MrJamesThe3rd/tripline/internal/seat/store"
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

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const selectRequestColumns = `
	r.id, r.record_id, r.segment_index, r.departure_date, r.seats, r.passengers,
	r.payment_method, r.payment_status, r.advance_amount, r.total_amount, r.requester_id,
	r.status, r.resolved_by, r.resolved_at, r.rejection_reason, r.reservation_id, r.last_failure,
	r.created_at, r.updated_at
`

func scanRequest(s scanner) (*reservation.Request, error) {
	var req reservation.Request

	var method, payment, status string

	var passengers []byte

	if err := s.Scan(
		&req.ID, &req.TripID.RecordID, &req.TripID.SegmentIndex, &req.DepartureDate, &req.Seats, &passengers,
		&method, &payment, &req.AdvanceAmount, &req.TotalAmount, &req.RequesterID,
		&status, &req.ResolvedBy, &req.ResolvedAt, &req.RejectionReason, &req.ReservationID, &req.LastFailure,
		&req.CreatedAt, &req.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(passengers, &req.Passengers); err != nil {
		return nil, fmt.Errorf("decoding passengers: %w", err)
	}

	req.PaymentMethod = reservation.PaymentMethod(method)
	req.PaymentStatus = reservation.PaymentStatus(payment)
	req.Status = reservation.Status(status)

	return &req, nil
}

const selectReservationColumns = `
	v.id, v.request_id, v.record_id, v.segment_index, v.departure_date, v.seats, v.status,
	v.payment_method, v.payment_status, v.advance_amount, v.total_amount,
	v.created_by, v.approved_by, v.cancelled_by, v.cancelled_at, v.created_at, v.updated_at,
	t.id, t.amount, t.method, t.user_id, t.created_at
`

func scanReservation(s scanner) (*reservation.Reservation, error) {
	var res reservation.Reservation

	var status, method, payment string

	var txID *uuid.UUID

	var txAmount sql.NullInt64

	var txMethod, txUserID sql.NullString

	var txCreatedAt sql.NullTime

	if err := s.Scan(
		&res.ID, &res.RequestID, &res.TripID.RecordID, &res.TripID.SegmentIndex, &res.DepartureDate, &res.Seats, &status,
		&method, &payment, &res.AdvanceAmount, &res.TotalAmount,
		&res.CreatedBy, &res.ApprovedBy, &res.CancelledBy, &res.CancelledAt, &res.CreatedAt, &res.UpdatedAt,
		&txID, &txAmount, &txMethod, &txUserID, &txCreatedAt,
	); err != nil {
		return nil, err
	}

	res.Status = reservation.Status(status)
	res.PaymentMethod = reservation.PaymentMethod(method)
	res.PaymentStatus = reservation.PaymentStatus(payment)

	if txID != nil {
		res.Transaction = &reservation.Transaction{
			ID:            *txID,
			ReservationID: res.ID,
			Amount:        txAmount.Int64,
			Method:        reservation.PaymentMethod(txMethod.String),
			UserID:        txUserID.String,
			CreatedAt:     txCreatedAt.Time,
		}
	}

	return &res, nil
}

func (s *Store) CreateRequest(ctx context.Context, req *reservation.Request) error {
	passengers, err := json.Marshal(req.Passengers)
	if err != nil {
		return fmt.Errorf("encoding passengers: %w", err)
	}

	query := `
		INSERT INTO reservation_requests (id, record_id, segment_index, departure_date, seats, passengers,
			payment_method, payment_status, advance_amount, total_amount, requester_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err = s.db.QueryRowContext(ctx, query,
		req.ID,
		req.TripID.RecordID,
		req.TripID.SegmentIndex,
		req.DepartureDate,
		req.Seats,
		passengers,
		req.PaymentMethod,
		req.PaymentStatus,
		req.AdvanceAmount,
		req.TotalAmount,
		req.RequesterID,
		req.Status,
	).Scan(&req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating request: %w", database.Classify(err))
	}

	return nil
}

func (s *Store) GetRequest(ctx context.Context, id uuid.UUID) (*reservation.Request, error) {
	return getRequest(ctx, s.db, id, "")
}

func getRequest(ctx context.Context, q queryer, id uuid.UUID, suffix string) (*reservation.Request, error) {
	query := `SELECT ` + selectRequestColumns + ` FROM reservation_requests r WHERE r.id = $1` + suffix

	req, err := scanRequest(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reservation.ErrRequestNotFound
		}

		return nil, fmt.Errorf("getting request: %w", database.Classify(err))
	}

	return req, nil
}

func (s *Store) ListRequests(ctx context.Context, filter reservation.RequestFilter) ([]*reservation.Request, error) {
	query := `SELECT ` + selectRequestColumns + ` FROM reservation_requests r WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND r.status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.RequesterID != nil {
		query += fmt.Sprintf(" AND r.requester_id = $%d", argIdx)

		args = append(args, *filter.RequesterID)
		argIdx++
	}

	if filter.TripID != nil {
		query += fmt.Sprintf(" AND r.record_id = $%d AND r.segment_index = $%d", argIdx, argIdx+1)

		args = append(args, filter.TripID.RecordID, filter.TripID.SegmentIndex)
		argIdx += 2
	}

	query += " ORDER BY r.created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing requests: %w", database.Classify(err))
	}
	defer rows.Close()

	var reqs []*reservation.Request

	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning request: %w", err)
		}

		reqs = append(reqs, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating request rows: %w", err)
	}

	return reqs, nil
}

func (s *Store) RecordFailure(ctx context.Context, id uuid.UUID, reason string) error {
	query := `
		UPDATE reservation_requests
		SET last_failure = $1, updated_at = NOW()
		WHERE id = $2 AND status = 'pending'
	`

	if _, err := s.db.ExecContext(ctx, query, reason, id); err != nil {
		return fmt.Errorf("recording failure: %w", database.Classify(err))
	}

	return nil
}

func (s *Store) GetReservation(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	return getReservation(ctx, s.db, id, "")
}

func getReservation(ctx context.Context, q queryer, id uuid.UUID, suffix string) (*reservation.Reservation, error) {
	query := `SELECT ` + selectReservationColumns + `
		FROM reservations v
		LEFT JOIN transactions t ON t.reservation_id = v.id
		WHERE v.id = $1` + suffix

	res, err := scanReservation(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reservation.ErrNotFound
		}

		return nil, fmt.Errorf("getting reservation: %w", database.Classify(err))
	}

	passengers, err := listPassengers(ctx, q, "reservation_id = $1", []any{id})
	if err != nil {
		return nil, err
	}

	res.Passengers = passengers[res.ID]

	return res, nil
}

func (s *Store) ListReservations(ctx context.Context, filter reservation.ReservationFilter) ([]*reservation.Reservation, error) {
	where := "TRUE"

	var args []any

	argIdx := 1

	if filter.Status != nil {
		where += fmt.Sprintf(" AND v.status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.TripID != nil {
		where += fmt.Sprintf(" AND v.record_id = $%d AND v.segment_index = $%d", argIdx, argIdx+1)

		args = append(args, filter.TripID.RecordID, filter.TripID.SegmentIndex)
		argIdx += 2
	}

	if filter.DepartureDate != nil {
		where += fmt.Sprintf(" AND v.departure_date = $%d", argIdx)

		args = append(args, *filter.DepartureDate)
		argIdx++
	}

	if filter.CreatedBy != nil {
		where += fmt.Sprintf(" AND v.created_by = $%d", argIdx)

		args = append(args, *filter.CreatedBy)
	}

	query := `SELECT ` + selectReservationColumns + `
		FROM reservations v
		LEFT JOIN transactions t ON t.reservation_id = v.id
		WHERE ` + where + `
		ORDER BY v.created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing reservations: %w", database.Classify(err))
	}
	defer rows.Close()

	var list []*reservation.Reservation

	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning reservation: %w", err)
		}

		list = append(list, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reservation rows: %w", err)
	}

	if len(list) == 0 {
		return nil, nil
	}

	passengers, err := listPassengers(ctx, s.db, "reservation_id IN (SELECT v.id FROM reservations v WHERE "+where+")", args)
	if err != nil {
		return nil, err
	}

	for _, res := range list {
		res.Passengers = passengers[res.ID]
	}

	return list, nil
}

func listPassengers(ctx context.Context, q queryer, where string, args []any) (map[uuid.UUID][]*reservation.Passenger, error) {
	query := `
		SELECT id, reservation_id, name, phone, seat, created_at
		FROM passengers
		WHERE ` + where + `
		ORDER BY reservation_id, created_at ASC, id ASC`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing passengers: %w", database.Classify(err))
	}
	defer rows.Close()

	byReservation := make(map[uuid.UUID][]*reservation.Passenger)

	for rows.Next() {
		var p reservation.Passenger
		if err := rows.Scan(&p.ID, &p.ReservationID, &p.Name, &p.Phone, &p.Seat, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning passenger: %w", err)
		}

		byReservation[p.ReservationID] = append(byReservation[p.ReservationID], &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating passenger rows: %w", err)
	}

	return byReservation, nil
}

func (s *Store) Begin(ctx context.Context) (reservation.Tx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning tx: %w", database.Classify(err))
	}

	return &tx{Tx: seatStore.NewTx(dbTx)}, nil
}

// tx adds the workflow writes to the seat unit of work.
type tx struct {
	*seatStore.Tx
}

func (t *tx) LockRequest(ctx context.Context, id uuid.UUID) (*reservation.Request, error) {
	return getRequest(ctx, t.SQL(), id, " FOR UPDATE")
}

func (t *tx) LockReservation(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	return getReservation(ctx, t.SQL(), id, " FOR UPDATE OF v")
}

func (t *tx) CreateReservation(ctx context.Context, res *reservation.Reservation) error {
	query := `
		INSERT INTO reservations (id, request_id, record_id, segment_index, departure_date, seats, status,
			payment_method, payment_status, advance_amount, total_amount, created_by, approved_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := t.SQL().QueryRowContext(ctx, query,
		res.ID,
		res.RequestID,
		res.TripID.RecordID,
		res.TripID.SegmentIndex,
		res.DepartureDate,
		res.Seats,
		res.Status,
		res.PaymentMethod,
		res.PaymentStatus,
		res.AdvanceAmount,
		res.TotalAmount,
		res.CreatedBy,
		res.ApprovedBy,
	).Scan(&res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting reservation: %w", database.Classify(err))
	}

	return nil
}

func (t *tx) CreatePassengers(ctx context.Context, passengers []*reservation.Passenger) error {
	query := `
		INSERT INTO passengers (id, reservation_id, name, phone, seat, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	now := time.Now()

	for _, p := range passengers {
		p.CreatedAt = now

		if _, err := t.SQL().ExecContext(ctx, query, p.ID, p.ReservationID, p.Name, p.Phone, p.Seat, p.CreatedAt); err != nil {
			return fmt.Errorf("inserting passenger: %w", database.Classify(err))
		}
	}

	return nil
}

func (t *tx) CreateTransaction(ctx context.Context, tr *reservation.Transaction) error {
	query := `
		INSERT INTO transactions (id, reservation_id, amount, method, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`

	err := t.SQL().QueryRowContext(ctx, query, tr.ID, tr.ReservationID, tr.Amount, tr.Method, tr.UserID).Scan(&tr.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting transaction: %w", database.Classify(err))
	}

	return nil
}

func (t *tx) ResolveRequest(ctx context.Context, req *reservation.Request) error {
	query := `
		UPDATE reservation_requests
		SET status = $1, resolved_by = $2, resolved_at = $3, rejection_reason = $4, reservation_id = $5,
			last_failure = $6, updated_at = NOW()
		WHERE id = $7 AND status = 'pending'
	`

	res, err := t.SQL().ExecContext(ctx, query,
		req.Status,
		req.ResolvedBy,
		req.ResolvedAt,
		req.RejectionReason,
		req.ReservationID,
		req.LastFailure,
		req.ID,
	)
	if err != nil {
		return fmt.Errorf("updating request: %w", database.Classify(err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating request: %w", err)
	}

	if n == 0 {
		return reservation.ErrAlreadyResolved
	}

	return nil
}

func (t *tx) UpdateReservationStatus(ctx context.Context, res *reservation.Reservation) error {
	query := `
		UPDATE reservations
		SET status = $1, cancelled_by = $2, cancelled_at = $3, updated_at = NOW()
		WHERE id = $4
	`

	if _, err := t.SQL().ExecContext(ctx, query, res.Status, res.CancelledBy, res.CancelledAt, res.ID); err != nil {
		return fmt.Errorf("updating reservation: %w", database.Classify(err))
	}

	return nil
}
