package reservation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tripline/internal/seat"
	"github.com/MrJamesThe3rd/tripline/internal/trip"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=reservation
type Repository interface {
	CreateRequest(ctx context.Context, req *Request) error
	GetRequest(ctx context.Context, id uuid.UUID) (*Request, error)
	ListRequests(ctx context.Context, filter RequestFilter) ([]*Request, error)
	// RecordFailure stores why an approval attempt failed, outside any tx.
	RecordFailure(ctx context.Context, id uuid.UUID, reason string) error
	GetReservation(ctx context.Context, id uuid.UUID) (*Reservation, error)
	ListReservations(ctx context.Context, filter ReservationFilter) ([]*Reservation, error)
	Begin(ctx context.Context) (Tx, error)
}

// Tx is one unit of work. Nothing written through it is visible to others
// before Commit; Rollback discards all of it, seat updates included.
type Tx interface {
	seat.Tx
	LockRequest(ctx context.Context, id uuid.UUID) (*Request, error)
	LockReservation(ctx context.Context, id uuid.UUID) (*Reservation, error)
	CreateReservation(ctx context.Context, res *Reservation) error
	CreatePassengers(ctx context.Context, passengers []*Passenger) error
	CreateTransaction(ctx context.Context, t *Transaction) error
	ResolveRequest(ctx context.Context, req *Request) error
	UpdateReservationStatus(ctx context.Context, res *Reservation) error
	Commit() error
	Rollback() error
}

// Trips resolves the segment a booking targets.
type Trips interface {
	Segment(ctx context.Context, id trip.ID) (*trip.Trip, *trip.Segment, error)
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type RequestFilter struct {
	Status      *Status
	RequesterID *string
	TripID      *trip.ID
}

type ReservationFilter struct {
	Status        *Status
	TripID        *trip.ID
	DepartureDate *time.Time
	CreatedBy     *string
}

type Service struct {
	repo      Repository
	trips     Trips
	ledger    *seat.Ledger
	publisher Publisher
}

func NewService(repo Repository, trips Trips, ledger *seat.Ledger) *Service {
	return &Service{repo: repo, trips: trips, ledger: ledger}
}

// WithPublisher announces committed transitions through p.
func (s *Service) WithPublisher(p Publisher) *Service {
	s.publisher = p
	return s
}

type BookingParams struct {
	TripID        trip.ID
	Seats         int
	Passengers    []PassengerInfo
	PaymentMethod PaymentMethod
	PaymentStatus PaymentStatus
	AdvanceAmount int64
	TotalAmount   int64
}

func (p BookingParams) validate() error {
	if p.Seats <= 0 {
		return seat.ErrInvalidSeatCount
	}

	if len(p.Passengers) != p.Seats {
		return fmt.Errorf("%w: %d passengers for %d seats", ErrInvalidRequest, len(p.Passengers), p.Seats)
	}

	for i, passenger := range p.Passengers {
		if strings.TrimSpace(passenger.Name) == "" {
			return fmt.Errorf("%w: passenger %d has no name", ErrInvalidRequest, i+1)
		}
	}

	if p.AdvanceAmount < 0 || p.TotalAmount < 0 {
		return fmt.Errorf("%w: amounts must not be negative", ErrInvalidRequest)
	}

	if p.AdvanceAmount > p.TotalAmount {
		return fmt.Errorf("%w: advance exceeds total", ErrInvalidRequest)
	}

	if p.PaymentStatus == "" {
		return nil
	}

	if !p.PaymentStatus.Valid() {
		return fmt.Errorf("%w: unknown payment status %q", ErrInvalidRequest, p.PaymentStatus)
	}

	return nil
}

// Submit records a pending request. Seats are only committed on approval.
func (s *Service) Submit(ctx context.Context, params BookingParams, requesterID string) (*Request, error) {
	if requesterID == "" {
		return nil, fmt.Errorf("%w: requester is required", ErrInvalidRequest)
	}

	if err := params.validate(); err != nil {
		return nil, err
	}

	t, seg, err := s.trips.Segment(ctx, params.TripID)
	if err != nil {
		return nil, err
	}

	req := &Request{
		ID:            uuid.New(),
		TripID:        params.TripID,
		DepartureDate: seg.DepartureDate(t.OriginalDate),
		Seats:         params.Seats,
		Passengers:    params.Passengers,
		PaymentMethod: params.PaymentMethod,
		PaymentStatus: paymentStatusOrDefault(params.PaymentStatus),
		AdvanceAmount: params.AdvanceAmount,
		TotalAmount:   params.TotalAmount,
		RequesterID:   requesterID,
		Status:        StatusPending,
	}

	if err := s.repo.CreateRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	return req, nil
}

// Approve turns a pending request into a reservation. Every step runs in
// one unit of work; on failure nothing is committed, the request stays
// pending and the reason is recorded on it.
func (s *Service) Approve(ctx context.Context, requestID uuid.UUID, approverID string) (*Reservation, error) {
	if approverID == "" {
		return nil, fmt.Errorf("%w: approver is required", ErrInvalidRequest)
	}

	res, err := s.approve(ctx, requestID, approverID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrAlreadyResolved) {
			if rerr := s.repo.RecordFailure(ctx, requestID, err.Error()); rerr != nil {
				slog.Error("failed to record approval failure", "request_id", requestID, "error", rerr)
			}
		}

		slog.Info("approval failed", "request_id", requestID, "approver_id", approverID, "error", err)

		return nil, err
	}

	slog.Info("request approved", "request_id", requestID, "reservation_id", res.ID, "trip_id", res.TripID.String(), "seats", res.Seats)

	s.publish(ctx, Event{
		Type:          EventApproved,
		ReservationID: &res.ID,
		RequestID:     &requestID,
		TripID:        res.TripID,
		Seats:         res.Seats,
		ActorID:       approverID,
	})

	return res, nil
}

func (s *Service) approve(ctx context.Context, requestID uuid.UUID, approverID string) (*Reservation, error) {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning approval: %w", err)
	}
	defer tx.Rollback()

	req, err := tx.LockRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if req.Status != StatusPending {
		return nil, fmt.Errorf("%w: request is %s", ErrAlreadyResolved, req.Status)
	}

	res, err := s.book(ctx, tx, bookingFromRequest(req), &req.ID, req.DepartureDate, req.RequesterID, approverID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	req.Status = StatusApproved
	req.ResolvedBy = approverID
	req.ResolvedAt = &now
	req.ReservationID = &res.ID
	req.LastFailure = ""

	if err := tx.ResolveRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("resolving request: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return res, nil
}

// book reserves seats and materializes the reservation, its passengers and,
// when money has moved, its transaction.
func (s *Service) book(ctx context.Context, tx Tx, params BookingParams, requestID *uuid.UUID, departureDate time.Time, createdBy, approverID string) (*Reservation, error) {
	avail, err := s.ledger.CheckTx(ctx, tx, params.TripID, params.Seats)
	if err != nil {
		return nil, err
	}

	if !avail.OK {
		return nil, &seat.CapacityError{TripID: params.TripID, Requested: params.Seats, Available: avail.Available}
	}

	if err := s.ledger.ReserveTx(ctx, tx, params.TripID, params.Seats); err != nil {
		return nil, err
	}

	res := &Reservation{
		ID:            uuid.New(),
		RequestID:     requestID,
		TripID:        params.TripID,
		DepartureDate: departureDate,
		Seats:         params.Seats,
		Status:        StatusApproved,
		PaymentMethod: params.PaymentMethod,
		PaymentStatus: paymentStatusOrDefault(params.PaymentStatus),
		AdvanceAmount: params.AdvanceAmount,
		TotalAmount:   params.TotalAmount,
		CreatedBy:     createdBy,
		ApprovedBy:    approverID,
	}

	if err := tx.CreateReservation(ctx, res); err != nil {
		return nil, fmt.Errorf("creating reservation: %w", err)
	}

	res.Passengers = make([]*Passenger, len(params.Passengers))
	for i, p := range params.Passengers {
		res.Passengers[i] = &Passenger{
			ID:            uuid.New(),
			ReservationID: res.ID,
			Name:          strings.TrimSpace(p.Name),
			Phone:         strings.TrimSpace(p.Phone),
			Seat:          strings.TrimSpace(p.Seat),
		}
	}

	if err := tx.CreatePassengers(ctx, res.Passengers); err != nil {
		return nil, fmt.Errorf("creating passengers: %w", err)
	}

	if t := TransactionFor(res, approverID); t != nil {
		if err := tx.CreateTransaction(ctx, t); err != nil {
			return nil, fmt.Errorf("creating transaction: %w", err)
		}

		res.Transaction = t
	}

	return res, nil
}

// TransactionFor returns the transaction res needs, or nil when no money has
// been collected yet.
func TransactionFor(res *Reservation, userID string) *Transaction {
	if res.AdvanceAmount <= 0 && !res.PaymentStatus.IsPaid() {
		return nil
	}

	amount := res.AdvanceAmount
	if res.PaymentStatus.IsPaid() {
		amount = res.TotalAmount
	}

	return &Transaction{
		ID:            uuid.New(),
		ReservationID: res.ID,
		Amount:        amount,
		Method:        res.PaymentMethod,
		UserID:        userID,
	}
}

// Reject closes a pending request without touching seat counts.
func (s *Service) Reject(ctx context.Context, requestID uuid.UUID, approverID, reason string) (*Request, error) {
	if approverID == "" {
		return nil, fmt.Errorf("%w: approver is required", ErrInvalidRequest)
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning rejection: %w", err)
	}
	defer tx.Rollback()

	req, err := tx.LockRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if req.Status != StatusPending {
		return nil, fmt.Errorf("%w: request is %s", ErrAlreadyResolved, req.Status)
	}

	now := time.Now()
	req.Status = StatusRejected
	req.ResolvedBy = approverID
	req.ResolvedAt = &now
	req.RejectionReason = strings.TrimSpace(reason)

	if err := tx.ResolveRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("resolving request: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	slog.Info("request rejected", "request_id", requestID, "approver_id", approverID)

	s.publish(ctx, Event{
		Type:      EventRejected,
		RequestID: &req.ID,
		TripID:    req.TripID,
		Seats:     req.Seats,
		ActorID:   approverID,
	})

	return req, nil
}

// CreateDirect books without a prior request. The actor is both creator
// and approver.
func (s *Service) CreateDirect(ctx context.Context, params BookingParams, actorID string) (*Reservation, error) {
	if actorID == "" {
		return nil, fmt.Errorf("%w: actor is required", ErrInvalidRequest)
	}

	if err := params.validate(); err != nil {
		return nil, err
	}

	t, seg, err := s.trips.Segment(ctx, params.TripID)
	if err != nil {
		return nil, err
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning booking: %w", err)
	}
	defer tx.Rollback()

	res, err := s.book(ctx, tx, params, nil, seg.DepartureDate(t.OriginalDate), actorID, actorID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	slog.Info("reservation created", "reservation_id", res.ID, "trip_id", res.TripID.String(), "seats", res.Seats, "actor_id", actorID)

	s.publish(ctx, Event{
		Type:          EventApproved,
		ReservationID: &res.ID,
		TripID:        res.TripID,
		Seats:         res.Seats,
		ActorID:       actorID,
	})

	return res, nil
}

// Cancel gives a reservation's seats back and marks it cancelled.
func (s *Service) Cancel(ctx context.Context, reservationID uuid.UUID, actorID string) (*Reservation, error) {
	if actorID == "" {
		return nil, fmt.Errorf("%w: actor is required", ErrInvalidRequest)
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning cancellation: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.LockReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	if res.Status != StatusApproved {
		return nil, fmt.Errorf("%w: reservation is %s", ErrAlreadyResolved, res.Status)
	}

	if err := s.ledger.ReleaseTx(ctx, tx, res.TripID, res.Seats); err != nil {
		return nil, err
	}

	now := time.Now()
	res.Status = StatusCancelled
	res.CancelledBy = actorID
	res.CancelledAt = &now

	if err := tx.UpdateReservationStatus(ctx, res); err != nil {
		return nil, fmt.Errorf("cancelling reservation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	slog.Info("reservation cancelled", "reservation_id", res.ID, "actor_id", actorID)

	s.publish(ctx, Event{
		Type:          EventCancelled,
		ReservationID: &res.ID,
		RequestID:     res.RequestID,
		TripID:        res.TripID,
		Seats:         res.Seats,
		ActorID:       actorID,
	})

	return res, nil
}

func (s *Service) GetRequest(ctx context.Context, id uuid.UUID) (*Request, error) {
	return s.repo.GetRequest(ctx, id)
}

func (s *Service) ListRequests(ctx context.Context, filter RequestFilter) ([]*Request, error) {
	return s.repo.ListRequests(ctx, filter)
}

func (s *Service) GetReservation(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	return s.repo.GetReservation(ctx, id)
}

func (s *Service) ListReservations(ctx context.Context, filter ReservationFilter) ([]*Reservation, error) {
	return s.repo.ListReservations(ctx, filter)
}

func (s *Service) publish(ctx context.Context, e Event) {
	if s.publisher == nil {
		return
	}

	e.OccurredAt = time.Now()

	if err := s.publisher.Publish(ctx, e); err != nil {
		slog.Error("failed to publish event", "type", e.Type, "error", err)
	}
}

func bookingFromRequest(req *Request) BookingParams {
	return BookingParams{
		TripID:        req.TripID,
		Seats:         req.Seats,
		Passengers:    req.Passengers,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: req.PaymentStatus,
		AdvanceAmount: req.AdvanceAmount,
		TotalAmount:   req.TotalAmount,
	}
}

func paymentStatusOrDefault(p PaymentStatus) PaymentStatus {
	if p == "" {
		return PaymentPending
	}

	return p
}
