package parcel

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tripline/internal/reservation"
	"github.com/MrJamesThe3rd/tripline/internal/trip"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=parcel
type Repository interface {
	CreateParcel(ctx context.Context, p *Parcel) error
	GetParcel(ctx context.Context, id uuid.UUID) (*Parcel, error)
	ListParcels(ctx context.Context, filter ListFilter) ([]*Parcel, error)
	// UpdateStatus moves id from one status to another. It fails with
	// ErrInvalidTransition when the parcel is no longer in from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error
}

type ListFilter struct {
	DepartureDate *time.Time
	TripID        *trip.ID
	Status        *Status
}

type Service struct {
	repo  Repository
	trips reservation.Trips
}

func NewService(repo Repository, trips reservation.Trips) *Service {
	return &Service{repo: repo, trips: trips}
}

type CreateParams struct {
	TripID        trip.ID
	Sender        string
	SenderPhone   string
	Receiver      string
	ReceiverPhone string
	Description   string
	Charge        int64
	PaymentStatus reservation.PaymentStatus
}

func (s *Service) Create(ctx context.Context, params CreateParams, actorID string) (*Parcel, error) {
	sender := strings.TrimSpace(params.Sender)
	receiver := strings.TrimSpace(params.Receiver)

	if sender == "" || receiver == "" {
		return nil, fmt.Errorf("%w: sender and receiver are required", ErrInvalidParcel)
	}

	if params.Charge < 0 {
		return nil, fmt.Errorf("%w: charge must not be negative", ErrInvalidParcel)
	}

	payment := params.PaymentStatus
	if payment == "" {
		payment = reservation.PaymentPending
	}

	if !payment.Valid() {
		return nil, fmt.Errorf("%w: unknown payment status %q", ErrInvalidParcel, payment)
	}

	t, seg, err := s.trips.Segment(ctx, params.TripID)
	if err != nil {
		return nil, err
	}

	p := &Parcel{
		ID:            uuid.New(),
		TripID:        params.TripID,
		DepartureDate: seg.DepartureDate(t.OriginalDate),
		Sender:        sender,
		SenderPhone:   strings.TrimSpace(params.SenderPhone),
		Receiver:      receiver,
		ReceiverPhone: strings.TrimSpace(params.ReceiverPhone),
		Description:   strings.TrimSpace(params.Description),
		Charge:        params.Charge,
		PaymentStatus: payment,
		Status:        StatusBooked,
		CreatedBy:     actorID,
	}

	if err := s.repo.CreateParcel(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Parcel, error) {
	return s.repo.GetParcel(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Parcel, error) {
	return s.repo.ListParcels(ctx, filter)
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, next Status) (*Parcel, error) {
	p, err := s.repo.GetParcel(ctx, id)
	if err != nil {
		return nil, err
	}

	if !p.Status.CanTransition(next) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, p.Status, next)
	}

	if err := s.repo.UpdateStatus(ctx, id, p.Status, next); err != nil {
		return nil, err
	}

	p.Status = next

	return p, nil
}
