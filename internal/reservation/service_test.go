package reservation_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/tripline/internal/reservation"
	"github.com/MrJamesThe3rd/tripline/internal/schedule"
	"github.com/MrJamesThe3rd/tripline/internal/seat"
	"github.com/MrJamesThe3rd/tripline/internal/trip"
)

const (
	requester = "agent-7"
	approver  = "operator-2"
)

func pendingRequest(tripID trip.ID, seats int, payment reservation.PaymentStatus, advance, total int64) *reservation.Request {
	passengers := make([]reservation.PassengerInfo, seats)
	for i := range passengers {
		passengers[i] = reservation.PassengerInfo{Name: "Passenger"}
	}

	return &reservation.Request{
		ID:            uuid.New(),
		TripID:        tripID,
		DepartureDate: time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC),
		Seats:         seats,
		Passengers:    passengers,
		PaymentMethod: "cash",
		PaymentStatus: payment,
		AdvanceAmount: advance,
		TotalAmount:   total,
		RequesterID:   requester,
		Status:        reservation.StatusPending,
	}
}

func legs(recordID uuid.UUID, available int) []*trip.Segment {
	return []*trip.Segment{{RecordID: recordID, Index: 0, Capacity: 40, AvailableSeats: available}}
}

func TestService_Approve_ConditionalTransaction(t *testing.T) {
	type testCase struct {
		name       string
		payment    reservation.PaymentStatus
		advance    int64
		total      int64
		wantAmount int64
		wantTx     bool
	}

	tests := []testCase{
		{name: "NothingCollected", payment: reservation.PaymentPending, advance: 0, total: 3000},
		{name: "AdvancePaid", payment: reservation.PaymentPartial, advance: 500, total: 3000, wantTx: true, wantAmount: 500},
		{name: "PaidInFull", payment: reservation.PaymentPaid, advance: 0, total: 3000, wantTx: true, wantAmount: 3000},
		{name: "PaidWithAdvance", payment: reservation.PaymentPaid, advance: 1000, total: 3000, wantTx: true, wantAmount: 3000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			recordID := uuid.New()
			tripID := trip.ID{RecordID: recordID, SegmentIndex: 0}
			req := pendingRequest(tripID, 2, tt.payment, tt.advance, tt.total)

			repo := reservation.NewMockRepository(ctrl)
			tx := reservation.NewMockTx(ctrl)

			repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
			tx.EXPECT().LockRequest(gomock.Any(), req.ID).Return(req, nil)
			tx.EXPECT().LockSegments(gomock.Any(), recordID).Return(legs(recordID, 10), nil).Times(2)
			tx.EXPECT().UpdateAvailableSeats(gomock.Any(), recordID, 0, 8).Return(nil)
			tx.EXPECT().CreateReservation(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, res *reservation.Reservation) error {
				assert.Equal(t, requester, res.CreatedBy)
				assert.Equal(t, approver, res.ApprovedBy)
				assert.Equal(t, reservation.StatusApproved, res.Status)
				require.NotNil(t, res.RequestID)
				assert.Equal(t, req.ID, *res.RequestID)

				return nil
			})
			tx.EXPECT().CreatePassengers(gomock.Any(), gomock.Len(2)).Return(nil)

			if tt.wantTx {
				tx.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, tr *reservation.Transaction) error {
					assert.Equal(t, approver, tr.UserID)
					assert.Equal(t, tt.wantAmount, tr.Amount)
					assert.Equal(t, reservation.PaymentMethod("cash"), tr.Method)

					return nil
				})
			}

			tx.EXPECT().ResolveRequest(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, r *reservation.Request) error {
				assert.Equal(t, reservation.StatusApproved, r.Status)
				assert.Equal(t, approver, r.ResolvedBy)
				assert.NotNil(t, r.ReservationID)

				return nil
			})
			tx.EXPECT().Commit().Return(nil)
			tx.EXPECT().Rollback().Return(nil)

			svc := reservation.NewService(repo, nil, seat.NewLedger(nil, seat.SharingSegment))

			res, err := svc.Approve(context.Background(), req.ID, approver)
			require.NoError(t, err)

			assert.Equal(t, requester, res.CreatedBy)
			assert.Len(t, res.Passengers, 2)
			assert.Equal(t, req.ID, *res.RequestID)

			if tt.wantTx {
				require.NotNil(t, res.Transaction)
				assert.Equal(t, approver, res.Transaction.UserID)
			} else {
				assert.Nil(t, res.Transaction)
			}
		})
	}
}

func TestService_Approve_Failures(t *testing.T) {
	type testCase struct {
		name          string
		setupTx       func(tx *reservation.MockTx, req *reservation.Request)
		recordFailure bool
		wantErr       error
	}

	tests := []testCase{
		{
			name: "NotFound",
			setupTx: func(tx *reservation.MockTx, req *reservation.Request) {
				tx.EXPECT().LockRequest(gomock.Any(), req.ID).Return(nil, reservation.ErrRequestNotFound)
			},
			wantErr: reservation.ErrNotFound,
		},
		{
			name: "AlreadyApproved",
			setupTx: func(tx *reservation.MockTx, req *reservation.Request) {
				req.Status = reservation.StatusApproved
				tx.EXPECT().LockRequest(gomock.Any(), req.ID).Return(req, nil)
			},
			wantErr: reservation.ErrAlreadyResolved,
		},
		{
			name: "AlreadyRejected",
			setupTx: func(tx *reservation.MockTx, req *reservation.Request) {
				req.Status = reservation.StatusRejected
				tx.EXPECT().LockRequest(gomock.Any(), req.ID).Return(req, nil)
			},
			wantErr: reservation.ErrAlreadyResolved,
		},
		{
			name: "InsufficientCapacity",
			setupTx: func(tx *reservation.MockTx, req *reservation.Request) {
				tx.EXPECT().LockRequest(gomock.Any(), req.ID).Return(req, nil)
				tx.EXPECT().LockSegments(gomock.Any(), req.TripID.RecordID).Return(legs(req.TripID.RecordID, 1), nil)
			},
			recordFailure: true,
			wantErr:       seat.ErrInsufficientCapacity,
		},
		{
			name: "TransactionInsertFails",
			setupTx: func(tx *reservation.MockTx, req *reservation.Request) {
				tx.EXPECT().LockRequest(gomock.Any(), req.ID).Return(req, nil)
				tx.EXPECT().LockSegments(gomock.Any(), req.TripID.RecordID).Return(legs(req.TripID.RecordID, 10), nil).Times(2)
				tx.EXPECT().UpdateAvailableSeats(gomock.Any(), req.TripID.RecordID, 0, 8).Return(nil)
				tx.EXPECT().CreateReservation(gomock.Any(), gomock.Any()).Return(nil)
				tx.EXPECT().CreatePassengers(gomock.Any(), gomock.Any()).Return(nil)
				tx.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(errors.New("db error"))
				// No ResolveRequest and no Commit.
			},
			recordFailure: true,
		},
		{
			name: "CommitConflict",
			setupTx: func(tx *reservation.MockTx, req *reservation.Request) {
				tx.EXPECT().LockRequest(gomock.Any(), req.ID).Return(req, nil)
				tx.EXPECT().LockSegments(gomock.Any(), req.TripID.RecordID).Return(legs(req.TripID.RecordID, 10), nil).Times(2)
				tx.EXPECT().UpdateAvailableSeats(gomock.Any(), req.TripID.RecordID, 0, 8).Return(nil)
				tx.EXPECT().CreateReservation(gomock.Any(), gomock.Any()).Return(nil)
				tx.EXPECT().CreatePassengers(gomock.Any(), gomock.Any()).Return(nil)
				tx.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(nil)
				tx.EXPECT().ResolveRequest(gomock.Any(), gomock.Any()).Return(nil)
				tx.EXPECT().Commit().Return(fmt.Errorf("committing: %w", reservation.ErrTransientFailure))
			},
			recordFailure: true,
			wantErr:       reservation.ErrTransientFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			req := pendingRequest(trip.ID{RecordID: uuid.New()}, 2, reservation.PaymentPartial, 500, 3000)

			repo := reservation.NewMockRepository(ctrl)
			tx := reservation.NewMockTx(ctrl)
			publisher := reservation.NewMockPublisher(ctrl)

			repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
			tx.EXPECT().Rollback().Return(nil)
			tt.setupTx(tx, req)

			if tt.recordFailure {
				repo.EXPECT().RecordFailure(gomock.Any(), req.ID, gomock.Any()).Return(nil)
			}

			svc := reservation.NewService(repo, nil, seat.NewLedger(nil, seat.SharingSegment)).WithPublisher(publisher)

			res, err := svc.Approve(context.Background(), req.ID, approver)
			assert.Nil(t, res)
			require.Error(t, err)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestService_Approve_RequiresApprover(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := reservation.NewService(reservation.NewMockRepository(ctrl), nil, seat.NewLedger(nil, seat.SharingSegment))

	_, err := svc.Approve(context.Background(), uuid.New(), "")
	assert.ErrorIs(t, err, reservation.ErrInvalidRequest)
}

func TestService_Approve_PublishesAfterCommit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	recordID := uuid.New()
	req := pendingRequest(trip.ID{RecordID: recordID}, 1, reservation.PaymentPending, 0, 1500)

	repo := reservation.NewMockRepository(ctrl)
	tx := reservation.NewMockTx(ctrl)
	publisher := reservation.NewMockPublisher(ctrl)

	repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	tx.EXPECT().LockRequest(gomock.Any(), req.ID).Return(req, nil)
	tx.EXPECT().LockSegments(gomock.Any(), recordID).Return(legs(recordID, 3), nil).Times(2)
	tx.EXPECT().UpdateAvailableSeats(gomock.Any(), recordID, 0, 2).Return(nil)
	tx.EXPECT().CreateReservation(gomock.Any(), gomock.Any()).Return(nil)
	tx.EXPECT().CreatePassengers(gomock.Any(), gomock.Any()).Return(nil)
	tx.EXPECT().ResolveRequest(gomock.Any(), gomock.Any()).Return(nil)

	commit := tx.EXPECT().Commit().Return(nil)
	publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).After(commit).DoAndReturn(func(_ context.Context, e reservation.Event) error {
		assert.Equal(t, reservation.EventApproved, e.Type)
		assert.Equal(t, approver, e.ActorID)
		assert.Equal(t, req.ID, *e.RequestID)
		assert.False(t, e.OccurredAt.IsZero())

		return errors.New("broker down")
	})
	tx.EXPECT().Rollback().Return(nil)

	svc := reservation.NewService(repo, nil, seat.NewLedger(nil, seat.SharingSegment)).WithPublisher(publisher)

	_, err := svc.Approve(context.Background(), req.ID, approver)
	assert.NoError(t, err, "publish failures are not returned")
}

func TestService_Reject(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	req := pendingRequest(trip.ID{RecordID: uuid.New()}, 1, reservation.PaymentPending, 0, 1500)

	repo := reservation.NewMockRepository(ctrl)
	tx := reservation.NewMockTx(ctrl)

	repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	tx.EXPECT().LockRequest(gomock.Any(), req.ID).Return(req, nil)
	// Rejection never touches seat counts: no LockSegments, no UpdateAvailableSeats.
	tx.EXPECT().ResolveRequest(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, r *reservation.Request) error {
		assert.Equal(t, reservation.StatusRejected, r.Status)
		assert.Equal(t, "bus full", r.RejectionReason)

		return nil
	})
	tx.EXPECT().Commit().Return(nil)
	tx.EXPECT().Rollback().Return(nil)

	svc := reservation.NewService(repo, nil, seat.NewLedger(nil, seat.SharingSegment))

	got, err := svc.Reject(context.Background(), req.ID, approver, " bus full ")
	require.NoError(t, err)
	assert.Equal(t, reservation.StatusRejected, got.Status)
	assert.Equal(t, approver, got.ResolvedBy)
}

func TestService_Submit(t *testing.T) {
	recordID := uuid.New()
	tripID := trip.ID{RecordID: recordID, SegmentIndex: 1}
	stored := &trip.Trip{RecordID: recordID, OriginalDate: time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC)}
	leg := &trip.Segment{RecordID: recordID, Index: 1, Departure: schedule.MustParse("03:00 AM +1d"), Capacity: 40, AvailableSeats: 40}

	valid := reservation.BookingParams{
		TripID:        tripID,
		Seats:         2,
		Passengers:    []reservation.PassengerInfo{{Name: "Asha"}, {Name: "Babu"}},
		PaymentMethod: "cash",
		AdvanceAmount: 500,
		TotalAmount:   3000,
	}

	type testCase struct {
		name      string
		params    func() reservation.BookingParams
		setupMock func(repo *reservation.MockRepository, trips *reservation.MockTrips)
		wantErr   error
	}

	tests := []testCase{
		{
			name:   "Success",
			params: func() reservation.BookingParams { return valid },
			setupMock: func(repo *reservation.MockRepository, trips *reservation.MockTrips) {
				trips.EXPECT().Segment(gomock.Any(), tripID).Return(stored, leg, nil)
				repo.EXPECT().CreateRequest(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req *reservation.Request) error {
					assert.Equal(t, reservation.StatusPending, req.Status)
					assert.Equal(t, reservation.PaymentPending, req.PaymentStatus)
					assert.Equal(t, time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC), req.DepartureDate)
					assert.Equal(t, requester, req.RequesterID)

					return nil
				})
			},
		},
		{
			name: "ZeroSeats",
			params: func() reservation.BookingParams {
				p := valid
				p.Seats, p.Passengers = 0, nil

				return p
			},
			wantErr: seat.ErrInvalidSeatCount,
		},
		{
			name: "PassengerCountMismatch",
			params: func() reservation.BookingParams {
				p := valid
				p.Seats = 3

				return p
			},
			wantErr: reservation.ErrInvalidRequest,
		},
		{
			name: "AdvanceAboveTotal",
			params: func() reservation.BookingParams {
				p := valid
				p.AdvanceAmount = 5000

				return p
			},
			wantErr: reservation.ErrInvalidRequest,
		},
		{
			name: "UnknownPaymentStatus",
			params: func() reservation.BookingParams {
				p := valid
				p.PaymentStatus = "maybe"

				return p
			},
			wantErr: reservation.ErrInvalidRequest,
		},
		{
			name:   "UnknownSegment",
			params: func() reservation.BookingParams { return valid },
			setupMock: func(_ *reservation.MockRepository, trips *reservation.MockTrips) {
				trips.EXPECT().Segment(gomock.Any(), tripID).Return(nil, nil, trip.ErrNotFound)
			},
			wantErr: trip.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := reservation.NewMockRepository(ctrl)
			trips := reservation.NewMockTrips(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(repo, trips)
			}

			svc := reservation.NewService(repo, trips, seat.NewLedger(nil, seat.SharingSegment))

			got, err := svc.Submit(context.Background(), tt.params(), requester)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, reservation.StatusPending, got.Status)
		})
	}
}

func TestTransactionFor(t *testing.T) {
	res := &reservation.Reservation{ID: uuid.New(), PaymentStatus: reservation.PaymentPending, TotalAmount: 1000}
	assert.Nil(t, reservation.TransactionFor(res, approver))

	res.AdvanceAmount = 200
	tr := reservation.TransactionFor(res, approver)
	require.NotNil(t, tr)
	assert.Equal(t, int64(200), tr.Amount)
	assert.Equal(t, res.ID, tr.ReservationID)
}
