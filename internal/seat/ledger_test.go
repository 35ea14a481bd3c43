package seat_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/tripline/internal/seat"
	"github.com/MrJamesThe3rd/tripline/internal/trip"
)

func segments(recordID uuid.UUID, available ...int) []*trip.Segment {
	segs := make([]*trip.Segment, len(available))
	for i, a := range available {
		segs[i] = &trip.Segment{RecordID: recordID, Index: i, Capacity: 10, AvailableSeats: a}
	}

	return segs
}

func TestLedger_Check(t *testing.T) {
	recordID := uuid.New()

	type testCase struct {
		name    string
		sharing seat.Sharing
		index   int
		seats   int
		want    seat.Availability
		wantErr error
	}

	tests := []testCase{
		{name: "SegmentFits", sharing: seat.SharingSegment, index: 1, seats: 5, want: seat.Availability{OK: true, Available: 7}},
		{name: "SegmentShort", sharing: seat.SharingSegment, index: 1, seats: 8, want: seat.Availability{OK: false, Available: 7}},
		{name: "VehicleUsesMinimum", sharing: seat.SharingVehicle, index: 1, seats: 3, want: seat.Availability{OK: false, Available: 2}},
		{name: "UnknownSegment", sharing: seat.SharingSegment, index: 9, seats: 1, wantErr: trip.ErrNotFound},
		{name: "ZeroSeats", sharing: seat.SharingSegment, index: 0, seats: 0, wantErr: seat.ErrInvalidSeatCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := seat.NewMockRepository(ctrl)
			repo.EXPECT().GetSegments(gomock.Any(), recordID).Return(segments(recordID, 10, 7, 2), nil).AnyTimes()

			ledger := seat.NewLedger(repo, tt.sharing)
			got, err := ledger.Check(context.Background(), trip.ID{RecordID: recordID, SegmentIndex: tt.index}, tt.seats)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLedger_Reserve(t *testing.T) {
	recordID := uuid.New()
	id := trip.ID{RecordID: recordID, SegmentIndex: 1}

	t.Run("SegmentModeTouchesOnlyTarget", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := seat.NewMockRepository(ctrl)
		tx := seat.NewMockSeatsTx(ctrl)

		gomock.InOrder(
			repo.EXPECT().BeginSeats(gomock.Any()).Return(tx, nil),
			tx.EXPECT().LockSegments(gomock.Any(), recordID).Return(segments(recordID, 10, 7, 2), nil),
			tx.EXPECT().UpdateAvailableSeats(gomock.Any(), recordID, 1, 4).Return(nil),
			tx.EXPECT().Commit().Return(nil),
		)
		tx.EXPECT().Rollback().Return(nil)

		err := seat.NewLedger(repo, seat.SharingSegment).Reserve(context.Background(), id, 3)
		require.NoError(t, err)
	})

	t.Run("VehicleModeIsAllOrNothing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := seat.NewMockRepository(ctrl)
		tx := seat.NewMockSeatsTx(ctrl)

		repo.EXPECT().BeginSeats(gomock.Any()).Return(tx, nil)
		tx.EXPECT().LockSegments(gomock.Any(), recordID).Return(segments(recordID, 10, 7, 2), nil)
		tx.EXPECT().Rollback().Return(nil)
		// No UpdateAvailableSeats and no Commit: leg 2 only has 2 seats.

		err := seat.NewLedger(repo, seat.SharingVehicle).Reserve(context.Background(), id, 3)

		var capErr *seat.CapacityError
		require.ErrorAs(t, err, &capErr)
		assert.ErrorIs(t, err, seat.ErrInsufficientCapacity)
		assert.Equal(t, trip.ID{RecordID: recordID, SegmentIndex: 2}, capErr.TripID)
		assert.Equal(t, 2, capErr.Available)
	})

	t.Run("VehicleModeDecrementsEveryLeg", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := seat.NewMockRepository(ctrl)
		tx := seat.NewMockSeatsTx(ctrl)

		repo.EXPECT().BeginSeats(gomock.Any()).Return(tx, nil)
		tx.EXPECT().LockSegments(gomock.Any(), recordID).Return(segments(recordID, 10, 7, 2), nil)
		tx.EXPECT().UpdateAvailableSeats(gomock.Any(), recordID, 0, 8).Return(nil)
		tx.EXPECT().UpdateAvailableSeats(gomock.Any(), recordID, 1, 5).Return(nil)
		tx.EXPECT().UpdateAvailableSeats(gomock.Any(), recordID, 2, 0).Return(nil)
		tx.EXPECT().Commit().Return(nil)
		tx.EXPECT().Rollback().Return(nil)

		err := seat.NewLedger(repo, seat.SharingVehicle).Reserve(context.Background(), id, 2)
		require.NoError(t, err)
	})

	t.Run("OutOfRangeCountIsNotClamped", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := seat.NewMockRepository(ctrl)
		tx := seat.NewMockSeatsTx(ctrl)

		repo.EXPECT().BeginSeats(gomock.Any()).Return(tx, nil)
		tx.EXPECT().LockSegments(gomock.Any(), recordID).Return(segments(recordID, 10, -1, 2), nil)
		tx.EXPECT().Rollback().Return(nil)

		err := seat.NewLedger(repo, seat.SharingSegment).Reserve(context.Background(), id, 1)
		assert.ErrorIs(t, err, seat.ErrInvariantViolation)
	})

	t.Run("UpdateFailureRollsBack", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := seat.NewMockRepository(ctrl)
		tx := seat.NewMockSeatsTx(ctrl)

		repo.EXPECT().BeginSeats(gomock.Any()).Return(tx, nil)
		tx.EXPECT().LockSegments(gomock.Any(), recordID).Return(segments(recordID, 10, 7, 2), nil)
		tx.EXPECT().UpdateAvailableSeats(gomock.Any(), recordID, 1, 6).Return(errors.New("db error"))
		tx.EXPECT().Rollback().Return(nil)

		err := seat.NewLedger(repo, seat.SharingSegment).Reserve(context.Background(), id, 1)
		assert.Error(t, err)
	})

	t.Run("InvalidSeatCountNeverBegins", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := seat.NewMockRepository(ctrl)

		err := seat.NewLedger(repo, seat.SharingSegment).Reserve(context.Background(), id, -2)
		assert.ErrorIs(t, err, seat.ErrInvalidSeatCount)
	})
}

func TestLedger_Release(t *testing.T) {
	recordID := uuid.New()
	id := trip.ID{RecordID: recordID, SegmentIndex: 0}

	t.Run("ClampsAtCapacity", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := seat.NewMockRepository(ctrl)
		tx := seat.NewMockSeatsTx(ctrl)

		repo.EXPECT().BeginSeats(gomock.Any()).Return(tx, nil)
		tx.EXPECT().LockSegments(gomock.Any(), recordID).Return(segments(recordID, 8), nil)
		tx.EXPECT().UpdateAvailableSeats(gomock.Any(), recordID, 0, 10).Return(nil)
		tx.EXPECT().Commit().Return(nil)
		tx.EXPECT().Rollback().Return(nil)

		require.NoError(t, seat.NewLedger(repo, seat.SharingSegment).Release(context.Background(), id, 5))
	})

	t.Run("AtCapacityWritesNothing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := seat.NewMockRepository(ctrl)
		tx := seat.NewMockSeatsTx(ctrl)

		repo.EXPECT().BeginSeats(gomock.Any()).Return(tx, nil)
		tx.EXPECT().LockSegments(gomock.Any(), recordID).Return(segments(recordID, 10), nil)
		tx.EXPECT().Commit().Return(nil)
		tx.EXPECT().Rollback().Return(nil)

		require.NoError(t, seat.NewLedger(repo, seat.SharingSegment).Release(context.Background(), id, 1))
	})
}

func TestParseSharing(t *testing.T) {
	got, err := seat.ParseSharing("")
	require.NoError(t, err)
	assert.Equal(t, seat.SharingSegment, got)

	got, err = seat.ParseSharing("vehicle")
	require.NoError(t, err)
	assert.Equal(t, seat.SharingVehicle, got)

	_, err = seat.ParseSharing("bus")
	assert.ErrorIs(t, err, seat.ErrInvalidSharing)
}
