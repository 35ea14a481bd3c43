package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tripline/internal/database"
	"github.com/MrJamesThe3rd/tripline/internal/reservation"
	"github.com/MrJamesThe3rd/tripline/internal/reservation/store"
	"github.com/MrJamesThe3rd/tripline/internal/seat"
	seatStore "github.com/MrJamesThe3rd/tripline/internal/seat/store"
)

var requestColumns = []string{
	"id", "record_id", "segment_index", "departure_date", "seats", "passengers",
	"payment_method", "payment_status", "advance_amount", "total_amount", "requester_id",
	"status", "resolved_by", "resolved_at", "rejection_reason", "reservation_id", "last_failure",
	"created_at", "updated_at",
}

var segmentColumns = []string{
	"record_id", "segment_index", "origin", "destination", "departure_time", "arrival_time", "capacity", "available_seats",
}

func TestStore_GetRequest(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id, recordID := uuid.New(), uuid.New()
	day := time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM reservation_requests r WHERE r.id").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(requestColumns).AddRow(
			id.String(), recordID.String(), 1, day, 2, []byte(`[{"name":"Asha"},{"name":"Babu","seat":"B2"}]`),
			"cash", "partial", 500, 2000, "agent-1",
			"pending", "", nil, "", nil, "",
			day, day,
		))

	got, err := store.New(db).GetRequest(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, reservation.StatusPending, got.Status)
	assert.Equal(t, reservation.PaymentPartial, got.PaymentStatus)
	assert.Equal(t, []reservation.PassengerInfo{{Name: "Asha"}, {Name: "Babu", Seat: "B2"}}, got.Passengers)
	assert.Nil(t, got.ResolvedAt)
	assert.Nil(t, got.ReservationID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetRequest_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM reservation_requests").WillReturnRows(sqlmock.NewRows(requestColumns))

	_, err = store.New(db).GetRequest(context.Background(), uuid.New())
	assert.ErrorIs(t, err, reservation.ErrNotFound)
}

// An approval whose transaction insert fails must roll back the seat update
// and leave only the failure note behind.
func TestStore_ApprovalRollsBackWhenTransactionInsertFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	requestID, recordID := uuid.New(), uuid.New()
	day := time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC)

	segmentRows := func() *sqlmock.Rows {
		return sqlmock.NewRows(segmentColumns).
			AddRow(recordID.String(), 0, "Dhaka", "Feni", "07:00 PM", "11:00 PM", 40, 5)
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM reservation_requests r WHERE r.id = \$1 FOR UPDATE`).
		WithArgs(requestID).
		WillReturnRows(sqlmock.NewRows(requestColumns).AddRow(
			requestID.String(), recordID.String(), 0, day, 1, []byte(`[{"name":"Asha"}]`),
			"cash", "partial", 500, 2000, "agent-1",
			"pending", "", nil, "", nil, "",
			day, day,
		))
	mock.ExpectExec("pg_advisory_xact_lock").
		WithArgs(database.LockKey("trip", recordID.String())).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("FOR UPDATE").WithArgs(recordID).WillReturnRows(segmentRows())
	mock.ExpectQuery("FOR UPDATE").WithArgs(recordID).WillReturnRows(segmentRows())
	mock.ExpectExec("UPDATE trip_segments").WithArgs(4, recordID, 0).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO reservations").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(day, day))
	mock.ExpectExec("INSERT INTO passengers").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO transactions").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()
	mock.ExpectExec("SET last_failure").
		WithArgs(sqlmock.AnyArg(), requestID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := store.New(db)
	svc := reservation.NewService(repo, nil, seat.NewLedger(seatStore.New(db), seat.SharingSegment))

	_, err = svc.Approve(context.Background(), requestID, "operator-1")
	assert.ErrorContains(t, err, "creating transaction")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ListReservations_ScopesToCreator(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	status := reservation.StatusApproved
	agent := "agent-1"

	mock.ExpectQuery(`WHERE TRUE AND v.status = \$1 AND v.created_by = \$2`).
		WithArgs(status, agent).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	list, err := store.New(db).ListReservations(context.Background(), reservation.ReservationFilter{
		Status:    &status,
		CreatedBy: &agent,
	})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}
