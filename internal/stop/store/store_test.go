package store_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tripline/internal/stop/store"
)

func TestStore_FindCanonical(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`WHERE POSITION\(' ' \|\| alias \|\| ' ' IN ' ' \|\| \$1 \|\| ' '\) > 0`).
		WithArgs("ctg bus stand").
		WillReturnRows(sqlmock.NewRows([]string{"canonical"}).AddRow("Chattogram"))
	mock.ExpectQuery("FROM stop_aliases").
		WithArgs("nowhere").
		WillReturnRows(sqlmock.NewRows([]string{"canonical"}))

	s := store.New(db)

	got, err := s.FindCanonical(context.Background(), "ctg bus stand")
	require.NoError(t, err)
	assert.Equal(t, "Chattogram", got)

	got, err = s.FindCanonical(context.Background(), "nowhere")
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_CreateAlias(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO stop_aliases").
		WithArgs("ctg", "Chattogram").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.New(db).CreateAlias(context.Background(), "ctg", "Chattogram"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
