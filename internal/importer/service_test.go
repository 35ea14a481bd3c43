package importer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tripline/internal/importer"
)

func TestService_Import(t *testing.T) {
	svc := importer.NewService()

	trips, err := svc.Import(importer.FormatCSV, strings.NewReader(
		"trip,date,origin,destination,departure,arrival,capacity\nT,2025-06-13,A,B,10:00,11:00,10\n"))
	require.NoError(t, err)
	assert.Len(t, trips, 1)

	_, err = svc.Import("xlsx", strings.NewReader(""))
	assert.ErrorIs(t, err, importer.ErrUnknownFormat)
}
