package importer

import (
	"io"

	"github.com/MrJamesThe3rd/tripline/internal/trip"
)

type Format string

const (
	FormatCSV Format = "csv"
)

type Importer interface {
	Parse(r io.Reader) ([]trip.CreateParams, error)
}
