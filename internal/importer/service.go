package importer

import (
	"errors"
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/tripline/internal/importer/timetable"
	"github.com/MrJamesThe3rd/tripline/internal/trip"
)

var ErrUnknownFormat = errors.New("unknown timetable format")

type Service struct {
	csvImporter Importer
}

func NewService() *Service {
	return &Service{
		csvImporter: timetable.NewParser(),
	}
}

func (s *Service) Import(format Format, r io.Reader) ([]trip.CreateParams, error) {
	var importer Importer

	switch format {
	case FormatCSV, "":
		importer = s.csvImporter
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}

	return importer.Parse(r)
}
