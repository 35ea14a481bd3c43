package trip

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tripline/internal/schedule"
)

var (
	ErrNotFound    = errors.New("trip not found")
	ErrInvalidTrip = errors.New("invalid trip")
	ErrInvalidID   = errors.New("invalid trip id")
)

// Trip is one scheduled departure record made of ordered legs.
// Segment 0 departs on OriginalDate.
type Trip struct {
	RecordID     uuid.UUID
	OriginalDate time.Time
	Segments     []*Segment
	CreatedAt    time.Time
}

// Segment is one leg of a trip. AvailableSeats stays within [0, Capacity].
type Segment struct {
	RecordID       uuid.UUID
	Index          int
	Origin         string
	Destination    string
	Departure      schedule.TimeLabel
	Arrival        schedule.TimeLabel
	Capacity       int
	AvailableSeats int
}

// ID addresses a single segment as "{recordId}_{segmentIndex}".
type ID struct {
	RecordID     uuid.UUID
	SegmentIndex int
}

func (id ID) String() string {
	return id.RecordID.String() + "_" + strconv.Itoa(id.SegmentIndex)
}

// ParseID parses a "{recordId}_{segmentIndex}" token.
func ParseID(s string) (ID, error) {
	sep := strings.LastIndex(s, "_")
	if sep <= 0 || sep == len(s)-1 {
		return ID{}, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}

	recordID, err := uuid.Parse(s[:sep])
	if err != nil {
		return ID{}, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}

	idx, err := strconv.Atoi(s[sep+1:])
	if err != nil || idx < 0 {
		return ID{}, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}

	return ID{RecordID: recordID, SegmentIndex: idx}, nil
}

func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ID) UnmarshalText(b []byte) error {
	parsed, err := ParseID(string(b))
	if err != nil {
		return err
	}

	*id = parsed

	return nil
}

// ID returns the external token of the segment.
func (s *Segment) ID() ID {
	return ID{RecordID: s.RecordID, SegmentIndex: s.Index}
}

// DepartureDate returns the resolved calendar date the segment leaves on.
func (s *Segment) DepartureDate(originalDate time.Time) time.Time {
	return s.Departure.ResolveDate(originalDate)
}

// ArrivalDate returns the resolved calendar date the segment arrives on.
func (s *Segment) ArrivalDate(originalDate time.Time) time.Time {
	return s.Arrival.ResolveDate(originalDate)
}

// Segment returns the segment at idx.
func (t *Trip) Segment(idx int) (*Segment, bool) {
	for _, s := range t.Segments {
		if s.Index == idx {
			return s, true
		}
	}

	return nil, false
}

// Departure is a segment together with the date it actually departs on.
type Departure struct {
	TripID       ID
	Date         time.Time
	OriginalDate time.Time
	Segment      *Segment
}
