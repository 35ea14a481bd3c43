package schedule

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jinzhu/now"
)

var ErrMalformedTimeLabel = errors.New("malformed time label")

// TimeLabel is a wall-clock time that occurs DayOffset calendar days after
// the trip's original date.
type TimeLabel struct {
	Hour      int
	Minute    int
	DayOffset int
}

// labelPattern matches "19:00", "7:00 PM", "03:00 AM +1d", "03:00 AM (+1)".
var labelPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::\d{2})?\s*(AM|PM)?\s*(?:\(?\s*([+-]?\d+)\s*D?\s*\)?)?$`)

// ParseTimeLabel parses a time label with an optional day-offset suffix.
func ParseTimeLabel(s string) (TimeLabel, error) {
	raw := strings.ToUpper(strings.TrimSpace(s))
	if raw == "" {
		return TimeLabel{}, fmt.Errorf("%w: empty", ErrMalformedTimeLabel)
	}

	m := labelPattern.FindStringSubmatch(raw)
	if m == nil {
		return TimeLabel{}, fmt.Errorf("%w: %q", ErrMalformedTimeLabel, s)
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])

	if minute > 59 {
		return TimeLabel{}, fmt.Errorf("%w: minute out of range in %q", ErrMalformedTimeLabel, s)
	}

	switch m[3] {
	case "AM", "PM":
		if hour < 1 || hour > 12 {
			return TimeLabel{}, fmt.Errorf("%w: hour out of range in %q", ErrMalformedTimeLabel, s)
		}

		hour %= 12
		if m[3] == "PM" {
			hour += 12
		}
	default:
		if hour > 23 {
			return TimeLabel{}, fmt.Errorf("%w: hour out of range in %q", ErrMalformedTimeLabel, s)
		}
	}

	offset := 0

	if m[4] != "" {
		if !strings.HasPrefix(m[4], "+") {
			return TimeLabel{}, fmt.Errorf("%w: day offset must be written as +N in %q", ErrMalformedTimeLabel, s)
		}

		n, err := strconv.Atoi(m[4][1:])
		if err != nil || n < 0 {
			return TimeLabel{}, fmt.Errorf("%w: invalid day offset in %q", ErrMalformedTimeLabel, s)
		}

		offset = n
	}

	return TimeLabel{Hour: hour, Minute: minute, DayOffset: offset}, nil
}

// MustParse is like ParseTimeLabel but panics on malformed input.
// Intended for fixtures and constants.
func MustParse(s string) TimeLabel {
	l, err := ParseTimeLabel(s)
	if err != nil {
		panic(err)
	}

	return l
}

// ResolveSegmentDate returns the calendar date on which the event described by
// timeLabel happens. It never fails: a malformed or missing label is treated
// as a same-day event so one bad segment cannot block a whole trip.
func ResolveSegmentDate(originalDate time.Time, timeLabel string) time.Time {
	label, err := ParseTimeLabel(timeLabel)
	if err != nil {
		slog.Debug("time label not understood, assuming same day", "label", timeLabel, "error", err)
		return DateOf(originalDate, 0)
	}

	return label.ResolveDate(originalDate)
}

// DateOf returns midnight of originalDate shifted by offset calendar days.
func DateOf(originalDate time.Time, offset int) time.Time {
	day := now.With(originalDate).BeginningOfDay()
	if offset == 0 {
		return day
	}

	return time.Date(day.Year(), day.Month(), day.Day()+offset, 0, 0, 0, 0, day.Location())
}

// ResolveDate returns the calendar date of the label relative to originalDate.
func (l TimeLabel) ResolveDate(originalDate time.Time) time.Time {
	return DateOf(originalDate, l.DayOffset)
}

// At returns the full timestamp of the label relative to originalDate.
func (l TimeLabel) At(originalDate time.Time) time.Time {
	d := l.ResolveDate(originalDate)
	return time.Date(d.Year(), d.Month(), d.Day(), l.Hour, l.Minute, 0, 0, d.Location())
}

// Clock returns the time of day as minutes since midnight, ignoring the offset.
func (l TimeLabel) Clock() int {
	return l.Hour*60 + l.Minute
}

// Before reports whether l happens before o on the same trip.
func (l TimeLabel) Before(o TimeLabel) bool {
	if l.DayOffset != o.DayOffset {
		return l.DayOffset < o.DayOffset
	}

	return l.Clock() < o.Clock()
}

func (l TimeLabel) String() string {
	h := l.Hour % 12
	if h == 0 {
		h = 12
	}

	meridiem := "AM"
	if l.Hour >= 12 {
		meridiem = "PM"
	}

	s := fmt.Sprintf("%02d:%02d %s", h, l.Minute, meridiem)
	if l.DayOffset > 0 {
		s += fmt.Sprintf(" +%dd", l.DayOffset)
	}

	return s
}

func (l TimeLabel) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

func (l *TimeLabel) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: expected string", ErrMalformedTimeLabel)
	}

	parsed, err := ParseTimeLabel(s)
	if err != nil {
		return err
	}

	*l = parsed

	return nil
}

// Value stores the label in its canonical text form.
func (l TimeLabel) Value() (driver.Value, error) {
	return l.String(), nil
}

func (l *TimeLabel) Scan(src any) error {
	var s string

	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("scanning time label: unsupported type %T", src)
	}

	parsed, err := ParseTimeLabel(s)
	if err != nil {
		return fmt.Errorf("scanning time label: %w", err)
	}

	*l = parsed

	return nil
}
