package timetable

type field int

const (
	fieldTrip field = iota
	fieldDate
	fieldOrigin
	fieldDestination
	fieldDeparture
	fieldArrival
	fieldCapacity
)

// headers lists the accepted spellings of each column, lower-cased.
var headers = map[field][]string{
	fieldTrip:        {"trip", "trip_id", "coach", "service"},
	fieldDate:        {"date", "journey_date", "original_date"},
	fieldOrigin:      {"origin", "from"},
	fieldDestination: {"destination", "to"},
	fieldDeparture:   {"departure", "departs", "departure_time"},
	fieldArrival:     {"arrival", "arrives", "arrival_time"},
	fieldCapacity:    {"capacity", "seats"},
}

// separators are tried in order until one yields a header row.
var separators = []rune{';', ','}

var dateLayouts = []string{"2006-01-02", "02-01-2006", "02/01/2006"}
