// Package timetable reads trip timetables exported from spreadsheets.
package timetable

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	enc "github.com/MrJamesThe3rd/tripline/internal/encoding"
	"github.com/MrJamesThe3rd/tripline/internal/schedule"
	"github.com/MrJamesThe3rd/tripline/internal/trip"
)

var ErrNoHeader = errors.New("no timetable header found")

// Parser turns one row per leg into trips. Rows sharing a trip key form one
// trip, legs in file order.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]trip.CreateParams, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read timetable: %w", err)
	}

	for _, sep := range separators {
		rows, lines, err := readRows(data, sep)
		if err != nil {
			return nil, err
		}

		if cols, headerIdx, ok := detectHeader(rows); ok {
			return parseRows(cols, rows[headerIdx+1:], lines[headerIdx+1:])
		}
	}

	return nil, fmt.Errorf("%w: expected trip, date, origin, destination, departure, arrival and capacity columns", ErrNoHeader)
}

// readRows returns the records and the 1-based line each one starts on.
func readRows(data []byte, sep rune) ([][]string, []int, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sep
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var (
		rows  [][]string
		lines []int
	)

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, nil, fmt.Errorf("read csv: %w", err)
		}

		line, _ := reader.FieldPos(0)
		rows = append(rows, row)
		lines = append(lines, line)
	}

	return rows, lines, nil
}

type colIndex map[field]int

// detectHeader returns the first row naming every field.
func detectHeader(rows [][]string) (colIndex, int, bool) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.ToLower(strings.TrimSpace(cell))

			for f, aliases := range headers {
				for _, a := range aliases {
					if name == a {
						cols[f] = i
					}
				}
			}
		}

		if len(cols) == len(headers) {
			return cols, rowIdx, true
		}
	}

	return nil, 0, false
}

// parseRows groups legs by trip key. lines[i] is the file line of rows[i].
func parseRows(cols colIndex, rows [][]string, lines []int) ([]trip.CreateParams, error) {
	var (
		order  []string
		trips  = make(map[string]*trip.CreateParams)
		firsts = make(map[string]int)
	)

	for i, row := range rows {
		rowNum := lines[i]

		if blank(row) {
			continue
		}

		key := cellValue(row, cols[fieldTrip])
		if key == "" {
			return nil, fmt.Errorf("row %d: missing trip", rowNum)
		}

		date, err := parseDate(cellValue(row, cols[fieldDate]))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		leg, err := parseLeg(cols, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		params, ok := trips[key]
		if !ok {
			params = &trip.CreateParams{OriginalDate: date}
			trips[key] = params
			firsts[key] = rowNum
			order = append(order, key)
		}

		if !params.OriginalDate.Equal(date) {
			return nil, fmt.Errorf("row %d: trip %q starts on %s at row %d", rowNum, key, params.OriginalDate.Format(time.DateOnly), firsts[key])
		}

		params.Segments = append(params.Segments, leg)
	}

	out := make([]trip.CreateParams, len(order))
	for i, key := range order {
		out[i] = *trips[key]
	}

	return out, nil
}

func parseLeg(cols colIndex, row []string) (trip.SegmentParams, error) {
	origin := cellValue(row, cols[fieldOrigin])
	destination := cellValue(row, cols[fieldDestination])

	if origin == "" || destination == "" {
		return trip.SegmentParams{}, fmt.Errorf("missing origin or destination")
	}

	departure, err := schedule.ParseTimeLabel(cellValue(row, cols[fieldDeparture]))
	if err != nil {
		return trip.SegmentParams{}, fmt.Errorf("departure: %w", err)
	}

	arrival, err := schedule.ParseTimeLabel(cellValue(row, cols[fieldArrival]))
	if err != nil {
		return trip.SegmentParams{}, fmt.Errorf("arrival: %w", err)
	}

	capacity, err := strconv.Atoi(cellValue(row, cols[fieldCapacity]))
	if err != nil || capacity <= 0 {
		return trip.SegmentParams{}, fmt.Errorf("capacity must be a positive number, got %q", cellValue(row, cols[fieldCapacity]))
	}

	return trip.SegmentParams{
		Origin:      origin,
		Destination: destination,
		Departure:   departure,
		Arrival:     arrival,
		Capacity:    capacity,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// cellValue safely gets a trimmed cell value from a row.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}
