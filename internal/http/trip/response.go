package trip

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tripline/internal/http/respond"
	"github.com/MrJamesThe3rd/tripline/internal/schedule"
	"github.com/MrJamesThe3rd/tripline/internal/trip"
)

type segmentResponse struct {
	TripID         trip.ID            `json:"trip_id"`
	Index          int                `json:"index"`
	Origin         string             `json:"origin"`
	Destination    string             `json:"destination"`
	Departure      schedule.TimeLabel `json:"departure"`
	Arrival        schedule.TimeLabel `json:"arrival"`
	DepartureDate  string             `json:"departure_date"`
	ArrivalDate    string             `json:"arrival_date"`
	Capacity       int                `json:"capacity"`
	AvailableSeats int                `json:"available_seats"`
}

type tripResponse struct {
	RecordID     uuid.UUID         `json:"record_id"`
	OriginalDate string            `json:"original_date"`
	Segments     []segmentResponse `json:"segments"`
	CreatedAt    time.Time         `json:"created_at"`
}

type departureResponse struct {
	Date         string          `json:"date"`
	OriginalDate string          `json:"original_date"`
	Segment      segmentResponse `json:"segment"`
}

type availabilityResponse struct {
	TripID    trip.ID `json:"trip_id"`
	Seats     int     `json:"seats"`
	OK        bool    `json:"ok"`
	Available int     `json:"available"`
	Sharing   string  `json:"sharing"`
}

func toSegmentResponse(seg *trip.Segment, originalDate time.Time) segmentResponse {
	return segmentResponse{
		TripID:         seg.ID(),
		Index:          seg.Index,
		Origin:         seg.Origin,
		Destination:    seg.Destination,
		Departure:      seg.Departure,
		Arrival:        seg.Arrival,
		DepartureDate:  respond.Date(seg.DepartureDate(originalDate)),
		ArrivalDate:    respond.Date(seg.ArrivalDate(originalDate)),
		Capacity:       seg.Capacity,
		AvailableSeats: seg.AvailableSeats,
	}
}

func toResponse(t *trip.Trip) tripResponse {
	resp := tripResponse{
		RecordID:     t.RecordID,
		OriginalDate: respond.Date(t.OriginalDate),
		Segments:     make([]segmentResponse, len(t.Segments)),
		CreatedAt:    t.CreatedAt,
	}

	for i, seg := range t.Segments {
		resp.Segments[i] = toSegmentResponse(seg, t.OriginalDate)
	}

	return resp
}

func toResponseList(trips []*trip.Trip) []tripResponse {
	resp := make([]tripResponse, len(trips))
	for i, t := range trips {
		resp[i] = toResponse(t)
	}

	return resp
}

func toDepartureList(deps []trip.Departure) []departureResponse {
	resp := make([]departureResponse, len(deps))
	for i, d := range deps {
		resp[i] = departureResponse{
			Date:         respond.Date(d.Date),
			OriginalDate: respond.Date(d.OriginalDate),
			Segment:      toSegmentResponse(d.Segment, d.OriginalDate),
		}
	}

	return resp
}
