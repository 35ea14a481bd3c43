package seat

import (
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/tripline/internal/trip"
)

var (
	ErrInsufficientCapacity = errors.New("insufficient capacity")
	ErrInvalidSeatCount     = errors.New("seat count must be positive")
	ErrInvariantViolation   = errors.New("seat invariant violated")
	ErrInvalidSharing       = errors.New("invalid seat sharing mode")
)

// Sharing decides which legs of a record a reservation consumes.
type Sharing string

const (
	// SharingSegment consumes only the targeted leg.
	SharingSegment Sharing = "segment"
	// SharingVehicle consumes every leg of the record, which run on one vehicle.
	SharingVehicle Sharing = "vehicle"
)

func ParseSharing(s string) (Sharing, error) {
	switch Sharing(s) {
	case SharingSegment, SharingVehicle:
		return Sharing(s), nil
	case "":
		return SharingSegment, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSharing, s)
	}
}

// Availability is the result of a capacity check.
type Availability struct {
	OK        bool
	Available int
}

// CapacityError reports the leg that could not hold the requested seats.
type CapacityError struct {
	TripID    trip.ID
	Requested int
	Available int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("insufficient capacity on %s: requested %d, available %d", e.TripID, e.Requested, e.Available)
}

func (e *CapacityError) Is(target error) bool {
	return target == ErrInsufficientCapacity
}
