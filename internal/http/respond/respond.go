// Package respond holds the response helpers shared by the API handlers.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/MrJamesThe3rd/tripline/internal/database"
	"github.com/MrJamesThe3rd/tripline/internal/identity"
	"github.com/MrJamesThe3rd/tripline/internal/money"
	"github.com/MrJamesThe3rd/tripline/internal/parcel"
	"github.com/MrJamesThe3rd/tripline/internal/reservation"
	"github.com/MrJamesThe3rd/tripline/internal/schedule"
	"github.com/MrJamesThe3rd/tripline/internal/seat"
	"github.com/MrJamesThe3rd/tripline/internal/stop"
	"github.com/MrJamesThe3rd/tripline/internal/trip"
)

var validate = validator.New()

// Decode reads a JSON body into v and checks its validate tags. It writes
// the 400 itself and reports false when the body is unusable.
func Decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}

	if err := validate.Struct(v); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}

	return true
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Status maps a domain error to its HTTP status.
func Status(err error) int {
	switch {
	case errors.Is(err, database.ErrTransient):
		return http.StatusServiceUnavailable
	case errors.Is(err, seat.ErrInvariantViolation):
		return http.StatusInternalServerError
	case errors.Is(err, trip.ErrNotFound),
		errors.Is(err, reservation.ErrNotFound),
		errors.Is(err, parcel.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, reservation.ErrAlreadyResolved),
		errors.Is(err, seat.ErrInsufficientCapacity),
		errors.Is(err, parcel.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, seat.ErrInvalidSeatCount),
		errors.Is(err, reservation.ErrInvalidRequest),
		errors.Is(err, trip.ErrInvalidTrip),
		errors.Is(err, trip.ErrInvalidID),
		errors.Is(err, parcel.ErrInvalidParcel),
		errors.Is(err, stop.ErrInvalidAlias),
		errors.Is(err, schedule.ErrMalformedTimeLabel),
		errors.Is(err, money.ErrInvalidAmount):
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

// Error writes err with the status Status picks. Server errors are logged
// and hidden from the client.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := Status(err)

	switch status {
	case http.StatusServiceUnavailable:
		w.Header().Set("Retry-After", "1")
		http.Error(w, "temporarily unavailable, retry", status)
	case http.StatusInternalServerError:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		http.Error(w, "internal error", status)
	default:
		http.Error(w, err.Error(), status)
	}
}

// Actor returns the id of the authenticated caller.
func Actor(r *http.Request) string {
	u, _ := identity.FromContext(r.Context())
	return u.ID
}

func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.Format(time.DateOnly)
}

// ParseDate reads a YYYY-MM-DD query or body value.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(time.DateOnly, s)
}
