package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tripHttp "github.com/MrJamesThe3rd/tripline/internal/http"
	importHandler "github.com/MrJamesThe3rd/tripline/internal/http/importcsv"
	parcelHandler "github.com/MrJamesThe3rd/tripline/internal/http/parcel"
	reservationHandler "github.com/MrJamesThe3rd/tripline/internal/http/reservation"
	seatHandler "github.com/MrJamesThe3rd/tripline/internal/http/seat"
	stopHandler "github.com/MrJamesThe3rd/tripline/internal/http/stop"
	tripHandler "github.com/MrJamesThe3rd/tripline/internal/http/trip"
	"github.com/MrJamesThe3rd/tripline/internal/identity"
	"github.com/MrJamesThe3rd/tripline/internal/importer"
	"github.com/MrJamesThe3rd/tripline/internal/manifest"
	"github.com/MrJamesThe3rd/tripline/internal/parcel"
	"github.com/MrJamesThe3rd/tripline/internal/reservation"
	"github.com/MrJamesThe3rd/tripline/internal/schedule"
	"github.com/MrJamesThe3rd/tripline/internal/seat"
	"github.com/MrJamesThe3rd/tripline/internal/stop"
	"github.com/MrJamesThe3rd/tripline/internal/store/memory"
	"github.com/MrJamesThe3rd/tripline/internal/trip"
)

const secret = "router-test"

type api struct {
	t       *testing.T
	handler http.Handler
	trips   *trip.Service
	stops   *stop.Service
}

func newAPI(t *testing.T) *api {
	t.Helper()

	store := memory.New()

	var (
		tripSvc        = trip.NewService(store)
		ledger         = seat.NewLedger(store, seat.SharingSegment)
		reservationSvc = reservation.NewService(store, tripSvc, ledger)
		parcelSvc      = parcel.NewService(store, tripSvc)
		stopSvc        = stop.NewService(store)
		manifestSvc    = manifest.NewService(tripSvc, reservationSvc)
	)

	h := tripHttp.New(
		tripHttp.Options{JWTSecret: secret, CORSOrigins: []string{"*"}},
		tripHandler.NewHandler(tripSvc, ledger, manifestSvc),
		seatHandler.NewHandler(ledger),
		reservationHandler.NewHandler(reservationSvc),
		parcelHandler.NewHandler(parcelSvc),
		importHandler.NewHandler(importer.NewService(), tripSvc, stopSvc),
		stopHandler.NewHandler(stopSvc),
	)

	return &api{t: t, handler: h, trips: tripSvc, stops: stopSvc}
}

func (a *api) do(method, path string, role identity.Role, user string, body any) *httptest.ResponseRecorder {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if user != "" {
		tok, err := identity.Sign(identity.User{ID: user, Role: role}, []byte(secret))
		require.NoError(a.t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	return rec
}

func (a *api) seedTrip(capacity int) *trip.Trip {
	a.t.Helper()

	t, err := a.trips.Create(context.Background(), trip.CreateParams{
		OriginalDate: time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC),
		Segments: []trip.SegmentParams{
			{Origin: "Dhaka", Destination: "Feni", Departure: schedule.MustParse("07:00 PM"), Arrival: schedule.MustParse("11:00 PM"), Capacity: capacity},
			{Origin: "Feni", Destination: "Cox's Bazar", Departure: schedule.MustParse("11:30 PM"), Arrival: schedule.MustParse("05:00 AM +1d"), Capacity: capacity},
		},
	})
	require.NoError(a.t, err)

	return t
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())

	return v
}

func booking(tripID string, names ...string) map[string]any {
	passengers := make([]map[string]string, len(names))
	for i, n := range names {
		passengers[i] = map[string]string{"name": n}
	}

	return map[string]any{
		"trip_id":        tripID,
		"seats":          len(names),
		"passengers":     passengers,
		"payment_method": "cash",
		"payment_status": "partial",
		"advance_amount": "5.00",
		"total_amount":   "24.00",
	}
}

func TestAPI_RequiresToken(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodGet, "/api/v1/requests", "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(http.MethodGet, "/healthz", "", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAPI_RequestApprovalFlow(t *testing.T) {
	a := newAPI(t)
	tr := a.seedTrip(2)
	tripID := tr.Segments[1].ID().String()

	rec := a.do(http.MethodPost, "/api/v1/requests", identity.RoleAgent, "agent-1", booking(tripID, "Asha", "Babu"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	submitted := decode[map[string]any](t, rec)
	assert.Equal(t, "pending", submitted["status"])
	assert.Equal(t, "2025-06-13", submitted["departure_date"])
	assert.Equal(t, "5.00", submitted["advance_amount"])

	requestID := submitted["id"].(string)

	rec = a.do(http.MethodPost, "/api/v1/requests/"+requestID+"/approve", identity.RoleAgent, "agent-1", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(http.MethodPost, "/api/v1/requests/"+requestID+"/approve", identity.RoleOperator, "op-1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res := decode[map[string]any](t, rec)
	assert.Equal(t, "agent-1", res["created_by"])
	assert.Equal(t, "op-1", res["approved_by"])
	assert.Equal(t, "op-1", res["transaction"].(map[string]any)["user_id"])
	assert.Equal(t, "5.00", res["transaction"].(map[string]any)["amount"])

	rec = a.do(http.MethodPost, "/api/v1/requests/"+requestID+"/approve", identity.RoleOperator, "op-1", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(http.MethodGet, "/api/v1/trips/segments/"+tripID+"/availability?seats=1", identity.RoleAgent, "agent-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	avail := decode[map[string]any](t, rec)
	assert.Equal(t, false, avail["ok"])
	assert.InDelta(t, 0, avail["available"], 0)

	// Full segment: a second request can be submitted but not approved.
	rec = a.do(http.MethodPost, "/api/v1/requests", identity.RoleAgent, "agent-2", booking(tripID, "Chandra"))
	require.Equal(t, http.StatusCreated, rec.Code)

	second := decode[map[string]any](t, rec)["id"].(string)

	rec = a.do(http.MethodPost, "/api/v1/requests/"+second+"/approve", identity.RoleOperator, "op-1", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "insufficient capacity")

	rec = a.do(http.MethodGet, "/api/v1/requests", identity.RoleAgent, "agent-2", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	own := decode[[]map[string]any](t, rec)
	require.Len(t, own, 1)
	assert.NotEmpty(t, own[0]["last_failure"])

	rec = a.do(http.MethodGet, "/api/v1/requests/"+requestID, identity.RoleAgent, "agent-2", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(http.MethodPost, "/api/v1/requests/"+second+"/reject", identity.RoleOperator, "op-1", map[string]string{"reason": "full"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "rejected", decode[map[string]any](t, rec)["status"])

	rec = a.do(http.MethodGet, "/api/v1/trips/segments/"+tripID+"/manifest", identity.RoleOperator, "op-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, 3, strings.Count(rec.Body.String(), "\n"))
}

func TestAPI_CancelReleasesSeats(t *testing.T) {
	a := newAPI(t)
	tr := a.seedTrip(3)
	tripID := tr.Segments[0].ID().String()

	rec := a.do(http.MethodPost, "/api/v1/reservations", identity.RoleOperator, "op-1", booking(tripID, "Asha", "Babu"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	id := decode[map[string]any](t, rec)["id"].(string)

	rec = a.do(http.MethodPost, "/api/v1/reservations/"+id+"/cancel", identity.RoleOperator, "op-2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cancelled", decode[map[string]any](t, rec)["status"])

	rec = a.do(http.MethodPost, "/api/v1/reservations/"+id+"/cancel", identity.RoleOperator, "op-2", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(http.MethodGet, "/api/v1/trips/segments/"+tripID+"/availability?seats=3", identity.RoleAgent, "agent-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode[map[string]any](t, rec)["ok"])
}

func TestAPI_AgentsSeeOnlyTheirOwnReservations(t *testing.T) {
	a := newAPI(t)
	tr := a.seedTrip(5)
	tripID := tr.Segments[0].ID().String()

	rec := a.do(http.MethodPost, "/api/v1/requests", identity.RoleAgent, "agent-1", booking(tripID, "Asha"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	requestID := decode[map[string]any](t, rec)["id"].(string)

	rec = a.do(http.MethodPost, "/api/v1/requests/"+requestID+"/approve", identity.RoleOperator, "op-1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	agentRes := decode[map[string]any](t, rec)["id"].(string)

	rec = a.do(http.MethodPost, "/api/v1/reservations", identity.RoleOperator, "op-1", booking(tripID, "Babu"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.do(http.MethodGet, "/api/v1/reservations", identity.RoleAgent, "agent-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	own := decode[[]map[string]any](t, rec)
	require.Len(t, own, 1)
	assert.Equal(t, agentRes, own[0]["id"])
	assert.Equal(t, requestID, own[0]["request_id"])

	rec = a.do(http.MethodGet, "/api/v1/reservations", identity.RoleAgent, "agent-2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]map[string]any](t, rec))

	rec = a.do(http.MethodGet, "/api/v1/reservations/"+agentRes, identity.RoleAgent, "agent-2", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(http.MethodGet, "/api/v1/reservations/"+agentRes, identity.RoleAgent, "agent-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, requestID, decode[map[string]any](t, rec)["request_id"])

	rec = a.do(http.MethodGet, "/api/v1/reservations", identity.RoleOperator, "op-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 2)

	rec = a.do(http.MethodGet, "/api/v1/reservations?created_by=agent-1", identity.RoleOperator, "op-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)
}

func TestAPI_SeatsAndValidation(t *testing.T) {
	a := newAPI(t)
	tr := a.seedTrip(2)
	tripID := tr.Segments[0].ID().String()

	rec := a.do(http.MethodPost, "/api/v1/seats/"+tripID+"/reserve", identity.RoleAgent, "agent-1", map[string]int{"seats": 1})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(http.MethodPost, "/api/v1/seats/"+tripID+"/reserve", identity.RoleOperator, "op-1", map[string]int{"seats": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodPost, "/api/v1/seats/"+tripID+"/reserve", identity.RoleOperator, "op-1", map[string]int{"seats": 3})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(http.MethodPost, "/api/v1/seats/"+tripID+"/reserve", identity.RoleOperator, "op-1", map[string]int{"seats": 2})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 0, decode[map[string]any](t, rec)["available"], 0)

	rec = a.do(http.MethodPost, "/api/v1/seats/"+tripID+"/release", identity.RoleOperator, "op-1", map[string]int{"seats": 5})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 2, decode[map[string]any](t, rec)["available"], 0)

	rec = a.do(http.MethodPost, "/api/v1/seats/not-a-trip/reserve", identity.RoleOperator, "op-1", map[string]int{"seats": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodPost, "/api/v1/requests", identity.RoleAgent, "agent-1", booking(tripID))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_Departures(t *testing.T) {
	a := newAPI(t)
	a.seedTrip(10)

	rec := a.do(http.MethodGet, "/api/v1/trips/departures?date=2025-06-13", identity.RoleAgent, "agent-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 2)

	rec = a.do(http.MethodGet, "/api/v1/trips/departures?date=2025-06-14", identity.RoleAgent, "agent-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]map[string]any](t, rec))

	rec = a.do(http.MethodGet, "/api/v1/trips/departures", identity.RoleAgent, "agent-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_Parcels(t *testing.T) {
	a := newAPI(t)
	tr := a.seedTrip(10)
	tripID := tr.Segments[1].ID().String()

	rec := a.do(http.MethodPost, "/api/v1/parcels", identity.RoleAgent, "agent-1", map[string]any{
		"trip_id":  tripID,
		"sender":   "Asha",
		"receiver": "Babu",
		"charge":   "3.50",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decode[map[string]any](t, rec)
	assert.Equal(t, "booked", created["status"])
	assert.Equal(t, "3.50", created["charge"])

	id := created["id"].(string)

	rec = a.do(http.MethodPatch, "/api/v1/parcels/"+id+"/status", identity.RoleAgent, "agent-1", map[string]string{"status": "delivered"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(http.MethodPatch, "/api/v1/parcels/"+id+"/status", identity.RoleAgent, "agent-1", map[string]string{"status": "dispatched"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(http.MethodGet, "/api/v1/parcels?status=dispatched&date=2025-06-13", identity.RoleAgent, "agent-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)
}

func TestAPI_ImportTimetable(t *testing.T) {
	a := newAPI(t)

	require.NoError(t, a.stops.Learn(context.Background(), "ctg", "Chittagong"))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("format", "csv"))

	fw, err := mw.CreateFormFile("file", "timetable.csv")
	require.NoError(t, err)

	_, err = fw.Write([]byte("trip;date;origin;destination;departure;arrival;capacity\n" +
		"T1;2025-06-13;Dhaka;CTG Dampara;10:00 PM;04:00 AM +1d;36\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	tok, err := identity.Sign(identity.User{ID: "op-1", Role: identity.RoleOperator}, []byte(secret))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/import/timetable", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+tok)

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := decode[map[string]any](t, rec)
	assert.InDelta(t, 1, resp["imported"], 0)

	deps, err := a.trips.Departures(context.Background(), time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, "Chittagong", deps[0].Segment.Destination)
}
