package importcsv

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/tripline/internal/http/respond"
	"github.com/MrJamesThe3rd/tripline/internal/importer"
	"github.com/MrJamesThe3rd/tripline/internal/stop"
	"github.com/MrJamesThe3rd/tripline/internal/trip"
)

type Handler struct {
	importSvc *importer.Service
	tripSvc   *trip.Service
	stopSvc   *stop.Service
}

func NewHandler(importSvc *importer.Service, tripSvc *trip.Service, stopSvc *stop.Service) *Handler {
	return &Handler{
		importSvc: importSvc,
		tripSvc:   tripSvc,
		stopSvc:   stopSvc,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/timetable", h.importTimetable)
}

type importedTrip struct {
	RecordID     string `json:"record_id"`
	OriginalDate string `json:"original_date"`
	Segments     int    `json:"segments"`
}

type importResponse struct {
	Imported int            `json:"imported"`
	Trips    []importedTrip `json:"trips"`
}

func (h *Handler) importTimetable(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	params, err := h.importSvc.Import(importer.Format(r.FormValue("format")), file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.stopSvc.CanonicalizeTrips(r.Context(), params); err != nil {
		respond.Error(w, r, err)
		return
	}

	trips, err := h.tripSvc.CreateBatch(r.Context(), params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	slog.Info("timetable imported", "trips", len(trips), "actor_id", respond.Actor(r))

	resp := importResponse{Imported: len(trips), Trips: make([]importedTrip, len(trips))}
	for i, t := range trips {
		resp.Trips[i] = importedTrip{
			RecordID:     t.RecordID.String(),
			OriginalDate: respond.Date(t.OriginalDate),
			Segments:     len(t.Segments),
		}
	}

	respond.JSON(w, http.StatusCreated, resp)
}
