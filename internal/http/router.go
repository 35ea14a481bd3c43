package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/tripline/internal/http/importcsv"
	"github.com/MrJamesThe3rd/tripline/internal/http/parcel"
	"github.com/MrJamesThe3rd/tripline/internal/http/reservation"
	"github.com/MrJamesThe3rd/tripline/internal/http/seat"
	"github.com/MrJamesThe3rd/tripline/internal/http/stop"
	"github.com/MrJamesThe3rd/tripline/internal/http/trip"
	"github.com/MrJamesThe3rd/tripline/internal/identity"
)

type Options struct {
	JWTSecret   string
	CORSOrigins []string
}

func New(
	opts Options,
	tripsV1 *trip.Handler,
	seatsV1 *seat.Handler,
	reservationsV1 *reservation.Handler,
	parcelsV1 *parcel.Handler,
	importV1 *importcsv.Handler,
	stopsV1 *stop.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(identity.Middleware(opts.JWTSecret))

		r.Route("/trips", tripsV1.Routes)

		r.Route("/seats", func(r chi.Router) {
			r.Use(identity.Require(identity.RoleOperator))
			r.Use(middleware.AllowContentType("application/json"))
			seatsV1.Routes(r)
		})

		r.Route("/requests", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			reservationsV1.RequestRoutes(r)
		})

		r.Route("/reservations", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			reservationsV1.ReservationRoutes(r)
		})

		r.Route("/parcels", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			parcelsV1.Routes(r)
		})

		r.Route("/import", func(r chi.Router) {
			r.Use(identity.Require(identity.RoleOperator))
			importV1.Routes(r)
		})

		r.Route("/stops", stopsV1.Routes)
	})

	return router
}
