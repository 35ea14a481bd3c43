package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/tripline/internal/config"
	"github.com/MrJamesThe3rd/tripline/internal/database"
	"github.com/MrJamesThe3rd/tripline/internal/events"
	triplineHttp "github.com/MrJamesThe3rd/tripline/internal/http"
	importHandler "github.com/MrJamesThe3rd/tripline/internal/http/importcsv"
	parcelHandler "github.com/MrJamesThe3rd/tripline/internal/http/parcel"
	reservationHandler "github.com/MrJamesThe3rd/tripline/internal/http/reservation"
	seatHandler "github.com/MrJamesThe3rd/tripline/internal/http/seat"
	stopHandler "github.com/MrJamesThe3rd/tripline/internal/http/stop"
	tripHandler "github.com/MrJamesThe3rd/tripline/internal/http/trip"
	"github.com/MrJamesThe3rd/tripline/internal/importer"
	"github.com/MrJamesThe3rd/tripline/internal/manifest"
	"github.com/MrJamesThe3rd/tripline/internal/parcel"
	parcelStore "github.com/MrJamesThe3rd/tripline/internal/parcel/store"
	"github.com/MrJamesThe3rd/tripline/internal/reservation"
	reservationStore "github.com/MrJamesThe3rd/tripline/internal/reservation/store"
	"github.com/MrJamesThe3rd/tripline/internal/seat"
	seatStore "github.com/MrJamesThe3rd/tripline/internal/seat/store"
	"github.com/MrJamesThe3rd/tripline/internal/stop"
	stopStore "github.com/MrJamesThe3rd/tripline/internal/stop/store"
	"github.com/MrJamesThe3rd/tripline/internal/store/memory"
	"github.com/MrJamesThe3rd/tripline/internal/trip"
	"github.com/MrJamesThe3rd/tripline/internal/trip/cache"
	tripStore "github.com/MrJamesThe3rd/tripline/internal/trip/store"
)

type repositories struct {
	trips        trip.Repository
	seats        seat.Repository
	reservations reservation.Repository
	parcels      parcel.Repository
	stops        stop.Repository
}

func postgresRepositories(db *sql.DB) repositories {
	return repositories{
		trips:        tripStore.New(db),
		seats:        seatStore.New(db),
		reservations: reservationStore.New(db),
		parcels:      parcelStore.New(db),
		stops:        stopStore.New(db),
	}
}

func memoryRepositories() repositories {
	s := memory.New()

	return repositories{trips: s, seats: s, reservations: s, parcels: s, stops: s}
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel()})))

	if cfg.Auth.JWTSecret == "" {
		slog.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	sharing, err := cfg.SeatSharing()
	if err != nil {
		slog.Error("invalid seat sharing", "error", err)
		os.Exit(1)
	}

	ctx, cancelSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancelSignals()

	var repos repositories

	switch cfg.App.StoreDriver {
	case "memory":
		slog.Warn("using in-memory store, data is lost on exit")

		repos = memoryRepositories()
	default:
		db, err := database.New(cfg.ConnectionString())
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		repos = postgresRepositories(db)
	}

	tripService := trip.NewService(repos.trips)

	if cfg.Redis.Addr != "" {
		rdb, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			slog.Warn("departures cache disabled", "addr", cfg.Redis.Addr, "error", err)
		} else {
			defer rdb.Close()

			tripService.WithCache(cache.New(rdb, cfg.Redis.TTL))
		}
	}

	var (
		ledger             = seat.NewLedger(repos.seats, sharing)
		reservationService = reservation.NewService(repos.reservations, tripService, ledger)
		parcelService      = parcel.NewService(repos.parcels, tripService)
		stopService        = stop.NewService(repos.stops)
		manifestService    = manifest.NewService(tripService, reservationService)
		importService      = importer.NewService()
	)

	if cfg.AMQP.URL != "" {
		publisher, err := events.Dial(cfg.AMQP.URL, cfg.AMQP.Queue)
		if err != nil {
			slog.Warn("reservation events disabled", "error", err)
		} else {
			defer publisher.Close()

			reservationService.WithPublisher(publisher)
		}
	}

	var (
		tripH        = tripHandler.NewHandler(tripService, ledger, manifestService)
		seatH        = seatHandler.NewHandler(ledger)
		reservationH = reservationHandler.NewHandler(reservationService)
		parcelH      = parcelHandler.NewHandler(parcelService)
		importH      = importHandler.NewHandler(importService, tripService, stopService)
		stopH        = stopHandler.NewHandler(stopService)
	)

	router := triplineHttp.New(
		triplineHttp.Options{JWTSecret: cfg.Auth.JWTSecret, CORSOrigins: cfg.Server.CORSOrigins},
		tripH, seatH, reservationH, parcelH, importH, stopH,
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "app", cfg.App.Name, "port", srv.Addr, "store", cfg.App.StoreDriver, "seat_sharing", sharing)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
