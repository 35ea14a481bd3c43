package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/tripline/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/tripline/internal/config"
	"github.com/MrJamesThe3rd/tripline/internal/database"
	"github.com/MrJamesThe3rd/tripline/internal/importer"
	"github.com/MrJamesThe3rd/tripline/internal/manifest"
	"github.com/MrJamesThe3rd/tripline/internal/reservation"
	reservationStore "github.com/MrJamesThe3rd/tripline/internal/reservation/store"
	"github.com/MrJamesThe3rd/tripline/internal/seat"
	seatStore "github.com/MrJamesThe3rd/tripline/internal/seat/store"
	"github.com/MrJamesThe3rd/tripline/internal/stop"
	stopStore "github.com/MrJamesThe3rd/tripline/internal/stop/store"
	"github.com/MrJamesThe3rd/tripline/internal/trip"
	tripStore "github.com/MrJamesThe3rd/tripline/internal/trip/store"
)

type model struct {
	tripService        *trip.Service
	reservationService *reservation.Service
	stopService        *stop.Service
	importService      *importer.Service
	manifestService    *manifest.Service
	ledger             *seat.Ledger
	operatorID         string

	currentView View

	importView view.ImportModel
	reviewView view.ReviewModel
	listView   view.ListModel
}

type View int

const (
	ViewMenu   View = 0
	ViewImport View = 1
	ViewReview View = 2
	ViewList   View = 3
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.App.StoreDriver != "postgres" {
		slog.Error("the console needs STORE_DRIVER=postgres", "store", cfg.App.StoreDriver)
		os.Exit(1)
	}

	sharing, err := cfg.SeatSharing()
	if err != nil {
		slog.Error("invalid seat sharing", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	tripSvc := trip.NewService(tripStore.New(db))
	ledger := seat.NewLedger(seatStore.New(db), sharing)
	resSvc := reservation.NewService(reservationStore.New(db), tripSvc, ledger)
	stopSvc := stop.NewService(stopStore.New(db))
	impSvc := importer.NewService()
	manSvc := manifest.NewService(tripSvc, resSvc)

	return model{
		tripService:        tripSvc,
		reservationService: resSvc,
		stopService:        stopSvc,
		importService:      impSvc,
		manifestService:    manSvc,
		ledger:             ledger,
		operatorID:         cfg.TUI.OperatorID,
		currentView:        ViewMenu,
		importView:         view.NewImportModel(tripSvc, stopSvc, impSvc),
		reviewView:         view.NewReviewModel(resSvc, ledger, cfg.TUI.OperatorID),
		listView:           view.NewListModel(tripSvc, manSvc),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.tripService, m.stopService, m.importService)

				return m, m.importView.Init()
			case "2":
				m.currentView = ViewReview
				m.reviewView = view.NewReviewModel(m.reservationService, m.ledger, m.operatorID)

				return m, m.reviewView.Init()
			case "3":
				m.currentView = ViewList
				m.listView = view.NewListModel(m.tripService, m.manifestService)

				return m, m.listView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewReview:
		var newModel tea.Model
		newModel, cmd = m.reviewView.Update(msg)
		m.reviewView = newModel.(view.ReviewModel)
	case ViewList:
		var newModel tea.Model
		newModel, cmd = m.listView.Update(msg)
		m.listView = newModel.(view.ListModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Tripline Console\n\n" +
				"1. Import Timetable\n" +
				"2. Review Booking Requests\n" +
				"3. Departures & Manifests\n\n" +
				"Signed in as " + m.operatorID + "\n\n" +
				"q. Quit",
		)
	case ViewImport:
		return m.importView.View()
	case ViewReview:
		return m.reviewView.View()
	case ViewList:
		return m.listView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
