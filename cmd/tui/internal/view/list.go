package view

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/tripline/internal/manifest"
	"github.com/MrJamesThe3rd/tripline/internal/trip"
)

type listState int

const (
	listStatePickDay listState = iota
	listStateBrowse
)

// ListModel shows every leg departing on one day.
type ListModel struct {
	CommonModel
	tripService     *trip.Service
	manifestService *manifest.Service

	state  listState
	picker DayPicker
	table  table.Model
	day    time.Time
	deps   []trip.Departure

	loading bool
	err     error
	status  string
}

func NewListModel(tripSvc *trip.Service, manifestSvc *manifest.Service) ListModel {
	columns := []table.Column{
		{Title: "Departs", Width: 12},
		{Title: "From", Width: 20},
		{Title: "To", Width: 20},
		{Title: "Seats", Width: 8},
		{Title: "Trip", Width: 40},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return ListModel{
		tripService:     tripSvc,
		manifestService: manifestSvc,
		picker:          NewDayPicker(),
		table:           t,
	}
}

func (m ListModel) Title() string { return "Departures" }

func (m ListModel) ShortHelp() string {
	return "Esc: back | d: change day | m: write manifest | r: refresh"
}

func (m ListModel) Init() tea.Cmd {
	return m.picker.Init()
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case DaySelectedMsg:
		m.state = listStateBrowse
		m.day = msg.Date
		m.loading = true

		return m, m.loadDeparturesCmd()

	case loadDeparturesMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.deps = msg.deps
		m.refreshTable()

		return m, nil

	case manifestWrittenMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error writing manifest: %v", msg.err)
		} else {
			m.status = fmt.Sprintf("Manifest written to %s (%d passengers)", msg.path, msg.rows)
		}

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	if m.state == listStatePickDay {
		if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEsc && m.picker.IsSelecting() {
			return m, Back
		}

		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)

		return m, cmd
	}

	return m.updateBrowse(msg)
}

func (m ListModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			return m, Back
		case "d":
			m.state = listStatePickDay
			m.picker.Reset()
			m.status = ""

			return m, nil
		case "r":
			m.loading = true
			return m, m.loadDeparturesCmd()
		case "m":
			idx := m.table.Cursor()
			if idx < 0 || idx >= len(m.deps) {
				return m, nil
			}

			return m, m.writeManifestCmd(m.deps[idx].TripID)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ListModel) View() string {
	if m.state == listStatePickDay {
		return lipgloss.NewStyle().Padding(2).Render(m.picker.View())
	}

	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading departures...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	header := fmt.Sprintf("Departures on %s (%d)", activeStyle(FormatDate(m.day)), len(m.deps))

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
		lipgloss.NewStyle().Faint(true).Render(m.ShortHelp()),
	)

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func (m *ListModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.deps))
	for _, d := range m.deps {
		rows = append(rows, table.Row{
			d.Segment.Departure.String(),
			d.Segment.Origin,
			d.Segment.Destination,
			fmt.Sprintf("%d/%d", d.Segment.AvailableSeats, d.Segment.Capacity),
			d.TripID.String(),
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadDeparturesMsg struct {
	deps []trip.Departure
	err  error
}

func (m ListModel) loadDeparturesCmd() tea.Cmd {
	day := m.day

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		deps, err := m.tripService.Departures(ctx, day)

		return loadDeparturesMsg{deps: deps, err: err}
	}
}

type manifestWrittenMsg struct {
	path string
	rows int
	err  error
}

func (m ListModel) writeManifestCmd(id trip.ID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		man, err := m.manifestService.Build(ctx, id)
		if err != nil {
			return manifestWrittenMsg{err: err}
		}

		dir, err := os.Getwd()
		if err != nil {
			return manifestWrittenMsg{err: err}
		}

		path := filepath.Join(dir, manifest.Filename(man))

		f, err := os.Create(path)
		if err != nil {
			return manifestWrittenMsg{err: err}
		}
		defer f.Close()

		if err := manifest.WriteCSV(f, man); err != nil {
			return manifestWrittenMsg{err: err}
		}

		return manifestWrittenMsg{path: path, rows: len(man.Rows)}
	}
}
