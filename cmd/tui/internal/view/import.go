package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/tripline/internal/importer"
	"github.com/MrJamesThe3rd/tripline/internal/stop"
	"github.com/MrJamesThe3rd/tripline/internal/trip"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateFormatSelect importState = iota
	importStateFilePick
	importStateParsing
	importStatePreview
	importStateResult
)

type ImportModel struct {
	CommonModel
	tripService   *trip.Service
	stopService   *stop.Service
	importService *importer.Service

	state          importState
	filePicker     filepicker.Model
	selectedFormat importer.Format
	formatOptions  []importer.Format
	formatCursor   int

	parsed      []trip.CreateParams
	previewList list.Model

	status string
	err    error
}

func NewImportModel(tripSvc *trip.Service, stopSvc *stop.Service, impSvc *importer.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		tripService:   tripSvc,
		stopService:   stopSvc,
		importService: impSvc,
		filePicker:    fp,
		formatOptions: []importer.Format{importer.FormatCSV},
	}
}

func (m ImportModel) Title() string { return "Import Timetable" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStatePreview {
		return "Enter: import all | Esc: cancel"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == importStateFormatSelect {
			return m.updateFormatSelect(msg)
		}

		if m.state == importStatePreview {
			return m.updatePreview(msg)
		}

	case parseResultMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		if len(msg.params) == 0 {
			m.state = importStateResult
			m.status = "The file holds no trips."

			return m, nil
		}

		m.parsed = msg.params
		m.state = importStatePreview

		items := make([]list.Item, len(m.parsed))
		for i, p := range m.parsed {
			items[i] = tripItem{params: p}
		}

		m.previewList = list.New(items, tripDelegate{}, 80, 20)
		m.previewList.Title = fmt.Sprintf("%d trips ready to import", len(items))
		m.previewList.SetShowStatusBar(false)
		m.previewList.SetFilteringEnabled(false)
		m.previewList.SetShowHelp(false)

		return m, nil

	case confirmResultMsg:
		m.state = importStateResult
		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.status = fmt.Sprintf("Imported %d trips.", msg.count)

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateParsing
		m.status = fmt.Sprintf("Reading %s...", path)

		return m, m.parseCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateFilePick:
		m.state = importStateFormatSelect
		return m, nil
	case importStateResult, importStatePreview:
		m.state = importStateFormatSelect
		m.parsed = nil
		m.err = nil
		m.status = ""

		return m, nil
	}

	return m, Back
}

func (m ImportModel) updateFormatSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.formatCursor > 0 {
			m.formatCursor--
		}
	case tea.KeyDown:
		if m.formatCursor < len(m.formatOptions)-1 {
			m.formatCursor++
		}
	case tea.KeyEnter:
		m.selectedFormat = m.formatOptions[m.formatCursor]
		m.state = importStateFilePick

		return m, m.filePicker.Init()
	}

	return m, nil
}

func (m ImportModel) updatePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		m.state = importStateParsing
		m.status = fmt.Sprintf("Importing %d trips...", len(m.parsed))

		return m, m.confirmCmd()
	}

	var cmd tea.Cmd
	m.previewList, cmd = m.previewList.Update(msg)

	return m, cmd
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFormatSelect:
		return m.viewFormatSelect()
	case importStateFilePick:
		return m.viewFilePick()
	case importStateParsing:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStatePreview:
		return lipgloss.NewStyle().Padding(1).Render(m.previewList.View() + "\n" + m.ShortHelp())
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewFormatSelect() string {
	s := "Select Format:\n\n"

	for i, f := range m.formatOptions {
		cursor := " "
		if i == m.formatCursor {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, string(f))
	}

	return lipgloss.NewStyle().Padding(2).Render(s)
}

func (m ImportModel) viewFilePick() string {
	return lipgloss.NewStyle().Padding(1).Render(
		fmt.Sprintf("Select timetable to import (%s):\n\n%s", m.selectedFormat, m.filePicker.View()),
	)
}

func (m ImportModel) viewResult() string {
	color := lipgloss.Color("46")
	if m.err != nil {
		color = lipgloss.Color("196")
	}

	return lipgloss.NewStyle().Padding(2).Render(
		lipgloss.NewStyle().Foreground(color).Render(m.status) + "\n\n(Esc to go back)",
	)
}

// Messages

type parseResultMsg struct {
	params []trip.CreateParams
	err    error
}

type confirmResultMsg struct {
	count int
	err   error
}

func (m ImportModel) parseCmd(path string) tea.Cmd {
	format := m.selectedFormat

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return parseResultMsg{err: err}
		}
		defer f.Close()

		params, err := m.importService.Import(format, f)
		if err != nil {
			return parseResultMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.stopService.CanonicalizeTrips(ctx, params); err != nil {
			return parseResultMsg{err: err}
		}

		return parseResultMsg{params: params}
	}
}

func (m ImportModel) confirmCmd() tea.Cmd {
	params := m.parsed

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		trips, err := m.tripService.CreateBatch(ctx, params)
		if err != nil {
			return confirmResultMsg{err: err}
		}

		return confirmResultMsg{count: len(trips)}
	}
}

// Preview list item

type tripItem struct {
	params trip.CreateParams
}

func (i tripItem) Title() string       { return "" }
func (i tripItem) Description() string { return "" }
func (i tripItem) FilterValue() string { return "" }

// Preview list delegate

type tripDelegate struct{}

func (d tripDelegate) Height() int                             { return 2 }
func (d tripDelegate) Spacing() int                            { return 0 }
func (d tripDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d tripDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(tripItem)
	if !ok || len(item.params.Segments) == 0 {
		return
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	segs := item.params.Segments
	first, last := segs[0], segs[len(segs)-1]

	line1 := fmt.Sprintf("%s%s  %s %s -> %s",
		cursor,
		FormatDate(item.params.OriginalDate),
		first.Departure,
		first.Origin,
		last.Destination,
	)

	line2 := fmt.Sprintf("      %d legs, arrives %s, %d seats", len(segs), last.Arrival, first.Capacity)

	fmt.Fprintf(w, "%s\n%s\n", line1, line2)
}
