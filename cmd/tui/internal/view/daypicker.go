package view

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jinzhu/now"
)

// Day is a predefined or custom service day.
type Day int

const (
	DayToday    Day = 0
	DayTomorrow Day = 1
	DayAfter    Day = 2
	DayCustom   Day = 3
)

func (d Day) String() string {
	switch d {
	case DayToday:
		return "Today"
	case DayTomorrow:
		return "Tomorrow"
	case DayAfter:
		return "Day After Tomorrow"
	case DayCustom:
		return "Pick a Date"
	}

	return "Unknown"
}

// Date returns the calendar day d refers to, relative to ref, as UTC midnight.
func (d Day) Date(ref time.Time) time.Time {
	day := now.With(ref).BeginningOfDay().AddDate(0, 0, int(d))

	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
}

// DaySelectedMsg is emitted once the user has settled on a day.
type DaySelectedMsg struct {
	Date time.Time
}

type dayState int

const (
	dayStateSelect dayState = iota
	dayStateCustom
)

// DayPicker selects the service day a screen works on.
type DayPicker struct {
	state    dayState
	selected Day
	input    textinput.Model

	err error
}

func NewDayPicker() DayPicker {
	in := textinput.New()
	in.Placeholder = "YYYY-MM-DD"
	in.CharLimit = 10
	in.Width = 12
	in.Prompt = "Date: "

	return DayPicker{input: in}
}

func (m DayPicker) Init() tea.Cmd {
	return nil
}

func (m DayPicker) Update(msg tea.Msg) (DayPicker, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case dayStateSelect:
			return m.updateSelect(key)
		case dayStateCustom:
			if next, cmd, handled := m.updateCustom(key); handled {
				return next, cmd
			}
		}
	}

	if m.state != dayStateCustom {
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m DayPicker) updateSelect(msg tea.KeyMsg) (DayPicker, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.selected > DayToday {
			m.selected--
		}
	case tea.KeyDown:
		if m.selected < DayCustom {
			m.selected++
		}
	case tea.KeyEnter:
		if m.selected == DayCustom {
			m.state = dayStateCustom
			m.input.Focus()

			return m, textinput.Blink
		}

		date := m.selected.Date(time.Now())

		return m, func() tea.Msg { return DaySelectedMsg{Date: date} }
	}

	return m, nil
}

func (m DayPicker) updateCustom(msg tea.KeyMsg) (DayPicker, tea.Cmd, bool) {
	switch msg.Type {
	case tea.KeyEnter:
		date, err := time.Parse(time.DateOnly, m.input.Value())
		if err != nil {
			m.err = fmt.Errorf("invalid date (YYYY-MM-DD)")
			return m, nil, true
		}

		m.err = nil

		return m, func() tea.Msg { return DaySelectedMsg{Date: date} }, true
	case tea.KeyEsc:
		m.state = dayStateSelect
		m.err = nil

		return m, nil, true
	}

	return m, nil, false
}

func (m DayPicker) View() string {
	errStr := ""
	if m.err != nil {
		errStr = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(fmt.Sprintf("\n\nError: %v", m.err))
	}

	if m.state == dayStateCustom {
		return fmt.Sprintf("Enter a date:\n\n%s\n\n(Enter to confirm, Esc to back)%s", m.input.View(), errStr)
	}

	s := "Select Day:\n\n"
	for d := DayToday; d <= DayCustom; d++ {
		cursor := " "
		if m.selected == d {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, d.String())
	}

	s += "\n(Enter to select, Esc to back)"

	return s + errStr
}

// IsSelecting reports whether the picker is on its option list.
func (m DayPicker) IsSelecting() bool {
	return m.state == dayStateSelect
}

// Reset returns the picker to its option list.
func (m *DayPicker) Reset() {
	m.state = dayStateSelect
	m.selected = DayToday
	m.err = nil
	m.input.SetValue("")
}
