package view

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/tripline/internal/reservation"
	"github.com/MrJamesThe3rd/tripline/internal/seat"
)

type reviewState int

const (
	reviewStateQueue reviewState = iota
	reviewStateReject
)

// ReviewModel walks the pending booking requests one at a time.
type ReviewModel struct {
	CommonModel
	resService *reservation.Service
	ledger     *seat.Ledger
	operatorID string

	state   reviewState
	queue   []*reservation.Request
	current *reservation.Request
	avail   *seat.Availability
	total   int

	form       *huh.Form
	formReason string

	loading bool
	status  string
}

func NewReviewModel(resSvc *reservation.Service, ledger *seat.Ledger, operatorID string) ReviewModel {
	return ReviewModel{
		resService: resSvc,
		ledger:     ledger,
		operatorID: operatorID,
		loading:    true,
	}
}

func (m ReviewModel) Title() string { return "Review Requests" }

func (m ReviewModel) ShortHelp() string {
	if m.state == reviewStateReject {
		return "Enter: confirm | Esc: cancel"
	}

	return "a: approve | x: reject | s: skip | r: reload | Esc: back"
}

func (m ReviewModel) Init() tea.Cmd {
	return m.loadPendingCmd()
}

func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadPendingMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error loading requests: %v", msg.err)
			return m, nil
		}

		m.queue = msg.reqs
		m.total = len(m.queue)

		return m, m.next()

	case availabilityMsg:
		if m.current != nil && msg.requestID == m.current.ID.String() && msg.err == nil {
			m.avail = &msg.avail
		}

		return m, nil

	case resolveResultMsg:
		m.loading = false

		if msg.err != nil {
			m.status = describeFailure(msg.err)

			// A retryable failure keeps the request in front of the operator.
			if errors.Is(msg.err, reservation.ErrTransientFailure) {
				return m, nil
			}
		} else {
			m.status = msg.summary
		}

		return m, m.next()
	}

	if m.state == reviewStateReject {
		return m.updateReject(msg)
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok || m.loading {
		return m, nil
	}

	switch key.String() {
	case "esc":
		return m, Back
	case "r":
		m.loading = true
		m.current = nil

		return m, m.loadPendingCmd()
	}

	if m.current == nil {
		return m, nil
	}

	switch key.String() {
	case "a":
		m.loading = true
		return m, m.approveCmd(m.current)
	case "x":
		return m.enterRejectMode()
	case "s":
		m.status = "Skipped."
		return m, m.next()
	}

	return m, nil
}

func (m *ReviewModel) next() tea.Cmd {
	m.avail = nil

	if len(m.queue) == 0 {
		m.current = nil
		return nil
	}

	m.current = m.queue[0]
	m.queue = m.queue[1:]

	return m.availabilityCmd(m.current)
}

func (m ReviewModel) enterRejectMode() (tea.Model, tea.Cmd) {
	m.formReason = ""
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("reason").
				Title("Rejection reason").
				Placeholder("optional").
				Value(&m.formReason),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = reviewStateReject

	return m, m.form.Init()
}

func (m ReviewModel) updateReject(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEsc {
		m.state = reviewStateQueue
		m.form = nil

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = reviewStateQueue
	m.form = nil
	m.loading = true

	return m, m.rejectCmd(m.current, m.formReason)
}

func (m ReviewModel) View() string {
	if m.loading && m.current == nil {
		return lipgloss.NewStyle().Padding(2).Render("Loading pending requests...")
	}

	var b strings.Builder

	if m.status != "" {
		b.WriteString(lipgloss.NewStyle().Faint(true).Render(m.status) + "\n\n")
	}

	if m.current == nil {
		b.WriteString("No pending requests.\n\n(r to reload, Esc to back)")
		return lipgloss.NewStyle().Padding(2).Render(b.String())
	}

	req := m.current
	position := m.total - len(m.queue)

	fmt.Fprintf(&b, "Request %d/%d\n\n", position, m.total)
	fmt.Fprintf(&b, "Trip:      %s\n", req.TripID)
	fmt.Fprintf(&b, "Departs:   %s\n", FormatDate(req.DepartureDate))
	fmt.Fprintf(&b, "Seats:     %d\n", req.Seats)
	fmt.Fprintf(&b, "Payment:   %s (%s)  advance %s / total %s\n",
		req.PaymentStatus, req.PaymentMethod, FormatAmount(req.AdvanceAmount), FormatAmount(req.TotalAmount))
	fmt.Fprintf(&b, "Requester: %s\n", req.RequesterID)

	if m.avail != nil {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
		if !m.avail.OK {
			style = style.Foreground(lipgloss.Color("196"))
		}

		fmt.Fprintf(&b, "Available: %s\n", style.Render(fmt.Sprintf("%d", m.avail.Available)))
	}

	if req.LastFailure != "" {
		fmt.Fprintf(&b, "Last try:  %s\n", lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Render(req.LastFailure))
	}

	b.WriteString("\nPassengers:\n")

	for _, p := range req.Passengers {
		fmt.Fprintf(&b, "  - %s %s\n", p.Name, p.Phone)
	}

	content := b.String()

	if m.state == reviewStateReject && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render("Reject Request\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	return lipgloss.NewStyle().Padding(2).Render(content + "\n" + m.ShortHelp())
}

func describeFailure(err error) string {
	switch {
	case errors.Is(err, reservation.ErrTransientFailure):
		return "Temporarily unavailable, try again."
	case errors.Is(err, seat.ErrInsufficientCapacity):
		return fmt.Sprintf("Not enough seats: %v", err)
	case errors.Is(err, reservation.ErrAlreadyResolved):
		return "Already handled by someone else."
	}

	return fmt.Sprintf("Error: %v", err)
}

// Messages

type loadPendingMsg struct {
	reqs []*reservation.Request
	err  error
}

func (m ReviewModel) loadPendingCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		reqs, err := m.resService.ListRequests(ctx, reservation.RequestFilter{Status: new(reservation.StatusPending)})

		return loadPendingMsg{reqs: reqs, err: err}
	}
}

type availabilityMsg struct {
	requestID string
	avail     seat.Availability
	err       error
}

func (m ReviewModel) availabilityCmd(req *reservation.Request) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		avail, err := m.ledger.Check(ctx, req.TripID, req.Seats)

		return availabilityMsg{requestID: req.ID.String(), avail: avail, err: err}
	}
}

type resolveResultMsg struct {
	summary string
	err     error
}

func (m ReviewModel) approveCmd(req *reservation.Request) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		res, err := m.resService.Approve(ctx, req.ID, m.operatorID)
		if err != nil {
			return resolveResultMsg{err: err}
		}

		return resolveResultMsg{summary: fmt.Sprintf("Approved: reservation %s, %d seats.", res.ID, res.Seats)}
	}
}

func (m ReviewModel) rejectCmd(req *reservation.Request, reason string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if _, err := m.resService.Reject(ctx, req.ID, m.operatorID, reason); err != nil {
			return resolveResultMsg{err: err}
		}

		return resolveResultMsg{summary: "Rejected."}
	}
}
