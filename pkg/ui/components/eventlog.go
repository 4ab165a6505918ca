// Package components provides reusable TUI components.
package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// EventRow represents one lifecycle event: a connect, disconnect, or gap.
type EventRow struct {
	Timestamp string
	Venue     string
	Symbol    string
	Kind      string // "connected", "disconnected", "gap"
	Detail    string
}

// EventLogComponent renders recent connection/gap events, newest first.
type EventLogComponent struct {
	rows       []EventRow
	maxRows    int
	offset     int
	visibleMax int
}

// NewEventLogComponent creates a new event log component.
func NewEventLogComponent(maxRows int) *EventLogComponent {
	return &EventLogComponent{
		rows:       make([]EventRow, 0),
		maxRows:    maxRows,
		visibleMax: 8,
	}
}

// Add adds a new event to the log.
func (e *EventLogComponent) Add(row EventRow) {
	e.rows = append([]EventRow{row}, e.rows...)
	if len(e.rows) > e.maxRows {
		e.rows = e.rows[:e.maxRows]
	}
	e.offset = 0
}

// Clear clears all events.
func (e *EventLogComponent) Clear() {
	e.rows = make([]EventRow, 0)
	e.offset = 0
}

// ScrollUp scrolls the list up.
func (e *EventLogComponent) ScrollUp() {
	if e.offset > 0 {
		e.offset--
	}
}

// ScrollDown scrolls the list down.
func (e *EventLogComponent) ScrollDown() {
	maxOffset := len(e.rows) - e.visibleMax
	if maxOffset < 0 {
		maxOffset = 0
	}
	if e.offset < maxOffset {
		e.offset++
	}
}

// Count returns the total number of events.
func (e *EventLogComponent) Count() int {
	return len(e.rows)
}

// View renders the event log component.
func (e *EventLogComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	connectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	gapStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true)
	disconnectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	scrollHint := lipgloss.NewStyle().Foreground(lipgloss.Color("#60A5FA"))

	var result string
	result = headerStyle.Render("EVENTS")
	if len(e.rows) > 0 {
		result += mutedStyle.Render(fmt.Sprintf(" (%d total, ↑↓ scroll)", len(e.rows)))
	}
	result += "\n\n"

	if len(e.rows) == 0 {
		result += mutedStyle.Render("  No events yet. Connecting...\n")
		return result
	}

	if e.offset > 0 {
		result += scrollHint.Render(fmt.Sprintf("  ▲ %d above\n", e.offset))
	}

	end := e.offset + e.visibleMax
	if end > len(e.rows) {
		end = len(e.rows)
	}
	for i := e.offset; i < end; i++ {
		row := e.rows[i]
		icon := "●"
		style := connectedStyle
		switch row.Kind {
		case "gap":
			icon = "⚠"
			style = gapStyle
		case "disconnected":
			icon = "○"
			style = disconnectedStyle
		}
		result += fmt.Sprintf("  %s [%s] %s/%s: %s\n",
			style.Render(icon), row.Timestamp, row.Venue, row.Symbol, row.Detail)
	}

	if end < len(e.rows) {
		result += scrollHint.Render(fmt.Sprintf("\n  ▼ %d more below\n", len(e.rows)-end))
	}

	return result
}
