// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// DepthRow represents one price level for ladder display.
type DepthRow struct {
	Price decimal.Decimal
	Qty   decimal.Decimal
}

// DepthComponent renders the bid/ask depth ladder side by side.
type DepthComponent struct {
	bids   []DepthRow
	asks   []DepthRow
	symbol string
	venue  string

	priceDecimals int
	qtyDecimals   int
}

// NewDepthComponent creates a new depth ladder component.
func NewDepthComponent() *DepthComponent {
	return &DepthComponent{symbol: "dogeusdt", priceDecimals: 4, qtyDecimals: 2}
}

// Update replaces the rendered ladder rows for both sides.
func (d *DepthComponent) Update(bids, asks []DepthRow) {
	d.bids = bids
	d.asks = asks
}

// SetSymbol sets the symbol/venue label shown in the header.
func (d *DepthComponent) SetSymbol(venue, symbol string) {
	d.venue = venue
	d.symbol = symbol
}

// SetPrecision sets the venue's documented price/quantity rounding, per the
// adapter's Precision lookup. Rows are rendered with these many fractional
// digits instead of a fixed guess.
func (d *DepthComponent) SetPrecision(priceDecimals, qtyDecimals int) {
	d.priceDecimals = priceDecimals
	d.qtyDecimals = qtyDecimals
}

// View renders the depth ladder component.
func (d *DepthComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	bidStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	askStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	var result string
	result = headerStyle.Render(fmt.Sprintf("DEPTH (%s / %s)", d.venue, d.symbol))
	result += "\n\n"

	if len(d.bids) == 0 && len(d.asks) == 0 {
		return result + dimStyle.Render("  Waiting for book snapshot...") + "\n"
	}

	result += fmt.Sprintf("  %-16s  %-16s\n", "BID", "ASK")
	result += dimStyle.Render("  " + strings.Repeat("─", 34)) + "\n"

	rows := len(d.bids)
	if len(d.asks) > rows {
		rows = len(d.asks)
	}
	for i := 0; i < rows; i++ {
		left := ""
		if i < len(d.bids) {
			left = bidStyle.Render(fmt.Sprintf("%s @ %s", d.bids[i].Qty.StringFixed(int32(d.qtyDecimals)), d.bids[i].Price.StringFixed(int32(d.priceDecimals))))
		}
		right := ""
		if i < len(d.asks) {
			right = askStyle.Render(fmt.Sprintf("%s @ %s", d.asks[i].Qty.StringFixed(int32(d.qtyDecimals)), d.asks[i].Price.StringFixed(int32(d.priceDecimals))))
		}
		result += fmt.Sprintf("  %-26s  %-26s\n", left, right)
	}

	return result
}
