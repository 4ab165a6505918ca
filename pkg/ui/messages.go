// Package ui provides the Bubble Tea TUI for the L3 replicator.
package ui

import (
	"time"

	"github.com/fd1az/l3-replicator/pkg/ui/components"
)

// Message types for TUI updates.

// DepthUpdateMsg carries the replicated book's current ladder; it is sent on
// every report tick, whether or not the book changed.
type DepthUpdateMsg struct {
	Venue  string
	Symbol string
	Bids   []components.DepthRow
	Asks   []components.DepthRow
}

// ClusterUpdateMsg is sent after a mini-batch K-means refit on one side.
type ClusterUpdateMsg struct {
	Side    string // "bids" or "asks"
	Buckets []components.ClusterBucket
}

// PrecisionMsg carries the venue's documented price/quantity rounding for
// the active session's symbol, so the depth ladder renders at the venue's
// own precision instead of a fixed guess.
type PrecisionMsg struct {
	PriceDecimals int
	QtyDecimals   int
}

// GapMsg is sent when the orchestrator detects a sequencing gap and
// triggers a snapshot refetch.
type GapMsg struct {
	Venue  string
	Symbol string
	Reason string
}

// ConnectionStatusMsg is sent when a venue connection transitions.
type ConnectionStatusMsg struct {
	Venue     string
	Symbol    string
	Connected bool
}

// BlockMsg is sent when a new settlement-layer block head is observed.
// Informational only; the replicator does not act on it.
type BlockMsg struct {
	Number    uint64
	Timestamp time.Time
}

// GasPriceMsg carries the latest gas price sample from the blockchain
// telemetry subsystem, shown in the status panel.
type GasPriceMsg struct {
	GweiPrice float64
}

// ErrorMsg is sent when an error occurs.
type ErrorMsg struct {
	Error error
}

// TickMsg is sent periodically for UI updates.
type TickMsg struct{}

// WelcomeCompleteMsg signals the welcome screen is done (timeout or keypress).
type WelcomeCompleteMsg struct{}

// StartModulesMsg signals that modules should start loading.
type StartModulesMsg struct{}

// LogMsg is sent to display a log message in the UI.
type LogMsg struct {
	Level   string // "info", "warn", "error"
	Message string
}

// StartupMsg is sent during application startup to show progress.
type StartupMsg struct {
	Step    string // Current step name
	Status  string // "connecting", "connected", "failed"
	Message string // Optional message
}
