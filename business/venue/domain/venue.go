// Package domain holds the small set of types shared by every venue
// adapter: the venue type tag and the event envelope the orchestrator
// consumes.
package domain

import (
	replicadomain "github.com/fd1az/l3-replicator/business/replica/domain"
)

// Type identifies which venue an adapter talks to. The orchestrator uses it
// to route ChangeVenue control commands without a type switch on concrete
// adapter types.
type Type string

const (
	BinanceFutures Type = "binance_futures"
	Hyperliquid    Type = "hyperliquid"
)

// Precision is the number of fractional digits a venue expects prices and
// quantities to be displayed/rounded to.
type Precision struct {
	PriceDecimals int
	QtyDecimals   int
}

// Event is the envelope the adapter's stream emits: exactly one of
// Snapshot or Diff is set.
type Event struct {
	Snapshot *replicadomain.SnapshotEvent
	Diff     *replicadomain.DiffEvent
}
