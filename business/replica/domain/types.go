// Package domain holds the order book replica's core value types and the
// snapshot/diff reconciliation state machine.
package domain

import (
	"github.com/shopspring/decimal"
)

// Price and Qty are exact fixed-point decimals. Equality is bit-exact
// (decimal.Decimal.Equal, not float comparison); ordering is total.
type Price = decimal.Decimal
type Qty = decimal.Decimal

// Zero is the sentinel quantity meaning "level removed" on a diff row.
var Zero = decimal.Zero

// PriceLevel pairs a price with the ordered sequence of inferred individual
// resting order quantities at that price, oldest first. The aggregate
// quantity at the level is the sum of the sequence.
type PriceLevel struct {
	Price  Price
	Orders []Qty
}

// Aggregate returns the sum of the level's decomposed order quantities.
func (l *PriceLevel) Aggregate() Qty {
	sum := decimal.Zero
	for _, q := range l.Orders {
		sum = sum.Add(q)
	}
	return sum
}

// SnapshotEvent is a full L2 book at one instant.
type SnapshotEvent struct {
	LastUpdateID uint64
	Bids         []PriceQty
	Asks         []PriceQty
}

// PriceQty is a single (price, aggregate quantity) row, as carried on the
// wire by both snapshots and diffs.
type PriceQty struct {
	Price Price
	Qty   Qty
}

// DiffEvent is an incremental change to an L2 book. A row with Qty == 0
// means "remove this price"; Qty > 0 means "the new aggregate quantity at
// this price is Qty".
type DiffEvent struct {
	EventTime             int64
	TransactionTime       int64
	Symbol                string
	FirstUpdateID         uint64 // capital_u
	FinalUpdateID         uint64 // small_u
	PreviousFinalUpdateID int64  // pu; negative means "not applicable" (no contiguity check)
	Bids                  []PriceQty
	Asks                  []PriceQty
}
