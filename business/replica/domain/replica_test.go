package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func pq(price, qty string) PriceQty {
	return PriceQty{Price: d(price), Qty: d(qty)}
}

func levelQtys(t *testing.T, side *Side, price string) []string {
	t.Helper()
	lvl, ok := side.Get(d(price))
	if !ok {
		return nil
	}
	out := make([]string, len(lvl.Orders))
	for i, q := range lvl.Orders {
		out[i] = q.String()
	}
	return out
}

// S1 — Basic snapshot + diff.
func TestScenarioS1BasicSnapshotAndDiff(t *testing.T) {
	r := NewBookReplica(nil)
	r.ApplySnapshot(SnapshotEvent{
		LastUpdateID: 10,
		Bids:         []PriceQty{pq("100", "5")},
		Asks:         []PriceQty{pq("101", "3")},
	})

	applied := r.ProcessDiff(DiffEvent{
		FirstUpdateID:         11,
		FinalUpdateID:         11,
		PreviousFinalUpdateID: 10,
		Bids:                  []PriceQty{pq("100", "7")},
	})

	require.True(t, applied)
	assert.Equal(t, []string{"5", "2"}, levelQtys(t, r.Bids, "100"))
	assert.Equal(t, []string{"3"}, levelQtys(t, r.Asks, "101"))
	assert.Equal(t, uint64(11), r.LastAppliedU)
	assert.True(t, r.IsSynced)
}

// S2 — Exact cancellation: the element equal to delta is removed, not the
// larger resting order.
func TestScenarioS2ExactCancellation(t *testing.T) {
	r := NewBookReplica(nil)
	r.ApplySnapshot(SnapshotEvent{LastUpdateID: 10, Bids: []PriceQty{pq("100", "5")}})
	r.ProcessDiff(DiffEvent{FirstUpdateID: 11, FinalUpdateID: 11, PreviousFinalUpdateID: 10, Bids: []PriceQty{pq("100", "7")}})

	applied := r.ProcessDiff(DiffEvent{
		FirstUpdateID:         12,
		FinalUpdateID:         12,
		PreviousFinalUpdateID: 11,
		Bids:                  []PriceQty{pq("100", "5")},
	})

	require.True(t, applied)
	assert.Equal(t, []string{"5"}, levelQtys(t, r.Bids, "100"))
}

// S3 — Partial fill of the largest resting order when no element matches
// delta exactly.
func TestScenarioS3PartialFillOfLargest(t *testing.T) {
	r := NewBookReplica(nil)
	r.ApplySnapshot(SnapshotEvent{LastUpdateID: 10, Bids: []PriceQty{pq("100", "5")}})
	r.ProcessDiff(DiffEvent{FirstUpdateID: 11, FinalUpdateID: 11, PreviousFinalUpdateID: 10, Bids: []PriceQty{pq("100", "7")}})

	applied := r.ProcessDiff(DiffEvent{
		FirstUpdateID:         12,
		FinalUpdateID:         12,
		PreviousFinalUpdateID: 11,
		Bids:                  []PriceQty{pq("100", "6")},
	})

	require.True(t, applied)
	assert.Equal(t, []string{"2", "4"}, levelQtys(t, r.Bids, "100"))
}

// S4 — Initial gap: the first diff neither straddles nor is stale against
// the snapshot boundary, so a refetch is requested and the replica stays
// unsynced at the snapshot's sequence number.
func TestScenarioS4InitialGap(t *testing.T) {
	refetch := make(chan struct{}, 1)
	r := NewBookReplica(refetch)
	r.ApplySnapshot(SnapshotEvent{LastUpdateID: 10})

	applied := r.ProcessDiff(DiffEvent{FirstUpdateID: 20, FinalUpdateID: 25, PreviousFinalUpdateID: 19})

	assert.False(t, applied)
	assert.Equal(t, uint64(10), r.LastAppliedU)
	assert.False(t, r.IsSynced)
	select {
	case <-refetch:
	default:
		t.Fatal("expected a refetch signal")
	}
}

// S6 — Buffer replay: diffs that arrive before the first snapshot are
// buffered and replayed, in arrival order, once the snapshot lands.
func TestScenarioS6BufferReplay(t *testing.T) {
	r := NewBookReplica(nil)

	assert.False(t, r.ProcessDiff(DiffEvent{FirstUpdateID: 11, FinalUpdateID: 11, PreviousFinalUpdateID: 10, Bids: []PriceQty{pq("100", "7")}}))
	assert.False(t, r.ProcessDiff(DiffEvent{FirstUpdateID: 12, FinalUpdateID: 12, PreviousFinalUpdateID: 11, Bids: []PriceQty{pq("100", "5")}}))
	assert.Equal(t, 0, r.Bids.Len())

	r.ApplySnapshot(SnapshotEvent{LastUpdateID: 10, Bids: []PriceQty{pq("100", "5")}})

	assert.Equal(t, []string{"5"}, levelQtys(t, r.Bids, "100"))
	assert.Equal(t, uint64(12), r.LastAppliedU)
	assert.True(t, r.IsSynced)
}

func TestProcessDiffDiscardsStaleEvent(t *testing.T) {
	r := NewBookReplica(nil)
	r.ApplySnapshot(SnapshotEvent{LastUpdateID: 20, Bids: []PriceQty{pq("100", "5")}})
	r.ProcessDiff(DiffEvent{FirstUpdateID: 21, FinalUpdateID: 21, PreviousFinalUpdateID: 20, Bids: []PriceQty{pq("100", "7")}})

	applied := r.ProcessDiff(DiffEvent{FirstUpdateID: 15, FinalUpdateID: 18, PreviousFinalUpdateID: 14, Bids: []PriceQty{pq("100", "99")}})

	assert.False(t, applied)
	assert.Equal(t, []string{"5", "2"}, levelQtys(t, r.Bids, "100"))
}

func TestProcessDiffSyncedGapRequestsRefetchAndClearsBuffer(t *testing.T) {
	refetch := make(chan struct{}, 1)
	r := NewBookReplica(refetch)
	r.ApplySnapshot(SnapshotEvent{LastUpdateID: 10, Bids: []PriceQty{pq("100", "5")}})
	r.ProcessDiff(DiffEvent{FirstUpdateID: 11, FinalUpdateID: 11, PreviousFinalUpdateID: 10, Bids: []PriceQty{pq("100", "7")}})

	applied := r.ProcessDiff(DiffEvent{FirstUpdateID: 13, FinalUpdateID: 13, PreviousFinalUpdateID: 12, Bids: []PriceQty{pq("100", "1")}})

	assert.False(t, applied)
	assert.Empty(t, r.buffer)
	assert.True(t, r.IsSynced)
	assert.Equal(t, uint64(11), r.LastAppliedU)
	select {
	case <-refetch:
	default:
		t.Fatal("expected a refetch signal on pu mismatch")
	}
}

func TestProcessDiffNegativePuSkipsContiguityCheck(t *testing.T) {
	r := NewBookReplica(nil)
	r.ApplySnapshot(SnapshotEvent{LastUpdateID: 10, Bids: []PriceQty{pq("100", "5")}})
	r.ProcessDiff(DiffEvent{FirstUpdateID: 11, FinalUpdateID: 11, PreviousFinalUpdateID: 10, Bids: []PriceQty{pq("100", "7")}})

	applied := r.ProcessDiff(DiffEvent{FirstUpdateID: 99, FinalUpdateID: 99, PreviousFinalUpdateID: -1, Bids: []PriceQty{pq("100", "1")}})

	assert.True(t, applied)
	assert.Equal(t, uint64(99), r.LastAppliedU)
}

// Invariant 4: zero aggregate quantity removes the price entirely.
func TestZeroQtyRemovesPrice(t *testing.T) {
	r := NewBookReplica(nil)
	r.ApplySnapshot(SnapshotEvent{LastUpdateID: 10, Bids: []PriceQty{pq("100", "5")}})

	r.ProcessDiff(DiffEvent{FirstUpdateID: 11, FinalUpdateID: 11, PreviousFinalUpdateID: 10, Bids: []PriceQty{pq("100", "0")}})

	_, present := r.Bids.Get(d("100"))
	assert.False(t, present)
}

// Boundary: a diff with no rows at all is a no-op beyond bookkeeping.
func TestEmptyDiffIsNoOp(t *testing.T) {
	r := NewBookReplica(nil)
	r.ApplySnapshot(SnapshotEvent{LastUpdateID: 10, Bids: []PriceQty{pq("100", "5")}})

	applied := r.ProcessDiff(DiffEvent{FirstUpdateID: 11, FinalUpdateID: 11, PreviousFinalUpdateID: 10})

	assert.True(t, applied)
	assert.Equal(t, []string{"5"}, levelQtys(t, r.Bids, "100"))
}

// Boundary: every row zeroing out a present price empties the book.
func TestAllZeroRowsEmptiesBook(t *testing.T) {
	r := NewBookReplica(nil)
	r.ApplySnapshot(SnapshotEvent{
		LastUpdateID: 10,
		Bids:         []PriceQty{pq("100", "5"), pq("99", "2")},
	})

	r.ProcessDiff(DiffEvent{
		FirstUpdateID:         11,
		FinalUpdateID:         11,
		PreviousFinalUpdateID: 10,
		Bids:                  []PriceQty{pq("100", "0"), pq("99", "0")},
	})

	assert.Equal(t, 0, r.Bids.Len())
}

// Invariant 2: last_applied_u strictly increases on every applied diff.
func TestLastAppliedUStrictlyIncreasesOnApply(t *testing.T) {
	r := NewBookReplica(nil)
	r.ApplySnapshot(SnapshotEvent{LastUpdateID: 10})
	before := r.LastAppliedU

	applied := r.ProcessDiff(DiffEvent{FirstUpdateID: 11, FinalUpdateID: 11, PreviousFinalUpdateID: 10})

	require.True(t, applied)
	assert.Greater(t, r.LastAppliedU, before)
}

// Round-trip: constructing a replica from a snapshot's rows directly
// produces the same book as applying that snapshot to an empty replica.
func TestApplySnapshotRoundTrip(t *testing.T) {
	snap := SnapshotEvent{
		LastUpdateID: 5,
		Bids:         []PriceQty{pq("100", "5"), pq("99", "3")},
		Asks:         []PriceQty{pq("101", "2")},
	}

	r := NewBookReplica(nil)
	r.ApplySnapshot(snap)

	want := NewSide()
	for _, row := range snap.Bids {
		want.Set(&PriceLevel{Price: row.Price, Orders: []Qty{row.Qty}})
	}

	assert.Equal(t, want.Levels(Ascending), r.Bids.Levels(Ascending))
}
