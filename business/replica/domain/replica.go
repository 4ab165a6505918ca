package domain

// BookReplica holds both sides of a venue's order book plus the sequencing
// state needed to reconcile a snapshot with the incremental diff stream that
// follows it. It is not safe for concurrent use; callers serialize snapshot
// and diff delivery onto the same goroutine (see the orchestrator).
type BookReplica struct {
	Bids *Side
	Asks *Side

	// LastAppliedU is the final_update_id of the most recently applied
	// event (snapshot's last_update_id, or a diff's small_u).
	LastAppliedU uint64
	// IsSynced is false from snapshot application until the first diff
	// straddling last_applied_u+1 has been applied.
	IsSynced bool

	hasSnapshot bool
	buffer      []DiffEvent

	// refetch receives a signal whenever a gap is detected. The send is
	// non-blocking: a replica with no one listening (or a full channel)
	// never stalls on gap detection.
	refetch chan<- struct{}
}

// NewBookReplica creates an empty, unsynced replica. refetch may be nil, in
// which case gap detection is silent.
func NewBookReplica(refetch chan<- struct{}) *BookReplica {
	return &BookReplica{
		Bids:    NewSide(),
		Asks:    NewSide(),
		refetch: refetch,
	}
}

// ApplySnapshot atomically replaces both sides with s's levels, resets
// sequencing state to "just synchronized to s, not yet joined the diff
// stream", and replays any diffs buffered while waiting for this snapshot.
func (r *BookReplica) ApplySnapshot(s SnapshotEvent) {
	bids := NewSide()
	for _, row := range s.Bids {
		if row.Qty.IsZero() {
			continue
		}
		bids.Set(&PriceLevel{Price: row.Price, Orders: []Qty{row.Qty}})
	}

	asks := NewSide()
	for _, row := range s.Asks {
		if row.Qty.IsZero() {
			continue
		}
		asks.Set(&PriceLevel{Price: row.Price, Orders: []Qty{row.Qty}})
	}

	r.Bids = bids
	r.Asks = asks
	r.LastAppliedU = s.LastUpdateID
	r.IsSynced = false
	r.hasSnapshot = true

	pending := r.buffer
	r.buffer = nil
	for _, d := range pending {
		r.ProcessDiff(d)
	}
}

// ProcessDiff advances the replica by one diff event, per the reconciliation
// table:
//
//	d.small_u < last_applied_u                               -> discard (stale)
//	not synced, d.capital_u <= last_applied_u+1 <= d.small_u  -> apply, mark synced
//	not synced, otherwise                                     -> initial gap, refetch
//	synced, d.pu >= 0 and d.pu != last_applied_u              -> gap, refetch
//	synced, otherwise                                         -> apply
//
// ProcessDiff reports whether the diff was applied to the book.
//
// The not-yet-synced straddle check compares against last_applied_u+1 rather
// than last_applied_u: the first diff after a snapshot carries small_u equal
// to the snapshot's last_update_id plus one when the stream is contiguous
// (the venue's own convention), so the boundary the replica must straddle is
// last_applied_u+1, not last_applied_u itself.
func (r *BookReplica) ProcessDiff(d DiffEvent) bool {
	if !r.hasSnapshot {
		r.buffer = append(r.buffer, d)
		return false
	}

	if d.FinalUpdateID < r.LastAppliedU {
		return false
	}

	if !r.IsSynced {
		if d.FirstUpdateID <= r.LastAppliedU+1 && r.LastAppliedU+1 <= d.FinalUpdateID {
			r.applyRows(d)
			r.LastAppliedU = d.FinalUpdateID
			r.IsSynced = true
			return true
		}
		r.gap()
		return false
	}

	if d.PreviousFinalUpdateID >= 0 && uint64(d.PreviousFinalUpdateID) != r.LastAppliedU {
		r.gap()
		return false
	}

	r.applyRows(d)
	r.LastAppliedU = d.FinalUpdateID
	return true
}

func (r *BookReplica) applyRows(d DiffEvent) {
	for _, row := range d.Bids {
		applyRow(r.Bids, row)
	}
	for _, row := range d.Asks {
		applyRow(r.Asks, row)
	}
}

func (r *BookReplica) gap() {
	r.buffer = nil
	if r.refetch == nil {
		return
	}
	select {
	case r.refetch <- struct{}{}:
	default:
	}
}
