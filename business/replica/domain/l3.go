package domain

// applyRow applies a single (price, new_agg_qty) diff row to side, performing
// the L3 decomposition heuristic described by the replica engine's invariant:
// each atomic aggregate-quantity change is assigned to exactly one inferred
// individual order using the smallest consistent hypothesis — exact
// cancellation if a matching size exists, otherwise partial execution of the
// largest resting order, otherwise a new arrival.
func applyRow(side *Side, row PriceQty) {
	if row.Qty.IsZero() {
		side.Delete(row.Price)
		return
	}

	level, present := side.Get(row.Price)
	if !present {
		side.Set(&PriceLevel{Price: row.Price, Orders: []Qty{row.Qty}})
		return
	}

	old := level.Aggregate()
	switch {
	case old.Equal(row.Qty):
		// Redundant branch in the source heuristic; explicit no-op.
		return
	case old.GreaterThan(row.Qty):
		shrink(level, old.Sub(row.Qty))
	default:
		grow(level, row.Qty.Sub(old))
	}
}

// shrink removes delta quantity from level's order sequence: remove the
// rightmost element that exactly equals delta (a fully filled/cancelled
// order), or failing that, partially consume the largest resting order.
func shrink(level *PriceLevel, delta Qty) {
	if idx, ok := rightmostEqual(level.Orders, delta); ok {
		level.Orders = append(level.Orders[:idx], level.Orders[idx+1:]...)
		return
	}

	maxIdx := largestIndex(level.Orders)
	largest := level.Orders[maxIdx]
	level.Orders = append(level.Orders[:maxIdx], level.Orders[maxIdx+1:]...)
	level.Orders = append(level.Orders, largest.Sub(delta))
}

// grow appends a newly inferred order of size delta.
func grow(level *PriceLevel, delta Qty) {
	level.Orders = append(level.Orders, delta)
}

// rightmostEqual returns the index of the last element of orders equal to
// target, matching the source's rposition-equivalent removal policy.
func rightmostEqual(orders []Qty, target Qty) (int, bool) {
	for i := len(orders) - 1; i >= 0; i-- {
		if orders[i].Equal(target) {
			return i, true
		}
	}
	return 0, false
}

// largestIndex returns the index of the first occurrence of the maximum
// element in orders.
func largestIndex(orders []Qty) int {
	maxIdx := 0
	for i := 1; i < len(orders); i++ {
		if orders[i].GreaterThan(orders[maxIdx]) {
			maxIdx = i
		}
	}
	return maxIdx
}
