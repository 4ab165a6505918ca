package domain

import (
	"github.com/google/btree"
)

// Side is an ordered mapping from price to PriceLevel, backed by a B-tree
// for O(log n) insert/delete/lookup and cheap ordered traversal. Levels are
// always stored in ascending price order internally; bids are walked with
// Descending (best bid first) and asks with Ascending (best ask first).
type Side struct {
	tree *btree.BTreeG[*PriceLevel]
}

func levelLess(a, b *PriceLevel) bool {
	return a.Price.LessThan(b.Price)
}

// NewSide creates an empty Side.
func NewSide() *Side {
	return &Side{tree: btree.NewG(32, levelLess)}
}

// Get returns the level at price, if present.
func (s *Side) Get(price Price) (*PriceLevel, bool) {
	return s.tree.Get(&PriceLevel{Price: price})
}

// Set inserts or replaces the level at its price.
func (s *Side) Set(level *PriceLevel) {
	s.tree.ReplaceOrInsert(level)
}

// Delete removes the level at price, if present.
func (s *Side) Delete(price Price) {
	s.tree.Delete(&PriceLevel{Price: price})
}

// Len returns the number of present price levels.
func (s *Side) Len() int {
	return s.tree.Len()
}

// Ordering selects a traversal direction: Ascending walks lowest price
// first, Descending walks highest price first.
type Ordering int

const (
	Ascending Ordering = iota
	Descending
)

// Walk visits every level in the given order until fn returns false.
func (s *Side) Walk(order Ordering, fn func(level *PriceLevel) bool) {
	if order == Ascending {
		s.tree.Ascend(func(l *PriceLevel) bool { return fn(l) })
	} else {
		s.tree.Descend(func(l *PriceLevel) bool { return fn(l) })
	}
}

// Best returns the single best level under order (lowest for Ascending,
// highest for Descending), or false if the side is empty.
func (s *Side) Best(order Ordering) (*PriceLevel, bool) {
	var best *PriceLevel
	s.Walk(order, func(l *PriceLevel) bool {
		best = l
		return false
	})
	return best, best != nil
}

// Levels returns every level in the given order. Used for clustering
// input and for test assertions; not on any ingestion hot path.
func (s *Side) Levels(order Ordering) []*PriceLevel {
	out := make([]*PriceLevel, 0, s.tree.Len())
	s.Walk(order, func(l *PriceLevel) bool {
		out = append(out, l)
		return true
	})
	return out
}
