// Package app wires the mini-batch k-means domain logic to the replica's
// book sides and exposes a small clustering service to the orchestrator.
package app

import (
	replicadomain "github.com/fd1az/l3-replicator/business/replica/domain"

	"github.com/fd1az/l3-replicator/business/clustering/domain"
)

// sideSource adapts a replica Side's flattened (price, order) traversal to
// the clustering domain's Source interface.
type sideSource struct {
	prices []replicadomain.Price
	qtys   []replicadomain.Qty
}

func newSideSource(side *replicadomain.Side, order replicadomain.Ordering) *sideSource {
	s := &sideSource{}
	for _, level := range side.Levels(order) {
		for _, qty := range level.Orders {
			if qty.IsZero() || qty.IsNegative() {
				continue
			}
			s.prices = append(s.prices, level.Price)
			s.qtys = append(s.qtys, qty)
		}
	}
	return s
}

func (s *sideSource) Len() int { return len(s.prices) }

func (s *sideSource) At(i int) (price, qty replicadomain.Price) {
	return s.prices[i], s.qtys[i]
}

// Clusterer holds one retained MiniBatchKMeans per book side so that bid
// clustering and ask clustering each converge independently across fits.
type Clusterer struct {
	bids *domain.MiniBatchKMeans
	asks *domain.MiniBatchKMeans
}

// New creates a Clusterer with k clusters per side, the given batch size
// and iteration count, matching the configuration shared by both sides.
func New(k, batchSize, maxIter int) *Clusterer {
	return &Clusterer{
		bids: domain.New(k, batchSize, maxIter),
		asks: domain.New(k, batchSize, maxIter),
	}
}

// FitBids clusters the decomposed bid orders, best price first.
func (c *Clusterer) FitBids(side *replicadomain.Side) []domain.LabeledPoint {
	return c.bids.Fit(newSideSource(side, replicadomain.Descending))
}

// FitAsks clusters the decomposed ask orders, best price first.
func (c *Clusterer) FitAsks(side *replicadomain.Side) []domain.LabeledPoint {
	return c.asks.Fit(newSideSource(side, replicadomain.Ascending))
}
