// Package domain implements a one-dimensional mini-batch k-means clusterer
// over resting-order quantities, used to paint depth-ladder heatmaps without
// the label-permutation flicker naive re-clustering produces on every frame.
package domain

import (
	"math"
	"math/rand"
	"sort"

	"github.com/shopspring/decimal"
)

// LabeledPoint pairs a source price with one of its decomposed order
// quantities and the cluster label assigned to it.
type LabeledPoint struct {
	Price decimal.Decimal
	Qty   decimal.Decimal
	Label int
}

// Source supplies the ordered (price, qty) pairs to cluster: one row per
// individual resting order, in the book's traversal order. It is satisfied
// by a replica Side via a thin adapter in the clustering app layer.
type Source interface {
	Len() int
	At(i int) (price, qty decimal.Decimal)
}

// MiniBatchKMeans clusters resting-order quantities into k buckets labeled
// by ascending centroid magnitude. Centroids persist across Fit calls so
// that near-identical consecutive books produce near-identical labels.
type MiniBatchKMeans struct {
	k         int
	batchSize int
	maxIter   int
	rng       *rand.Rand

	centroids []float64
}

// New creates a clusterer with no carried centroids; the first Fit call
// initializes them deterministically from the input.
func New(k, batchSize, maxIter int) *MiniBatchKMeans {
	return &MiniBatchKMeans{
		k:         k,
		batchSize: batchSize,
		maxIter:   maxIter,
		rng:       rand.New(rand.NewSource(1)),
	}
}

// Fit clusters every point in src and returns one LabeledPoint per input
// row, in the same order src produced them. An empty source returns an
// empty, non-nil slice without touching the carried centroids.
func (m *MiniBatchKMeans) Fit(src Source) []LabeledPoint {
	n := src.Len()
	if n == 0 {
		return []LabeledPoint{}
	}

	prices := make([]decimal.Decimal, n)
	qtys := make([]decimal.Decimal, n)
	points := make([]float64, n)
	for i := 0; i < n; i++ {
		price, qty := src.At(i)
		prices[i] = price
		qtys[i] = qty
		v, _ := qty.Float64()
		points[i] = v
	}

	normalized := normalize(points)

	if len(m.centroids) != m.k {
		m.centroids = m.initializeCentroids(normalized)
	}

	m.iterate(normalized)

	labels := make([]int, n)
	for i, p := range normalized {
		labels[i] = m.closestCentroid(p)
	}
	m.stabilize(labels)

	out := make([]LabeledPoint, n)
	for i := range out {
		out[i] = LabeledPoint{Price: prices[i], Qty: qtys[i], Label: labels[i]}
	}
	return out
}

// normalize min-max rescales points to [0, 1]; a zero range (all points
// identical) leaves the values untouched rather than dividing by zero.
func normalize(points []float64) []float64 {
	if len(points) == 0 {
		return points
	}
	min, max := points[0], points[0]
	for _, p := range points {
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}
	out := make([]float64, len(points))
	rng := max - min
	if rng <= 0 {
		copy(out, points)
		return out
	}
	for i, p := range points {
		out[i] = (p - min) / rng
	}
	return out
}

// initializeCentroids picks k evenly spaced samples from the sorted input,
// padding with the smallest value when there are fewer than k distinct
// positions to sample.
func (m *MiniBatchKMeans) initializeCentroids(points []float64) []float64 {
	sorted := make([]float64, len(points))
	copy(sorted, points)
	sort.Float64s(sorted)

	k := m.k
	if k < 1 {
		k = 1
	}

	denom := k - 1
	if denom < 1 {
		denom = 1
	}
	step := (len(sorted) - 1) / denom

	centroids := make([]float64, 0, m.k)
	for i := 0; i < m.k; i++ {
		idx := i * step
		if idx > len(sorted)-1 {
			idx = len(sorted) - 1
		}
		centroids = append(centroids, sorted[idx])
	}
	for len(centroids) < m.k && len(sorted) > 0 {
		centroids = append(centroids, sorted[0])
	}
	return centroids
}

// iterate runs maxIter mini-batch updates: each round samples batchSize
// indices uniformly with replacement, accumulates a per-centroid batch
// mean, and nudges each touched centroid toward it with learning rate 1/c.
func (m *MiniBatchKMeans) iterate(points []float64) {
	batch := m.batchSize
	if batch > len(points) {
		batch = len(points)
	}
	if batch == 0 {
		return
	}

	sums := make([]float64, m.k)
	counts := make([]int, m.k)

	for iter := 0; iter < m.maxIter; iter++ {
		for i := range sums {
			sums[i] = 0
			counts[i] = 0
		}

		for i := 0; i < batch; i++ {
			idx := m.rng.Intn(len(points))
			p := points[idx]
			c := m.closestCentroid(p)
			sums[c] += p
			counts[c]++
		}

		for i := 0; i < m.k; i++ {
			if counts[i] == 0 {
				continue
			}
			lr := 1.0 / float64(counts[i])
			batchMean := sums[i] / float64(counts[i])
			m.centroids[i] = (1-lr)*m.centroids[i] + lr*batchMean
		}
	}
}

func (m *MiniBatchKMeans) closestCentroid(p float64) int {
	best := 0
	bestDist := math.Inf(1)
	for i, c := range m.centroids {
		dist := math.Abs(p - c)
		if dist < bestDist {
			bestDist = dist
			best = i
		}
	}
	return best
}

// stabilize remaps labels so the cluster with the smallest centroid value
// becomes label 0, the next smallest becomes 1, and so on; ties are broken
// by original centroid index so the remap is deterministic.
func (m *MiniBatchKMeans) stabilize(labels []int) {
	order := make([]int, m.k)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return m.centroids[order[i]] < m.centroids[order[j]]
	})

	remap := make([]int, m.k)
	for newLabel, oldLabel := range order {
		remap[oldLabel] = newLabel
	}

	for i, l := range labels {
		labels[i] = remap[l]
	}
}
