package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sliceSource []float64

func (s sliceSource) Len() int { return len(s) }

func (s sliceSource) At(i int) (decimal.Decimal, decimal.Decimal) {
	return decimal.NewFromInt(int64(i)), decimal.NewFromFloat(s[i])
}

// S5 — K-means stability: three well-separated clusters should come back
// labeled in ascending order of magnitude, regardless of sampling order.
func TestScenarioS5KMeansStability(t *testing.T) {
	points := sliceSource{1, 1, 1, 10, 10, 10, 100, 100, 100}
	km := New(3, 9, 50)

	labeled := km.Fit(points)

	require.Len(t, labeled, 9)
	for i := 0; i < 3; i++ {
		assert.Equal(t, 0, labeled[i].Label, "point %d (qty=1) should land in the smallest cluster", i)
	}
	for i := 3; i < 6; i++ {
		assert.Equal(t, 1, labeled[i].Label, "point %d (qty=10) should land in the middle cluster", i)
	}
	for i := 6; i < 9; i++ {
		assert.Equal(t, 2, labeled[i].Label, "point %d (qty=100) should land in the largest cluster", i)
	}
}

func TestFitEmptySourceReturnsEmptyLabels(t *testing.T) {
	km := New(3, 9, 50)

	labeled := km.Fit(sliceSource{})

	assert.NotNil(t, labeled)
	assert.Empty(t, labeled)
}

// Boundary: fewer points than k still returns one in-range label per point.
func TestFitFewerPointsThanK(t *testing.T) {
	km := New(5, 9, 10)

	labeled := km.Fit(sliceSource{3, 7})

	require.Len(t, labeled, 2)
	for _, lp := range labeled {
		assert.GreaterOrEqual(t, lp.Label, 0)
		assert.Less(t, lp.Label, 5)
	}
}

// Invariant 5: identical consecutive inputs with carried centroids produce
// identical label assignments.
func TestFitIsIdempotentOnIdenticalConsecutiveInput(t *testing.T) {
	km := New(3, 9, 50)
	points := sliceSource{1, 1, 1, 10, 10, 10, 100, 100, 100}

	first := km.Fit(points)
	second := km.Fit(points)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Label, second[i].Label)
	}
}

// Invariant 5: centroids at ascending labels are non-decreasing in value,
// and every label falls within [0, k).
func TestFitLabelsWithinRangeAndCentroidsOrdered(t *testing.T) {
	km := New(4, 16, 30)
	points := sliceSource{5, 2, 2, 9, 40, 41, 1, 1000}

	labeled := km.Fit(points)

	for _, lp := range labeled {
		assert.GreaterOrEqual(t, lp.Label, 0)
		assert.Less(t, lp.Label, 4)
	}

	maxSeenByLabel := map[int]float64{}
	minSeenByLabel := map[int]float64{}
	for _, lp := range labeled {
		v, _ := lp.Qty.Float64()
		if cur, ok := maxSeenByLabel[lp.Label]; !ok || v > cur {
			maxSeenByLabel[lp.Label] = v
		}
		if cur, ok := minSeenByLabel[lp.Label]; !ok || v < cur {
			minSeenByLabel[lp.Label] = v
		}
	}
	for l := 0; l < 3; l++ {
		hi, hiOK := maxSeenByLabel[l]
		lo, loOK := minSeenByLabel[l+1]
		if hiOK && loOK {
			assert.LessOrEqual(t, hi, lo+1e-6, "label %d points should not exceed label %d points", l, l+1)
		}
	}
}
