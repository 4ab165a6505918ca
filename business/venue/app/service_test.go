package app

import (
	"context"
	"errors"
	"testing"

	replicadomain "github.com/fd1az/l3-replicator/business/replica/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/l3-replicator/business/venue/domain"
)

// countingAdapter is a stub Adapter that counts Precision calls so tests can
// assert on cache hits vs. misses.
type countingAdapter struct {
	typ            domain.Type
	precisionCalls int
	precision      domain.Precision
	precisionErr   error
}

func (a *countingAdapter) Type() domain.Type            { return a.typ }
func (a *countingAdapter) FormatSymbol(s string) string { return s }

func (a *countingAdapter) Precision(ctx context.Context, symbol string) (domain.Precision, error) {
	a.precisionCalls++
	if a.precisionErr != nil {
		return domain.Precision{}, a.precisionErr
	}
	return a.precision, nil
}

func (a *countingAdapter) Snapshot(ctx context.Context, symbol string) (replicadomain.SnapshotEvent, error) {
	return replicadomain.SnapshotEvent{}, nil
}

func (a *countingAdapter) Stream(ctx context.Context, symbol string, events chan<- domain.Event) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestVenueServicePrecisionCachesAcrossCalls(t *testing.T) {
	adapter := &countingAdapter{
		typ:       domain.BinanceFutures,
		precision: domain.Precision{PriceDecimals: 2, QtyDecimals: 3},
	}
	svc := NewVenueService(map[domain.Type]Adapter{domain.BinanceFutures: adapter})

	p1, err := svc.Precision(context.Background(), domain.BinanceFutures, "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, domain.Precision{PriceDecimals: 2, QtyDecimals: 3}, p1)

	p2, err := svc.Precision(context.Background(), domain.BinanceFutures, "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, p1, p2)

	assert.Equal(t, 1, adapter.precisionCalls, "second lookup should be served from cache")
}

func TestVenueServicePrecisionCachesPerSymbol(t *testing.T) {
	adapter := &countingAdapter{
		typ:       domain.BinanceFutures,
		precision: domain.Precision{PriceDecimals: 2, QtyDecimals: 3},
	}
	svc := NewVenueService(map[domain.Type]Adapter{domain.BinanceFutures: adapter})

	_, err := svc.Precision(context.Background(), domain.BinanceFutures, "BTCUSDT")
	require.NoError(t, err)
	_, err = svc.Precision(context.Background(), domain.BinanceFutures, "ETHUSDT")
	require.NoError(t, err)

	assert.Equal(t, 2, adapter.precisionCalls, "distinct symbols must not share a cache entry")
}

func TestVenueServiceInvalidateForcesRefetch(t *testing.T) {
	adapter := &countingAdapter{
		typ:       domain.BinanceFutures,
		precision: domain.Precision{PriceDecimals: 2, QtyDecimals: 3},
	}
	svc := NewVenueService(map[domain.Type]Adapter{domain.BinanceFutures: adapter})

	_, err := svc.Precision(context.Background(), domain.BinanceFutures, "BTCUSDT")
	require.NoError(t, err)
	require.Equal(t, 1, adapter.precisionCalls)

	svc.Invalidate(domain.BinanceFutures, "BTCUSDT")

	_, err = svc.Precision(context.Background(), domain.BinanceFutures, "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, 2, adapter.precisionCalls, "invalidate must force a re-fetch on the next lookup")
}

func TestVenueServicePrecisionUnknownVenue(t *testing.T) {
	svc := NewVenueService(map[domain.Type]Adapter{})

	_, err := svc.Precision(context.Background(), domain.Hyperliquid, "BTCUSDT")
	require.Error(t, err)
}

func TestVenueServicePrecisionAdapterErrorNotCached(t *testing.T) {
	adapter := &countingAdapter{
		typ:          domain.BinanceFutures,
		precisionErr: errors.New("exchange info unavailable"),
	}
	svc := NewVenueService(map[domain.Type]Adapter{domain.BinanceFutures: adapter})

	_, err := svc.Precision(context.Background(), domain.BinanceFutures, "BTCUSDT")
	require.Error(t, err)

	_, err = svc.Precision(context.Background(), domain.BinanceFutures, "BTCUSDT")
	require.Error(t, err)
	assert.Equal(t, 2, adapter.precisionCalls, "a failed lookup must not be cached")
}
