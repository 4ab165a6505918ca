package app

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	replicadomain "github.com/fd1az/l3-replicator/business/replica/domain"
	venueapp "github.com/fd1az/l3-replicator/business/venue/app"
	venuedomain "github.com/fd1az/l3-replicator/business/venue/domain"

	"github.com/fd1az/l3-replicator/internal/logger"
)

const testTimeout = 2 * time.Second

// fakeAdapter is a minimal venueapp.Adapter that reports every Snapshot/
// Stream call on a channel so tests can observe session teardown/restart.
type fakeAdapter struct {
	typ           venuedomain.Type
	snapshotCalls chan string
	streamCalls   chan string
}

func newFakeAdapter(typ venuedomain.Type) *fakeAdapter {
	return &fakeAdapter{
		typ:           typ,
		snapshotCalls: make(chan string, 16),
		streamCalls:   make(chan string, 16),
	}
}

func (f *fakeAdapter) Type() venuedomain.Type       { return f.typ }
func (f *fakeAdapter) FormatSymbol(s string) string { return s }
func (f *fakeAdapter) Precision(ctx context.Context, symbol string) (venuedomain.Precision, error) {
	return venuedomain.Precision{PriceDecimals: 2, QtyDecimals: 3}, nil
}

func (f *fakeAdapter) Snapshot(ctx context.Context, symbol string) (replicadomain.SnapshotEvent, error) {
	f.snapshotCalls <- symbol
	return replicadomain.SnapshotEvent{LastUpdateID: 1}, nil
}

func (f *fakeAdapter) Stream(ctx context.Context, symbol string, events chan<- venuedomain.Event) error {
	f.streamCalls <- symbol
	<-ctx.Done()
	return ctx.Err()
}

func requireRecv(t *testing.T, ch <-chan string, want string) {
	t.Helper()
	select {
	case got := <-ch:
		require.Equal(t, want, got)
	case <-time.After(testTimeout):
		t.Fatalf("timed out waiting for value %q", want)
	}
}

func TestSendCommandRefetchStartsNewSession(t *testing.T) {
	adapter := newFakeAdapter(venuedomain.BinanceFutures)
	adapters := map[venuedomain.Type]venueapp.Adapter{venuedomain.BinanceFutures: adapter}
	log := logger.New(io.Discard, logger.LevelError, "test", nil)

	orch := New(adapters, nil, venuedomain.BinanceFutures, "BTCUSDT", log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go orch.Run(ctx)

	requireRecv(t, adapter.snapshotCalls, "BTCUSDT")
	requireRecv(t, adapter.streamCalls, "BTCUSDT")
	require.Equal(t, uint64(1), orch.Attempt())

	orch.SendCommand(RefetchCommand{})

	requireRecv(t, adapter.snapshotCalls, "BTCUSDT")
	requireRecv(t, adapter.streamCalls, "BTCUSDT")
	require.Equal(t, uint64(2), orch.Attempt())
}

func TestSendCommandChangeSymbolSwitchesSession(t *testing.T) {
	adapter := newFakeAdapter(venuedomain.BinanceFutures)
	adapters := map[venuedomain.Type]venueapp.Adapter{venuedomain.BinanceFutures: adapter}
	log := logger.New(io.Discard, logger.LevelError, "test", nil)

	orch := New(adapters, nil, venuedomain.BinanceFutures, "BTCUSDT", log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go orch.Run(ctx)

	requireRecv(t, adapter.snapshotCalls, "BTCUSDT")
	requireRecv(t, adapter.streamCalls, "BTCUSDT")

	orch.SendCommand(ChangeSymbolCommand{Symbol: "ETHUSDT"})

	requireRecv(t, adapter.snapshotCalls, "ETHUSDT")
	requireRecv(t, adapter.streamCalls, "ETHUSDT")
}

func TestSendCommandChangeVenueSwitchesAdapter(t *testing.T) {
	binance := newFakeAdapter(venuedomain.BinanceFutures)
	hyperliquid := newFakeAdapter(venuedomain.Hyperliquid)
	adapters := map[venuedomain.Type]venueapp.Adapter{
		venuedomain.BinanceFutures: binance,
		venuedomain.Hyperliquid:    hyperliquid,
	}
	log := logger.New(io.Discard, logger.LevelError, "test", nil)

	orch := New(adapters, nil, venuedomain.BinanceFutures, "BTCUSDT", log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go orch.Run(ctx)

	requireRecv(t, binance.snapshotCalls, "BTCUSDT")
	requireRecv(t, binance.streamCalls, "BTCUSDT")

	orch.SendCommand(ChangeVenueCommand{Venue: venuedomain.Hyperliquid})

	requireRecv(t, hyperliquid.snapshotCalls, "BTCUSDT")
	requireRecv(t, hyperliquid.streamCalls, "BTCUSDT")
}

func TestSendCommandIsNonBlockingWhenControlFull(t *testing.T) {
	adapter := newFakeAdapter(venuedomain.BinanceFutures)
	adapters := map[venuedomain.Type]venueapp.Adapter{venuedomain.BinanceFutures: adapter}
	log := logger.New(io.Discard, logger.LevelError, "test", nil)

	orch := New(adapters, nil, venuedomain.BinanceFutures, "BTCUSDT", log)

	done := make(chan struct{})
	go func() {
		orch.SendCommand(RefetchCommand{})
		orch.SendCommand(RefetchCommand{})
		orch.SendCommand(RefetchCommand{})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(testTimeout):
		t.Fatal("SendCommand blocked despite the single-slot channel contract")
	}
}
