// Package hyperliquid implements the venue.Adapter port against
// Hyperliquid's perpetuals venue: a single WebSocket endpoint that
// broadcasts the full L2 book on every update, with no native diff
// semantics. The adapter synthesizes snapshot/diff framing locally.
package hyperliquid

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"

	replicadomain "github.com/fd1az/l3-replicator/business/replica/domain"
	venuedomain "github.com/fd1az/l3-replicator/business/venue/domain"

	"github.com/fd1az/l3-replicator/internal/apperror"
	"github.com/fd1az/l3-replicator/internal/circuitbreaker"
	"github.com/fd1az/l3-replicator/internal/httpclient"
	"github.com/fd1az/l3-replicator/internal/logger"
	"github.com/fd1az/l3-replicator/internal/ratelimit"
	"github.com/fd1az/l3-replicator/internal/wsconn"

	venueapp "github.com/fd1az/l3-replicator/business/venue/app"
)

const tracerName = "venue.hyperliquid"

// defaultPrecision applies absent per-asset metadata, per the venue's wire
// surface documentation.
var defaultPrecision = venuedomain.Precision{PriceDecimals: 4, QtyDecimals: 4}

var _ venueapp.Adapter = (*Adapter)(nil)

// Config holds the Hyperliquid host; WS and REST share it.
type Config struct {
	Host           string
	RequestTimeout time.Duration
	RequestsPerMin int
}

// DefaultConfig returns the production Hyperliquid host.
func DefaultConfig() Config {
	return Config{Host: "api.hyperliquid.xyz", RequestTimeout: 10 * time.Second, RequestsPerMin: 1200}
}

// Adapter implements venueapp.Adapter for Hyperliquid.
type Adapter struct {
	cfg     Config
	logger  logger.LoggerInterface
	http    httpclient.Client
	tracer  trace.Tracer
	limiter *ratelimit.Limiter
	breaker *circuitbreaker.CircuitBreaker[replicadomain.SnapshotEvent]
}

// New creates a Hyperliquid adapter.
func New(cfg Config, log logger.LoggerInterface) (*Adapter, error) {
	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("hyperliquid"),
		httpclient.WithBaseURL("https://"+cfg.Host),
		httpclient.WithRequestTimeout(cfg.RequestTimeout),
		httpclient.WithTraceOptions(otel.Tracer(tracerName), httpclient.TraceRequest, httpclient.TraceResponse),
		httpclient.WithHeaders(map[string]string{"Content-Type": "application/json"}),
	)
	if err != nil {
		return nil, fmt.Errorf("create hyperliquid http client: %w", err)
	}

	breakerCfg := circuitbreaker.DefaultConfig("hyperliquid.snapshot")
	breakerCfg.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Warn(context.Background(), "hyperliquid snapshot breaker state change", "breaker", name, "from", from.String(), "to", to.String())
	}

	return &Adapter{
		cfg:     cfg,
		logger:  log,
		http:    client,
		tracer:  otel.Tracer(tracerName),
		limiter: ratelimit.New(cfg.RequestsPerMin),
		breaker: circuitbreaker.New[replicadomain.SnapshotEvent](breakerCfg),
	}, nil
}

func (a *Adapter) Type() venuedomain.Type { return venuedomain.Hyperliquid }

func (a *Adapter) FormatSymbol(userSymbol string) string {
	return strings.ToUpper(userSymbol)
}

// Precision has no per-asset metadata lookup on this venue; it always
// returns the documented default.
func (a *Adapter) Precision(ctx context.Context, symbol string) (venuedomain.Precision, error) {
	return defaultPrecision, nil
}

type l2BookLevel struct {
	Px string `json:"px"`
	Sz string `json:"sz"`
	N  int    `json:"n"`
}

type l2BookPayload struct {
	Coin   string          `json:"coin"`
	Levels [][]l2BookLevel `json:"levels"`
	Time   int64           `json:"time"`
}

func (p *l2BookPayload) toRows() (bids, asks []replicadomain.PriceQty, err error) {
	if len(p.Levels) < 2 {
		return nil, nil, fmt.Errorf("expected 2 level groups (bids, asks), got %d", len(p.Levels))
	}
	bids, err = levelsToRows(p.Levels[0])
	if err != nil {
		return nil, nil, err
	}
	asks, err = levelsToRows(p.Levels[1])
	if err != nil {
		return nil, nil, err
	}
	return bids, asks, nil
}

func levelsToRows(levels []l2BookLevel) ([]replicadomain.PriceQty, error) {
	out := make([]replicadomain.PriceQty, 0, len(levels))
	for _, l := range levels {
		price, err := decimal.NewFromString(l.Px)
		if err != nil {
			return nil, err
		}
		qty, err := decimal.NewFromString(l.Sz)
		if err != nil {
			return nil, err
		}
		out = append(out, replicadomain.PriceQty{Price: price, Qty: qty})
	}
	return out, nil
}

type infoRequest struct {
	Type string `json:"type"`
	Coin string `json:"coin"`
}

// Snapshot issues the one-shot POST /info book request.
func (a *Adapter) Snapshot(ctx context.Context, symbol string) (replicadomain.SnapshotEvent, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return replicadomain.SnapshotEvent{}, apperror.New(apperror.CodeVenueRateLimited, apperror.WithCause(err))
	}
	return a.breaker.Execute(func() (replicadomain.SnapshotEvent, error) {
		return a.fetchSnapshot(ctx, symbol)
	})
}

func (a *Adapter) fetchSnapshot(ctx context.Context, symbol string) (replicadomain.SnapshotEvent, error) {
	ctx, span := a.tracer.Start(ctx, "hyperliquid.snapshot")
	defer span.End()

	var payload l2BookPayload
	resp, err := a.http.NewRequest().
		SetBody(infoRequest{Type: "l2Book", Coin: a.FormatSymbol(symbol)}).
		SetResult(&payload).
		Post(ctx, "/info")
	if err != nil {
		span.RecordError(err)
		return replicadomain.SnapshotEvent{}, apperror.New(apperror.CodeSnapshotFetchFailed, apperror.WithCause(err))
	}
	if resp.IsError() {
		return replicadomain.SnapshotEvent{}, apperror.New(apperror.CodeSnapshotFetchFailed,
			apperror.WithContext(fmt.Sprintf("HTTP %d fetching l2Book for %s", resp.StatusCode, symbol)))
	}

	bids, asks, err := payload.toRows()
	if err != nil {
		return replicadomain.SnapshotEvent{}, apperror.New(apperror.CodeParseError, apperror.WithCause(err))
	}

	return replicadomain.SnapshotEvent{
		LastUpdateID: uint64(payload.Time),
		Bids:         bids,
		Asks:         asks,
	}, nil
}

type subscribeMessage struct {
	Method       string       `json:"method"`
	Subscription subscription `json:"subscription"`
}

type subscription struct {
	Type string `json:"type"`
	Coin string `json:"coin"`
}

type wsBookMessage struct {
	Channel string        `json:"channel"`
	Data    l2BookPayload `json:"data"`
}

// Stream subscribes to the l2Book channel and synthesizes Snapshot/Diff
// framing: the first book received is emitted as a Snapshot, every
// subsequent book as a Diff with capital_u = small_u = time and
// pu = time - 1, so the replica's contiguity check is always satisfied on
// this venue.
func (a *Adapter) Stream(ctx context.Context, symbol string, events chan<- venuedomain.Event) error {
	wsURL := fmt.Sprintf("wss://%s/ws", a.cfg.Host)

	wsCfg := wsconn.DefaultConfig(wsURL, "hyperliquid")
	conn, err := wsconn.New(wsCfg)
	if err != nil {
		return apperror.New(apperror.CodeTransportError, apperror.WithCause(err))
	}

	coin := a.FormatSymbol(symbol)
	first := true

	conn.OnMessage(func(msgCtx context.Context, data []byte) {
		var msg wsBookMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			a.logger.Debug(msgCtx, "hyperliquid: dropping unparseable message", "error", err)
			return
		}
		if msg.Channel != "l2Book" {
			return
		}

		bids, asks, err := msg.Data.toRows()
		if err != nil {
			a.logger.Debug(msgCtx, "hyperliquid: dropping malformed book", "error", err)
			return
		}

		var evt venuedomain.Event
		if first {
			first = false
			evt = venuedomain.Event{Snapshot: &replicadomain.SnapshotEvent{
				LastUpdateID: uint64(msg.Data.Time),
				Bids:         bids,
				Asks:         asks,
			}}
		} else {
			evt = venuedomain.Event{Diff: &replicadomain.DiffEvent{
				EventTime:             msg.Data.Time,
				TransactionTime:       msg.Data.Time,
				Symbol:                msg.Data.Coin,
				FirstUpdateID:         uint64(msg.Data.Time),
				FinalUpdateID:         uint64(msg.Data.Time),
				PreviousFinalUpdateID: msg.Data.Time - 1,
				Bids:                  bids,
				Asks:                  asks,
			}}
		}

		select {
		case events <- evt:
		case <-ctx.Done():
		}
	})

	if err := conn.ConnectWithRetry(ctx); err != nil {
		return apperror.New(apperror.CodeTransportError, apperror.WithCause(err))
	}
	defer conn.Close()

	if err := conn.SendJSON(ctx, subscribeMessage{
		Method:       "subscribe",
		Subscription: subscription{Type: "l2Book", Coin: coin},
	}); err != nil {
		return apperror.New(apperror.CodeTransportError, apperror.WithCause(err))
	}

	<-ctx.Done()
	return nil
}
