// Package binancefutures implements the venue.Adapter port against
// Binance's USDⓈ-M futures market: a diff-only depth WebSocket stream paired
// with a REST snapshot and exchange-metadata endpoint.
package binancefutures

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"

	replicadomain "github.com/fd1az/l3-replicator/business/replica/domain"
	venuedomain "github.com/fd1az/l3-replicator/business/venue/domain"

	"github.com/fd1az/l3-replicator/internal/apperror"
	"github.com/fd1az/l3-replicator/internal/cache"
	"github.com/fd1az/l3-replicator/internal/circuitbreaker"
	"github.com/fd1az/l3-replicator/internal/httpclient"
	"github.com/fd1az/l3-replicator/internal/logger"
	"github.com/fd1az/l3-replicator/internal/ratelimit"
	"github.com/fd1az/l3-replicator/internal/wsconn"

	venueapp "github.com/fd1az/l3-replicator/business/venue/app"
)

// precisionCacheTTL matches the original's "fetch once per session" policy:
// long enough to outlive a session, short enough to pick up a rare exchange
// filter change without a restart.
const precisionCacheTTL = 30 * time.Minute

const tracerName = "venue.binancefutures"

// defaultPrecision is returned whenever exchange metadata cannot be fetched.
var defaultPrecision = venuedomain.Precision{PriceDecimals: 2, QtyDecimals: 2}

var _ venueapp.Adapter = (*Adapter)(nil)

// Config holds the two Binance futures hosts; both default to the
// production hosts named in the venue's wire surface.
type Config struct {
	WSHost         string
	RESTHost       string
	SnapshotDepth  int
	RequestTimeout time.Duration
	RequestsPerMin int
}

// DefaultConfig returns the production Binance futures hosts.
func DefaultConfig() Config {
	return Config{
		WSHost:         "fstream.binance.com",
		RESTHost:       "fapi.binance.com",
		SnapshotDepth:  1000,
		RequestTimeout: 10 * time.Second,
		RequestsPerMin: 1200,
	}
}

// Adapter implements venueapp.Adapter for Binance USDⓈ-M futures.
type Adapter struct {
	cfg       Config
	logger    logger.LoggerInterface
	http      httpclient.Client
	tracer    trace.Tracer
	limiter   *ratelimit.Limiter
	breaker   *circuitbreaker.CircuitBreaker[replicadomain.SnapshotEvent]
	precision *cache.Cache[string, venuedomain.Precision]
}

// New creates a Binance futures adapter.
func New(cfg Config, log logger.LoggerInterface) (*Adapter, error) {
	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("binance_futures"),
		httpclient.WithBaseURL("https://"+cfg.RESTHost),
		httpclient.WithRequestTimeout(cfg.RequestTimeout),
		httpclient.WithTraceOptions(otel.Tracer(tracerName), httpclient.TraceRequest, httpclient.TraceResponse),
		httpclient.WithHeaders(map[string]string{"Accept": "application/json"}),
	)
	if err != nil {
		return nil, fmt.Errorf("create binance futures http client: %w", err)
	}

	breakerCfg := circuitbreaker.DefaultConfig("binance_futures.snapshot")
	breakerCfg.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Warn(context.Background(), "binance futures snapshot breaker state change", "breaker", name, "from", from.String(), "to", to.String())
	}

	return &Adapter{
		cfg:       cfg,
		logger:    log,
		http:      client,
		tracer:    otel.Tracer(tracerName),
		limiter:   ratelimit.New(cfg.RequestsPerMin),
		breaker:   circuitbreaker.New[replicadomain.SnapshotEvent](breakerCfg),
		precision: cache.New[string, venuedomain.Precision](precisionCacheTTL),
	}, nil
}

func (a *Adapter) Type() venuedomain.Type { return venuedomain.BinanceFutures }

// FormatSymbol lowercases for stream URLs; callers needing the REST/exchange
// form use strings.ToUpper directly, since the two call sites need opposite
// case and neither is reused elsewhere.
func (a *Adapter) FormatSymbol(userSymbol string) string {
	return strings.ToLower(userSymbol)
}

type exchangeInfoResponse struct {
	Symbols []struct {
		Symbol  string `json:"symbol"`
		Filters []struct {
			FilterType string `json:"filterType"`
			TickSize   string `json:"tickSize"`
			StepSize   string `json:"stepSize"`
		} `json:"filters"`
	} `json:"symbols"`
}

// Precision fetches exchangeInfo and derives decimal places from
// PRICE_FILTER.tickSize and LOT_SIZE.stepSize; on any failure it returns the
// documented default (2, 2) rather than an error.
func (a *Adapter) Precision(ctx context.Context, symbol string) (venuedomain.Precision, error) {
	if cached, ok := a.precision.Get(ctx, symbol); ok {
		return cached, nil
	}

	ctx, span := a.tracer.Start(ctx, "binancefutures.precision")
	defer span.End()

	var result exchangeInfoResponse
	resp, err := a.http.NewRequest().SetResult(&result).Get(ctx, "/fapi/v1/exchangeInfo")
	if err != nil || resp.IsError() {
		a.logger.Warn(ctx, "exchangeInfo fetch failed, using default precision", "symbol", symbol, "error", err)
		return defaultPrecision, nil
	}

	want := strings.ToUpper(symbol)
	for _, s := range result.Symbols {
		if s.Symbol != want {
			continue
		}
		prec := defaultPrecision
		for _, f := range s.Filters {
			switch f.FilterType {
			case "PRICE_FILTER":
				if d, ok := decimalsFromStep(f.TickSize); ok {
					prec.PriceDecimals = d
				}
			case "LOT_SIZE":
				if d, ok := decimalsFromStep(f.StepSize); ok {
					prec.QtyDecimals = d
				}
			}
		}
		a.precision.Set(ctx, symbol, prec, 0)
		return prec, nil
	}

	a.logger.Warn(ctx, "symbol not found in exchangeInfo, using default precision", "symbol", symbol)
	return defaultPrecision, nil
}

// decimalsFromStep computes ceil(-log10(step)) for a tick/step size string
// such as "0.00010000", clamped to zero for steps >= 1.
func decimalsFromStep(step string) (int, bool) {
	v, err := strconv.ParseFloat(step, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	d := int(math.Ceil(-math.Log10(v)))
	if d < 0 {
		d = 0
	}
	return d, true
}

type depthSnapshotResponse struct {
	LastUpdateID uint64     `json:"lastUpdateId"`
	Bids         [][]string `json:"bids"`
	Asks         [][]string `json:"asks"`
}

// Snapshot fetches a one-shot depth book via REST.
func (a *Adapter) Snapshot(ctx context.Context, symbol string) (replicadomain.SnapshotEvent, error) {
	ctx, span := a.tracer.Start(ctx, "binancefutures.snapshot")
	defer span.End()

	if err := a.limiter.Wait(ctx); err != nil {
		return replicadomain.SnapshotEvent{}, apperror.New(apperror.CodeVenueRateLimited, apperror.WithCause(err))
	}

	return a.breaker.Execute(func() (replicadomain.SnapshotEvent, error) {
		return a.fetchSnapshot(ctx, symbol)
	})
}

func (a *Adapter) fetchSnapshot(ctx context.Context, symbol string) (replicadomain.SnapshotEvent, error) {
	var result depthSnapshotResponse
	resp, err := a.http.NewRequest().
		SetQueryParam("symbol", strings.ToUpper(symbol)).
		SetQueryParam("limit", strconv.Itoa(a.cfg.SnapshotDepth)).
		SetResult(&result).
		Get(ctx, "/fapi/v1/depth")
	if err != nil {
		return replicadomain.SnapshotEvent{}, apperror.New(apperror.CodeSnapshotFetchFailed,
			apperror.WithCause(err), apperror.WithContext("symbol="+symbol))
	}
	if resp.IsError() {
		return replicadomain.SnapshotEvent{}, apperror.New(apperror.CodeSnapshotFetchFailed,
			apperror.WithContext(fmt.Sprintf("HTTP %d fetching depth for %s", resp.StatusCode, symbol)))
	}

	bids, err := parseRows(result.Bids)
	if err != nil {
		return replicadomain.SnapshotEvent{}, apperror.New(apperror.CodeParseError, apperror.WithCause(err))
	}
	asks, err := parseRows(result.Asks)
	if err != nil {
		return replicadomain.SnapshotEvent{}, apperror.New(apperror.CodeParseError, apperror.WithCause(err))
	}

	return replicadomain.SnapshotEvent{
		LastUpdateID: result.LastUpdateID,
		Bids:         bids,
		Asks:         asks,
	}, nil
}

type depthDiffMessage struct {
	EventType       string     `json:"e"`
	EventTime       int64      `json:"E"`
	TransactionTime int64      `json:"T"`
	Symbol          string     `json:"s"`
	FirstUpdateID   uint64     `json:"U"`
	FinalUpdateID   uint64     `json:"u"`
	PrevFinalID     int64      `json:"pu"`
	Bids            [][]string `json:"b"`
	Asks            [][]string `json:"a"`
}

// Stream connects to the raw <symbol>@depth@0ms stream and pushes one Diff
// event per message until ctx is cancelled; a dropped socket is reconnected
// by wsconn rather than ending the stream. Binance
// futures never pushes snapshots over the stream; the orchestrator is
// expected to call Snapshot separately and feed it in first.
func (a *Adapter) Stream(ctx context.Context, symbol string, events chan<- venuedomain.Event) error {
	wsURL := fmt.Sprintf("wss://%s/ws/%s@depth@0ms", a.cfg.WSHost, a.FormatSymbol(symbol))

	wsCfg := wsconn.DefaultConfig(wsURL, "binance_futures")
	conn, err := wsconn.New(wsCfg)
	if err != nil {
		return apperror.New(apperror.CodeTransportError, apperror.WithCause(err))
	}

	conn.OnMessage(func(msgCtx context.Context, data []byte) {
		var msg depthDiffMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			a.logger.Debug(msgCtx, "binance futures: dropping unparseable message", "error", err)
			return
		}
		if msg.EventType != "depthUpdate" {
			return
		}

		bids, err := parseRows(msg.Bids)
		if err != nil {
			a.logger.Debug(msgCtx, "binance futures: dropping diff with bad bid rows", "error", err)
			return
		}
		asks, err := parseRows(msg.Asks)
		if err != nil {
			a.logger.Debug(msgCtx, "binance futures: dropping diff with bad ask rows", "error", err)
			return
		}

		diff := replicadomain.DiffEvent{
			EventTime:             msg.EventTime,
			TransactionTime:       msg.TransactionTime,
			Symbol:                msg.Symbol,
			FirstUpdateID:         msg.FirstUpdateID,
			FinalUpdateID:         msg.FinalUpdateID,
			PreviousFinalUpdateID: msg.PrevFinalID,
			Bids:                  bids,
			Asks:                  asks,
		}

		select {
		case events <- venuedomain.Event{Diff: &diff}:
		case <-ctx.Done():
		}
	})

	if err := conn.ConnectWithRetry(ctx); err != nil {
		return apperror.New(apperror.CodeTransportError, apperror.WithCause(err))
	}
	defer conn.Close()

	<-ctx.Done()
	return nil
}

func parseDecimalField(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

func parseRows(rows [][]string) ([]replicadomain.PriceQty, error) {
	out := make([]replicadomain.PriceQty, 0, len(rows))
	for _, row := range rows {
		if len(row) != 2 {
			return nil, fmt.Errorf("expected [price, qty] pair, got %d fields", len(row))
		}
		price, err := parseDecimalField(row[0])
		if err != nil {
			return nil, err
		}
		qty, err := parseDecimalField(row[1])
		if err != nil {
			return nil, err
		}
		out = append(out, replicadomain.PriceQty{Price: price, Qty: qty})
	}
	return out, nil
}
