// Package app implements the orchestrator: the single ingestion worker that
// drives a venue adapter, feeds its events through the book replica and
// clusterer, and surfaces a unified event stream to the consumer.
package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	replicadomain "github.com/fd1az/l3-replicator/business/replica/domain"
	venueapp "github.com/fd1az/l3-replicator/business/venue/app"
	venuedomain "github.com/fd1az/l3-replicator/business/venue/domain"

	"github.com/fd1az/l3-replicator/internal/logger"
)

const (
	tracerName      = "github.com/fd1az/l3-replicator/business/orchestrator/app"
	streamRetryWait = 5 * time.Second
	eventBufferSize = 1000
)

// Command is a control message sent on the orchestrator's single-slot
// control channel. Any command tears down the current session and opens a
// new one.
type Command interface{ isCommand() }

// RefetchCommand requests a fresh snapshot on the current venue/symbol,
// discarding any in-flight diff buffer.
type RefetchCommand struct{}

// ChangeSymbolCommand switches the ingested symbol.
type ChangeSymbolCommand struct{ Symbol string }

// ChangeVenueCommand switches the active venue adapter.
type ChangeVenueCommand struct{ Venue venuedomain.Type }

func (RefetchCommand) isCommand()      {}
func (ChangeSymbolCommand) isCommand() {}
func (ChangeVenueCommand) isCommand()  {}

// Event is what the orchestrator surfaces to the consumer: the same
// envelope the venue adapter produces, after being applied to the replica.
type Event = venuedomain.Event

// Orchestrator owns the ingestion worker. It is driven entirely from Run;
// callers interact with it only through SendCommand and the Events channel.
type Orchestrator struct {
	adapters map[venuedomain.Type]venueapp.Adapter
	venueSvc *venueapp.VenueService
	logger   logger.LoggerInterface
	tracer   trace.Tracer

	symbol     string
	venue      venuedomain.Type
	replica    *replicadomain.BookReplica
	refetchSig chan struct{}
	events     chan Event
	control    chan Command
	reporter   Reporter

	attempt   uint64
	sessionID string
}

// New creates an Orchestrator starting on defaultVenue/defaultSymbol. adapters
// must contain an entry for every venuedomain.Type the orchestrator may be
// switched to. venueSvc supplies the cached precision lookup reported to the
// consumer at the start of every session.
func New(adapters map[venuedomain.Type]venueapp.Adapter, venueSvc *venueapp.VenueService, defaultVenue venuedomain.Type, defaultSymbol string, log logger.LoggerInterface) *Orchestrator {
	refetch := make(chan struct{}, 1)
	return &Orchestrator{
		adapters:   adapters,
		venueSvc:   venueSvc,
		logger:     log,
		tracer:     otel.Tracer(tracerName),
		symbol:     defaultSymbol,
		venue:      defaultVenue,
		replica:    replicadomain.NewBookReplica(refetch),
		refetchSig: refetch,
		events:     make(chan Event, eventBufferSize),
		control:    make(chan Command, 1),
	}
}

// SetReporter attaches a Reporter that receives connection/gap lifecycle
// notifications. Must be called before Run; nil disables reporting.
func (o *Orchestrator) SetReporter(r Reporter) { o.reporter = r }

// Events returns the consumer-facing event stream.
func (o *Orchestrator) Events() <-chan Event { return o.events }

// Replica exposes the current book replica for the clusterer and UI. Safe
// to read between events; not safe to mutate.
func (o *Orchestrator) Replica() *replicadomain.BookReplica { return o.replica }

// SessionID returns the identifier of the current ingestion-task generation.
// It is set as an attribute on the session span and logged with the
// missing-adapter and gap-detected lines; other log lines do not carry it.
// Changes on every reconnect, symbol change, and venue change.
func (o *Orchestrator) SessionID() string { return o.sessionID }

// Attempt returns the monotonic count of sessions started so far.
func (o *Orchestrator) Attempt() uint64 { return o.attempt }

// SendCommand enqueues a control command on the single-slot control
// channel, non-blocking: a full channel drops the command, since the next
// gap or user action will re-issue it.
func (o *Orchestrator) SendCommand(cmd Command) {
	select {
	case o.control <- cmd:
	default:
	}
}

// Run drives ingestion until ctx is cancelled. Each iteration of the outer
// loop is one "session": a snapshot fetch plus a stream connection against
// the current venue/symbol, torn down by a control command or a parent
// cancellation.
func (o *Orchestrator) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		o.runSession(ctx)
	}
}

func (o *Orchestrator) runSession(ctx context.Context) {
	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	o.attempt++
	o.sessionID = uuid.NewString()
	sessionCtx, span := o.tracer.Start(sessionCtx, "orchestrator.session", trace.WithAttributes(
		attribute.String("session_id", o.sessionID),
		attribute.Int64("attempt", int64(o.attempt)),
		attribute.String("venue", string(o.venue)),
		attribute.String("symbol", o.symbol),
	))
	defer span.End()

	adapter, ok := o.adapters[o.venue]
	if !ok {
		o.logger.Error(sessionCtx, "orchestrator: no adapter registered for venue", "venue", string(o.venue), "session_id", o.sessionID)
		<-ctx.Done()
		return
	}

	o.replica = replicadomain.NewBookReplica(o.refetchSig)
	o.reportPrecision(sessionCtx, adapter)
	o.fetchInitialSnapshot(sessionCtx, adapter)
	o.reportConnected(true)
	defer o.reportConnected(false)

	streamDone := make(chan error, 1)
	rawEvents := make(chan venuedomain.Event, eventBufferSize)

	go func() {
		streamDone <- adapter.Stream(sessionCtx, o.symbol, rawEvents)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case cmd := <-o.control:
			o.applyCommand(cmd)
			return

		case <-o.refetchSig:
			o.logger.Warn(sessionCtx, "orchestrator: gap detected, refetching snapshot", "venue", string(o.venue), "symbol", o.symbol, "session_id", o.sessionID)
			o.reportGap("sequence gap")
			o.fetchInitialSnapshot(sessionCtx, adapter)

		case ev, open := <-rawEvents:
			if !open {
				continue
			}
			o.applyEvent(sessionCtx, ev)
			select {
			case o.events <- ev:
			case <-ctx.Done():
				return
			}

		case err := <-streamDone:
			if err != nil {
				o.logger.Warn(sessionCtx, "orchestrator: stream closed, retrying", "venue", string(o.venue), "error", err)
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(streamRetryWait):
				return
			case cmd := <-o.control:
				o.applyCommand(cmd)
				return
			}
		}
	}
}

func (o *Orchestrator) fetchInitialSnapshot(ctx context.Context, adapter venueapp.Adapter) {
	ctx, span := o.tracer.Start(ctx, "orchestrator.snapshot", trace.WithAttributes(attribute.String("symbol", o.symbol)))
	defer span.End()

	snap, err := adapter.Snapshot(ctx, o.symbol)
	if err != nil {
		o.logger.Warn(ctx, "orchestrator: snapshot fetch failed, diffs will buffer", "symbol", o.symbol, "error", err)
		return
	}
	o.replica.ApplySnapshot(snap)

	select {
	case o.events <- Event{Snapshot: &snap}:
	case <-ctx.Done():
	}
}

func (o *Orchestrator) applyEvent(ctx context.Context, ev venuedomain.Event) {
	switch {
	case ev.Snapshot != nil:
		o.replica.ApplySnapshot(*ev.Snapshot)
	case ev.Diff != nil:
		o.replica.ProcessDiff(*ev.Diff)
	}
}

func (o *Orchestrator) applyCommand(cmd Command) {
	switch c := cmd.(type) {
	case RefetchCommand:
		// Handled by the next session's initial snapshot fetch.
	case ChangeSymbolCommand:
		if o.venueSvc != nil {
			o.venueSvc.Invalidate(o.venue, o.symbol)
		}
		o.symbol = c.Symbol
	case ChangeVenueCommand:
		if o.venueSvc != nil {
			o.venueSvc.Invalidate(o.venue, o.symbol)
		}
		o.venue = c.Venue
	}
}

// reportPrecision fetches the cached venue precision for the current
// session's symbol and forwards it to the Reporter. A lookup failure is
// logged and otherwise ignored: the adapter's own Precision already falls
// back to a documented default, so this never blocks a session.
func (o *Orchestrator) reportPrecision(ctx context.Context, adapter venueapp.Adapter) {
	if o.reporter == nil {
		return
	}
	var (
		precision venuedomain.Precision
		err       error
	)
	if o.venueSvc != nil {
		precision, err = o.venueSvc.Precision(ctx, o.venue, o.symbol)
	} else {
		precision, err = adapter.Precision(ctx, o.symbol)
	}
	if err != nil {
		o.logger.Warn(ctx, "orchestrator: precision lookup failed", "venue", string(o.venue), "symbol", o.symbol, "error", err)
		return
	}
	o.reporter.UpdatePrecision(string(o.venue), o.symbol, precision)
}

func (o *Orchestrator) reportConnected(connected bool) {
	if o.reporter == nil {
		return
	}
	o.reporter.UpdateConnectionStatus(string(o.venue), o.symbol, connected)
}

func (o *Orchestrator) reportGap(reason string) {
	if o.reporter == nil {
		return
	}
	o.reporter.UpdateGap(string(o.venue), o.symbol, reason)
}
