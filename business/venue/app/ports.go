// Package app defines the venue adapter port the orchestrator depends on.
package app

import (
	"context"

	replicadomain "github.com/fd1az/l3-replicator/business/replica/domain"

	"github.com/fd1az/l3-replicator/business/venue/domain"
)

// Adapter is the contract every venue implementation satisfies. FormatSymbol
// is pure; the rest may block on network I/O.
type Adapter interface {
	// Type identifies the venue for control-command routing.
	Type() domain.Type

	// FormatSymbol canonicalizes a user-supplied symbol (case, separators)
	// into the venue's own representation.
	FormatSymbol(userSymbol string) string

	// Precision returns the venue's documented price/quantity precision
	// for symbol, fetching venue metadata if needed. On failure it returns
	// the venue's documented default rather than an error.
	Precision(ctx context.Context, symbol string) (domain.Precision, error)

	// Snapshot fetches the current L2 book for symbol in one shot.
	Snapshot(ctx context.Context, symbol string) (replicadomain.SnapshotEvent, error)

	// Stream connects and pushes Snapshot/Diff events onto events until ctx
	// is cancelled. It returns nil on cancellation and an error when the
	// initial connection or subscription fails. A dropped socket does not
	// end the stream (the WebSocket layer reconnects in place), and
	// messages that fail to parse are dropped without ending it.
	Stream(ctx context.Context, symbol string, events chan<- domain.Event) error
}
