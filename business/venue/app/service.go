package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/fd1az/l3-replicator/internal/apperror"

	"github.com/fd1az/l3-replicator/business/venue/domain"
)

// VenueService wraps the set of venue adapters with a precision cache keyed
// by (venue, symbol). The Binance adapter already caches its own
// exchangeInfo-derived precision internally (the Hyperliquid adapter
// returns a fixed default), but that per-adapter cache has no notion of "the orchestrator is no longer on this
// symbol" — it is scoped to the adapter's own lifetime, not a session.
// VenueService adds that second, session-scoped layer: Invalidate drops an
// entry whenever the orchestrator leaves a (venue, symbol) pair, so a stale
// precision value is never served past a ChangeSymbol/ChangeVenue.
type VenueService struct {
	adapters map[domain.Type]Adapter

	mu    sync.Mutex
	cache map[precisionKey]domain.Precision
}

type precisionKey struct {
	venue  domain.Type
	symbol string
}

// NewVenueService creates a VenueService over the given per-venue adapters.
func NewVenueService(adapters map[domain.Type]Adapter) *VenueService {
	return &VenueService{
		adapters: adapters,
		cache:    make(map[precisionKey]domain.Precision),
	}
}

// Precision returns the cached precision for (venue, symbol), fetching and
// caching it through the venue's adapter on a miss.
func (s *VenueService) Precision(ctx context.Context, venue domain.Type, symbol string) (domain.Precision, error) {
	key := precisionKey{venue: venue, symbol: symbol}

	s.mu.Lock()
	p, ok := s.cache[key]
	s.mu.Unlock()
	if ok {
		return p, nil
	}

	adapter, ok := s.adapters[venue]
	if !ok {
		return domain.Precision{}, apperror.NotFound(apperror.CodeUnknownVenue, fmt.Sprintf("venue %q", venue))
	}

	p, err := adapter.Precision(ctx, symbol)
	if err != nil {
		return domain.Precision{}, err
	}

	s.mu.Lock()
	s.cache[key] = p
	s.mu.Unlock()
	return p, nil
}

// Invalidate drops any cached precision for (venue, symbol), forcing the
// next Precision call to re-fetch through the adapter. Called whenever the
// orchestrator applies a ChangeSymbol or ChangeVenue command.
func (s *VenueService) Invalidate(venue domain.Type, symbol string) {
	s.mu.Lock()
	delete(s.cache, precisionKey{venue: venue, symbol: symbol})
	s.mu.Unlock()
}
