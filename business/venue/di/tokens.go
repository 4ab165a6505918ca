// Package di contains dependency injection tokens and accessors for the
// venue context.
package di

import (
	"github.com/fd1az/l3-replicator/internal/di"

	"github.com/fd1az/l3-replicator/business/venue/app"
)

const (
	BinanceFuturesAdapter = "venue.BinanceFuturesAdapter"
	HyperliquidAdapter    = "venue.HyperliquidAdapter"
	VenueService          = "venue.VenueService"
)

// GetBinanceFuturesAdapter resolves the Binance futures venue adapter.
func GetBinanceFuturesAdapter(sr di.ServiceRegistry) app.Adapter {
	return di.MustGet[app.Adapter](sr, BinanceFuturesAdapter)
}

// GetHyperliquidAdapter resolves the Hyperliquid venue adapter.
func GetHyperliquidAdapter(sr di.ServiceRegistry) app.Adapter {
	return di.MustGet[app.Adapter](sr, HyperliquidAdapter)
}

// GetVenueService resolves the cached-precision service over both adapters.
func GetVenueService(sr di.ServiceRegistry) *app.VenueService {
	return di.MustGet[*app.VenueService](sr, VenueService)
}
