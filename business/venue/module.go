// Package venue wires both venue adapters into the DI container. Neither
// adapter connects at Startup: the orchestrator owns connection lifecycle
// so it can tear down and reconnect on control commands.
package venue

import (
	"context"

	"github.com/fd1az/l3-replicator/internal/config"
	"github.com/fd1az/l3-replicator/internal/di"
	"github.com/fd1az/l3-replicator/internal/logger"
	"github.com/fd1az/l3-replicator/internal/monolith"

	venueapp "github.com/fd1az/l3-replicator/business/venue/app"
	venuedi "github.com/fd1az/l3-replicator/business/venue/di"
	venuedomain "github.com/fd1az/l3-replicator/business/venue/domain"
	"github.com/fd1az/l3-replicator/business/venue/infra/binancefutures"
	"github.com/fd1az/l3-replicator/business/venue/infra/hyperliquid"
)

// Module implements the venue bounded context.
type Module struct{}

func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, venuedi.BinanceFuturesAdapter, func(sr di.ServiceRegistry) venueapp.Adapter {
		cfg := di.MustGet[*config.Config](sr, "config")
		log := di.MustGet[logger.LoggerInterface](sr, "logger")

		adapterCfg := binancefutures.DefaultConfig()
		if cfg.Venue.BinanceWSHost != "" {
			adapterCfg.WSHost = cfg.Venue.BinanceWSHost
		}
		if cfg.Venue.BinanceRESTHost != "" {
			adapterCfg.RESTHost = cfg.Venue.BinanceRESTHost
		}
		if cfg.Venue.SnapshotDepth > 0 {
			adapterCfg.SnapshotDepth = cfg.Venue.SnapshotDepth
		}
		if cfg.Venue.RequestsPerMin > 0 {
			adapterCfg.RequestsPerMin = cfg.Venue.RequestsPerMin
		}

		adapter, err := binancefutures.New(adapterCfg, log)
		if err != nil {
			panic("failed to create binance futures adapter: " + err.Error())
		}
		return adapter
	})

	di.RegisterToken(c, venuedi.HyperliquidAdapter, func(sr di.ServiceRegistry) venueapp.Adapter {
		cfg := di.MustGet[*config.Config](sr, "config")
		log := di.MustGet[logger.LoggerInterface](sr, "logger")

		adapterCfg := hyperliquid.DefaultConfig()
		if cfg.Venue.HyperliquidHost != "" {
			adapterCfg.Host = cfg.Venue.HyperliquidHost
		}
		if cfg.Venue.RequestsPerMin > 0 {
			adapterCfg.RequestsPerMin = cfg.Venue.RequestsPerMin
		}

		adapter, err := hyperliquid.New(adapterCfg, log)
		if err != nil {
			panic("failed to create hyperliquid adapter: " + err.Error())
		}
		return adapter
	})

	di.RegisterToken(c, venuedi.VenueService, func(sr di.ServiceRegistry) *venueapp.VenueService {
		adapters := map[venuedomain.Type]venueapp.Adapter{
			venuedomain.BinanceFutures: venuedi.GetBinanceFuturesAdapter(sr),
			venuedomain.Hyperliquid:    venuedi.GetHyperliquidAdapter(sr),
		}
		return venueapp.NewVenueService(adapters)
	})

	return nil
}

func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	mono.Logger().Info(ctx, "venue module started")
	return nil
}
