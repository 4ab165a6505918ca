// Package orchestrator wires the ingestion worker: it resolves both venue
// adapters and registers the singleton Orchestrator. The composition root
// attaches a Reporter and starts the Run loop itself, after Startup
// returns, so the reporter is wired before the first session connects.
package orchestrator

import (
	"context"

	"github.com/fd1az/l3-replicator/internal/config"
	"github.com/fd1az/l3-replicator/internal/di"
	"github.com/fd1az/l3-replicator/internal/logger"
	"github.com/fd1az/l3-replicator/internal/monolith"

	"github.com/fd1az/l3-replicator/business/orchestrator/app"
	orchestratordi "github.com/fd1az/l3-replicator/business/orchestrator/di"
	venueapp "github.com/fd1az/l3-replicator/business/venue/app"
	venuedi "github.com/fd1az/l3-replicator/business/venue/di"
	venuedomain "github.com/fd1az/l3-replicator/business/venue/domain"
)

// Module implements the orchestrator bounded context.
type Module struct{}

func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, orchestratordi.Orchestrator, func(sr di.ServiceRegistry) *app.Orchestrator {
		cfg := di.MustGet[*config.Config](sr, "config")
		log := di.MustGet[logger.LoggerInterface](sr, "logger")

		adapters := map[venuedomain.Type]venueapp.Adapter{
			venuedomain.BinanceFutures: venuedi.GetBinanceFuturesAdapter(sr),
			venuedomain.Hyperliquid:    venuedi.GetHyperliquidAdapter(sr),
		}

		defaultVenue := venuedomain.Type(cfg.Venue.Default)
		if _, ok := adapters[defaultVenue]; !ok {
			defaultVenue = venuedomain.BinanceFutures
		}

		venueSvc := venuedi.GetVenueService(sr)

		return app.New(adapters, venueSvc, defaultVenue, cfg.Venue.DefaultSymbol, log)
	})
	return nil
}

// Startup resolves the orchestrator so later failures surface early; the
// composition root starts the Run loop once a Reporter is attached.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	_ = orchestratordi.GetOrchestrator(mono.Services())
	mono.Logger().Info(ctx, "orchestrator module started")
	return nil
}
