// Package blockchain implements the blockchain bounded context: an optional
// settlement-telemetry feed (new-block timing, gas price) surfaced alongside
// the order-book replica. It has no bearing on replica or clustering
// correctness and is skipped entirely when no RPC endpoint is configured.
package blockchain

import (
	"context"
	"time"

	"github.com/fd1az/l3-replicator/internal/config"
	"github.com/fd1az/l3-replicator/internal/di"
	"github.com/fd1az/l3-replicator/internal/logger"
	"github.com/fd1az/l3-replicator/internal/monolith"

	"github.com/fd1az/l3-replicator/business/blockchain/app"
	blockchaindi "github.com/fd1az/l3-replicator/business/blockchain/di"
	"github.com/fd1az/l3-replicator/business/blockchain/infra/ethereum"
	"github.com/fd1az/l3-replicator/pkg/ui"
)

const gasPricePollInterval = 15 * time.Second

// Module implements the blockchain bounded context.
type Module struct{}

func (m *Module) RegisterServices(c di.Container) error {
	cfg := di.MustGet[*config.Config](c, "config")
	if !cfg.Blockchain.Enabled() {
		return nil
	}

	di.RegisterToken(c, blockchaindi.BlockSubscriber, func(sr di.ServiceRegistry) *ethereum.Subscriber {
		cfg := di.MustGet[*config.Config](sr, "config")
		log := di.MustGet[logger.LoggerInterface](sr, "logger")
		subCfg := ethereum.DefaultSubscriberConfig(cfg.Blockchain.WebSocketURL, cfg.Blockchain.HTTPURL)
		subCfg.PollInterval = cfg.Blockchain.PollInterval
		subCfg.ReconnectDelay = cfg.Blockchain.ReconnectDelay
		sub, err := ethereum.NewSubscriber(subCfg, log)
		if err != nil {
			panic(err)
		}
		return sub
	})

	di.RegisterToken(c, blockchaindi.GasOracle, func(sr di.ServiceRegistry) *ethereum.GasOracle {
		cfg := di.MustGet[*config.Config](sr, "config")
		log := di.MustGet[logger.LoggerInterface](sr, "logger")
		rpcURL := cfg.Blockchain.HTTPURL
		if rpcURL == "" {
			rpcURL = cfg.Blockchain.WebSocketURL
		}
		oracle, err := ethereum.NewGasOracle(ethereum.DefaultGasOracleConfig(rpcURL), log)
		if err != nil {
			panic(err)
		}
		if err := oracle.Connect(context.Background()); err != nil {
			log.Warn(context.Background(), "gas oracle connect failed, price polling will error until retried", "error", err)
		}
		return oracle
	})

	di.RegisterToken(c, blockchaindi.BlockchainService, func(sr di.ServiceRegistry) *app.BlockchainService {
		sub := di.MustGet[*ethereum.Subscriber](sr, blockchaindi.BlockSubscriber)
		oracle := di.MustGet[*ethereum.GasOracle](sr, blockchaindi.GasOracle)
		return app.NewBlockchainService(sub, oracle)
	})

	return nil
}

func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	cfg := di.MustGet[*config.Config](mono.Services(), "config")
	if !cfg.Blockchain.Enabled() {
		mono.Logger().Info(ctx, "blockchain module disabled, no settlement RPC configured")
		return nil
	}
	svc := blockchaindi.GetBlockchainService(mono.Services())
	blocks, err := svc.SubscribeBlocks(ctx)
	if err != nil {
		mono.Logger().Warn(ctx, "blockchain module: initial subscribe failed", "error", err)
		return nil
	}
	go func() {
		for block := range blocks {
			ui.Send(ui.BlockMsg{Number: block.Number, Timestamp: block.Timestamp})
		}
	}()
	go pollGasPrice(ctx, svc, mono.Logger())

	mono.Logger().Info(ctx, "blockchain module started")
	return nil
}

// pollGasPrice periodically samples the gas oracle and forwards the result
// to the TUI status panel. A no-op in CLI mode, since ui.Send drops
// messages when no program is running.
func pollGasPrice(ctx context.Context, svc *app.BlockchainService, log logger.LoggerInterface) {
	ticker := time.NewTicker(gasPricePollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			price, err := svc.GetGasPrice(ctx)
			if err != nil {
				log.Debug(ctx, "blockchain module: gas price sample failed", "error", err)
				continue
			}
			ui.Send(ui.GasPriceMsg{GweiPrice: price.Gwei()})
		}
	}
}
