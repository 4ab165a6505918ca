// Package monolith provides the application container and module interface.
package monolith

import (
	"context"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/fd1az/l3-replicator/internal/config"
	"github.com/fd1az/l3-replicator/internal/di"
	"github.com/fd1az/l3-replicator/internal/logger"
)

// Monolith is the main application container providing access to shared infrastructure.
type Monolith interface {
	Config() *config.Config
	Logger() logger.LoggerInterface
	// EthClient returns the settlement-telemetry Ethereum client, or nil when
	// no blockchain HTTP/WS URL is configured (cfg.Blockchain.Enabled() is
	// false) or the client could not be dialed.
	EthClient() *ethclient.Client
	Services() di.ServiceRegistry
}

// Module represents a bounded context module that can register services and start up.
type Module interface {
	RegisterServices(di.Container) error
	Startup(context.Context, Monolith) error
}

// app implements the Monolith interface.
type app struct {
	config    *config.Config
	logger    logger.LoggerInterface
	ethClient *ethclient.Client
	container di.Container
}

// New creates a new Monolith instance. The Ethereum client is optional: when
// config.Blockchain.Enabled() is false the settlement-telemetry module is
// skipped rather than failing startup, since it is ambient context for the
// TUI rather than a dependency of the book replicator.
func New(cfg *config.Config, log logger.LoggerInterface) (*app, error) {
	var ethClient *ethclient.Client
	if cfg.Blockchain.Enabled() {
		url := cfg.Blockchain.HTTPURL
		if url == "" {
			url = cfg.Blockchain.WebSocketURL
		}
		client, err := ethclient.Dial(url)
		if err != nil {
			log.Warn(context.Background(), "settlement telemetry disabled: ethereum dial failed", "error", err)
		} else {
			ethClient = client
		}
	}

	container := di.NewContainer()

	container.Register("config", cfg)
	container.Register("logger", log)
	if ethClient != nil {
		container.Register("ethClient", ethClient)
	}

	return &app{
		config:    cfg,
		logger:    log,
		ethClient: ethClient,
		container: container,
	}, nil
}

func (a *app) Config() *config.Config {
	return a.config
}

func (a *app) Logger() logger.LoggerInterface {
	return a.logger
}

func (a *app) EthClient() *ethclient.Client {
	return a.ethClient
}

func (a *app) Services() di.ServiceRegistry {
	return a.container
}

// Container returns the DI container for module registration.
func (a *app) Container() di.Container {
	return a.container
}

// RegisterModules registers all provided modules.
func (a *app) RegisterModules(modules ...Module) error {
	for _, m := range modules {
		if err := m.RegisterServices(a.container); err != nil {
			return err
		}
	}
	return nil
}

// StartModules starts all provided modules.
func (a *app) StartModules(ctx context.Context, modules ...Module) error {
	for _, m := range modules {
		if err := m.Startup(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// Close closes all resources.
func (a *app) Close() error {
	if a.ethClient != nil {
		a.ethClient.Close()
	}
	return nil
}
