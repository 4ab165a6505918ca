// Package main is the entry point for the L3 order book replicator.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/fd1az/l3-replicator/business/blockchain"
	"github.com/fd1az/l3-replicator/business/clustering"
	clusteringapp "github.com/fd1az/l3-replicator/business/clustering/app"
	clusteringdi "github.com/fd1az/l3-replicator/business/clustering/di"
	"github.com/fd1az/l3-replicator/business/orchestrator"
	orchestratorapp "github.com/fd1az/l3-replicator/business/orchestrator/app"
	orchestratordi "github.com/fd1az/l3-replicator/business/orchestrator/di"
	"github.com/fd1az/l3-replicator/business/orchestrator/infra"
	replicadomain "github.com/fd1az/l3-replicator/business/replica/domain"
	"github.com/fd1az/l3-replicator/business/venue"

	"github.com/fd1az/l3-replicator/internal/apm"
	"github.com/fd1az/l3-replicator/internal/config"
	"github.com/fd1az/l3-replicator/internal/health"
	"github.com/fd1az/l3-replicator/internal/logger"
	"github.com/fd1az/l3-replicator/internal/metrics"
	"github.com/fd1az/l3-replicator/internal/monolith"
	"github.com/fd1az/l3-replicator/pkg/ui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	cliMode := flag.Bool("cli", false, "Run in CLI mode with logs (no TUI)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("l3replicator %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	symbol := ""
	if flag.NArg() > 0 {
		symbol = flag.Arg(0)
	}

	tuiMode := !*cliMode

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		if !tuiMode {
			fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		}
		cancel()
	}()

	if err := run(ctx, *configPath, symbol, tuiMode); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath, symbolOverride string, tuiMode bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if symbolOverride != "" {
		cfg.Venue.DefaultSymbol = symbolOverride
	}

	logLevel := logger.LevelInfo
	switch cfg.App.LogLevel {
	case "debug":
		logLevel = logger.LevelDebug
	case "warn":
		logLevel = logger.LevelWarn
	case "error":
		logLevel = logger.LevelError
	}

	var log *logger.Logger
	if tuiMode {
		log = logger.New(io.Discard, logLevel, cfg.App.Name, nil)
	} else {
		log = logger.New(os.Stderr, logLevel, cfg.App.Name, nil)
		log.Info(ctx, "starting L3 order book replicator",
			"version", version,
			"environment", cfg.App.Environment,
			"venue", cfg.Venue.Default,
			"symbol", cfg.Venue.DefaultSymbol,
		)
	}

	var traceProvider apm.TraceProvider
	if cfg.Telemetry.Enabled {
		if cfg.Telemetry.ServiceName != "" {
			os.Setenv("OTEL_SERVICE_NAME", cfg.Telemetry.ServiceName)
		}
		if cfg.Telemetry.OTLPEndpoint != "" {
			os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.OTLPEndpoint)
		}

		traceProvider = apm.NewTraceProvider(log, apm.WithProvider(apm.ZipkinProvider, log))
		log.Info(ctx, "tracing initialized", "provider", "zipkin", "endpoint", cfg.Telemetry.OTLPEndpoint)

		metrics.NewMetricProvider(
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithProviderConfig(metrics.ProviderCfg{
				Provider: metrics.PrometheusProvider,
			}),
		)

		port := cfg.Telemetry.PrometheusPort
		if port == 0 {
			port = 9090
		}
		go metrics.ServePrometheusMetrics(metrics.WithPort(strconv.Itoa(port)))
		log.Info(ctx, "prometheus metrics server started", "port", port)
	}
	defer func() {
		if traceProvider != nil {
			traceProvider.Stop()
		}
	}()

	healthServer := health.NewServer(8081, version)
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	} else {
		log.Info(ctx, "health server started", "port", 8081)
	}
	defer healthServer.Stop(ctx)

	mono, err := monolith.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}
	defer mono.Close()

	modules := []monolith.Module{
		&blockchain.Module{},   // settlement-layer telemetry, optional
		&venue.Module{},        // venue adapters
		&clustering.Module{},   // mini-batch k-means clusterer
		&orchestrator.Module{}, // ingestion worker
	}

	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}

	var reporter orchestratorapp.Reporter
	if tuiMode {
		reporter = infra.NewTUIReporter()
	} else {
		reporter = infra.NewConsoleReporter()
	}

	if tuiMode {
		startFunc := func() error {
			if err := mono.StartModules(ctx, modules...); err != nil {
				return fmt.Errorf("failed to start modules: %w", err)
			}
			return startReplication(ctx, mono, reporter, cfg)
		}
		stopFunc := func() {
			reporter.Stop()
		}
		return runTUI(ctx, startFunc, stopFunc)
	}

	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}
	if err := startReplication(ctx, mono, reporter, cfg); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info(ctx, "shutting down")
	reporter.Stop()
	return nil
}

// startReplication wires the reporter onto the orchestrator, starts its
// ingestion loop, and launches the periodic depth/cluster reporting loop.
// All three run as background goroutines for the lifetime of ctx.
func startReplication(ctx context.Context, mono monolith.Monolith, reporter orchestratorapp.Reporter, cfg *config.Config) error {
	orch := orchestratordi.GetOrchestrator(mono.Services())
	orch.SetReporter(reporter)
	ui.OnRefetch = func() { orch.SendCommand(orchestratorapp.RefetchCommand{}) }

	if err := reporter.Start(ctx); err != nil {
		return fmt.Errorf("failed to start reporter: %w", err)
	}

	go orch.Run(ctx)

	clusterer := clusteringdi.GetClusterer(mono.Services())
	go reportLoop(ctx, orch, clusterer, reporter, cfg.Clustering.FitInterval)

	return nil
}

// reportLoop periodically refits both book sides against the orchestrator's
// live replica and pushes the resulting depth ladder and cluster histogram
// to the reporter. It runs for the lifetime of ctx.
func reportLoop(ctx context.Context, orch *orchestratorapp.Orchestrator, clusterer *clusteringapp.Clusterer, reporter orchestratorapp.Reporter, interval time.Duration) {
	if interval <= 0 {
		interval = orchestratorapp.ReportInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			replica := orch.Replica()
			if replica == nil {
				continue
			}

			bidLevels := replica.Bids.Levels(replicadomain.Descending)
			askLevels := replica.Asks.Levels(replicadomain.Ascending)
			reporter.UpdateDepth(bidLevels, askLevels)

			bidLabels := clusterer.FitBids(replica.Bids)
			if len(bidLabels) > 0 {
				reporter.UpdateClusters("bids", bidLabels)
			}
			askLabels := clusterer.FitAsks(replica.Asks)
			if len(askLabels) > 0 {
				reporter.UpdateClusters("asks", askLabels)
			}
		}
	}
}

func runTUI(ctx context.Context, startFunc func() error, stopFunc func()) error {
	startSignal := make(chan struct{}, 1)
	ui.OnStartModules = func() {
		select {
		case startSignal <- struct{}{}:
		default:
		}
	}

	p := tea.NewProgram(ui.New(), tea.WithAltScreen())
	ui.Program = p

	errCh := make(chan error, 1)
	go func() {
		select {
		case <-startSignal:
		case <-ctx.Done():
			errCh <- nil
			return
		}

		if err := startFunc(); err != nil {
			ui.Send(ui.ErrorMsg{Error: err})
			errCh <- err
			return
		}

		<-ctx.Done()
		stopFunc()
		errCh <- nil
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}
