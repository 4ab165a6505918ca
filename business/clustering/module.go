// Package clustering wires the mini-batch k-means clusterer used to paint
// depth-ladder heatmaps.
package clustering

import (
	"context"

	"github.com/fd1az/l3-replicator/internal/config"
	"github.com/fd1az/l3-replicator/internal/di"
	"github.com/fd1az/l3-replicator/internal/monolith"

	"github.com/fd1az/l3-replicator/business/clustering/app"
	clusteringdi "github.com/fd1az/l3-replicator/business/clustering/di"
)

// Module implements the clustering bounded context.
type Module struct{}

func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, clusteringdi.Clusterer, func(sr di.ServiceRegistry) *app.Clusterer {
		cfg := di.MustGet[*config.Config](sr, "config")
		return app.New(cfg.Clustering.K, cfg.Clustering.BatchSize, cfg.Clustering.MaxIter)
	})
	return nil
}

func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	mono.Logger().Info(ctx, "clustering module started")
	return nil
}
