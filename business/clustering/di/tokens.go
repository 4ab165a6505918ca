// Package di contains dependency injection tokens and accessors for the
// clustering context.
package di

import (
	"github.com/fd1az/l3-replicator/internal/di"

	"github.com/fd1az/l3-replicator/business/clustering/app"
)

const Clusterer = "clustering.Clusterer"

// GetClusterer resolves the singleton Clusterer.
func GetClusterer(sr di.ServiceRegistry) *app.Clusterer {
	return di.MustGet[*app.Clusterer](sr, Clusterer)
}
