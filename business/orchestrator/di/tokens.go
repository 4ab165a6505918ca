// Package di contains dependency injection tokens and accessors for the
// orchestrator context.
package di

import (
	"github.com/fd1az/l3-replicator/internal/di"

	"github.com/fd1az/l3-replicator/business/orchestrator/app"
)

const Orchestrator = "orchestrator.Orchestrator"

// GetOrchestrator resolves the singleton Orchestrator.
func GetOrchestrator(sr di.ServiceRegistry) *app.Orchestrator {
	return di.MustGet[*app.Orchestrator](sr, Orchestrator)
}
