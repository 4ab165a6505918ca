// Package di contains dependency injection tokens and accessors for the
// blockchain context.
package di

import (
	"github.com/fd1az/l3-replicator/internal/di"

	"github.com/fd1az/l3-replicator/business/blockchain/app"
)

// DI tokens for the blockchain module.
const (
	BlockSubscriber   = "blockchain.BlockSubscriber"
	GasOracle         = "blockchain.GasOracle"
	BlockchainService = "blockchain.BlockchainService"
)

// GetBlockchainService resolves the singleton BlockchainService. It is only
// registered when blockchain.Enabled() is true in config; callers must check
// that before resolving.
func GetBlockchainService(sr di.ServiceRegistry) *app.BlockchainService {
	return di.MustGet[*app.BlockchainService](sr, BlockchainService)
}
