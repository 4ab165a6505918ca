// Package domain contains the core domain types for the blockchain context.
package domain

import (
	"math/big"
	"time"
)

var weiPerGwei = big.NewFloat(1e9)
var weiPerETH = big.NewFloat(1e18)

// GasPrice represents gas price information in wei, as reported by the
// connected node's suggested-gas-price RPC. It exists purely for the TUI's
// settlement-telemetry panel; nothing in the replicator path depends on it.
type GasPrice struct {
	wei       *big.Int
	Timestamp time.Time
}

// NewGasPrice creates a GasPrice from wei.
func NewGasPrice(wei *big.Int) *GasPrice {
	return &GasPrice{
		wei:       wei,
		Timestamp: time.Now(),
	}
}

// Wei returns the gas price in wei.
func (g *GasPrice) Wei() *big.Int {
	return g.wei
}

// Gwei returns the gas price in gwei (for display).
func (g *GasPrice) Gwei() float64 {
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(g.wei), weiPerGwei).Float64()
	return f
}

// ETH returns the gas price in whole ETH (for display at very low denominations).
func (g *GasPrice) ETH() float64 {
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(g.wei), weiPerETH).Float64()
	return f
}
