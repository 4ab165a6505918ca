package app

import (
	"context"
	"time"

	clusteringdomain "github.com/fd1az/l3-replicator/business/clustering/domain"
	replicadomain "github.com/fd1az/l3-replicator/business/replica/domain"
	venuedomain "github.com/fd1az/l3-replicator/business/venue/domain"
)

// ReportInterval is how often the composition root should refit clusters
// and push a fresh depth/cluster snapshot to the Reporter.
const ReportInterval = 500 * time.Millisecond

// Reporter defines the interface for surfacing replicator state to an
// operator: connection lifecycle, the current depth ladder, and cluster
// assignments, without the reporter doing any of its own computation.
type Reporter interface {
	// Start initializes the reporter.
	Start(ctx context.Context) error

	// UpdateConnectionStatus reports a venue connection transition.
	UpdateConnectionStatus(venue string, symbol string, connected bool)

	// UpdatePrecision reports the venue-documented price/quantity rounding
	// for the session's symbol, so depth display can render at the
	// venue's own precision instead of a fixed guess.
	UpdatePrecision(venue string, symbol string, precision venuedomain.Precision)

	// UpdateGap reports a sequencing gap and the refetch it triggered.
	UpdateGap(venue string, symbol string, reason string)

	// UpdateDepth reports the current top-of-book ladder for both sides.
	UpdateDepth(bids, asks []*replicadomain.PriceLevel)

	// UpdateClusters reports the latest cluster fit for one side.
	UpdateClusters(side string, labeled []clusteringdomain.LabeledPoint)

	// Stop gracefully shuts down the reporter.
	Stop() error
}
