package infra

import (
	"context"

	clusteringdomain "github.com/fd1az/l3-replicator/business/clustering/domain"
	replicadomain "github.com/fd1az/l3-replicator/business/replica/domain"
	venuedomain "github.com/fd1az/l3-replicator/business/venue/domain"
	"github.com/fd1az/l3-replicator/pkg/ui"
	"github.com/fd1az/l3-replicator/pkg/ui/components"
)

const depthLadderSize = 10

// TUIReporter implements orchestrator.Reporter by forwarding state to the
// running Bubble Tea program.
type TUIReporter struct {
	started bool
	venue   string
	symbol  string
}

// NewTUIReporter creates a new TUIReporter.
func NewTUIReporter() *TUIReporter {
	return &TUIReporter{}
}

func (r *TUIReporter) Start(ctx context.Context) error {
	r.started = true
	ui.Send(ui.StartupMsg{Step: "config", Status: "done"})
	return nil
}

func (r *TUIReporter) UpdateConnectionStatus(venue string, symbol string, connected bool) {
	if !r.started {
		return
	}
	r.venue, r.symbol = venue, symbol
	ui.Send(ui.ConnectionStatusMsg{Venue: venue, Symbol: symbol, Connected: connected})
	ui.Send(ui.StartupMsg{Step: "venue", Status: statusFor(connected)})
}

func (r *TUIReporter) UpdatePrecision(venue string, symbol string, precision venuedomain.Precision) {
	if !r.started {
		return
	}
	ui.Send(ui.PrecisionMsg{PriceDecimals: precision.PriceDecimals, QtyDecimals: precision.QtyDecimals})
}

func (r *TUIReporter) UpdateGap(venue string, symbol string, reason string) {
	if !r.started {
		return
	}
	ui.Send(ui.GapMsg{Venue: venue, Symbol: symbol, Reason: reason})
}

func (r *TUIReporter) UpdateDepth(bids, asks []*replicadomain.PriceLevel) {
	if !r.started {
		return
	}
	ui.Send(ui.DepthUpdateMsg{
		Venue:  r.venue,
		Symbol: r.symbol,
		Bids:   toDepthRows(bids),
		Asks:   toDepthRows(asks),
	})
}

func (r *TUIReporter) UpdateClusters(side string, labeled []clusteringdomain.LabeledPoint) {
	if !r.started {
		return
	}
	ui.Send(ui.ClusterUpdateMsg{Side: side, Buckets: toBuckets(labeled)})
}

func (r *TUIReporter) Stop() error {
	r.started = false
	return nil
}

func statusFor(connected bool) string {
	if connected {
		return "connected"
	}
	return "connecting"
}

func toDepthRows(levels []*replicadomain.PriceLevel) []components.DepthRow {
	n := len(levels)
	if n > depthLadderSize {
		n = depthLadderSize
	}
	rows := make([]components.DepthRow, n)
	for i := 0; i < n; i++ {
		rows[i] = components.DepthRow{Price: levels[i].Price, Qty: levels[i].Aggregate()}
	}
	return rows
}

func toBuckets(labeled []clusteringdomain.LabeledPoint) []components.ClusterBucket {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	maxLabel := -1
	for _, p := range labeled {
		v, _ := p.Qty.Float64()
		sums[p.Label] += v
		counts[p.Label]++
		if p.Label > maxLabel {
			maxLabel = p.Label
		}
	}
	if maxLabel < 0 {
		return nil
	}

	buckets := make([]components.ClusterBucket, 0, maxLabel+1)
	maxCenter := 0.0
	for label := 0; label <= maxLabel; label++ {
		if counts[label] == 0 {
			continue
		}
		center := sums[label] / float64(counts[label])
		if center > maxCenter {
			maxCenter = center
		}
		buckets = append(buckets, components.ClusterBucket{Label: label, Count: counts[label], Center: center})
	}
	for i := range buckets {
		buckets[i].MaxCenter = maxCenter
	}
	return buckets
}
