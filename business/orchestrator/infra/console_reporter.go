// Package infra contains infrastructure adapters for the orchestrator
// context: reporters that surface replicator state to an operator.
package infra

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	clusteringdomain "github.com/fd1az/l3-replicator/business/clustering/domain"
	replicadomain "github.com/fd1az/l3-replicator/business/replica/domain"
	venuedomain "github.com/fd1az/l3-replicator/business/venue/domain"
)

// ConsoleReporter implements orchestrator.Reporter for CLI output.
type ConsoleReporter struct {
	out       io.Writer
	precision venuedomain.Precision
}

// NewConsoleReporter creates a new ConsoleReporter.
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{out: os.Stdout, precision: venuedomain.Precision{PriceDecimals: 4, QtyDecimals: 4}}
}

// Start initializes the console reporter.
func (r *ConsoleReporter) Start(ctx context.Context) error {
	fmt.Fprintln(r.out, "L3 Replicator Started")
	fmt.Fprintln(r.out, "======================")
	return nil
}

// UpdateConnectionStatus outputs a venue connection transition.
func (r *ConsoleReporter) UpdateConnectionStatus(venue string, symbol string, connected bool) {
	status := "disconnected"
	if connected {
		status = "connected"
	}
	fmt.Fprintf(r.out, "[%s] %s/%s: %s\n", time.Now().Format("15:04:05"), venue, symbol, status)
}

// UpdatePrecision records the venue's documented rounding for subsequent
// UpdateDepth output.
func (r *ConsoleReporter) UpdatePrecision(venue string, symbol string, precision venuedomain.Precision) {
	r.precision = precision
}

// UpdateGap outputs a sequencing gap and the refetch it triggered.
func (r *ConsoleReporter) UpdateGap(venue string, symbol string, reason string) {
	fmt.Fprintf(r.out, "[%s] %s/%s: gap (%s), refetching snapshot\n", time.Now().Format("15:04:05"), venue, symbol, reason)
}

// UpdateDepth outputs the top of the current depth ladder for both sides.
func (r *ConsoleReporter) UpdateDepth(bids, asks []*replicadomain.PriceLevel) {
	fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
	fmt.Fprintln(r.out, "BIDS                          ASKS")
	rows := len(bids)
	if len(asks) > rows {
		rows = len(asks)
	}
	for i := 0; i < rows; i++ {
		left := ""
		if i < len(bids) {
			left = fmt.Sprintf("%s @ %s", bids[i].Aggregate().StringFixed(int32(r.precision.QtyDecimals)), bids[i].Price.StringFixed(int32(r.precision.PriceDecimals)))
		}
		right := ""
		if i < len(asks) {
			right = fmt.Sprintf("%s @ %s", asks[i].Aggregate().StringFixed(int32(r.precision.QtyDecimals)), asks[i].Price.StringFixed(int32(r.precision.PriceDecimals)))
		}
		fmt.Fprintf(r.out, "%-28s  %s\n", left, right)
	}
}

// UpdateClusters outputs a histogram summary of the latest cluster fit.
func (r *ConsoleReporter) UpdateClusters(side string, labeled []clusteringdomain.LabeledPoint) {
	counts := make(map[int]int)
	for _, p := range labeled {
		counts[p.Label]++
	}
	fmt.Fprintf(r.out, "%s clusters:", side)
	for label := 0; label < len(counts); label++ {
		fmt.Fprintf(r.out, " [%d]=%d", label, counts[label])
	}
	fmt.Fprintln(r.out)
}

// Stop gracefully shuts down the console reporter.
func (r *ConsoleReporter) Stop() error {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "L3 Replicator Stopped")
	return nil
}
