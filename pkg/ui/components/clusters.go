// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ClusterBucket summarizes one label's share of the latest fit.
type ClusterBucket struct {
	Label     int
	Count     int
	Center    float64
	MaxCenter float64 // largest center across all buckets, for bar scaling
}

// ClustersComponent renders a histogram of the latest K-means fit for one
// side of the book (bids or asks).
type ClustersComponent struct {
	side    string
	buckets []ClusterBucket
	k       int
}

// NewClustersComponent creates a new cluster histogram component.
func NewClustersComponent(k int) *ClustersComponent {
	return &ClustersComponent{k: k}
}

// Update replaces the rendered buckets for the given side ("bids"/"asks").
// k tracks the highest observed bucket count, since the initial value
// passed to NewClustersComponent is often unknown at construction time.
func (c *ClustersComponent) Update(side string, buckets []ClusterBucket) {
	c.side = side
	c.buckets = buckets
	if len(buckets) > c.k {
		c.k = len(buckets)
	}
}

// View renders the clusters component.
func (c *ClustersComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	barStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#60A5FA"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)

	var result string
	result = headerStyle.Render(fmt.Sprintf("CLUSTERS (k=%d, %s)", c.k, strings.ToUpper(c.side)))
	result += "\n\n"

	if len(c.buckets) == 0 {
		return result + mutedStyle.Render("  Not enough liquidity observed yet.\n")
	}

	const maxBarWidth = 24
	for _, b := range c.buckets {
		width := 0
		if b.MaxCenter > 0 {
			width = int(float64(maxBarWidth) * b.Center / b.MaxCenter)
		}
		if width < 1 {
			width = 1
		}
		bar := barStyle.Render(strings.Repeat("█", width))
		result += fmt.Sprintf("  [%d] %-24s %s members=%s\n",
			b.Label, bar, valueStyle.Render(fmt.Sprintf("%.4f", b.Center)), valueStyle.Render(fmt.Sprintf("%d", b.Count)))
	}

	return result
}
