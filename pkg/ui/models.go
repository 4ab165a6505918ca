// Package ui provides the Bubble Tea TUI for the L3 replicator.
package ui

// StatusModel is a placeholder for the status sub-model.
type StatusModel struct{}

// NewStatusModel creates a new status model.
func NewStatusModel() StatusModel {
	return StatusModel{}
}

// DepthModel is a placeholder for the depth ladder sub-model.
type DepthModel struct{}

// NewDepthModel creates a new depth model.
func NewDepthModel() DepthModel {
	return DepthModel{}
}

// EventLogModel is a placeholder for the event log sub-model.
type EventLogModel struct{}

// NewEventLogModel creates a new event log model.
func NewEventLogModel() EventLogModel {
	return EventLogModel{}
}

// ClustersModel is a placeholder for the cluster histogram sub-model.
type ClustersModel struct{}

// NewClustersModel creates a new clusters model.
func NewClustersModel() ClustersModel {
	return ClustersModel{}
}
