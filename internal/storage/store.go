// Package storage persists run snapshots and diagnostics, grounded end to
// end on the teacher's internal/storage package: the same Store interface
// shape, the same MemoryStore/SQLiteStore split behind a factory, and the
// same versioned-record codec discipline, adapted from genome/population
// persistence to engine run state.
package storage

import "context"

// VersionedRecord captures schema and codec evolution for persistent data,
// carried over unchanged from the teacher's model package.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// RunSnapshot is the persisted state of one engine run at the moment it was
// saved, matching spec.md's RunSnapshot row (wheel size, tick, neuron
// count, edge count, created-at).
type RunSnapshot struct {
	VersionedRecord
	RunID        string `json:"run_id"`
	WheelSize    uint64 `json:"wheel_size"`
	Tick         uint64 `json:"tick"`
	NeuronCount  uint   `json:"neuron_count"`
	EdgeCount    uint   `json:"edge_count"`
	CreatedAtUTC string `json:"created_at_utc"`
}

// Store defines transaction-like persistence operations for one engine
// run's snapshot and diagnostics, the domain-adapted counterpart of the
// teacher's genome/population Store interface.
type Store interface {
	Init(ctx context.Context) error
	SaveSnapshot(ctx context.Context, snapshot RunSnapshot) error
	GetSnapshot(ctx context.Context, runID string) (RunSnapshot, bool, error)
	SaveDiagnostics(ctx context.Context, runID string, counters Counters) error
	GetDiagnostics(ctx context.Context, runID string) (Counters, bool, error)
	ListRuns(ctx context.Context) ([]RunSnapshot, error)
}

// Counters mirrors internal/diagnostics.Counters for persistence; storage
// does not import internal/diagnostics directly so that callers can persist
// a snapshot without depending on the engine's runtime package graph.
type Counters struct {
	EdgesVisited    uint64 `json:"edges_visited"`
	EdgesDropped    uint64 `json:"edges_dropped"`
	SpikesScheduled uint64 `json:"spikes_scheduled"`
	SpikesDropped   uint64 `json:"spikes_dropped"`
	TicksRun        uint64 `json:"ticks_run"`
}
