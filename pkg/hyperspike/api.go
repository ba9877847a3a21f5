// Package hyperspike is the public facade for embedding the deterministic
// hypergraph spiking-neural-network engine, grounded on the teacher's
// pkg/protogonos.Client/Options/New shape.
package hyperspike

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"hyperspike/internal/config"
	"hyperspike/internal/diagnostics"
	"hyperspike/internal/engine"
	"hyperspike/internal/plasticity"
	"hyperspike/internal/storage"
)

// Options configures a Client at construction time. Zero values fall back
// to internal/config's defaults.
type Options struct {
	WheelSize         uint64
	DefaultThreshold  float64
	DefaultRefractory uint
	MaxEdgesPerTick   int
	MaxSpikesPerTick  int
	StoreKind         string
	StorePath         string
}

// Client owns one engine and one storage backend, exposing spec.md §6's
// operation set plus the ambient diagnostics and persistence operations
// needed to exercise storage from an embedder.
type Client struct {
	engine *engine.Engine
	store  storage.Store
	runID  string
}

// New constructs a Client with a fresh engine and storage backend.
func New(opts Options) (*Client, error) {
	cfg := config.Options{
		WheelSize:         opts.WheelSize,
		DefaultThreshold:  opts.DefaultThreshold,
		DefaultRefractory: opts.DefaultRefractory,
		MaxEdgesPerTick:   opts.MaxEdgesPerTick,
		MaxSpikesPerTick:  opts.MaxSpikesPerTick,
		StoreKind:         opts.StoreKind,
		StorePath:         opts.StorePath,
	}.WithDefaults()

	eng, err := engine.New(cfg.WheelSize, engine.Options{
		DefaultThreshold:  cfg.DefaultThreshold,
		DefaultRefractory: cfg.DefaultRefractory,
	})
	if err != nil {
		return nil, err
	}
	eng.SetBudgets(cfg.MaxEdgesPerTick, cfg.MaxSpikesPerTick)

	store, err := storage.NewStore(cfg.StoreKind, cfg.StorePath)
	if err != nil {
		return nil, err
	}
	if err := store.Init(context.Background()); err != nil {
		return nil, err
	}

	return &Client{
		engine: eng,
		store:  store,
		runID:  uuid.NewString(),
	}, nil
}

// Close releases the underlying storage backend, if it supports closing.
func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

// RunID returns the collision-free identifier generated for this Client's
// lifetime, used to key persisted snapshots and diagnostics.
func (c *Client) RunID() string {
	return c.runID
}

// AddNeuron adds a neuron to the underlying engine. See engine.Engine.AddNeuron.
func (c *Client) AddNeuron(thresholdReal float64, refractoryTicks uint) int {
	return c.engine.AddNeuron(thresholdReal, refractoryTicks)
}

// AddEdge adds a hyperedge to the underlying engine. See engine.Engine.AddEdge.
func (c *Client) AddEdge(sources, targets []int, weightReal float64, delay uint64) (int, error) {
	return c.engine.AddEdge(sources, targets, weightReal, delay)
}

// ScheduleSpike seeds an initial spike. See engine.Engine.ScheduleSpike.
func (c *Client) ScheduleSpike(neuronID int, time uint64) error {
	return c.engine.ScheduleSpike(neuronID, time)
}

// SetBudgets configures per-tick work bounds. See engine.Engine.SetBudgets.
func (c *Client) SetBudgets(maxEdgesPerTick, maxSpikesPerTick int) {
	c.engine.SetBudgets(maxEdgesPerTick, maxSpikesPerTick)
}

// InstallPlasticity installs a caller-supplied plasticity.Rule. Use
// InstallDefaultSTDP for the bundled STDP rule with default parameters.
func (c *Client) InstallPlasticity(rule plasticity.Rule) {
	c.engine.InstallPlasticity(rule)
}

// InstallDefaultSTDP installs the bundled trace-based STDP rule with default
// parameters, the way config.EnvPlasticity="stdp" instructs a host to.
func (c *Client) InstallDefaultSTDP() {
	c.engine.InstallPlasticity(plasticity.NewSTDP(plasticity.DefaultParams()))
}

// RemovePlasticity uninstalls any previously installed plasticity rule.
func (c *Client) RemovePlasticity() {
	c.engine.RemovePlasticity()
}

// Step executes exactly one tick. See engine.Engine.Step.
func (c *Client) Step() []engine.SpikeEvent {
	return c.engine.Step()
}

// RunTicks steps the engine n times. See engine.Engine.RunTicks.
func (c *Client) RunTicks(n uint64) []engine.SpikeEvent {
	return c.engine.RunTicks(n)
}

// RunUntil steps the engine until CurrentTime() == targetTime. See
// engine.Engine.RunUntil.
func (c *Client) RunUntil(targetTime uint64) []engine.SpikeEvent {
	return c.engine.RunUntil(targetTime)
}

// CurrentTime returns the engine's current tick.
func (c *Client) CurrentTime() uint64 {
	return c.engine.CurrentTime()
}

// NeuronCount reports how many neurons have been allocated.
func (c *Client) NeuronCount() uint {
	return c.engine.NeuronCount()
}

// EdgeCount reports how many edges have been allocated.
func (c *Client) EdgeCount() uint {
	return c.engine.EdgeCount()
}

// Diagnostics returns a snapshot of the accumulated per-tick drop counters.
func (c *Client) Diagnostics() diagnostics.Counters {
	return c.engine.Diagnostics()
}

// SaveSnapshot persists the engine's current topology size and tick under
// this Client's run id, along with its accumulated diagnostics.
func (c *Client) SaveSnapshot(ctx context.Context, createdAtUTC string) error {
	snapshot := storage.RunSnapshot{
		VersionedRecord: storage.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		RunID:        c.runID,
		WheelSize:    c.engine.WheelSize(),
		Tick:         c.engine.CurrentTime(),
		NeuronCount:  c.engine.NeuronCount(),
		EdgeCount:    c.engine.EdgeCount(),
		CreatedAtUTC: createdAtUTC,
	}
	if err := c.store.SaveSnapshot(ctx, snapshot); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	d := c.engine.Diagnostics()
	counters := storage.Counters{
		EdgesVisited:    d.EdgesVisited,
		EdgesDropped:    d.EdgesDropped,
		SpikesScheduled: d.SpikesScheduled,
		SpikesDropped:   d.SpikesDropped,
		TicksRun:        d.TicksRun,
	}
	if err := c.store.SaveDiagnostics(ctx, c.runID, counters); err != nil {
		return fmt.Errorf("save diagnostics: %w", err)
	}
	return nil
}

// LoadSnapshot reads back a previously persisted run snapshot.
func (c *Client) LoadSnapshot(ctx context.Context, runID string) (storage.RunSnapshot, bool, error) {
	return c.store.GetSnapshot(ctx, runID)
}

// ListRuns lists every run snapshot the store has recorded.
func (c *Client) ListRuns(ctx context.Context) ([]storage.RunSnapshot, error) {
	return c.store.ListRuns(ctx)
}
