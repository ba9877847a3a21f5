package storage

import (
	"context"
	"testing"
)

func TestMemoryStoreSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := RunSnapshot{
		VersionedRecord: VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		RunID:           "run-1",
		WheelSize:       64,
		Tick:            5,
		NeuronCount:     3,
		EdgeCount:       2,
		CreatedAtUTC:    "2026-08-06T00:00:00Z",
	}
	if err := store.SaveSnapshot(ctx, input); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}

	output, ok, err := store.GetSnapshot(ctx, "run-1")
	if err != nil {
		t.Fatalf("get snapshot: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted snapshot")
	}
	if output.Tick != input.Tick || output.NeuronCount != input.NeuronCount {
		t.Fatalf("unexpected snapshot: %+v", output)
	}
}

func TestMemoryStoreGetSnapshotMissing(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	_, ok, err := store.GetSnapshot(ctx, "nonexistent")
	if err != nil {
		t.Fatalf("get snapshot: %v", err)
	}
	if ok {
		t.Fatal("expected no snapshot for unknown run id")
	}
}

func TestMemoryStoreDiagnosticsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := Counters{EdgesVisited: 10, EdgesDropped: 1, SpikesScheduled: 4, SpikesDropped: 0, TicksRun: 5}
	if err := store.SaveDiagnostics(ctx, "run-1", input); err != nil {
		t.Fatalf("save diagnostics: %v", err)
	}
	output, ok, err := store.GetDiagnostics(ctx, "run-1")
	if err != nil {
		t.Fatalf("get diagnostics: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted diagnostics")
	}
	if output != input {
		t.Fatalf("unexpected diagnostics: %+v", output)
	}
}

func TestMemoryStoreListRunsOrdersNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	older := RunSnapshot{RunID: "run-old", CreatedAtUTC: "2026-08-01T00:00:00Z"}
	newer := RunSnapshot{RunID: "run-new", CreatedAtUTC: "2026-08-06T00:00:00Z"}
	if err := store.SaveSnapshot(ctx, older); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveSnapshot(ctx, newer); err != nil {
		t.Fatal(err)
	}

	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 || runs[0].RunID != "run-new" {
		t.Fatalf("expected newest run first, got %+v", runs)
	}
}
