package hyperspike

import (
	"context"
	"testing"
)

func TestNewAppliesDefaults(t *testing.T) {
	c, err := New(Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if c.RunID() == "" {
		t.Fatal("expected a non-empty generated run id")
	}
}

func TestClientFanOutMatchesEngineScenario(t *testing.T) {
	c, err := New(Options{WheelSize: 32})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	n0 := c.AddNeuron(1.0, 0)
	n1 := c.AddNeuron(1.0, 0)
	n2 := c.AddNeuron(1.0, 0)
	if _, err := c.AddEdge([]int{n0}, []int{n1, n2}, 1.0, 1); err != nil {
		t.Fatal(err)
	}
	if err := c.ScheduleSpike(n0, 0); err != nil {
		t.Fatal(err)
	}

	c.Step()
	fired := c.Step()
	if len(fired) != 2 {
		t.Fatalf("expected 2 fan-out events, got %v", fired)
	}
}

func TestClientSaveAndLoadSnapshot(t *testing.T) {
	c, err := New(Options{WheelSize: 16})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	c.AddNeuron(1.0, 0)
	c.RunTicks(3)

	ctx := context.Background()
	if err := c.SaveSnapshot(ctx, "2026-08-06T00:00:00Z"); err != nil {
		t.Fatal(err)
	}

	snapshot, ok, err := c.LoadSnapshot(ctx, c.RunID())
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected a persisted snapshot")
	}
	if snapshot.Tick != c.CurrentTime() || snapshot.NeuronCount != c.NeuronCount() {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}

	runs, err := c.ListRuns(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].RunID != c.RunID() {
		t.Fatalf("expected one listed run for %s, got %+v", c.RunID(), runs)
	}
}

func TestClientInstallDefaultSTDP(t *testing.T) {
	c, err := New(Options{WheelSize: 32})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	n0 := c.AddNeuron(1.0, 0)
	n1 := c.AddNeuron(1.0, 0)
	edgeID, err := c.AddEdge([]int{n0}, []int{n1}, 1.0, 1)
	if err != nil {
		t.Fatal(err)
	}
	c.InstallDefaultSTDP()
	if err := c.ScheduleSpike(n0, 0); err != nil {
		t.Fatal(err)
	}
	c.Step()

	_ = edgeID
	d := c.Diagnostics()
	if d.SpikesScheduled == 0 {
		t.Fatal("expected the post-synaptic fire to be scheduled")
	}
}
