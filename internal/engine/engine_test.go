package engine

import (
	"testing"

	"hyperspike/internal/plasticity"
)

func mustEngine(t *testing.T, wheelSize uint64) *Engine {
	e, err := New(wheelSize, Options{})
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func neuronIDs(events []SpikeEvent) []int {
	ids := make([]int, len(events))
	for i, e := range events {
		ids[i] = e.NeuronID
	}
	return ids
}

// Scenario A — Fan-out of two.
func TestScenarioAFanOutOfTwo(t *testing.T) {
	e := mustEngine(t, 32)
	n0 := e.AddNeuron(1.0, 0)
	n1 := e.AddNeuron(1.0, 0)
	n2 := e.AddNeuron(1.0, 0)
	if _, err := e.AddEdge([]int{n0}, []int{n1, n2}, 1.0, 1); err != nil {
		t.Fatal(err)
	}
	if err := e.ScheduleSpike(n0, 0); err != nil {
		t.Fatal(err)
	}

	step1 := e.Step()
	if len(step1) != 1 || step1[0].NeuronID != n0 || step1[0].Time != 0 {
		t.Fatalf("step 1: expected [{0,0}], got %v", step1)
	}

	step2 := e.Step()
	if len(step2) != 2 {
		t.Fatalf("step 2: expected 2 events, got %v", step2)
	}
	ids := neuronIDs(step2)
	if !(ids[0] == n1 && ids[1] == n2) {
		t.Fatalf("step 2: expected [%d,%d], got %v", n1, n2, ids)
	}

	step3 := e.Step()
	if len(step3) != 0 {
		t.Fatalf("step 3: expected [], got %v", step3)
	}
}

// Scenario B — Sub-threshold accumulation.
func TestScenarioBSubThresholdAccumulation(t *testing.T) {
	e := mustEngine(t, 32)
	n0 := e.AddNeuron(1.0, 0)
	n1 := e.AddNeuron(1.0, 0)
	if _, err := e.AddEdge([]int{n0}, []int{n1}, 0.5, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := e.AddEdge([]int{n0}, []int{n1}, 0.5, 1); err != nil {
		t.Fatal(err)
	}
	if err := e.ScheduleSpike(n0, 0); err != nil {
		t.Fatal(err)
	}

	step1 := e.Step()
	if len(step1) != 1 || step1[0].NeuronID != n0 {
		t.Fatalf("step 1: expected [{0,0}], got %v", step1)
	}
	step2 := e.Step()
	if len(step2) != 1 || step2[0].NeuronID != n1 {
		t.Fatalf("step 2: expected single fire of n1, got %v", step2)
	}
}

// Scenario C — Horizon rejection.
func TestScenarioCHorizonRejection(t *testing.T) {
	e := mustEngine(t, 4)
	e.AddNeuron(1.0, 0)
	if err := e.ScheduleSpike(0, 10); err == nil {
		t.Fatal("expected DelayOutOfHorizon error")
	}
}

// Scenario D — Budget truncation.
func TestScenarioDBudgetTruncation(t *testing.T) {
	e := mustEngine(t, 8)
	n0 := e.AddNeuron(1.0, 0)
	const targets = 100
	for i := 0; i < targets; i++ {
		target := e.AddNeuron(1.0, 0)
		if _, err := e.AddEdge([]int{n0}, []int{target}, 1.0, 1); err != nil {
			t.Fatal(err)
		}
	}
	e.SetBudgets(10, 0)
	if err := e.ScheduleSpike(n0, 0); err != nil {
		t.Fatal(err)
	}

	step1 := e.Step()
	if len(step1) != 1 || step1[0].NeuronID != n0 {
		t.Fatalf("step 1: expected [{0,0}], got %v", step1)
	}
	step2 := e.Step()
	if len(step2) != 10 {
		t.Fatalf("step 2: expected exactly 10 post-synaptic fires with budget=10, got %d", len(step2))
	}
}

// Scenario E — Refractory.
func TestScenarioERefractory(t *testing.T) {
	e := mustEngine(t, 8)
	n0 := e.AddNeuron(1.0, 2)
	if _, err := e.AddEdge([]int{n0}, []int{n0}, 1.0, 1); err != nil {
		t.Fatal(err)
	}
	if err := e.ScheduleSpike(n0, 0); err != nil {
		t.Fatal(err)
	}

	fireTicks := map[uint64]bool{}
	for tick := uint64(0); tick < 6; tick++ {
		for _, ev := range e.Step() {
			if ev.NeuronID == n0 {
				fireTicks[ev.Time] = true
			}
		}
	}
	if !fireTicks[0] {
		t.Fatal("expected initial fire at tick 0")
	}
	for tick := uint64(1); tick <= 3; tick++ {
		if fireTicks[tick] {
			t.Fatalf("n0 should not fire again during refractory window, but fired at tick %d", tick)
		}
	}
}

// A single pre/post pair delivered through Step must move the edge weight
// by exactly the same trace-dominance rule internal/plasticity's own unit
// tests exercise directly: with DefaultParams's A- > A+, one pre spike and
// one post spike of equal trace magnitude nets a depression, not a change
// in an unspecified direction.
func TestOnWeightUpdateWiredThroughStep(t *testing.T) {
	e := mustEngine(t, 32)
	n0 := e.AddNeuron(1.0, 0)
	n1 := e.AddNeuron(1.0, 0)
	if _, err := e.AddEdge([]int{n0}, []int{n1}, 1.0, 1); err != nil {
		t.Fatal(err)
	}
	e.InstallPlasticity(plasticity.NewSTDP(plasticity.DefaultParams()))
	if err := e.ScheduleSpike(n0, 0); err != nil {
		t.Fatal(err)
	}

	edgeBefore, _ := e.graph.Edge(0)
	e.Step() // pops n0 at tick 0: OnPreSpike fires, n1 crosses threshold, OnPostSpike and
	// OnWeightUpdate run within the same Step call that delivers the edge.
	edgeAfter, _ := e.graph.Edge(0)
	if edgeAfter.Weight >= edgeBefore.Weight {
		t.Fatalf("expected the post trace (A-=0.012) to outweigh the pre trace (A+=0.01) and decrease the weight, got %v -> %v", edgeBefore.Weight.ToFloat(), edgeAfter.Weight.ToFloat())
	}
}

// Sub-threshold pre activity alone, with no post spike ever occurring, must
// never perturb a weight: OnWeightUpdate only runs when the post neuron
// actually fires.
func TestSubThresholdPreAloneLeavesWeightUnchanged(t *testing.T) {
	e := mustEngine(t, 32)
	n0 := e.AddNeuron(1.0, 0)
	n1 := e.AddNeuron(2.0, 0) // high threshold: never fires from a single weight-1.0 delivery
	if _, err := e.AddEdge([]int{n0}, []int{n1}, 1.0, 1); err != nil {
		t.Fatal(err)
	}
	e.InstallPlasticity(plasticity.NewSTDP(plasticity.DefaultParams()))
	if err := e.ScheduleSpike(n0, 0); err != nil {
		t.Fatal(err)
	}

	edgeBefore, _ := e.graph.Edge(0)
	e.Step()
	e.Step()
	edgeAfter, _ := e.graph.Edge(0)
	if edgeAfter.Weight != edgeBefore.Weight {
		t.Fatalf("expected weight unchanged without a post spike, got %v -> %v", edgeBefore.Weight.ToFloat(), edgeAfter.Weight.ToFloat())
	}
}

func TestInvariantHorizonNeverExceeded(t *testing.T) {
	e := mustEngine(t, 4)
	n0 := e.AddNeuron(1.0, 0)
	n1 := e.AddNeuron(1.0, 0)
	if _, err := e.AddEdge([]int{n0}, []int{n1}, 1.0, 3); err != nil {
		t.Fatal(err)
	}
	if err := e.ScheduleSpike(n0, 0); err != nil {
		t.Fatal(err)
	}
	e.Step()
	e.Step()
	e.Step()
	events := e.Step()
	if len(events) != 1 || events[0].NeuronID != n1 || events[0].Time != 3 {
		t.Fatalf("expected the maximum-delay delivery [{%d,3}] to stay inside the horizon, got %v", n1, events)
	}
}

func TestInvariantFIFOPerSlot(t *testing.T) {
	e := mustEngine(t, 8)
	n0 := e.AddNeuron(1.0, 0)
	n1 := e.AddNeuron(1.0, 0)
	if err := e.ScheduleSpike(n0, 2); err != nil {
		t.Fatal(err)
	}
	if err := e.ScheduleSpike(n1, 2); err != nil {
		t.Fatal(err)
	}
	e.Step()
	e.Step()
	events := e.Step()
	if len(events) != 2 || events[0].NeuronID != n0 || events[1].NeuronID != n1 {
		t.Fatalf("expected FIFO order [n0,n1], got %v", events)
	}
}

func TestRunTicksConcatenatesInOrder(t *testing.T) {
	e := mustEngine(t, 32)
	n0 := e.AddNeuron(1.0, 0)
	n1 := e.AddNeuron(1.0, 0)
	n2 := e.AddNeuron(1.0, 0)
	if _, err := e.AddEdge([]int{n0}, []int{n1, n2}, 1.0, 1); err != nil {
		t.Fatal(err)
	}
	if err := e.ScheduleSpike(n0, 0); err != nil {
		t.Fatal(err)
	}
	all := e.RunTicks(3)
	if len(all) != 3 {
		t.Fatalf("expected 3 total events across 3 ticks, got %d", len(all))
	}
	ids := neuronIDs(all)
	if ids[0] != n0 || ids[1] != n1 || ids[2] != n2 {
		t.Fatalf("expected [%d,%d,%d] in tick order, got %v", n0, n1, n2, ids)
	}
}

func TestRunUntilStopsAtTarget(t *testing.T) {
	e := mustEngine(t, 32)
	e.AddNeuron(1.0, 0)
	e.RunUntil(5)
	if e.CurrentTime() != 5 {
		t.Fatalf("expected current time 5, got %d", e.CurrentTime())
	}
}

// Diagnostics conservation (edges): edges_visited + edges_dropped equals the
// total number of edges that would have been visited absent any budget.
func TestDiagnosticsConservationEdges(t *testing.T) {
	e := mustEngine(t, 8)
	n0 := e.AddNeuron(1.0, 0)
	const fanOut = 20
	for i := 0; i < fanOut; i++ {
		target := e.AddNeuron(1.0, 0)
		if _, err := e.AddEdge([]int{n0}, []int{target}, 1.0, 1); err != nil {
			t.Fatal(err)
		}
	}
	e.SetBudgets(7, 0)
	if err := e.ScheduleSpike(n0, 0); err != nil {
		t.Fatal(err)
	}
	e.Step()
	e.Step()

	d := e.Diagnostics()
	if d.EdgesVisited+d.EdgesDropped != fanOut {
		t.Fatalf("expected edges_visited+edges_dropped == %d, got %d+%d", fanOut, d.EdgesVisited, d.EdgesDropped)
	}
	if d.EdgesVisited != 7 {
		t.Fatalf("expected edge budget of 7 to cap edges_visited, got %d", d.EdgesVisited)
	}
}

// Diagnostics conservation (spikes): when every edge is visited (no edge
// budget), spikes_scheduled + spikes_dropped equals the total number of
// post-synaptic fires that occurred.
func TestDiagnosticsConservationSpikes(t *testing.T) {
	e := mustEngine(t, 8)
	n0 := e.AddNeuron(1.0, 0)
	const fanOut = 20
	for i := 0; i < fanOut; i++ {
		target := e.AddNeuron(1.0, 0)
		if _, err := e.AddEdge([]int{n0}, []int{target}, 1.0, 1); err != nil {
			t.Fatal(err)
		}
	}
	e.SetBudgets(0, 5)
	if err := e.ScheduleSpike(n0, 0); err != nil {
		t.Fatal(err)
	}
	e.Step()
	e.Step()

	d := e.Diagnostics()
	if d.EdgesVisited != fanOut || d.EdgesDropped != 0 {
		t.Fatalf("expected all %d edges visited with no edge budget, got visited=%d dropped=%d", fanOut, d.EdgesVisited, d.EdgesDropped)
	}
	if d.SpikesScheduled+d.SpikesDropped != fanOut {
		t.Fatalf("expected spikes_scheduled+spikes_dropped == %d, got %d+%d", fanOut, d.SpikesScheduled, d.SpikesDropped)
	}
	if d.SpikesScheduled != 5 {
		t.Fatalf("expected spike budget of 5 to cap spikes_scheduled, got %d", d.SpikesScheduled)
	}
}

// A target that never crosses threshold must still be injected once the
// spike budget for the tick is exhausted: inject is unconditional, only
// scheduling is budget-gated, so a sub-threshold target dropped for
// scheduling purposes must never be counted in spikes_dropped.
func TestSpikeBudgetExhaustionStillInjectsSubThresholdTargets(t *testing.T) {
	e := mustEngine(t, 8)
	n0 := e.AddNeuron(1.0, 0)
	fires := e.AddNeuron(1.0, 0)        // threshold == weight: fires and exhausts the budget
	subThreshold := e.AddNeuron(2.0, 0) // threshold > weight: never fires from one delivery
	if _, err := e.AddEdge([]int{n0}, []int{fires}, 1.0, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := e.AddEdge([]int{n0}, []int{subThreshold}, 1.0, 1); err != nil {
		t.Fatal(err)
	}
	e.SetBudgets(0, 1)
	if err := e.ScheduleSpike(n0, 0); err != nil {
		t.Fatal(err)
	}
	e.Step()

	d := e.Diagnostics()
	if d.SpikesScheduled != 1 {
		t.Fatalf("expected exactly 1 spike scheduled, got %d", d.SpikesScheduled)
	}
	if d.SpikesDropped != 0 {
		t.Fatalf("expected 0 spikes_dropped: the sub-threshold target never fired, so it was never a candidate to schedule, got %d", d.SpikesDropped)
	}
}

func TestUnknownNeuronRejectedOnScheduleAndEdge(t *testing.T) {
	e := mustEngine(t, 8)
	if err := e.ScheduleSpike(42, 0); err == nil {
		t.Fatal("expected UnknownNeuron for schedule on nonexistent neuron")
	}
	n0 := e.AddNeuron(1.0, 0)
	if _, err := e.AddEdge([]int{n0}, []int{99}, 1.0, 1); err == nil {
		t.Fatal("expected UnknownNeuron for edge referencing nonexistent target")
	}
}
