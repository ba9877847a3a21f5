// Package engine implements the runtime engine's step procedure: the
// central contract that pops one tick's worth of spikes from the time
// wheel, delivers them across the hypergraph, and reschedules any
// newly fired spikes.
package engine

import (
	"fmt"

	"hyperspike/internal/diagnostics"
	"hyperspike/internal/fixedpoint"
	"hyperspike/internal/hypergraph"
	"hyperspike/internal/neuron"
	"hyperspike/internal/plasticity"
	"hyperspike/internal/timewheel"
)

// Re-exported error kinds from the components the engine composes, named
// per the specification's error taxonomy.
var (
	ErrDelayOutOfHorizon = timewheel.ErrDelayOutOfHorizon
	ErrNonCausal         = timewheel.ErrNonCausal
	ErrInvalidEdge       = hypergraph.ErrInvalidEdge
	ErrUnknownNeuron     = hypergraph.ErrUnknownNeuron
)

// SpikeEvent is a single fired-neuron event popped at a tick.
type SpikeEvent struct {
	NeuronID int
	Time     uint64
}

// Budget bounds how much per-tick work Step performs. A zero value means
// unlimited for that dimension.
type Budget struct {
	MaxEdgesPerTick  int
	MaxSpikesPerTick int
}

// Engine owns the neurons, hypergraph, time wheel, optional plasticity
// rule, and per-tick budgets. It is single-threaded and cooperative: Step
// never suspends mid-tick and the engine holds no lock of its own.
type Engine struct {
	wheel   *timewheel.Wheel
	graph   *hypergraph.Graph
	neurons []*neuron.Neuron

	defaultThreshold  fixedpoint.Fixed
	defaultRefractory uint

	budget Budget
	diag   diagnostics.Counters

	plasticityRule plasticity.Rule
}

// Options configures default per-neuron parameters at construction time.
type Options struct {
	DefaultThreshold  float64
	DefaultRefractory uint
}

// New constructs an Engine with the given time-wheel horizon.
func New(wheelSize uint64, opts Options) (*Engine, error) {
	wheel, err := timewheel.New(wheelSize)
	if err != nil {
		return nil, err
	}
	threshold := opts.DefaultThreshold
	if threshold <= 0 {
		threshold = 1.0
	}
	return &Engine{
		wheel:             wheel,
		graph:             hypergraph.New(),
		defaultThreshold:  fixedpoint.FromFloat(threshold),
		defaultRefractory: opts.DefaultRefractory,
	}, nil
}

// AddNeuron allocates a new neuron and returns its id. thresholdReal <= 0
// falls back to the engine's configured default threshold, and
// refractoryTicks == 0 to its configured default refractory period.
func (e *Engine) AddNeuron(thresholdReal float64, refractoryTicks uint) int {
	threshold := e.defaultThreshold
	if thresholdReal > 0 {
		threshold = fixedpoint.FromFloat(thresholdReal)
	}
	if refractoryTicks == 0 {
		refractoryTicks = e.defaultRefractory
	}
	id := len(e.neurons)
	e.neurons = append(e.neurons, neuron.New(id, threshold, refractoryTicks))
	e.graph.RegisterNeuron(id)
	return id
}

// AddEdge validates and appends a new hyperedge. weightReal is converted to
// fixed-point; delay must satisfy 1 <= delay < wheel size.
func (e *Engine) AddEdge(sources, targets []int, weightReal float64, delay uint64) (int, error) {
	return e.graph.AddEdge(sources, targets, fixedpoint.FromFloat(weightReal), delay, e.wheel.Size())
}

// ScheduleSpike seeds an initial spike event. Returns ErrUnknownNeuron if
// neuronID was never allocated, otherwise delegates to the wheel's
// causality and horizon checks.
func (e *Engine) ScheduleSpike(neuronID int, time uint64) error {
	if neuronID < 0 || neuronID >= len(e.neurons) {
		return fmt.Errorf("%w: %d", ErrUnknownNeuron, neuronID)
	}
	return e.wheel.Schedule(timewheel.SpikeEvent{NeuronID: neuronID, Time: time})
}

// SetBudgets configures per-tick work bounds. A zero value for either
// dimension means unlimited.
func (e *Engine) SetBudgets(maxEdgesPerTick, maxSpikesPerTick int) {
	e.budget = Budget{MaxEdgesPerTick: maxEdgesPerTick, MaxSpikesPerTick: maxSpikesPerTick}
}

// InstallPlasticity installs a plasticity rule. Step calls its hooks from
// then on; the engine performs no learning until a rule is installed.
func (e *Engine) InstallPlasticity(rule plasticity.Rule) {
	e.plasticityRule = rule
}

// RemovePlasticity uninstalls any previously installed plasticity rule.
func (e *Engine) RemovePlasticity() {
	e.plasticityRule = nil
}

// CurrentTime returns T after the most recently completed Step.
func (e *Engine) CurrentTime() uint64 {
	return e.wheel.CurrentTime()
}

// NeuronCount reports how many neurons have been allocated.
func (e *Engine) NeuronCount() uint {
	return uint(len(e.neurons))
}

// EdgeCount reports how many edges have been allocated.
func (e *Engine) EdgeCount() uint {
	return uint(e.graph.EdgeCount())
}

// WheelSize returns the time wheel's fixed horizon.
func (e *Engine) WheelSize() uint64 {
	return e.wheel.Size()
}

// Diagnostics returns a snapshot of the accumulated per-tick drop counters.
func (e *Engine) Diagnostics() diagnostics.Counters {
	return e.diag
}

// Step executes exactly one tick: pop the wheel's current slot, deliver
// each popped spike across the hypergraph honoring budgets, reschedule any
// newly fired spikes at their delivery time, and return the events popped
// at this tick.
func (e *Engine) Step() []SpikeEvent {
	tick := e.wheel.CurrentTime()
	e.diag.TicksRun++

	if e.plasticityRule != nil {
		e.plasticityRule.DecayTraces(tick)
	}

	popped := e.wheel.Advance()
	result := make([]SpikeEvent, len(popped))

	edgesVisitedThisTick := 0
	spikesScheduledThisTick := 0
	edgeBudgetExhausted := false
	spikeBudgetExhausted := false

	for i, ev := range popped {
		result[i] = SpikeEvent{NeuronID: ev.NeuronID, Time: ev.Time}

		if e.plasticityRule != nil {
			e.plasticityRule.OnPreSpike(ev.NeuronID, tick)
		}

		adjacent := e.graph.AdjacentEdges(ev.NeuronID)
		if edgeBudgetExhausted {
			e.diag.EdgesDropped += uint64(len(adjacent))
			continue
		}

		for _, eid := range adjacent {
			if e.budget.MaxEdgesPerTick > 0 && edgesVisitedThisTick >= e.budget.MaxEdgesPerTick {
				remaining := len(adjacent) - indexOf(adjacent, eid)
				e.diag.EdgesDropped += uint64(remaining)
				edgeBudgetExhausted = true
				break
			}
			edgesVisitedThisTick++
			e.diag.EdgesVisited++

			edge, ok := e.graph.Edge(eid)
			if !ok {
				continue
			}
			deliveryTime := tick + edge.Delay

			for _, target := range edge.Targets {
				// inject unconditionally: membrane accumulation and the
				// refractory decrement happen on every attempt regardless of
				// budgets. Only scheduling the resulting spike is gated.
				fired := e.neurons[target].Inject(edge.Weight)
				if !fired {
					continue
				}

				if spikeBudgetExhausted || (e.budget.MaxSpikesPerTick > 0 && spikesScheduledThisTick >= e.budget.MaxSpikesPerTick) {
					spikeBudgetExhausted = true
					e.diag.SpikesDropped++
					continue
				}

				// Delivery is always within horizon: deliveryTime - tick == edge.Delay < W.
				_ = e.wheel.Schedule(timewheel.SpikeEvent{NeuronID: target, Time: deliveryTime})
				spikesScheduledThisTick++
				e.diag.SpikesScheduled++

				if e.plasticityRule != nil {
					e.plasticityRule.OnPostSpike(target, deliveryTime)
					dt := int64(deliveryTime) - int64(tick)
					updated := e.plasticityRule.OnWeightUpdate(eid, ev.NeuronID, target, edge.Weight, dt)
					e.graph.SetWeight(eid, updated)
				}
			}
		}
	}

	return result
}

// RunTicks steps the engine n times, concatenating the popped spikes in
// order.
func (e *Engine) RunTicks(n uint64) []SpikeEvent {
	var all []SpikeEvent
	for i := uint64(0); i < n; i++ {
		all = append(all, e.Step()...)
	}
	return all
}

// RunUntil steps the engine until CurrentTime() == targetTime,
// concatenating the popped spikes in order. If the engine is already past
// targetTime, it returns immediately with no events.
func (e *Engine) RunUntil(targetTime uint64) []SpikeEvent {
	var all []SpikeEvent
	for e.wheel.CurrentTime() < targetTime {
		all = append(all, e.Step()...)
	}
	return all
}

func indexOf(ids []int, id int) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
