// Package plasticity implements the optional trace-based spike-timing
// dependent plasticity (STDP) hook protocol the engine calls from within
// Step when a rule has been installed.
package plasticity

import "hyperspike/internal/fixedpoint"

// Rule is the open-world capability the engine installs to receive
// plasticity hooks. The engine performs no learning unless a Rule is
// installed.
type Rule interface {
	// DecayTraces multiplies every per-neuron trace by a configured decay
	// factor. Called once per tick, before any spikes are delivered.
	DecayTraces(now uint64)
	// OnPreSpike is invoked when neuron n emits the spike popped at tick now.
	OnPreSpike(n int, now uint64)
	// OnPostSpike is invoked when neuron n fires as a result of a delivery
	// at tick now.
	OnPostSpike(n int, now uint64)
	// OnWeightUpdate computes and returns the updated weight for the edge
	// connecting pre to post. dt is the tick distance the engine observed
	// between the delivery and its trigger; the bundled STDP rule ignores
	// it and works from trace magnitude alone, but it's part of the
	// protocol for rules that want it.
	OnWeightUpdate(edgeID, pre, post int, weight fixedpoint.Fixed, dt int64) fixedpoint.Fixed
}

// Params configures the bundled trace-based STDP rule.
type Params struct {
	APlus          float64
	AMinus         float64
	DecayFactor    float64
	WMin           float64
	WMax           float64
	PreIncrement   float64
	PostIncrement  float64
}

// DefaultParams mirrors the reference model's QuantizedStdp::with_defaults.
func DefaultParams() Params {
	return Params{
		APlus:         0.01,
		AMinus:        0.012,
		DecayFactor:   0.96,
		WMin:          0.0,
		WMax:          1.0,
		PreIncrement:  1.0,
		PostIncrement: 1.0,
	}
}

// STDP is the bundled trace-based plasticity rule: per-neuron pre/post
// traces decay each tick, and every update moves an edge's weight by
// A+ * pre_trace[pre] - A- * post_trace[post], clamped to [WMin, WMax].
// Whichever trace dominates at update time sets the sign; there is no
// separate causal/anti-causal branch.
type STDP struct {
	params Params

	aPlus   fixedpoint.Fixed
	aMinus  fixedpoint.Fixed
	decay   fixedpoint.Fixed
	wMin    fixedpoint.Fixed
	wMax    fixedpoint.Fixed
	preInc  fixedpoint.Fixed
	postInc fixedpoint.Fixed

	preTrace  map[int]fixedpoint.Fixed
	postTrace map[int]fixedpoint.Fixed
	lastPre   map[int]uint64
	lastPost  map[int]uint64
}

// NewSTDP constructs a bundled STDP rule from the given parameters.
func NewSTDP(p Params) *STDP {
	return &STDP{
		params:    p,
		aPlus:     fixedpoint.FromFloat(p.APlus),
		aMinus:    fixedpoint.FromFloat(p.AMinus),
		decay:     fixedpoint.FromFloat(p.DecayFactor),
		wMin:      fixedpoint.FromFloat(p.WMin),
		wMax:      fixedpoint.FromFloat(p.WMax),
		preInc:    fixedpoint.FromFloat(p.PreIncrement),
		postInc:   fixedpoint.FromFloat(p.PostIncrement),
		preTrace:  make(map[int]fixedpoint.Fixed),
		postTrace: make(map[int]fixedpoint.Fixed),
		lastPre:   make(map[int]uint64),
		lastPost:  make(map[int]uint64),
	}
}

// Traces returns the current pre- and post-trace for diagnostics/tests.
func (s *STDP) Traces(n int) (pre, post fixedpoint.Fixed) {
	return s.preTrace[n], s.postTrace[n]
}

// DecayTraces implements Rule.
func (s *STDP) DecayTraces(_ uint64) {
	for n, v := range s.preTrace {
		s.preTrace[n] = v.Mul(s.decay)
	}
	for n, v := range s.postTrace {
		s.postTrace[n] = v.Mul(s.decay)
	}
}

// OnPreSpike implements Rule.
func (s *STDP) OnPreSpike(n int, now uint64) {
	s.preTrace[n] = s.preTrace[n].Add(s.preInc)
	s.lastPre[n] = now
}

// OnPostSpike implements Rule.
func (s *STDP) OnPostSpike(n int, now uint64) {
	s.postTrace[n] = s.postTrace[n].Add(s.postInc)
	s.lastPost[n] = now
}

// OnWeightUpdate implements Rule, mirroring QuantizedStdp::apply_edge:
// potentiation from the surviving pre-synaptic trace and depression from
// the post-synaptic one combine on every call, so the net direction
// follows whichever trace currently dominates rather than the order the
// two spikes were reported in.
func (s *STDP) OnWeightUpdate(_ int, pre, post int, weight fixedpoint.Fixed, _ int64) fixedpoint.Fixed {
	delta := s.aPlus.Mul(s.preTrace[pre]).Sub(s.aMinus.Mul(s.postTrace[post]))
	next := weight.Add(delta)
	if next < s.wMin {
		return s.wMin
	}
	if next > s.wMax {
		return s.wMax
	}
	return next
}
