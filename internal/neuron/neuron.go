// Package neuron implements the fixed-point integrate-and-fire neuron
// state machine: membrane accumulation, threshold crossing, and a
// decrementing refractory counter.
package neuron

import "hyperspike/internal/fixedpoint"

// Neuron holds one integrate-and-fire cell's state.
type Neuron struct {
	ID               int
	Membrane         fixedpoint.Fixed
	Threshold        fixedpoint.Fixed
	RefractoryPeriod uint

	refractoryRemaining uint
}

// New constructs a resting neuron with the given threshold and refractory
// period (in ticks; 0 means no refractory gating).
func New(id int, threshold fixedpoint.Fixed, refractoryPeriod uint) *Neuron {
	return &Neuron{
		ID:               id,
		Threshold:        threshold,
		RefractoryPeriod: refractoryPeriod,
	}
}

// RefractoryRemaining reports how many more injections will be gated
// before the neuron returns to RESTING.
func (n *Neuron) RefractoryRemaining() uint {
	return n.refractoryRemaining
}

// Inject delivers weight into the membrane and decides whether the neuron
// fires. The refractory counter is decremented on every call, including
// sub-threshold ones, per the silent-refractory-window model.
func (n *Neuron) Inject(weight fixedpoint.Fixed) (fired bool) {
	if n.refractoryRemaining > 0 {
		n.refractoryRemaining--
		return false
	}

	n.Membrane = n.Membrane.Add(weight)
	if n.Membrane >= n.Threshold {
		n.Membrane = 0
		n.refractoryRemaining = n.RefractoryPeriod
		return true
	}
	return false
}
