package main

import (
	"encoding/json"
	"fmt"
	"os"

	"hyperspike/pkg/hyperspike"
)

// neuronSpec and edgeSpec mirror hyperspike.Client's AddNeuron/AddEdge
// parameters, letting a topology be described declaratively instead of
// built up through repeated CLI invocations. There is no pack precedent
// for a topology file format, so the field names follow spec.md's own
// operation signatures directly.
type neuronSpec struct {
	Threshold  float64 `json:"threshold"`
	Refractory uint    `json:"refractory"`
}

type edgeSpec struct {
	Sources []int   `json:"sources"`
	Targets []int   `json:"targets"`
	Weight  float64 `json:"weight"`
	Delay   uint64  `json:"delay"`
}

type spikeSpec struct {
	NeuronID int    `json:"neuron_id"`
	Time     uint64 `json:"time"`
}

type topology struct {
	Neurons []neuronSpec `json:"neurons"`
	Edges   []edgeSpec   `json:"edges"`
	Spikes  []spikeSpec  `json:"spikes"`
}

func loadTopology(path string) (topology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return topology{}, fmt.Errorf("read topology: %w", err)
	}
	var t topology
	if err := json.Unmarshal(data, &t); err != nil {
		return topology{}, fmt.Errorf("parse topology: %w", err)
	}
	return t, nil
}

// applyTopology seeds c with every neuron, edge, and initial spike in t, in
// file order, so that neuron ids line up with the order they appear under
// "neurons".
func applyTopology(c *hyperspike.Client, t topology) error {
	for _, n := range t.Neurons {
		c.AddNeuron(n.Threshold, n.Refractory)
	}
	for _, e := range t.Edges {
		if _, err := c.AddEdge(e.Sources, e.Targets, e.Weight, e.Delay); err != nil {
			return fmt.Errorf("add edge %+v: %w", e, err)
		}
	}
	for _, s := range t.Spikes {
		if err := c.ScheduleSpike(s.NeuronID, s.Time); err != nil {
			return fmt.Errorf("schedule spike %+v: %w", s, err)
		}
	}
	return nil
}
