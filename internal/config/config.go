// Package config is the thin builder/configuration surface embedders and
// cmd/hyperspikectl use to construct an engine, grounded on the teacher's
// pkg/protogonos.Options defaulting style and its cmd/protogonosctl/config.go
// environment/flag-override conventions.
package config

import (
	"os"
	"strconv"
)

const (
	// EnvBudgetEdges names the host-only environment variable that overrides
	// the per-tick edge-visit budget. The core engine never reads this; only
	// cmd/hyperspikectl and other hosts do.
	EnvBudgetEdges = "BUDGET_EDGES"
	// EnvBudgetSpikes names the host-only environment variable that overrides
	// the per-tick spike-schedule budget.
	EnvBudgetSpikes = "BUDGET_SPIKES"
	// EnvPlasticity names the host-only environment variable selecting which
	// plasticity rule a host installs by default ("none" or "stdp").
	EnvPlasticity = "PLASTICITY"
)

const (
	defaultWheelSize  = uint64(1024)
	defaultThreshold  = 1.0
	defaultRefractory = uint(0)
)

// Options configures an embedder-constructed engine. Zero values fall back
// to the defaults below; it carries no behavior of its own.
type Options struct {
	WheelSize         uint64
	DefaultThreshold  float64
	DefaultRefractory uint
	MaxEdgesPerTick   int
	MaxSpikesPerTick  int
	Plasticity        string
	StoreKind         string
	StorePath         string
}

// WithDefaults returns a copy of opts with every zero field replaced by its
// default value. Budgets are left at zero, since "unlimited" is itself a
// meaningful default; an empty plasticity selection becomes "none".
func (o Options) WithDefaults() Options {
	if o.WheelSize == 0 {
		o.WheelSize = defaultWheelSize
	}
	if o.DefaultThreshold <= 0 {
		o.DefaultThreshold = defaultThreshold
	}
	if o.Plasticity == "" {
		o.Plasticity = "none"
	}
	if o.StoreKind == "" {
		o.StoreKind = "memory"
	}
	return o
}

// FromEnv builds Options by reading the host-only BUDGET_EDGES,
// BUDGET_SPIKES, and PLASTICITY environment variables documented for
// cmd/hyperspikectl. Malformed integer values are ignored and leave the
// corresponding field at zero (unlimited).
func FromEnv() Options {
	var opts Options
	if v, ok := os.LookupEnv(EnvBudgetEdges); ok {
		if n, err := strconv.Atoi(v); err == nil {
			opts.MaxEdgesPerTick = n
		}
	}
	if v, ok := os.LookupEnv(EnvBudgetSpikes); ok {
		if n, err := strconv.Atoi(v); err == nil {
			opts.MaxSpikesPerTick = n
		}
	}
	opts.Plasticity = os.Getenv(EnvPlasticity)
	return opts
}
