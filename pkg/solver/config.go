package solver

import (
	"time"

	"github.com/vanderheijden86/platecut/pkg/pricing"
)

// Config holds the solver's tunables. Zero values are filled in by
// Normalize, so a literal Config{} solves with defaults.
type Config struct {
	// SP1Method and SP2Method pick the pricing backends for unconstrained
	// nodes. Nodes with inherited arc constraints always price with the
	// arc-flow backend.
	SP1Method pricing.Method
	SP2Method pricing.Method

	// TimeLimit bounds the wall clock; 0 means no limit. The run always
	// returns a feasible plan (anytime fallback on expiry).
	TimeLimit time.Duration
	// MaxNodes caps the branch-and-price tree size; 0 means no cap.
	MaxNodes int

	// MaxCGIter is a sanity cap on column-generation iterations per node;
	// exceeding it indicates a bug and is logged, not fatal.
	MaxCGIter int

	// ZeroTol treats smaller primal values as zero. RcTol is the strict
	// improvement margin for priced columns. ArcIntTol decides when an
	// aggregated arc flow counts as integral.
	ZeroTol   float64
	RcTol     float64
	ArcIntTol float64
}

// Normalize fills unset fields with defaults.
func (c Config) Normalize() Config {
	if c.MaxCGIter <= 0 {
		c.MaxCGIter = 10000
	}
	if c.ZeroTol <= 0 {
		c.ZeroTol = 1e-6
	}
	if c.RcTol <= 0 {
		c.RcTol = 1e-6
	}
	if c.ArcIntTol <= 0 {
		c.ArcIntTol = 1e-4
	}
	return c
}
