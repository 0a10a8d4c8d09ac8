// Package config loads the optional platecut configuration file.
//
// The file is YAML; every field is optional and CLI flags override file
// values:
//
//	sp1_method: knapsack        # knapsack | arcflow | dp
//	sp2_method: knapsack
//	time_limit_sec: 60
//	max_bp_nodes: 0             # 0 = no cap
//	zero_tol: 1e-6
//	rc_tol: 1e-6
//	arc_int_tol: 1e-4
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/platecut/pkg/pricing"
	"github.com/vanderheijden86/platecut/pkg/solver"
)

// File mirrors the YAML document.
type File struct {
	SP1Method    string  `yaml:"sp1_method,omitempty"`
	SP2Method    string  `yaml:"sp2_method,omitempty"`
	TimeLimitSec float64 `yaml:"time_limit_sec,omitempty"`
	MaxBPNodes   int     `yaml:"max_bp_nodes,omitempty"`
	ZeroTol      float64 `yaml:"zero_tol,omitempty"`
	RcTol        float64 `yaml:"rc_tol,omitempty"`
	ArcIntTol    float64 `yaml:"arc_int_tol,omitempty"`
}

// Default returns the stock configuration: knapsack pricing at the root,
// a one-minute budget, spec tolerances.
func Default() File {
	return File{
		SP1Method:    "knapsack",
		SP2Method:    "knapsack",
		TimeLimitSec: 60,
	}
}

// Load reads path and overlays it on the defaults. A missing path ("")
// returns the defaults unchanged.
func Load(path string) (File, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// SolverConfig translates the file into the solver's Config.
func (f File) SolverConfig() (solver.Config, error) {
	sp1, err := pricing.ParseMethod(f.SP1Method)
	if err != nil {
		return solver.Config{}, fmt.Errorf("sp1_method: %w", err)
	}
	sp2, err := pricing.ParseMethod(f.SP2Method)
	if err != nil {
		return solver.Config{}, fmt.Errorf("sp2_method: %w", err)
	}
	cfg := solver.Config{
		SP1Method: sp1,
		SP2Method: sp2,
		MaxNodes:  f.MaxBPNodes,
		ZeroTol:   f.ZeroTol,
		RcTol:     f.RcTol,
		ArcIntTol: f.ArcIntTol,
	}
	if f.TimeLimitSec > 0 {
		cfg.TimeLimit = time.Duration(f.TimeLimitSec * float64(time.Second))
	}
	return cfg.Normalize(), nil
}
