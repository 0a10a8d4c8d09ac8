package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vanderheijden86/platecut/pkg/pricing"
)

func TestDefaultSolverConfig(t *testing.T) {
	cfg, err := Default().SolverConfig()
	if err != nil {
		t.Fatalf("SolverConfig: %v", err)
	}
	if cfg.SP1Method != pricing.Knapsack || cfg.SP2Method != pricing.Knapsack {
		t.Errorf("default methods = %v/%v, want knapsack", cfg.SP1Method, cfg.SP2Method)
	}
	if cfg.TimeLimit != time.Minute {
		t.Errorf("time limit = %v, want 1m", cfg.TimeLimit)
	}
	// Normalize fills the spec tolerances.
	if cfg.ZeroTol != 1e-6 || cfg.RcTol != 1e-6 || cfg.ArcIntTol != 1e-4 {
		t.Errorf("tolerances = %v/%v/%v", cfg.ZeroTol, cfg.RcTol, cfg.ArcIntTol)
	}
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "platecut.yaml")
	doc := "sp1_method: arcflow\ntime_limit_sec: 2.5\nmax_bp_nodes: 100\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	file, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg, err := file.SolverConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SP1Method != pricing.ArcFlow {
		t.Errorf("sp1 = %v, want arcflow", cfg.SP1Method)
	}
	// Unset fields keep their defaults.
	if cfg.SP2Method != pricing.Knapsack {
		t.Errorf("sp2 = %v, want knapsack default", cfg.SP2Method)
	}
	if cfg.TimeLimit != 2500*time.Millisecond {
		t.Errorf("time limit = %v, want 2.5s", cfg.TimeLimit)
	}
	if cfg.MaxNodes != 100 {
		t.Errorf("max nodes = %d, want 100", cfg.MaxNodes)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte(":\tnot yaml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestBadMethodRejected(t *testing.T) {
	f := Default()
	f.SP2Method = "cplex"
	if _, err := f.SolverConfig(); err == nil {
		t.Error("expected error for unknown method")
	}
}
