// Command platecut solves two-stage guillotine 2D cutting-stock instances
// by branch-and-price with arc-flow branching.
//
// Usage:
//
//	platecut -input <file|dir> [-out <dir>] [-svg] [-png] [-history <db>]
//	         [-config <yaml>] [-sp1 <method>] [-sp2 <method>]
//	         [-time-limit <sec>] [-max-nodes <n>] [-quiet]
//
// Exit codes: 0 normal termination (the gap may be positive), 1 input
// error, 2 solver/backend failure.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vanderheijden86/platecut/pkg/config"
	"github.com/vanderheijden86/platecut/pkg/debug"
	"github.com/vanderheijden86/platecut/pkg/export"
	"github.com/vanderheijden86/platecut/pkg/history"
	"github.com/vanderheijden86/platecut/pkg/loader"
	"github.com/vanderheijden86/platecut/pkg/model"
	"github.com/vanderheijden86/platecut/pkg/solver"
	"github.com/vanderheijden86/platecut/pkg/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	input := flag.String("input", "", "Instance file, or a directory holding *.csv instances (newest wins)")
	outDir := flag.String("out", "results", "Directory for the JSON plan (and SVG/PNG when requested)")
	svgFlag := flag.Bool("svg", false, "Also render the plan as SVG")
	pngFlag := flag.Bool("png", false, "Also render the plan as PNG")
	historyPath := flag.String("history", "", "Record the run in this SQLite history database")
	configPath := flag.String("config", "", "YAML configuration file")
	sp1Flag := flag.String("sp1", "", "SP1 pricing method: knapsack, arcflow or dp")
	sp2Flag := flag.String("sp2", "", "SP2 pricing method: knapsack, arcflow or dp")
	timeLimit := flag.Float64("time-limit", 0, "Wall-clock budget in seconds (0 = config default)")
	maxNodes := flag.Int("max-nodes", -1, "Branch-and-price node cap (-1 = config default, 0 = unlimited)")
	quiet := flag.Bool("quiet", false, "Suppress progress output")
	versionFlag := flag.Bool("version", false, "Show version")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("platecut %s\n", version.Version)
		return 0
	}
	if *input == "" {
		fmt.Fprintln(os.Stderr, "platecut: -input is required")
		flag.PrintDefaults()
		return 1
	}

	fileCfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "platecut: %v\n", err)
		return 1
	}
	// Flags override the file.
	if *sp1Flag != "" {
		fileCfg.SP1Method = *sp1Flag
	}
	if *sp2Flag != "" {
		fileCfg.SP2Method = *sp2Flag
	}
	if *timeLimit > 0 {
		fileCfg.TimeLimitSec = *timeLimit
	}
	if *maxNodes >= 0 {
		fileCfg.MaxBPNodes = *maxNodes
	}
	cfg, err := fileCfg.SolverConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "platecut: %v\n", err)
		return 1
	}

	inst, instanceFile, err := loader.Load(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "platecut: %v\n", err)
		return 1
	}

	if !*quiet {
		fmt.Printf("platecut %s\n", version.Version)
		fmt.Printf("instance: %s (stock %dx%d, %d item types, %d pieces)\n",
			instanceFile, inst.StockWidth, inst.StockLength, len(inst.Items), inst.TotalDemand())
		fmt.Printf("pricing: sp1=%v sp2=%v, time limit %s\n", cfg.SP1Method, cfg.SP2Method, cfg.TimeLimit)
	}
	debug.Log("strip types: %d, sp1 method %v", len(inst.Strips), cfg.SP1Method)

	trace := solver.Discard()
	if debug.Enabled() {
		trace = solver.NewTrace(os.Stderr)
	}

	started := time.Now()
	res, err := solver.Solve(inst, cfg, trace)
	if err != nil {
		fmt.Fprintf(os.Stderr, "platecut: solve failed: %v\n", err)
		if errors.Is(err, model.ErrBadInstance) {
			return 1
		}
		return 2
	}
	debug.LogTiming("solve", res.Elapsed)

	plan := export.BuildPlan(inst, res, instanceFile, started)

	stamp := started.Format("20060102_150405")
	jsonPath := filepath.Join(*outDir, fmt.Sprintf("solution_%s.json", stamp))
	if err := export.WriteJSON(plan, jsonPath); err != nil {
		fmt.Fprintf(os.Stderr, "platecut: %v\n", err)
		return 2
	}
	if *svgFlag {
		svgPath := filepath.Join(*outDir, fmt.Sprintf("solution_%s.svg", stamp))
		if err := export.WriteSVG(plan, svgPath); err != nil {
			fmt.Fprintf(os.Stderr, "platecut: %v\n", err)
			return 2
		}
	}
	if *pngFlag {
		pngPath := filepath.Join(*outDir, fmt.Sprintf("solution_%s.png", stamp))
		if err := export.WritePNG(plan, pngPath); err != nil {
			fmt.Fprintf(os.Stderr, "platecut: %v\n", err)
			return 2
		}
	}

	if *historyPath != "" {
		if err := recordRun(*historyPath, instanceFile, inst, res, started); err != nil {
			// History is best-effort; the solve itself succeeded.
			fmt.Fprintf(os.Stderr, "platecut: %v\n", err)
		}
	}

	if !*quiet {
		printSummary(res, plan, jsonPath)
	}
	return 0
}

func printSummary(res *solver.Result, plan *export.Plan, jsonPath string) {
	status := "optimal"
	if !res.Optimal {
		status = fmt.Sprintf("gap %.2f%%", res.Gap*100)
	}
	if res.TimedOut {
		status += " (budget exhausted)"
	}
	fmt.Printf("plates: %d (%s)\n", plan.Summary.NumPlates, status)
	fmt.Printf("root lb: %.4f, nodes: %d, utilization: %.1f%%, elapsed: %s\n",
		res.RootLB, res.Nodes, plan.Summary.TotalUtilization*100, res.Elapsed.Round(time.Millisecond))
	fmt.Printf("plan: %s\n", jsonPath)
}

func recordRun(path, instanceFile string, inst *model.Instance, res *solver.Result, started time.Time) error {
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Record(history.Run{
		InstanceFile: instanceFile,
		StartedAt:    started,
		StockWidth:   inst.StockWidth,
		StockLength:  inst.StockLength,
		ItemTypes:    len(inst.Items),
		Plates:       res.Plates(),
		Objective:    res.Objective,
		RootLB:       res.RootLB,
		Gap:          res.Gap,
		Nodes:        res.Nodes,
		TimedOut:     res.TimedOut,
		Elapsed:      res.Elapsed,
	})
}
