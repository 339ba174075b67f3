// Package main searches spring stiffness and damping for parameters that
// settle a rope quickly without overshooting.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/ropeslack/config"
)

// EvalRow is one line of tune_log.csv.
type EvalRow struct {
	Eval         int     `csv:"eval"`
	Fitness      float64 `csv:"fitness"`
	Stiffness    float64 `csv:"stiffness"`
	Damping      float64 `csv:"damping"`
	SettleFrames int     `csv:"settle_frames"`
	Overshoot    float64 `csv:"overshoot"`
	Stable       bool    `csv:"stable"`
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	maxFrames := flag.Int("max-frames", 2000, "Frames allowed per scenario before it counts as unsettled")
	maxEvals := flag.Int("max-evals", 300, "Maximum number of evaluations")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := config.Cfg()

	params := NewParamVector(baseCfg)
	evaluator := NewFitnessEvaluator(
		baseCfg.Spring.Mass,
		baseCfg.Derived.Sim,
		baseCfg.Physics.SlackLength,
		baseCfg.Physics.SettleEpsilon,
		*maxFrames,
	)

	var (
		rows        []EvalRow
		bestFitness = 1e18
		bestParams  []float64
		startTime   = time.Now()
	)

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Clamp(params.Denormalize(x))
			res := evaluator.Evaluate(raw[0], raw[1])

			rows = append(rows, EvalRow{
				Eval:         len(rows) + 1,
				Fitness:      res.Fitness,
				Stiffness:    raw[0],
				Damping:      raw[1],
				SettleFrames: res.SettleFrames,
				Overshoot:    res.Overshoot,
				Stable:       res.Stable,
			})
			if res.Fitness < bestFitness {
				bestFitness = res.Fitness
				bestParams = raw
				fmt.Printf("Eval %d: k=%.4f c=%.4f settle=%d overshoot=%.3f fitness=%.2f\n",
					len(rows), raw[0], raw[1], res.SettleFrames, res.Overshoot, res.Fitness)
			}
			return res.Fitness
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0,
	}
	method := &optimize.NelderMead{}

	initRaw := params.Clamp(params.DefaultVector())
	initX := params.Normalize(initRaw)
	baseline := evaluator.Evaluate(initRaw[0], initRaw[1])
	fmt.Printf("Starting Nelder-Mead over %d parameters, mass=%.3f, max_evals=%d\n",
		params.Dim(), baseCfg.Spring.Mass, *maxEvals)
	fmt.Printf("Baseline: k=%.4f c=%.4f settle=%d overshoot=%.3f fitness=%.2f\n",
		initRaw[0], initRaw[1], baseline.SettleFrames, baseline.Overshoot, baseline.Fitness)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}
	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}

	fmt.Printf("\nTuning complete after %d evaluations in %s\n", len(rows), time.Since(startTime).Round(time.Millisecond))

	logPath := filepath.Join(*outputDir, "tune_log.csv")
	if err := writeLog(logPath, rows); err != nil {
		log.Printf("failed to write log: %v", err)
	}

	if bestParams == nil {
		log.Fatal("no evaluations completed")
	}
	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.6f\n", spec.Path, bestParams[i])
	}

	bestCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to reload config: %v", err)
	}
	params.ApplyToConfig(bestCfg, bestParams)

	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write best config: %v", err)
	} else {
		fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	}
}

func writeLog(path string, rows []EvalRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating log: %w", err)
	}
	defer f.Close()
	if err := gocsv.Marshal(rows, f); err != nil {
		return fmt.Errorf("writing log: %w", err)
	}
	return nil
}
