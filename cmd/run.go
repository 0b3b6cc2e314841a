package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/agallais/Quantum-aqora/internal/config"
	"github.com/agallais/Quantum-aqora/internal/geom"
	"github.com/agallais/Quantum-aqora/internal/model"
	"github.com/agallais/Quantum-aqora/internal/opt"
	"github.com/agallais/Quantum-aqora/internal/store"
	"github.com/agallais/Quantum-aqora/internal/vqe"
)

var (
	geometryPath string
	configPath   string
	maxIters     int
	tolerance    float64
	patience     int
	learnRate    float64
	seedGlobal   bool
	dataDir      string
	noSave       bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single optimization",
	Long:  `Reads an XYZ geometry file, minimizes its energy and reports the result.`,
	RunE:  runOptimization,
}

func init() {
	runCmd.Flags().StringVar(&geometryPath, "geometry", "", "Geometry file in XYZ format (required)")
	runCmd.Flags().StringVar(&configPath, "config", "", "YAML run config file")
	runCmd.Flags().IntVar(&maxIters, "iters", 0, "Max iterations (overrides config)")
	runCmd.Flags().Float64Var(&tolerance, "tol", -1, "Convergence tolerance (overrides config)")
	runCmd.Flags().IntVar(&patience, "patience", 0, "Consecutive quiet iterations required (overrides config)")
	runCmd.Flags().Float64Var(&learnRate, "rate", 0, "Gradient descent learning rate (overrides config)")
	runCmd.Flags().BoolVar(&seedGlobal, "seed-global", false, "Seed the starting point with a Mayfly global search")
	runCmd.Flags().StringVar(&dataDir, "data", "./data", "Directory for run records and traces")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "Skip persisting the run record")

	runCmd.MarkFlagRequired("geometry")
	rootCmd.AddCommand(runCmd)
}

func runOptimization(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}

	text, err := os.ReadFile(geometryPath)
	if err != nil {
		return fmt.Errorf("reading geometry file: %w", err)
	}

	runID := uuid.New().String()
	slog.Info("Starting optimization", "run_id", runID, "geometry", geometryPath)

	var trace *store.TraceWriter
	if !noSave {
		trace, err = store.NewTraceWriter(cfg.DataDir, runID)
		if err != nil {
			return fmt.Errorf("opening trace: %w", err)
		}
		defer trace.Close()
	}

	pipeline := &vqe.Pipeline{
		Build: func(mol *geom.Molecule) (vqe.Evaluator, error) {
			return model.New(mol)
		},
		Optimizer: opt.NewGradientDescent(cfg.LearnRate, cfg.GradStep),
		Settings: vqe.Settings{
			MaxIterations: cfg.MaxIterations,
			Tolerance:     cfg.Tolerance,
			Patience:      cfg.Patience,
			Observe: func(iteration int, energy float64) {
				if trace == nil {
					return
				}
				entry := store.TraceEntry{Iteration: iteration, Energy: energy, Timestamp: time.Now()}
				if err := trace.Write(entry); err != nil {
					slog.Warn("Failed to record trace entry", "run_id", runID, "iteration", iteration, "error", err)
				}
			},
		},
	}
	if cfg.Seeding.Enabled {
		pipeline.Seeder = opt.NewMayflySeeder(cfg.Seeding.Iterations, cfg.Seeding.Population, cfg.Seeding.Seed)
	}

	start := time.Now()
	result, err := pipeline.Run(string(text))
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if !noSave {
		mol, err := geom.Parse(string(text))
		if err != nil {
			return err
		}
		st, err := store.NewFSStore(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("opening run store: %w", err)
		}
		record := &store.RunRecord{
			RunID:      runID,
			Formula:    mol.Formula(),
			Geometry:   string(text),
			Params:     result.Params,
			Energy:     result.Cost,
			Iterations: result.Iterations,
			Converged:  result.Converged,
			Timestamp:  time.Now(),
			Config:     cfg,
		}
		if err := st.SaveRun(record); err != nil {
			return fmt.Errorf("persisting run record: %w", err)
		}
	}

	slog.Info("Optimization complete",
		"run_id", runID,
		"elapsed", elapsed,
		"energy", result.Cost,
		"iterations", result.Iterations,
		"converged", result.Converged,
	)

	status := "converged"
	if !result.Converged {
		status = "iteration budget exhausted"
	}
	fmt.Printf("Final energy: %.8f (%s after %d iterations)\n", result.Cost, status, result.Iterations)

	return nil
}

// loadRunConfig merges defaults, the optional config file and flag overrides.
func loadRunConfig(cmd *cobra.Command) (config.RunConfig, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if maxIters > 0 {
		cfg.MaxIterations = maxIters
	}
	if tolerance >= 0 {
		cfg.Tolerance = tolerance
	}
	if patience > 0 {
		cfg.Patience = patience
	}
	if learnRate > 0 {
		cfg.LearnRate = learnRate
	}
	if seedGlobal {
		cfg.Seeding.Enabled = true
	}
	// The --data default is a real path, so only an explicit flag may
	// override a dataDir from the config file.
	if cmd.Flags().Changed("data") {
		cfg.DataDir = dataDir
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
