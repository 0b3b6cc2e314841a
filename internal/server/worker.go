package server

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/agallais/Quantum-aqora/internal/config"
	"github.com/agallais/Quantum-aqora/internal/geom"
	"github.com/agallais/Quantum-aqora/internal/model"
	"github.com/agallais/Quantum-aqora/internal/opt"
	"github.com/agallais/Quantum-aqora/internal/store"
	"github.com/agallais/Quantum-aqora/internal/vqe"
)

// runJob executes one optimization job synchronously. Callers run it on a
// goroutine; the convergence loop itself offers no suspension points, so a
// job in flight always finishes or fails on its own.
func runJob(jm *JobManager, st store.Store, dataDir, jobID string) error {
	job, ok := jm.GetJob(jobID)
	if !ok {
		return fmt.Errorf("job not found: %s", jobID)
	}

	if err := jm.UpdateJob(jobID, func(j *Job) { j.State = StateRunning }); err != nil {
		return err
	}
	slog.Info("Starting run", "job_id", jobID)

	cfg := job.Request.Config
	if err := cfg.Validate(); err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}

	trace, err := store.NewTraceWriter(dataDir, jobID)
	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}
	defer trace.Close()

	pipeline := newPipeline(cfg)
	pipeline.Settings.Observe = func(iteration int, energy float64) {
		now := time.Now()
		entry := store.TraceEntry{Iteration: iteration, Energy: energy, Timestamp: now}
		if err := trace.Write(entry); err != nil {
			slog.Warn("Failed to record trace entry", "job_id", jobID, "iteration", iteration, "error", err)
		}
		jm.UpdateJob(jobID, func(j *Job) {
			j.Iterations = iteration
			j.Energy = energy
		})
		jm.broadcaster.Broadcast(ProgressEvent{
			JobID:     jobID,
			State:     StateRunning,
			Iteration: iteration,
			Energy:    energy,
			Timestamp: now,
		})
	}

	result, err := pipeline.Run(job.Request.Geometry)
	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}

	mol, err := geom.Parse(job.Request.Geometry)
	if err != nil {
		// Unreachable after a successful pipeline run, but fail loudly.
		markJobFailed(jm, jobID, err)
		return err
	}

	if err := trace.Flush(); err != nil {
		slog.Warn("Failed to flush trace", "job_id", jobID, "error", err)
	}

	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.Formula = mol.Formula()
		j.Params = result.Params
		j.Energy = result.Cost
		j.Iterations = result.Iterations
		j.Converged = result.Converged
		j.EndTime = &endTime
	})

	record := &store.RunRecord{
		RunID:      jobID,
		Formula:    mol.Formula(),
		Geometry:   job.Request.Geometry,
		Params:     result.Params,
		Energy:     result.Cost,
		Iterations: result.Iterations,
		Converged:  result.Converged,
		Timestamp:  endTime,
		Config:     cfg,
	}
	if err := st.SaveRun(record); err != nil {
		slog.Error("Failed to persist run record", "job_id", jobID, "error", err)
	}

	slog.Info("Run completed",
		"job_id", jobID,
		"energy", result.Cost,
		"iterations", result.Iterations,
		"converged", result.Converged,
	)

	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:     jobID,
		State:     StateCompleted,
		Iteration: result.Iterations,
		Energy:    result.Cost,
		Timestamp: time.Now(),
	})
	return nil
}

// newPipeline assembles the collaborators for a run config.
func newPipeline(cfg config.RunConfig) *vqe.Pipeline {
	p := &vqe.Pipeline{
		Build: func(mol *geom.Molecule) (vqe.Evaluator, error) {
			return model.New(mol)
		},
		Optimizer: opt.NewGradientDescent(cfg.LearnRate, cfg.GradStep),
		Settings: vqe.Settings{
			MaxIterations: cfg.MaxIterations,
			Tolerance:     cfg.Tolerance,
			Patience:      cfg.Patience,
		},
	}
	if cfg.Seeding.Enabled {
		p.Seeder = opt.NewMayflySeeder(cfg.Seeding.Iterations, cfg.Seeding.Population, cfg.Seeding.Seed)
	}
	return p
}

func markJobFailed(jm *JobManager, jobID string, err error) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
	})
	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:     jobID,
		State:     StateFailed,
		Timestamp: endTime,
	})
	slog.Error("Run failed", "job_id", jobID, "error", err)
}
