package server

import (
	"strings"
	"testing"

	"github.com/agallais/Quantum-aqora/internal/config"
	"github.com/agallais/Quantum-aqora/internal/store"
)

const h2Geometry = "2\nSample H2 molecule\nH 0.3710 0.0 0.0\nH -0.3710 0.0 0.0"

func newTestEnv(t *testing.T) (*JobManager, *store.FSStore, string) {
	t.Helper()
	dir := t.TempDir()
	st, err := store.NewFSStore(dir)
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}
	return NewJobManager(), st, dir
}

func TestRunJobCompletes(t *testing.T) {
	jm, st, dir := newTestEnv(t)

	job := jm.CreateJob(JobRequest{Geometry: h2Geometry, Config: config.Default()})
	if err := runJob(jm, st, dir, job.ID); err != nil {
		t.Fatalf("runJob failed: %v", err)
	}

	done, ok := jm.GetJob(job.ID)
	if !ok {
		t.Fatal("Job disappeared")
	}
	if done.State != StateCompleted {
		t.Fatalf("Expected state completed, got %s (error: %s)", done.State, done.Error)
	}
	if done.Formula != "H2" {
		t.Errorf("Expected formula H2, got %q", done.Formula)
	}
	if done.Iterations < 1 {
		t.Errorf("Expected at least one iteration, got %d", done.Iterations)
	}
	if done.EndTime == nil {
		t.Error("Expected end time to be set")
	}

	// The run record must be persisted.
	record, err := st.LoadRun(job.ID)
	if err != nil {
		t.Fatalf("LoadRun failed: %v", err)
	}
	if record.Energy != done.Energy {
		t.Errorf("Record energy %g does not match job energy %g", record.Energy, done.Energy)
	}

	// And the trace must cover every iteration.
	entries, err := store.ReadTrace(dir, job.ID)
	if err != nil {
		t.Fatalf("ReadTrace failed: %v", err)
	}
	if len(entries) != done.Iterations {
		t.Errorf("Expected %d trace entries, got %d", done.Iterations, len(entries))
	}
}

func TestRunJobFailsOnBadGeometry(t *testing.T) {
	jm, st, dir := newTestEnv(t)

	job := jm.CreateJob(JobRequest{Geometry: "2\nBad\nH 0.0 0.0 0.0", Config: config.Default()})
	if err := runJob(jm, st, dir, job.ID); err == nil {
		t.Fatal("Expected runJob to fail on malformed geometry")
	}

	failed, _ := jm.GetJob(job.ID)
	if failed.State != StateFailed {
		t.Errorf("Expected state failed, got %s", failed.State)
	}
	if !strings.Contains(failed.Error, "geometry line") {
		t.Errorf("Expected format error message, got %q", failed.Error)
	}
}

func TestRunJobFailsOnBadConfig(t *testing.T) {
	jm, st, dir := newTestEnv(t)

	cfg := config.Default()
	cfg.MaxIterations = 0
	job := jm.CreateJob(JobRequest{Geometry: h2Geometry, Config: cfg})
	if err := runJob(jm, st, dir, job.ID); err == nil {
		t.Fatal("Expected runJob to fail on invalid config")
	}

	failed, _ := jm.GetJob(job.ID)
	if failed.State != StateFailed {
		t.Errorf("Expected state failed, got %s", failed.State)
	}
}

func TestRunJobUnknownID(t *testing.T) {
	jm, st, dir := newTestEnv(t)
	if err := runJob(jm, st, dir, "nope"); err == nil {
		t.Error("Expected error for unknown job ID")
	}
}
