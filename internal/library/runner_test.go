package library

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

type fakeExecutor struct {
	calls  int
	result string
	err    error
}

func (f *fakeExecutor) ExecuteExport(ctx context.Context, job *Job) (string, error) {
	f.calls++
	return f.result, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestRunner_ProcessesExportJob(t *testing.T) {
	_, repo := setupTestDB(t)
	svc := NewService(repo, nil, nil)
	exec := &fakeExecutor{result: "/out/cut.mp4"}
	runner := NewRunner(svc, repo, exec, testLogger())

	job, err := svc.EnqueueExport(context.Background(), `{"pattern":"x"}`)
	if err != nil {
		t.Fatalf("EnqueueExport() error = %v", err)
	}

	runner.processNextJob(context.Background())

	if exec.calls != 1 {
		t.Fatalf("executor calls = %d, want 1", exec.calls)
	}

	got, err := repo.GetJob(context.Background(), job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != JobStatusCompleted {
		t.Errorf("status = %s, want completed", got.Status)
	}
	if got.Result != "/out/cut.mp4" {
		t.Errorf("result = %q", got.Result)
	}
	if got.Progress != 100 {
		t.Errorf("progress = %d, want 100", got.Progress)
	}
}

func TestRunner_ExportFailureRecorded(t *testing.T) {
	_, repo := setupTestDB(t)
	svc := NewService(repo, nil, nil)
	exec := &fakeExecutor{err: fmt.Errorf("no clips matched")}
	runner := NewRunner(svc, repo, exec, testLogger())

	job, err := svc.EnqueueExport(context.Background(), `{}`)
	if err != nil {
		t.Fatal(err)
	}

	runner.processNextJob(context.Background())

	got, err := repo.GetJob(context.Background(), job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != JobStatusFailed {
		t.Errorf("status = %s, want failed", got.Status)
	}
	if got.Error != "no clips matched" {
		t.Errorf("error = %q", got.Error)
	}
}

func TestRunner_ProcessesScanJob(t *testing.T) {
	_, repo := setupTestDB(t)
	svc := NewService(repo, nil, nil)
	runner := NewRunner(svc, repo, nil, testLogger())

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.mp4"), []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}

	job, err := svc.EnqueueScan(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}

	runner.processNextJob(context.Background())

	got, err := repo.GetJob(context.Background(), job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != JobStatusCompleted {
		t.Errorf("status = %s, want completed", got.Status)
	}

	count, err := repo.CountVideos(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("video count = %d, want 1", count)
	}
}

func TestRunner_NoExecutorFailsExport(t *testing.T) {
	_, repo := setupTestDB(t)
	svc := NewService(repo, nil, nil)
	runner := NewRunner(svc, repo, nil, testLogger())

	job, err := svc.EnqueueExport(context.Background(), `{}`)
	if err != nil {
		t.Fatal(err)
	}

	runner.processNextJob(context.Background())

	got, _ := repo.GetJob(context.Background(), job.ID)
	if got.Status != JobStatusFailed {
		t.Errorf("status = %s, want failed", got.Status)
	}
}

func TestRunner_PauseResume(t *testing.T) {
	_, repo := setupTestDB(t)
	svc := NewService(repo, nil, nil)
	runner := NewRunner(svc, repo, &fakeExecutor{}, testLogger())

	runner.Pause()
	if !runner.IsPaused() {
		t.Error("runner should be paused")
	}
	runner.Resume()
	if runner.IsPaused() {
		t.Error("runner should be resumed")
	}
}
