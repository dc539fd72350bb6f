package render

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/voxgrep/voxgrep/internal/library"
	"github.com/voxgrep/voxgrep/internal/search"
	"github.com/voxgrep/voxgrep/internal/supercut"
)

// ExportJobPayload is the serialized form an export job carries through
// the queue.
type ExportJobPayload struct {
	Query  search.Query `json:"query"`
	Format string       `json:"format"`
	Name   string       `json:"name"`
}

// SupercutExecutor runs queued export jobs: search, finalize, assemble,
// render. It satisfies library.ExportExecutor.
type SupercutExecutor struct {
	lib       *library.Service
	engine    *search.Engine
	renderer  *Renderer
	exportDir string
	batchSize int
	logger    *slog.Logger
}

func NewSupercutExecutor(lib *library.Service, engine *search.Engine, renderer *Renderer, exportDir string, batchSize int, logger *slog.Logger) *SupercutExecutor {
	if batchSize < 1 {
		batchSize = supercut.DefaultBatchSize
	}
	return &SupercutExecutor{
		lib:       lib,
		engine:    engine,
		renderer:  renderer,
		exportDir: exportDir,
		batchSize: batchSize,
		logger:    logger,
	}
}

func (e *SupercutExecutor) ExecuteExport(ctx context.Context, job *library.Job) (string, error) {
	var payload ExportJobPayload
	if err := json.Unmarshal([]byte(job.Payload), &payload); err != nil {
		return "", fmt.Errorf("decode job payload: %w", err)
	}

	q := payload.Query
	if (q.Type == search.TypeFragment || q.Type == search.TypeMash) &&
		q.PaddingStart == 0 && q.PaddingEnd == 0 {
		q.PaddingStart = search.DefaultPadding
		q.PaddingEnd = search.DefaultPadding
	}

	// The engine is shared with the API handlers; split off a private
	// random source for this job.
	engine := e.engine.Split()

	corpus, err := e.lib.Corpus(ctx)
	if err != nil {
		return "", fmt.Errorf("load corpus: %w", err)
	}

	matches, err := engine.Find(corpus, q)
	if err != nil {
		return "", err
	}

	if q.Type == search.TypeSemantic && q.MaxClips > 0 && len(matches) > q.MaxClips {
		matches = matches[:q.MaxClips]
	}

	durations, err := e.lib.Durations(ctx)
	if err != nil {
		return "", fmt.Errorf("load durations: %w", err)
	}

	plan := supercut.Finalize(matches, q, durations, engine.Rand())
	exportPlan, err := supercut.Assemble(plan, e.batchSize)
	if err != nil {
		return "", err
	}
	if exportPlan.TotalClips == 0 {
		return "", fmt.Errorf("no clips matched query %q", payload.Query.Pattern)
	}

	name := payload.Name
	if name == "" {
		name = "supercut"
	}

	if e.logger != nil {
		e.logger.Info("export started",
			"job_id", job.ID,
			"pattern", payload.Query.Pattern,
			"format", payload.Format,
			"clips", exportPlan.TotalClips)
	}

	// "clips" skips the fold entirely: one file per clip, no concatenation.
	if payload.Format == "clips" {
		outDir := filepath.Join(e.exportDir, name)
		if _, err := e.renderer.RenderClips(ctx, exportPlan, outDir, name, "mp4"); err != nil {
			return "", err
		}
		return outDir, nil
	}

	ext := payload.Format
	if ext == "" {
		ext = "mp4"
	}
	outputPath := filepath.Join(e.exportDir, fmt.Sprintf("%s.%s", name, ext))

	if err := e.renderer.RenderSupercut(ctx, exportPlan, outputPath); err != nil {
		return "", err
	}
	return outputPath, nil
}
