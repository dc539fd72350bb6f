package render

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/voxgrep/voxgrep/internal/supercut"
)

// Renderer turns an assembled plan into output media. Batches are rendered
// one at a time and folded into a running result file, so disk and process
// pressure stay proportional to one batch regardless of plan size.
type Renderer struct {
	ffmpeg FFmpeg
	logger *slog.Logger
}

func NewRenderer(ffmpeg FFmpeg, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{ffmpeg: ffmpeg, logger: logger}
}

// RenderSupercut extracts every clip in the plan and concatenates them into
// a single file at outputPath. Intermediate files live next to the output
// and are removed as each batch is absorbed.
func (r *Renderer) RenderSupercut(ctx context.Context, plan *supercut.ExportPlan, outputPath string) error {
	if plan == nil || plan.TotalClips == 0 {
		return fmt.Errorf("render: empty plan")
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	ext := filepath.Ext(outputPath)
	base := strings.TrimSuffix(outputPath, ext)

	r.logger.Info("rendering supercut",
		"clips", plan.TotalClips,
		"batches", len(plan.Batches),
		"duration", plan.TotalDuration,
		"output", filepath.Base(outputPath))

	result, err := supercut.Fold(plan, "", func(acc string, batch supercut.Batch) (string, error) {
		batchFile := fmt.Sprintf("%s.tmp%d%s", base, batch.Index, ext)
		if err := r.renderBatch(ctx, batch, batchFile); err != nil {
			return "", err
		}

		if acc == "" {
			return batchFile, nil
		}

		// Merge the new batch into the running result.
		merged := fmt.Sprintf("%s.merge%d%s", base, batch.Index, ext)
		if err := r.ffmpeg.Concat(ctx, []string{acc, batchFile}, merged); err != nil {
			return "", fmt.Errorf("merge batch %d: %w", batch.Index, err)
		}
		os.Remove(acc)
		os.Remove(batchFile)
		return merged, nil
	})
	if err != nil {
		return err
	}

	if err := os.Rename(result, outputPath); err != nil {
		return fmt.Errorf("finalize output: %w", err)
	}
	r.logger.Info("supercut rendered", "output", filepath.Base(outputPath))
	return nil
}

// renderBatch extracts the batch's clips into part files and concatenates
// them into dst, cleaning the parts up afterwards.
func (r *Renderer) renderBatch(ctx context.Context, batch supercut.Batch, dst string) error {
	ext := filepath.Ext(dst)
	base := strings.TrimSuffix(dst, ext)

	parts := make([]string, 0, len(batch.Clips))
	defer func() {
		for _, p := range parts {
			os.Remove(p)
		}
	}()

	for i, clip := range batch.Clips {
		part := fmt.Sprintf("%s.part%05d%s", base, i, ext)
		if err := r.ffmpeg.ExtractClip(ctx, clip.File, part, clip.Start, clip.End); err != nil {
			return fmt.Errorf("batch %d clip %d: %w", batch.Index, i, err)
		}
		parts = append(parts, part)
	}

	if err := r.ffmpeg.Concat(ctx, parts, dst); err != nil {
		return fmt.Errorf("batch %d concat: %w", batch.Index, err)
	}
	r.logger.Debug("batch rendered", "batch", batch.Index, "clips", len(batch.Clips))
	return nil
}

// RenderClips writes each clip of the plan to its own file under outDir,
// named after the output stem with a zero-padded clip index.
func (r *Renderer) RenderClips(ctx context.Context, plan *supercut.ExportPlan, outDir, stem, ext string) ([]string, error) {
	if plan == nil || plan.TotalClips == 0 {
		return nil, fmt.Errorf("render: empty plan")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	var written []string
	idx := 0
	for _, clip := range plan.Clips() {
		dst := filepath.Join(outDir, fmt.Sprintf("%s_%05d%s", stem, idx, ext))
		if err := r.ffmpeg.ExtractClip(ctx, clip.File, dst, clip.Start, clip.End); err != nil {
			return written, fmt.Errorf("clip %d: %w", idx, err)
		}
		written = append(written, dst)
		idx++
	}
	r.logger.Info("clips rendered", "count", len(written), "dir", outDir)
	return written, nil
}
