package library

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/voxgrep/voxgrep/internal/transcript"
)

// Prober reports a media file's duration in seconds. Nil means durations
// stay at zero and padding clamps fall back to the clip ends.
type Prober func(ctx context.Context, path string) (float64, error)

type Service struct {
	repo   Repository
	probe  Prober
	logger *slog.Logger
}

func NewService(repo Repository, probe Prober, logger *slog.Logger) *Service {
	return &Service{repo: repo, probe: probe, logger: logger}
}

// ScanFolder walks dir and upserts every media file found, pairing each
// with its sidecar transcript. Returns the number of files indexed.
func (s *Service) ScanFolder(ctx context.Context, dir string) (int, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return 0, fmt.Errorf("invalid path: %w", err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return 0, fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("path is not a directory")
	}

	var found []string
	err = filepath.WalkDir(absDir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if !d.IsDir() && IsMediaFile(d.Name()) {
			found = append(found, p)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	indexed := 0
	for _, path := range found {
		select {
		case <-ctx.Done():
			return indexed, ctx.Err()
		default:
		}

		if err := s.indexFile(ctx, path); err != nil {
			if s.logger != nil {
				s.logger.Warn("failed to index file", "path", path, "error", err)
			}
			continue
		}
		indexed++
	}

	if s.logger != nil {
		s.logger.Info("scan completed", "dir", absDir, "indexed", indexed)
	}
	return indexed, nil
}

func (s *Service) indexFile(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	existing, err := s.repo.GetVideoByPath(ctx, path)
	if err != nil {
		return err
	}

	sidecar := transcript.FindSidecar(path)

	v := &Video{
		ID:             NewID(),
		Path:           path,
		Filename:       filepath.Base(path),
		SizeBytes:      info.Size(),
		HasTranscript:  sidecar != "",
		TranscriptPath: sidecar,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	if existing != nil {
		v.ID = existing.ID
		v.CreatedAt = existing.CreatedAt
		v.Duration = existing.Duration
	}

	// Probing is the expensive part, skip it when size is unchanged.
	if s.probe != nil && (existing == nil || existing.SizeBytes != info.Size()) {
		if dur, err := s.probe(ctx, path); err == nil {
			v.Duration = dur
		} else if s.logger != nil {
			s.logger.Warn("duration probe failed", "path", path, "error", err)
		}
	}

	return s.repo.UpsertVideo(ctx, v)
}

// Corpus loads the transcript of every video that has one.
func (s *Service) Corpus(ctx context.Context) ([]transcript.Transcript, error) {
	videos, err := s.repo.ListVideos(ctx)
	if err != nil {
		return nil, err
	}

	var corpus []transcript.Transcript
	for _, v := range videos {
		if !v.HasTranscript {
			continue
		}
		tr, err := transcript.Load(v.TranscriptPath, v.Path)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("failed to load transcript", "path", v.TranscriptPath, "error", err)
			}
			continue
		}
		corpus = append(corpus, tr)
	}
	return corpus, nil
}

// Durations returns known media durations keyed by file path. Zero entries
// are omitted so padding falls back to unclamped ends.
func (s *Service) Durations(ctx context.Context) (map[string]float64, error) {
	videos, err := s.repo.ListVideos(ctx)
	if err != nil {
		return nil, err
	}

	durations := make(map[string]float64, len(videos))
	for _, v := range videos {
		if v.Duration > 0 {
			durations[v.Path] = v.Duration
		}
	}
	return durations, nil
}

func (s *Service) Videos(ctx context.Context) ([]*Video, error) {
	return s.repo.ListVideos(ctx)
}

func (s *Service) CountVideos(ctx context.Context) (int, error) {
	return s.repo.CountVideos(ctx)
}

// EnqueueExport creates a pending export job carrying the serialized
// request; the runner picks it up on its next poll.
func (s *Service) EnqueueExport(ctx context.Context, payload string) (*Job, error) {
	now := time.Now()
	job := &Job{
		ID:        NewID(),
		Type:      JobTypeExport,
		Status:    JobStatusPending,
		Payload:   payload,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateJob(ctx, job); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("export job created", "job_id", job.ID)
	}
	return job, nil
}

// EnqueueScan creates a pending scan job for the given directory.
func (s *Service) EnqueueScan(ctx context.Context, dir string) (*Job, error) {
	now := time.Now()
	job := &Job{
		ID:        NewID(),
		Type:      JobTypeScan,
		Status:    JobStatusPending,
		Payload:   dir,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateJob(ctx, job); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("scan job created", "job_id", job.ID, "dir", dir)
	}
	return job, nil
}

func (s *Service) GetJob(ctx context.Context, id string) (*Job, error) {
	return s.repo.GetJob(ctx, id)
}

func (s *Service) Jobs(ctx context.Context, limit int) ([]*Job, error) {
	return s.repo.ListJobs(ctx, limit)
}
