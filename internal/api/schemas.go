package api

import (
	"time"

	"github.com/voxgrep/voxgrep/internal/library"
	"github.com/voxgrep/voxgrep/internal/search"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

type VideoResponse struct {
	ID            string  `json:"id"`
	Path          string  `json:"path"`
	Filename      string  `json:"filename"`
	SizeBytes     int64   `json:"size_bytes"`
	Duration      float64 `json:"duration"`
	HasTranscript bool    `json:"has_transcript"`
	CreatedAt     string  `json:"created_at"`
}

type LibraryResponse struct {
	Videos []VideoResponse `json:"videos"`
}

type ScanRequest struct {
	Path string `json:"path,omitempty"`
}

type ScanResponse struct {
	JobID string `json:"job_id"`
}

type NGramsResponse struct {
	N     int                 `json:"n"`
	Grams []search.NGramCount `json:"grams"`
}

type SearchResponse struct {
	Matches       []search.Match `json:"matches"`
	TotalClips    int            `json:"total_clips"`
	TotalDuration float64        `json:"total_duration"`
}

// ExportRequest drives both synchronous text-format exports and queued
// media renders.
type ExportRequest struct {
	Query     search.Query `json:"query"`
	Format    string       `json:"format"`
	Name      string       `json:"name,omitempty"`
	OutputDir string       `json:"output_dir,omitempty"`
	FrameRate float64      `json:"frame_rate,omitempty"`
}

type ExportResponse struct {
	Status     string `json:"status"`
	Format     string `json:"format"`
	OutputPath string `json:"output_path,omitempty"`
	JobID      string `json:"job_id,omitempty"`
	ClipCount  int    `json:"clip_count,omitempty"`
}

type JobResponse struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	Progress  int    `json:"progress"`
	Result    string `json:"result,omitempty"`
	Error     string `json:"error,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type JobsResponse struct {
	Jobs []JobResponse `json:"jobs"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func VideoToResponse(v *library.Video) VideoResponse {
	return VideoResponse{
		ID:            v.ID,
		Path:          v.Path,
		Filename:      v.Filename,
		SizeBytes:     v.SizeBytes,
		Duration:      v.Duration,
		HasTranscript: v.HasTranscript,
		CreatedAt:     v.CreatedAt.Format(time.RFC3339),
	}
}

func JobToResponse(j *library.Job) JobResponse {
	return JobResponse{
		ID:        j.ID,
		Type:      j.Type,
		Status:    j.Status,
		Progress:  j.Progress,
		Result:    j.Result,
		Error:     j.Error,
		CreatedAt: j.CreatedAt.Format(time.RFC3339),
		UpdatedAt: j.UpdatedAt.Format(time.RFC3339),
	}
}
