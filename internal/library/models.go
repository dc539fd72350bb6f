// Package library tracks the media files and their transcripts that
// searches run against, plus the job queue for background exports.
package library

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Video struct {
	ID             string    `json:"id"`
	Path           string    `json:"path"`
	Filename       string    `json:"filename"`
	SizeBytes      int64     `json:"size_bytes"`
	Duration       float64   `json:"duration"`
	HasTranscript  bool      `json:"has_transcript"`
	TranscriptPath string    `json:"transcript_path,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

const (
	JobTypeScan   = "scan"
	JobTypeExport = "export"

	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

type Job struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	Progress  int       `json:"progress"`
	Payload   string    `json:"payload,omitempty"`
	Result    string    `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var MediaExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".mkv":  true,
	".webm": true,
	".avi":  true,
	".mp3":  true,
	".m4a":  true,
	".wav":  true,
}

func NewID() string {
	return uuid.NewString()
}

func IsMediaFile(filename string) bool {
	return MediaExtensions[strings.ToLower(filepath.Ext(filename))]
}
