// Package playback streams library media over HTTP with range support, so
// players can seek straight to a matched clip.
package playback

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

type PlaybackService interface {
	ServeFile(w http.ResponseWriter, r *http.Request, filePath string) error
}

// Server serves files from a set of allowed root directories. An empty
// root list disables the path restriction.
type Server struct {
	roots  []string
	logger *slog.Logger
}

func NewServer(roots []string, logger *slog.Logger) *Server {
	cleaned := make([]string, 0, len(roots))
	for _, root := range roots {
		if abs, err := filepath.Abs(root); err == nil {
			cleaned = append(cleaned, abs)
		}
	}
	return &Server{roots: cleaned, logger: logger}
}

func (s *Server) ServeFile(w http.ResponseWriter, r *http.Request, filePath string) error {
	abs, err := filepath.Abs(filePath)
	if err != nil {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return nil
	}

	if !s.allowed(abs) {
		if s.logger != nil {
			s.logger.Warn("playback request outside media roots", "path", abs)
		}
		http.Error(w, "file not available", http.StatusForbidden)
		return nil
	}

	file, err := os.Open(abs)
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "file not found", http.StatusNotFound)
			return nil
		}
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}
	if stat.IsDir() {
		http.Error(w, "file not found", http.StatusNotFound)
		return nil
	}

	// ServeContent handles Range, If-Modified-Since and Content-Type.
	http.ServeContent(w, r, filepath.Base(abs), stat.ModTime(), file)
	return nil
}

func (s *Server) allowed(abs string) bool {
	if len(s.roots) == 0 {
		return true
	}
	for _, root := range s.roots {
		rel, err := filepath.Rel(root, abs)
		if err != nil {
			continue
		}
		if rel == "." || (!strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel)) {
			return true
		}
	}
	return false
}
