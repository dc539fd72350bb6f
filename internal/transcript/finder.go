package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Extensions lists the transcript formats the library understands, in
// preference order. JSON comes first because it is the only format that
// always carries word-level timing.
var Extensions = []string{".json", ".vtt", ".srt"}

// FindSidecar locates a transcript file for the given media file. It tries an
// exact stem match first (video.mp4 -> video.json), then a fuzzy match for
// names with language codes (video.en.vtt). Returns "" when nothing matches.
func FindSidecar(mediaPath string) string {
	dir := filepath.Dir(mediaPath)
	stem := strings.TrimSuffix(filepath.Base(mediaPath), filepath.Ext(mediaPath))

	for _, ext := range Extensions {
		candidate := filepath.Join(dir, stem+ext)
		if fileExists(candidate) {
			return candidate
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	for _, ext := range Extensions {
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			name := e.Name()
			if strings.HasPrefix(name, stem+".") && strings.HasSuffix(name, ext) {
				return filepath.Join(dir, name)
			}
		}
	}
	return ""
}

// Load parses a transcript file, dispatching on its extension, and binds the
// result to the media file it describes.
func Load(transcriptPath, mediaPath string) (Transcript, error) {
	f, err := os.Open(transcriptPath)
	if err != nil {
		return Transcript{}, err
	}
	defer f.Close()

	var segments []Segment
	switch strings.ToLower(filepath.Ext(transcriptPath)) {
	case ".json":
		segments, err = ParseJSON(f)
	case ".vtt":
		segments, err = ParseVTT(f)
	case ".srt":
		segments, err = ParseSRT(f)
	default:
		return Transcript{}, fmt.Errorf("unsupported transcript format: %s", filepath.Ext(transcriptPath))
	}
	if err != nil {
		return Transcript{}, fmt.Errorf("parse %s: %w", transcriptPath, err)
	}

	return Transcript{FilePath: mediaPath, Segments: segments}, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
