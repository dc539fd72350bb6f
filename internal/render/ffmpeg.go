// Package render materializes an ExportPlan into media files by driving
// ffmpeg as a subprocess. It is the boundary the core hands its clip plan
// to; nothing above this package touches media bytes.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const maxStderrBytes = 8 * 1024

// ProbeResult is the subset of ffprobe output the library cares about.
type ProbeResult struct {
	Duration float64
	Width    int
	Height   int
	Codec    string
}

// FFmpeg is the media execution contract. ExtractClip re-encodes one
// interval of a source file; Concat joins already-compatible parts without
// re-encoding.
type FFmpeg interface {
	Probe(ctx context.Context, path string) (*ProbeResult, error)
	ExtractClip(ctx context.Context, src, dst string, start, end float64) error
	Concat(ctx context.Context, parts []string, dst string) error
}

// ExecFFmpeg runs the ffmpeg and ffprobe binaries.
type ExecFFmpeg struct {
	ffmpegPath  string
	ffprobePath string
	clipTimeout time.Duration
	logger      *slog.Logger
}

// NewExecFFmpeg locates ffmpeg/ffprobe on PATH. Paths may be overridden for
// bundled binaries.
func NewExecFFmpeg(ffmpegPath, ffprobePath string, logger *slog.Logger) (*ExecFFmpeg, error) {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	resolvedFFmpeg, err := exec.LookPath(ffmpegPath)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", err)
	}
	resolvedFFprobe, err := exec.LookPath(ffprobePath)
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found: %w", err)
	}
	return &ExecFFmpeg{
		ffmpegPath:  resolvedFFmpeg,
		ffprobePath: resolvedFFprobe,
		clipTimeout: 10 * time.Minute,
		logger:      logger,
	}, nil
}

type ffprobeFormat struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		CodecName string `json:"codec_name"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
}

func (f *ExecFFmpeg) Probe(ctx context.Context, path string) (*ProbeResult, error) {
	out, err := f.run(ctx, f.ffprobePath,
		"-v", "error",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", filepath.Base(path), err)
	}

	var parsed ffprobeFormat
	if err := json.Unmarshal(out, &parsed); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}

	result := &ProbeResult{}
	result.Duration, _ = strconv.ParseFloat(parsed.Format.Duration, 64)
	for _, s := range parsed.Streams {
		if s.CodecType == "video" {
			result.Width = s.Width
			result.Height = s.Height
			result.Codec = s.CodecName
			break
		}
	}
	return result, nil
}

func (f *ExecFFmpeg) ExtractClip(ctx context.Context, src, dst string, start, end float64) error {
	args := []string{
		"-y",
		"-ss", formatTime(start),
		"-to", formatTime(end),
		"-i", src,
	}
	if isAudioFile(dst) {
		args = append(args, "-c:a", "libmp3lame", "-b:a", "192k", "-vn")
	} else {
		args = append(args,
			"-c:v", "libx264", "-preset", "medium", "-b:v", "8000k",
			"-c:a", "aac", "-b:a", "192k",
		)
	}
	args = append(args, dst)

	if _, err := f.run(ctx, f.ffmpegPath, args...); err != nil {
		return fmt.Errorf("extract clip %s [%.2f-%.2f]: %w", filepath.Base(src), start, end, err)
	}
	return nil
}

func (f *ExecFFmpeg) Concat(ctx context.Context, parts []string, dst string) error {
	if len(parts) == 0 {
		return fmt.Errorf("concat: no input parts")
	}

	listFile, err := writeConcatList(parts)
	if err != nil {
		return err
	}
	defer os.Remove(listFile)

	_, err = f.run(ctx, f.ffmpegPath,
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-c", "copy",
		dst,
	)
	if err != nil {
		return fmt.Errorf("concat %d parts: %w", len(parts), err)
	}
	return nil
}

// run executes one subprocess with the clip timeout, keeping a bounded
// stderr tail for diagnostics.
func (f *ExecFFmpeg) run(ctx context.Context, bin string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.clipTimeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if f.logger != nil {
		f.logger.Debug("executing media command", "bin", filepath.Base(bin), "args", strings.Join(args, " "))
	}

	start := time.Now()
	err := cmd.Run()
	if err != nil {
		tail := stderr.Bytes()
		if len(tail) > maxStderrBytes {
			tail = tail[len(tail)-maxStderrBytes:]
		}
		return nil, fmt.Errorf("%s exited: %w: %s", filepath.Base(bin), err, strings.TrimSpace(string(tail)))
	}
	if f.logger != nil {
		f.logger.Debug("media command completed", "bin", filepath.Base(bin), "duration", time.Since(start))
	}
	return stdout.Bytes(), nil
}

func writeConcatList(parts []string) (string, error) {
	tmp, err := os.CreateTemp(filepath.Dir(parts[0]), "concat-*.txt")
	if err != nil {
		return "", fmt.Errorf("create concat list: %w", err)
	}
	defer tmp.Close()

	for _, p := range parts {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		// Single quotes escape concat-demuxer metacharacters.
		fmt.Fprintf(tmp, "file '%s'\n", strings.ReplaceAll(abs, "'", `'\''`))
	}
	return tmp.Name(), nil
}

func formatTime(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 3, 64)
}

var audioExtensions = map[string]bool{
	".mp3":  true,
	".m4a":  true,
	".wav":  true,
	".ogg":  true,
	".aac":  true,
	".flac": true,
}

func isAudioFile(path string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(path))]
}
