// Package export renders a finalized ExportPlan into the structural output
// formats: CMX3600 EDL, m3u playlist, mpv EDL, preview listing, WebVTT and
// an XML timeline. None of these touch media bytes; actual rendering lives
// in internal/render.
package export

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/voxgrep/voxgrep/internal/supercut"
)

// GenerateEDL renders the plan as a CMX3600 edit decision list. Source
// in/out points come from each clip, record points from the cumulative
// timeline position the assembler computed.
func GenerateEDL(plan *supercut.ExportPlan, title string, frameRate float64) string {
	fps := int(math.Round(frameRate))
	if fps <= 0 {
		fps = 30
	}

	isDropFrame := math.Abs(frameRate-29.97) < 0.01 || math.Abs(frameRate-59.94) < 0.01

	lines := []string{fmt.Sprintf("TITLE: %s", title)}
	if isDropFrame {
		lines = append(lines, "FCM: DROP FRAME")
	} else {
		lines = append(lines, "FCM: NON-DROP FRAME")
	}
	lines = append(lines, "")

	event := 0
	recordOffsetMs := 0
	for _, clip := range plan.Clips() {
		event++
		startMs := secToMs(clip.Start)
		endMs := secToMs(clip.End)
		durationMs := endMs - startMs

		srcIn := msToTimecode(startMs, fps)
		srcOut := msToTimecode(endMs, fps)
		recIn := msToTimecode(recordOffsetMs, fps)
		recOut := msToTimecode(recordOffsetMs+durationMs, fps)

		lines = append(lines,
			fmt.Sprintf("%03d  %-8s %-5s C        %s %s %s %s", event, "AX", "V", srcIn, srcOut, recIn, recOut),
			fmt.Sprintf("* FROM CLIP NAME:  %s", clipName(clip.File)),
			fmt.Sprintf("* MEDIA PATH:  %s", clip.File),
		)

		recordOffsetMs += durationMs
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func clipName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func secToMs(sec float64) int {
	return int(math.Round(sec * 1000))
}

func msToTimecode(ms int, fps int) string {
	totalFrames := int(math.Round(float64(ms) * float64(fps) / 1000.0))
	frames := totalFrames % fps
	totalSeconds := totalFrames / fps
	seconds := totalSeconds % 60
	totalMinutes := totalSeconds / 60
	minutes := totalMinutes % 60
	hours := totalMinutes / 60
	return fmt.Sprintf("%02d:%02d:%02d:%02d", hours, minutes, seconds, frames)
}
