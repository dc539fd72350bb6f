package export

import (
	"fmt"
	"strings"

	"github.com/voxgrep/voxgrep/internal/supercut"
)

// GenerateVTT renders a WebVTT subtitle track for the rendered supercut.
// Cues sit at each clip's absolute position on the output timeline and carry
// the clip's transcript content.
func GenerateVTT(plan *supercut.ExportPlan) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")

	var offset float64
	for _, clip := range plan.Clips() {
		if clip.Content != "" {
			fmt.Fprintf(&b, "%s --> %s\n%s\n\n",
				vttTimestamp(offset), vttTimestamp(offset+clip.Duration()), clip.Content)
		}
		offset += clip.Duration()
	}
	return b.String()
}

func vttTimestamp(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	totalMs := int(sec*1000 + 0.5)
	ms := totalMs % 1000
	totalSec := totalMs / 1000
	s := totalSec % 60
	m := (totalSec / 60) % 60
	h := totalSec / 3600
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}
