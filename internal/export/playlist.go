package export

import (
	"fmt"
	"strings"

	"github.com/voxgrep/voxgrep/internal/supercut"
)

// GenerateM3U renders the plan as an extended m3u playlist using VLC
// start/stop options, so VLC plays exactly the matched intervals.
func GenerateM3U(plan *supercut.ExportPlan) string {
	lines := []string{"#EXTM3U"}
	for _, clip := range plan.Clips() {
		lines = append(lines,
			"#EXTINF:",
			fmt.Sprintf("#EXTVLCOPT:start-time=%g", clip.Start),
			fmt.Sprintf("#EXTVLCOPT:stop-time=%g", clip.End),
			clip.File,
		)
	}
	return strings.Join(lines, "\n") + "\n"
}

// GenerateMPVEDL renders the plan in mpv's EDL format: one
// "path,start,length" line per clip. mpv plays the result as a single
// virtual timeline, which makes this the cheapest full-supercut preview.
func GenerateMPVEDL(plan *supercut.ExportPlan) string {
	lines := []string{"# mpv EDL v0"}
	for _, clip := range plan.Clips() {
		lines = append(lines, fmt.Sprintf("%s,%g,%g", clip.File, clip.Start, clip.Duration()))
	}
	return strings.Join(lines, "\n") + "\n"
}

// GeneratePreview renders a human-readable clip listing, one line per clip:
// "file | start - end | content". This is the dry-run output.
func GeneratePreview(plan *supercut.ExportPlan) string {
	var b strings.Builder
	for _, clip := range plan.Clips() {
		fmt.Fprintf(&b, "%s | %.2f - %.2f | %s\n", clip.File, clip.Start, clip.End, clip.Content)
	}
	return b.String()
}
