package transcript

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// srtTimeRe matches "00:01:02,345 --> 00:01:04,000" with optional cue settings.
var srtTimeRe = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2})[,.](\d{3})\s+-->\s+(\d{2}):(\d{2}):(\d{2})[,.](\d{3})`)

// ParseSRT reads a SubRip file into ordered segments. SRT carries no
// word-level timing, so Words is always nil.
func ParseSRT(r io.Reader) ([]Segment, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var segments []Segment
	lineNo := 0

	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(stripBOM(sc.Text()))
		if line == "" {
			continue
		}

		// Sequence counter. Tolerate cues without one.
		if _, err := strconv.Atoi(line); err == nil {
			if !sc.Scan() {
				return nil, fmt.Errorf("srt: unexpected end of file after sequence %q", line)
			}
			lineNo++
			line = strings.TrimSpace(sc.Text())
		}

		m := srtTimeRe.FindStringSubmatch(line)
		if m == nil {
			return nil, fmt.Errorf("srt: line %d: invalid time line %q", lineNo, line)
		}
		start := srtClock(m[1], m[2], m[3], m[4])
		end := srtClock(m[5], m[6], m[7], m[8])

		var text []string
		for sc.Scan() {
			lineNo++
			l := strings.TrimSpace(sc.Text())
			if l == "" {
				break
			}
			text = append(text, l)
		}

		segments = append(segments, Segment{
			Text:  strings.Join(text, " "),
			Start: start,
			End:   end,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("srt: %w", err)
	}
	return segments, nil
}

func srtClock(h, m, s, ms string) float64 {
	hh, _ := strconv.Atoi(h)
	mm, _ := strconv.Atoi(m)
	ss, _ := strconv.Atoi(s)
	mss, _ := strconv.Atoi(ms)
	return float64(hh)*3600 + float64(mm)*60 + float64(ss) + float64(mss)/1000
}

func stripBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}
