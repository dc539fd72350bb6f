package transcript

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

var (
	// vttTimeRe matches "00:00:01.500 --> 00:00:03.000" as well as the
	// short "01:02.500" form without an hour field.
	vttTimeRe = regexp.MustCompile(`^((?:\d{2}:)?\d{2}:\d{2}\.\d{3})\s+-->\s+((?:\d{2}:)?\d{2}:\d{2}\.\d{3})`)

	// vttInlineRe matches inline word timestamps like "<00:00:01.500>".
	vttInlineRe = regexp.MustCompile(`<((?:\d{2}:)?\d{2}:\d{2}\.\d{3})>`)

	// vttTagRe strips styling tags such as <c>, </c>, <b> and voice spans.
	vttTagRe = regexp.MustCompile(`<[^>]+>`)
)

// ParseVTT reads a WebVTT file into ordered segments. Cues carrying inline
// timestamps (the format YouTube emits for auto-captions) produce word-level
// timing; plain cues produce segment-level timing only.
func ParseVTT(r io.Reader) ([]Segment, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !sc.Scan() {
		return nil, fmt.Errorf("vtt: empty file")
	}
	if !strings.HasPrefix(strings.TrimSpace(stripBOM(sc.Text())), "WEBVTT") {
		return nil, fmt.Errorf("vtt: missing WEBVTT header")
	}

	var segments []Segment
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		m := vttTimeRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		start := vttClock(m[1])
		end := vttClock(m[2])

		var text []string
		for sc.Scan() {
			l := strings.TrimSpace(sc.Text())
			if l == "" {
				break
			}
			text = append(text, l)
		}
		raw := strings.Join(text, " ")

		seg := Segment{
			Text:  collapseSpaces(vttTagRe.ReplaceAllString(raw, "")),
			Start: start,
			End:   end,
			Words: parseInlineWords(raw, start, end),
		}
		if seg.Text == "" {
			continue
		}
		segments = append(segments, seg)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("vtt: %w", err)
	}
	return segments, nil
}

// parseInlineWords derives word-level timing from inline cue timestamps.
// Each timestamp tag closes the preceding chunk and opens the next one; the
// first chunk starts at the cue start and the last ends at the cue end.
func parseInlineWords(raw string, cueStart, cueEnd float64) []Word {
	tags := vttInlineRe.FindAllStringSubmatchIndex(raw, -1)
	if len(tags) == 0 {
		return nil
	}

	type chunk struct {
		text  string
		start float64
	}
	var chunks []chunk

	prevEnd := 0
	prevStart := cueStart
	for _, tag := range tags {
		chunks = append(chunks, chunk{text: raw[prevEnd:tag[0]], start: prevStart})
		prevStart = vttClock(raw[tag[2]:tag[3]])
		prevEnd = tag[1]
	}
	chunks = append(chunks, chunk{text: raw[prevEnd:], start: prevStart})

	var words []Word
	for i, c := range chunks {
		end := cueEnd
		if i+1 < len(chunks) {
			end = chunks[i+1].start
		}
		clean := collapseSpaces(vttTagRe.ReplaceAllString(c.text, ""))
		for _, w := range strings.Fields(clean) {
			words = append(words, Word{Text: w, Start: c.start, End: end})
		}
	}
	return words
}

func vttClock(s string) float64 {
	parts := strings.Split(s, ":")
	var h, m int
	var sec float64
	switch len(parts) {
	case 3:
		h, _ = strconv.Atoi(parts[0])
		m, _ = strconv.Atoi(parts[1])
		sec, _ = strconv.ParseFloat(parts[2], 64)
	case 2:
		m, _ = strconv.Atoi(parts[0])
		sec, _ = strconv.ParseFloat(parts[1], 64)
	}
	return float64(h)*3600 + float64(m)*60 + sec
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
