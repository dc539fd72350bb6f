package search

import "github.com/voxgrep/voxgrep/internal/transcript"

// findSentence matches the pattern against whole segment texts. The clip
// granularity is the segment; no sub-segment trimming happens here.
func (e *Engine) findSentence(corpus []transcript.Transcript, q Query) ([]Match, error) {
	re, err := compilePattern(q.Pattern, q.CaseSensitive)
	if err != nil {
		return nil, err
	}

	var out []Match
	for _, t := range corpus {
		for _, seg := range t.Segments {
			if re.MatchString(seg.Text) {
				out = append(out, Match{
					File:    t.FilePath,
					Start:   seg.Start,
					End:     seg.End,
					Content: seg.Text,
				})
			}
		}
	}
	return out, nil
}
