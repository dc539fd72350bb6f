package search

import (
	"fmt"
	"strings"

	"github.com/voxgrep/voxgrep/internal/transcript"
)

// findMash samples occurrences of a single literal token across the whole
// corpus. Randomness is the point of this strategy: candidates are drawn
// uniformly without replacement in an order independent of file and time,
// regardless of the query's Randomize flag. Up to MaxClips candidates are
// drawn; an unbounded query returns the full set, shuffled.
func (e *Engine) findMash(corpus []transcript.Transcript, q Query) ([]Match, error) {
	token := strings.TrimSpace(q.Pattern)
	if token == "" {
		return nil, fmt.Errorf("%w: empty mash token", ErrInvalidPattern)
	}
	want := normalizeWord(token)
	if !q.CaseSensitive {
		want = strings.ToLower(want)
	}

	corpusHasWords := false
	var candidates []Match
	for _, t := range corpus {
		if !t.HasWords() {
			continue
		}
		corpusHasWords = true

		for _, w := range t.Words() {
			got := normalizeWord(w.Text)
			if !q.CaseSensitive {
				got = strings.ToLower(got)
			}
			if got == want {
				candidates = append(candidates, Match{
					File:    t.FilePath,
					Start:   w.Start,
					End:     w.End,
					Content: w.Text,
				})
			}
		}
	}

	if !corpusHasWords {
		return nil, ErrNoWordTimestamps
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	n := len(candidates)
	if q.MaxClips > 0 && q.MaxClips < n {
		n = q.MaxClips
	}

	out := make([]Match, 0, n)
	for _, idx := range e.rng.Perm(len(candidates))[:n] {
		out = append(out, candidates[idx])
	}
	return out, nil
}
