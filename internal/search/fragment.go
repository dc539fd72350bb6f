package search

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/voxgrep/voxgrep/internal/transcript"
)

// findFragment matches a sequence of word tokens against word-level
// timestamps. The pattern is whitespace-split into tokens; each token is
// compiled as an anchored sub-pattern, so both bare literals and regular
// expressions work per token. A window of len(tokens) consecutive words
// matches when every word's normalized text satisfies its token.
//
// Transcripts without word timing yield no matches; the whole call fails
// only when no transcript in the corpus carries word timing at all.
func (e *Engine) findFragment(corpus []transcript.Transcript, q Query) ([]Match, error) {
	tokens := strings.Fields(q.Pattern)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: empty fragment pattern", ErrInvalidPattern)
	}

	res := make([]*regexp.Regexp, len(tokens))
	for i, tok := range tokens {
		anchored := "^(?:" + tok + ")$"
		re, err := compilePattern(anchored, q.CaseSensitive)
		if err != nil {
			return nil, err
		}
		res[i] = re
	}

	corpusHasWords := false
	var out []Match
	for _, t := range corpus {
		if !t.HasWords() {
			continue
		}
		corpusHasWords = true

		for _, seg := range t.Segments {
			words := seg.Words
			for i := 0; i+len(res) <= len(words); i++ {
				if !windowMatches(words[i:i+len(res)], res) {
					continue
				}
				window := words[i : i+len(res)]
				texts := make([]string, len(window))
				for j, w := range window {
					texts[j] = w.Text
				}
				out = append(out, Match{
					File:    t.FilePath,
					Start:   window[0].Start,
					End:     window[len(window)-1].End,
					Content: strings.Join(texts, " "),
				})
			}
		}
	}

	if !corpusHasWords {
		return nil, ErrNoWordTimestamps
	}
	return out, nil
}

func windowMatches(window []transcript.Word, res []*regexp.Regexp) bool {
	for i, re := range res {
		if !re.MatchString(normalizeWord(window[i].Text)) {
			return false
		}
	}
	return true
}
