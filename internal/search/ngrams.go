package search

import (
	"regexp"
	"sort"
	"strings"

	"github.com/voxgrep/voxgrep/internal/transcript"
)

var contentSplitRe = regexp.MustCompile(`[.?!,:"]+\s*|\s+`)

// NGramCount is one n-gram with its occurrence count across a corpus.
type NGramCount struct {
	Gram  string `json:"gram"`
	Count int    `json:"count"`
}

// NGrams extracts all n-grams from the corpus, preferring word-level tokens
// and falling back to splitting segment text.
func NGrams(corpus []transcript.Transcript, n int) [][]string {
	if n < 1 {
		return nil
	}

	var tokens []string
	for _, t := range corpus {
		for _, seg := range t.Segments {
			if seg.HasWords() {
				for _, w := range seg.Words {
					tokens = append(tokens, w.Text)
				}
				continue
			}
			for _, tok := range contentSplitRe.Split(seg.Text, -1) {
				if tok != "" {
					tokens = append(tokens, tok)
				}
			}
		}
	}

	if len(tokens) < n {
		return nil
	}
	out := make([][]string, 0, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		gram := make([]string, n)
		copy(gram, tokens[i:i+n])
		out = append(out, gram)
	}
	return out
}

// CountNGrams tallies n-grams case-insensitively and returns them sorted by
// count descending, then alphabetically.
func CountNGrams(corpus []transcript.Transcript, n int) []NGramCount {
	counts := make(map[string]int)
	for _, gram := range NGrams(corpus, n) {
		key := strings.ToLower(strings.Join(gram, " "))
		counts[key]++
	}

	out := make([]NGramCount, 0, len(counts))
	for gram, count := range counts {
		out = append(out, NGramCount{Gram: gram, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Gram < out[j].Gram
	})
	return out
}
