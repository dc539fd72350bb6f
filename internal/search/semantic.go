package search

import (
	"fmt"
	"math"
	"sort"

	"github.com/voxgrep/voxgrep/internal/transcript"
)

// findSemantic scores every segment with the injected scorer and keeps those
// at or above the query threshold. Matches come back ordered by descending
// score; ties keep corpus order (earlier file, then earlier start).
func (e *Engine) findSemantic(corpus []transcript.Transcript, q Query) ([]Match, error) {
	if e.scorer == nil {
		return nil, ErrSemanticUnavailable
	}

	threshold := DefaultSemanticThreshold
	if q.SemanticThreshold != nil {
		threshold = *q.SemanticThreshold
	}

	var out []Match
	for _, t := range corpus {
		for _, seg := range t.Segments {
			score, err := e.scorer(seg)
			if err != nil {
				return nil, fmt.Errorf("semantic scorer: %w", err)
			}
			if score < threshold {
				continue
			}
			s := score
			out = append(out, Match{
				File:    t.FilePath,
				Start:   seg.Start,
				End:     seg.End,
				Content: seg.Text,
				Score:   &s,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].Score > *out[j].Score
	})
	return out, nil
}

// Cosine returns the cosine similarity of two embedding vectors, or 0 when
// either vector is empty or zero-length in magnitude.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// VectorScorer builds a Scorer from a query embedding and a table of
// precomputed segment embeddings keyed by segment text. Segments with no
// embedding score 0.
func VectorScorer(query []float32, embeddings map[string][]float32) Scorer {
	return func(seg transcript.Segment) (float64, error) {
		emb, ok := embeddings[seg.Text]
		if !ok {
			return 0, nil
		}
		return Cosine(query, emb), nil
	}
}

// TableScorer builds a Scorer from precomputed scores keyed by segment text.
func TableScorer(scores map[string]float64) Scorer {
	return func(seg transcript.Segment) (float64, error) {
		return scores[seg.Text], nil
	}
}
