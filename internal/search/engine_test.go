package search

import (
	"errors"
	"sync"
	"testing"

	"github.com/voxgrep/voxgrep/internal/transcript"
)

func wordedTranscript(file string) transcript.Transcript {
	return transcript.Transcript{
		FilePath: file,
		Segments: []transcript.Segment{
			{
				Text: "the cat sat", Start: 0.0, End: 0.9,
				Words: []transcript.Word{
					{Text: "the", Start: 0.0, End: 0.2},
					{Text: "cat", Start: 0.2, End: 0.5},
					{Text: "sat", Start: 0.5, End: 0.9},
				},
			},
			{
				Text: "on the cat mat", Start: 1.0, End: 2.0,
				Words: []transcript.Word{
					{Text: "on", Start: 1.0, End: 1.2},
					{Text: "the", Start: 1.2, End: 1.4},
					{Text: "cat,", Start: 1.4, End: 1.7},
					{Text: "mat", Start: 1.7, End: 2.0},
				},
			},
		},
	}
}

func sentenceTranscript(file string) transcript.Transcript {
	return transcript.Transcript{
		FilePath: file,
		Segments: []transcript.Segment{
			{Text: "hello world", Start: 1.0, End: 2.0},
			{Text: "goodbye world", Start: 3.0, End: 4.5},
		},
	}
}

func TestFind_InvalidSearchType(t *testing.T) {
	_, err := NewEngine().Find(nil, Query{Pattern: "x", Type: Type("prosody")})
	if !errors.Is(err, ErrInvalidSearchType) {
		t.Fatalf("err = %v, want ErrInvalidSearchType", err)
	}
}

func TestFind_InvalidPattern(t *testing.T) {
	corpus := []transcript.Transcript{sentenceTranscript("a.mp4")}
	_, err := NewEngine().Find(corpus, Query{Pattern: "(unclosed", Type: TypeSentence})
	if !errors.Is(err, ErrInvalidPattern) {
		t.Fatalf("err = %v, want ErrInvalidPattern", err)
	}
}

func TestSentence(t *testing.T) {
	corpus := []transcript.Transcript{sentenceTranscript("a.mp4")}
	matches, err := NewEngine().Find(corpus, Query{Pattern: "hello", Type: TypeSentence})
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	m := matches[0]
	if m.File != "a.mp4" || m.Start != 1.0 || m.End != 2.0 || m.Content != "hello world" {
		t.Errorf("match = %+v", m)
	}
	if m.Score != nil {
		t.Error("sentence match must not carry a score")
	}
}

func TestSentence_CaseRules(t *testing.T) {
	corpus := []transcript.Transcript{sentenceTranscript("a.mp4")}

	matches, err := NewEngine().Find(corpus, Query{Pattern: "HELLO", Type: TypeSentence})
	if err != nil || len(matches) != 1 {
		t.Fatalf("case-insensitive: matches = %v, err = %v", matches, err)
	}

	matches, err = NewEngine().Find(corpus, Query{Pattern: "HELLO", Type: TypeSentence, CaseSensitive: true})
	if err != nil || len(matches) != 0 {
		t.Fatalf("case-sensitive: matches = %v, err = %v", matches, err)
	}
}

func TestFragment(t *testing.T) {
	corpus := []transcript.Transcript{wordedTranscript("a.mp4")}
	matches, err := NewEngine().Find(corpus, Query{Pattern: "cat sat", Type: TypeFragment})
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1: %+v", len(matches), matches)
	}
	m := matches[0]
	if m.Start != 0.2 || m.End != 0.9 || m.Content != "cat sat" {
		t.Errorf("match = %+v", m)
	}
}

func TestFragment_NormalizesPunctuation(t *testing.T) {
	corpus := []transcript.Transcript{wordedTranscript("a.mp4")}
	matches, err := NewEngine().Find(corpus, Query{Pattern: "cat mat", Type: TypeFragment})
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	// "cat," in the second segment matches the bare token.
	if len(matches) != 1 || matches[0].Start != 1.4 || matches[0].End != 2.0 {
		t.Fatalf("matches = %+v", matches)
	}
}

func TestFragment_TokenSubPattern(t *testing.T) {
	corpus := []transcript.Transcript{wordedTranscript("a.mp4")}
	matches, err := NewEngine().Find(corpus, Query{Pattern: "the (cat|dog)", Type: TypeFragment})
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2: %+v", len(matches), matches)
	}
}

func TestFragment_SkipsTranscriptsWithoutWords(t *testing.T) {
	corpus := []transcript.Transcript{
		sentenceTranscript("plain.mp4"),
		wordedTranscript("worded.mp4"),
	}
	matches, err := NewEngine().Find(corpus, Query{Pattern: "cat sat", Type: TypeFragment})
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	for _, m := range matches {
		if m.File != "worded.mp4" {
			t.Errorf("match from transcript without words: %+v", m)
		}
	}
}

func TestFragment_NoWordsAnywhere(t *testing.T) {
	corpus := []transcript.Transcript{sentenceTranscript("a.mp4")}
	_, err := NewEngine().Find(corpus, Query{Pattern: "cat sat", Type: TypeFragment})
	if !errors.Is(err, ErrNoWordTimestamps) {
		t.Fatalf("err = %v, want ErrNoWordTimestamps", err)
	}
}

func TestMash_DeterministicUnderSeed(t *testing.T) {
	corpus := []transcript.Transcript{
		wordedTranscript("a.mp4"),
		wordedTranscript("b.mp4"),
	}
	q := Query{Pattern: "the", Type: TypeMash, MaxClips: 3}

	first, err := NewEngine(WithSeed(42)).Find(corpus, q)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	second, err := NewEngine(WithSeed(42)).Find(corpus, q)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}

	if len(first) != 3 {
		t.Fatalf("got %d matches, want 3", len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("same seed diverged at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestMash_DrawsAreSubsetOfCandidates(t *testing.T) {
	corpus := []transcript.Transcript{wordedTranscript("a.mp4")}
	matches, err := NewEngine(WithSeed(7)).Find(corpus, Query{Pattern: "cat", Type: TypeMash})
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	// "cat" and "cat," both normalize to the token.
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2: %+v", len(matches), matches)
	}
	for _, m := range matches {
		if m.Start != 0.2 && m.Start != 1.4 {
			t.Errorf("draw outside candidate set: %+v", m)
		}
	}
}

func TestMash_NoOccurrences(t *testing.T) {
	corpus := []transcript.Transcript{wordedTranscript("a.mp4")}
	matches, err := NewEngine().Find(corpus, Query{Pattern: "zebra", Type: TypeMash})
	if err != nil {
		t.Fatalf("missing token must not error, got %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("matches = %+v, want none", matches)
	}
}

func TestMash_NoWordsAnywhere(t *testing.T) {
	corpus := []transcript.Transcript{sentenceTranscript("a.mp4")}
	_, err := NewEngine().Find(corpus, Query{Pattern: "hello", Type: TypeMash})
	if !errors.Is(err, ErrNoWordTimestamps) {
		t.Fatalf("err = %v, want ErrNoWordTimestamps", err)
	}
}

// Concurrent mash queries against one shared engine; each worker splits
// off its own random source, so this stays clean under the race detector.
func TestSplit_ConcurrentMash(t *testing.T) {
	corpus := []transcript.Transcript{
		wordedTranscript("a.mp4"),
		wordedTranscript("b.mp4"),
	}
	shared := NewEngine(WithSeed(1))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			engine := shared.Split()
			matches, err := engine.Find(corpus, Query{Pattern: "the", Type: TypeMash, MaxClips: 3})
			if err != nil {
				t.Errorf("Find() error = %v", err)
				return
			}
			if len(matches) != 3 {
				t.Errorf("got %d matches, want 3", len(matches))
			}
		}()
	}
	wg.Wait()
}

func TestSplit_DeterministicUnderSeed(t *testing.T) {
	corpus := []transcript.Transcript{wordedTranscript("a.mp4")}
	q := Query{Pattern: "the", Type: TypeMash, MaxClips: 2}

	first, err := NewEngine(WithSeed(9)).Split().Find(corpus, q)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	second, err := NewEngine(WithSeed(9)).Split().Find(corpus, q)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("same seed diverged at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestSemantic_NoScorer(t *testing.T) {
	corpus := []transcript.Transcript{sentenceTranscript("a.mp4")}
	_, err := NewEngine().Find(corpus, Query{Pattern: "greetings", Type: TypeSemantic})
	if !errors.Is(err, ErrSemanticUnavailable) {
		t.Fatalf("err = %v, want ErrSemanticUnavailable", err)
	}
}

func floatPtr(v float64) *float64 { return &v }

func TestSemantic_ThresholdAndOrder(t *testing.T) {
	corpus := []transcript.Transcript{sentenceTranscript("a.mp4")}
	scorer := TableScorer(map[string]float64{
		"hello world":   0.6,
		"goodbye world": 0.9,
	})
	engine := NewEngine(WithScorer(scorer))

	matches, err := engine.Find(corpus, Query{Pattern: "greetings", Type: TypeSemantic, SemanticThreshold: floatPtr(0.5)})
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0].Content != "goodbye world" || *matches[0].Score != 0.9 {
		t.Errorf("best match = %+v", matches[0])
	}
	if matches[1].Content != "hello world" {
		t.Errorf("second match = %+v", matches[1])
	}

	matches, err = engine.Find(corpus, Query{Pattern: "greetings", Type: TypeSemantic, SemanticThreshold: floatPtr(0.8)})
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(matches) != 1 || matches[0].Content != "goodbye world" {
		t.Fatalf("threshold filter failed: %+v", matches)
	}
}

func TestSemantic_UnsetVsExplicitZeroThreshold(t *testing.T) {
	corpus := []transcript.Transcript{sentenceTranscript("a.mp4")}
	scorer := TableScorer(map[string]float64{
		"hello world":   0.2,
		"goodbye world": 0.1,
	})
	engine := NewEngine(WithScorer(scorer))

	// Unset falls back to the default threshold, which filters both out.
	matches, err := engine.Find(corpus, Query{Pattern: "greetings", Type: TypeSemantic})
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("unset threshold kept %d matches, want 0", len(matches))
	}

	// An explicit zero keeps every scored segment.
	matches, err = engine.Find(corpus, Query{Pattern: "greetings", Type: TypeSemantic, SemanticThreshold: floatPtr(0)})
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("zero threshold kept %d matches, want 2", len(matches))
	}
}

func TestFind_MatchInvariants(t *testing.T) {
	corpus := []transcript.Transcript{
		wordedTranscript("a.mp4"),
		sentenceTranscript("b.mp4"),
	}
	files := map[string]bool{"a.mp4": true, "b.mp4": true}

	queries := []Query{
		{Pattern: "the", Type: TypeSentence},
		{Pattern: "cat", Type: TypeFragment},
		{Pattern: "the", Type: TypeMash, MaxClips: 2},
	}
	engine := NewEngine(WithSeed(1))
	for _, q := range queries {
		matches, err := engine.Find(corpus, q)
		if err != nil {
			t.Fatalf("Find(%s) error = %v", q.Type, err)
		}
		for _, m := range matches {
			if m.Start >= m.End {
				t.Errorf("%s: start %f >= end %f", q.Type, m.Start, m.End)
			}
			if !files[m.File] {
				t.Errorf("%s: match file %q not in corpus", q.Type, m.File)
			}
		}
	}
}

func TestCosine(t *testing.T) {
	if got := Cosine([]float32{1, 0}, []float32{1, 0}); got < 0.999 {
		t.Errorf("identical vectors = %f, want 1", got)
	}
	if got := Cosine([]float32{1, 0}, []float32{0, 1}); got != 0 {
		t.Errorf("orthogonal vectors = %f, want 0", got)
	}
	if got := Cosine(nil, nil); got != 0 {
		t.Errorf("empty vectors = %f, want 0", got)
	}
}

func TestCountNGrams(t *testing.T) {
	corpus := []transcript.Transcript{wordedTranscript("a.mp4")}
	counts := CountNGrams(corpus, 1)
	if len(counts) == 0 {
		t.Fatal("no n-grams extracted")
	}
	if counts[0].Gram != "the" || counts[0].Count != 2 {
		t.Errorf("top unigram = %+v, want {the 2}", counts[0])
	}

	bigrams := CountNGrams(corpus, 2)
	found := false
	for _, c := range bigrams {
		if c.Gram == "cat sat" {
			found = true
		}
	}
	if !found {
		t.Error("bigram \"cat sat\" missing")
	}
}
