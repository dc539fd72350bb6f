package search

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/voxgrep/voxgrep/internal/transcript"
)

// Scorer rates how close a segment is to the query the caller embedded.
// Semantic search is the only strategy that needs it; the engine never
// computes embeddings itself.
type Scorer func(seg transcript.Segment) (float64, error)

// Engine runs queries over transcript corpora. It performs no I/O and reads
// transcripts without mutating them. An Engine is not safe for concurrent
// use because it owns a random source; callers holding one shared engine
// derive a child with Split for each query or worker.
type Engine struct {
	mu     sync.Mutex
	rng    *rand.Rand
	scorer Scorer
}

// Option configures an Engine.
type Option func(*Engine)

// WithSeed makes mash draws and shuffles reproducible.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.rng = rand.New(rand.NewSource(seed)) }
}

// WithRand supplies a random source directly.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithScorer enables semantic search.
func WithScorer(s Scorer) Option {
	return func(e *Engine) { e.scorer = s }
}

// NewEngine creates an engine. Without WithSeed or WithRand the random
// source is time-seeded.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rand exposes the engine's random source so the post-processor can shuffle
// with the same seed.
func (e *Engine) Rand() *rand.Rand {
	return e.rng
}

// Split derives an engine for a single query or worker: it shares e's
// scorer but owns a fresh random source seeded from e. Drawing the seed is
// the only synchronized step, so concurrent callers split once and run
// their query on the child.
func (e *Engine) Split() *Engine {
	e.mu.Lock()
	seed := e.rng.Int63()
	e.mu.Unlock()
	return &Engine{rng: rand.New(rand.NewSource(seed)), scorer: e.scorer}
}

// Find runs the query's strategy over the corpus and returns raw matches.
// Sentence and fragment matches come back in corpus order, semantic matches
// by descending score, mash matches in draw order.
func (e *Engine) Find(corpus []transcript.Transcript, q Query) ([]Match, error) {
	switch q.Type {
	case TypeSentence:
		return e.findSentence(corpus, q)
	case TypeFragment:
		return e.findFragment(corpus, q)
	case TypeMash:
		return e.findMash(corpus, q)
	case TypeSemantic:
		return e.findSemantic(corpus, q)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidSearchType, q.Type)
	}
}

// compilePattern compiles a query pattern, case-insensitive unless the query
// says otherwise.
func compilePattern(pattern string, caseSensitive bool) (*regexp.Regexp, error) {
	if !caseSensitive {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	return re, nil
}

var wordPunctRe = regexp.MustCompile(`[.?!,:"]+`)

// normalizeWord strips sentence punctuation from a word token before
// matching, so "cat," matches the token "cat".
func normalizeWord(w string) string {
	return strings.TrimSpace(wordPunctRe.ReplaceAllString(w, ""))
}
