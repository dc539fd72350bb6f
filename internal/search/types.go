// Package search implements the match engine: four strategies that turn a
// query into time-coded matches over a corpus of transcripts.
package search

// Type selects a search strategy.
type Type string

const (
	TypeSentence Type = "sentence"
	TypeFragment Type = "fragment"
	TypeMash     Type = "mash"
	TypeSemantic Type = "semantic"
)

// DefaultSemanticThreshold is the minimum similarity a segment must score to
// count as a semantic match when the query does not set one.
const DefaultSemanticThreshold = 0.45

// DefaultPadding is the padding callers conventionally apply to word-level
// clips (fragment, mash) when the query sets none; single words are too
// abrupt to cut on exactly.
const DefaultPadding = 0.1

// Query describes one search plus the post-processing the caller wants
// applied to its matches.
type Query struct {
	Pattern      string  `json:"pattern"`
	Type         Type    `json:"search_type"`
	MaxClips     int     `json:"max_clips,omitempty"` // 0 = unbounded
	Randomize    bool    `json:"randomize,omitempty"`
	PaddingStart float64 `json:"padding_start,omitempty"`
	PaddingEnd   float64 `json:"padding_end,omitempty"`
	ResyncOffset float64 `json:"resync_offset,omitempty"`

	// SemanticThreshold is nil when unset, which means
	// DefaultSemanticThreshold; an explicit 0 keeps every scored segment.
	SemanticThreshold *float64 `json:"semantic_threshold,omitempty"`
	CaseSensitive     bool     `json:"case_sensitive,omitempty"`
}

// Match is one time-coded hit. Score is set only for semantic matches and
// holds a cosine-similarity value in [0, 1].
type Match struct {
	File    string   `json:"file"`
	Start   float64  `json:"start"`
	End     float64  `json:"end"`
	Content string   `json:"content"`
	Score   *float64 `json:"score,omitempty"`
}

// Duration returns the clip length in seconds.
func (m Match) Duration() float64 {
	return m.End - m.Start
}
