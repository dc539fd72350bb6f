// Package transcript defines the time-coded transcript model shared by the
// search engine and the supercut pipeline, plus parsers for the subtitle
// formats the library understands (SRT, WebVTT, JSON).
package transcript

// Word is a single token with word-level timing. Start and End are seconds
// from the beginning of the media file.
type Word struct {
	Text  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Segment is one transcript line. Words is nil when the source format only
// carries segment-level timing; such segments support sentence and semantic
// search but not fragment or mash search.
type Segment struct {
	Text  string  `json:"content"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Words []Word  `json:"words,omitempty"`
}

// HasWords reports whether the segment carries word-level timestamps.
func (s Segment) HasWords() bool {
	return len(s.Words) > 0
}

// Transcript is the full transcript of one media file. Segments are ordered
// by start time. The engine treats transcripts as read-only.
type Transcript struct {
	FilePath string
	Segments []Segment
}

// HasWords reports whether any segment carries word-level timestamps.
func (t Transcript) HasWords() bool {
	for _, s := range t.Segments {
		if s.HasWords() {
			return true
		}
	}
	return false
}

// Words returns all word-level tokens of the transcript in time order.
func (t Transcript) Words() []Word {
	var out []Word
	for _, s := range t.Segments {
		out = append(out, s.Words...)
	}
	return out
}
