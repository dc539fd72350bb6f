package transcript

import (
	"encoding/json"
	"fmt"
	"io"
)

// ParseJSON reads a JSON transcript: an array of segments shaped like
// {"content": ..., "start": ..., "end": ..., "words": [{"word", "start",
// "end"}, ...]}. This is the format speech pipelines write next to the media
// file, and the only subtitle format that reliably carries word timing.
func ParseJSON(r io.Reader) ([]Segment, error) {
	var segments []Segment
	dec := json.NewDecoder(r)
	if err := dec.Decode(&segments); err != nil {
		return nil, fmt.Errorf("json transcript: %w", err)
	}
	for i, s := range segments {
		if s.End < s.Start {
			return nil, fmt.Errorf("json transcript: segment %d: end %.3f before start %.3f", i, s.End, s.Start)
		}
	}
	return segments, nil
}
