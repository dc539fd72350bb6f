// Package supercut turns raw search matches into an export-ready clip plan:
// resync, padding, overlap merging, ordering, truncation, and bounded-memory
// batch assembly.
package supercut

import (
	"math/rand"
	"sort"
	"time"

	"github.com/voxgrep/voxgrep/internal/search"
)

// Plan is a finalized, ordered clip list. Within one file no two clips
// overlap; renderers and emitters rely on that to avoid duplicated frames.
type Plan []search.Match

// TotalDuration sums the clip lengths.
func (p Plan) TotalDuration() float64 {
	var total float64
	for _, m := range p {
		total += m.Duration()
	}
	return total
}

// Finalize applies the query's post-processing to raw matches, in order:
// resync offset, padding, per-file overlap merge, ordering (or shuffle), and
// truncation to MaxClips. Non-randomized output is ordered by file
// first-seen then start ascending, except mash, whose draw order is kept.
// durations caps the padded end per file; files with no entry get no upper
// clamp. rng is used only when the query randomizes; nil falls back to a
// time-seeded source.
//
// Finalize never fails: empty input yields an empty plan, and surfacing "no
// results" to a user is the caller's job. The input slice is not mutated.
func Finalize(matches []search.Match, q search.Query, durations map[string]float64, rng *rand.Rand) Plan {
	if len(matches) == 0 {
		return Plan{}
	}

	clips := make([]search.Match, 0, len(matches))
	for _, m := range matches {
		c := m

		c.Start += q.ResyncOffset
		c.End += q.ResyncOffset
		if c.Start < 0 {
			c.Start = 0
		}

		c.Start -= q.PaddingStart
		c.End += q.PaddingEnd
		if c.Start < 0 {
			c.Start = 0
		}
		if d, ok := durations[c.File]; ok && c.End > d {
			c.End = d
		}

		// Resync or clamping can push a clip out of its file entirely.
		if c.End <= c.Start {
			continue
		}
		clips = append(clips, c)
	}

	merged := mergeOverlaps(clips)

	switch {
	case q.Randomize:
		if rng == nil {
			rng = rand.New(rand.NewSource(randSeed()))
		}
		rng.Shuffle(len(merged), func(i, j int) {
			merged[i], merged[j] = merged[j], merged[i]
		})
	case q.Type == search.TypeMash:
		// Mash is randomized by construction; the draw order is the
		// output order unless the query re-shuffles on top.
		orderByDraw(merged, clips)
	default:
		orderByFile(merged, fileOrder(matches))
	}

	if q.MaxClips > 0 && len(merged) > q.MaxClips {
		merged = merged[:q.MaxClips]
	}
	return Plan(merged)
}

// mergeOverlaps merges clips from the same file whose intervals overlap or
// touch, spanning min(start)..max(end). Content concatenates in time order;
// score, when present, keeps the maximum.
func mergeOverlaps(clips []search.Match) []search.Match {
	byFile := make(map[string][]search.Match)
	var files []string
	for _, c := range clips {
		if _, ok := byFile[c.File]; !ok {
			files = append(files, c.File)
		}
		byFile[c.File] = append(byFile[c.File], c)
	}

	var out []search.Match
	for _, file := range files {
		group := byFile[file]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Start < group[j].Start
		})

		current := group[0]
		for _, next := range group[1:] {
			if next.Start <= current.End {
				if next.End > current.End {
					current.End = next.End
				}
				if next.Content != "" {
					if current.Content != "" {
						current.Content += " "
					}
					current.Content += next.Content
				}
				current.Score = maxScore(current.Score, next.Score)
				continue
			}
			out = append(out, current)
			current = next
		}
		out = append(out, current)
	}
	return out
}

// fileOrder records the first-seen position of each file in the raw match
// sequence, which preserves corpus order for strategies that emit in corpus
// order.
func fileOrder(matches []search.Match) map[string]int {
	order := make(map[string]int)
	for _, m := range matches {
		if _, ok := order[m.File]; !ok {
			order[m.File] = len(order)
		}
	}
	return order
}

type clipKey struct {
	file  string
	start float64
}

// orderByDraw restores the order clips arrived in after the per-file merge
// regrouped them. A merged clip sits where its earliest constituent was
// drawn; constituents are located by interval containment.
func orderByDraw(merged, drawn []search.Match) {
	pos := make(map[clipKey]int, len(merged))
	for _, m := range merged {
		pos[clipKey{m.File, m.Start}] = len(drawn)
	}
	for i, d := range drawn {
		for _, m := range merged {
			if m.File != d.File || d.Start < m.Start || d.End > m.End {
				continue
			}
			k := clipKey{m.File, m.Start}
			if i < pos[k] {
				pos[k] = i
			}
			break
		}
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return pos[clipKey{merged[i].File, merged[i].Start}] < pos[clipKey{merged[j].File, merged[j].Start}]
	})
}

func orderByFile(clips []search.Match, order map[string]int) {
	sort.SliceStable(clips, func(i, j int) bool {
		if order[clips[i].File] != order[clips[j].File] {
			return order[clips[i].File] < order[clips[j].File]
		}
		return clips[i].Start < clips[j].Start
	})
}

func maxScore(a, b *float64) *float64 {
	if a == nil {
		return b
	}
	if b == nil || *a >= *b {
		return a
	}
	return b
}

func randSeed() int64 {
	return time.Now().UnixNano()
}
