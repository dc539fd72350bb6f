package supercut

import "errors"

// DefaultBatchSize bounds how many clips one assembly step holds in memory.
const DefaultBatchSize = 50

// ErrInvalidBatchSize reports a programming-contract violation: Assemble
// called with a non-positive batch size.
var ErrInvalidBatchSize = errors.New("batch size must be positive")

// Batch is a contiguous slice of the plan plus its timeline bookkeeping.
// StartOffset is the batch's absolute position on the output timeline.
type Batch struct {
	Index       int
	Clips       Plan
	StartOffset float64
	Duration    float64
}

// ExportPlan is the renderer-agnostic description of the whole supercut:
// ordered batches plus cumulative timing. It is the only artifact handed to
// emitters and renderers.
type ExportPlan struct {
	Batches       []Batch
	TotalClips    int
	TotalDuration float64
}

// Clips flattens the batches back into one ordered plan.
func (p *ExportPlan) Clips() Plan {
	out := make(Plan, 0, p.TotalClips)
	for _, b := range p.Batches {
		out = append(out, b.Clips...)
	}
	return out
}

// Assemble partitions a finalized plan into consecutive batches of at most
// batchSize clips, preserving order across batch boundaries, and computes
// per-batch timeline offsets and the total duration. Partitioning cannot
// fail on a well-formed plan; only a non-positive batchSize is rejected.
func Assemble(plan Plan, batchSize int) (*ExportPlan, error) {
	if batchSize <= 0 {
		return nil, ErrInvalidBatchSize
	}

	out := &ExportPlan{TotalClips: len(plan)}
	var offset float64
	for start := 0; start < len(plan); start += batchSize {
		end := start + batchSize
		if end > len(plan) {
			end = len(plan)
		}
		batch := Batch{
			Index:       len(out.Batches),
			Clips:       plan[start:end],
			StartOffset: offset,
			Duration:    plan[start:end].TotalDuration(),
		}
		offset += batch.Duration
		out.Batches = append(out.Batches, batch)
	}
	out.TotalDuration = offset
	return out, nil
}

// Fold reduces the batches left to right with an externally supplied step.
// This is the rendering contract made explicit: the step sees one batch at a
// time, so a renderer holds at most one batch's media plus the accumulated
// result. A step error aborts the fold; batch boundaries are the natural
// cancellation checkpoints.
func Fold[T any](p *ExportPlan, initial T, step func(acc T, batch Batch) (T, error)) (T, error) {
	acc := initial
	for _, batch := range p.Batches {
		var err error
		acc, err = step(acc, batch)
		if err != nil {
			return acc, err
		}
	}
	return acc, nil
}
