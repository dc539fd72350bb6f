package supercut

import (
	"errors"
	"fmt"
	"testing"

	"github.com/voxgrep/voxgrep/internal/search"
)

func planOf(n int) Plan {
	plan := make(Plan, n)
	for i := range plan {
		plan[i] = search.Match{
			File:    "a.mp4",
			Start:   float64(i) * 2,
			End:     float64(i)*2 + 1,
			Content: fmt.Sprintf("clip %d", i),
		}
	}
	return plan
}

func TestAssemble_InvalidBatchSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		if _, err := Assemble(planOf(3), size); !errors.Is(err, ErrInvalidBatchSize) {
			t.Errorf("Assemble(size=%d) err = %v, want ErrInvalidBatchSize", size, err)
		}
	}
}

func TestAssemble_PartitionRoundTrip(t *testing.T) {
	tests := []struct {
		n, batchSize, wantBatches int
	}{
		{0, 50, 0},
		{1, 50, 1},
		{50, 50, 1},
		{51, 50, 2},
		{125, 50, 3},
		{10, 3, 4},
	}

	for _, tc := range tests {
		t.Run(fmt.Sprintf("n=%d_b=%d", tc.n, tc.batchSize), func(t *testing.T) {
			plan := planOf(tc.n)
			ep, err := Assemble(plan, tc.batchSize)
			if err != nil {
				t.Fatalf("Assemble() error = %v", err)
			}
			if len(ep.Batches) != tc.wantBatches {
				t.Fatalf("got %d batches, want %d", len(ep.Batches), tc.wantBatches)
			}
			if ep.TotalClips != tc.n {
				t.Errorf("TotalClips = %d, want %d", ep.TotalClips, tc.n)
			}

			flat := ep.Clips()
			if len(flat) != tc.n {
				t.Fatalf("flattened %d clips, want %d", len(flat), tc.n)
			}
			for i := range flat {
				if flat[i].Content != plan[i].Content {
					t.Fatalf("clip %d out of order: %q", i, flat[i].Content)
				}
			}

			for _, b := range ep.Batches {
				if len(b.Clips) > tc.batchSize {
					t.Errorf("batch %d has %d clips, max %d", b.Index, len(b.Clips), tc.batchSize)
				}
			}
		})
	}
}

func TestAssemble_Offsets(t *testing.T) {
	// Each clip is 1s long, batches of 2 -> offsets 0, 2, 4.
	ep, err := Assemble(planOf(5), 2)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	wantOffsets := []float64{0, 2, 4}
	for i, b := range ep.Batches {
		if !approx(b.StartOffset, wantOffsets[i]) {
			t.Errorf("batch %d StartOffset = %f, want %f", i, b.StartOffset, wantOffsets[i])
		}
	}
	if !approx(ep.TotalDuration, 5) {
		t.Errorf("TotalDuration = %f, want 5", ep.TotalDuration)
	}
}

func TestFold_VisitsBatchesInOrder(t *testing.T) {
	ep, err := Assemble(planOf(7), 3)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	visited, err := Fold(ep, []int(nil), func(acc []int, b Batch) ([]int, error) {
		return append(acc, b.Index), nil
	})
	if err != nil {
		t.Fatalf("Fold() error = %v", err)
	}
	if len(visited) != 3 {
		t.Fatalf("visited %d batches, want 3", len(visited))
	}
	for i, idx := range visited {
		if idx != i {
			t.Errorf("batch order broken: visited[%d] = %d", i, idx)
		}
	}
}

func TestFold_StepErrorAborts(t *testing.T) {
	ep, err := Assemble(planOf(6), 2)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	boom := errors.New("render failed")
	steps := 0
	_, err = Fold(ep, 0, func(acc int, b Batch) (int, error) {
		steps++
		if b.Index == 1 {
			return acc, boom
		}
		return acc + 1, nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want render failure", err)
	}
	if steps != 2 {
		t.Errorf("fold continued after error: %d steps", steps)
	}
}
