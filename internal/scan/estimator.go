package scan

import (
	"errors"
	"math"
	"sort"
)

// ErrInsufficientData is returned when the estimator runs with fewer than
// two collected observations. The session surfaces it as status text and
// stays in its current state.
var ErrInsufficientData = errors.New("scan: need two surfaces to estimate box dimensions")

// EstimateBox computes box dimensions from the first two collected
// observations. Two adjacent faces of a box share one edge, so one extent
// of the first surface should match one extent of the second; the pairing
// with the smallest absolute difference identifies the shared edge and the
// remaining extents become the other two dimensions.
//
// Algorithm:
//  1. Take extents (h1, w1) and (h2, w2) from the first two observations.
//  2. Compute the four candidate differences |h1-h2|, |h1-w2|, |w1-h2|, |w1-w2|.
//  3. Pick the first case, in that fixed order, whose difference equals the
//     minimum. Ties resolve by this priority, not by resulting dimensions.
//  4. The matched case assigns three raw dimensions from {h1, w1, h2, w2}.
//  5. Sort ascending into {Width, Height, Length}.
//
// The |h1-h2| and |w1-h2| cases assign the same raw triple. The branches
// are kept separate so each difference keeps its own priority slot; see
// the estimator notes in DESIGN.md before collapsing them.
//
// The result always satisfies Width <= Height <= Length.
func EstimateBox(observations []PlaneObservation) (BoundingBox, error) {
	if len(observations) < 2 {
		return BoundingBox{}, ErrInsufficientData
	}

	h1 := observations[0].ExtentHeight
	w1 := observations[0].ExtentWidth
	h2 := observations[1].ExtentHeight
	w2 := observations[1].ExtentWidth

	diffs := [4]float32{
		abs32(h1 - h2),
		abs32(h1 - w2),
		abs32(w1 - h2),
		abs32(w1 - w2),
	}

	min := diffs[0]
	for _, d := range diffs[1:] {
		if d < min {
			min = d
		}
	}

	var height, width, length float32
	switch {
	case diffs[0] == min: // shared edge h1~h2
		height, width, length = h1, w1, w2
	case diffs[1] == min: // shared edge h1~w2
		height, width, length = h1, w1, h2
	case diffs[2] == min: // shared edge w1~h2
		height, width, length = h1, w1, w2
	default: // shared edge w1~w2
		height, width, length = h1, h2, w2
	}

	dims := []float32{height, width, length}
	sort.Slice(dims, func(i, j int) bool { return dims[i] < dims[j] })

	return BoundingBox{
		Width:  dims[0],
		Height: dims[1],
		Length: dims[2],
	}, nil
}

func abs32(v float32) float32 {
	return float32(math.Abs(float64(v)))
}
