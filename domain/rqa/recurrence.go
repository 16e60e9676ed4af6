package rqa

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"gorqa/domain/core"
)

// RecurrenceMatrix is a symmetric binary matrix where entry (i,j) marks
// whether embedded states i and j are within the recurrence threshold of
// each other. The main diagonal is always 1 (self-distance is zero).
type RecurrenceMatrix struct {
	n     int
	cells []uint8
}

// BuildRecurrenceMatrix thresholds pairwise Euclidean distances between the
// embedded state vectors into a binary matrix. Only the upper triangle is
// computed; symmetry fills the lower half.
func BuildRecurrenceMatrix(es *EmbeddedSpace, threshold float64) (*RecurrenceMatrix, error) {
	if es == nil || es.NumPoints() == 0 {
		return nil, core.ErrEmptyInput
	}
	if threshold < 0 {
		return nil, core.ErrInvalidThreshold
	}

	n := es.NumPoints()
	rm := &RecurrenceMatrix{n: n, cells: make([]uint8, n*n)}
	for i := 0; i < n; i++ {
		rm.cells[i*n+i] = 1
		pi := es.Point(i)
		for j := i + 1; j < n; j++ {
			if floats.Distance(pi, es.Point(j), 2) <= threshold {
				rm.cells[i*n+j] = 1
				rm.cells[j*n+i] = 1
			}
		}
	}
	return rm, nil
}

// PairwiseDistances returns the Euclidean distances for all unordered point
// pairs (i<j), excluding self-pairs. The caller typically takes a quantile
// of this distribution to pick a recurrence threshold.
func PairwiseDistances(es *EmbeddedSpace) ([]float64, error) {
	n := 0
	if es != nil {
		n = es.NumPoints()
	}
	if n < 2 {
		return nil, core.NewEmptyDistributionError(n)
	}

	distances := make([]float64, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		pi := es.Point(i)
		for j := i + 1; j < n; j++ {
			distances = append(distances, floats.Distance(pi, es.Point(j), 2))
		}
	}
	return distances, nil
}

// Size returns the matrix dimension n.
func (rm *RecurrenceMatrix) Size() int { return rm.n }

// At returns cell (i,j) as 0 or 1.
func (rm *RecurrenceMatrix) At(i, j int) int {
	return int(rm.cells[i*rm.n+j])
}

// RecurrenceCount returns the total number of recurrent points, main
// diagonal included.
func (rm *RecurrenceMatrix) RecurrenceCount() int {
	count := 0
	for _, c := range rm.cells {
		count += int(c)
	}
	return count
}

// Diagonal returns the diagonal at signed offset k as a binary sequence.
// k > 0 selects the upper-triangle diagonal rm[i][i+k], k < 0 the
// lower-triangle diagonal rm[i-k][i], and k = 0 the main diagonal.
func (rm *RecurrenceMatrix) Diagonal(k int) []uint8 {
	offset := k
	if offset < 0 {
		offset = -offset
	}
	length := rm.n - offset
	if length <= 0 {
		return nil
	}
	diag := make([]uint8, length)
	for i := 0; i < length; i++ {
		if k >= 0 {
			diag[i] = rm.cells[i*rm.n+i+offset]
		} else {
			diag[i] = rm.cells[(i+offset)*rm.n+i]
		}
	}
	return diag
}

// Column returns column j as a binary sequence.
func (rm *RecurrenceMatrix) Column(j int) []uint8 {
	col := make([]uint8, rm.n)
	for i := 0; i < rm.n; i++ {
		col[i] = rm.cells[i*rm.n+j]
	}
	return col
}

// Dense converts the matrix to a gonum dense matrix for consumers that
// render heatmaps or export the raw structure.
func (rm *RecurrenceMatrix) Dense() *mat.Dense {
	out := mat.NewDense(rm.n, rm.n, nil)
	for i := 0; i < rm.n; i++ {
		for j := 0; j < rm.n; j++ {
			out.Set(i, j, float64(rm.cells[i*rm.n+j]))
		}
	}
	return out
}
