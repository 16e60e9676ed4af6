package rqa

import (
	"gonum.org/v1/gonum/mat"

	"gorqa/domain/core"
)

// EmbeddedSpace is the delay-coordinate reconstruction of a scalar series.
// Row i holds [x(i), x(i+tau), ..., x(i+(m-1)*tau)].
type EmbeddedSpace struct {
	points *mat.Dense
	dim    int
	delay  int
}

// Embed reconstructs a pseudo state space from a scalar series using
// time-delay embedding with dimension m and delay tau.
// The series must have at least (m-1)*tau + 1 samples.
func Embed(data []float64, m, tau int) (*EmbeddedSpace, error) {
	if m < 1 {
		return nil, core.ErrInvalidDimension
	}
	if tau < 1 {
		return nil, core.ErrInvalidDelay
	}

	required := (m-1)*tau + 1
	if len(data) < required {
		return nil, core.NewInsufficientDataError(required, len(data))
	}

	n := len(data) - (m-1)*tau
	points := mat.NewDense(n, m, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			points.Set(i, j, data[i+j*tau])
		}
	}

	return &EmbeddedSpace{points: points, dim: m, delay: tau}, nil
}

// NumPoints returns the number of reconstructed state vectors.
func (es *EmbeddedSpace) NumPoints() int {
	if es == nil || es.points == nil {
		return 0
	}
	r, _ := es.points.Dims()
	return r
}

// Dim returns the embedding dimension m.
func (es *EmbeddedSpace) Dim() int { return es.dim }

// Delay returns the embedding delay tau.
func (es *EmbeddedSpace) Delay() int { return es.delay }

// Point returns a view of state vector i. The slice aliases internal
// storage and must not be mutated.
func (es *EmbeddedSpace) Point(i int) []float64 {
	return es.points.RawRowView(i)
}

// Matrix exposes the underlying n x m matrix for downstream consumers
// (e.g. phase-space rendering).
func (es *EmbeddedSpace) Matrix() *mat.Dense {
	return es.points
}
