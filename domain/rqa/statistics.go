package rqa

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
)

// MinLineLength is the shortest run that counts as deterministic or laminar
// structure. Single recurrent points are noise, not lines.
const MinLineLength = 2

// Result is the canonical RQA metric set for one recurrence matrix.
// Every field is always populated; degenerate matrices (no line of length
// >= MinLineLength anywhere) produce zero-valued metrics, never NaN.
type Result struct {
	RR    float64 `json:"rr" db:"rr"`         // recurrence rate
	DET   float64 `json:"det" db:"det"`       // determinism
	LAM   float64 `json:"lam" db:"lam"`       // laminarity
	L     float64 `json:"l" db:"l"`           // mean diagonal line length
	LMax  float64 `json:"l_max" db:"l_max"`   // longest diagonal line
	ENTR  float64 `json:"entr" db:"entr"`     // diagonal line-length entropy (natural log)
	TT    float64 `json:"tt" db:"tt"`         // trapping time (mean vertical line length)
	VMax  float64 `json:"v_max" db:"v_max"`   // longest vertical line
	VEntr float64 `json:"v_entr" db:"v_entr"` // vertical line-length entropy (natural log)
}

// ComputeStatistics derives the full RQA metric set from a recurrence
// matrix. Pure function: the same matrix always yields identical results.
func ComputeStatistics(rm *RecurrenceMatrix) Result {
	n := rm.Size()
	var result Result
	result.RR = float64(rm.RecurrenceCount()) / float64(n*n)

	diagAll := DiagonalLineLengths(rm)
	diagDet := filterMinLength(diagAll, MinLineLength)
	if len(diagDet) > 0 {
		result.DET = float64(sumInts(diagDet)) / float64(maxInt(sumInts(diagAll), 1))
		result.L = meanOf(diagDet)
		result.LMax = maxOf(diagDet)
		result.ENTR = shannonEntropy(diagDet)
	}

	vertAll := VerticalLineLengths(rm)
	vertLam := filterMinLength(vertAll, MinLineLength)
	if len(vertLam) > 0 {
		result.LAM = float64(sumInts(vertLam)) / float64(maxInt(sumInts(vertAll), 1))
		result.TT = meanOf(vertLam)
		result.VMax = maxOf(vertLam)
		result.VEntr = shannonEntropy(vertLam)
	}

	return result
}

// shannonEntropy computes -sum(p*ln(p)) over the empirical distribution of
// line lengths. Natural-log units; a single repeated length has entropy 0.
func shannonEntropy(lengths []int) float64 {
	counts := make(map[int]int, len(lengths))
	for _, l := range lengths {
		counts[l]++
	}

	// Sum in sorted key order so identical inputs always round identically;
	// map iteration order would make the result vary in the last bit.
	keys := make([]int, 0, len(counts))
	for l := range counts {
		keys = append(keys, l)
	}
	sort.Ints(keys)

	entropy := 0.0
	total := float64(len(lengths))
	for _, l := range keys {
		p := float64(counts[l]) / total
		entropy -= p * math.Log(p)
	}
	return entropy
}

func filterMinLength(lengths []int, min int) []int {
	var kept []int
	for _, l := range lengths {
		if l >= min {
			kept = append(kept, l)
		}
	}
	return kept
}

func sumInts(values []int) int {
	sum := 0
	for _, v := range values {
		sum += v
	}
	return sum
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func meanOf(lengths []int) float64 {
	mean, err := stats.Mean(toFloats(lengths))
	if err != nil {
		return 0
	}
	return mean
}

func maxOf(lengths []int) float64 {
	max, err := stats.Max(toFloats(lengths))
	if err != nil {
		return 0
	}
	return max
}

func toFloats(values []int) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}
