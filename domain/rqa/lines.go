package rqa

// RunLengths scans a binary sequence left to right and returns the lengths
// of all maximal runs of consecutive 1s. A run ending at the final element
// is still emitted. An all-zero input yields an empty result.
func RunLengths(seq []uint8) []int {
	var lengths []int
	run := 0
	for _, v := range seq {
		if v == 1 {
			run++
			continue
		}
		if run > 0 {
			lengths = append(lengths, run)
			run = 0
		}
	}
	if run > 0 {
		lengths = append(lengths, run)
	}
	return lengths
}

// DiagonalLineLengths collects run lengths from every non-principal diagonal
// of the matrix, both triangles (offsets k = 1..n-1 and k = -1..-(n-1)).
// The main diagonal is excluded: it is all 1s by construction and would
// trivially contribute one maximal line per matrix.
func DiagonalLineLengths(rm *RecurrenceMatrix) []int {
	var lengths []int
	for k := 1; k < rm.Size(); k++ {
		lengths = append(lengths, RunLengths(rm.Diagonal(k))...)
		lengths = append(lengths, RunLengths(rm.Diagonal(-k))...)
	}
	return lengths
}

// VerticalLineLengths collects run lengths from every full column of the
// matrix.
func VerticalLineLengths(rm *RecurrenceMatrix) []int {
	var lengths []int
	for j := 0; j < rm.Size(); j++ {
		lengths = append(lengths, RunLengths(rm.Column(j))...)
	}
	return lengths
}
