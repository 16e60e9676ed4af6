package excel

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gorqa/app"
	"gorqa/domain/core"
	"gorqa/domain/rqa"
)

func sampleBatch() *app.BatchResult {
	years := map[int]*app.YearAnalysis{
		2002: {Year: 2002, Days: 120, Threshold: 0.4, Result: rqa.Result{RR: 0.11, DET: 0.9, LAM: 0.8, L: 4, LMax: 12, ENTR: 1.1, TT: 3, VMax: 9, VEntr: 0.9}},
		2004: {Year: 2004, Days: 118, Threshold: 2.1, Result: rqa.Result{RR: 0.10, DET: 0.4, LAM: 0.3, L: 2.2, LMax: 5, ENTR: 0.5, TT: 2.1, VMax: 4, VEntr: 0.4}},
	}
	return &app.BatchResult{
		RunID:     core.NewRunID(),
		Params:    app.DefaultParams(),
		Years:     years,
		Failures:  []app.YearFailure{{Year: 2007, Kind: "insufficient_data", Message: "need at least 3 samples, got 0"}},
		Treatment: app.SummarizeGroup("treatment", []int{2002}, years),
		Control:   app.SummarizeGroup("control", []int{2004}, years),
		CreatedAt: core.Now(),
	}
}

func TestWriteBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")
	batch := sampleBatch()

	require.NoError(t, WriteBatch(path, batch))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(resultsSheet)
	require.NoError(t, err)

	// header + 2 year rows + 2 group-mean rows + 1 failure row
	require.Len(t, rows, 6)
	assert.Equal(t, "Year", rows[0][0])
	assert.Equal(t, "RR", rows[0][4])

	assert.Equal(t, "2002", rows[1][0])
	assert.Equal(t, "treatment", rows[1][1])
	assert.Equal(t, "2004", rows[2][0])
	assert.Equal(t, "control", rows[2][1])

	assert.Equal(t, "mean", rows[3][0])
	assert.Equal(t, "mean", rows[4][0])

	assert.Equal(t, "2007", rows[5][0])
	assert.Equal(t, "failed", rows[5][1])
	assert.Equal(t, "insufficient_data", rows[5][2])
}
