package excel

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadSeries_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flow.csv")
	content := `date,station,flow
2005-06-01,S1,12.5
2005-06-02,S1,
2005-06-03,S1,not-a-number
2005-06-04,S1,14.0
garbage-date,S1,99.0
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	reader := NewDataReader(SourceConfig{
		FilePath:    path,
		TimeColumn:  "date",
		ValueColumn: "flow",
	})
	ts, err := reader.ReadSeries()
	require.NoError(t, err)

	// Four parseable rows; the garbage-date row is skipped entirely.
	require.Equal(t, 4, ts.Len())
	assert.Equal(t, 12.5, ts.Samples[0].Value)
	assert.False(t, ts.Samples[0].Missing)
	assert.True(t, ts.Samples[1].Missing, "blank cell becomes a missing sample")
	assert.True(t, ts.Samples[2].Missing, "non-numeric cell becomes a missing sample")
	assert.Equal(t, 14.0, ts.Samples[3].Value)

	assert.Equal(t, time.Date(2005, time.June, 1, 0, 0, 0, 0, time.UTC), ts.Samples[0].At)
}

func TestReadSeries_Excel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flow.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "date"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "flow"))
	rows := []struct {
		date string
		flow interface{}
	}{
		{"2005-06-01", 10.0},
		{"2005-06-02", 11.5},
		{"2005-06-03", ""},
	}
	for i, row := range rows {
		cellA, _ := excelize.CoordinatesToCellName(1, i+2)
		cellB, _ := excelize.CoordinatesToCellName(2, i+2)
		require.NoError(t, f.SetCellValue("Sheet1", cellA, row.date))
		require.NoError(t, f.SetCellValue("Sheet1", cellB, row.flow))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	reader := NewDataReader(SourceConfig{
		FilePath:    path,
		TimeColumn:  "date",
		ValueColumn: "flow",
	})
	ts, err := reader.ReadSeries()
	require.NoError(t, err)

	require.Equal(t, 3, ts.Len())
	assert.Equal(t, 10.0, ts.Samples[0].Value)
	assert.Equal(t, 11.5, ts.Samples[1].Value)
	assert.True(t, ts.Samples[2].Missing)
}

func TestReadSeries_MissingColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flow.csv")
	require.NoError(t, os.WriteFile(path, []byte("date,flow\n2005-06-01,1\n"), 0o644))

	reader := NewDataReader(SourceConfig{FilePath: path, TimeColumn: "when", ValueColumn: "flow"})
	_, err := reader.ReadSeries()
	assert.ErrorContains(t, err, `time column "when" not found`)

	reader = NewDataReader(SourceConfig{FilePath: path, TimeColumn: "date", ValueColumn: "discharge"})
	_, err = reader.ReadSeries()
	assert.ErrorContains(t, err, `value column "discharge" not found`)
}

func TestReadSeries_FileNotFound(t *testing.T) {
	reader := NewDataReader(SourceConfig{FilePath: "/nonexistent/flow.csv", TimeColumn: "date", ValueColumn: "flow"})
	_, err := reader.ReadSeries()
	assert.ErrorContains(t, err, "not found")
}

func TestParseTimestamp_Layouts(t *testing.T) {
	cases := map[string]bool{
		"2005-06-01":           true,
		"2005-06-01 06:30:00":  true,
		"2005-06-01T06:30:00Z": true,
		"06/15/2005":           true,
		"2005/06/15":           true,
		"":                     false,
		"June first":           false,
	}
	for cell, ok := range cases {
		_, got := parseTimestamp(cell)
		assert.Equal(t, ok, got, "cell %q", cell)
	}
}
