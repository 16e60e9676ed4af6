package series

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorqa/domain/core"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestNew_SortsChronologically(t *testing.T) {
	ts := New(core.VariableKey("flow"), []Sample{
		{At: day(2005, time.July, 3), Value: 3},
		{At: day(2005, time.July, 1), Value: 1},
		{At: day(2005, time.July, 2), Value: 2},
	})

	require.Equal(t, 3, ts.Len())
	assert.Equal(t, 1.0, ts.Samples[0].Value)
	assert.Equal(t, 2.0, ts.Samples[1].Value)
	assert.Equal(t, 3.0, ts.Samples[2].Value)
}

func TestSeasonWindow_InclusiveMonths(t *testing.T) {
	ts := New(core.VariableKey("flow"), []Sample{
		{At: day(2005, time.May, 31), Value: 1},
		{At: day(2005, time.June, 1), Value: 2},
		{At: day(2005, time.September, 30), Value: 3},
		{At: day(2005, time.October, 1), Value: 4},
		{At: day(2006, time.July, 15), Value: 5},
	})

	window := ts.SeasonWindow(2005, time.June, time.September)
	require.Equal(t, 2, window.Len())
	assert.Equal(t, 2.0, window.Samples[0].Value)
	assert.Equal(t, 3.0, window.Samples[1].Value)
}

func TestSeasonWindow_WrapsAcrossYearEnd(t *testing.T) {
	ts := New(core.VariableKey("flow"), []Sample{
		{At: day(2005, time.November, 15), Value: 1},
		{At: day(2006, time.February, 10), Value: 2},
		{At: day(2006, time.March, 1), Value: 3},
	})

	window := ts.SeasonWindow(2005, time.November, time.February)
	require.Equal(t, 2, window.Len())
	assert.Equal(t, 1.0, window.Samples[0].Value)
	assert.Equal(t, 2.0, window.Samples[1].Value)
}

func TestDailyMeans_AveragesAndSkipsMissing(t *testing.T) {
	ts := New(core.VariableKey("flow"), []Sample{
		// Two sub-daily samples on day one
		{At: time.Date(2005, time.June, 1, 6, 0, 0, 0, time.UTC), Value: 2},
		{At: time.Date(2005, time.June, 1, 18, 0, 0, 0, time.UTC), Value: 4},
		// Day two is entirely missing and must be skipped
		{At: day(2005, time.June, 2), Missing: true},
		// Day three mixes a missing and a real sample
		{At: time.Date(2005, time.June, 3, 6, 0, 0, 0, time.UTC), Missing: true},
		{At: time.Date(2005, time.June, 3, 18, 0, 0, 0, time.UTC), Value: 7},
	})

	assert.Equal(t, []float64{3, 7}, ts.DailyMeans())
}

func TestDailyMeans_EmptySeries(t *testing.T) {
	ts := New(core.VariableKey("flow"), nil)
	assert.Empty(t, ts.DailyMeans())
}

func TestYears(t *testing.T) {
	ts := New(core.VariableKey("flow"), []Sample{
		{At: day(2007, time.June, 1), Value: 1},
		{At: day(2005, time.June, 1), Value: 1},
		{At: day(2005, time.July, 1), Value: 1},
	})
	assert.Equal(t, []int{2005, 2007}, ts.Years())
}
