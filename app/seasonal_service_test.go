package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorqa/domain/core"
	"gorqa/internal/testkit"
)

const varKey = core.VariableKey("flow")

func TestAnalyzeYear_NoisySine(t *testing.T) {
	// 100 days of a noisy sinusoid inside the June-September window.
	values := testkit.SineSignal(100, 20, 0.05, 7)
	ts := testkit.SeasonSeries(varKey, 2005, time.June, values)

	service := NewSeasonalService(nil)
	analysis, err := service.AnalyzeYear(context.Background(), ts, 2005, DefaultParams())
	require.NoError(t, err)

	assert.Equal(t, 2005, analysis.Year)
	assert.Equal(t, 100, analysis.Days)
	assert.Equal(t, 98, analysis.Embedded.NumPoints())
	assert.Greater(t, analysis.Threshold, 0.0)

	// The threshold is the 10th-percentile pairwise distance, so roughly
	// 10% of off-diagonal pairs recur; the self-recurrent main diagonal
	// adds 1/n on top.
	result := analysis.Result
	assert.InDelta(t, 0.10, result.RR, 0.03)

	// A periodic signal has strong but not total diagonal structure.
	assert.Greater(t, result.DET, 0.0)
	assert.Less(t, result.DET, 1.0)
	assert.Greater(t, result.LAM, 0.0)
	assert.Less(t, result.LAM, 1.0)
	assert.GreaterOrEqual(t, result.LMax, 2.0)
	assert.GreaterOrEqual(t, result.VMax, 2.0)
}

func TestAnalyzeYear_WindowSelectsRequestedYear(t *testing.T) {
	perYear := map[int][]float64{
		2004: testkit.SineSignal(60, 15, 0.05, 1),
		2005: testkit.SineSignal(60, 15, 0.05, 2),
	}
	ts := testkit.MultiYearSeries(varKey, time.June, perYear)

	service := NewSeasonalService(nil)
	analysis, err := service.AnalyzeYear(context.Background(), ts, 2004, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, 60, analysis.Days)
}

func TestAnalyzeYear_InsufficientData(t *testing.T) {
	ts := testkit.SeasonSeries(varKey, 2005, time.June, []float64{1, 2})

	service := NewSeasonalService(nil)
	_, err := service.AnalyzeYear(context.Background(), ts, 2005, DefaultParams())
	assert.True(t, core.IsInsufficientData(err))
}

func TestAnalyzeYear_EmptyDistribution(t *testing.T) {
	// Exactly the embedding minimum: one embedded point, no pairs.
	ts := testkit.SeasonSeries(varKey, 2005, time.June, []float64{1, 2, 3})

	service := NewSeasonalService(nil)
	_, err := service.AnalyzeYear(context.Background(), ts, 2005, DefaultParams())
	assert.True(t, core.IsEmptyDistribution(err))
}

func TestAnalyzeYear_InvalidParams(t *testing.T) {
	ts := testkit.SeasonSeries(varKey, 2005, time.June, testkit.SineSignal(50, 10, 0, 1))
	service := NewSeasonalService(nil)

	params := DefaultParams()
	params.ThresholdQuantile = 1.5
	_, err := service.AnalyzeYear(context.Background(), ts, 2005, params)
	assert.ErrorIs(t, err, core.ErrInvalidQuantile)
}

func TestAnalyzeBatch_DiscriminatesGroups(t *testing.T) {
	// Treatment years carry smooth low-variance recession signals, control
	// years highly irregular ones. At the same threshold quantile the
	// treatment group must show more deterministic and laminar structure.
	const days = 122
	perYear := map[int][]float64{
		2002: testkit.NearConstantSignal(days, 1.0, 0.02, 1),
		2007: testkit.NearConstantSignal(days, 0.8, 0.02, 2),
		2004: testkit.IrregularSignal(days, 3),
		2005: testkit.IrregularSignal(days, 4),
	}
	ts := testkit.MultiYearSeries(varKey, time.June, perYear)

	service := NewSeasonalService(nil)
	batch, err := service.AnalyzeBatch(context.Background(), ts, BatchSpec{
		TreatmentYears: []int{2002, 2007},
		ControlYears:   []int{2004, 2005},
		Params:         DefaultParams(),
	})
	require.NoError(t, err)

	require.Len(t, batch.Years, 4)
	require.Empty(t, batch.Failures)
	require.Equal(t, []int{2002, 2007}, batch.Treatment.Years)
	require.Equal(t, []int{2004, 2005}, batch.Control.Years)
	assert.False(t, batch.RunID.String() == "")

	assert.Greater(t, batch.Treatment.Means.DET, batch.Control.Means.DET)
	assert.Greater(t, batch.Treatment.Means.LAM, batch.Control.Means.LAM)
}

func TestAnalyzeBatch_IsolatesPerYearFailures(t *testing.T) {
	perYear := map[int][]float64{
		2002: testkit.SineSignal(60, 15, 0.05, 1),
		2004: testkit.SineSignal(60, 15, 0.05, 2),
		// 2007 has no data at all and must fail without affecting siblings
	}
	ts := testkit.MultiYearSeries(varKey, time.June, perYear)

	service := NewSeasonalService(nil)
	batch, err := service.AnalyzeBatch(context.Background(), ts, BatchSpec{
		TreatmentYears: []int{2002, 2007},
		ControlYears:   []int{2004},
		Params:         DefaultParams(),
	})
	require.NoError(t, err)

	require.Len(t, batch.Years, 2)
	require.Len(t, batch.Failures, 1)
	assert.Equal(t, 2007, batch.Failures[0].Year)
	assert.Equal(t, "insufficient_data", batch.Failures[0].Kind)

	// The failed year is excluded from its group's mean, not zero-filled.
	assert.Equal(t, []int{2002}, batch.Treatment.Years)
	assert.Equal(t, batch.Years[2002].Result.DET, batch.Treatment.Means.DET)
}

func TestAnalyzeBatch_InvalidParamsFailFast(t *testing.T) {
	ts := testkit.SeasonSeries(varKey, 2005, time.June, testkit.SineSignal(50, 10, 0, 1))
	service := NewSeasonalService(nil)

	spec := BatchSpec{TreatmentYears: []int{2005}, ControlYears: []int{2006}}
	spec.Params = DefaultParams()
	spec.Params.EmbeddingDim = 0

	_, err := service.AnalyzeBatch(context.Background(), ts, spec)
	assert.ErrorIs(t, err, core.ErrInvalidDimension)
}

func TestSummarizeGroup_EmptyGroup(t *testing.T) {
	summary := SummarizeGroup("control", []int{2004}, map[int]*YearAnalysis{})
	assert.Empty(t, summary.Years)
	assert.Zero(t, summary.Means.DET)
	assert.Zero(t, summary.Means.RR)
}

func TestDedupeYears(t *testing.T) {
	years := dedupeYears([]int{2007, 2002}, []int{2004, 2002})
	assert.Equal(t, []int{2002, 2004, 2007}, years)
}
