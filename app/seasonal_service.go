package app

import (
	"context"
	"errors"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/semaphore"
	"gonum.org/v1/gonum/stat"

	"gorqa/domain/core"
	"gorqa/domain/rqa"
	"gorqa/domain/series"
	"gorqa/internal"
)

// SeasonalParams are the knobs of the per-year RQA pipeline.
type SeasonalParams struct {
	EmbeddingDim      int        `json:"embedding_dim"`
	Delay             int        `json:"delay"`
	ThresholdQuantile float64    `json:"threshold_quantile"`
	StartMonth        time.Month `json:"start_month"`
	EndMonth          time.Month `json:"end_month"`
}

// DefaultParams returns the standard parameter set: m=3, tau=1, 10th
// percentile threshold, June-September season.
func DefaultParams() SeasonalParams {
	return SeasonalParams{
		EmbeddingDim:      3,
		Delay:             1,
		ThresholdQuantile: 0.10,
		StartMonth:        time.June,
		EndMonth:          time.September,
	}
}

// Validate checks the parameter ranges.
func (p SeasonalParams) Validate() error {
	if p.EmbeddingDim < 1 {
		return core.ErrInvalidDimension
	}
	if p.Delay < 1 {
		return core.ErrInvalidDelay
	}
	if p.ThresholdQuantile < 0 || p.ThresholdQuantile > 1 {
		return core.ErrInvalidQuantile
	}
	return nil
}

// YearAnalysis is the complete output of one year's pipeline. Embedded and
// Matrix are exposed for external rendering; Result is the metric set.
type YearAnalysis struct {
	Year      int                   `json:"year"`
	Days      int                   `json:"days"`
	Threshold float64               `json:"threshold"`
	Embedded  *rqa.EmbeddedSpace    `json:"-"`
	Matrix    *rqa.RecurrenceMatrix `json:"-"`
	Result    rqa.Result            `json:"result"`
}

// YearFailure records an isolated per-year pipeline error.
type YearFailure struct {
	Year    int    `json:"year"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// GroupSummary aggregates one year group's results.
type GroupSummary struct {
	Name  string     `json:"name"`
	Years []int      `json:"years"` // years that produced a result
	Means rqa.Result `json:"means"` // arithmetic mean per metric
}

// BatchSpec describes one treatment-vs-control batch run.
type BatchSpec struct {
	TreatmentYears []int          `json:"treatment_years"`
	ControlYears   []int          `json:"control_years"`
	Params         SeasonalParams `json:"params"`
}

// BatchResult holds per-year results, recorded failures and the two group
// summaries for one run.
type BatchResult struct {
	RunID     core.RunID            `json:"run_id"`
	Params    SeasonalParams        `json:"params"`
	Years     map[int]*YearAnalysis `json:"years"`
	Failures  []YearFailure         `json:"failures,omitempty"`
	Treatment GroupSummary          `json:"treatment"`
	Control   GroupSummary          `json:"control"`
	CreatedAt core.Timestamp        `json:"created_at"`
}

// SeasonalService orchestrates the per-year pipeline: season window ->
// daily aggregation -> embedding -> quantile threshold -> recurrence
// matrix -> statistics.
type SeasonalService struct {
	logger      *internal.Logger
	maxParallel int64
}

// NewSeasonalService creates a seasonal analysis service.
func NewSeasonalService(logger *internal.Logger) *SeasonalService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &SeasonalService{
		logger:      logger,
		maxParallel: int64(runtime.GOMAXPROCS(0)),
	}
}

// AnalyzeYear runs the full pipeline for a single year's season window.
func (s *SeasonalService) AnalyzeYear(ctx context.Context, ts series.TimeSeries, year int, p SeasonalParams) (*YearAnalysis, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	window := ts.SeasonWindow(year, p.StartMonth, p.EndMonth)
	daily := window.DailyMeans()

	embedded, err := rqa.Embed(daily, p.EmbeddingDim, p.Delay)
	if err != nil {
		return nil, err
	}

	threshold, err := quantileThreshold(embedded, p.ThresholdQuantile)
	if err != nil {
		return nil, err
	}

	matrix, err := rqa.BuildRecurrenceMatrix(embedded, threshold)
	if err != nil {
		return nil, err
	}

	analysis := &YearAnalysis{
		Year:      year,
		Days:      len(daily),
		Threshold: threshold,
		Embedded:  embedded,
		Matrix:    matrix,
		Result:    rqa.ComputeStatistics(matrix),
	}
	s.logger.Debug("year %d: %d days, threshold %.4f, RR %.4f",
		year, analysis.Days, threshold, analysis.Result.RR)
	return analysis, nil
}

// AnalyzeBatch runs the single-year pipeline independently for every year of
// both groups. Years run in parallel; a failing year is recorded and never
// aborts its siblings. Cancellation is honored between, not within, years.
func (s *SeasonalService) AnalyzeBatch(ctx context.Context, ts series.TimeSeries, spec BatchSpec) (*BatchResult, error) {
	if err := spec.Params.Validate(); err != nil {
		return nil, err
	}

	batch := &BatchResult{
		RunID:     core.NewRunID(),
		Params:    spec.Params,
		Years:     make(map[int]*YearAnalysis),
		CreatedAt: core.Now(),
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = semaphore.NewWeighted(s.maxParallel)
	)

	for _, year := range dedupeYears(spec.TreatmentYears, spec.ControlYears) {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Batch canceled; in-flight years finish, queued ones do not start.
			break
		}
		wg.Add(1)
		go func(year int) {
			defer wg.Done()
			defer sem.Release(1)

			analysis, err := s.AnalyzeYear(ctx, ts, year, spec.Params)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Warn("year %d failed: %v", year, err)
				batch.Failures = append(batch.Failures, YearFailure{
					Year:    year,
					Kind:    failureKind(err),
					Message: err.Error(),
				})
				return
			}
			batch.Years[year] = analysis
		}(year)
	}
	wg.Wait()

	sort.Slice(batch.Failures, func(i, j int) bool {
		return batch.Failures[i].Year < batch.Failures[j].Year
	})
	batch.Treatment = SummarizeGroup("treatment", spec.TreatmentYears, batch.Years)
	batch.Control = SummarizeGroup("control", spec.ControlYears, batch.Years)
	s.logger.Info("batch %s: %d/%d years analyzed, %d failed",
		batch.RunID, len(batch.Years),
		len(dedupeYears(spec.TreatmentYears, spec.ControlYears)), len(batch.Failures))
	return batch, nil
}

// quantileThreshold picks the recurrence threshold as the q-quantile of the
// pairwise distance distribution of the embedded space.
func quantileThreshold(embedded *rqa.EmbeddedSpace, q float64) (float64, error) {
	distances, err := rqa.PairwiseDistances(embedded)
	if err != nil {
		return 0, err
	}
	sort.Float64s(distances)
	return stat.Quantile(q, stat.Empirical, distances, nil), nil
}

// SummarizeGroup averages each metric over the group members that produced
// a result. Failed members are simply absent.
func SummarizeGroup(name string, members []int, results map[int]*YearAnalysis) GroupSummary {
	summary := GroupSummary{Name: name}

	metrics := make(map[string][]float64, 9)
	for _, year := range members {
		analysis, ok := results[year]
		if !ok {
			continue
		}
		summary.Years = append(summary.Years, year)
		r := analysis.Result
		metrics["rr"] = append(metrics["rr"], r.RR)
		metrics["det"] = append(metrics["det"], r.DET)
		metrics["lam"] = append(metrics["lam"], r.LAM)
		metrics["l"] = append(metrics["l"], r.L)
		metrics["l_max"] = append(metrics["l_max"], r.LMax)
		metrics["entr"] = append(metrics["entr"], r.ENTR)
		metrics["tt"] = append(metrics["tt"], r.TT)
		metrics["v_max"] = append(metrics["v_max"], r.VMax)
		metrics["v_entr"] = append(metrics["v_entr"], r.VEntr)
	}
	sort.Ints(summary.Years)

	summary.Means = rqa.Result{
		RR:    groupMean(metrics["rr"]),
		DET:   groupMean(metrics["det"]),
		LAM:   groupMean(metrics["lam"]),
		L:     groupMean(metrics["l"]),
		LMax:  groupMean(metrics["l_max"]),
		ENTR:  groupMean(metrics["entr"]),
		TT:    groupMean(metrics["tt"]),
		VMax:  groupMean(metrics["v_max"]),
		VEntr: groupMean(metrics["v_entr"]),
	}
	return summary
}

func groupMean(values []float64) float64 {
	mean, err := stats.Mean(values)
	if err != nil {
		return 0
	}
	return mean
}

func failureKind(err error) string {
	switch {
	case core.IsInsufficientData(err):
		return "insufficient_data"
	case core.IsEmptyDistribution(err):
		return "empty_distribution"
	case errors.Is(err, core.ErrEmptyInput):
		return "empty_input"
	case core.IsParameterError(err):
		return "invalid_params"
	default:
		return "internal"
	}
}

func dedupeYears(groups ...[]int) []int {
	seen := make(map[int]bool)
	var years []int
	for _, group := range groups {
		for _, y := range group {
			if !seen[y] {
				seen[y] = true
				years = append(years, y)
			}
		}
	}
	sort.Ints(years)
	return years
}
