package series

import (
	"sort"
	"time"

	"gorqa/domain/core"
)

// Sample is one observation of the analyzed variable. Missing marks
// observations the upstream loader could not use; they carry no value.
type Sample struct {
	At      time.Time `json:"at"`
	Value   float64   `json:"value"`
	Missing bool      `json:"missing,omitempty"`
}

// TimeSeries is a chronologically ordered sequence of samples for a single
// variable. Treat it as immutable once constructed.
type TimeSeries struct {
	VarKey  core.VariableKey
	Samples []Sample
}

// New builds a TimeSeries, sorting samples chronologically.
func New(varKey core.VariableKey, samples []Sample) TimeSeries {
	sorted := make([]Sample, len(samples))
	copy(sorted, samples)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].At.Before(sorted[j].At)
	})
	return TimeSeries{VarKey: varKey, Samples: sorted}
}

// Len returns the number of samples, missing ones included.
func (ts TimeSeries) Len() int {
	return len(ts.Samples)
}

// SeasonWindow slices the calendar window starting at startMonth of the
// given year through the end of endMonth, inclusive. When endMonth precedes
// startMonth the window wraps into the following year (e.g. Nov-Feb).
func (ts TimeSeries) SeasonWindow(year int, startMonth, endMonth time.Month) TimeSeries {
	endYear := year
	if endMonth < startMonth {
		endYear = year + 1
	}
	start := time.Date(year, startMonth, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(endYear, endMonth+1, 1, 0, 0, 0, 0, time.UTC)

	var window []Sample
	for _, s := range ts.Samples {
		if !s.At.Before(start) && s.At.Before(end) {
			window = append(window, s)
		}
	}
	return TimeSeries{VarKey: ts.VarKey, Samples: window}
}

// DailyMeans aggregates the series to one value per calendar day (UTC),
// averaging the non-missing samples of each day. Days with no usable sample
// are skipped entirely; this is the single place missing values are dropped
// before the series reaches the embedding stage.
func (ts TimeSeries) DailyMeans() []float64 {
	type bucket struct {
		sum   float64
		count int
	}

	var order []string
	buckets := make(map[string]*bucket)
	for _, s := range ts.Samples {
		if s.Missing {
			continue
		}
		day := s.At.UTC().Format("2006-01-02")
		b, ok := buckets[day]
		if !ok {
			b = &bucket{}
			buckets[day] = b
			order = append(order, day)
		}
		b.sum += s.Value
		b.count++
	}

	means := make([]float64, 0, len(order))
	for _, day := range order {
		b := buckets[day]
		means = append(means, b.sum/float64(b.count))
	}
	return means
}

// Years returns the distinct calendar years present in the series, sorted.
func (ts TimeSeries) Years() []int {
	seen := make(map[int]bool)
	var years []int
	for _, s := range ts.Samples {
		y := s.At.UTC().Year()
		if !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	sort.Ints(years)
	return years
}
