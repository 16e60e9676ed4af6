package testkit

import (
	"math"
	"math/rand"
	"time"

	"gorqa/domain/core"
	"gorqa/domain/series"
)

// Deterministic signal generators used by tests and the demo command.

// SineSignal generates a sinusoid of the given length and period with
// additive uniform noise in [-noiseAmp, noiseAmp].
func SineSignal(n int, period, noiseAmp float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	signal := make([]float64, n)
	for i := range signal {
		signal[i] = math.Sin(2*math.Pi*float64(i)/period) + noiseAmp*(2*rng.Float64()-1)
	}
	return signal
}

// NearConstantSignal generates a slowly receding low-variance signal with
// tiny noise, mimicking a drought-season low-flow recession toward baseflow.
func NearConstantSignal(n int, level, noiseAmp float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	signal := make([]float64, n)
	for i := range signal {
		recession := 0.5 * level * math.Exp(-float64(i)/40.0)
		signal[i] = level + recession + noiseAmp*(2*rng.Float64()-1)
	}
	return signal
}

// IrregularSignal generates a highly irregular signal (uniform noise with a
// random walk component), mimicking a flashy high-variance regime.
func IrregularSignal(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	signal := make([]float64, n)
	walk := 0.0
	for i := range signal {
		walk += rng.NormFloat64()
		signal[i] = walk + 10*rng.Float64()
	}
	return signal
}

// SeasonSeries lays the given daily values onto consecutive calendar days
// starting at the first of startMonth of the given year.
func SeasonSeries(varKey core.VariableKey, year int, startMonth time.Month, values []float64) series.TimeSeries {
	start := time.Date(year, startMonth, 1, 12, 0, 0, 0, time.UTC)
	samples := make([]series.Sample, len(values))
	for i, v := range values {
		samples[i] = series.Sample{At: start.AddDate(0, 0, i), Value: v}
	}
	return series.New(varKey, samples)
}

// MultiYearSeries concatenates one season of daily values per year into a
// single series, using the same month window for every year.
func MultiYearSeries(varKey core.VariableKey, startMonth time.Month, perYear map[int][]float64) series.TimeSeries {
	var samples []series.Sample
	for year, values := range perYear {
		start := time.Date(year, startMonth, 1, 12, 0, 0, 0, time.UTC)
		for i, v := range values {
			samples = append(samples, series.Sample{At: start.AddDate(0, 0, i), Value: v})
		}
	}
	return series.New(varKey, samples)
}
