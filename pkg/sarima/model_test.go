package sarima

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seasonalSeries(n int) []float64 {
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		values[i] = 100 + float64(i%12)*10 + float64(i/12)*5
	}
	return values
}

func TestForecastSeasonalNaive(t *testing.T) {
	obs := seasonalSeries(24)
	m := &Model{
		Order:        Order{SD: 1, M: 12},
		Variance:     4,
		Observations: obs,
		EndDate:      time.Date(2016, 12, 31, 0, 0, 0, 0, time.UTC),
	}

	fc, err := m.Forecast(13, 0.95)
	require.NoError(t, err)
	require.Len(t, fc.Mean, 13)

	// 季節差分のみのモデルは前年同月の値をそのまま返す
	for j := 0; j < 12; j++ {
		assert.InDelta(t, obs[12+j], fc.Mean[j], 1e-9, "step %d", j+1)
		assert.InDelta(t, 2.0, fc.StdErrors[j], 1e-9, "step %d", j+1)
	}
	assert.InDelta(t, fc.Mean[0], fc.Mean[12], 1e-9)
	assert.InDelta(t, 2*math.Sqrt2, fc.StdErrors[12], 1e-9)
	assert.InDelta(t, 1.959963985*2, fc.Upper[0]-fc.Mean[0], 1e-8)
}

func TestForecastRandomWalk(t *testing.T) {
	m := &Model{
		Order:        Order{D: 1},
		Variance:     9,
		Observations: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		EndDate:      time.Date(2016, 12, 31, 0, 0, 0, 0, time.UTC),
	}

	fc, err := m.Forecast(4, 0.95)
	require.NoError(t, err)

	for h := 0; h < 4; h++ {
		assert.InDelta(t, 10.0, fc.Mean[h], 1e-9)
		assert.InDelta(t, 3*math.Sqrt(float64(h+1)), fc.StdErrors[h], 1e-9)
	}
	// 区間は先に行くほど広がる
	assert.Less(t, fc.Upper[0]-fc.Lower[0], fc.Upper[3]-fc.Lower[3])
}

func TestForecastIntegratedAR(t *testing.T) {
	m := &Model{
		Order:        Order{P: 1, D: 1},
		ARCoeffs:     []float64{0.5},
		Variance:     1,
		Observations: []float64{5, 8, 10, 12},
		EndDate:      time.Date(2016, 12, 31, 0, 0, 0, 0, time.UTC),
	}

	fc, err := m.Forecast(3, 0.95)
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{13, 13.5, 13.75}, fc.Mean, 1e-9)
	assert.InDelta(t, 1.0, fc.StdErrors[0], 1e-9)
	assert.InDelta(t, math.Sqrt(3.25), fc.StdErrors[1], 1e-9)
	assert.InDelta(t, math.Sqrt(6.3125), fc.StdErrors[2], 1e-9)
}

func TestForecastUsesPastResidualsForMA(t *testing.T) {
	m := &Model{
		Order:        Order{Q: 1},
		MACoeffs:     []float64{0.4},
		Intercept:    2,
		Variance:     1,
		Observations: []float64{1, 2, 3},
		Residuals:    []float64{0, 0, 1},
		EndDate:      time.Date(2016, 12, 31, 0, 0, 0, 0, time.UTC),
	}

	fc, err := m.Forecast(2, 0.95)
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{2.4, 2.0}, fc.Mean, 1e-9)
	assert.InDelta(t, math.Sqrt(1+0.16), fc.StdErrors[1], 1e-9)
}

func TestForecastSeasonalModelIntervals(t *testing.T) {
	obs := make([]float64, 48)
	for i := range obs {
		obs[i] = 500 + 3*float64(i) + 80*math.Sin(2*math.Pi*float64(i)/12) + float64(i%5)
	}
	m := &Model{
		Order:        Order{P: 3, D: 1, SP: 1, SD: 1, M: 12},
		ARCoeffs:     []float64{-0.6, -0.3, -0.1},
		SARCoeffs:    []float64{-0.4},
		Variance:     250,
		Observations: obs,
		Residuals:    make([]float64, 48-13),
		EndDate:      time.Date(2016, 12, 31, 0, 0, 0, 0, time.UTC),
	}

	for _, steps := range []int{1, 12, 24} {
		fc, err := m.Forecast(steps, 0.95)
		require.NoError(t, err)
		require.Len(t, fc.Mean, steps)
		require.Len(t, fc.Lower, steps)
		require.Len(t, fc.Upper, steps)
		for i := 0; i < steps; i++ {
			assert.LessOrEqual(t, fc.Lower[i], fc.Mean[i])
			assert.LessOrEqual(t, fc.Mean[i], fc.Upper[i])
		}
	}

	first, err := m.Forecast(12, 0.95)
	require.NoError(t, err)
	second, err := m.Forecast(12, 0.95)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestForecastRejectsNonPositiveSteps(t *testing.T) {
	m := &Model{Order: Order{D: 1}, Observations: []float64{1, 2, 3}}

	for _, steps := range []int{0, -1} {
		_, err := m.Forecast(steps, 0.95)
		assert.ErrorIs(t, err, ErrInvalidSteps)
	}
}

func TestForecastDates(t *testing.T) {
	m := &Model{EndDate: time.Date(2016, 12, 31, 0, 0, 0, 0, time.UTC)}

	dates := m.ForecastDates(3)
	require.Len(t, dates, 3)
	assert.Equal(t, "2017-01-31", dates[0].Format("2006-01-02"))
	assert.Equal(t, "2017-02-28", dates[1].Format("2006-01-02"))
	assert.Equal(t, "2017-03-31", dates[2].Format("2006-01-02"))

	assert.Nil(t, m.ForecastDates(0))
}

func TestArLagCoeffsMultiplicative(t *testing.T) {
	a := arLagCoeffs([]float64{0.5}, []float64{0.3}, 12)

	require.Len(t, a, 14)
	assert.InDelta(t, 0.5, a[1], 1e-12)
	assert.InDelta(t, 0.3, a[12], 1e-12)
	assert.InDelta(t, -0.15, a[13], 1e-12)
}

func TestZScore(t *testing.T) {
	testCases := []struct {
		confidence float64
		expected   float64
	}{
		{0.90, 1.6448536269514722},
		{0.95, 1.959963984540054},
		{0.99, 2.5758293035489004},
	}

	for _, tc := range testCases {
		assert.InDelta(t, tc.expected, zScore(tc.confidence), 1e-9, "confidence=%v", tc.confidence)
	}
}

func TestForecastIntervalUsesExactNormalQuantile(t *testing.T) {
	m := &Model{
		Order:        Order{D: 1},
		Variance:     1,
		Observations: []float64{10, 11, 12},
		EndDate:      time.Date(2016, 12, 31, 0, 0, 0, 0, time.UTC),
	}

	fc, err := m.Forecast(1, 0.95)
	require.NoError(t, err)
	assert.InDelta(t, 1.959963985, fc.Upper[0]-fc.Mean[0], 1e-9)
	assert.InDelta(t, 1.959963985, fc.Mean[0]-fc.Lower[0], 1e-9)
}
