package sarima

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat/distuv"
)

// ErrInvalidSteps is returned when a forecast horizon is smaller than one step.
var ErrInvalidSteps = errors.New("steps must be at least 1")

// Order represents SARIMA model order (p, d, q) x (P, D, Q, m).
type Order struct {
	P int `json:"p" yaml:"p"` // Non-seasonal AR order
	D int `json:"d" yaml:"d"` // Non-seasonal differencing order
	Q int `json:"q" yaml:"q"` // Non-seasonal MA order
	// Seasonal components
	SP int `json:"seasonal_p" yaml:"seasonal_p"` // Seasonal AR order
	SD int `json:"seasonal_d" yaml:"seasonal_d"` // Seasonal differencing order
	SQ int `json:"seasonal_q" yaml:"seasonal_q"` // Seasonal MA order
	M  int `json:"period" yaml:"period"`     // Seasonal period (12 for monthly data with yearly seasonality)
}

func (o Order) String() string {
	return fmt.Sprintf("SARIMA(%d,%d,%d)(%d,%d,%d)[%d]", o.P, o.D, o.Q, o.SP, o.SD, o.SQ, o.M)
}

func (o Order) seasonal() bool {
	return o.SP > 0 || o.SD > 0 || o.SQ > 0
}

// Model is a fitted SARIMA model. It is treated as immutable once loaded.
type Model struct {
	Order     Order
	ARCoeffs  []float64 // Non-seasonal AR coefficients
	MACoeffs  []float64 // Non-seasonal MA coefficients
	SARCoeffs []float64 // Seasonal AR coefficients
	SMACoeffs []float64 // Seasonal MA coefficients
	Intercept float64   // Mean of the differenced series
	Variance  float64   // Innovation variance σ²

	// Observations is the training series on the original scale.
	Observations []float64
	// Residuals are the in-sample innovations aligned with the differenced series.
	Residuals []float64
	// EndDate is the period (month end) of the last training observation.
	EndDate time.Time
}

// Forecast holds point forecasts and their prediction interval.
type Forecast struct {
	Mean       []float64
	Lower      []float64
	Upper      []float64
	StdErrors  []float64
	Confidence float64
}

// Forecast generates forecasts for the specified number of steps ahead with
// prediction intervals at the given confidence level. A confidence outside
// (0,1) falls back to 0.95.
func (m *Model) Forecast(steps int, confidence float64) (*Forecast, error) {
	if steps < 1 {
		return nil, ErrInvalidSteps
	}
	if confidence <= 0 || confidence >= 1 {
		confidence = 0.95
	}

	levels, lags := differenceChain(m.Observations, m.Order)
	w := levels[len(levels)-1]
	n := len(w)

	ar := arLagCoeffs(m.ARCoeffs, m.SARCoeffs, m.Order.M)
	ma := maLagCoeffs(m.MACoeffs, m.SMACoeffs, m.Order.M)

	extW := make([]float64, n+steps)
	copy(extW, w)
	extResiduals := make([]float64, n+steps)
	if len(m.Residuals) == n {
		copy(extResiduals, m.Residuals)
	}

	mu := m.Intercept
	for h := 0; h < steps; h++ {
		t := n + h
		pred := mu
		for k := 1; k < len(ar); k++ {
			if t-k < 0 {
				break
			}
			pred += ar[k] * (extW[t-k] - mu)
		}
		// future innovations are zero, only in-sample residuals contribute
		for k := 1; k < len(ma); k++ {
			if t-k < 0 {
				break
			}
			if t-k < n {
				pred += ma[k] * extResiduals[t-k]
			}
		}
		extW[t] = pred
	}

	mean := integrate(extW[n:], levels, lags)

	psi := psiWeights(ar, ma, lags, steps)
	z := zScore(confidence)
	sigma := math.Sqrt(m.Variance)

	fc := &Forecast{
		Mean:       mean,
		Lower:      make([]float64, steps),
		Upper:      make([]float64, steps),
		StdErrors:  make([]float64, steps),
		Confidence: confidence,
	}
	cum := 0.0
	for h := 0; h < steps; h++ {
		cum += psi[h] * psi[h]
		se := sigma * math.Sqrt(cum)
		fc.StdErrors[h] = se
		fc.Lower[h] = mean[h] - z*se
		fc.Upper[h] = mean[h] + z*se
	}

	return fc, nil
}

// ForecastDates returns the month-end dates of the next steps periods after EndDate.
func (m *Model) ForecastDates(steps int) []time.Time {
	if steps < 1 {
		return nil
	}
	y, mon, _ := m.EndDate.Date()
	dates := make([]time.Time, steps)
	for i := 0; i < steps; i++ {
		// day 0 of the following month is the last day of the target month
		dates[i] = time.Date(y, mon+time.Month(i)+2, 0, 0, 0, 0, 0, time.UTC)
	}
	return dates
}

// differenceChain applies d non-seasonal and then D seasonal differences.
// levels[0] is the original series; lags[i] is the lag taking levels[i] to levels[i+1].
func differenceChain(values []float64, order Order) ([][]float64, []int) {
	levels := [][]float64{values}
	var lags []int
	for i := 0; i < order.D; i++ {
		levels = append(levels, diff(levels[len(levels)-1], 1))
		lags = append(lags, 1)
	}
	for i := 0; i < order.SD; i++ {
		levels = append(levels, diff(levels[len(levels)-1], order.M))
		lags = append(lags, order.M)
	}
	return levels, lags
}

func diff(values []float64, lag int) []float64 {
	if len(values) <= lag {
		return nil
	}
	out := make([]float64, len(values)-lag)
	for i := lag; i < len(values); i++ {
		out[i-lag] = values[i] - values[i-lag]
	}
	return out
}

// integrate undoes differencing, last level first: y[t] = z[t] + y[t-lag].
func integrate(forecasts []float64, levels [][]float64, lags []int) []float64 {
	result := make([]float64, len(forecasts))
	copy(result, forecasts)

	for lvl := len(lags) - 1; lvl >= 0; lvl-- {
		prev := levels[lvl]
		lag := lags[lvl]
		ext := make([]float64, len(prev), len(prev)+len(result))
		copy(ext, prev)
		for j := range result {
			v := result[j] + ext[len(prev)+j-lag]
			ext = append(ext, v)
			result[j] = v
		}
	}
	return result
}

// zScore returns the two-sided standard normal critical value for confidence.
func zScore(confidence float64) float64 {
	return distuv.UnitNormal.Quantile((1 + confidence) / 2)
}
