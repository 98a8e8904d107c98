package sarima

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validArtifact = `{
  "order": {"p": 1, "d": 1, "q": 0, "seasonal_p": 0, "seasonal_d": 0, "seasonal_q": 0, "period": 0},
  "ar_coeffs": [0.5],
  "ma_coeffs": [],
  "sar_coeffs": [],
  "sma_coeffs": [],
  "intercept": 0,
  "variance": 1,
  "observations": [5, 8, 10, 12],
  "residuals": [0, 0, 0],
  "end_date": "2016-12-31"
}`

func TestDecodeValidArtifact(t *testing.T) {
	m, err := Decode(strings.NewReader(validArtifact))
	require.NoError(t, err)

	assert.Equal(t, Order{P: 1, D: 1}, m.Order)
	assert.Equal(t, []float64{0.5}, m.ARCoeffs)
	assert.Equal(t, "2016-12-31", m.EndDate.Format("2006-01-02"))

	fc, err := m.Forecast(3, 0.95)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{13, 13.5, 13.75}, fc.Mean, 1e-9)
}

func TestDecodeRejectsIncompatibleArtifacts(t *testing.T) {
	testCases := []struct {
		name    string
		payload string
	}{
		{"garbage", "\x80\x04\x95pickle"},
		{"unknown field", strings.Replace(validArtifact, `"intercept"`, `"trend": 1, "intercept"`, 1)},
		{"coefficient count", strings.Replace(validArtifact, `"ar_coeffs": [0.5]`, `"ar_coeffs": [0.5, 0.1]`, 1)},
		{"negative variance", strings.Replace(validArtifact, `"variance": 1`, `"variance": -1`, 1)},
		{"too few observations", strings.Replace(validArtifact, `[5, 8, 10, 12]`, `[5]`, 1)},
		{"misaligned residuals", strings.Replace(validArtifact, `"residuals": [0, 0, 0]`, `"residuals": [0]`, 1)},
		{"bad end date", strings.Replace(validArtifact, `2016-12-31`, `31/12/2016`, 1)},
		{"seasonal without period", strings.Replace(validArtifact, `"seasonal_d": 0`, `"seasonal_d": 1`, 1)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tc.payload))
			assert.ErrorIs(t, err, ErrIncompatibleModel)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, ErrModelNotFound)

	path := filepath.Join(dir, "sarima_model.json")
	require.NoError(t, os.WriteFile(path, []byte(validArtifact), 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, m.Observations, 4)

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte("{"), 0o644))
	_, err = Load(broken)
	assert.ErrorIs(t, err, ErrIncompatibleModel)
}

const validYAMLArtifact = `
order: {p: 1, d: 1, q: 0, seasonal_p: 0, seasonal_d: 0, seasonal_q: 0, period: 0}
ar_coeffs: [0.5]
ma_coeffs: []
sar_coeffs: []
sma_coeffs: []
intercept: 0
variance: 1
observations: [5, 8, 10, 12]
residuals: []
end_date: "2016-12-31"
`

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sarima_model.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validYAMLArtifact), 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Order{P: 1, D: 1}, m.Order)

	fc, err := m.Forecast(2, 0.95)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{13, 13.5}, fc.Mean, 1e-9)

	_, err = DecodeYAML(strings.NewReader(validYAMLArtifact + "trend: 1\n"))
	assert.ErrorIs(t, err, ErrIncompatibleModel)
}
