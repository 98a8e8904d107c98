package sarima

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	// ErrModelNotFound is returned when the artifact file does not exist.
	ErrModelNotFound = errors.New("sarima model artifact not found")
	// ErrIncompatibleModel is returned when the artifact cannot be decoded or is inconsistent.
	ErrIncompatibleModel = errors.New("incompatible sarima model artifact")
)

const artifactDateLayout = "2006-01-02"

// artifact is the on-disk representation of a fitted model (JSON or YAML).
type artifact struct {
	Order        Order     `json:"order" yaml:"order"`
	ARCoeffs     []float64 `json:"ar_coeffs" yaml:"ar_coeffs"`
	MACoeffs     []float64 `json:"ma_coeffs" yaml:"ma_coeffs"`
	SARCoeffs    []float64 `json:"sar_coeffs" yaml:"sar_coeffs"`
	SMACoeffs    []float64 `json:"sma_coeffs" yaml:"sma_coeffs"`
	Intercept    float64   `json:"intercept" yaml:"intercept"`
	Variance     float64   `json:"variance" yaml:"variance"`
	Observations []float64 `json:"observations" yaml:"observations"`
	Residuals    []float64 `json:"residuals" yaml:"residuals"`
	EndDate      string    `json:"end_date" yaml:"end_date"`
}

// Load opens and decodes the artifact at path. Files ending in .yaml or .yml are
// read as YAML, everything else as JSON. The file is closed before returning.
func Load(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, path)
		}
		return nil, err
	}
	defer f.Close()

	decode := Decode
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		decode = DecodeYAML
	}

	m, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Decode reads a JSON artifact and validates it.
func Decode(r io.Reader) (*Model, error) {
	var a artifact
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIncompatibleModel, err)
	}
	return a.model()
}

// DecodeYAML reads a YAML artifact and validates it.
func DecodeYAML(r io.Reader) (*Model, error) {
	var a artifact
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIncompatibleModel, err)
	}
	return a.model()
}

func (a *artifact) model() (*Model, error) {
	if err := a.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIncompatibleModel, err)
	}

	end, err := time.Parse(artifactDateLayout, a.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: end_date: %v", ErrIncompatibleModel, err)
	}

	return &Model{
		Order:        a.Order,
		ARCoeffs:     a.ARCoeffs,
		MACoeffs:     a.MACoeffs,
		SARCoeffs:    a.SARCoeffs,
		SMACoeffs:    a.SMACoeffs,
		Intercept:    a.Intercept,
		Variance:     a.Variance,
		Observations: a.Observations,
		Residuals:    a.Residuals,
		EndDate:      end,
	}, nil
}

func (a *artifact) validate() error {
	o := a.Order
	if o.P < 0 || o.D < 0 || o.Q < 0 || o.SP < 0 || o.SD < 0 || o.SQ < 0 || o.M < 0 {
		return fmt.Errorf("negative order %s", o)
	}
	if o.seasonal() && o.M < 2 {
		return fmt.Errorf("seasonal terms require period >= 2, got %d", o.M)
	}

	checks := []struct {
		name string
		got  []float64
		want int
	}{
		{"ar_coeffs", a.ARCoeffs, o.P},
		{"ma_coeffs", a.MACoeffs, o.Q},
		{"sar_coeffs", a.SARCoeffs, o.SP},
		{"sma_coeffs", a.SMACoeffs, o.SQ},
	}
	for _, c := range checks {
		if len(c.got) != c.want {
			return fmt.Errorf("%s: expected %d coefficients, got %d", c.name, c.want, len(c.got))
		}
		if !allFinite(c.got) {
			return fmt.Errorf("%s: non-finite coefficient", c.name)
		}
	}

	if math.IsNaN(a.Variance) || math.IsInf(a.Variance, 0) || a.Variance < 0 {
		return fmt.Errorf("variance must be finite and non-negative, got %v", a.Variance)
	}
	if math.IsNaN(a.Intercept) || math.IsInf(a.Intercept, 0) {
		return errors.New("intercept must be finite")
	}

	lost := o.D + o.SD*o.M
	if len(a.Observations) <= lost {
		return fmt.Errorf("need more than %d observations for %s, got %d", lost, o, len(a.Observations))
	}
	if !allFinite(a.Observations) {
		return errors.New("observations contain non-finite values")
	}
	if n := len(a.Observations) - lost; len(a.Residuals) != 0 && len(a.Residuals) != n {
		return fmt.Errorf("residuals: expected %d values aligned with the differenced series, got %d", n, len(a.Residuals))
	}
	if !allFinite(a.Residuals) {
		return errors.New("residuals contain non-finite values")
	}
	return nil
}

func allFinite(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
