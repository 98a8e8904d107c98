package sarima

// Lag polynomials are stored as coefficient slices indexed by lag, c[0] = 1.

// arLagCoeffs expands φ(B)Φ(Bᵐ) and returns a with
// wₜ - μ = Σ a[k](wₜ₋ₖ - μ) + ..., so a[k] = -(φ(B)Φ(Bᵐ))[k].
func arLagCoeffs(ar, sar []float64, period int) []float64 {
	poly := polyMul(lagPoly(ar, 1, -1), lagPoly(sar, period, -1))
	out := make([]float64, len(poly))
	for k := 1; k < len(poly); k++ {
		out[k] = -poly[k]
	}
	return out
}

// maLagCoeffs expands θ(B)Θ(Bᵐ); b[k] multiplies εₜ₋ₖ.
func maLagCoeffs(ma, sma []float64, period int) []float64 {
	return polyMul(lagPoly(ma, 1, 1), lagPoly(sma, period, 1))
}

// psiWeights returns the first n MA(∞) weights of the full model including
// the differencing operators described by lags.
func psiWeights(arLag, ma []float64, lags []int, n int) []float64 {
	// φ*(B) = 1 - Σ a[k]Bᵏ, then multiplied by each (1 - Bˡ)
	full := make([]float64, len(arLag))
	full[0] = 1
	for k := 1; k < len(arLag); k++ {
		full[k] = -arLag[k]
	}
	for _, lag := range lags {
		d := make([]float64, lag+1)
		d[0] = 1
		d[lag] = -1
		full = polyMul(full, d)
	}

	psi := make([]float64, n)
	for j := 0; j < n; j++ {
		v := 0.0
		if j == 0 {
			v = 1
		} else if j < len(ma) {
			v = ma[j]
		}
		for i := 1; i <= j && i < len(full); i++ {
			v -= full[i] * psi[j-i]
		}
		psi[j] = v
	}
	return psi
}

// lagPoly builds 1 + sign·Σ coeffs[i]·B^((i+1)·step).
func lagPoly(coeffs []float64, step int, sign float64) []float64 {
	if len(coeffs) == 0 || step < 1 {
		return []float64{1}
	}
	poly := make([]float64, len(coeffs)*step+1)
	poly[0] = 1
	for i, c := range coeffs {
		poly[(i+1)*step] = sign * c
	}
	return poly
}

func polyMul(a, b []float64) []float64 {
	out := make([]float64, len(a)+len(b)-1)
	for i, x := range a {
		if x == 0 {
			continue
		}
		for j, y := range b {
			out[i+j] += x * y
		}
	}
	return out
}
