// Package sarima loads fitted seasonal ARIMA models and produces forecasts.
//
// A model is trained elsewhere and handed to this package as a JSON artifact
// holding its order, coefficients, innovation variance, training observations
// and in-sample residuals. The package never re-estimates parameters.
//
// # Model
//
// SARIMA(p,d,q)(P,D,Q)[m] in the multiplicative form
//
//	φ(B)Φ(Bᵐ)(1-B)ᵈ(1-Bᵐ)ᴰ yₜ = c + θ(B)Θ(Bᵐ)εₜ
//
// Point forecasts run the recursion on the differenced series with future
// innovations set to zero and then undo every differencing step. Interval
// half-widths are z·σ·sqrt(Σψⱼ²) where ψ are the MA(∞) weights of the full
// model, differencing operators included.
//
// # Usage
//
//	model, err := sarima.Load("models/sarima_model.json")
//	if err != nil {
//		return err
//	}
//	fc, err := model.Forecast(12, 0.95)
//	dates := model.ForecastDates(12)
package sarima
