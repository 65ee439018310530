package forecast

import "github.com/ParthPatel95/volt-site-seeker-sub021/internal/domain/models"

// Additive contribution coefficients. The 1h lag pulls twice as hard as the
// 24h lag; the rolling average contributes at a smaller weight still.
const (
	lag1hCoef      = 0.40
	lag24hCoef     = 0.20
	rollingAvgCoef = 0.15
)

// Predict combines the stored feature-importance weights with an extracted
// feature vector to produce a raw predicted price. This is a hand-tuned
// weighted rule system, not a trained model: each named feature shifts the
// prediction additively toward its deviation from the mean prior, or applies a
// categorical multiplier damped by its importance weight.
//
// The result is clamped to >= 0. Alberta pool prices can legitimately settle
// negative; the floor is a deliberate carry-over from the original heuristic
// and is documented rather than silently fixed.
func Predict(fv models.FeatureVector, params models.ModelParameters) float64 {
	pred := params.MeanTarget
	mean := params.MeanTarget

	// Additive lag contributions.
	pred += (fv.PriceLag1h - mean) * lag1hCoef * params.Weight("price_lag_1h")
	pred += (fv.PriceLag24h - mean) * lag24hCoef * params.Weight("price_lag_24h")
	pred += (fv.PriceRollingAvg24h - mean) * rollingAvgCoef * params.Weight("price_rolling_avg_24h")

	// Damped multiplicative factors: pred *= 1 + (factor-1)*weight, so a zero
	// importance weight leaves the prediction untouched.
	pred = damp(pred, hourFactor(fv.Hour), params.Weight("hour"))
	if fv.IsWeekend {
		pred = damp(pred, 0.93, params.Weight("is_weekend"))
	}
	if fv.AILMW > 11000 {
		pred = damp(pred, 1.12, params.Weight("ail_mw"))
	}
	if fv.GenerationWind > 2000 {
		pred = damp(pred, 0.88, params.Weight("generation_wind"))
	}
	pred = damp(pred, temperatureFactor(fv.TemperatureCalgary, fv.TemperatureEdmonton), params.Weight("temperature"))

	if pred < 0 {
		pred = 0
	}
	return pred
}

func damp(pred, factor, weight float64) float64 {
	return pred * (1 + (factor-1)*weight)
}

// hourFactor models the daily demand shape: evening peak, morning ramp,
// overnight trough.
func hourFactor(hour int) float64 {
	switch {
	case hour >= 17 && hour <= 20:
		return 1.15
	case hour >= 7 && hour <= 9:
		return 1.08
	case hour <= 5:
		return 0.85
	default:
		return 1.0
	}
}

// temperatureFactor prices in heating and cooling load at the extremes.
// Deep cold bites harder than heat in this market.
func temperatureFactor(calgary, edmonton float64) float64 {
	t := (calgary + edmonton) / 2
	switch {
	case t < -15:
		return 1.12
	case t > 28:
		return 1.10
	default:
		return 1.0
	}
}
