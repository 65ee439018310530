package forecast

import "math"

// zScore95 is the two-sided 95% critical value under a normal approximation.
const zScore95 = 1.96

// ConfidenceBand derives an uncertainty band around a prediction from recent
// price volatility. Uncertainty grows with the square root of elapsed time
// (the standard diffusion scaling), so the band at horizon 48 is exactly
// sqrt(2) times the band at horizon 24. The lower bound is clamped to zero to
// match the predictor's price floor; the score degrades toward 0 as relative
// uncertainty grows.
func ConfidenceBand(stdDev float64, horizonHours int, prediction float64) (lower, upper, score float64) {
	volatility := stdDev * math.Sqrt(float64(horizonHours)/24)

	lower = prediction - zScore95*volatility
	if lower < 0 {
		lower = 0
	}
	upper = prediction + zScore95*volatility

	if prediction > 0 {
		score = 1 - volatility/prediction
	}
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return lower, upper, score
}
