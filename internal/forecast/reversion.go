package forecast

import (
	"math"

	"github.com/ParthPatel95/volt-site-seeker-sub021/internal/domain/models"
)

const (
	reversionBase    = 0.05
	reversionPerHour = 1.0 / 200
	reversionCap     = 0.20
	deviationSigmas  = 2.0
)

// Revert pulls an extreme raw prediction back toward the recent weighted
// average. Compounding multiplicative factors would otherwise run unbounded at
// long horizons. Predictions within 2 sigma of the average pass through
// unchanged, as do extremes with a structural cause (high wind, peak demand).
func Revert(raw float64, stats WindowStats, horizonHours int, regime models.Regime) float64 {
	deviation := math.Abs(raw - stats.WeightedAvg)
	maxDeviation := deviationSigmas * stats.StdDev
	if deviation <= maxDeviation || StructurallyExtreme(regime) {
		return raw
	}
	f := ReversionFactor(horizonHours)
	return raw*(1-f) + stats.WeightedAvg*f
}

// ReversionFactor grows linearly with horizon and is capped at 20%.
func ReversionFactor(horizonHours int) float64 {
	f := reversionBase + float64(horizonHours)*reversionPerHour
	if f > reversionCap {
		return reversionCap
	}
	return f
}
