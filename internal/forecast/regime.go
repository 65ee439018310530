package forecast

import "github.com/ParthPatel95/volt-site-seeker-sub021/internal/domain/models"

// ClassifyRegime labels current grid conditions from the latest observation.
// First match wins: high wind takes priority over peak demand, so a windy
// high-demand hour classifies as high_wind. A demand of exactly 0 means
// missing data and must not look like low demand.
func ClassifyRegime(latest models.HistoricalObservation, th models.RegimeThresholds) models.Regime {
	switch {
	case latest.GenerationWind > th.HighWindMW:
		return models.RegimeHighWind
	case latest.AILMW > th.PeakDemandMW:
		return models.RegimePeakDemand
	case latest.AILMW > 0 && latest.AILMW < th.LowDemandMW:
		return models.RegimeLowDemand
	default:
		return models.RegimeBase
	}
}

// StructurallyExtreme reports whether the regime justifies an extreme price on
// its own, in which case mean reversion must not pull the prediction back.
func StructurallyExtreme(r models.Regime) bool {
	return r == models.RegimeHighWind || r == models.RegimePeakDemand
}
