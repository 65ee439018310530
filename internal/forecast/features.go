package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/ParthPatel95/volt-site-seeker-sub021/internal/domain/models"
)

const (
	// ewmaAlpha is the decay constant for the weighted rolling statistics:
	// the newest observation carries alpha of the remaining mass.
	ewmaAlpha = 0.3

	// ewmaWindow caps how many trailing observations feed the weighted stats.
	ewmaWindow = 48
)

// WindowStats holds the exponentially weighted mean and standard deviation of
// recent pool prices. The same numbers feed lag fallbacks, mean reversion and
// the confidence band, so they are computed once per run.
type WindowStats struct {
	WeightedAvg  float64
	StdDev       float64
	UsablePoints int
}

// ComputeWindowStats walks a newest-first window and produces decay-weighted
// price statistics over up to ewmaWindow usable points. Returns
// ErrInsufficientData when fewer than MinUsableObservations prices are
// non-null.
func ComputeWindowStats(window []models.HistoricalObservation) (WindowStats, error) {
	var (
		sumW, sumWP float64
		prices      []float64
		weights     []float64
	)
	for i := range window {
		if len(prices) >= ewmaWindow {
			break
		}
		p := window[i].PoolPrice
		if p == nil {
			continue
		}
		w := ewmaAlpha * math.Pow(1-ewmaAlpha, float64(len(prices)))
		prices = append(prices, *p)
		weights = append(weights, w)
		sumW += w
		sumWP += w * *p
	}
	if len(prices) < MinUsableObservations {
		return WindowStats{}, fmt.Errorf("%w: have %d usable prices, need %d",
			ErrInsufficientData, len(prices), MinUsableObservations)
	}

	mean := sumWP / sumW
	var sumWD float64
	for i, p := range prices {
		d := p - mean
		sumWD += weights[i] * d * d
	}
	std := math.Sqrt(sumWD / sumW)

	return WindowStats{WeightedAvg: mean, StdDev: std, UsablePoints: len(prices)}, nil
}

// Extract turns the most recent observation window (newest-first), the target
// timestamp and the weather slices for that hour into a fixed-shape feature
// vector. Missing lag columns on the latest observation fall back to the
// weighted average so downstream arithmetic stays well-defined; missing
// weather is treated as neutral zeros rather than failing the hour.
func Extract(window []models.HistoricalObservation, stats WindowStats, target time.Time, wx map[string]models.WeatherForecastSlice) (models.FeatureVector, error) {
	if len(window) == 0 {
		return models.FeatureVector{}, fmt.Errorf("%w: empty window", ErrInsufficientData)
	}
	latest := window[0]

	fallback := stats.WeightedAvg
	fv := models.FeatureVector{
		PriceLag1h:   lagOr(latest.PriceLag1h, fallback),
		PriceLag2h:   lagOr(latest.PriceLag2h, fallback),
		PriceLag3h:   lagOr(latest.PriceLag3h, fallback),
		PriceLag24h:  lagOr(latest.PriceLag24h, fallback),
		PriceLag168h: lagOr(latest.PriceLag168h, fallback),

		PriceRollingAvg24h: lagOr(latest.PriceRollingAvg24, stats.WeightedAvg),
		PriceRollingStd24h: lagOr(latest.PriceRollingStd24, stats.StdDev),

		Hour:      target.Hour(),
		DayOfWeek: int(target.Weekday()),
		Month:     int(target.Month()),
		IsWeekend: target.Weekday() == time.Saturday || target.Weekday() == time.Sunday,

		AILMW:           latest.AILMW,
		GenerationWind:  latest.GenerationWind,
		GenerationSolar: latest.GenerationSolar,
		GenerationGas:   latest.GenerationGas,
	}

	// The latest settled price is the natural 1h lag when the pre-computed
	// column is absent but the price itself is present.
	if latest.PriceLag1h == nil && latest.PoolPrice != nil {
		fv.PriceLag1h = *latest.PoolPrice
	}

	if total := latest.TotalGeneration(); total > 0 {
		fv.RenewablePenetration = (latest.GenerationWind + latest.GenerationSolar) / total
		if latest.AILMW > 0 {
			fv.ReserveMarginPercent = (total - latest.AILMW) / latest.AILMW * 100
		}
	}
	fv.NetDemand = latest.AILMW - latest.GenerationWind - latest.GenerationSolar

	// Weather: forecast slices for the target hour win; fall back to the
	// latest observed temperatures when the slice is missing.
	if s, ok := wx["calgary"]; ok {
		fv.TemperatureCalgary = s.Temperature
		fv.WindSpeed = s.WindSpeed
	} else if latest.TemperatureCalgary != nil {
		fv.TemperatureCalgary = *latest.TemperatureCalgary
	}
	if s, ok := wx["edmonton"]; ok {
		fv.TemperatureEdmonton = s.Temperature
	} else if latest.TemperatureEdmonton != nil {
		fv.TemperatureEdmonton = *latest.TemperatureEdmonton
	}

	return fv, nil
}

func lagOr(v *float64, fallback float64) float64 {
	if v != nil {
		return *v
	}
	return fallback
}
