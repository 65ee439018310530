package forecast

import (
	"fmt"
	"time"

	"github.com/ParthPatel95/volt-site-seeker-sub021/internal/domain/models"
)

// WeatherLookup resolves the forecast slices for one target hour, keyed by
// location. A nil lookup or an empty map is fine: missing weather degrades to
// neutral features instead of failing the run.
type WeatherLookup func(target time.Time) map[string]models.WeatherForecastSlice

// RunInput carries everything one forecast run needs. All fields are
// read-only for the duration of the run; there is no shared mutable state
// between concurrent runs.
type RunInput struct {
	// Window is the historical observation window, newest-first.
	Window []models.HistoricalObservation

	Params     models.ModelParameters
	Thresholds models.RegimeThresholds

	// HorizonHours is the number of hourly predictions to produce, >= 1.
	HorizonHours int

	// Now is the generation timestamp; target hour h is Now + h hours.
	Now time.Time

	Weather WeatherLookup
}

// Run drives the full pipeline for every hour from 1 to the requested
// horizon: extract features, classify the regime, predict, revert extremes,
// attach the confidence band. The result slice is built eagerly and a failure
// on any hour fails the whole run; no partial results are returned.
func Run(in RunInput) ([]models.PricePrediction, error) {
	if in.HorizonHours < 1 {
		return nil, fmt.Errorf("forecast: horizon must be >= 1, got %d", in.HorizonHours)
	}

	stats, err := ComputeWindowStats(in.Window)
	if err != nil {
		return nil, err
	}

	// The regime is a property of the latest observation, not of the target
	// hour, so classify once.
	regime := ClassifyRegime(in.Window[0], in.Thresholds)

	out := make([]models.PricePrediction, 0, in.HorizonHours)
	for h := 1; h <= in.HorizonHours; h++ {
		target := in.Now.Add(time.Duration(h) * time.Hour)

		var wx map[string]models.WeatherForecastSlice
		if in.Weather != nil {
			wx = in.Weather(target)
		}

		fv, err := Extract(in.Window, stats, target, wx)
		if err != nil {
			return nil, fmt.Errorf("hour %d: %w", h, err)
		}

		raw := Predict(fv, in.Params)
		corrected := Revert(raw, stats, h, regime)
		if corrected < 0 {
			// Reverting toward a negative historical average must not breach
			// the predictor's price floor.
			corrected = 0
		}
		lower, upper, score := ConfidenceBand(stats.StdDev, h, corrected)

		out = append(out, models.PricePrediction{
			GeneratedAt:     in.Now,
			TargetTime:      target,
			HorizonHours:    h,
			PredictedPrice:  corrected,
			ConfidenceLower: lower,
			ConfidenceUpper: upper,
			ConfidenceScore: score,
			Regime:          regime,
			ModelVersion:    in.Params.Version,
			Features:        fv,
		})
	}
	return out, nil
}
