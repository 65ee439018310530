package models

// ModelParameters is the per-version configuration of the point predictor.
// Produced by an offline training job, loaded once per forecast run, and
// treated as immutable for that run. FeatureImportance maps feature name to a
// weight in [0,100]; the weights are independent contribution multipliers, not
// a distribution, so they need not sum to anything.
type ModelParameters struct {
	Version           string             `json:"version"`
	MeanTarget        float64            `json:"mean_target"`
	LearningRate      float64            `json:"learning_rate"` // provenance only, unused
	FeatureImportance map[string]float64 `json:"feature_importance"`
}

// DefaultModelParameters is the fallback used when no stored parameter record
// exists for the active version. An empty importance map degrades every
// adjustment toward neutral, so the forecast collapses to the mean prior.
func DefaultModelParameters() ModelParameters {
	return ModelParameters{
		Version:           "default",
		MeanTarget:        50,
		LearningRate:      0.1,
		FeatureImportance: map[string]float64{},
	}
}

// Weight returns the importance for name scaled to [0,1].
func (p ModelParameters) Weight(name string) float64 {
	w := p.FeatureImportance[name]
	if w < 0 {
		return 0
	}
	if w > 100 {
		return 1
	}
	return w / 100
}

// RegimeThresholds are the MW cut-offs used by the regime classifier.
// Configuration, not derived.
type RegimeThresholds struct {
	HighWindMW   float64 `json:"high_wind_mw" yaml:"high_wind_mw"`
	PeakDemandMW float64 `json:"peak_demand_mw" yaml:"peak_demand_mw"`
	LowDemandMW  float64 `json:"low_demand_mw" yaml:"low_demand_mw"`
}

// DefaultRegimeThresholds match typical Alberta grid conditions.
func DefaultRegimeThresholds() RegimeThresholds {
	return RegimeThresholds{HighWindMW: 2000, PeakDemandMW: 11000, LowDemandMW: 8500}
}
