package models

import "time"

// Requests for forecast HTTP endpoints. Defined in domain for consistency and reuse.

type ForecastRequest struct {
	Horizon string `query:"horizon" json:"horizon" default:"24h" validate:"required"`
}

type ObservationsRequest struct {
	N int `query:"n" json:"n" default:"48" validate:"gte=1,lte=2000"`
}

type AccuracyRequest struct {
	Hours int `query:"hours" json:"hours" default:"168" validate:"gte=1,lte=2160"`
}

// ForecastResponse is the logical forecast result returned to callers.
// Degraded is set when the run fell back to default model parameters; callers
// that do not care can ignore it.
type ForecastResponse struct {
	Success        bool              `json:"success"`
	Predictions    []PricePrediction `json:"predictions"`
	ModelVersion   string            `json:"model_version"`
	DataPointsUsed int               `json:"data_points_used"`
	Degraded       bool              `json:"degraded,omitempty"`
	GeneratedAt    time.Time         `json:"generated_at"`
}

// AccuracyReport summarizes realized-vs-predicted error for matured target hours.
type AccuracyReport struct {
	From            time.Time `json:"from"`
	To              time.Time `json:"to"`
	Samples         int       `json:"samples"`
	MAE             float64   `json:"mae"`
	MAPE            float64   `json:"mape"`
	WithinBandRatio float64   `json:"within_band_ratio"`
}

// RegimeStatus reports the classification of the latest observation.
type RegimeStatus struct {
	Timestamp time.Time `json:"timestamp"`
	Regime    Regime    `json:"regime"`
	AILMW     float64   `json:"ail_mw"`
	WindMW    float64   `json:"wind_mw"`
}
