package models

import "time"

// Regime is a coarse classification of current grid conditions. It selects
// which prediction adjustments apply and whether an extreme forecast is
// structurally justified.
type Regime string

const (
	RegimeBase       Regime = "base"
	RegimeHighWind   Regime = "high_wind"
	RegimePeakDemand Regime = "peak_demand"
	RegimeLowDemand  Regime = "low_demand"
)

// FeatureVector is the fixed-shape input to the point predictor. It is an
// explicitly-typed struct rather than an open map so that a missing field is a
// compile error, not a runtime "missing key" surprise. Persisted alongside
// each prediction for auditability.
type FeatureVector struct {
	PriceLag1h   float64 `json:"price_lag_1h"`
	PriceLag2h   float64 `json:"price_lag_2h"`
	PriceLag3h   float64 `json:"price_lag_3h"`
	PriceLag24h  float64 `json:"price_lag_24h"`
	PriceLag168h float64 `json:"price_lag_168h"`

	PriceRollingAvg24h float64 `json:"price_rolling_avg_24h"`
	PriceRollingStd24h float64 `json:"price_rolling_std_24h"`

	Hour      int  `json:"hour"`
	DayOfWeek int  `json:"day_of_week"`
	Month     int  `json:"month"`
	IsWeekend bool `json:"is_weekend"`

	AILMW                float64 `json:"ail_mw"`
	GenerationWind       float64 `json:"generation_wind"`
	GenerationSolar      float64 `json:"generation_solar"`
	GenerationGas        float64 `json:"generation_gas"`
	RenewablePenetration float64 `json:"renewable_penetration"`

	TemperatureCalgary  float64 `json:"temperature_calgary"`
	TemperatureEdmonton float64 `json:"temperature_edmonton"`
	WindSpeed           float64 `json:"wind_speed"`

	NetDemand            float64 `json:"net_demand"`
	ReserveMarginPercent float64 `json:"reserve_margin_percent"`
}

// PricePrediction is one forecast result for one target hour. Created once per
// (generation run, target hour), never mutated; the accuracy evaluator later
// joins it against the realized pool price.
type PricePrediction struct {
	GeneratedAt     time.Time     `json:"generated_at"`
	TargetTime      time.Time     `json:"target_time"`
	HorizonHours    int           `json:"horizon_hours"`
	PredictedPrice  float64       `json:"predicted_price"`
	ConfidenceLower float64       `json:"confidence_lower"`
	ConfidenceUpper float64       `json:"confidence_upper"`
	ConfidenceScore float64       `json:"confidence_score"`
	Regime          Regime        `json:"regime"`
	ModelVersion    string        `json:"model_version"`
	Features        FeatureVector `json:"features"`
}
