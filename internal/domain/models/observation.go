package models

import "time"

// HistoricalObservation is one hourly snapshot of the Alberta grid: the
// settled pool price plus the demand/generation/weather context it settled in.
// Records are append-only; the ingestion pipeline writes them and the
// forecaster only ever reads. Timestamps are strictly increasing, one row per
// hour. Gaps are tolerated and never interpolated.
//
// PoolPrice and the pre-computed lag/rolling columns are pointers because the
// upstream feed publishes rows before settlement; a nil price means the hour
// is not usable for feature extraction yet.
type HistoricalObservation struct {
	Timestamp time.Time `json:"timestamp"`
	PoolPrice *float64  `json:"pool_price"`

	// Alberta Internal Load, MW.
	AILMW float64 `json:"ail_mw"`

	GenerationWind  float64 `json:"generation_wind"`
	GenerationSolar float64 `json:"generation_solar"`
	GenerationGas   float64 `json:"generation_gas"`
	GenerationOther float64 `json:"generation_other"`

	TemperatureCalgary  *float64 `json:"temperature_calgary"`
	TemperatureEdmonton *float64 `json:"temperature_edmonton"`

	// Lag and rolling columns are computed by the ingestion side so that a
	// forecast run does not need more history than its own window.
	PriceLag1h        *float64 `json:"price_lag_1h"`
	PriceLag2h        *float64 `json:"price_lag_2h"`
	PriceLag3h        *float64 `json:"price_lag_3h"`
	PriceLag24h       *float64 `json:"price_lag_24h"`
	PriceLag168h      *float64 `json:"price_lag_168h"`
	PriceRollingAvg24 *float64 `json:"price_rolling_avg_24h"`
	PriceRollingStd24 *float64 `json:"price_rolling_std_24h"`
}

// TotalGeneration sums generation across fuel types.
func (o *HistoricalObservation) TotalGeneration() float64 {
	return o.GenerationWind + o.GenerationSolar + o.GenerationGas + o.GenerationOther
}
