package models

import "time"

// WeatherForecastSlice is a forecast (not an observation) for one reference
// location at one target hour. Keyed by (Location, TargetTime). Read-only to
// the forecaster; the weather poller refreshes these rows.
type WeatherForecastSlice struct {
	Location    string    `json:"location"`
	TargetTime  time.Time `json:"target_time"`
	Temperature float64   `json:"temperature"`
	WindSpeed   float64   `json:"wind_speed"`
	CloudCover  float64   `json:"cloud_cover"`
	FetchedAt   time.Time `json:"fetched_at"`
}
