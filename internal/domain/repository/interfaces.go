package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ParthPatel95/volt-site-seeker-sub021/internal/domain/models"
)

// ErrParametersNotFound signals that no stored parameter record exists for the
// requested model version. Callers recover with the documented defaults.
var ErrParametersNotFound = errors.New("repository: model parameters not found")

// ObservationStore provides access to the hourly market observation history.
type ObservationStore interface {
	// LatestN returns the newest n observations ordered newest-first.
	LatestN(ctx context.Context, n int) ([]models.HistoricalObservation, error)

	// Range returns observations in [from, to] ordered newest-first.
	Range(ctx context.Context, from, to time.Time) ([]models.HistoricalObservation, error)

	// StoreBatch appends observations; used by the ingestion pipeline only.
	StoreBatch(ctx context.Context, obs []*models.HistoricalObservation) error
}

// WeatherStore provides weather forecast slices per location and target hour.
type WeatherStore interface {
	SlicesForRange(ctx context.Context, locations []string, from, to time.Time) ([]models.WeatherForecastSlice, error)
	StoreBatch(ctx context.Context, slices []models.WeatherForecastSlice) error
}

// ParameterStore loads the single active model parameter record per version.
type ParameterStore interface {
	Active(ctx context.Context, version string) (models.ModelParameters, error)
}

// PredictionStore persists forecast results and serves them back for
// accuracy evaluation.
type PredictionStore interface {
	InsertBatch(ctx context.Context, preds []models.PricePrediction) error

	// MaturedSince returns predictions whose target hour has passed, newest-first.
	MaturedSince(ctx context.Context, since time.Time) ([]models.PricePrediction, error)
}

// ObservationStream is a live feed of grid telemetry from the market operator.
type ObservationStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.HistoricalObservation, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Publisher forwards observations to the message broker.
type Publisher interface {
	Publish(ctx context.Context, o *models.HistoricalObservation) error
	PublishBatch(ctx context.Context, obs []*models.HistoricalObservation) error
	Close() error
}

// Metrics abstracts operational metric recording.
type Metrics interface {
	RecordObservationIngested(backend string)
	RecordForecastRun(horizonHours int)
	RecordError(kind string)
	RecordLastPoolPrice(price float64)
	RecordLatency(op string, seconds float64)
}
