package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/ParthPatel95/volt-site-seeker-sub021/internal/domain/models"
	"github.com/ParthPatel95/volt-site-seeker-sub021/internal/domain/repository"
	"github.com/ParthPatel95/volt-site-seeker-sub021/internal/forecast"
	applogger "github.com/ParthPatel95/volt-site-seeker-sub021/pkg/logger"
)

// ErrInvalidHorizon is returned for horizon strings that do not parse or
// exceed the configured maximum. Handlers map it to a 400.
var ErrInvalidHorizon = errors.New("usecase: invalid forecast horizon")

var horizonPattern = regexp.MustCompile(`^(\d+)([hd])$`)

// ParseHorizon converts a horizon string like "24h" or "3d" into whole hours.
func ParseHorizon(s string) (int, error) {
	m := horizonPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidHorizon, s)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidHorizon, s)
	}
	if m[2] == "d" {
		n *= 24
	}
	return n, nil
}

// RunnerConfig holds the tunables of a forecast run.
type RunnerConfig struct {
	ModelVersion    string
	LookbackHours   int
	MaxHorizonHours int
	Thresholds      models.RegimeThresholds
	Locations       []string
}

// ForecastRunner orchestrates one forecast request end to end: load the
// observation window, resolve model parameters, run the prediction pipeline
// and persist the result for later accuracy evaluation.
type ForecastRunner struct {
	observations repository.ObservationStore
	weather      repository.WeatherStore
	parameters   repository.ParameterStore
	predictions  repository.PredictionStore
	metrics      repository.Metrics
	logger       *applogger.Logger

	cfg RunnerConfig
	now func() time.Time
}

type RunnerOption func(*ForecastRunner)

func WithRunnerLogger(l *applogger.Logger) RunnerOption {
	return func(r *ForecastRunner) { r.logger = l }
}

func WithRunnerMetrics(m repository.Metrics) RunnerOption {
	return func(r *ForecastRunner) { r.metrics = m }
}

// WithRunnerClock overrides the wall clock, used by tests.
func WithRunnerClock(now func() time.Time) RunnerOption {
	return func(r *ForecastRunner) { r.now = now }
}

func NewForecastRunner(
	observations repository.ObservationStore,
	weather repository.WeatherStore,
	parameters repository.ParameterStore,
	predictions repository.PredictionStore,
	cfg RunnerConfig,
	opts ...RunnerOption,
) *ForecastRunner {
	if cfg.LookbackHours <= 0 {
		cfg.LookbackHours = 336
	}
	if cfg.MaxHorizonHours <= 0 {
		cfg.MaxHorizonHours = 168
	}
	if cfg.ModelVersion == "" {
		cfg.ModelVersion = "default"
	}
	r := &ForecastRunner{
		observations: observations,
		weather:      weather,
		parameters:   parameters,
		predictions:  predictions,
		cfg:          cfg,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Forecast produces hourly pool price predictions out to the requested
// horizon. Persistence of the prediction batch is best-effort: a storage
// failure is logged and counted but the caller still gets the result.
func (r *ForecastRunner) Forecast(ctx context.Context, horizon string) (*models.ForecastResponse, error) {
	started := time.Now()

	hours, err := ParseHorizon(horizon)
	if err != nil {
		return nil, err
	}
	if hours > r.cfg.MaxHorizonHours {
		return nil, fmt.Errorf("%w: %d hours exceeds maximum %d", ErrInvalidHorizon, hours, r.cfg.MaxHorizonHours)
	}

	window, err := r.observations.LatestN(ctx, r.cfg.LookbackHours)
	if err != nil {
		r.recordError("observation_load")
		return nil, fmt.Errorf("load observation window: %w", err)
	}

	params, degraded, err := r.loadParameters(ctx)
	if err != nil {
		return nil, err
	}

	now := r.now().UTC()
	lookup, err := r.weatherLookup(ctx, now, hours)
	if err != nil {
		// Weather is an enhancement, not a prerequisite. The extractor falls
		// back to observed temperatures when a slice is missing.
		r.log("weather load failed, continuing without forecast slices", applogger.Error(err))
		r.recordError("weather_load")
		lookup = nil
	}

	preds, err := forecast.Run(forecast.RunInput{
		Window:       window,
		Params:       params,
		Thresholds:   r.cfg.Thresholds,
		HorizonHours: hours,
		Now:          now,
		Weather:      lookup,
	})
	if err != nil {
		r.recordError("forecast_run")
		return nil, err
	}

	if r.predictions != nil {
		if err := r.predictions.InsertBatch(ctx, preds); err != nil {
			r.log("failed to persist prediction batch", applogger.Error(err), applogger.Int("count", len(preds)))
			r.recordError("prediction_persist")
		}
	}

	if r.metrics != nil {
		r.metrics.RecordForecastRun(hours)
		r.metrics.RecordLatency("forecast_run", time.Since(started).Seconds())
	}

	return &models.ForecastResponse{
		Success:        true,
		Predictions:    preds,
		ModelVersion:   params.Version,
		DataPointsUsed: len(window),
		Degraded:       degraded,
		GeneratedAt:    now,
	}, nil
}

// Regime classifies the latest stored observation.
func (r *ForecastRunner) Regime(ctx context.Context) (*models.RegimeStatus, error) {
	window, err := r.observations.LatestN(ctx, 1)
	if err != nil {
		r.recordError("observation_load")
		return nil, fmt.Errorf("load latest observation: %w", err)
	}
	if len(window) == 0 {
		return nil, forecast.ErrInsufficientData
	}
	latest := window[0]
	return &models.RegimeStatus{
		Timestamp: latest.Timestamp,
		Regime:    forecast.ClassifyRegime(latest, r.cfg.Thresholds),
		AILMW:     latest.AILMW,
		WindMW:    latest.GenerationWind,
	}, nil
}

// Observations returns the n newest stored observations.
func (r *ForecastRunner) Observations(ctx context.Context, n int) ([]models.HistoricalObservation, error) {
	obs, err := r.observations.LatestN(ctx, n)
	if err != nil {
		r.recordError("observation_load")
		return nil, fmt.Errorf("load observations: %w", err)
	}
	return obs, nil
}

func (r *ForecastRunner) loadParameters(ctx context.Context) (models.ModelParameters, bool, error) {
	params, err := r.parameters.Active(ctx, r.cfg.ModelVersion)
	if err == nil {
		return params, false, nil
	}
	if errors.Is(err, repository.ErrParametersNotFound) {
		r.log("no active model parameters, using defaults",
			applogger.String("version", r.cfg.ModelVersion))
		r.recordError("parameters_missing")
		return models.DefaultModelParameters(), true, nil
	}
	r.recordError("parameter_load")
	return models.ModelParameters{}, false, fmt.Errorf("load model parameters: %w", err)
}

// weatherLookup loads every forecast slice covering the horizon in one query
// and serves them from memory, keyed by location and target hour.
func (r *ForecastRunner) weatherLookup(ctx context.Context, now time.Time, hours int) (forecast.WeatherLookup, error) {
	if r.weather == nil || len(r.cfg.Locations) == 0 {
		return nil, nil
	}
	from := now.Truncate(time.Hour)
	to := from.Add(time.Duration(hours+1) * time.Hour)
	slices, err := r.weather.SlicesForRange(ctx, r.cfg.Locations, from, to)
	if err != nil {
		return nil, err
	}
	byHour := make(map[int64]map[string]models.WeatherForecastSlice, hours)
	for _, s := range slices {
		key := s.TargetTime.Truncate(time.Hour).Unix()
		if byHour[key] == nil {
			byHour[key] = make(map[string]models.WeatherForecastSlice, len(r.cfg.Locations))
		}
		byHour[key][s.Location] = s
	}
	return func(target time.Time) map[string]models.WeatherForecastSlice {
		return byHour[target.Truncate(time.Hour).Unix()]
	}, nil
}

func (r *ForecastRunner) log(msg string, fields ...applogger.Field) {
	if r.logger != nil {
		r.logger.Warn(msg, fields...)
	}
}

func (r *ForecastRunner) recordError(kind string) {
	if r.metrics != nil {
		r.metrics.RecordError(kind)
	}
}
