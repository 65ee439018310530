package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ParthPatel95/volt-site-seeker-sub021/internal/domain/models"
	"github.com/ParthPatel95/volt-site-seeker-sub021/internal/domain/repository"
	"github.com/ParthPatel95/volt-site-seeker-sub021/internal/forecast"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func fp(v float64) *float64 { return &v }

// flatWindow builds a newest-first window of n settled hours at a constant
// price with the given demand and wind.
func flatWindow(n int, price, ail, wind float64) []models.HistoricalObservation {
	out := make([]models.HistoricalObservation, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.HistoricalObservation{
			Timestamp:         testNow.Add(-time.Duration(i) * time.Hour),
			PoolPrice:         fp(price),
			AILMW:             ail,
			GenerationWind:    wind,
			GenerationGas:     6000,
			PriceLag1h:        fp(price),
			PriceLag2h:        fp(price),
			PriceLag3h:        fp(price),
			PriceLag24h:       fp(price),
			PriceLag168h:      fp(price),
			PriceRollingAvg24: fp(price),
			PriceRollingStd24: fp(0),
		})
	}
	return out
}

type fakeObservationStore struct {
	window  []models.HistoricalObservation
	err     error
	stored  []*models.HistoricalObservation
	rangeFn func(from, to time.Time) []models.HistoricalObservation
}

func (f *fakeObservationStore) LatestN(_ context.Context, n int) ([]models.HistoricalObservation, error) {
	if f.err != nil {
		return nil, f.err
	}
	if n < len(f.window) {
		return f.window[:n], nil
	}
	return f.window, nil
}

func (f *fakeObservationStore) Range(_ context.Context, from, to time.Time) ([]models.HistoricalObservation, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.rangeFn != nil {
		return f.rangeFn(from, to), nil
	}
	return f.window, nil
}

func (f *fakeObservationStore) StoreBatch(_ context.Context, obs []*models.HistoricalObservation) error {
	if f.err != nil {
		return f.err
	}
	f.stored = append(f.stored, obs...)
	return nil
}

type fakeWeatherStore struct {
	slices []models.WeatherForecastSlice
	err    error
}

func (f *fakeWeatherStore) SlicesForRange(_ context.Context, _ []string, _, _ time.Time) ([]models.WeatherForecastSlice, error) {
	return f.slices, f.err
}

func (f *fakeWeatherStore) StoreBatch(_ context.Context, _ []models.WeatherForecastSlice) error {
	return f.err
}

type fakeParameterStore struct {
	params models.ModelParameters
	err    error
}

func (f *fakeParameterStore) Active(_ context.Context, _ string) (models.ModelParameters, error) {
	if f.err != nil {
		return models.ModelParameters{}, f.err
	}
	return f.params, nil
}

type fakePredictionStore struct {
	inserted  []models.PricePrediction
	insertErr error
	matured   []models.PricePrediction
}

func (f *fakePredictionStore) InsertBatch(_ context.Context, preds []models.PricePrediction) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, preds...)
	return nil
}

func (f *fakePredictionStore) MaturedSince(_ context.Context, _ time.Time) ([]models.PricePrediction, error) {
	return f.matured, nil
}

type fakeMetrics struct {
	errors map[string]int
	runs   int
}

func (f *fakeMetrics) RecordObservationIngested(string) {}
func (f *fakeMetrics) RecordForecastRun(int)            { f.runs++ }
func (f *fakeMetrics) RecordError(kind string) {
	if f.errors == nil {
		f.errors = make(map[string]int)
	}
	f.errors[kind]++
}
func (f *fakeMetrics) RecordLastPoolPrice(float64)   {}
func (f *fakeMetrics) RecordLatency(string, float64) {}

func newTestRunner(obs *fakeObservationStore, params *fakeParameterStore, preds *fakePredictionStore, m *fakeMetrics) *ForecastRunner {
	return NewForecastRunner(
		obs,
		&fakeWeatherStore{},
		params,
		preds,
		RunnerConfig{
			ModelVersion:    "default",
			LookbackHours:   336,
			MaxHorizonHours: 168,
			Thresholds:      models.DefaultRegimeThresholds(),
			Locations:       []string{"calgary", "edmonton"},
		},
		WithRunnerMetrics(m),
		WithRunnerClock(func() time.Time { return testNow }),
	)
}

func TestParseHorizon(t *testing.T) {
	cases := []struct {
		in    string
		hours int
		ok    bool
	}{
		{"24h", 24, true},
		{"1h", 1, true},
		{"3d", 72, true},
		{"7d", 168, true},
		{"0h", 0, false},
		{"24", 0, false},
		{"h", 0, false},
		{"-1h", 0, false},
		{"24x", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, err := ParseHorizon(c.in)
		if c.ok {
			if err != nil {
				t.Errorf("ParseHorizon(%q) unexpected error: %v", c.in, err)
			}
			if got != c.hours {
				t.Errorf("ParseHorizon(%q) = %d, want %d", c.in, got, c.hours)
			}
			continue
		}
		if err == nil {
			t.Errorf("ParseHorizon(%q) expected error", c.in)
		}
		if !errors.Is(err, ErrInvalidHorizon) {
			t.Errorf("ParseHorizon(%q) error not ErrInvalidHorizon: %v", c.in, err)
		}
	}
}

func TestForecastFlatMarket(t *testing.T) {
	obs := &fakeObservationStore{window: flatWindow(48, 50, 9500, 1000)}
	params := &fakeParameterStore{params: models.DefaultModelParameters()}
	preds := &fakePredictionStore{}
	m := &fakeMetrics{}
	r := newTestRunner(obs, params, preds, m)

	resp, err := r.Forecast(context.Background(), "6h")
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if !resp.Success {
		t.Error("expected Success true")
	}
	if resp.Degraded {
		t.Error("expected Degraded false with stored parameters")
	}
	if len(resp.Predictions) != 6 {
		t.Fatalf("expected 6 predictions, got %d", len(resp.Predictions))
	}
	if resp.DataPointsUsed != 48 {
		t.Errorf("DataPointsUsed = %d, want 48", resp.DataPointsUsed)
	}
	for _, p := range resp.Predictions {
		if p.PredictedPrice < 0 {
			t.Errorf("hour %d: negative price %f", p.HorizonHours, p.PredictedPrice)
		}
		if p.PredictedPrice < 30 || p.PredictedPrice > 70 {
			t.Errorf("hour %d: price %f far from flat market", p.HorizonHours, p.PredictedPrice)
		}
	}
	if len(preds.inserted) != 6 {
		t.Errorf("expected 6 persisted predictions, got %d", len(preds.inserted))
	}
	if m.runs != 1 {
		t.Errorf("expected 1 recorded run, got %d", m.runs)
	}
}

func TestForecastMissingParametersDegrades(t *testing.T) {
	obs := &fakeObservationStore{window: flatWindow(48, 50, 9500, 1000)}
	params := &fakeParameterStore{err: repository.ErrParametersNotFound}
	r := newTestRunner(obs, params, &fakePredictionStore{}, &fakeMetrics{})

	resp, err := r.Forecast(context.Background(), "2h")
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if !resp.Degraded {
		t.Error("expected Degraded true when parameters are missing")
	}
	if resp.ModelVersion != "default" {
		t.Errorf("ModelVersion = %q, want default", resp.ModelVersion)
	}
}

func TestForecastParameterStoreFailure(t *testing.T) {
	obs := &fakeObservationStore{window: flatWindow(48, 50, 9500, 1000)}
	params := &fakeParameterStore{err: errors.New("connection refused")}
	r := newTestRunner(obs, params, &fakePredictionStore{}, &fakeMetrics{})

	if _, err := r.Forecast(context.Background(), "2h"); err == nil {
		t.Fatal("expected error when parameter store fails hard")
	}
}

func TestForecastPersistFailureNonFatal(t *testing.T) {
	obs := &fakeObservationStore{window: flatWindow(48, 50, 9500, 1000)}
	params := &fakeParameterStore{params: models.DefaultModelParameters()}
	preds := &fakePredictionStore{insertErr: errors.New("disk full")}
	m := &fakeMetrics{}
	r := newTestRunner(obs, params, preds, m)

	resp, err := r.Forecast(context.Background(), "3h")
	if err != nil {
		t.Fatalf("Forecast should survive persistence failure: %v", err)
	}
	if len(resp.Predictions) != 3 {
		t.Errorf("expected 3 predictions, got %d", len(resp.Predictions))
	}
	if m.errors["prediction_persist"] == 0 {
		t.Error("expected prediction_persist error recorded")
	}
}

func TestForecastInvalidHorizon(t *testing.T) {
	r := newTestRunner(&fakeObservationStore{}, &fakeParameterStore{}, &fakePredictionStore{}, &fakeMetrics{})

	for _, h := range []string{"banana", "1000h", "8d"} {
		_, err := r.Forecast(context.Background(), h)
		if !errors.Is(err, ErrInvalidHorizon) {
			t.Errorf("horizon %q: expected ErrInvalidHorizon, got %v", h, err)
		}
	}
}

func TestForecastInsufficientData(t *testing.T) {
	obs := &fakeObservationStore{window: flatWindow(2, 50, 9500, 1000)}
	params := &fakeParameterStore{params: models.DefaultModelParameters()}
	r := newTestRunner(obs, params, &fakePredictionStore{}, &fakeMetrics{})

	_, err := r.Forecast(context.Background(), "24h")
	if !errors.Is(err, forecast.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestRegimeClassifiesLatest(t *testing.T) {
	obs := &fakeObservationStore{window: flatWindow(1, 50, 12000, 500)}
	params := &fakeParameterStore{params: models.DefaultModelParameters()}
	r := newTestRunner(obs, params, &fakePredictionStore{}, &fakeMetrics{})

	status, err := r.Regime(context.Background())
	if err != nil {
		t.Fatalf("Regime: %v", err)
	}
	if status.Regime != models.RegimePeakDemand {
		t.Errorf("Regime = %q, want %q", status.Regime, models.RegimePeakDemand)
	}
	if status.AILMW != 12000 {
		t.Errorf("AILMW = %f, want 12000", status.AILMW)
	}
}

func TestRegimeEmptyStore(t *testing.T) {
	r := newTestRunner(&fakeObservationStore{}, &fakeParameterStore{}, &fakePredictionStore{}, &fakeMetrics{})
	if _, err := r.Regime(context.Background()); !errors.Is(err, forecast.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}
