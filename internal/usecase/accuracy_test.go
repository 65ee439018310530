package usecase

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/ParthPatel95/volt-site-seeker-sub021/internal/domain/models"
)

func matured(target time.Time, predicted, lower, upper float64) models.PricePrediction {
	return models.PricePrediction{
		GeneratedAt:     target.Add(-24 * time.Hour),
		TargetTime:      target,
		HorizonHours:    24,
		PredictedPrice:  predicted,
		ConfidenceLower: lower,
		ConfidenceUpper: upper,
	}
}

func realizedAt(target time.Time, price float64) models.HistoricalObservation {
	return models.HistoricalObservation{Timestamp: target, PoolPrice: fp(price)}
}

func TestEvaluateJoinsRealizedPrices(t *testing.T) {
	h1 := testNow.Add(-3 * time.Hour)
	h2 := testNow.Add(-2 * time.Hour)
	h3 := testNow.Add(-1 * time.Hour)

	preds := &fakePredictionStore{matured: []models.PricePrediction{
		matured(h1, 50, 40, 60),   // realized 55: err 5, within band
		matured(h2, 100, 80, 120), // realized 130: err 30, outside band
		matured(h3, 40, 30, 50),   // no realized price, skipped
	}}
	obs := &fakeObservationStore{window: []models.HistoricalObservation{
		realizedAt(h2, 130),
		realizedAt(h1, 55),
	}}

	e := NewAccuracyEvaluator(preds, obs)
	e.now = func() time.Time { return testNow }

	report, err := e.Evaluate(context.Background(), 168)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if report.Samples != 2 {
		t.Fatalf("Samples = %d, want 2", report.Samples)
	}
	wantMAE := (5.0 + 30.0) / 2
	if math.Abs(report.MAE-wantMAE) > 1e-9 {
		t.Errorf("MAE = %f, want %f", report.MAE, wantMAE)
	}
	wantMAPE := (5.0/55 + 30.0/130) / 2 * 100
	if math.Abs(report.MAPE-wantMAPE) > 1e-9 {
		t.Errorf("MAPE = %f, want %f", report.MAPE, wantMAPE)
	}
	if math.Abs(report.WithinBandRatio-0.5) > 1e-9 {
		t.Errorf("WithinBandRatio = %f, want 0.5", report.WithinBandRatio)
	}
}

func TestEvaluateZeroPriceExcludedFromMAPE(t *testing.T) {
	h1 := testNow.Add(-2 * time.Hour)
	h2 := testNow.Add(-1 * time.Hour)

	preds := &fakePredictionStore{matured: []models.PricePrediction{
		matured(h1, 10, 0, 20),  // realized 0: in MAE and band, not MAPE
		matured(h2, 50, 40, 60), // realized 50: perfect
	}}
	obs := &fakeObservationStore{window: []models.HistoricalObservation{
		realizedAt(h2, 50),
		realizedAt(h1, 0),
	}}

	e := NewAccuracyEvaluator(preds, obs)
	e.now = func() time.Time { return testNow }

	report, err := e.Evaluate(context.Background(), 24)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if report.Samples != 2 {
		t.Fatalf("Samples = %d, want 2", report.Samples)
	}
	if math.Abs(report.MAE-5) > 1e-9 {
		t.Errorf("MAE = %f, want 5", report.MAE)
	}
	if report.MAPE != 0 {
		t.Errorf("MAPE = %f, want 0 with only a free-power hour", report.MAPE)
	}
	if report.WithinBandRatio != 1 {
		t.Errorf("WithinBandRatio = %f, want 1", report.WithinBandRatio)
	}
}

func TestEvaluateNoSamples(t *testing.T) {
	e := NewAccuracyEvaluator(&fakePredictionStore{}, &fakeObservationStore{})
	e.now = func() time.Time { return testNow }

	report, err := e.Evaluate(context.Background(), 24)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if report.Samples != 0 || report.MAE != 0 || report.MAPE != 0 {
		t.Errorf("expected zeroed report, got %+v", report)
	}
}
