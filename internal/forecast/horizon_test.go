package forecast

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/ParthPatel95/volt-site-seeker-sub021/internal/domain/models"
)

func TestRunFlatMarket(t *testing.T) {
	// 48 hourly observations at a constant $50 with calm demand and no wind:
	// every prediction should land within a few dollars of $50 and confidence
	// should decay as the horizon grows.
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	window := makeWindow(48, 50, 9000, 0)

	preds, err := Run(RunInput{
		Window: window,
		Params: models.ModelParameters{Version: "v1", MeanTarget: 50,
			FeatureImportance: map[string]float64{
				"price_lag_1h": 80, "price_lag_24h": 60, "price_rolling_avg_24h": 50,
				"hour": 70, "is_weekend": 40, "ail_mw": 60, "generation_wind": 60, "temperature": 40,
			}},
		Thresholds:   models.DefaultRegimeThresholds(),
		HorizonHours: 3,
		Now:          now,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(preds) != 3 {
		t.Fatalf("expected 3 predictions, got %d", len(preds))
	}
	for i, p := range preds {
		if math.Abs(p.PredictedPrice-50) > 5 {
			t.Errorf("hour %d: prediction %f strays too far from 50", p.HorizonHours, p.PredictedPrice)
		}
		if p.HorizonHours != i+1 {
			t.Errorf("horizon must increase monotonically, got %d at index %d", p.HorizonHours, i)
		}
		if !p.TargetTime.Equal(now.Add(time.Duration(i+1) * time.Hour)) {
			t.Errorf("target time mismatch at hour %d", p.HorizonHours)
		}
		if p.ConfidenceLower > p.PredictedPrice || p.PredictedPrice > p.ConfidenceUpper {
			t.Errorf("hour %d: band [%f, %f] must contain %f",
				p.HorizonHours, p.ConfidenceLower, p.ConfidenceUpper, p.PredictedPrice)
		}
		if p.PredictedPrice < 0 || p.ConfidenceLower < 0 {
			t.Errorf("hour %d: negative price or bound", p.HorizonHours)
		}
		if p.Regime != models.RegimeBase {
			t.Errorf("calm market must be base regime, got %s", p.Regime)
		}
		if p.ModelVersion != "v1" {
			t.Errorf("model version not carried through")
		}
	}
	// zero volatility keeps the score at 1 on a perfectly flat window, so
	// check non-increase rather than strict decrease
	if preds[1].ConfidenceScore > preds[0].ConfidenceScore ||
		preds[2].ConfidenceScore > preds[1].ConfidenceScore {
		t.Fatalf("confidence must not grow with horizon: %f %f %f",
			preds[0].ConfidenceScore, preds[1].ConfidenceScore, preds[2].ConfidenceScore)
	}
}

func TestRunConfidenceDecaysWithVolatility(t *testing.T) {
	window := makeWindow(48, 50, 9000, 0)
	// introduce volatility so the score strictly decays
	for i := range window {
		v := 50 + 10*float64(i%5)
		window[i].PoolPrice = &v
	}
	preds, err := Run(RunInput{
		Window:       window,
		Params:       models.DefaultModelParameters(),
		Thresholds:   models.DefaultRegimeThresholds(),
		HorizonHours: 3,
		Now:          time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !(preds[0].ConfidenceScore > preds[1].ConfidenceScore &&
		preds[1].ConfidenceScore > preds[2].ConfidenceScore) {
		t.Fatalf("confidence must strictly decay under volatility: %f %f %f",
			preds[0].ConfidenceScore, preds[1].ConfidenceScore, preds[2].ConfidenceScore)
	}
}

func TestRunFailsFastOnBadHorizon(t *testing.T) {
	if _, err := Run(RunInput{Window: makeWindow(48, 50, 9000, 0), HorizonHours: 0}); err == nil {
		t.Fatalf("horizon 0 must fail")
	}
}

func TestRunInsufficientData(t *testing.T) {
	_, err := Run(RunInput{
		Window:       makeWindow(2, 50, 9000, 0),
		Params:       models.DefaultModelParameters(),
		Thresholds:   models.DefaultRegimeThresholds(),
		HorizonHours: 3,
		Now:          time.Now(),
	})
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestRunWeatherLookupPerHour(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	window := makeWindow(48, 50, 9000, 0)

	seen := make(map[time.Time]bool)
	lookup := func(target time.Time) map[string]models.WeatherForecastSlice {
		seen[target] = true
		if target.Hour()%2 == 0 {
			// odd hours have no forecast: must degrade, not fail
			return nil
		}
		return map[string]models.WeatherForecastSlice{
			"calgary": {Location: "calgary", TargetTime: target, Temperature: 5, WindSpeed: 20},
		}
	}

	preds, err := Run(RunInput{
		Window:       window,
		Params:       models.DefaultModelParameters(),
		Thresholds:   models.DefaultRegimeThresholds(),
		HorizonHours: 4,
		Now:          now,
		Weather:      lookup,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seen) != 4 {
		t.Fatalf("weather lookup must run once per hour, saw %d", len(seen))
	}
	for _, p := range preds {
		if p.TargetTime.Hour()%2 != 0 && p.Features.WindSpeed != 20 {
			t.Errorf("hour %d: weather slice not applied", p.HorizonHours)
		}
	}
}
