package forecast

import (
	"math"
	"testing"

	"github.com/ParthPatel95/volt-site-seeker-sub021/internal/domain/models"
)

func paramsWith(importance map[string]float64) models.ModelParameters {
	return models.ModelParameters{Version: "v1", MeanTarget: 50, FeatureImportance: importance}
}

func TestPredictNeutralFeatures(t *testing.T) {
	// Every feature at the mean, mid-day weekday: prediction stays at the prior.
	fv := models.FeatureVector{
		PriceLag1h: 50, PriceLag24h: 50, PriceRollingAvg24h: 50,
		Hour: 12, AILMW: 9000, GenerationWind: 500,
	}
	p := paramsWith(map[string]float64{
		"price_lag_1h": 80, "price_lag_24h": 60, "price_rolling_avg_24h": 50,
		"hour": 70, "ail_mw": 60, "generation_wind": 60, "temperature": 40,
	})
	got := Predict(fv, p)
	if math.Abs(got-50) > 1e-9 {
		t.Fatalf("neutral features must return the prior, got %f", got)
	}
}

func TestPredictEmptyImportanceDegradesToPrior(t *testing.T) {
	fv := models.FeatureVector{
		PriceLag1h: 500, PriceLag24h: 200, PriceRollingAvg24h: 300,
		Hour: 18, IsWeekend: true, AILMW: 12000, GenerationWind: 3000,
		TemperatureCalgary: -30, TemperatureEdmonton: -30,
	}
	got := Predict(fv, models.DefaultModelParameters())
	if math.Abs(got-50) > 1e-9 {
		t.Fatalf("empty importance map must degrade every adjustment to neutral, got %f", got)
	}
}

func TestPredictLagRatio(t *testing.T) {
	// Same deviation on the 1h and 24h lags with equal importance: the 1h lag
	// must pull twice as hard.
	p := paramsWith(map[string]float64{"price_lag_1h": 100, "price_lag_24h": 100})

	via1h := Predict(models.FeatureVector{PriceLag1h: 60, PriceLag24h: 50, PriceRollingAvg24h: 50, Hour: 12}, p)
	via24h := Predict(models.FeatureVector{PriceLag1h: 50, PriceLag24h: 60, PriceRollingAvg24h: 50, Hour: 12}, p)

	shift1h := via1h - 50
	shift24h := via24h - 50
	if math.Abs(shift1h-2*shift24h) > 1e-9 {
		t.Fatalf("lag ratio: 1h shift %f, 24h shift %f", shift1h, shift24h)
	}
}

func TestPredictEveningPeakFactor(t *testing.T) {
	p := paramsWith(map[string]float64{"hour": 100})
	base := models.FeatureVector{PriceLag1h: 50, PriceLag24h: 50, PriceRollingAvg24h: 50}

	evening := base
	evening.Hour = 18
	if got := Predict(evening, p); math.Abs(got-50*1.15) > 1e-9 {
		t.Fatalf("evening peak: want %f got %f", 50*1.15, got)
	}

	overnight := base
	overnight.Hour = 3
	if got := Predict(overnight, p); math.Abs(got-50*0.85) > 1e-9 {
		t.Fatalf("overnight: want %f got %f", 50*0.85, got)
	}

	// Importance 50 halves the factor's distance from 1.
	p50 := paramsWith(map[string]float64{"hour": 50})
	if got := Predict(evening, p50); math.Abs(got-50*1.075) > 1e-9 {
		t.Fatalf("damped evening peak: want %f got %f", 50*1.075, got)
	}
}

func TestPredictNonNegative(t *testing.T) {
	// A prior of zero with strongly negative lag deviations must clamp at 0.
	p := models.ModelParameters{Version: "v1", MeanTarget: 5,
		FeatureImportance: map[string]float64{"price_lag_1h": 100}}
	fv := models.FeatureVector{PriceLag1h: -500, PriceLag24h: 5, PriceRollingAvg24h: 5, Hour: 12}
	if got := Predict(fv, p); got != 0 {
		t.Fatalf("prediction must clamp at zero, got %f", got)
	}
}

func TestPredictHighDemandAndWindFactors(t *testing.T) {
	base := models.FeatureVector{PriceLag1h: 50, PriceLag24h: 50, PriceRollingAvg24h: 50, Hour: 12}

	p := paramsWith(map[string]float64{"ail_mw": 100})
	hot := base
	hot.AILMW = 11500
	if got := Predict(hot, p); math.Abs(got-50*1.12) > 1e-9 {
		t.Fatalf("high demand factor: want %f got %f", 50*1.12, got)
	}

	p = paramsWith(map[string]float64{"generation_wind": 100})
	windy := base
	windy.GenerationWind = 2500
	if got := Predict(windy, p); math.Abs(got-50*0.88) > 1e-9 {
		t.Fatalf("high wind factor: want %f got %f", 50*0.88, got)
	}
}
