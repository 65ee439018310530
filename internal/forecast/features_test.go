package forecast

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/ParthPatel95/volt-site-seeker-sub021/internal/domain/models"
)

func fp(v float64) *float64 { return &v }

// makeWindow builds a newest-first window of n hourly observations at a
// constant price.
func makeWindow(n int, price, ail, wind float64) []models.HistoricalObservation {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	out := make([]models.HistoricalObservation, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.HistoricalObservation{
			Timestamp:      now.Add(-time.Duration(i) * time.Hour),
			PoolPrice:      fp(price),
			AILMW:          ail,
			GenerationWind: wind,
			GenerationGas:  9000,
		})
	}
	return out
}

func TestComputeWindowStatsInsufficientData(t *testing.T) {
	w := makeWindow(2, 50, 9000, 0)
	if _, err := ComputeWindowStats(w); err == nil {
		t.Fatalf("expected error with 2 usable prices")
	} else if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}

	// nil prices do not count as usable
	w = makeWindow(5, 50, 9000, 0)
	for i := 2; i < 5; i++ {
		w[i].PoolPrice = nil
	}
	if _, err := ComputeWindowStats(w); err == nil {
		t.Fatalf("expected error with 2 usable of 5")
	}
}

func TestComputeWindowStatsExactlyThree(t *testing.T) {
	w := makeWindow(3, 50, 9000, 0)
	stats, err := ComputeWindowStats(w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(stats.WeightedAvg-50) > 1e-9 {
		t.Fatalf("constant prices must average to 50, got %f", stats.WeightedAvg)
	}
	if stats.StdDev != 0 {
		t.Fatalf("constant prices must have zero std, got %f", stats.StdDev)
	}
	if stats.UsablePoints != 3 {
		t.Fatalf("expected 3 usable points, got %d", stats.UsablePoints)
	}
}

func TestComputeWindowStatsWeightsRecent(t *testing.T) {
	// Newest price 100, the rest 50: the decay-weighted mean must land well
	// above the plain mean of the tail.
	w := makeWindow(48, 50, 9000, 0)
	w[0].PoolPrice = fp(100)
	stats, err := ComputeWindowStats(w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.WeightedAvg <= 55 {
		t.Fatalf("newest observation should dominate, got avg %f", stats.WeightedAvg)
	}
	if stats.StdDev <= 0 {
		t.Fatalf("expected positive std, got %f", stats.StdDev)
	}
}

func TestExtractLagFallback(t *testing.T) {
	w := makeWindow(10, 50, 9000, 0)
	// no lag columns at all: everything falls back to the weighted average
	stats, err := ComputeWindowStats(w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fv, err := Extract(w, stats, w[0].Timestamp.Add(time.Hour), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fv.PriceLag24h != stats.WeightedAvg {
		t.Fatalf("missing lag must fall back to weighted avg, got %f", fv.PriceLag24h)
	}
	// the settled price doubles as the 1h lag
	if fv.PriceLag1h != 50 {
		t.Fatalf("expected latest price as 1h lag, got %f", fv.PriceLag1h)
	}
}

func TestExtractCalendarFields(t *testing.T) {
	w := makeWindow(5, 50, 9000, 0)
	stats, _ := ComputeWindowStats(w)
	target := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC) // Saturday evening
	fv, err := Extract(w, stats, target, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fv.Hour != 18 || fv.DayOfWeek != int(time.Saturday) || fv.Month != 3 {
		t.Fatalf("calendar fields wrong: %+v", fv)
	}
	if !fv.IsWeekend {
		t.Fatalf("saturday must be a weekend")
	}
}

func TestExtractWeatherSlice(t *testing.T) {
	w := makeWindow(5, 50, 9000, 0)
	stats, _ := ComputeWindowStats(w)
	target := w[0].Timestamp.Add(time.Hour)
	wx := map[string]models.WeatherForecastSlice{
		"calgary":  {Location: "calgary", TargetTime: target, Temperature: -20, WindSpeed: 35},
		"edmonton": {Location: "edmonton", TargetTime: target, Temperature: -22},
	}
	fv, err := Extract(w, stats, target, wx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fv.TemperatureCalgary != -20 || fv.TemperatureEdmonton != -22 || fv.WindSpeed != 35 {
		t.Fatalf("weather not applied: %+v", fv)
	}
}

func TestExtractRenewablePenetration(t *testing.T) {
	w := makeWindow(5, 50, 10000, 1500)
	w[0].GenerationSolar = 500
	w[0].GenerationGas = 8000
	stats, _ := ComputeWindowStats(w)
	fv, err := Extract(w, stats, w[0].Timestamp.Add(time.Hour), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	total := 1500.0 + 500 + 8000
	want := (1500.0 + 500) / total
	if math.Abs(fv.RenewablePenetration-want) > 1e-9 {
		t.Fatalf("renewable penetration: want %f got %f", want, fv.RenewablePenetration)
	}
	if math.Abs(fv.NetDemand-(10000-1500-500)) > 1e-9 {
		t.Fatalf("net demand: got %f", fv.NetDemand)
	}
}
