package forecast

import (
	"math"
	"testing"

	"github.com/ParthPatel95/volt-site-seeker-sub021/internal/domain/models"
)

func TestRevertWithinBandPassesThrough(t *testing.T) {
	stats := WindowStats{WeightedAvg: 50, StdDev: 10}
	// deviation 15 <= 2*10
	if got := Revert(65, stats, 24, models.RegimeBase); got != 65 {
		t.Fatalf("within 2 sigma must pass through, got %f", got)
	}
}

func TestRevertBlendsExtreme(t *testing.T) {
	stats := WindowStats{WeightedAvg: 50, StdDev: 10}
	raw := 200.0 // deviation 150 > 20
	h := 24
	f := ReversionFactor(h) // 0.05 + 24/200 = 0.17
	want := raw*(1-f) + 50*f
	if got := Revert(raw, stats, h, models.RegimeBase); math.Abs(got-want) > 1e-9 {
		t.Fatalf("want %f got %f", want, got)
	}
	if want >= raw {
		t.Fatalf("reversion must pull toward the average")
	}
}

func TestRevertSkipsStructuralExtremes(t *testing.T) {
	stats := WindowStats{WeightedAvg: 50, StdDev: 10}
	if got := Revert(200, stats, 24, models.RegimeHighWind); got != 200 {
		t.Fatalf("high wind extreme must pass through, got %f", got)
	}
	if got := Revert(200, stats, 24, models.RegimePeakDemand); got != 200 {
		t.Fatalf("peak demand extreme must pass through, got %f", got)
	}
	if got := Revert(200, stats, 24, models.RegimeLowDemand); got == 200 {
		t.Fatalf("low demand extreme must revert")
	}
}

func TestReversionFactorCap(t *testing.T) {
	if f := ReversionFactor(1000); f != 0.20 {
		t.Fatalf("pathological horizon must cap at 0.20, got %f", f)
	}
	if f := ReversionFactor(1); math.Abs(f-0.055) > 1e-9 {
		t.Fatalf("horizon 1: want 0.055 got %f", f)
	}
	if f := ReversionFactor(30); math.Abs(f-0.20) > 1e-9 {
		t.Fatalf("factor reaches the cap at horizon 30, got %f", f)
	}
}
