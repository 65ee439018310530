package forecast

import (
	"testing"

	"github.com/ParthPatel95/volt-site-seeker-sub021/internal/domain/models"
)

func TestClassifyRegime(t *testing.T) {
	th := models.DefaultRegimeThresholds() // wind 2000, peak 11000, low 8500

	cases := []struct {
		name string
		ail  float64
		wind float64
		want models.Regime
	}{
		{"base", 9000, 500, models.RegimeBase},
		{"high wind", 9000, 2500, models.RegimeHighWind},
		{"peak demand", 12000, 500, models.RegimePeakDemand},
		{"low demand", 8000, 500, models.RegimeLowDemand},
		// wind check precedes demand: windy peak hour is high_wind
		{"wind beats peak", 12000, 2500, models.RegimeHighWind},
		// demand exactly 0 means missing data, never low_demand
		{"zero demand", 0, 0, models.RegimeBase},
		{"at wind threshold", 9000, 2000, models.RegimeBase},
		{"at low threshold", 8500, 0, models.RegimeBase},
	}
	for _, c := range cases {
		obs := models.HistoricalObservation{AILMW: c.ail, GenerationWind: c.wind}
		if got := ClassifyRegime(obs, th); got != c.want {
			t.Errorf("%s: want %s got %s", c.name, c.want, got)
		}
	}
}

func TestStructurallyExtreme(t *testing.T) {
	if !StructurallyExtreme(models.RegimeHighWind) || !StructurallyExtreme(models.RegimePeakDemand) {
		t.Fatalf("high_wind and peak_demand are structural extremes")
	}
	if StructurallyExtreme(models.RegimeBase) || StructurallyExtreme(models.RegimeLowDemand) {
		t.Fatalf("base and low_demand are not structural extremes")
	}
}
