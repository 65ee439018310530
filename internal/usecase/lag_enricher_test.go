package usecase

import (
	"math"
	"testing"
	"time"

	"github.com/ParthPatel95/volt-site-seeker-sub021/internal/domain/models"
)

func TestLagEnricherFillsLags(t *testing.T) {
	e := newLagEnricher()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 200; i++ {
		e.Apply(&models.HistoricalObservation{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			PoolPrice: fp(float64(i)),
		})
	}

	o := &models.HistoricalObservation{
		Timestamp: base.Add(200 * time.Hour),
		PoolPrice: fp(200),
	}
	e.Apply(o)

	checks := []struct {
		name string
		got  *float64
		want float64
	}{
		{"lag1h", o.PriceLag1h, 199},
		{"lag2h", o.PriceLag2h, 198},
		{"lag3h", o.PriceLag3h, 197},
		{"lag24h", o.PriceLag24h, 176},
		{"lag168h", o.PriceLag168h, 32},
	}
	for _, c := range checks {
		if c.got == nil {
			t.Errorf("%s: nil, want %f", c.name, c.want)
			continue
		}
		if *c.got != c.want {
			t.Errorf("%s = %f, want %f", c.name, *c.got, c.want)
		}
	}

	if o.PriceRollingAvg24 == nil {
		t.Fatal("rolling avg not filled")
	}
	// hours 176..199 average to 187.5
	if math.Abs(*o.PriceRollingAvg24-187.5) > 1e-9 {
		t.Errorf("rolling avg = %f, want 187.5", *o.PriceRollingAvg24)
	}
	if o.PriceRollingStd24 == nil {
		t.Fatal("rolling std not filled")
	}
}

func TestLagEnricherPreservesUpstreamColumns(t *testing.T) {
	e := newLagEnricher()
	e.Apply(&models.HistoricalObservation{
		Timestamp: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		PoolPrice: fp(10),
	})

	o := &models.HistoricalObservation{
		Timestamp:  time.Date(2026, 3, 1, 1, 0, 0, 0, time.UTC),
		PoolPrice:  fp(20),
		PriceLag1h: fp(99), // upstream already set it
	}
	e.Apply(o)

	if *o.PriceLag1h != 99 {
		t.Errorf("lag1h overwritten: got %f, want 99", *o.PriceLag1h)
	}
}

func TestLagEnricherMissingHoursStayNil(t *testing.T) {
	e := newLagEnricher()
	o := &models.HistoricalObservation{
		Timestamp: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		PoolPrice: fp(50),
	}
	e.Apply(o)

	if o.PriceLag1h != nil || o.PriceLag24h != nil {
		t.Error("lags should stay nil with no history")
	}
	if o.PriceRollingAvg24 != nil {
		t.Error("rolling avg should stay nil with no history")
	}
}
