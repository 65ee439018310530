package usecase

import (
	"math"
	"sync"
	"time"

	"github.com/ParthPatel95/volt-site-seeker-sub021/internal/domain/models"
)

// retainHours covers the longest lag (one week) plus slack for late settles.
const retainHours = 180

// lagEnricher fills the lag and rolling price columns of an observation from
// the settled prices it has seen so far. It keeps one week of hourly prices
// in memory; hours it never saw simply leave the column nil, which the
// feature extractor already tolerates.
type lagEnricher struct {
	mu     sync.Mutex
	prices map[int64]float64 // unix hour -> settled pool price
}

func newLagEnricher() *lagEnricher {
	return &lagEnricher{prices: make(map[int64]float64)}
}

// Apply fills the derived columns in place. Columns already populated by the
// upstream feed are left alone.
func (e *lagEnricher) Apply(o *models.HistoricalObservation) {
	if o == nil {
		return
	}
	hour := o.Timestamp.Truncate(time.Hour).Unix()

	e.mu.Lock()
	defer e.mu.Unlock()

	if o.PoolPrice != nil {
		e.prices[hour] = *o.PoolPrice
		e.evict(hour)
	}

	fill := func(dst **float64, lagHours int) {
		if *dst != nil {
			return
		}
		if v, ok := e.prices[hour-int64(lagHours)*3600]; ok {
			p := v
			*dst = &p
		}
	}
	fill(&o.PriceLag1h, 1)
	fill(&o.PriceLag2h, 2)
	fill(&o.PriceLag3h, 3)
	fill(&o.PriceLag24h, 24)
	fill(&o.PriceLag168h, 168)

	if o.PriceRollingAvg24 == nil || o.PriceRollingStd24 == nil {
		avg, std, n := e.rolling24(hour)
		if n >= 2 {
			if o.PriceRollingAvg24 == nil {
				a := avg
				o.PriceRollingAvg24 = &a
			}
			if o.PriceRollingStd24 == nil {
				s := std
				o.PriceRollingStd24 = &s
			}
		}
	}
}

func (e *lagEnricher) rolling24(hour int64) (avg, std float64, n int) {
	var sum, sumSq float64
	for h := hour - 24*3600; h < hour; h += 3600 {
		if v, ok := e.prices[h]; ok {
			sum += v
			sumSq += v * v
			n++
		}
	}
	if n == 0 {
		return 0, 0, 0
	}
	avg = sum / float64(n)
	variance := sumSq/float64(n) - avg*avg
	if variance < 0 {
		variance = 0
	}
	return avg, math.Sqrt(variance), n
}

func (e *lagEnricher) evict(newest int64) {
	cutoff := newest - retainHours*3600
	for h := range e.prices {
		if h < cutoff {
			delete(e.prices, h)
		}
	}
}
