package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ParthPatel95/volt-site-seeker-sub021/internal/domain/models"
	"github.com/ParthPatel95/volt-site-seeker-sub021/internal/domain/repository"
)

// AccuracyEvaluator joins matured predictions against the realized pool
// prices for the same hours and reports aggregate error figures.
type AccuracyEvaluator struct {
	predictions  repository.PredictionStore
	observations repository.ObservationStore
	now          func() time.Time
}

func NewAccuracyEvaluator(
	predictions repository.PredictionStore,
	observations repository.ObservationStore,
) *AccuracyEvaluator {
	return &AccuracyEvaluator{
		predictions:  predictions,
		observations: observations,
		now:          time.Now,
	}
}

// Evaluate scores predictions whose target hour fell within the trailing
// window of the given length. Hours without a settled price are skipped, and
// near-zero realized prices are excluded from MAPE so a single free-power
// hour cannot blow up the percentage error.
func (a *AccuracyEvaluator) Evaluate(ctx context.Context, hours int) (*models.AccuracyReport, error) {
	to := a.now().UTC()
	from := to.Add(-time.Duration(hours) * time.Hour)

	preds, err := a.predictions.MaturedSince(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("load matured predictions: %w", err)
	}

	obs, err := a.observations.Range(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("load realized observations: %w", err)
	}

	realized := make(map[int64]float64, len(obs))
	for _, o := range obs {
		if o.PoolPrice == nil {
			continue
		}
		realized[o.Timestamp.Truncate(time.Hour).Unix()] = *o.PoolPrice
	}

	const mapeFloor = 0.01

	var (
		samples    int
		absErrSum  float64
		pctErrSum  float64
		pctSamples int
		withinBand int
	)
	for _, p := range preds {
		actual, ok := realized[p.TargetTime.Truncate(time.Hour).Unix()]
		if !ok {
			continue
		}
		samples++
		absErrSum += math.Abs(p.PredictedPrice - actual)
		if math.Abs(actual) > mapeFloor {
			pctErrSum += math.Abs(p.PredictedPrice-actual) / math.Abs(actual)
			pctSamples++
		}
		if actual >= p.ConfidenceLower && actual <= p.ConfidenceUpper {
			withinBand++
		}
	}

	report := &models.AccuracyReport{From: from, To: to, Samples: samples}
	if samples > 0 {
		report.MAE = absErrSum / float64(samples)
		report.WithinBandRatio = float64(withinBand) / float64(samples)
	}
	if pctSamples > 0 {
		report.MAPE = pctErrSum / float64(pctSamples) * 100
	}
	return report, nil
}
