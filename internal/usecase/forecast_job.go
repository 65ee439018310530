package usecase

import (
	"context"
	"fmt"

	applogger "github.com/ParthPatel95/volt-site-seeker-sub021/pkg/logger"
	"github.com/ParthPatel95/volt-site-seeker-sub021/pkg/queue"
)

// ForecastJobType is the queue message type for scheduled forecast runs.
const ForecastJobType = "forecast.run"

// ForecastJobPayload carries the horizon for one scheduled run.
type ForecastJobPayload struct {
	Horizon string `json:"horizon"`
}

// ForecastJob runs a forecast when a scheduled message arrives. Regular runs
// keep the prediction table populated so accuracy evaluation always has
// matured predictions to score, independent of HTTP traffic.
type ForecastJob struct {
	runner *ForecastRunner
	logger *applogger.Logger
}

func NewForecastJob(runner *ForecastRunner, logger *applogger.Logger) *ForecastJob {
	return &ForecastJob{runner: runner, logger: logger}
}

func (j *ForecastJob) Name() string { return "forecast_runner" }

func (j *ForecastJob) Type() string { return ForecastJobType }

func (j *ForecastJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[ForecastJobPayload](payload)
	if err != nil {
		return fmt.Errorf("forecast job payload: %w", err)
	}
	horizon := p.Horizon
	if horizon == "" {
		horizon = "24h"
	}

	res, err := j.runner.Forecast(ctx, horizon)
	if err != nil {
		return fmt.Errorf("scheduled forecast %s: %w", horizon, err)
	}
	j.logger.Info("scheduled forecast completed",
		applogger.String("horizon", horizon),
		applogger.Int("predictions", len(res.Predictions)),
		applogger.Bool("degraded", res.Degraded))
	return nil
}

var _ queue.Job = (*ForecastJob)(nil)
