package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	models "github.com/ParthPatel95/volt-site-seeker-sub021/internal/domain/models"
	"github.com/ParthPatel95/volt-site-seeker-sub021/internal/forecast"
	icache "github.com/ParthPatel95/volt-site-seeker-sub021/internal/service/cache"
	"github.com/ParthPatel95/volt-site-seeker-sub021/internal/service/metrics"
	"github.com/ParthPatel95/volt-site-seeker-sub021/internal/service/ratelimit"
	"github.com/ParthPatel95/volt-site-seeker-sub021/internal/usecase"
	xhttp "github.com/ParthPatel95/volt-site-seeker-sub021/pkg/http"
	xlogger "github.com/ParthPatel95/volt-site-seeker-sub021/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ForecastEchoHandler implements the Echo-based HTTP surface of the
// forecaster: forecast runs, regime status, raw observations and accuracy.
type ForecastEchoHandler struct {
	logger   *xlogger.Logger
	runner   *usecase.ForecastRunner
	accuracy *usecase.AccuracyEvaluator
	cache    icache.BytesCache
	rl       *ratelimit.Limiter

	streamProbe func() bool
	storeProbe  func(ctx context.Context) error
}

func NewForecastEchoHandler(logger *xlogger.Logger, runner *usecase.ForecastRunner, accuracy *usecase.AccuracyEvaluator) *ForecastEchoHandler {
	metrics.Register()
	return &ForecastEchoHandler{logger: logger, runner: runner, accuracy: accuracy, rl: ratelimit.New()}
}

// SetCache injects a response cache. A nil cache disables caching.
func (h *ForecastEchoHandler) SetCache(c icache.BytesCache) { h.cache = c }

// SetStreamProbe injects the live-feed connectivity check used by /health.
func (h *ForecastEchoHandler) SetStreamProbe(probe func() bool) { h.streamProbe = probe }

// SetStoreProbe injects the storage ping used by /health.
func (h *ForecastEchoHandler) SetStoreProbe(probe func(ctx context.Context) error) {
	h.storeProbe = probe
}

func (h *ForecastEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	g := e.Group("/api")
	g.GET("/forecast", h.Forecast)
	g.GET("/regime", h.Regime)
	g.GET("/observations", h.Observations)
	g.GET("/accuracy", h.Accuracy)
}

func (h *ForecastEchoHandler) Health(c echo.Context) error {
	status := map[string]interface{}{"status": "ok"}
	if h.streamProbe != nil {
		status["stream_connected"] = h.streamProbe()
	}
	if h.storeProbe != nil {
		if err := h.storeProbe(c.Request().Context()); err != nil {
			status["status"] = "degraded"
			status["clickhouse"] = err.Error()
		} else {
			status["clickhouse"] = "ok"
		}
	}
	return xhttp.SuccessResponse(c, status)
}

func (h *ForecastEchoHandler) Forecast(c echo.Context) error {
	start := time.Now()
	endpoint := "forecast"
	defer func() { metrics.ForecastLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":forecast", 5, 2) {
		h.logger.Warn("forecast rate_limited", xlogger.String("remote", c.RealIP()))
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "rate limited", http.StatusTooManyRequests))
	}

	cacheKey := "forecast:" + req.Horizon
	if b, ok := h.cacheGet(endpoint, cacheKey); ok {
		return xhttp.SuccessResponse(c, json.RawMessage(b))
	}

	res, err := h.runner.Forecast(c.Request().Context(), req.Horizon)
	if err != nil {
		metrics.ForecastErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("forecast usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapForecastError(err))
	}

	h.cacheSet(cacheKey, res, 60*time.Second)
	return xhttp.SuccessResponse(c, res)
}

func (h *ForecastEchoHandler) Regime(c echo.Context) error {
	start := time.Now()
	endpoint := "regime"
	defer func() { metrics.ForecastLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	cacheKey := "regime"
	if b, ok := h.cacheGet(endpoint, cacheKey); ok {
		return xhttp.SuccessResponse(c, json.RawMessage(b))
	}

	res, err := h.runner.Regime(c.Request().Context())
	if err != nil {
		metrics.ForecastErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("regime usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapForecastError(err))
	}

	h.cacheSet(cacheKey, res, 15*time.Second)
	return xhttp.SuccessResponse(c, res)
}

func (h *ForecastEchoHandler) Observations(c echo.Context) error {
	endpoint := "observations"
	start := time.Now()
	defer func() { metrics.ForecastLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.ObservationsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.runner.Observations(c.Request().Context(), req.N)
	if err != nil {
		metrics.ForecastErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("observations usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ForecastEchoHandler) Accuracy(c echo.Context) error {
	endpoint := "accuracy"
	start := time.Now()
	defer func() { metrics.ForecastLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.AccuracyRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.accuracy.Evaluate(c.Request().Context(), req.Hours)
	if err != nil {
		metrics.ForecastErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("accuracy usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ForecastEchoHandler) cacheGet(endpoint, key string) ([]byte, bool) {
	if h.cache == nil {
		return nil, false
	}
	b, ok, err := h.cache.GetBytes(key)
	if err != nil {
		h.logger.Warn("cache_get_error", xlogger.Error(err), xlogger.String("key", key))
		return nil, false
	}
	if ok {
		metrics.ForecastCacheHits.WithLabelValues(endpoint).Inc()
	}
	return b, ok
}

func (h *ForecastEchoHandler) cacheSet(key string, v interface{}, ttl time.Duration) {
	if h.cache == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := h.cache.SetBytes(key, b, ttl); err != nil {
		h.logger.Warn("cache_set_error", xlogger.Error(err), xlogger.String("key", key))
	}
}

func mapForecastError(err error) error {
	switch {
	case errors.Is(err, usecase.ErrInvalidHorizon):
		return xhttp.BadRequestError(err.Error()).WithError(err)
	case errors.Is(err, forecast.ErrInsufficientData):
		return xhttp.NewAppError("ERR_INSUFFICIENT_DATA", "", err.Error(), http.StatusUnprocessableEntity).WithError(err)
	default:
		return err
	}
}
