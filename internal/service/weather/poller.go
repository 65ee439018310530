package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/ParthPatel95/volt-site-seeker-sub021/internal/domain/models"
	drepo "github.com/ParthPatel95/volt-site-seeker-sub021/internal/domain/repository"
	xhttp "github.com/ParthPatel95/volt-site-seeker-sub021/pkg/http"
	applogger "github.com/ParthPatel95/volt-site-seeker-sub021/pkg/logger"
)

// Location is a named point the poller fetches forecasts for.
type Location struct {
	Name      string
	Latitude  float64
	Longitude float64
}

// Poller periodically fetches hourly weather forecasts for the configured
// locations and stores the slices for the forecast runner to join against.
type Poller struct {
	client    *xhttp.Client
	store     drepo.WeatherStore
	metrics   drepo.Metrics
	logger    *applogger.Logger
	baseURL   string
	locations []Location
	interval  time.Duration
	horizon   int

	stopCh chan struct{}
}

type PollerOption func(*Poller)

func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithHorizonHours sets how many hours ahead each fetch covers.
func WithHorizonHours(h int) PollerOption {
	return func(p *Poller) {
		if h > 0 {
			p.horizon = h
		}
	}
}

func WithLogger(l *applogger.Logger) PollerOption {
	return func(p *Poller) { p.logger = l }
}

func NewPoller(client *xhttp.Client, store drepo.WeatherStore, metrics drepo.Metrics, baseURL string, locations []Location, opts ...PollerOption) *Poller {
	p := &Poller{
		client:    client,
		store:     store,
		metrics:   metrics,
		baseURL:   baseURL,
		locations: locations,
		interval:  30 * time.Minute,
		horizon:   168,
		stopCh:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the poll loop. The first fetch happens immediately so the
// forecaster has weather slices right after boot.
func (p *Poller) Start(ctx context.Context) {
	go func() {
		p.pollOnce(ctx)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-p.stopCh:
				return
			case <-ticker.C:
				p.pollOnce(ctx)
			}
		}
	}()
}

func (p *Poller) Stop() { close(p.stopCh) }

func (p *Poller) pollOnce(ctx context.Context) {
	for _, loc := range p.locations {
		slices, err := p.fetch(ctx, loc)
		if err != nil {
			p.metrics.RecordError("weather_fetch")
			p.warn("weather fetch failed", applogger.String("location", loc.Name), applogger.Error(err))
			continue
		}
		if err := p.store.StoreBatch(ctx, slices); err != nil {
			p.metrics.RecordError("weather_store")
			p.warn("weather store failed", applogger.String("location", loc.Name), applogger.Error(err))
		}
	}
}

// hourlyResponse mirrors the open-meteo hourly forecast payload: parallel
// arrays indexed by hour.
type hourlyResponse struct {
	Hourly struct {
		Time          []string  `json:"time"`
		Temperature2M []float64 `json:"temperature_2m"`
		WindSpeed10M  []float64 `json:"wind_speed_10m"`
		CloudCover    []float64 `json:"cloud_cover"`
	} `json:"hourly"`
}

func (p *Poller) fetch(ctx context.Context, loc Location) ([]models.WeatherForecastSlice, error) {
	var resp hourlyResponse
	err := p.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    p.baseURL + "/v1/forecast",
		QueryParams: map[string][]string{
			"latitude":       {fmt.Sprintf("%.4f", loc.Latitude)},
			"longitude":      {fmt.Sprintf("%.4f", loc.Longitude)},
			"hourly":         {"temperature_2m,wind_speed_10m,cloud_cover"},
			"forecast_hours": {fmt.Sprintf("%d", p.horizon)},
			"timezone":       {"UTC"},
		},
	}, &resp)
	if err != nil {
		return nil, err
	}

	fetched := time.Now().UTC()
	out := make([]models.WeatherForecastSlice, 0, len(resp.Hourly.Time))
	for i, raw := range resp.Hourly.Time {
		target, err := time.Parse("2006-01-02T15:04", raw)
		if err != nil {
			return nil, fmt.Errorf("bad hourly time %q: %w", raw, err)
		}
		s := models.WeatherForecastSlice{
			Location:   loc.Name,
			TargetTime: target.UTC(),
			FetchedAt:  fetched,
		}
		if i < len(resp.Hourly.Temperature2M) {
			s.Temperature = resp.Hourly.Temperature2M[i]
		}
		if i < len(resp.Hourly.WindSpeed10M) {
			s.WindSpeed = resp.Hourly.WindSpeed10M[i]
		}
		if i < len(resp.Hourly.CloudCover) {
			s.CloudCover = resp.Hourly.CloudCover[i]
		}
		out = append(out, s)
	}
	return out, nil
}

func (p *Poller) warn(msg string, fields ...applogger.Field) {
	if p.logger != nil {
		p.logger.Warn(msg, fields...)
	}
}
