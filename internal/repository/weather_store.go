package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ParthPatel95/volt-site-seeker-sub021/internal/domain/models"
	domrepo "github.com/ParthPatel95/volt-site-seeker-sub021/internal/domain/repository"
	pkgch "github.com/ParthPatel95/volt-site-seeker-sub021/pkg/clickhouse"
	applogger "github.com/ParthPatel95/volt-site-seeker-sub021/pkg/logger"
)

// CHWeatherStore implements WeatherStore backed by ClickHouse. The weather
// poller refreshes rows; a ReplacingMergeTree keyed on (location, target_ts)
// keeps only the freshest fetch per slice.
type CHWeatherStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHWeatherStore(ch *pkgch.Client, table string) *CHWeatherStore {
	return &CHWeatherStore{db: ch.DB(), table: table}
}

func (s *CHWeatherStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHWeatherStore) SlicesForRange(ctx context.Context, locations []string, from, to time.Time) ([]models.WeatherForecastSlice, error) {
	if len(locations) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimRight(strings.Repeat("?,", len(locations)), ",")
	q := fmt.Sprintf(`
        SELECT location, target_ts, temperature, wind_speed, cloud_cover, fetched_at
        FROM %s FINAL
        WHERE location IN (%s) AND target_ts >= ? AND target_ts <= ?
        ORDER BY target_ts ASC
    `, s.table, placeholders)

	args := make([]interface{}, 0, len(locations)+2)
	for _, loc := range locations {
		args = append(args, loc)
	}
	args = append(args, from, to)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse weather_slices query error",
				applogger.String("table", s.table), applogger.Error(err))
		}
		return nil, fmt.Errorf("weather slices: %w", err)
	}
	defer rows.Close()

	var out []models.WeatherForecastSlice
	for rows.Next() {
		var w models.WeatherForecastSlice
		if err := rows.Scan(&w.Location, &w.TargetTime, &w.Temperature, &w.WindSpeed, &w.CloudCover, &w.FetchedAt); err != nil {
			return nil, fmt.Errorf("scan weather slice: %w", err)
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *CHWeatherStore) StoreBatch(ctx context.Context, slices []models.WeatherForecastSlice) error {
	if len(slices) == 0 {
		return nil
	}
	values := make([]string, 0, len(slices))
	args := make([]interface{}, 0, len(slices)*6)
	for _, w := range slices {
		if w.Location == "" || w.TargetTime.IsZero() {
			continue
		}
		values = append(values, "(?, ?, ?, ?, ?, ?)")
		args = append(args, w.Location, w.TargetTime, w.Temperature, w.WindSpeed, w.CloudCover, w.FetchedAt)
	}
	if len(values) == 0 {
		return nil
	}
	q := fmt.Sprintf(`INSERT INTO %s (location, target_ts, temperature, wind_speed, cloud_cover, fetched_at) VALUES %s`,
		s.table, strings.Join(values, ","))
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("store weather slices: %w", err)
	}
	return nil
}

var _ domrepo.WeatherStore = (*CHWeatherStore)(nil)
