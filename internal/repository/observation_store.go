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

const observationColumns = `ts, pool_price, ail_mw, gen_wind, gen_solar, gen_gas, gen_other,
        temp_calgary, temp_edmonton,
        price_lag_1h, price_lag_2h, price_lag_3h, price_lag_24h, price_lag_168h,
        price_rolling_avg_24h, price_rolling_std_24h`

// CHObservationStore implements ObservationStore backed by ClickHouse.
type CHObservationStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHObservationStore(ch *pkgch.Client, table string) *CHObservationStore {
	return &CHObservationStore{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (s *CHObservationStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHObservationStore) LatestN(ctx context.Context, n int) ([]models.HistoricalObservation, error) {
	start := time.Now()
	q := fmt.Sprintf(`SELECT %s FROM %s ORDER BY ts DESC LIMIT ?`, observationColumns, s.table)
	rows, err := s.db.QueryContext(ctx, q, n)
	if err != nil {
		s.logError("latest_observations query error", n, err)
		return nil, fmt.Errorf("latest observations: %w", err)
	}
	defer rows.Close()

	out, err := s.scanObservations(rows, n)
	if err != nil {
		s.logError("latest_observations scan error", n, err)
		return nil, err
	}
	if s.l != nil {
		s.l.Info("clickhouse latest_observations ok",
			applogger.Int("limit", n),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHObservationStore) Range(ctx context.Context, from, to time.Time) ([]models.HistoricalObservation, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE ts >= ? AND ts <= ? ORDER BY ts DESC`, observationColumns, s.table)
	rows, err := s.db.QueryContext(ctx, q, from, to)
	if err != nil {
		s.logError("observations_range query error", 0, err)
		return nil, fmt.Errorf("observations range: %w", err)
	}
	defer rows.Close()

	out, err := s.scanObservations(rows, 512)
	if err != nil {
		s.logError("observations_range scan error", 0, err)
		return nil, err
	}
	return out, nil
}

func (s *CHObservationStore) StoreBatch(ctx context.Context, obs []*models.HistoricalObservation) error {
	if len(obs) == 0 {
		return nil
	}
	// Multi-row VALUES insert to reduce round-trips, chunked.
	const chunkSize = 1000
	for start := 0; start < len(obs); start += chunkSize {
		end := start + chunkSize
		if end > len(obs) {
			end = len(obs)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*16)
		for _, o := range obs[start:end] {
			if o == nil || o.Timestamp.IsZero() {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				o.Timestamp,
				nullable(o.PoolPrice),
				o.AILMW,
				o.GenerationWind, o.GenerationSolar, o.GenerationGas, o.GenerationOther,
				nullable(o.TemperatureCalgary), nullable(o.TemperatureEdmonton),
				nullable(o.PriceLag1h), nullable(o.PriceLag2h), nullable(o.PriceLag3h),
				nullable(o.PriceLag24h), nullable(o.PriceLag168h),
				nullable(o.PriceRollingAvg24), nullable(o.PriceRollingStd24),
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", s.table, observationColumns, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("store observations: %w", err)
		}
	}
	return nil
}

func (s *CHObservationStore) scanObservations(rows *sql.Rows, hint int) ([]models.HistoricalObservation, error) {
	out := make([]models.HistoricalObservation, 0, hint)
	for rows.Next() {
		var (
			o                     models.HistoricalObservation
			price, tCal, tEdm     sql.NullFloat64
			l1, l2, l3, l24, l168 sql.NullFloat64
			rollAvg, rollStd      sql.NullFloat64
		)
		if err := rows.Scan(&o.Timestamp, &price, &o.AILMW,
			&o.GenerationWind, &o.GenerationSolar, &o.GenerationGas, &o.GenerationOther,
			&tCal, &tEdm, &l1, &l2, &l3, &l24, &l168, &rollAvg, &rollStd); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		o.PoolPrice = fromNull(price)
		o.TemperatureCalgary = fromNull(tCal)
		o.TemperatureEdmonton = fromNull(tEdm)
		o.PriceLag1h = fromNull(l1)
		o.PriceLag2h = fromNull(l2)
		o.PriceLag3h = fromNull(l3)
		o.PriceLag24h = fromNull(l24)
		o.PriceLag168h = fromNull(l168)
		o.PriceRollingAvg24 = fromNull(rollAvg)
		o.PriceRollingStd24 = fromNull(rollStd)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *CHObservationStore) logError(msg string, limit int, err error) {
	if s.l == nil {
		return
	}
	s.l.Error(msg,
		applogger.String("table", s.table),
		applogger.Int("limit", limit),
		applogger.Error(err),
	)
}

func nullable(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func fromNull(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

var _ domrepo.ObservationStore = (*CHObservationStore)(nil)
