package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ParthPatel95/volt-site-seeker-sub021/internal/domain/models"
	domrepo "github.com/ParthPatel95/volt-site-seeker-sub021/internal/domain/repository"
	pkgch "github.com/ParthPatel95/volt-site-seeker-sub021/pkg/clickhouse"
	applogger "github.com/ParthPatel95/volt-site-seeker-sub021/pkg/logger"
)

// CHPredictionStore persists forecast runs as one bulk insert per run and
// serves matured predictions back for accuracy evaluation. The audit feature
// vector rides along as a JSON column.
type CHPredictionStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHPredictionStore(ch *pkgch.Client, table string) *CHPredictionStore {
	return &CHPredictionStore{db: ch.DB(), table: table}
}

func (s *CHPredictionStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHPredictionStore) InsertBatch(ctx context.Context, preds []models.PricePrediction) error {
	if len(preds) == 0 {
		return nil
	}
	start := time.Now()

	values := make([]string, 0, len(preds))
	args := make([]interface{}, 0, len(preds)*10)
	for _, p := range preds {
		features, err := json.Marshal(p.Features)
		if err != nil {
			return fmt.Errorf("encode features: %w", err)
		}
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			p.GeneratedAt, p.TargetTime, uint16(p.HorizonHours),
			p.PredictedPrice, p.ConfidenceLower, p.ConfidenceUpper, p.ConfidenceScore,
			string(p.Regime), p.ModelVersion, string(features),
		)
	}

	q := fmt.Sprintf(`INSERT INTO %s (generated_at, target_ts, horizon_hours, predicted_price,
        conf_lower, conf_upper, conf_score, regime, model_version, features) VALUES %s`,
		s.table, strings.Join(values, ","))
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("insert predictions: %w", err)
	}

	if s.l != nil {
		s.l.Info("clickhouse predictions stored",
			applogger.Int("rows", len(preds)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

func (s *CHPredictionStore) MaturedSince(ctx context.Context, since time.Time) ([]models.PricePrediction, error) {
	q := fmt.Sprintf(`
        SELECT generated_at, target_ts, horizon_hours, predicted_price,
               conf_lower, conf_upper, conf_score, regime, model_version, features
        FROM %s
        WHERE target_ts >= ? AND target_ts <= now()
        ORDER BY target_ts DESC
    `, s.table)

	rows, err := s.db.QueryContext(ctx, q, since)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse matured_predictions query error", applogger.Error(err))
		}
		return nil, fmt.Errorf("matured predictions: %w", err)
	}
	defer rows.Close()

	var out []models.PricePrediction
	for rows.Next() {
		var (
			p        models.PricePrediction
			horizon  uint16
			regime   string
			features string
		)
		if err := rows.Scan(&p.GeneratedAt, &p.TargetTime, &horizon, &p.PredictedPrice,
			&p.ConfidenceLower, &p.ConfidenceUpper, &p.ConfidenceScore,
			&regime, &p.ModelVersion, &features); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		p.HorizonHours = int(horizon)
		p.Regime = models.Regime(regime)
		if features != "" {
			// A corrupt audit blob should not break evaluation.
			_ = json.Unmarshal([]byte(features), &p.Features)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

var _ domrepo.PredictionStore = (*CHPredictionStore)(nil)
