package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ParthPatel95/volt-site-seeker-sub021/internal/domain/models"
	domrepo "github.com/ParthPatel95/volt-site-seeker-sub021/internal/domain/repository"
	pkgch "github.com/ParthPatel95/volt-site-seeker-sub021/pkg/clickhouse"
	applogger "github.com/ParthPatel95/volt-site-seeker-sub021/pkg/logger"
)

// CHParameterStore loads model parameter records from ClickHouse. The feature
// importance map is stored as a JSON string column; the training job writes
// it, this service only reads.
type CHParameterStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHParameterStore(ch *pkgch.Client, table string) *CHParameterStore {
	return &CHParameterStore{db: ch.DB(), table: table}
}

func (s *CHParameterStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHParameterStore) Active(ctx context.Context, version string) (models.ModelParameters, error) {
	q := fmt.Sprintf(`
        SELECT version, mean_target, learning_rate, feature_importance
        FROM %s
        WHERE version = ? AND active = 1
        ORDER BY updated_at DESC
        LIMIT 1
    `, s.table)

	var (
		p       models.ModelParameters
		rawImps string
	)
	err := s.db.QueryRowContext(ctx, q, version).Scan(&p.Version, &p.MeanTarget, &p.LearningRate, &rawImps)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ModelParameters{}, domrepo.ErrParametersNotFound
	}
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse model_parameters query error",
				applogger.String("version", version), applogger.Error(err))
		}
		return models.ModelParameters{}, fmt.Errorf("load parameters: %w", err)
	}

	p.FeatureImportance = map[string]float64{}
	if rawImps != "" {
		if err := json.Unmarshal([]byte(rawImps), &p.FeatureImportance); err != nil {
			return models.ModelParameters{}, fmt.Errorf("decode feature importance: %w", err)
		}
	}
	return p, nil
}

var _ domrepo.ParameterStore = (*CHParameterStore)(nil)
