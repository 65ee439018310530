package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/ParthPatel95/volt-site-seeker-sub021/internal/domain/models"
	drepo "github.com/ParthPatel95/volt-site-seeker-sub021/internal/domain/repository"
)

// ObservationProcessor enriches incoming grid observations with lag and
// rolling price columns and routes them to the configured backend.
type ObservationProcessor struct {
	pub     drepo.Publisher
	store   drepo.ObservationStore
	metrics drepo.Metrics
	enrich  *lagEnricher
	backend string
	batchSz int
	batchTO time.Duration
}

// NewObservationProcessor creates a new ObservationProcessor instance.
func NewObservationProcessor(
	pub drepo.Publisher,
	store drepo.ObservationStore,
	metrics drepo.Metrics,
	backend string,
	batchSz int,
	batchTO time.Duration,
) *ObservationProcessor {
	return &ObservationProcessor{
		pub:     pub,
		store:   store,
		metrics: metrics,
		enrich:  newLagEnricher(),
		backend: backend,
		batchSz: batchSz,
		batchTO: batchTO,
	}
}

// Process enriches a single observation and routes it to the configured backend.
func (p *ObservationProcessor) Process(ctx context.Context, o *models.HistoricalObservation) error {
	if o == nil {
		return fmt.Errorf("observation is nil")
	}

	start := time.Now()
	p.enrich.Apply(o)

	var err error
	switch p.backend {
	case "kafka":
		err = p.pub.Publish(ctx, o)
	case "clickhouse":
		err = p.store.StoreBatch(ctx, []*models.HistoricalObservation{o})
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process")
		return fmt.Errorf("process observation: %w", err)
	}

	p.metrics.RecordObservationIngested(p.backend)
	p.metrics.RecordLatency("process", time.Since(start).Seconds())

	return nil
}

// ProcessBatch enriches and routes multiple observations in one call.
func (p *ObservationProcessor) ProcessBatch(ctx context.Context, obs []*models.HistoricalObservation) error {
	if len(obs) == 0 {
		return nil
	}

	start := time.Now()
	for _, o := range obs {
		p.enrich.Apply(o)
	}

	var err error
	switch p.backend {
	case "kafka":
		err = p.pub.PublishBatch(ctx, obs)
	case "clickhouse":
		err = p.store.StoreBatch(ctx, obs)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process_batch")
		return fmt.Errorf("process batch: %w", err)
	}

	for range obs {
		p.metrics.RecordObservationIngested(p.backend)
	}
	p.metrics.RecordLatency("process_batch", time.Since(start).Seconds())

	return nil
}

// Close closes underlying resources if available.
func (p *ObservationProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
}
