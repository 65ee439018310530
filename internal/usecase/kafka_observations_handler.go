package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ParthPatel95/volt-site-seeker-sub021/internal/domain/models"
	domrepo "github.com/ParthPatel95/volt-site-seeker-sub021/internal/domain/repository"
	pkgkafka "github.com/ParthPatel95/volt-site-seeker-sub021/pkg/kafka"
)

// KafkaObservationsHandler consumes observation messages and writes them to
// storage. It is the downstream half of the kafka backend: the collector
// publishes, this handler persists.
type KafkaObservationsHandler struct {
	topic   string
	storage domrepo.ObservationStore
	metrics domrepo.Metrics
}

func NewKafkaObservationsHandler(topic string, storage domrepo.ObservationStore, metrics domrepo.Metrics) *KafkaObservationsHandler {
	return &KafkaObservationsHandler{topic: topic, storage: storage, metrics: metrics}
}

func (h *KafkaObservationsHandler) Topic() string { return h.topic }

// Handle decodes one observation published by the collector and stores it.
func (h *KafkaObservationsHandler) Handle(ctx context.Context, b []byte) error {
	var o models.HistoricalObservation
	if err := json.Unmarshal(b, &o); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}

	// E2E latency from observation hour to now (approx)
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(o.Timestamp).Seconds())

	start := time.Now()
	err := h.storage.StoreBatch(ctx, []*models.HistoricalObservation{&o})
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordObservationIngested("clickhouse")
	if o.PoolPrice != nil {
		h.metrics.RecordLastPoolPrice(*o.PoolPrice)
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaObservationsHandler)(nil)
