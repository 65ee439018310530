package repository

import (
	"context"

	"github.com/ParthPatel95/volt-site-seeker-sub021/internal/domain/models"
	domrepo "github.com/ParthPatel95/volt-site-seeker-sub021/internal/domain/repository"
	pkgkafka "github.com/ParthPatel95/volt-site-seeker-sub021/pkg/kafka"
)

// KafkaPublisher forwards observations to the observations topic. Messages
// are keyed by the hour timestamp so one hour always lands on one partition.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) domrepo.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, o *models.HistoricalObservation) error {
	return p.producer.Publish(ctx, p.topic, key(o), o)
}

func (p *KafkaPublisher) PublishBatch(ctx context.Context, obs []*models.HistoricalObservation) error {
	if len(obs) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(obs))
	for i, o := range obs {
		msgs[i] = pkgkafka.Message{Key: key(o), Value: o}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

func key(o *models.HistoricalObservation) []byte {
	return []byte(o.Timestamp.UTC().Format("2006-01-02T15"))
}
