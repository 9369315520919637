package repository

import (
	"context"

	"IPOWatch/internal/domain/models"
	drepo "IPOWatch/internal/domain/repository"
	pkgkafka "IPOWatch/pkg/kafka"
)

type batchPublisher interface {
	PublishBatch(ctx context.Context, topic string, messages []pkgkafka.Message) error
	Close() error
}

// KafkaMonthlyPublisher emits one message per month, keyed by month so a
// compacted topic keeps the latest figures.
type KafkaMonthlyPublisher struct {
	producer batchPublisher
	topic    string
}

func NewKafkaMonthlyPublisher(p *pkgkafka.Producer, topic string) *KafkaMonthlyPublisher {
	return &KafkaMonthlyPublisher{producer: p, topic: topic}
}

var _ drepo.AggregateSink = (*KafkaMonthlyPublisher)(nil)

func (k *KafkaMonthlyPublisher) Name() string { return "kafka" }

func (k *KafkaMonthlyPublisher) StoreMonthly(ctx context.Context, aggs []models.MonthlyAggregate) error {
	if len(aggs) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, 0, len(aggs))
	for _, a := range aggs {
		msgs = append(msgs, pkgkafka.Message{
			Key:   []byte(a.Month),
			Value: a,
		})
	}
	return k.producer.PublishBatch(ctx, k.topic, msgs)
}

func (k *KafkaMonthlyPublisher) Close() error {
	return k.producer.Close()
}
