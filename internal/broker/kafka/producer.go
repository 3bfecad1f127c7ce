package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"heic-converter/internal/broker"
	"heic-converter/internal/config"
	"heic-converter/internal/domain"

	wbkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/retry"
)

var _ broker.ConversionPublisher = (*ProducerClient)(nil)

type messageSender interface {
	SendWithRetry(ctx context.Context, strategy retry.Strategy, key, value []byte) error
	Close() error
}

// ProducerClient publishes conversion events to the configured topic,
// keyed by conversion id.
type ProducerClient struct {
	producer messageSender
	retries  retry.Strategy
}

func NewProducerClient(cfg *config.Config) *ProducerClient {
	return &ProducerClient{
		producer: wbkafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic),
		retries:  cfg.DefaultRetryStrategy(),
	}
}

func (p *ProducerClient) PublishConversion(ctx context.Context, conversion *domain.Conversion) error {
	payload, err := json.Marshal(conversion)
	if err != nil {
		return fmt.Errorf("failed to marshal conversion event: %w", err)
	}

	if err := p.producer.SendWithRetry(ctx, p.retries, []byte(conversion.ID), payload); err != nil {
		return fmt.Errorf("failed to publish conversion %s: %w", conversion.ID, err)
	}
	return nil
}

func (p *ProducerClient) Close() error {
	return p.producer.Close()
}
