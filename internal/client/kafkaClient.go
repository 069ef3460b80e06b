package client

import (
	"context"
	"encoding/json"
	"fmt"
	"food-ordering-api/internal/config"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	OrderEventCreated          = "created"
	OrderEventPaymentConfirmed = "payment_confirmed"
	OrderEventUpdated          = "updated"
	OrderEventDeleted          = "deleted"
)

// OrderEvent is the message value written to the order topic.
type OrderEvent struct {
	Type          string    `json:"type"`
	OrderID       string    `json:"orderId"`
	UserID        string    `json:"userId"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"paymentStatus"`
	PaymentMethod string    `json:"paymentMethod"`
	Total         float64   `json:"total"`
	OccurredAt    time.Time `json:"occurredAt"`
}

type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event *OrderEvent) error
	Close() error
}

type kafkaPublisherImpl struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(kafkaCfg *config.Kafka) EventPublisher {
	return &kafkaPublisherImpl{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(kafkaCfg.Brokers...),
			Topic:                  kafkaCfg.Topic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
			BatchTimeout:           10 * time.Millisecond,
			WriteTimeout:           10 * time.Second,
		},
	}
}

func (p *kafkaPublisherImpl) PublishOrderEvent(ctx context.Context, event *OrderEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("order-%s-%s", event.Type, event.OrderID)),
		Value: value,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write kafka message: %w", err)
	}
	return nil
}

func (p *kafkaPublisherImpl) Close() error {
	return p.writer.Close()
}

type nopPublisherImpl struct{}

// NewNopPublisher drops every event. Used when no brokers are configured.
func NewNopPublisher() EventPublisher {
	return nopPublisherImpl{}
}

func (nopPublisherImpl) PublishOrderEvent(context.Context, *OrderEvent) error { return nil }

func (nopPublisherImpl) Close() error { return nil }
