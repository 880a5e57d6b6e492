package events

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
)

type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events keyed by product id so updates for one product
// stay on one partition.
type KafkaPublisher struct {
	w kafkaWriter
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{w: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}}
}

func (p *KafkaPublisher) PublishStockUpdated(ctx context.Context, evt StockUpdated) error {
	body, err := encode(evt)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	carrier := &kafkaHeaderCarrier{{Key: "event-type", Value: []byte(StockUpdatedType)}}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	err = p.w.WriteMessages(ctx, kafka.Message{
		Key:     []byte(strconv.FormatInt(evt.ProductID, 10)),
		Value:   body,
		Headers: *carrier,
		Time:    evt.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", StockUpdatedType, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error { return p.w.Close() }

type kafkaHeaderCarrier []kafka.Header

func (c *kafkaHeaderCarrier) Get(key string) string {
	for _, h := range *c {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c *kafkaHeaderCarrier) Set(key, value string) {
	for i, h := range *c {
		if h.Key == key {
			(*c)[i].Value = []byte(value)
			return
		}
	}
	*c = append(*c, kafka.Header{Key: key, Value: []byte(value)})
}

func (c *kafkaHeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(*c))
	for _, h := range *c {
		keys = append(keys, h.Key)
	}
	return keys
}
