package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"wildcats-food-express/internal/order/domain/dto"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka appends order events to a topic keyed by order id, so all events of
// one order land on the same partition in order.
type Kafka struct {
	writer messageWriter
	topic  string
	tracer trace.Tracer
}

func New(brokers []string, topic string) *Kafka {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		WriteTimeout:           10 * time.Second,
		ReadTimeout:            10 * time.Second,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return newWithWriter(writer, topic)
}

func newWithWriter(w messageWriter, topic string) *Kafka {
	return &Kafka{
		writer: w,
		topic:  topic,
		tracer: otel.Tracer("kafka/producer"),
	}
}

func (k *Kafka) Name() string { return "kafka" }

func (k *Kafka) Send(ctx context.Context, event dto.Event) error {
	key := event.Key()
	ctx, span := k.tracer.Start(ctx, fmt.Sprintf("publish %s", k.topic),
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			semconv.MessagingSystemKafka,
			semconv.MessagingDestinationName(k.topic),
			attribute.String("messaging.kafka.message.key", key),
			attribute.String("order.event", event.Name),
		),
	)
	defer span.End()

	data, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to serialize event: %w", err)
	}

	headers := []kafka.Header{{Key: "event", Value: []byte(event.Name)}}
	otel.GetTextMapPropagator().Inject(ctx, &headerCarrier{headers: &headers})

	msg := kafka.Message{
		Key:     []byte(key),
		Value:   data,
		Time:    time.Now(),
		Headers: headers,
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to publish event: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}

type headerCarrier struct {
	headers *[]kafka.Header
}

func (c *headerCarrier) Get(key string) string {
	for _, h := range *c.headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c *headerCarrier) Set(key, value string) {
	*c.headers = append(*c.headers, kafka.Header{Key: key, Value: []byte(value)})
}

func (c *headerCarrier) Keys() []string {
	keys := make([]string, len(*c.headers))
	for i, h := range *c.headers {
		keys[i] = h.Key
	}
	return keys
}
