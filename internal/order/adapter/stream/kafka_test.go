package stream

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"wildcats-food-express/internal/order/domain/dto"
	"wildcats-food-express/internal/order/domain/models"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestSendKeysByOrderAndInjectsTrace(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	w := &fakeWriter{}
	k := newWithWriter(w, "order-events")
	k.tracer = tp.Tracer("test")

	ctx, span := tp.Tracer("test").Start(context.Background(), "request")
	defer span.End()

	event := dto.StatusChangeEvent(models.Order{ID: "o-1", StudentNumber: "s1", Status: models.StatusReady, UserID: "u1"})
	require.NoError(t, k.Send(ctx, event))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "o-1", string(msg.Key))

	carrier := &headerCarrier{headers: &msg.Headers}
	assert.Equal(t, dto.EventOrderStatusUpdate, carrier.Get("event"))
	assert.NotEmpty(t, carrier.Get("traceparent"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, dto.EventOrderStatusUpdate, body["event"])
	assert.Equal(t, "Ready", body["data"].(map[string]any)["status"])
}

func TestSendReportsWriterFailure(t *testing.T) {
	k := newWithWriter(&fakeWriter{err: errors.New("broker down")}, "order-events")

	err := k.Send(context.Background(), dto.NewOrderEvent(models.Order{ID: "o-2"}))
	assert.ErrorContains(t, err, "broker down")
}
