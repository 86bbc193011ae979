package notifier

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"wildcats-food-express/internal/order/app/core"
	"wildcats-food-express/internal/order/domain/dto"
	"wildcats-food-express/internal/xpkg/logger"
	"wildcats-food-express/internal/xpkg/telemetry"
)

// Publisher fans every event out to its sinks. Each delivery runs in its own
// goroutine with a deadline; failures are logged and counted, never returned.
type Publisher struct {
	sinks   []core.ISink
	metrics *telemetry.Metrics
	mylog   logger.Logger
	timeout time.Duration

	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

func New(mylog logger.Logger, metrics *telemetry.Metrics, sinks ...core.ISink) *Publisher {
	return &Publisher{
		sinks:   sinks,
		metrics: metrics,
		mylog:   mylog,
		timeout: core.PublishTimeout * time.Second,
	}
}

func (p *Publisher) Publish(ctx context.Context, event dto.Event) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}

	// deliveries outlive the request that triggered them
	base := context.WithoutCancel(ctx)
	for _, sink := range p.sinks {
		p.wg.Add(1)
		go func(sink core.ISink) {
			defer p.wg.Done()

			sendCtx, cancel := context.WithTimeout(base, p.timeout)
			defer cancel()

			attrs := metric.WithAttributes(
				attribute.String("sink", sink.Name()),
				attribute.String("event", event.Name),
			)
			if err := sink.Send(sendCtx, event); err != nil {
				p.metrics.NotificationsDropped.Add(sendCtx, 1, attrs)
				p.mylog.Action("notification_failed").Error("Failed to deliver notification", err,
					"sink", sink.Name(), "event", event.Name, "key", event.Key())
				return
			}
			p.metrics.NotificationsSent.Add(sendCtx, 1, attrs)
		}(sink)
	}
}

// Close waits for in-flight deliveries and closes every sink.
func (p *Publisher) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.wg.Wait()

	var errs []error
	for _, sink := range p.sinks {
		errs = append(errs, sink.Close())
	}
	return errors.Join(errs...)
}
