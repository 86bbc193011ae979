package brokermessage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"wildcats-food-express/internal/order/app/core"
	"wildcats-food-express/internal/order/domain/dto"
	"wildcats-food-express/internal/xpkg/config"
	"wildcats-food-express/internal/xpkg/logger"
)

// RabbitMQ publishes order events to a fanout exchange. Every subscriber
// binds its own queue, so each one sees every event.
type RabbitMQ struct {
	ctx          context.Context
	cancel       context.CancelFunc
	cfg          *config.RabbitMQ
	conn         *amqp.Connection
	ch           *amqp.Channel
	mylog        logger.Logger
	reconnecting bool
	closed       bool
	mu           *sync.Mutex
}

// create RabbitMQ adapter
func New(
	ctx context.Context,
	rabbitmqCfg *config.RabbitMQ,
	mylog logger.Logger,
) (*RabbitMQ, error) {
	r := newRabbitMQ(ctx, rabbitmqCfg, mylog)
	if err := r.connect(); err != nil {
		r.cancel()
		return nil, fmt.Errorf("%w: %v", core.ErrRMQConn, err)
	}
	return r, nil
}

// newRabbitMQ builds an unconnected adapter whose reconnects stop on Close.
func newRabbitMQ(ctx context.Context, rabbitmqCfg *config.RabbitMQ, mylog logger.Logger) *RabbitMQ {
	ctx, cancel := context.WithCancel(ctx)
	return &RabbitMQ{
		ctx:    ctx,
		cancel: cancel,
		cfg:    rabbitmqCfg,
		mylog:  mylog,
		mu:     &sync.Mutex{},
	}
}

func URL(cfg *config.RabbitMQ) string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.VHost,
	)
}

// connect to rabbitmq and declare the exchange
func (r *RabbitMQ) connect() error {
	if r.isClosed() {
		return core.ErrMBClosed
	}

	conn, err := amqp.Dial(URL(r.cfg))
	if err != nil {
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}

	if err := ch.ExchangeDeclare(r.cfg.Exchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		conn.Close()
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Close may have run while dialing
	if r.closed {
		conn.Close()
		return core.ErrMBClosed
	}
	r.conn = conn
	r.ch = ch
	return nil
}

func (r *RabbitMQ) isReconnecting() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reconnecting
}

func (r *RabbitMQ) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *RabbitMQ) Name() string { return "rabbitmq" }

func (r *RabbitMQ) IsAlive() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn == nil || r.conn.IsClosed() {
		return core.ErrMBConn
	}
	if r.ch == nil || r.ch.IsClosed() {
		return core.ErrMBCh
	}
	return nil
}

func (r *RabbitMQ) Close() error {
	r.cancel()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true

	if r.ch != nil && !r.ch.IsClosed() {
		if err := r.ch.Close(); err != nil {
			return fmt.Errorf("close rabbitmq channel: %v", err)
		}
	}
	if r.conn != nil && !r.conn.IsClosed() {
		if err := r.conn.Close(); err != nil {
			return fmt.Errorf("close rabbitmq connection: %v", err)
		}
	}
	return nil
}

// Send publishes one event. A lost connection triggers a background reconnect
// and the event is reported as undeliverable.
func (r *RabbitMQ) Send(ctx context.Context, event dto.Event) error {
	if r.isClosed() {
		return core.ErrMBClosed
	}
	if err := r.IsAlive(); err != nil {
		r.mylog.Action("rabbitmq_publish").Error("Connection to rabbitmq is closed", err)
		go r.reconnect(r.ctx)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	r.mu.Lock()
	ch := r.ch
	r.mu.Unlock()

	return ch.PublishWithContext(ctx, r.cfg.Exchange, event.Name, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.Key(),
		Timestamp:    time.Now(),
		Type:         event.Name,
		Body:         body,
	})
}

func (r *RabbitMQ) reconnect(ctx context.Context) {
	r.mu.Lock()
	if r.reconnecting {
		r.mu.Unlock()
		return
	}
	r.reconnecting = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.reconnecting = false
		r.mu.Unlock()
	}()

	t := time.NewTicker(time.Second * core.MBReconnInterval)
	defer t.Stop()
	log := r.mylog.Action("rabbitmq_reconnecting")

	for {
		select {
		case <-t.C:
			err := r.connect()
			if err == nil {
				log.Info("rabbitmq reconnected")
				return
			}
			if errors.Is(err, core.ErrMBClosed) {
				return
			}
			log.Warn("rabbitmq failed to reconnect")

		case <-ctx.Done():
			return
		}
	}
}
