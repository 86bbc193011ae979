package brokermessage

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"wildcats-food-express/internal/notsub/app/core"
	"wildcats-food-express/internal/xpkg/config"
	"wildcats-food-express/internal/xpkg/logger"
)

type RabbitMQ struct {
	cfg   *config.RabbitMQ
	conn  *amqp.Connection
	ch    *amqp.Channel
	mylog logger.Logger
	mu    *sync.Mutex

	prefetch int
}

// create RabbitMQ adapter
func New(
	rabbitmqCfg *config.RabbitMQ,
	mylog logger.Logger,
	prefetch int,
) (*RabbitMQ, error) {
	r := &RabbitMQ{
		cfg:      rabbitmqCfg,
		mylog:    mylog,
		mu:       &sync.Mutex{},
		prefetch: prefetch,
	}
	if err := r.connect(); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrRMQConn, err)
	}
	return r, nil
}

func (r *RabbitMQ) IsAlive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn == nil || r.conn.IsClosed() {
		return false
	}
	if r.ch == nil || r.ch.IsClosed() {
		return false
	}
	return true
}

func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

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

// connect to rabbitmq
func (r *RabbitMQ) connect() error {
	conn, err := amqp.Dial(fmt.Sprintf("amqp://%s:%s@%s:%s/%s",
		r.cfg.User,
		r.cfg.Password,
		r.cfg.Host,
		r.cfg.Port,
		r.cfg.VHost,
	))
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

	if err := ch.Qos(r.prefetch, 0, false); err != nil {
		conn.Close()
		return err
	}

	r.mu.Lock()
	r.conn = conn
	r.ch = ch
	r.mu.Unlock()
	return nil
}

// Subscribe declares a server-named exclusive queue, binds it to the fanout
// exchange and starts consuming with manual acks. The queue goes away with
// the connection.
func (r *RabbitMQ) Subscribe(ctx context.Context, consumer string) (<-chan amqp.Delivery, error) {
	r.mu.Lock()
	ch := r.ch
	r.mu.Unlock()
	if ch == nil {
		return nil, core.ErrMBCh
	}

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, "", r.cfg.Exchange, false, nil); err != nil {
		return nil, fmt.Errorf("bind queue %s: %w", q.Name, err)
	}

	r.mylog.Action("queue_bound").Debug("Subscribed to notifications", "queue", q.Name, "exchange", r.cfg.Exchange)
	return ch.ConsumeWithContext(ctx, q.Name, consumer, false, true, false, false, nil)
}
