package rabbitmq

import (
	"context"
	"log/slog"

	"go-reseller-ws/config"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrPoison marks a message that can never be processed. Handlers wrap it;
// such messages are acked and dropped instead of requeued.
var ErrPoison = errors.New("poison message")

type Handler func(ctx context.Context, body []byte) error

type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	config  config.RabbitMQConfig
	logger  *slog.Logger
}

func NewConsumer(cfg config.RabbitMQConfig, logger *slog.Logger) (*Consumer, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to RabbitMQ")
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "failed to open channel")
	}

	// Set prefetch count
	if err := channel.Qos(cfg.PrefetchCount, 0, false); err != nil {
		channel.Close()
		conn.Close()
		return nil, errors.Wrap(err, "failed to set QoS")
	}

	return &Consumer{
		conn:    conn,
		channel: channel,
		config:  cfg,
		logger:  logger.With("component", "rabbitmq_consumer"),
	}, nil
}

func (c *Consumer) Close() {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
}

// ConsumeQueue blocks until ctx is done or the delivery channel closes.
func (c *Consumer) ConsumeQueue(ctx context.Context, queueName string, handler Handler) error {
	// Declare queue (idempotent)
	_, err := c.channel.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return errors.Wrap(err, "failed to declare queue")
	}
	return c.consume(ctx, queueName, handler)
}

// ConsumeFanout binds a private, auto-deleted queue to exchange, so every
// subscribed process receives every message.
func (c *Consumer) ConsumeFanout(ctx context.Context, exchange string, handler Handler) error {
	if err := declareFanout(c.channel, exchange); err != nil {
		return err
	}
	q, err := c.channel.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return errors.Wrap(err, "failed to declare subscriber queue")
	}
	if err := c.channel.QueueBind(q.Name, "", exchange, false, nil); err != nil {
		return errors.Wrapf(err, "failed to bind queue to %s", exchange)
	}
	return c.consume(ctx, q.Name, handler)
}

func (c *Consumer) consume(ctx context.Context, queueName string, handler Handler) error {
	msgs, err := c.channel.Consume(
		queueName,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return errors.Wrap(err, "failed to register consumer")
	}

	c.logger.Info("started consuming", "queue", queueName)

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.settle(msg, Dispatch(ctx, handler, msg.Body))
		}
	}
}

func declareFanout(ch *amqp.Channel, exchange string) error {
	err := ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeFanout,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	return errors.Wrapf(err, "failed to declare exchange %s", exchange)
}

// Outcome is what happens to a delivery after its handler ran.
type Outcome int

const (
	Ack Outcome = iota
	Drop
	Requeue
)

// Dispatch runs handler and classifies its error.
func Dispatch(ctx context.Context, handler Handler, body []byte) Outcome {
	err := handler(ctx, body)
	switch {
	case err == nil:
		return Ack
	case errors.Is(err, ErrPoison):
		return Drop
	default:
		return Requeue
	}
}

func (c *Consumer) settle(msg amqp.Delivery, outcome Outcome) {
	switch outcome {
	case Ack:
		msg.Ack(false)
	case Drop:
		c.logger.Warn("dropping unprocessable message", "message_id", msg.MessageId)
		msg.Ack(false)
	case Requeue:
		msg.Nack(false, true)
	}
}
