package rabbitmq

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"go-reseller-ws/config"
	"go-reseller-ws/internal/notify"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// Publisher is a notify.Notifier that forwards events to a fanout exchange,
// where the API process relays them to its WebSocket hub.
type Publisher struct {
	conn     *amqp.Connection
	exchange string
	logger   *slog.Logger

	// amqp channels are not safe for concurrent publishing
	mu      sync.Mutex
	channel *amqp.Channel
}

func NewPublisher(cfg config.RabbitMQConfig, logger *slog.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to RabbitMQ")
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "failed to open channel")
	}
	if err := declareFanout(channel, cfg.NotifyExchange); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}
	return &Publisher{
		conn:     conn,
		channel:  channel,
		exchange: cfg.NotifyExchange,
		logger:   logger.With("component", "rabbitmq_publisher"),
	}, nil
}

// Notify publishes evt. Failures are logged; notifications are best effort.
func (p *Publisher) Notify(evt notify.Event) {
	body, err := json.Marshal(evt)
	if err != nil {
		p.logger.Error("encode notification", "event", string(evt.Type), "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.channel.PublishWithContext(ctx, p.exchange, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   time.Now(),
		Body:        body,
	})
	if err != nil {
		p.logger.Warn("publish notification failed", "event", string(evt.Type), "error", err)
	}
}

func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

// RelayTo decodes published events and hands them to target.
func RelayTo(target notify.Notifier) Handler {
	return func(_ context.Context, body []byte) error {
		var evt notify.Event
		if err := json.Unmarshal(body, &evt); err != nil {
			return errors.Wrapf(ErrPoison, "decode notification: %v", err)
		}
		if evt.Type == "" {
			return errors.Wrap(ErrPoison, "notification has no type")
		}
		target.Notify(evt)
		return nil
	}
}
