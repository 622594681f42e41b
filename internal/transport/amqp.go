package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/codeGROOVE-dev/retry"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-society-bot/internal/observability"
)

// Defaults for the outbound exchange.
const (
	DefaultExchange   = "societybot.outbound"
	DefaultRoutingKey = "chat.message"
)

// AMQPSender publishes messages as JSON to a topic exchange.
type AMQPSender struct {
	conn       *amqp.Connection
	ch         *amqp.Channel
	exchange   string
	routingKey string

	attempts uint
	delay    time.Duration

	mu      sync.Mutex
	publish func(ctx context.Context, body []byte) error
}

// NewSender dials url and declares the exchange. An empty url or any
// setup failure yields a LogSender, so the bot keeps running without a
// broker.
func NewSender(url, exchange, routingKey string) Sender {
	if exchange == "" {
		exchange = DefaultExchange
	}
	if routingKey == "" {
		routingKey = DefaultRoutingKey
	}
	if url == "" {
		log.Info().Msg("outbound transport disabled, logging messages: empty amqp url")
		return LogSender{Reason: "empty amqp url"}
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		log.Warn().Err(err).Msg("outbound transport disabled, logging messages")
		return LogSender{Reason: err.Error()}
	}
	ch, err := conn.Channel()
	if err != nil {
		log.Warn().Err(err).Msg("outbound transport disabled, logging messages")
		_ = conn.Close()
		return LogSender{Reason: err.Error()}
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		log.Warn().Err(err).Msg("outbound transport disabled, logging messages")
		_ = ch.Close()
		_ = conn.Close()
		return LogSender{Reason: err.Error()}
	}

	log.Info().Str("exchange", exchange).Str("routing_key", routingKey).Msg("outbound transport connected")
	s := &AMQPSender{
		conn:       conn,
		ch:         ch,
		exchange:   exchange,
		routingKey: routingKey,
		attempts:   3,
		delay:      200 * time.Millisecond,
	}
	s.publish = s.publishChannel
	return s
}

func (s *AMQPSender) publishChannel(ctx context.Context, body []byte) error {
	return s.ch.PublishWithContext(ctx, s.exchange, s.routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
}

// Send validates m and publishes it, retrying transient failures.
func (s *AMQPSender) Send(ctx context.Context, m Message) error {
	if err := m.Validate(); err != nil {
		return err
	}
	body, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("transport: encode message: %w", err)
	}

	// A channel must not be used for concurrent publishes.
	s.mu.Lock()
	defer s.mu.Unlock()

	err = retry.Do(
		func() error { return s.publish(ctx, body) },
		retry.Attempts(s.attempts),
		retry.Delay(s.delay),
		retry.MaxDelay(2*time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).Warn().Err(err).Uint("attempt", n+1).Int64("chat_id", m.ChatID).Msg("outbound publish failed; retrying")
		}),
	)
	if err != nil {
		observability.OutboundPublishErrors.Inc()
		return fmt.Errorf("transport: publish: %w", err)
	}
	return nil
}

// Close releases the channel and the connection.
func (s *AMQPSender) Close() error {
	if s.ch != nil {
		_ = s.ch.Close()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// LogSender writes messages to the log instead of a broker. Message text
// is not logged since it may carry contact numbers.
type LogSender struct {
	Reason string
}

// Send validates m and logs its envelope.
func (l LogSender) Send(ctx context.Context, m Message) error {
	if err := m.Validate(); err != nil {
		return err
	}
	log.Ctx(ctx).Info().
		Str("action", m.Action).
		Int64("chat_id", m.ChatID).
		Int("text_len", len(m.Text)).
		Int("button_rows", len(m.Buttons)).
		Msg("outbound message (log only)")
	return nil
}

// Close is a no-op.
func (LogSender) Close() error { return nil }

// Mode reports the sender mode for logging.
func Mode(s Sender) string {
	switch s.(type) {
	case *AMQPSender:
		return "amqp"
	case LogSender, *LogSender:
		return "log"
	default:
		return "custom"
	}
}
