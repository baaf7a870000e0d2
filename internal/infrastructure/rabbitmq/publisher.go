package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/samarthc/loan-manager-backend/internal/domain"
)

// Publisher fans loan lifecycle events out on a topic exchange so downstream
// services (notifications, reporting) can react. It is optional wiring: the
// services treat a nil publisher as "events disabled".
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	log      zerolog.Logger
}

// LoanEvent is the wire payload for every loan.* routing key.
type LoanEvent struct {
	LoanID     string  `json:"loan_id"`
	UserID     string  `json:"user_id"`
	Status     string  `json:"status"`
	FromStatus string  `json:"from_status,omitempty"`
	Amount     float64 `json:"amount"`
	OccurredAt string  `json:"occurred_at"`
}

// NewPublisher dials RabbitMQ and declares the topic exchange. Connection is
// retried a few times so service start order does not matter in compose setups.
func NewPublisher(url, exchange string, log zerolog.Logger) (*Publisher, error) {
	var conn *amqp.Connection
	var err error

	for i := 0; i < 3; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		log.Warn().Err(err).Msgf("failed to connect to RabbitMQ, retrying in 2s... (%d/3)", i+1)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ after retries: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &Publisher{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
		log:      log,
	}, nil
}

func (p *Publisher) publish(ctx context.Context, routingKey string, ev LoanEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.channel.PublishWithContext(ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}

	p.log.Debug().Str("routing_key", routingKey).Str("loan_id", ev.LoanID).Msg("published loan event")
	return nil
}

func loanEvent(loan domain.LoanApplication) LoanEvent {
	return LoanEvent{
		LoanID:     loan.ID.String(),
		UserID:     loan.UserID,
		Status:     string(loan.Status),
		Amount:     loan.LoanAmount,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
}

func (p *Publisher) LoanCreated(ctx context.Context, loan domain.LoanApplication) error {
	return p.publish(ctx, "loan.created", loanEvent(loan))
}

func (p *Publisher) LoanStatusChanged(ctx context.Context, loan domain.LoanApplication, from domain.LoanStatus) error {
	ev := loanEvent(loan)
	ev.FromStatus = string(from)
	return p.publish(ctx, "loan.status_changed", ev)
}

func (p *Publisher) LoanDeleted(ctx context.Context, loan domain.LoanApplication) error {
	return p.publish(ctx, "loan.deleted", loanEvent(loan))
}

// Close closes the publisher connection.
func (p *Publisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
