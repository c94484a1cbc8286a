// Package notifier publishes booking lifecycle events to RabbitMQ for the
// email worker. Publishing is fire-and-forget: failures are logged and never
// propagated into the request that triggered them.
package notifier

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	QueueBookingConfirmed    = "booking.confirmed"
	QueueBookingCancelled    = "booking.cancelled"
	QueueCancellationDecided = "cancellation.decided"
	QueueRefundCompleted     = "refund.completed"
)

type Notifier interface {
	BookingConfirmed(ctx context.Context, event BookingConfirmedEvent)
	BookingCancelled(ctx context.Context, event BookingCancelledEvent)
	CancellationDecided(ctx context.Context, event CancellationDecidedEvent)
	RefundCompleted(ctx context.Context, event RefundCompletedEvent)
}

type amqpNotifier struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	log  *zap.Logger
}

// NewAMQPNotifier connects to the broker and declares the durable queues.
// When the broker is unreachable a no-op notifier is returned so booking
// operations keep working without email.
func NewAMQPNotifier(url string, log *zap.Logger) Notifier {
	log = log.With(zap.String("component", "notifier"))

	conn, err := amqp.Dial(url)
	if err != nil {
		log.Warn("AMQP unavailable, notifications disabled", zap.Error(err))
		return &noopNotifier{log: log}
	}

	ch, err := conn.Channel()
	if err != nil {
		log.Warn("AMQP channel open failed, notifications disabled", zap.Error(err))
		conn.Close()
		return &noopNotifier{log: log}
	}

	for _, queue := range []string{
		QueueBookingConfirmed,
		QueueBookingCancelled,
		QueueCancellationDecided,
		QueueRefundCompleted,
	} {
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			log.Warn("AMQP queue declare failed, notifications disabled",
				zap.Error(err),
				zap.String("queue", queue),
			)
			ch.Close()
			conn.Close()
			return &noopNotifier{log: log}
		}
	}

	return &amqpNotifier{conn: conn, ch: ch, log: log}
}

func (n *amqpNotifier) publish(ctx context.Context, queue string, event any) {
	body, err := json.Marshal(event)
	if err != nil {
		n.log.Error("Failed to marshal event", zap.Error(err), zap.String("queue", queue))
		return
	}

	err = n.ch.PublishWithContext(ctx,
		"",    // default exchange
		queue, // routing key = queue name
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		n.log.Error("Failed to publish event",
			zap.Error(err),
			zap.String("queue", queue),
		)
		return
	}

	n.log.Info("Event published", zap.String("queue", queue))
}

func (n *amqpNotifier) BookingConfirmed(ctx context.Context, event BookingConfirmedEvent) {
	n.publish(ctx, QueueBookingConfirmed, event)
}

func (n *amqpNotifier) BookingCancelled(ctx context.Context, event BookingCancelledEvent) {
	n.publish(ctx, QueueBookingCancelled, event)
}

func (n *amqpNotifier) CancellationDecided(ctx context.Context, event CancellationDecidedEvent) {
	n.publish(ctx, QueueCancellationDecided, event)
}

func (n *amqpNotifier) RefundCompleted(ctx context.Context, event RefundCompletedEvent) {
	n.publish(ctx, QueueRefundCompleted, event)
}

// Close releases the broker connection.
func Close(n Notifier) {
	if an, ok := n.(*amqpNotifier); ok {
		an.ch.Close()
		an.conn.Close()
	}
}

type noopNotifier struct {
	log *zap.Logger
}

func (n *noopNotifier) BookingConfirmed(ctx context.Context, event BookingConfirmedEvent) {
	n.log.Debug("Notifier disabled, dropping event", zap.String("queue", QueueBookingConfirmed))
}

func (n *noopNotifier) BookingCancelled(ctx context.Context, event BookingCancelledEvent) {
	n.log.Debug("Notifier disabled, dropping event", zap.String("queue", QueueBookingCancelled))
}

func (n *noopNotifier) CancellationDecided(ctx context.Context, event CancellationDecidedEvent) {
	n.log.Debug("Notifier disabled, dropping event", zap.String("queue", QueueCancellationDecided))
}

func (n *noopNotifier) RefundCompleted(ctx context.Context, event RefundCompletedEvent) {
	n.log.Debug("Notifier disabled, dropping event", zap.String("queue", QueueRefundCompleted))
}
