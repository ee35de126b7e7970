// Package events публикует события об изменении броней и каталога в RabbitMQ,
// чтобы другие экземпляры ассистента могли сбросить свои кэши.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"

	"github.com/Kirill-j/bookinghub/internal/lib/sl"
)

// Типы событий. Тип используется как routing key.
const (
	BookingCreated       = "booking.created"
	BookingCanceled      = "booking.canceled"
	BookingStatusChanged = "booking.status_changed"
	CatalogChanged       = "catalog.changed"
)

// Event — событие об изменении данных на бэкенде, сделанном через этот ассистент.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Source     string    `json:"source"`
	BookingID  uint64    `json:"bookingId,omitempty"`
	ResourceID uint64    `json:"resourceId,omitempty"`
	Date       string    `json:"date,omitempty"`
	Status     string    `json:"status,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Channel — часть *amqp.Channel, которой пользуется пакет.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Close() error
}

// Connect подключается к RabbitMQ, повторяя попытки retries раз с паузой delay.
func Connect(url string, retries int, delay time.Duration) (*amqp.Connection, error) {
	const op = "events.Connect"

	var (
		conn *amqp.Connection
		err  error
	)
	for range retries {
		conn, err = amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		time.Sleep(delay)
	}
	return nil, fmt.Errorf("%s: %w", op, err)
}

// Publisher публикует события в topic-exchange.
type Publisher struct {
	ch       Channel
	exchange string
	source   string
	log      *slog.Logger
}

// NewPublisher объявляет exchange и создаёт издателя.
// Каждый издатель получает собственный идентификатор источника.
func NewPublisher(ch Channel, exchange string, log *slog.Logger) (*Publisher, error) {
	const op = "events.NewPublisher"

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Publisher{ch: ch, exchange: exchange, source: uuid.NewString(), log: log}, nil
}

// Source возвращает идентификатор источника событий этого издателя.
func (p *Publisher) Source() string {
	return p.source
}

// Publish отправляет событие. Пустые ID и OccurredAt заполняются.
func (p *Publisher) Publish(ctx context.Context, ev Event) error {
	const op = "events.Publish"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	ev.Source = p.source

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	err = p.ch.Publish(p.exchange, ev.Type, false, false, amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    ev.ID,
		Timestamp:    ev.OccurredAt,
		Body:         body,
		DeliveryMode: amqp.Persistent,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	p.log.Debug("event published", slog.String("type", ev.Type), slog.String("event_id", ev.ID))
	return nil
}

// Subscribe создаёт временную очередь, привязывает её ко всем событиям exchange и
// передаёт в handler события других источников. Возвращается сразу, чтение идёт
// в фоне до отмены ctx или закрытия канала.
func Subscribe(ctx context.Context, ch Channel, exchange, source string, log *slog.Logger, handler func(Event)) error {
	const op = "events.Subscribe"

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.QueueBind(q.Name, "#", exchange, false, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	deliveries, err := ch.Consume(q.Name, "", false, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	go func() {
		for {
			select {
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				handleDelivery(d, source, log, handler)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

func handleDelivery(d amqp.Delivery, source string, log *slog.Logger, handler func(Event)) {
	var ev Event
	if err := json.Unmarshal(d.Body, &ev); err != nil {
		log.Warn("dropping malformed event", sl.Err(err))
		if err := d.Nack(false, false); err != nil {
			log.Error("failed to nack event", sl.Err(err))
		}
		return
	}
	if ev.Source != source {
		handler(ev)
	}
	if err := d.Ack(false); err != nil {
		log.Error("failed to ack event", sl.Err(err))
	}
}

// Noop — издатель, который ничего не отправляет. Используется, когда RabbitMQ не настроен.
type Noop struct{}

// Publish ничего не делает.
func (Noop) Publish(context.Context, Event) error { return nil }
