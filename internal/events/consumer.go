package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/20213tn048/sispe-backend/internal/lib/sl"
)

const maxInFlight = 10

// Source часть amqp.Channel, необходимая для чтения очереди.
type Source interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// Handler обрабатывает одно сообщение. Ошибка возвращает сообщение в очередь.
type Handler func(routingKey string, body []byte) error

// Consume читает очередь queue до отмены ctx, обрабатывая не более maxInFlight
// сообщений одновременно. Сообщение подтверждается только после успешной обработки.
func Consume(ctx context.Context, src Source, queue string, log *slog.Logger, handler Handler) error {
	const op = "events.Consume"
	delivery, err := src.Consume(
		queue,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log = log.With(slog.String("op", op), slog.String("queue", queue))
	sem := make(chan struct{}, maxInFlight)
	go func() {
		for {
			select {
			case d, ok := <-delivery:
				if !ok {
					return
				}
				select {
				case sem <- struct{}{}:
				case <-ctx.Done():
					if nackErr := d.Nack(false, true); nackErr != nil {
						log.Error("failed to nack message", sl.Err(nackErr))
					}
					return
				}
				go func(d amqp.Delivery) {
					defer func() { <-sem }()
					if err := handler(d.RoutingKey, d.Body); err != nil {
						log.Warn("message handling failed", sl.Err(err))
						if nackErr := d.Nack(false, true); nackErr != nil {
							log.Error("failed to nack message", sl.Err(nackErr))
						}
						return
					}
					if ackErr := d.Ack(false); ackErr != nil {
						log.Error("failed to ack message", sl.Err(ackErr))
					}
				}(d)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// AuditRecord событие избранного в том виде, в каком оно лежит в очереди аудита.
type AuditRecord struct {
	FavoriteID string    `json:"favorite_id"`
	UserID     string    `json:"fk_user"`
	FilmID     string    `json:"fk_film"`
	OccurredAt time.Time `json:"occurred_at"`
}

// AuditLogger возвращает Handler, который пишет события избранного в журнал.
// Нечитаемое сообщение подтверждается, чтобы не зацикливать его в очереди.
func AuditLogger(log *slog.Logger) Handler {
	return func(routingKey string, body []byte) error {
		var rec AuditRecord
		if err := json.Unmarshal(body, &rec); err != nil {
			log.Error("malformed audit event", slog.String("routing_key", routingKey), sl.Err(err))
			return nil
		}
		log.Info("favorite audit",
			slog.String("event", routingKey),
			slog.String("favorite_id", rec.FavoriteID),
			slog.String("fk_user", rec.UserID),
			slog.String("fk_film", rec.FilmID),
			slog.Time("occurred_at", rec.OccurredAt),
		)
		return nil
	}
}
