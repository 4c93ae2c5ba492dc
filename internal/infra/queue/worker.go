package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/xavierca1/kiwipay-leads/internal/entity"
)

// LeadNotifier avisa o back office sobre um evento de lead.
type LeadNotifier interface {
	NotifyLeadEvent(ctx context.Context, event entity.LeadEvent) error
}

// ErrPermanent marca falhas que não adianta reprocessar.
var ErrPermanent = errors.New("falha permanente")

type Worker struct {
	Channel  *amqp.Channel
	Notifier LeadNotifier
	Logger   zerolog.Logger
}

func NewWorker(ch *amqp.Channel, notifier LeadNotifier, logger zerolog.Logger) *Worker {
	return &Worker{
		Channel:  ch,
		Notifier: notifier,
		Logger:   logger,
	}
}

// Start consome até o ctx ser cancelado ou o canal fechar.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	if err := w.Channel.Qos(10, 0, false); err != nil {
		return fmt.Errorf("falha ao configurar prefetch: %w", err)
	}

	msgs, err := w.Channel.ConsumeWithContext(ctx,
		queueName,
		"",    // consumer
		false, // auto-ack (ack manual)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("falha ao registrar consumidor RabbitMQ: %w", err)
	}

	w.Logger.Info().Str("queue", queueName).Msg("worker aguardando eventos")
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("canal de entregas fechado")
			}
			w.handleDelivery(ctx, d)
		}
	}
}

func (w *Worker) handleDelivery(ctx context.Context, d amqp.Delivery) {
	var event entity.LeadEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		// mensagem malformada vai direto pra DLQ
		w.Logger.Error().Err(err).Str("message_id", d.MessageId).Msg("evento inválido")
		d.Nack(false, false)
		return
	}

	log := w.Logger.With().Str("type", event.Type).Int64("lead_id", event.LeadID).Logger()

	if err := w.Notifier.NotifyLeadEvent(ctx, event); err != nil {
		requeue := !errors.Is(err, ErrPermanent) && !d.Redelivered
		log.Error().Err(err).Bool("requeue", requeue).Msg("falha ao notificar")
		d.Nack(false, requeue)
		return
	}

	log.Info().Msg("notificação enviada")
	d.Ack(false)
}
