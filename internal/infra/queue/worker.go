package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

var ErrMalformedEvent = errors.New("malformed lead event")

type LeadNotifier interface {
	NotifyLeadCreated(ctx context.Context, lead entity.Lead) error
}

// CRMSyncer pushes a lead to an external CRM and returns the remote id.
type CRMSyncer interface {
	SyncLead(ctx context.Context, lead entity.Lead) (int, error)
}

type Worker struct {
	Channel  *amqp.Channel
	Notifier LeadNotifier
	CRM      CRMSyncer
	Logger   *slog.Logger
}

// NewWorker accepts nil notifier or CRM; the matching step is then skipped.
func NewWorker(ch *amqp.Channel, notifier LeadNotifier, crm CRMSyncer, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		Channel:  ch,
		Notifier: notifier,
		CRM:      crm,
		Logger:   logger,
	}
}

// Start consumes queueName until ctx is cancelled or the channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer on %s: %w", queueName, err)
	}

	w.Logger.Info("worker consuming", slog.String("queue", queueName))

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			w.deliver(ctx, d)
		}
	}
}

func (w *Worker) deliver(ctx context.Context, d amqp.Delivery) {
	err := w.Handle(ctx, d.Body)
	if err != nil {
		// no requeue: failed events go to the DLQ for inspection
		w.Logger.Error("lead event rejected",
			slog.String("message_id", d.MessageId),
			slog.String("error", err.Error()),
		)
		d.Nack(false, false)
		return
	}
	d.Ack(false)
}

// Handle decodes one message body and runs the consumers for its event type.
func (w *Worker) Handle(ctx context.Context, body []byte) error {
	var event LeadEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if event.Type == "" {
		return fmt.Errorf("%w: missing type", ErrMalformedEvent)
	}

	switch event.Type {
	case EventLeadCreated:
		return w.onLeadCreated(ctx, event.Lead)
	default:
		w.Logger.Debug("lead event ignored", slog.String("type", event.Type), slog.Int64("lead_id", event.Lead.ID))
		return nil
	}
}

func (w *Worker) onLeadCreated(ctx context.Context, lead entity.Lead) error {
	var errs []error

	if w.Notifier != nil {
		if err := w.Notifier.NotifyLeadCreated(ctx, lead); err != nil {
			errs = append(errs, fmt.Errorf("notify: %w", err))
		}
	}

	if w.CRM != nil {
		remoteID, err := w.CRM.SyncLead(ctx, lead)
		if err != nil {
			errs = append(errs, fmt.Errorf("crm sync: %w", err))
		} else {
			w.Logger.Info("lead synced to crm", slog.Int64("lead_id", lead.ID), slog.Int("crm_id", remoteID))
		}
	}

	return errors.Join(errs...)
}
