package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rullypratama/sms-backend/internal/domain/account"
	"github.com/rullypratama/sms-backend/internal/platform/mail"
	"github.com/rullypratama/sms-backend/internal/platform/queue"
)

// Consumer is the queue side the worker reads from. *queue.Consumer
// satisfies it.
type Consumer interface {
	Fetch(ctx context.Context) (*queue.Message, error)
	Ack(ctx context.Context, m *queue.Message) error
}

// defaultRetryBackoff spaces the in-process retries of a failed message.
var defaultRetryBackoff = []time.Duration{1 * time.Second, 5 * time.Second, 30 * time.Second}

// Worker drains the notification topic. Delivery is at-least-once: the
// message offset is committed only after the delivery transaction commits,
// and the delivery table absorbs redeliveries.
type Worker struct {
	consumer     Consumer
	sender       mail.EmailSender
	accounts     account.Repository
	deliveries   DeliveryRepository
	templates    *TemplateEngine
	distribution []string
	retryBackoff []time.Duration
	inTx         func(ctx context.Context, fn func(ctx context.Context) error) error
	log          zerolog.Logger
}

type WorkerConfig struct {
	Consumer     Consumer
	Sender       mail.EmailSender
	Accounts     account.Repository
	Deliveries   DeliveryRepository
	Distribution []string
	RetryBackoff []time.Duration
	InTx         func(ctx context.Context, fn func(ctx context.Context) error) error
	Logger       zerolog.Logger
}

func NewWorker(cfg WorkerConfig) *Worker {
	backoff := cfg.RetryBackoff
	if backoff == nil {
		backoff = defaultRetryBackoff
	}
	return &Worker{
		consumer:     cfg.Consumer,
		sender:       cfg.Sender,
		accounts:     cfg.Accounts,
		deliveries:   cfg.Deliveries,
		templates:    NewTemplateEngine(),
		distribution: cfg.Distribution,
		retryBackoff: backoff,
		inTx:         cfg.InTx,
		log:          cfg.Logger,
	}
}

// Run consumes until the context is canceled. A failed message is retried
// in place on the backoff schedule; when the schedule is exhausted Run
// returns without committing, so a restart re-fetches the message from the
// last committed offset. The loop never fetches past an unprocessed message:
// acking a later message would commit the partition offset over the failed
// one and lose it.
func (w *Worker) Run(ctx context.Context) error {
	for {
		msg, err := w.consumer.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		if err := w.processWithRetry(ctx, msg.Value); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("notification delivery failed, offset not committed: %w", err)
		}
		if err := w.consumer.Ack(ctx, msg); err != nil {
			w.log.Error().Err(err).Msg("offset commit failed")
		}
	}
}

func (w *Worker) processWithRetry(ctx context.Context, raw []byte) error {
	var err error
	for attempt := 0; ; attempt++ {
		if err = w.Process(ctx, raw); err == nil {
			return nil
		}
		if attempt >= len(w.retryBackoff) {
			return err
		}
		w.log.Warn().Err(err).Int("attempt", attempt+1).Msg("notification delivery failed, retrying")
		select {
		case <-ctx.Done():
			return err
		case <-time.After(w.retryBackoff[attempt]):
		}
	}
}

// Process delivers one payload. Recipients already recorded under the
// payload's dedup key are skipped, so a redelivered message only reaches
// recipients the earlier attempt missed.
func (w *Worker) Process(ctx context.Context, raw []byte) error {
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		// A payload that cannot parse will never parse. Log and drop.
		w.log.Error().Err(err).Msg("discarding malformed notification payload")
		return nil
	}
	if p.DedupKey == "" {
		w.log.Error().Str("case_id", p.CaseID).Msg("discarding payload without dedup key")
		return nil
	}

	textBody, htmlBody, err := w.templates.Render(TemplateCaseRouted, p.TemplateData())
	if err != nil {
		return fmt.Errorf("render notification: %w", err)
	}

	return w.inTx(ctx, func(txCtx context.Context) error {
		recipients, err := w.recipients(txCtx, p.DestinationCode)
		if err != nil {
			return err
		}
		var sent int
		for _, rcpt := range recipients {
			claimed, err := w.deliveries.MarkDelivered(txCtx, p.DedupKey, rcpt)
			if err != nil {
				return err
			}
			if !claimed {
				continue
			}
			if err := w.sender.SendEmail(txCtx, []string{rcpt}, p.Subject(), textBody, htmlBody); err != nil {
				return fmt.Errorf("send to %s: %w", rcpt, err)
			}
			sent++
		}
		w.log.Info().
			Str("dedup_key", p.DedupKey).
			Str("destination", p.DestinationCode).
			Int("sent", sent).
			Int("skipped", len(recipients)-sent).
			Msg("notification processed")
		return nil
	})
}

func (w *Worker) recipients(ctx context.Context, facilityCode string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, addr := range w.distribution {
		if addr != "" && !seen[addr] {
			seen[addr] = true
			out = append(out, addr)
		}
	}
	if facilityCode != "" {
		members, err := w.accounts.ListByFacilityCode(ctx, facilityCode)
		if err != nil {
			return nil, fmt.Errorf("resolve facility members: %w", err)
		}
		for _, m := range members {
			if m.Email != "" && !seen[m.Email] {
				seen[m.Email] = true
				out = append(out, m.Email)
			}
		}
	}
	return out, nil
}
