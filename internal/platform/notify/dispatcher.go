package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rullypratama/sms-backend/internal/domain/account"
	"github.com/rullypratama/sms-backend/internal/domain/caserecord"
	"github.com/rullypratama/sms-backend/internal/platform/mail"
)

// Mode selects how the dispatcher hands off a notification.
type Mode string

const (
	// ModeDirect sends the email inline, on the request path.
	ModeDirect Mode = "direct"
	// ModeQueue publishes the payload to the broker; the notify-worker
	// performs the delivery.
	ModeQueue Mode = "queue"
)

// Publisher hands a serialized payload to the broker. *queue.Publisher
// satisfies it.
type Publisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// Dispatcher implements the routing engine's Notifier. All settings are fixed
// at construction.
type Dispatcher struct {
	mode         Mode
	sender       mail.EmailSender
	publisher    Publisher
	accounts     account.Repository
	templates    *TemplateEngine
	distribution []string
	baseURL      string
	log          zerolog.Logger
}

type DispatcherConfig struct {
	Mode         Mode
	Sender       mail.EmailSender
	Publisher    Publisher
	Accounts     account.Repository
	Distribution []string
	BaseURL      string
	Logger       zerolog.Logger
}

func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	return &Dispatcher{
		mode:         cfg.Mode,
		sender:       cfg.Sender,
		publisher:    cfg.Publisher,
		accounts:     cfg.Accounts,
		templates:    NewTemplateEngine(),
		distribution: cfg.Distribution,
		baseURL:      cfg.BaseURL,
		log:          cfg.Logger,
	}
}

// NotifyRoute flattens the event and either emails it out or enqueues it.
func (d *Dispatcher) NotifyRoute(ctx context.Context, ev caserecord.RouteEvent) error {
	if ev.Destination == nil {
		return fmt.Errorf("routing event without destination facility")
	}
	p := BuildPayload(ev, d.baseURL)

	if d.mode == ModeQueue {
		raw, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		if err := d.publisher.Publish(ctx, p.DedupKey, raw); err != nil {
			return fmt.Errorf("publish payload: %w", err)
		}
		d.log.Info().
			Str("dedup_key", p.DedupKey).
			Str("destination", p.DestinationCode).
			Msg("notification enqueued")
		return nil
	}

	recipients, err := d.recipients(ctx, p.DestinationCode)
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		d.log.Warn().
			Str("destination", p.DestinationCode).
			Msg("notification skipped: no recipients")
		return nil
	}

	textBody, htmlBody, err := d.templates.Render(TemplateCaseRouted, p.TemplateData())
	if err != nil {
		return fmt.Errorf("render notification: %w", err)
	}
	if err := d.sender.SendEmail(ctx, recipients, p.Subject(), textBody, htmlBody); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	d.log.Info().
		Str("case_id", p.CaseID).
		Str("destination", p.DestinationCode).
		Int("recipients", len(recipients)).
		Msg("notification sent")
	return nil
}

// recipients is the configured distribution list plus the active members of
// the destination facility.
func (d *Dispatcher) recipients(ctx context.Context, facilityCode string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, addr := range d.distribution {
		if addr != "" && !seen[addr] {
			seen[addr] = true
			out = append(out, addr)
		}
	}
	if facilityCode != "" {
		members, err := d.accounts.ListByFacilityCode(ctx, facilityCode)
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
