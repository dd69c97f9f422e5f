package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"

	"golang.org/x/sync/errgroup"
)

// TemplateRenderer renders a named template against a data mapping.
type TemplateRenderer interface {
	Render(name string, data map[string]any) (string, error)
}

// StyleInliner rewrites CSS rules into inline style attributes.
// Implementations never fail; they degrade to the input on error.
type StyleInliner interface {
	Inline(html string) string
}

// Config holds dispatch service configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	FromEmail string `env:"MAILER_FROM_EMAIL" envDefault:"no-reply@example.com"`
	FromName  string `env:"MAILER_FROM_NAME" envDefault:"Mailroom"`
	// Testing short-circuits delivery: the constructed provider params
	// are returned instead of calling the sender.
	Testing bool `env:"MAILER_TESTING" envDefault:"false"`
	// Concurrency bounds the parallel per-recipient pipeline in
	// SendPersonalized. 1 (the default) keeps it sequential.
	Concurrency int `env:"MAILER_CONCURRENCY" envDefault:"1"`
}

// Service renders transactional messages and dispatches them through
// a delivery provider. It holds immutable configuration only; one
// instance is safe for concurrent use.
type Service struct {
	sender      Sender
	renderer    TemplateRenderer
	inliner     StyleInliner
	log         *slog.Logger
	defaultFrom EmailAddress
	testing     bool
	concurrency int
}

// NewService creates a dispatch service. The sender may be nil in
// testing mode only; a nil inliner defaults to the premailer-backed
// Inliner.
func NewService(sender Sender, renderer TemplateRenderer, inliner StyleInliner, cfg Config, log *slog.Logger) (*Service, error) {
	if renderer == nil {
		return nil, fmt.Errorf("%w: renderer is required", ErrConfiguration)
	}
	if sender == nil && !cfg.Testing {
		return nil, fmt.Errorf("%w: sender is required outside testing mode", ErrConfiguration)
	}

	from, err := NewEmailAddress(cfg.FromEmail, cfg.FromName)
	if err != nil {
		return nil, fmt.Errorf("%w: default sender address: %v", ErrConfiguration, err)
	}

	if log == nil {
		log = slog.Default()
	}
	if inliner == nil {
		inliner = NewInliner(log)
	}
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	return &Service{
		sender:      sender,
		renderer:    renderer,
		inliner:     inliner,
		log:         log,
		defaultFrom: from,
		testing:     cfg.Testing,
		concurrency: concurrency,
	}, nil
}

// SendParams describes one dispatch call.
type SendParams struct {
	To      []EmailAddress
	Subject string
	From    *EmailAddress // overrides the configured default sender
	CC      []EmailAddress
	BCC     []EmailAddress
}

// Recipient is a raw, not-yet-validated batch entry.
type Recipient struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Delivery is the outcome of one send attempt. Exactly one of
// Receipt, Params or Err is set: Receipt after a live delivery,
// Params when the service runs in testing mode, Err when this
// recipient failed.
type Delivery struct {
	Email   string // recipient the attempt was for (personalized and batch sends)
	Receipt *Receipt
	Params  *Email
	Err     error
}

// Failed reports whether this recipient's send failed.
func (d Delivery) Failed() bool { return d.Err != nil }

// MessageID returns the provider message id, or "" when the send
// failed or ran in testing mode.
func (d Delivery) MessageID() string {
	if d.Receipt == nil {
		return ""
	}
	return d.Receipt.ID
}

// Send renders msg once and delivers it to every address in params.To
// as a single message. Any rendering or delivery failure is fatal for
// the whole call; no partial receipts are produced.
func (s *Service) Send(ctx context.Context, msg Message, params SendParams) (*Delivery, error) {
	if err := s.validate(msg); err != nil {
		return nil, err
	}
	if len(params.To) == 0 {
		return nil, ErrNoRecipients
	}
	from := s.resolveFrom(params.From)

	html, err := s.render(msg, msg.TemplateData())
	if err != nil {
		return nil, err
	}

	email := &Email{
		From:    from.String(),
		To:      displayList(params.To),
		Subject: params.Subject,
		HTML:    html,
		CC:      displayList(params.CC),
		BCC:     displayList(params.BCC),
	}
	if s.testing {
		return &Delivery{Params: email}, nil
	}

	s.log.InfoContext(ctx, "sending email",
		slog.String("template", msg.TemplateName()),
		slog.Int("recipients", len(params.To)))

	receipt, err := s.sender.Send(ctx, email)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to send email", slog.String("error", err.Error()))
		return nil, errors.Join(ErrSendFailed, err)
	}
	return &Delivery{Receipt: receipt}, nil
}

// SendPersonalized renders and delivers a separate message per
// recipient, substituting each recipient's identity into the shared
// template data. Failures are isolated per recipient: the returned
// slice carries one entry per address in params.To, in input order,
// and the call itself only fails pre-flight.
func (s *Service) SendPersonalized(ctx context.Context, msg Message, params SendParams) ([]Delivery, error) {
	if err := s.validate(msg); err != nil {
		return nil, err
	}
	if len(params.To) == 0 {
		return nil, ErrNoRecipients
	}
	from := s.resolveFrom(params.From)

	results := make([]Delivery, len(params.To))
	if s.concurrency > 1 {
		// Results stay index-addressed so input order survives, and a
		// failed recipient never cancels the rest.
		var g errgroup.Group
		g.SetLimit(s.concurrency)
		for i, rcpt := range params.To {
			g.Go(func() error {
				results[i] = s.deliverTo(ctx, msg, rcpt, params.Subject, from)
				return nil
			})
		}
		_ = g.Wait()
		return results, nil
	}

	for i, rcpt := range params.To {
		results[i] = s.deliverTo(ctx, msg, rcpt, params.Subject, from)
	}
	return results, nil
}

// SendBatch delivers personalized messages to raw recipient records.
// Records without an email are skipped with a warning and do not
// appear in the results; malformed addresses and per-recipient
// failures are recorded in their slot and processing continues.
func (s *Service) SendBatch(ctx context.Context, msg Message, recipients []Recipient, subject string, from *EmailAddress) ([]Delivery, error) {
	if err := s.validate(msg); err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}
	sender := s.resolveFrom(from)

	results := make([]Delivery, 0, len(recipients))
	var successes, failures int

	for _, r := range recipients {
		if r.Email == "" {
			s.log.WarnContext(ctx, "skipping batch recipient without email")
			continue
		}

		rcpt, err := NewEmailAddress(r.Email, r.Name)
		if err != nil {
			s.log.ErrorContext(ctx, "invalid batch recipient",
				slog.String("recipient", r.Email),
				slog.String("error", err.Error()))
			results = append(results, Delivery{Email: r.Email, Err: err})
			failures++
			continue
		}

		d := s.deliverTo(ctx, msg, rcpt, subject, sender)
		results = append(results, d)
		if d.Failed() {
			failures++
		} else {
			successes++
		}
	}

	s.log.InfoContext(ctx, "batch send completed",
		slog.Int("successes", successes),
		slog.Int("failures", failures))
	return results, nil
}

// deliverTo is the per-recipient unit of work shared by personalized
// and batch sends. Failures are returned inside the Delivery, never
// as an error.
func (s *Service) deliverTo(ctx context.Context, msg Message, rcpt EmailAddress, subject string, from EmailAddress) Delivery {
	data := msg.TemplateData()
	personalize(data, rcpt)

	html, err := s.render(msg, data)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to render personalized email",
			slog.String("recipient", rcpt.Email()),
			slog.String("error", err.Error()))
		return Delivery{Email: rcpt.Email(), Err: err}
	}

	email := &Email{
		From:    from.String(),
		To:      []string{rcpt.String()},
		Subject: subject,
		HTML:    html,
	}
	if s.testing {
		return Delivery{Email: rcpt.Email(), Params: email}
	}

	s.log.InfoContext(ctx, "sending personalized email", slog.String("recipient", rcpt.Email()))
	receipt, err := s.sender.Send(ctx, email)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to send personalized email",
			slog.String("recipient", rcpt.Email()),
			slog.String("error", err.Error()))
		return Delivery{Email: rcpt.Email(), Err: errors.Join(ErrSendFailed, err)}
	}
	return Delivery{Email: rcpt.Email(), Receipt: receipt}
}

func (s *Service) render(msg Message, data map[string]any) (string, error) {
	html, err := s.renderer.Render(msg.TemplateName(), data)
	if err != nil {
		return "", err
	}
	return s.inliner.Inline(html), nil
}

func (s *Service) validate(msg Message) error {
	// An empty template name is a programming error in the message
	// type, not bad user input.
	if msg.TemplateName() == "" {
		return fmt.Errorf("%w: message %T has no template name", ErrValidation, msg)
	}
	return msg.Validate()
}

func (s *Service) resolveFrom(from *EmailAddress) EmailAddress {
	if from != nil && !from.IsZero() {
		return *from
	}
	return s.defaultFrom
}

// personalize overwrites the user block's name and email with the
// recipient's, keeping the message's default name when the recipient
// has none. Only the user identity is personalized; variant fields
// such as dashboard links stay shared across recipients.
func personalize(data map[string]any, rcpt EmailAddress) {
	user, ok := data["user"].(map[string]any)
	if !ok {
		return
	}
	user = maps.Clone(user)
	if rcpt.Name() != "" {
		user["name"] = rcpt.Name()
	}
	user["email"] = rcpt.Email()
	data["user"] = user
}

func displayList(addrs []EmailAddress) []string {
	if len(addrs) == 0 {
		return nil
	}
	out := make([]string, len(addrs))
	for i, a := range addrs {
		out[i] = a.String()
	}
	return out
}
