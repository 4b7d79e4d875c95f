package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/mail"
	"strings"
	"time"

	"github.com/gatherly/server/internal/config"
	"github.com/gatherly/server/internal/metrics"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

// Service sends transactional email through Resend. When the service
// is disabled it logs what it would have sent and reports success, so
// local and test environments need no API key.
type Service struct {
	config       config.EmailConfig
	resendClient *resend.Client
	template     *template.Template
	logger       zerolog.Logger
}

// ConfirmationData holds data for rendering the RSVP confirmation email
type ConfirmationData struct {
	Name        string
	EventTitle  string
	EventDate   string
	CurrentYear int
}

const confirmationTemplate = `<!DOCTYPE html>
<html>
  <body style="font-family: sans-serif; color: #1f2933;">
    <h2>You're on the list, {{.Name}}!</h2>
    <p>Your RSVP for <strong>{{.EventTitle}}</strong> on {{.EventDate}} has been recorded.</p>
    <p>We look forward to seeing you there.</p>
    <p style="color: #7b8794; font-size: 12px;">&copy; {{.CurrentYear}} Gatherly</p>
  </body>
</html>`

func NewService(cfg config.EmailConfig, logger zerolog.Logger) (*Service, error) {
	if cfg.Enabled {
		if err := validateEmailAddress(cfg.From); err != nil {
			return nil, fmt.Errorf("invalid sender email in config: %w", err)
		}
		if cfg.ResendAPIKey == "" {
			return nil, fmt.Errorf("resend API key is required when email is enabled")
		}
	}

	tmpl, err := template.New("rsvp_confirmation").Parse(confirmationTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse confirmation template: %w", err)
	}

	svc := &Service{
		config:   cfg,
		template: tmpl,
		logger:   logger.With().Str("component", "email").Logger(),
	}
	if cfg.Enabled {
		svc.resendClient = resend.NewClient(cfg.ResendAPIKey)
	}
	return svc, nil
}

// SendRSVPConfirmation emails the attendee that their RSVP was recorded.
func (s *Service) SendRSVPConfirmation(ctx context.Context, to, name, eventTitle string, eventDate time.Time) error {
	if err := validateEmailAddress(to); err != nil {
		metrics.RSVPConfirmationsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("invalid recipient email: %w", err)
	}

	if !s.config.Enabled {
		s.logger.Info().
			Str("to", to).
			Str("event", eventTitle).
			Msg("email service disabled, skipping rsvp confirmation")
		metrics.RSVPConfirmationsTotal.WithLabelValues("skipped").Inc()
		return nil
	}

	data := ConfirmationData{
		Name:        name,
		EventTitle:  eventTitle,
		EventDate:   eventDate.UTC().Format("Monday, January 2, 2006 at 15:04 MST"),
		CurrentYear: time.Now().Year(),
	}

	var body bytes.Buffer
	if err := s.template.Execute(&body, data); err != nil {
		metrics.RSVPConfirmationsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("render confirmation template: %w", err)
	}

	subject := fmt.Sprintf("RSVP confirmed: %s", eventTitle)
	if err := s.sendViaResend(ctx, to, subject, body.String()); err != nil {
		metrics.RSVPConfirmationsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("send rsvp confirmation: %w", err)
	}

	metrics.RSVPConfirmationsTotal.WithLabelValues("sent").Inc()
	return nil
}

// validateEmailAddress validates an email address for format and header injection attempts
func validateEmailAddress(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return fmt.Errorf("invalid email format: %w", err)
	}

	if strings.ContainsAny(addr.Address, "\r\n") {
		return fmt.Errorf("invalid email address: contains newline characters")
	}

	return nil
}
