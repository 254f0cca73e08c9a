package smtp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/emersion/go-smtp"
	apperrors "github.com/welldanyogia/postoffice/internal/errors"
	"github.com/welldanyogia/postoffice/internal/validator"
)

var (
	errBadSender = &smtp.SMTPError{
		Code:         550,
		EnhancedCode: smtp.EnhancedCode{5, 1, 7},
		Message:      "Invalid sender address",
	}
	errBadRecipient = &smtp.SMTPError{
		Code:         550,
		EnhancedCode: smtp.EnhancedCode{5, 1, 1},
		Message:      "Invalid recipient address",
	}
	errTemporary = &smtp.SMTPError{
		Code:         451,
		EnhancedCode: smtp.EnhancedCode{4, 3, 0},
		Message:      "Temporary error",
	}
)

// Session implements the go-smtp Session interface. Every accepted mail
// becomes one message per recipient, sent from the envelope sender.
type Session struct {
	backend    *Backend
	from       string
	recipients []string
	remoteAddr string
}

// NewSession creates a new SMTP session
func NewSession(backend *Backend) *Session {
	return &Session{
		backend:    backend,
		recipients: make([]string, 0),
	}
}

// Mail handles the MAIL FROM command. The null sender is accepted and
// resolved from the From header at DATA time.
func (s *Session) Mail(from string, opts *smtp.MailOptions) error {
	if from != "" {
		owner, _, err := localPart(from)
		if err != nil || validator.ValidateOwnerID(owner) != nil {
			s.rejectSender(from)
			return errBadSender
		}
		s.from = owner
	}
	if s.backend.logger != nil {
		s.backend.logger.Debug("MAIL FROM", slog.String("from", from))
	}
	return nil
}

// Rcpt handles the RCPT TO command
func (s *Session) Rcpt(to string, opts *smtp.RcptOptions) error {
	owner, domain, err := localPart(to)
	if err != nil || validator.ValidateOwnerID(owner) != nil {
		return errBadRecipient
	}
	if !s.backend.acceptsDomain(domain) {
		if s.backend.security != nil {
			s.backend.security.SuspiciousActivity(s.remoteAddr, "smtp", "relay_attempt")
		}
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 1, 2},
			Message:      "Domain not handled here",
		}
	}

	s.recipients = append(s.recipients, owner)
	if s.backend.logger != nil {
		s.backend.logger.Debug("RCPT TO", slog.String("to", to), slog.String("owner", owner))
	}
	return nil
}

// Data handles the DATA command - receives the email content
func (s *Session) Data(r io.Reader) error {
	if len(s.recipients) == 0 {
		return &smtp.SMTPError{
			Code:         503,
			EnhancedCode: smtp.EnhancedCode{5, 5, 1},
			Message:      "No recipients specified",
		}
	}

	parsed, err := ParseEmail(r)
	if err != nil {
		if s.backend.logger != nil {
			s.backend.logger.Error("failed to parse email", slog.Any("error", err))
		}
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 6, 0},
			Message:      "Failed to parse email",
		}
	}

	from := s.from
	if from == "" {
		owner, _, err := localPart(parsed.SenderAddress)
		if err != nil || validator.ValidateOwnerID(owner) != nil {
			s.rejectSender(parsed.SenderAddress)
			return errBadSender
		}
		from = owner
	}

	ctx := context.Background()
	var failures []error
	for _, recipient := range s.recipients {
		if err := s.deliver(ctx, from, recipient, parsed); err != nil {
			if s.backend.logger != nil {
				s.backend.logger.Error("failed to deliver email",
					slog.String("from", from),
					slog.String("to", recipient),
					slog.Any("error", err))
			}
			failures = append(failures, err)
		}
	}

	if len(failures) == len(s.recipients) {
		err := errors.Join(failures...)
		if apperrors.IsInvalidInput(err) {
			return &smtp.SMTPError{
				Code:         550,
				EnhancedCode: smtp.EnhancedCode{5, 6, 0},
				Message:      "Message rejected",
			}
		}
		return errTemporary
	}

	if s.backend.logger != nil {
		s.backend.logger.Info("email received",
			slog.String("from", from),
			slog.Int("recipients", len(s.recipients)),
			slog.Int("failed", len(failures)),
			slog.Bool("reply", parsed.Discriminator != ""))
	}
	return nil
}

// deliver turns the mail into a reply when it names a conversation and into
// a new conversation otherwise
func (s *Session) deliver(ctx context.Context, from, to string, email *ParsedEmail) error {
	if email.Discriminator != "" {
		return s.backend.messenger.Reply(ctx, from, to, email.Subject, email.Body, email.Discriminator)
	}

	discriminator, err := s.backend.messenger.StartConversation(ctx, from, to, email.Subject, email.Body)
	if err != nil {
		return fmt.Errorf("failed to start conversation: %w", err)
	}
	if s.backend.logger != nil {
		s.backend.logger.Debug("conversation started",
			slog.String("from", from),
			slog.String("to", to),
			slog.String("discriminator", discriminator))
	}
	return nil
}

func (s *Session) rejectSender(from string) {
	if s.backend.security != nil {
		s.backend.security.SecurityEvent("smtp_invalid_sender", s.remoteAddr, map[string]string{"from": from})
	}
}

// Reset resets the session state
func (s *Session) Reset() {
	s.from = ""
	s.recipients = make([]string, 0)
}

// Logout handles the end of the session
func (s *Session) Logout() error {
	return nil
}
