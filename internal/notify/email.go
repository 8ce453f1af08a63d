package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"

	"markethub/internal/config"
)

// Sender delivers account notifications out-of-band. Implementations must
// be safe for concurrent use; callers treat delivery as best-effort.
type Sender interface {
	SendConfirmation(ctx context.Context, toEmail, name string, userID uint, token string) error
	SendPasswordReset(ctx context.Context, toEmail, token string) error
}

// EmailSender sends notifications over SMTP.
type EmailSender struct {
	cfg     *config.Config
	baseURL string
}

// NewEmailSender creates an SMTP-backed sender. The base URL is embedded in
// confirmation links.
func NewEmailSender(cfg *config.Config) (*EmailSender, error) {
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.SMTPFrom == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}
	return &EmailSender{
		cfg:     cfg,
		baseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
	}, nil
}

// SendConfirmation mails the confirmation link and raw token to a newly
// registered user.
func (s *EmailSender) SendConfirmation(ctx context.Context, toEmail, name string, userID uint, token string) error {
	link := fmt.Sprintf("%s/login?confirmEmail=true&userId=%d&token=%s", s.baseURL, userID, token)
	body := fmt.Sprintf(
		"Hello %s,\n\nTo finish your registration, open the link below:\n\n%s\n\nConfirmation token: %s\n",
		name, link, token,
	)
	return s.send(ctx, toEmail, "Confirm your registration", body)
}

// SendPasswordReset mails a password-reset token.
func (s *EmailSender) SendPasswordReset(ctx context.Context, toEmail, token string) error {
	body := fmt.Sprintf("Token: %s\n", token)
	return s.send(ctx, toEmail, "Reset Password", body)
}

func (s *EmailSender) send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()

	if s.cfg.SMTPFromName != "" {
		if err := msg.FromFormat(s.cfg.SMTPFromName, s.cfg.SMTPFrom); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(s.cfg.SMTPFrom); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{
		mail.WithPort(s.cfg.SMTPPort),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if s.cfg.SMTPUser != "" && s.cfg.SMTPPass != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.SMTPUser),
			mail.WithPassword(s.cfg.SMTPPass),
		)
	}

	client, err := mail.NewClient(s.cfg.SMTPHost, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}

// NoopSender drops all notifications. Used when SMTP is not configured and
// in tests.
type NoopSender struct{}

// SendConfirmation implements Sender.
func (NoopSender) SendConfirmation(ctx context.Context, toEmail, name string, userID uint, token string) error {
	return nil
}

// SendPasswordReset implements Sender.
func (NoopSender) SendPasswordReset(ctx context.Context, toEmail, token string) error {
	return nil
}
