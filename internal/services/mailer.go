// internal/services/mailer.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"

	"github.com/exportplatform/export-api/internal/config"
	"github.com/exportplatform/export-api/internal/models"
)

// EmailSender delivers one rendered HTML message.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, htmlBody string) error
}

// NewEmailSender prefers SendGrid, then SMTP. Without either the message is
// only logged.
func NewEmailSender(cfg config.EmailConfig) EmailSender {
	switch {
	case cfg.SendGridAPIKey != "":
		return &sendGridSender{cfg: cfg, client: sendgrid.NewSendClient(cfg.SendGridAPIKey)}
	case cfg.SMTPHost != "":
		return &smtpSender{cfg: cfg}
	default:
		return logEmailSender{}
	}
}

type sendGridSender struct {
	cfg    config.EmailConfig
	client *sendgrid.Client
}

func (s *sendGridSender) SendEmail(_ context.Context, to, subject, htmlBody string) error {
	from := mail.NewEmail(s.cfg.FromName, s.cfg.FromEmail)
	message := mail.NewSingleEmail(from, subject, mail.NewEmail("", to), "", htmlBody)

	resp, err := s.client.Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: unexpected status %d", resp.StatusCode)
	}
	return nil
}

type smtpSender struct {
	cfg config.EmailConfig
}

func (s *smtpSender) SendEmail(_ context.Context, to, subject, htmlBody string) error {
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)

	msg := []byte(fmt.Sprintf(
		"From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		s.cfg.FromName, s.cfg.FromEmail, to, subject, htmlBody,
	))

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	return smtp.SendMail(addr, auth, s.cfg.FromEmail, []string{to}, msg)
}

type logEmailSender struct{}

func (logEmailSender) SendEmail(_ context.Context, to, subject, _ string) error {
	logrus.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("Email delivery not configured, message logged only")
	return nil
}

type EmailTemplate struct {
	Subject string
	Body    string
}

var emailTemplates = map[string]EmailTemplate{
	"reset_code": {
		Subject: "Password reset code",
		Body: `<!DOCTYPE html>
<html>
<body>
	<h2>Hello {{.Name}},</h2>
	<p>Your password reset code is <strong>{{.Code}}</strong>.</p>
	<p>The code expires in {{.ExpiresIn}}. If you did not request a reset, ignore this message.</p>
	<p>{{.PlatformName}}</p>
</body>
</html>`,
	},
	"invitation": {
		Subject: "You have been added to a company",
		Body: `<!DOCTYPE html>
<html>
<body>
	<h2>Hello!</h2>
	<p>You were added as an employee of <strong>{{.CompanyName}}</strong> on {{.PlatformName}}.</p>
	<p>Set your password to sign in:</p>
	<a href="{{.ResetURL}}">Set password</a>
</body>
</html>`,
	},
	"notification": {
		Subject: "New notification",
		Body: `<!DOCTYPE html>
<html>
<body>
	<h2>{{.Title}}</h2>
	<p>{{.Text}}</p>
	<a href="{{.CabinetURL}}">Open cabinet</a>
</body>
</html>`,
	},
}

const platformName = "Export Platform"

// MailService renders the platform's transactional emails.
type MailService struct {
	sender  EmailSender
	baseURL string
}

func NewMailService(sender EmailSender, cfg *config.Config) *MailService {
	return &MailService{sender: sender, baseURL: cfg.Frontend.BaseURL}
}

func (s *MailService) SendResetCode(ctx context.Context, user *models.User, code string) error {
	return s.send(ctx, user.Email, "reset_code", map[string]interface{}{
		"Name":         user.Name,
		"Code":         code,
		"ExpiresIn":    "15 minutes",
		"PlatformName": platformName,
	})
}

func (s *MailService) SendInvitation(ctx context.Context, user *models.User, companyName string) error {
	return s.send(ctx, user.Email, "invitation", map[string]interface{}{
		"CompanyName":  companyName,
		"PlatformName": platformName,
		"ResetURL":     fmt.Sprintf("%s/forgot-password?email=%s", s.baseURL, template.URLQueryEscaper(user.Email)),
	})
}

func (s *MailService) SendNotification(ctx context.Context, to string, notification *models.Notification) error {
	return s.send(ctx, to, "notification", map[string]interface{}{
		"Title":      notification.Title,
		"Text":       notification.Text,
		"CabinetURL": s.baseURL + "/cabinet/notifications",
	})
}

func (s *MailService) send(ctx context.Context, to, templateType string, data interface{}) error {
	tpl, ok := emailTemplates[templateType]
	if !ok {
		return fmt.Errorf("unknown email template %q", templateType)
	}

	body, err := renderTemplate(tpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sender.SendEmail(ctx, to, tpl.Subject, body)
}

func renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
