// internal/services/sms.go
package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/exportplatform/export-api/internal/config"
)

type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

func NewSMSSender(cfg config.SMSConfig) SMSSender {
	if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" || cfg.FromNumber == "" {
		return logSMSSender{}
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})
	return &twilioSender{client: client, from: cfg.FromNumber}
}

type twilioSender struct {
	client *twilio.RestClient
	from   string
}

func (t *twilioSender) SendSMS(_ context.Context, to, body string) error {
	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.from)
	params.SetBody(body)

	if _, err := t.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio: %w", err)
	}
	return nil
}

type logSMSSender struct{}

func (logSMSSender) SendSMS(_ context.Context, to, _ string) error {
	logrus.WithField("to", to).Info("SMS delivery not configured, message logged only")
	return nil
}

func resetCodeSMS(code string) string {
	return fmt.Sprintf("%s: your password reset code is %s. It expires in 15 minutes.", platformName, code)
}
