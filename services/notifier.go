package services

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"modernmen-backend/config"
	"modernmen-backend/utils"
)

// Notifier delivers outbound email and SMS.
type Notifier interface {
	SendEmail(ctx context.Context, to, subject, body string) error
	SendSMS(ctx context.Context, to, body string) (string, error)
}

// SMTPMailer sends plain-text mail through an SMTP relay.
type SMTPMailer struct {
	cfg  config.SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail}
}

func (m *SMTPMailer) SendEmail(_ context.Context, to, subject, body string) error {
	if m.cfg.Host == "" {
		return ErrChannelDisabled
	}
	if to == "" {
		return fmt.Errorf("%w: empty recipient", ErrInvalidInput)
	}

	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}
	msg := "From: " + m.cfg.From + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n\r\n" +
		body
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	return m.send(addr, auth, m.cfg.From, []string{to}, []byte(msg))
}

// TwilioSMS sends text messages through the Twilio REST API.
type TwilioSMS struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioSMS(cfg config.TwilioConfig) *TwilioSMS {
	if !cfg.Enabled() {
		return &TwilioSMS{}
	}
	return &TwilioSMS{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		}),
		from: cfg.FromNumber,
	}
}

func (t *TwilioSMS) SendSMS(_ context.Context, to, body string) (string, error) {
	if t.client == nil {
		return "", ErrChannelDisabled
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.from)
	params.SetBody(body)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return "", err
	}
	if resp.Sid == nil {
		return "", nil
	}
	return *resp.Sid, nil
}

// Channels combines the mailer and SMS sender into a Notifier.
type Channels struct {
	Mail *SMTPMailer
	SMS  *TwilioSMS
}

func NewChannels(cfg *config.Config) *Channels {
	return &Channels{Mail: NewSMTPMailer(cfg.SMTP), SMS: NewTwilioSMS(cfg.Twilio)}
}

func (c *Channels) SendEmail(ctx context.Context, to, subject, body string) error {
	return c.Mail.SendEmail(ctx, to, subject, body)
}

func (c *Channels) SendSMS(ctx context.Context, to, body string) (string, error) {
	return c.SMS.SendSMS(ctx, to, body)
}

// notifyEmail sends and logs failures; business flows never fail on email.
func notifyEmail(ctx context.Context, n Notifier, to, subject, body string) bool {
	if n == nil || strings.TrimSpace(to) == "" {
		return false
	}
	if err := n.SendEmail(ctx, to, subject, body); err != nil {
		utils.Log.WithFields(logrus.Fields{"to": to, "subject": subject}).
			WithError(err).Warn("email not sent")
		return false
	}
	return true
}

func notifySMS(ctx context.Context, n Notifier, to, body string) bool {
	if n == nil || strings.TrimSpace(to) == "" {
		return false
	}
	if _, err := n.SendSMS(ctx, to, body); err != nil {
		utils.Log.WithField("to", to).WithError(err).Warn("sms not sent")
		return false
	}
	return true
}
