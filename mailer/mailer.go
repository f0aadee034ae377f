// ABOUTME: SMTP delivery of follow-up email drafts via go-mail
// ABOUTME: Console fallback prints the draft when no relay is configured
package mailer

import (
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/harperreed/visitlog/models"
)

// Mailer sends a follow-up draft to a client contact.
type Mailer interface {
	SendFollowUp(toEmail, toName, subject, body string) error
}

// Config holds the SMTP relay parameters.
type Config struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
}

// ConfigFromSettings lifts the relay parameters out of the application
// settings.
func ConfigFromSettings(s models.Settings) Config {
	return Config{
		SMTPHost:     s.SMTPHost,
		SMTPPort:     s.SMTPPort,
		SMTPUsername: s.SMTPUsername,
		SMTPPassword: s.SMTPPassword,
		FromEmail:    s.FromEmail,
		FromName:     s.FromName,
	}
}

// ForSettings returns an SMTP mailer when a relay host is configured,
// otherwise a console mailer that prints the draft for manual sending.
func ForSettings(s models.Settings) Mailer {
	if s.SMTPHost == "" {
		return NewConsoleMailer()
	}
	return NewSMTPMailer(ConfigFromSettings(s))
}

// SMTPMailer delivers follow-ups through an SMTP relay.
type SMTPMailer struct {
	config   Config
	testMode bool
}

// NewSMTPMailer creates a new SMTP mailer.
func NewSMTPMailer(config Config) *SMTPMailer {
	return &SMTPMailer{config: config}
}

// NewTestSMTPMailer creates an SMTP mailer in test mode. It builds the
// message but never dials the relay.
func NewTestSMTPMailer(config Config) *SMTPMailer {
	return &SMTPMailer{config: config, testMode: true}
}

// BuildMessage assembles the follow-up message without sending it.
func (m *SMTPMailer) BuildMessage(toEmail, toName, subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg(mail.WithNoDefaultUserAgent())

	if err := msg.FromFormat(m.config.FromName, m.config.FromEmail); err != nil {
		return nil, fmt.Errorf("failed to set email from address: %w", err)
	}
	if toName != "" {
		if err := msg.AddToFormat(toName, toEmail); err != nil {
			return nil, fmt.Errorf("failed to set email recipient: %w", err)
		}
	} else if err := msg.To(toEmail); err != nil {
		return nil, fmt.Errorf("failed to set email recipient: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	return msg, nil
}

// SendFollowUp sends the draft through the configured relay.
func (m *SMTPMailer) SendFollowUp(toEmail, toName, subject, body string) error {
	msg, err := m.BuildMessage(toEmail, toName, subject, body)
	if err != nil {
		return err
	}

	if m.testMode {
		return nil
	}

	client, err := m.createSMTPClient()
	if err != nil {
		return err
	}
	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send follow-up email: %w", err)
	}
	return nil
}

func (m *SMTPMailer) createSMTPClient() (*mail.Client, error) {
	clientOptions := []mail.Option{
		mail.WithPort(m.config.SMTPPort),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(10 * time.Second),
	}

	// Unauthenticated relays (local postfix, port 25) stay supported.
	if m.config.SMTPUsername != "" && m.config.SMTPPassword != "" {
		clientOptions = append(clientOptions,
			mail.WithUsername(m.config.SMTPUsername),
			mail.WithPassword(m.config.SMTPPassword),
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
		)
	}

	client, err := mail.NewClient(m.config.SMTPHost, clientOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}
	return client, nil
}

// ConsoleMailer prints the draft to stdout so it can be copied into any
// mail client by hand.
type ConsoleMailer struct{}

// NewConsoleMailer creates a new console mailer.
func NewConsoleMailer() *ConsoleMailer {
	return &ConsoleMailer{}
}

// SendFollowUp prints the draft instead of sending it.
func (m *ConsoleMailer) SendFollowUp(toEmail, toName, subject, body string) error {
	fmt.Println(strings.Repeat("=", 62))
	fmt.Println("                    FOLLOW-UP EMAIL DRAFT")
	fmt.Println(strings.Repeat("=", 62))
	if toName != "" {
		fmt.Printf("To: %s <%s>\n", toName, toEmail)
	} else {
		fmt.Printf("To: %s\n", toEmail)
	}
	fmt.Printf("Subject: %s\n\n", subject)
	fmt.Println(body)
	fmt.Println(strings.Repeat("=", 62))
	return nil
}
