// ABOUTME: Tests for follow-up mail construction and mailer selection
// ABOUTME: Renders messages to a buffer instead of dialing a relay
package mailer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/visitlog/models"
)

func testConfig() Config {
	return Config{
		SMTPHost:  "smtp.example.com",
		SMTPPort:  587,
		FromEmail: "crm@example.com",
		FromName:  "Visit Log",
	}
}

func TestBuildMessage(t *testing.T) {
	m := NewTestSMTPMailer(testConfig())

	msg, err := m.BuildMessage("dana@globex.com", "Dana", "Following up on Tuesday", "Hi Dana,\n\nGreat talking with you.")
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)

	rendered := buf.String()
	assert.Contains(t, rendered, "dana@globex.com")
	assert.Contains(t, rendered, `"Visit Log" <crm@example.com>`)
	assert.Contains(t, rendered, "Subject: Following up on Tuesday")
	assert.Contains(t, rendered, "Great talking with you.")
}

func TestBuildMessageWithoutRecipientName(t *testing.T) {
	m := NewTestSMTPMailer(testConfig())

	msg, err := m.BuildMessage("dana@globex.com", "", "Hello", "body")
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "To: <dana@globex.com>")
}

func TestBuildMessageBadAddress(t *testing.T) {
	cfg := testConfig()
	cfg.FromEmail = "not an address"
	m := NewTestSMTPMailer(cfg)

	_, err := m.BuildMessage("dana@globex.com", "Dana", "Hello", "body")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "from address")
}

func TestSendFollowUpTestMode(t *testing.T) {
	m := NewTestSMTPMailer(testConfig())
	require.NoError(t, m.SendFollowUp("dana@globex.com", "Dana", "Hello", "body"))
}

func TestForSettings(t *testing.T) {
	smtp := ForSettings(models.Settings{SMTPHost: "smtp.example.com", SMTPPort: 587})
	assert.IsType(t, &SMTPMailer{}, smtp)

	console := ForSettings(models.Settings{})
	assert.IsType(t, &ConsoleMailer{}, console)
}

func TestConsoleMailer(t *testing.T) {
	m := NewConsoleMailer()
	require.NoError(t, m.SendFollowUp("dana@globex.com", "Dana", "Hello", "body"))
}
