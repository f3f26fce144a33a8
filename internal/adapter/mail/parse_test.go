package mail

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const simpleMessage = "Message-Id: <abc-123@mail.gmail.com>\r\n" +
	"In-Reply-To: <prev-1@das-elb.de>\r\n" +
	"From: Max Mustermann <Max.Mustermann@GMAIL.com>\r\n" +
	"To: info@das-elb.de\r\n" +
	"Date: Mon, 11 Aug 2025 10:30:00 +0200\r\n" +
	"Subject: Zimmeranfrage August\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"Guten Tag,\r\nich möchte eine Suite buchen.\r\n"

func TestParseMessage_TextoSimples(t *testing.T) {
	msg, err := parseMessage(strings.NewReader(simpleMessage))
	require.NoError(t, err)

	assert.Equal(t, "<abc-123@mail.gmail.com>", msg.MessageID)
	assert.Equal(t, "<prev-1@das-elb.de>", msg.InReplyTo)
	assert.Equal(t, "max.mustermann@gmail.com", msg.FromEmail)
	assert.Equal(t, "Max Mustermann", msg.FromName)
	assert.Equal(t, "info@das-elb.de", msg.ToEmail)
	assert.Equal(t, "Zimmeranfrage August", msg.Subject)
	assert.Contains(t, msg.Body, "Suite buchen")
	require.NotNil(t, msg.Date)
	assert.Equal(t, 2025, msg.Date.Year())
}

func TestParseMessage_AssuntoRFC2047(t *testing.T) {
	raw := "From: gast@example.de\r\n" +
		"Subject: =?utf-8?q?Buchungsbest=C3=A4tigung_f=C3=BCr_M=C3=A4rz?=\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"Hallo\r\n"

	msg, err := parseMessage(strings.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "Buchungsbestätigung für März", msg.Subject)
}

func TestParseMessage_MultipartPreferePlainText(t *testing.T) {
	raw := "From: gast@example.de\r\n" +
		"Subject: Anfrage\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: multipart/alternative; boundary=\"b1\"\r\n" +
		"\r\n" +
		"--b1\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<html><body><b>HTML Version</b></body></html>\r\n" +
		"--b1\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"Plain-Text Version\r\n" +
		"--b1--\r\n"

	msg, err := parseMessage(strings.NewReader(raw))
	require.NoError(t, err)
	assert.Contains(t, msg.Body, "Plain-Text Version")
	assert.NotContains(t, msg.Body, "<html>")
}

func TestSplitRawAddress(t *testing.T) {
	email, name := splitRawAddress(`"Hotel Partner" <partner@example.com>`)
	assert.Equal(t, "partner@example.com", email)
	assert.Equal(t, "Hotel Partner", name)

	email, name = splitRawAddress("plain@example.com")
	assert.Equal(t, "plain@example.com", email)
	assert.Empty(t, name)

	email, name = splitRawAddress("")
	assert.Empty(t, email)
	assert.Empty(t, name)
}
