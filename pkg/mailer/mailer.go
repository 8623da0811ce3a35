// Package mailer delivers transactional mail such as password reset links.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"regexp"
	"time"

	"github.com/emersion/go-message/mail"
)

type Message struct {
	To      string
	From    string
	Subject string
	Text    string
}

// Sender delivers a message. Returned errors mean the message was not sent.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Compose renders msg as an RFC 5322 plain text message.
func Compose(msg Message, now time.Time) ([]byte, error) {
	from, err := mail.ParseAddress(msg.From)
	if err != nil {
		return nil, fmt.Errorf("parse from address: %w", err)
	}
	to, err := mail.ParseAddress(msg.To)
	if err != nil {
		return nil, fmt.Errorf("parse to address: %w", err)
	}

	var h mail.Header
	h.SetDate(now)
	h.SetAddressList("From", []*mail.Address{from})
	h.SetAddressList("To", []*mail.Address{to})
	h.SetSubject(msg.Subject)
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	if err := h.GenerateMessageID(); err != nil {
		return nil, fmt.Errorf("generate message id: %w", err)
	}

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("create writer: %w", err)
	}
	if _, err := w.Write([]byte(msg.Text)); err != nil {
		return nil, fmt.Errorf("write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close writer: %w", err)
	}
	return buf.Bytes(), nil
}

// secretPattern matches the long hex tokens embedded in reset links.
var secretPattern = regexp.MustCompile(`[0-9A-Fa-f]{32,}`)

// LogSender writes messages to the log instead of delivering them. Used when
// no mail account is configured. Tokens in the body are masked unless
// ShowSecrets is set.
type LogSender struct {
	ShowSecrets bool
}

func (s LogSender) Send(_ context.Context, msg Message) error {
	body := msg.Text
	if !s.ShowSecrets {
		body = redactSecrets(body)
	}
	log.Printf("[Mailer] Mail delivery disabled, would send %q to %s:\n%s", msg.Subject, msg.To, body)
	return nil
}

func redactSecrets(text string) string {
	return secretPattern.ReplaceAllStringFunc(text, func(tok string) string {
		return tok[:4] + "...[redacted]"
	})
}
