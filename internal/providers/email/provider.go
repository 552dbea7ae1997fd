package email

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrNoRecipients = errors.New("email_no_recipients")
	ErrEmptySubject = errors.New("email_empty_subject")
)

// Provider delivers a single outbound message.
type Provider interface {
	Name() string
	Send(ctx context.Context, msg Message) (SendResult, error)
}

type Message struct {
	To          []string
	ReplyTo     string
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
}

type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

type SendResult struct {
	Provider  string
	MessageID string
}

// Validate trims recipients and rejects messages that no provider can deliver.
func (m *Message) Validate() error {
	to := make([]string, 0, len(m.To))
	for _, addr := range m.To {
		addr = strings.TrimSpace(addr)
		if addr != "" {
			to = append(to, addr)
		}
	}
	m.To = to
	if len(m.To) == 0 {
		return ErrNoRecipients
	}
	if strings.TrimSpace(m.Subject) == "" {
		return ErrEmptySubject
	}
	return nil
}
