// Package notify delivers best-effort messages (booking confirmations,
// cancellations, wallet movements) to account holders. Delivery happens
// after the domain operation has committed and never affects its outcome.
package notify

import (
	"context"

	"github.com/google/uuid"
)

// Attachment is an optional file sent with a message, e.g. a confirmation code.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// Message is a fully addressed notification.
type Message struct {
	To         string      `json:"to"`
	ToName     string      `json:"to_name,omitempty"`
	Subject    string      `json:"subject"`
	Body       string      `json:"body"`
	Attachment *Attachment `json:"attachment,omitempty"`
}

// Notice is a message whose recipient is still an account id.
type Notice struct {
	Subject    string
	Body       string
	Attachment *Attachment
}

// Sender delivers a message over one channel.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Discard drops every notice.
type Discard struct{}

func (Discard) NotifyAccount(ctx context.Context, accountID uuid.UUID, n Notice) {}
