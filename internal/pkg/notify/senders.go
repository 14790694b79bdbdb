package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/bookyourstay/stay-api/internal/pkg/email"
)

// EmailSender sends notifications through SendGrid.
type EmailSender struct {
	client *email.SendGridClient
}

func NewEmailSender(client *email.SendGridClient) *EmailSender {
	return &EmailSender{client: client}
}

func (s *EmailSender) Send(ctx context.Context, msg Message) error {
	html, err := email.RenderNotice(msg.ToName, msg.Subject, msg.Body)
	if err != nil {
		return fmt.Errorf("render notice: %w", err)
	}
	out := &email.EmailMessage{
		To:          msg.To,
		ToName:      msg.ToName,
		Subject:     msg.Subject,
		TextContent: msg.Body,
		HTMLContent: html,
	}
	if msg.Attachment != nil {
		out.Attachments = []email.Attachment{{
			Filename:    msg.Attachment.Filename,
			ContentType: msg.Attachment.ContentType,
			Content:     msg.Attachment.Data,
		}}
	}
	return s.client.Send(ctx, out)
}

// RedisSender appends notifications to a Redis stream so other processes
// (a push gateway, a test harness) can consume them.
type RedisSender struct {
	client *redis.Client
	stream string
	maxLen int64
}

func NewRedisSender(client *redis.Client, stream string) *RedisSender {
	return &RedisSender{client: client, stream: stream, maxLen: 10000}
}

func (s *RedisSender) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	err = s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"to":      msg.To,
			"subject": msg.Subject,
			"payload": payload,
			"sent_at": time.Now().UTC().Format(time.RFC3339Nano),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("append notification to stream %s: %w", s.stream, err)
	}
	return nil
}

// LoggingSender only logs, for development without delivery credentials.
type LoggingSender struct{}

func (LoggingSender) Send(ctx context.Context, msg Message) error {
	log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Bool("attachment", msg.Attachment != nil).
		Msg("notification (log only)")
	return nil
}

// CompositeSender fans a message out to several senders and reports every
// failure.
type CompositeSender struct {
	senders []Sender
}

func NewCompositeSender(senders ...Sender) *CompositeSender {
	cs := &CompositeSender{}
	for _, s := range senders {
		cs.Add(s)
	}
	return cs
}

// Add registers another sender. Nil senders are ignored.
func (cs *CompositeSender) Add(s Sender) {
	if s != nil {
		cs.senders = append(cs.senders, s)
	}
}

func (cs *CompositeSender) Send(ctx context.Context, msg Message) error {
	if len(cs.senders) == 0 {
		return errors.New("no senders configured")
	}
	var errs []error
	for _, s := range cs.senders {
		if err := s.Send(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
