package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const sendTimeout = 15 * time.Second

// Directory resolves an account id into a delivery address.
type Directory interface {
	Recipient(ctx context.Context, accountID uuid.UUID) (address, name string, err error)
}

type job struct {
	accountID uuid.UUID
	msg       Message
}

// Dispatcher queues notifications and delivers them on a background worker.
// A full queue drops the notification.
type Dispatcher struct {
	sender    Sender
	directory Directory
	queue     chan job
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewDispatcher starts the delivery worker.
func NewDispatcher(sender Sender, directory Directory, size int) *Dispatcher {
	if sender == nil || directory == nil {
		panic("notify: nil dependency")
	}
	if size <= 0 {
		size = 100
	}
	d := &Dispatcher{
		sender:    sender,
		directory: directory,
		queue:     make(chan job, size),
	}
	d.wg.Add(1)
	go d.worker()
	return d
}

// Enqueue queues an already addressed message. It reports false when the
// message was dropped.
func (d *Dispatcher) Enqueue(msg Message) bool {
	return d.push(job{msg: msg})
}

// NotifyAccount queues a notice for an account. The address is resolved on
// the worker.
func (d *Dispatcher) NotifyAccount(ctx context.Context, accountID uuid.UUID, n Notice) {
	d.push(job{
		accountID: accountID,
		msg:       Message{Subject: n.Subject, Body: n.Body, Attachment: n.Attachment},
	})
}

func (d *Dispatcher) push(j job) bool {
	select {
	case d.queue <- j:
		return true
	default:
		log.Warn().Str("account_id", j.accountID.String()).Str("subject", j.msg.Subject).Msg("Notification queue full, dropping notification")
		return false
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for j := range d.queue {
		d.deliver(j)
	}
}

func (d *Dispatcher) deliver(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	msg := j.msg
	if j.accountID != uuid.Nil {
		address, name, err := d.directory.Recipient(ctx, j.accountID)
		if err != nil {
			log.Error().Err(err).Str("account_id", j.accountID.String()).Msg("Failed to resolve notification recipient")
			return
		}
		msg.To, msg.ToName = address, name
	}

	if err := d.sender.Send(ctx, msg); err != nil {
		log.Error().Err(err).Str("to", msg.To).Str("subject", msg.Subject).Msg("Failed to send notification")
	}
}

// Close stops accepting work and waits for queued notifications to drain.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
}
