// Package reservation books listings: it checks the calendar, prices the
// stay, charges the guest's wallet and drives the reservation lifecycle.
package reservation

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/bookyourstay/stay-api/internal/domain/listing"
	"github.com/bookyourstay/stay-api/internal/domain/offer"
	"github.com/bookyourstay/stay-api/internal/domain/pricing"
	"github.com/bookyourstay/stay-api/internal/domain/wallet"
	"github.com/bookyourstay/stay-api/internal/pkg/clock"
	"github.com/bookyourstay/stay-api/internal/pkg/keylock"
	"github.com/bookyourstay/stay-api/internal/pkg/notify"
)

type Listings interface {
	Get(ctx context.Context, id uuid.UUID) (*listing.Listing, error)
}

type Accounts interface {
	IsActive(ctx context.Context, id uuid.UUID) (bool, error)
}

type Pricer interface {
	Quote(ctx context.Context, l *listing.Listing, start, end time.Time, guests int) (*pricing.Quote, error)
}

type Offers interface {
	Redeem(ctx context.Context, id, listingID uuid.UUID, fn func() error) error
}

type Wallets interface {
	GetByOwner(ctx context.Context, ownerID uuid.UUID) (*wallet.Wallet, error)
	Debit(ctx context.Context, walletID uuid.UUID, amount int64, reason, correlationID string) (bool, error)
	Refund(ctx context.Context, walletID uuid.UUID, amount int64, reason, correlationID string) (*wallet.Transaction, error)
}

type Notifier interface {
	NotifyAccount(ctx context.Context, accountID uuid.UUID, n notify.Notice)
}

// Config holds the cancellation policy.
type Config struct {
	RefundPercent    int64
	FullRefundNotice time.Duration
	CancelCutoff     time.Duration
}

func DefaultConfig() Config {
	return Config{RefundPercent: 80, FullRefundNotice: 7 * 24 * time.Hour, CancelCutoff: 48 * time.Hour}
}

// Deps groups the collaborators of the service.
type Deps struct {
	Repo     *Repository
	Checker  *Checker
	Listings Listings
	Accounts Accounts
	Pricer   Pricer
	Offers   Offers
	Wallets  Wallets
	Notifier Notifier
	Clock    clock.Clock
	// Locks serializes work per listing ID. Share the listing service's
	// locks so deletes and bookings of one listing never interleave.
	Locks *keylock.Locker
}

type Service struct {
	repo     *Repository
	checker  *Checker
	listings Listings
	accounts Accounts
	pricer   Pricer
	offers   Offers
	wallets  Wallets
	notifier Notifier
	clock    clock.Clock
	locks    *keylock.Locker
	cfg      Config
}

func NewService(d Deps, cfg Config) *Service {
	if d.Repo == nil || d.Checker == nil || d.Listings == nil || d.Accounts == nil ||
		d.Pricer == nil || d.Offers == nil || d.Wallets == nil || d.Notifier == nil || d.Clock == nil {
		panic("reservation: nil dependency")
	}
	def := DefaultConfig()
	if cfg.RefundPercent < 0 || cfg.RefundPercent > 100 {
		cfg.RefundPercent = def.RefundPercent
	}
	if cfg.FullRefundNotice <= 0 {
		cfg.FullRefundNotice = def.FullRefundNotice
	}
	if cfg.CancelCutoff <= 0 {
		cfg.CancelCutoff = def.CancelCutoff
	}
	if d.Locks == nil {
		d.Locks = keylock.New()
	}
	return &Service{
		repo:     d.Repo,
		checker:  d.Checker,
		listings: d.Listings,
		accounts: d.Accounts,
		pricer:   d.Pricer,
		offers:   d.Offers,
		wallets:  d.Wallets,
		notifier: d.Notifier,
		clock:    d.Clock,
		locks:    d.Locks,
		cfg:      cfg,
	}
}

// Create books a stay for guestID. All checks run before any mutation; the
// offer redemption and the wallet debit succeed or fail together.
func (s *Service) Create(ctx context.Context, guestID uuid.UUID, in CreateInput) (*Reservation, error) {
	start, end := clock.Date(in.Start), clock.Date(in.End)
	if clock.DaysBetween(start, end) <= 0 {
		return nil, pricing.ErrInvalidDates
	}
	if start.Before(clock.Today(s.clock)) {
		return nil, ErrStartInPast
	}

	active, err := s.accounts.IsActive(ctx, guestID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, ErrAccountInactive
	}

	w, err := s.wallets.GetByOwner(ctx, guestID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(in.ListingID.String())
	defer unlock()

	// read under the lock: a concurrent delete or close has either finished
	// or waits for this booking
	l, err := s.listings.Get(ctx, in.ListingID)
	if err != nil {
		return nil, err
	}
	if !l.Available {
		return nil, ErrListingClosed
	}
	if !l.Accommodates(in.Guests) {
		return nil, pricing.ErrCapacityExceeded
	}

	free, err := s.checker.IsAvailable(ctx, l.ID, start, end)
	if err != nil {
		return nil, err
	}
	if !free {
		return nil, ErrListingUnavailable
	}

	r := &Reservation{
		ID:        uuid.New(),
		GuestID:   guestID,
		ListingID: l.ID,
		Start:     start,
		End:       end,
		Guests:    in.Guests,
		Status:    StatusPending,
		Notes:     in.Notes,
	}
	r.PaymentCorrelationID = r.ID.String()

	q, err := s.charge(ctx, l, w.ID, r)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	r.applyQuote(q)
	r.CreatedAt = now
	if err := r.transition(StatusConfirmed, now); err != nil {
		return nil, err
	}

	if err := s.persist(ctx, r); err != nil {
		s.compensate(ctx, w.ID, r, err)
		return nil, err
	}

	log.Info().
		Str("reservation_id", r.ID.String()).
		Str("listing_id", l.ID.String()).
		Str("guest_id", guestID.String()).
		Int64("total", r.Total).
		Msg("reservation confirmed")

	inv := NewInvoice(r, l.Name)
	s.notifier.NotifyAccount(ctx, guestID, notify.Notice{
		Subject: "Reserva confirmada " + r.ConfirmationCode,
		Body: fmt.Sprintf("Tu reserva en %s del %s al %s está confirmada. Total pagado: $%d. Adjuntamos la factura %s.",
			l.Name, r.Start.Format(clock.DateLayout), r.End.Format(clock.DateLayout), r.Total, inv.Number),
		Attachment: inv.Attachment(),
	})
	return r, nil
}

// charge prices the stay and takes the payment. When the quoted offer stops
// being usable before it can be redeemed the stay is priced again without it.
func (s *Service) charge(ctx context.Context, l *listing.Listing, walletID uuid.UUID, r *Reservation) (*pricing.Quote, error) {
	for attempt := 0; ; attempt++ {
		q, err := s.pricer.Quote(ctx, l, r.Start, r.End, r.Guests)
		if err != nil {
			return nil, err
		}

		debit := func() error {
			ok, err := s.wallets.Debit(ctx, walletID, q.Total, "reservation "+r.ID.String(), r.PaymentCorrelationID)
			if err != nil {
				return err
			}
			if !ok {
				return ErrInsufficientFunds
			}
			return nil
		}

		if q.OfferID == nil {
			return q, debit()
		}

		paid := false
		err = s.offers.Redeem(ctx, *q.OfferID, l.ID, func() error {
			if err := debit(); err != nil {
				return err
			}
			paid = true
			return nil
		})
		switch {
		case err == nil:
			return q, nil
		case paid:
			// the offer use could not be recorded after the debit
			s.compensate(ctx, walletID, &Reservation{ID: r.ID, Total: q.Total, PaymentCorrelationID: r.PaymentCorrelationID}, err)
			return nil, err
		case attempt == 0 && isOfferGone(err):
			log.Debug().Str("offer_id", q.OfferID.String()).Err(err).Msg("quoted offer no longer usable, repricing")
			continue
		default:
			return nil, err
		}
	}
}

func isOfferGone(err error) bool {
	return errors.Is(err, offer.ErrOfferExhausted) ||
		errors.Is(err, offer.ErrOfferNotVigente) ||
		errors.Is(err, offer.ErrOfferNotApplicable) ||
		errors.Is(err, offer.ErrOfferNotFound)
}

// persist claims a confirmation code and stores the reservation.
func (s *Service) persist(ctx context.Context, r *Reservation) error {
	for i := 0; i < 5; i++ {
		code, err := confirmationCode()
		if err != nil {
			return err
		}
		ok, err := s.repo.ClaimCode(ctx, code, r.ID)
		if err != nil {
			return err
		}
		if ok {
			r.ConfirmationCode = code
			return s.repo.Create(ctx, r)
		}
	}
	return fmt.Errorf("reservation %s: could not allocate a confirmation code", r.ID)
}

// compensate returns a payment whose reservation could not be stored.
func (s *Service) compensate(ctx context.Context, walletID uuid.UUID, r *Reservation, cause error) {
	if _, err := s.wallets.Refund(ctx, walletID, r.Total, "reversal "+r.ID.String(), r.PaymentCorrelationID); err != nil {
		log.Error().Err(err).AnErr("cause", cause).
			Str("reservation_id", r.ID.String()).
			Str("wallet_id", walletID.String()).
			Int64("amount", r.Total).
			Msg("failed to reverse reservation payment")
		return
	}
	log.Warn().Err(cause).Str("reservation_id", r.ID.String()).Msg("reservation payment reversed")
}

// RefundFor returns the refund owed when r is cancelled at now, or
// ErrTooLateToCancel inside the cutoff.
func (s *Service) RefundFor(r *Reservation, now time.Time) (int64, error) {
	lead := r.Start.Sub(now)
	switch {
	case lead < s.cfg.CancelCutoff:
		return 0, ErrTooLateToCancel
	case lead >= s.cfg.FullRefundNotice:
		return r.Total * s.cfg.RefundPercent / 100, nil
	default:
		return 0, nil
	}
}

// Cancel cancels a pending or confirmed reservation and refunds the guest
// according to the lead time before check-in.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, reason string) (*Reservation, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(r.ListingID.String())
	defer unlock()

	if r, err = s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if !CanTransition(r.Status, StatusCancelled) {
		return nil, ErrInvalidStateTransition.Withf("cannot move reservation from %s to %s", r.Status, StatusCancelled)
	}

	now := s.clock.Now()
	refund, err := s.RefundFor(r, now)
	if err != nil {
		return nil, err
	}

	var walletID uuid.UUID
	if refund > 0 {
		w, err := s.wallets.GetByOwner(ctx, r.GuestID)
		if err != nil {
			return nil, err
		}
		walletID = w.ID
	}

	prev := *r
	if err := r.transition(StatusCancelled, now); err != nil {
		return nil, err
	}
	r.RefundedAmount = refund
	if reason != "" {
		r.appendNote("Cancelada: " + reason)
	} else {
		r.appendNote("Cancelada")
	}
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}

	if refund > 0 {
		if _, err := s.wallets.Refund(ctx, walletID, refund, "cancellation "+r.ID.String(), r.PaymentCorrelationID); err != nil {
			if rerr := s.repo.Update(ctx, &prev); rerr != nil {
				log.Error().Err(rerr).Str("reservation_id", r.ID.String()).Msg("failed to restore reservation after refund error")
			}
			return nil, err
		}
	}

	log.Info().
		Str("reservation_id", r.ID.String()).
		Int64("refund", refund).
		Msg("reservation cancelled")

	body := "Tu reserva " + r.ConfirmationCode + " fue cancelada."
	if refund > 0 {
		body += fmt.Sprintf(" Reembolsamos $%d a tu billetera.", refund)
	} else {
		body += " Esta cancelación no genera reembolso."
	}
	s.notifier.NotifyAccount(ctx, r.GuestID, notify.Notice{Subject: "Reserva cancelada", Body: body})
	return r, nil
}

// Complete marks a confirmed stay as concluded. The check-out day must have
// been reached; until then the nights stay held.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(r.ListingID.String())
	defer unlock()

	if r, err = s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if !CanTransition(r.Status, StatusCompleted) {
		return nil, ErrInvalidStateTransition.Withf("cannot move reservation from %s to %s", r.Status, StatusCompleted)
	}
	if today := clock.Today(s.clock); r.End.After(today) {
		return nil, ErrStayNotEnded.Withf("stay checks out on %s", r.End.Format(clock.DateLayout))
	}
	if err := r.transition(StatusCompleted, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	log.Info().Str("reservation_id", r.ID.String()).Msg("reservation completed")
	return r, nil
}

// CompleteEnded completes every confirmed reservation whose check-out day
// has been reached.
func (s *Service) CompleteEnded(ctx context.Context) (int, error) {
	today := clock.Today(s.clock)
	ended, err := s.repo.List(ctx, func(r *Reservation) bool {
		return r.Status == StatusConfirmed && !r.End.After(today)
	})
	if err != nil {
		return 0, err
	}
	n := 0
	for _, r := range ended {
		if _, err := s.Complete(ctx, r.ID); err != nil {
			if errors.Is(err, ErrInvalidStateTransition) {
				continue
			}
			return n, err
		}
		n++
	}
	return n, nil
}

// Invoice builds the invoice of a reservation. Its status follows the
// reservation, so a cancelled stay yields a cancelled invoice.
func (s *Service) Invoice(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	name := ""
	l, err := s.listings.Get(ctx, r.ListingID)
	switch {
	case err == nil:
		name = l.Name
	case !errors.Is(err, listing.ErrListingNotFound):
		return nil, err
	}
	return NewInvoice(r, name), nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByCode(ctx context.Context, code string) (*Reservation, error) {
	return s.repo.GetByCode(ctx, code)
}

func (s *Service) ListByGuest(ctx context.Context, guestID uuid.UUID) ([]*Reservation, error) {
	return s.repo.ListByGuest(ctx, guestID)
}

func (s *Service) ListByListing(ctx context.Context, listingID uuid.UUID) ([]*Reservation, error) {
	return s.repo.ListByListing(ctx, listingID)
}

// All returns every reservation.
func (s *Service) All(ctx context.Context) ([]*Reservation, error) {
	return s.repo.List(ctx, nil)
}

var codeEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// confirmationCode returns a code like BYS-K3F9QZ2A.
func confirmationCode() (string, error) {
	b := make([]byte, 5)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate confirmation code: %w", err)
	}
	return "BYS-" + codeEncoding.EncodeToString(b), nil
}
