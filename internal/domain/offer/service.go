package offer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/bookyourstay/stay-api/internal/pkg/clock"
	"github.com/bookyourstay/stay-api/internal/pkg/keylock"
	"github.com/bookyourstay/stay-api/internal/pkg/validator"
)

const codeAttempts = 5

// Service is the offer registry
type Service struct {
	repo  *Repository
	clock clock.Clock
	locks *keylock.Locker
}

func NewService(repo *Repository, clk clock.Clock) *Service {
	if repo == nil || clk == nil {
		panic("offer: nil dependency")
	}
	return &Service{repo: repo, clock: clk, locks: keylock.New()}
}

// Create registers a new offer with a fresh promo code
func (s *Service) Create(ctx context.Context, createdBy uuid.UUID, req *CreateOfferRequest) (*Offer, error) {
	kind := Kind(req.Kind)
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}
	if req.Value <= 0 || (kind == KindPercentage && req.Value > 100) {
		return nil, ErrInvalidValue
	}
	startsOn, err := validator.ParseDate(req.StartsOn)
	if err != nil {
		return nil, ErrInvalidWindow.Withf("invalid starts_on %q", req.StartsOn)
	}
	endsOn, err := validator.ParseDate(req.EndsOn)
	if err != nil {
		return nil, ErrInvalidWindow.Withf("invalid ends_on %q", req.EndsOn)
	}
	if endsOn.Before(startsOn) {
		return nil, ErrInvalidWindow
	}
	today := clock.Today(s.clock)
	if startsOn.Before(today) {
		return nil, ErrStartInPast
	}
	if req.MaxUses < 0 {
		return nil, ErrInvalidMaxUses
	}
	listingIDs, err := parseListingIDs(req.ListingIDs)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	o := &Offer{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Kind:        kind,
		Value:       req.Value,
		StartsOn:    startsOn,
		EndsOn:      endsOn,
		ListingIDs:  listingIDs,
		MaxUses:     req.MaxUses,
		Status:      StatusScheduled,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	o.refresh(today, now)

	if err := s.assignCode(ctx, o); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, o); err != nil {
		_ = s.repo.ReleaseCode(ctx, o.PromoCode)
		return nil, err
	}

	log.Info().Str("offer_id", o.ID.String()).Str("promo_code", o.PromoCode).Str("status", string(o.Status)).Msg("offer created")
	return o, nil
}

func (s *Service) assignCode(ctx context.Context, o *Offer) error {
	for i := 0; i < codeAttempts; i++ {
		code, err := promoCode(o.Name)
		if err != nil {
			return fmt.Errorf("generate promo code: %w", err)
		}
		ok, err := s.repo.ClaimCode(ctx, code, o.ID)
		if err != nil {
			return fmt.Errorf("claim promo code: %w", err)
		}
		if ok {
			o.PromoCode = code
			return nil
		}
	}
	return fmt.Errorf("no free promo code for %q after %d attempts", o.Name, codeAttempts)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Offer, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByCode(ctx context.Context, code string) (*Offer, error) {
	return s.repo.GetByCode(ctx, code)
}

// List returns offers ordered by creation time
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Offer, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]*Offer, 0, len(all))
	for _, o := range all {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.ListingID != uuid.Nil && !o.AppliesTo(filter.ListingID) {
			continue
		}
		result = append(result, o)
	}
	sortByCreation(result)
	return result, nil
}

// Update changes the editable fields of an offer
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *UpdateOfferRequest) (*Offer, error) {
	unlock := s.locks.Lock(id.String())
	defer unlock()

	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Description != nil {
		o.Description = *req.Description
	}
	if req.EndsOn != nil {
		endsOn, err := validator.ParseDate(*req.EndsOn)
		if err != nil || endsOn.Before(o.StartsOn) {
			return nil, ErrInvalidWindow
		}
		o.EndsOn = endsOn
	}
	if req.ListingIDs != nil {
		ids, err := parseListingIDs(req.ListingIDs)
		if err != nil {
			return nil, err
		}
		o.ListingIDs = ids
	}
	if req.MaxUses != nil {
		if *req.MaxUses < 0 || (*req.MaxUses > 0 && *req.MaxUses < o.UseCount) {
			return nil, ErrInvalidMaxUses
		}
		o.MaxUses = *req.MaxUses
		if o.Status == StatusExhausted && o.HasUsesLeft() {
			o.Status = StatusScheduled
		}
	}
	o.UpdatedAt = s.clock.Now()
	o.refresh(clock.Today(s.clock), o.UpdatedAt)

	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// SetStatus pauses an active offer or resumes a paused one
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status Status) (*Offer, error) {
	unlock := s.locks.Lock(id.String())
	defer unlock()

	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	o.refresh(clock.Date(now), now)

	switch {
	case status == StatusPaused && o.Status == StatusActive:
	case status == StatusActive && o.Status == StatusPaused:
	case status == o.Status:
		return o, nil
	default:
		return nil, ErrInvalidStatusChange.Withf("cannot move offer from %s to %s", o.Status, status)
	}
	o.Status = status
	o.UpdatedAt = now

	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	log.Info().Str("offer_id", id.String()).Str("status", string(status)).Msg("offer status changed")
	return o, nil
}

// IsVigente reports whether the offer can be applied today.
func (s *Service) IsVigente(o *Offer) bool {
	return o.IsVigente(clock.Today(s.clock))
}

// usable loads the offer and checks it can be redeemed for listingID today.
// Callers hold the offer's lock.
func (s *Service) usable(ctx context.Context, id, listingID uuid.UUID) (*Offer, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	o.refresh(clock.Date(now), now)

	if o.Status == StatusExhausted || !o.HasUsesLeft() {
		return nil, ErrOfferExhausted
	}
	if !o.IsVigente(clock.Date(now)) {
		return nil, ErrOfferNotVigente
	}
	if listingID != uuid.Nil && !o.AppliesTo(listingID) {
		return nil, ErrOfferNotApplicable
	}
	return o, nil
}

// RecordUse counts one redemption of a vigente offer
func (s *Service) RecordUse(ctx context.Context, id uuid.UUID) (*Offer, error) {
	unlock := s.locks.Lock(id.String())
	defer unlock()

	o, err := s.usable(ctx, id, uuid.Nil)
	if err != nil {
		return nil, err
	}
	o.recordUse(s.clock.Now())
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// Apply discounts price with the offer and records one use. On error the
// price is unchanged and no use is recorded.
func (s *Service) Apply(ctx context.Context, id, listingID uuid.UUID, price int64) (int64, *Offer, error) {
	if price <= 0 {
		return price, nil, ErrInvalidPrice
	}

	unlock := s.locks.Lock(id.String())
	defer unlock()

	o, err := s.usable(ctx, id, listingID)
	if err != nil {
		return price, nil, err
	}
	final := price - o.Discount(price)
	o.recordUse(s.clock.Now())
	if err := s.repo.Update(ctx, o); err != nil {
		return price, nil, err
	}

	log.Info().Str("offer_id", id.String()).Int64("price", price).Int64("final_price", final).Int("use_count", o.UseCount).Msg("offer applied")
	return final, o, nil
}

// Redeem runs fn under the offer's lock and records the use only if fn
// succeeds. fn is not called when the offer cannot be used.
func (s *Service) Redeem(ctx context.Context, id, listingID uuid.UUID, fn func() error) error {
	unlock := s.locks.Lock(id.String())
	defer unlock()

	o, err := s.usable(ctx, id, listingID)
	if err != nil {
		return err
	}
	if err := fn(); err != nil {
		return err
	}
	o.recordUse(s.clock.Now())
	if err := s.repo.Update(ctx, o); err != nil {
		return fmt.Errorf("record offer use: %w", err)
	}
	return nil
}

// Best returns the vigente offer giving the largest discount on price for a
// listing, or nil. Ties go to the earliest created offer.
func (s *Service) Best(ctx context.Context, listingID uuid.UUID, price int64) (*Offer, int64, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, 0, err
	}
	sortByCreation(all)

	now := s.clock.Now()
	today := clock.Date(now)
	var best *Offer
	var bestDiscount int64
	for _, o := range all {
		// the stored status may lag the calendar until the next Refresh
		o.refresh(today, now)
		if !o.IsVigente(today) || !o.AppliesTo(listingID) {
			continue
		}
		if d := o.Discount(price); best == nil || d > bestDiscount {
			best, bestDiscount = o, d
		}
	}
	return best, bestDiscount, nil
}

// Refresh advances every offer's status for today and returns how many changed.
func (s *Service) Refresh(ctx context.Context) (int, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, o := range all {
		ok, err := s.refreshOne(ctx, o.ID)
		if err != nil {
			return changed, err
		}
		if ok {
			changed++
		}
	}
	return changed, nil
}

func (s *Service) refreshOne(ctx context.Context, id uuid.UUID) (bool, error) {
	unlock := s.locks.Lock(id.String())
	defer unlock()

	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	now := s.clock.Now()
	if !o.refresh(clock.Date(now), now) {
		return false, nil
	}
	if err := s.repo.Update(ctx, o); err != nil {
		return false, err
	}
	log.Info().Str("offer_id", id.String()).Str("status", string(o.Status)).Msg("offer status refreshed")
	return true, nil
}

func parseListingIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(r)
		if err != nil {
			return nil, ErrInvalidListingID.Withf("invalid listing id %q", r)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func sortByCreation(offers []*Offer) {
	sort.SliceStable(offers, func(i, j int) bool {
		if !offers[i].CreatedAt.Equal(offers[j].CreatedAt) {
			return offers[i].CreatedAt.Before(offers[j].CreatedAt)
		}
		return offers[i].ID.String() < offers[j].ID.String()
	})
}
