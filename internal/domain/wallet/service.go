package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/bookyourstay/stay-api/internal/pkg/clock"
	"github.com/bookyourstay/stay-api/internal/pkg/keylock"
	"github.com/bookyourstay/stay-api/internal/pkg/notify"
)

// Notifier delivers best-effort messages to an account holder.
type Notifier interface {
	NotifyAccount(ctx context.Context, accountID uuid.UUID, n notify.Notice)
}

type Config struct {
	MaxRecharge int64
}

type Service struct {
	repo     *Repository
	locks    *keylock.Locker
	clock    clock.Clock
	notifier Notifier
	cfg      Config
}

func NewService(repo *Repository, clk clock.Clock, notifier Notifier, cfg Config) *Service {
	if repo == nil || clk == nil || notifier == nil {
		panic("wallet: nil dependency")
	}
	if cfg.MaxRecharge <= 0 {
		cfg.MaxRecharge = 10_000_000
	}
	return &Service{repo: repo, locks: keylock.New(), clock: clk, notifier: notifier, cfg: cfg}
}

// Open creates the wallet of an account.
func (s *Service) Open(ctx context.Context, ownerID uuid.UUID) (*Wallet, error) {
	now := s.clock.Now()
	w := &Wallet{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		Active:       true,
		Transactions: []Transaction{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, w); err != nil {
		return nil, err
	}
	log.Info().Str("wallet_id", w.ID.String()).Str("owner_id", ownerID.String()).Msg("wallet opened")
	return w, nil
}

func (s *Service) Get(ctx context.Context, walletID uuid.UUID) (*Wallet, error) {
	return s.repo.Get(ctx, walletID)
}

func (s *Service) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*Wallet, error) {
	id, err := s.repo.WalletIDForOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) GetBalance(ctx context.Context, walletID uuid.UUID) (int64, error) {
	w, err := s.repo.Get(ctx, walletID)
	if err != nil {
		return 0, err
	}
	return w.Balance, nil
}

// mutate loads the wallet under its lock, applies fn and persists the result.
// Nothing is written when fn returns an error.
func (s *Service) mutate(ctx context.Context, walletID uuid.UUID, fn func(w *Wallet) error) (*Wallet, error) {
	unlock := s.locks.Lock(walletID.String())
	defer unlock()

	w, err := s.repo.Get(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if !w.Active {
		return nil, ErrWalletInactive
	}
	if err := fn(w); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, w); err != nil {
		return nil, fmt.Errorf("persist wallet %s: %w", walletID, err)
	}
	return w, nil
}

// Credit adds funds to a wallet.
func (s *Service) Credit(ctx context.Context, walletID uuid.UUID, amount int64, reason string) (*Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	var entry Transaction
	if _, err := s.mutate(ctx, walletID, func(w *Wallet) error {
		entry = w.appendEntry(Transaction{Type: TransactionTypeCredit, Amount: amount, Reason: reason}, s.clock.Now())
		return nil
	}); err != nil {
		return nil, err
	}
	log.Info().Str("wallet_id", walletID.String()).Int64("amount", amount).Msg("wallet credit applied")
	return &entry, nil
}

// Recharge credits a wallet from an external payment method. A repeated
// referenceID with the same amount is a no-op.
func (s *Service) Recharge(ctx context.Context, walletID uuid.UUID, amount int64, method, referenceID string) (*Wallet, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if amount > s.cfg.MaxRecharge {
		return nil, ErrRechargeLimitExceeded.Withf("recharge of %d exceeds the limit of %d", amount, s.cfg.MaxRecharge)
	}
	if method == "" {
		return nil, ErrPaymentMethodRequired
	}

	replayed := false
	w, err := s.mutate(ctx, walletID, func(w *Wallet) error {
		if prev, ok := w.findReference(TransactionTypeCredit, referenceID); ok {
			if prev.Amount != amount {
				return ErrReferenceConflict
			}
			replayed = true
			return nil
		}
		w.appendEntry(Transaction{
			Type:        TransactionTypeCredit,
			Amount:      amount,
			Reason:      "recharge",
			Method:      method,
			ReferenceID: referenceID,
		}, s.clock.Now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	if replayed {
		return w, nil
	}

	log.Info().Str("wallet_id", walletID.String()).Int64("amount", amount).Str("method", method).Str("reference_id", referenceID).Msg("wallet recharge applied")
	s.notifier.NotifyAccount(ctx, w.OwnerID, notify.Notice{
		Subject: "Recarga exitosa",
		Body:    fmt.Sprintf("Se acreditaron $%d a tu billetera. Saldo actual: $%d.", amount, w.Balance),
	})
	return w, nil
}

// Debit withdraws funds. It reports false, without touching the wallet, when
// the balance is lower than amount.
func (s *Service) Debit(ctx context.Context, walletID uuid.UUID, amount int64, reason, correlationID string) (bool, error) {
	if amount <= 0 {
		return false, ErrInvalidAmount
	}
	_, err := s.mutate(ctx, walletID, func(w *Wallet) error {
		if w.Balance < amount {
			return ErrInsufficientFunds
		}
		w.appendEntry(Transaction{
			Type:          TransactionTypeDebit,
			Amount:        -amount,
			Reason:        reason,
			CorrelationID: correlationID,
		}, s.clock.Now())
		return nil
	})
	if errors.Is(err, ErrInsufficientFunds) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	log.Info().Str("wallet_id", walletID.String()).Int64("amount", amount).Str("correlation_id", correlationID).Msg("wallet payment applied")
	return true, nil
}

// Refund returns funds to a wallet, tagged as a refund.
func (s *Service) Refund(ctx context.Context, walletID uuid.UUID, amount int64, reason, correlationID string) (*Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	var entry Transaction
	if _, err := s.mutate(ctx, walletID, func(w *Wallet) error {
		entry = w.appendEntry(Transaction{
			Type:          TransactionTypeRefund,
			Amount:        amount,
			Reason:        reason,
			CorrelationID: correlationID,
		}, s.clock.Now())
		return nil
	}); err != nil {
		return nil, err
	}
	log.Info().Str("wallet_id", walletID.String()).Int64("amount", amount).Str("correlation_id", correlationID).Msg("wallet refund applied")
	return &entry, nil
}

// Transfer moves amount between two wallets. Both entries share one
// correlation id, and neither wallet changes unless both can.
func (s *Service) Transfer(ctx context.Context, fromID, toID uuid.UUID, amount int64, reason string) (string, error) {
	if amount <= 0 {
		return "", ErrInvalidAmount
	}
	if fromID == toID {
		return "", ErrSelfTransfer
	}

	unlock := s.locks.LockAll(fromID.String(), toID.String())
	defer unlock()

	src, err := s.repo.Get(ctx, fromID)
	if err != nil {
		return "", err
	}
	dst, err := s.repo.Get(ctx, toID)
	if err != nil {
		return "", err
	}
	if !src.Active || !dst.Active {
		return "", ErrWalletInactive
	}
	if src.Balance < amount {
		return "", ErrInsufficientFunds
	}

	before, err := s.repo.Get(ctx, fromID)
	if err != nil {
		return "", err
	}

	correlationID := uuid.New().String()
	now := s.clock.Now()
	src.appendEntry(Transaction{Type: TransactionTypeTransferOut, Amount: -amount, Reason: reason, CorrelationID: correlationID}, now)
	dst.appendEntry(Transaction{Type: TransactionTypeTransferIn, Amount: amount, Reason: reason, CorrelationID: correlationID}, now)

	if err := s.repo.Update(ctx, src); err != nil {
		return "", fmt.Errorf("persist transfer source: %w", err)
	}
	if err := s.repo.Update(ctx, dst); err != nil {
		if rbErr := s.repo.Update(ctx, before); rbErr != nil {
			log.Error().Err(rbErr).Str("wallet_id", fromID.String()).Str("correlation_id", correlationID).Msg("failed to restore transfer source")
		}
		return "", fmt.Errorf("persist transfer target: %w", err)
	}

	log.Info().
		Str("from_wallet_id", fromID.String()).
		Str("to_wallet_id", toID.String()).
		Int64("amount", amount).
		Str("correlation_id", correlationID).
		Msg("wallet transfer applied")

	s.notifier.NotifyAccount(ctx, src.OwnerID, notify.Notice{
		Subject: "Transferencia enviada",
		Body:    fmt.Sprintf("Enviaste $%d. Referencia %s.", amount, correlationID),
	})
	s.notifier.NotifyAccount(ctx, dst.OwnerID, notify.Notice{
		Subject: "Transferencia recibida",
		Body:    fmt.Sprintf("Recibiste $%d. Referencia %s.", amount, correlationID),
	})
	return correlationID, nil
}

// SetActive enables or disables a wallet.
func (s *Service) SetActive(ctx context.Context, walletID uuid.UUID, active bool) (*Wallet, error) {
	unlock := s.locks.Lock(walletID.String())
	defer unlock()

	w, err := s.repo.Get(ctx, walletID)
	if err != nil {
		return nil, err
	}
	w.Active = active
	w.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, w); err != nil {
		return nil, err
	}
	log.Info().Str("wallet_id", walletID.String()).Bool("active", active).Msg("wallet status changed")
	return w, nil
}

// ListTransactions returns a page of the log, newest first, and the total
// number of matching entries.
func (s *Service) ListTransactions(ctx context.Context, walletID uuid.UUID, filter TransactionFilter) ([]Transaction, int, error) {
	w, err := s.repo.Get(ctx, walletID)
	if err != nil {
		return nil, 0, err
	}

	matched := make([]Transaction, 0, len(w.Transactions))
	for i := len(w.Transactions) - 1; i >= 0; i-- {
		tx := w.Transactions[i]
		if filter.Type != "" && tx.Type != filter.Type {
			continue
		}
		matched = append(matched, tx)
	}

	total := len(matched)
	if filter.Limit <= 0 {
		return matched, total, nil
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * filter.Limit
	if start >= total {
		return []Transaction{}, total, nil
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

// Verify checks that the balance equals the running sum of the log.
func (s *Service) Verify(ctx context.Context, walletID uuid.UUID) error {
	w, err := s.repo.Get(ctx, walletID)
	if err != nil {
		return err
	}
	if sum := w.LedgerSum(); sum != w.Balance {
		return ErrLedgerMismatch.Withf("wallet %s balance %d, ledger sum %d", walletID, w.Balance, sum)
	}
	return nil
}
