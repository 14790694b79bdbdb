package wallet_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/bookyourstay/stay-api/internal/domain/wallet"
	"github.com/bookyourstay/stay-api/internal/pkg/apperr"
	"github.com/bookyourstay/stay-api/internal/pkg/clock"
	"github.com/bookyourstay/stay-api/internal/pkg/notify"
	"github.com/bookyourstay/stay-api/internal/pkg/store"
)

func newTestService(t *testing.T) *wallet.Service {
	t.Helper()
	repo, err := wallet.NewRepository(store.Backend{Driver: store.DriverMemory})
	if err != nil {
		t.Fatalf("repository: %v", err)
	}
	clk := clock.NewFake(time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC))
	return wallet.NewService(repo, clk, notify.Discard{}, wallet.Config{MaxRecharge: 10_000_000})
}

func openFunded(t *testing.T, svc *wallet.Service, amount int64) *wallet.Wallet {
	t.Helper()
	w, err := svc.Open(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("open wallet failed: %v", err)
	}
	if amount > 0 {
		if _, err := svc.Credit(context.Background(), w.ID, amount, "seed"); err != nil {
			t.Fatalf("seed credit failed: %v", err)
		}
	}
	return w
}

func assertLedgerConsistent(t *testing.T, svc *wallet.Service, id uuid.UUID) {
	t.Helper()
	if err := svc.Verify(context.Background(), id); err != nil {
		t.Fatalf("ledger inconsistent: %v", err)
	}
}

/* ==== Debit ==== */

func TestDebitInsufficientFundsLeavesWalletUntouched(t *testing.T) {
	svc := newTestService(t)
	w := openFunded(t, svc, 50_000)

	ok, err := svc.Debit(context.Background(), w.ID, 70_000, "reservation", "r-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected debit to report false")
	}

	got, _ := svc.Get(context.Background(), w.ID)
	if got.Balance != 50_000 {
		t.Fatalf("expected balance 50000, got %d", got.Balance)
	}
	if len(got.Transactions) != 1 {
		t.Fatalf("expected only the seed transaction, got %d", len(got.Transactions))
	}
	assertLedgerConsistent(t, svc, w.ID)
}

func TestDebitSuccess(t *testing.T) {
	svc := newTestService(t)
	w := openFunded(t, svc, 100_000)

	ok, err := svc.Debit(context.Background(), w.ID, 40_000, "reservation", "r-2")
	if err != nil || !ok {
		t.Fatalf("expected debit to succeed, got ok=%v err=%v", ok, err)
	}

	got, _ := svc.Get(context.Background(), w.ID)
	last := got.Transactions[len(got.Transactions)-1]
	if got.Balance != 60_000 || last.Amount != -40_000 || last.Type != wallet.TransactionTypeDebit {
		t.Fatalf("unexpected wallet state %+v", got)
	}
	if last.BalanceAfter != 60_000 || last.CorrelationID != "r-2" {
		t.Fatalf("unexpected entry %+v", last)
	}
	assertLedgerConsistent(t, svc, w.ID)
}

func TestWalletConcurrentDebit(t *testing.T) {
	svc := newTestService(t)
	w := openFunded(t, svc, 5)

	const workers = 20
	var wg sync.WaitGroup
	success := 0
	var mu sync.Mutex

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := svc.Debit(context.Background(), w.ID, 1, "spend", fmt.Sprintf("spend-%d", i))
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if ok {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if success != 5 {
		t.Fatalf("expected 5 successful debits, got %d", success)
	}
	balance, _ := svc.GetBalance(context.Background(), w.ID)
	if balance != 0 {
		t.Fatalf("expected balance 0, got %d", balance)
	}
	assertLedgerConsistent(t, svc, w.ID)
}

/* ==== Validation and inactive wallets ==== */

func TestNonPositiveAmountsRejected(t *testing.T) {
	svc := newTestService(t)
	w := openFunded(t, svc, 100)
	ctx := context.Background()

	for _, amount := range []int64{0, -5} {
		if _, err := svc.Credit(ctx, w.ID, amount, "x"); !errors.Is(err, wallet.ErrInvalidAmount) {
			t.Fatalf("credit(%d): expected ErrInvalidAmount, got %v", amount, err)
		}
		if _, err := svc.Debit(ctx, w.ID, amount, "x", ""); !errors.Is(err, apperr.Validation) {
			t.Fatalf("debit(%d): expected validation error, got %v", amount, err)
		}
		if _, err := svc.Refund(ctx, w.ID, amount, "x", ""); !errors.Is(err, wallet.ErrInvalidAmount) {
			t.Fatalf("refund(%d): expected ErrInvalidAmount, got %v", amount, err)
		}
		if _, err := svc.Recharge(ctx, w.ID, amount, "card", ""); !errors.Is(err, wallet.ErrInvalidAmount) {
			t.Fatalf("recharge(%d): expected ErrInvalidAmount, got %v", amount, err)
		}
	}
}

func TestInactiveWalletRejectsEveryOperation(t *testing.T) {
	svc := newTestService(t)
	w := openFunded(t, svc, 1_000)
	other := openFunded(t, svc, 0)
	ctx := context.Background()

	if _, err := svc.SetActive(ctx, w.ID, false); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}

	if _, err := svc.Credit(ctx, w.ID, 10, "x"); !errors.Is(err, wallet.ErrWalletInactive) {
		t.Fatalf("credit: expected ErrWalletInactive, got %v", err)
	}
	if _, err := svc.Debit(ctx, w.ID, 10, "x", ""); !errors.Is(err, apperr.WalletInactive) {
		t.Fatalf("debit: expected WalletInactive kind, got %v", err)
	}
	if _, err := svc.Refund(ctx, w.ID, 10, "x", ""); !errors.Is(err, wallet.ErrWalletInactive) {
		t.Fatalf("refund: expected ErrWalletInactive, got %v", err)
	}
	if _, err := svc.Recharge(ctx, w.ID, 10, "card", ""); !errors.Is(err, wallet.ErrWalletInactive) {
		t.Fatalf("recharge: expected ErrWalletInactive, got %v", err)
	}
	if _, err := svc.Transfer(ctx, other.ID, w.ID, 10, "x"); !errors.Is(err, wallet.ErrWalletInactive) {
		t.Fatalf("transfer into inactive: expected ErrWalletInactive, got %v", err)
	}

	got, _ := svc.Get(ctx, w.ID)
	if got.Balance != 1_000 {
		t.Fatalf("inactive wallet balance changed to %d", got.Balance)
	}
}

/* ==== Recharge ==== */

func TestRecharge(t *testing.T) {
	svc := newTestService(t)
	w := openFunded(t, svc, 0)
	ctx := context.Background()

	tests := []struct {
		name    string
		amount  int64
		method  string
		wantErr error
	}{
		{"over limit", 10_000_001, "card", wallet.ErrRechargeLimitExceeded},
		{"no method", 1_000, "", wallet.ErrPaymentMethodRequired},
		{"at limit", 10_000_000, "card", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Recharge(ctx, w.ID, tt.amount, tt.method, "")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	balance, _ := svc.GetBalance(ctx, w.ID)
	if balance != 10_000_000 {
		t.Fatalf("expected balance 10000000, got %d", balance)
	}
}

func TestRechargeReferenceIdempotency(t *testing.T) {
	svc := newTestService(t)
	w := openFunded(t, svc, 0)
	ctx := context.Background()

	if _, err := svc.Recharge(ctx, w.ID, 200, "pse", "pay-1"); err != nil {
		t.Fatalf("first recharge failed: %v", err)
	}
	if _, err := svc.Recharge(ctx, w.ID, 200, "pse", "pay-1"); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if _, err := svc.Recharge(ctx, w.ID, 300, "pse", "pay-1"); !errors.Is(err, wallet.ErrReferenceConflict) {
		t.Fatalf("expected ErrReferenceConflict, got %v", err)
	}

	balance, _ := svc.GetBalance(ctx, w.ID)
	if balance != 200 {
		t.Fatalf("expected balance 200 after idempotent retry, got %d", balance)
	}
}

/* ==== Transfer ==== */

func TestTransferAppliesPairWithSharedCorrelation(t *testing.T) {
	svc := newTestService(t)
	src := openFunded(t, svc, 1_000)
	dst := openFunded(t, svc, 0)
	ctx := context.Background()

	corr, err := svc.Transfer(ctx, src.ID, dst.ID, 400, "split bill")
	if err != nil {
		t.Fatalf("transfer failed: %v", err)
	}

	s, _ := svc.Get(ctx, src.ID)
	d, _ := svc.Get(ctx, dst.ID)
	if s.Balance != 600 || d.Balance != 400 {
		t.Fatalf("unexpected balances %d / %d", s.Balance, d.Balance)
	}
	out := s.Transactions[len(s.Transactions)-1]
	in := d.Transactions[len(d.Transactions)-1]
	if out.Type != wallet.TransactionTypeTransferOut || in.Type != wallet.TransactionTypeTransferIn {
		t.Fatalf("unexpected types %s / %s", out.Type, in.Type)
	}
	if out.CorrelationID != corr || in.CorrelationID != corr {
		t.Fatalf("correlation mismatch %q %q %q", corr, out.CorrelationID, in.CorrelationID)
	}
	assertLedgerConsistent(t, svc, src.ID)
	assertLedgerConsistent(t, svc, dst.ID)
}

func TestTransferFailuresMutateNeitherSide(t *testing.T) {
	svc := newTestService(t)
	src := openFunded(t, svc, 100)
	dst := openFunded(t, svc, 0)
	ctx := context.Background()

	if _, err := svc.Transfer(ctx, src.ID, dst.ID, 500, "x"); !errors.Is(err, wallet.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if _, err := svc.Transfer(ctx, src.ID, src.ID, 10, "x"); !errors.Is(err, wallet.ErrSelfTransfer) {
		t.Fatalf("expected ErrSelfTransfer, got %v", err)
	}
	if _, err := svc.Transfer(ctx, src.ID, uuid.New(), 10, "x"); !errors.Is(err, wallet.ErrWalletNotFound) {
		t.Fatalf("expected ErrWalletNotFound, got %v", err)
	}

	s, _ := svc.Get(ctx, src.ID)
	d, _ := svc.Get(ctx, dst.ID)
	if s.Balance != 100 || len(s.Transactions) != 1 || d.Balance != 0 || len(d.Transactions) != 0 {
		t.Fatalf("failed transfer mutated state: src=%+v dst=%+v", s, d)
	}
}

func TestConcurrentOpposingTransfers(t *testing.T) {
	svc := newTestService(t)
	a := openFunded(t, svc, 1_000)
	b := openFunded(t, svc, 1_000)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			svc.Transfer(ctx, a.ID, b.ID, 7, "a->b")
		}()
		go func() {
			defer wg.Done()
			svc.Transfer(ctx, b.ID, a.ID, 3, "b->a")
		}()
	}
	wg.Wait()

	ab, _ := svc.GetBalance(ctx, a.ID)
	bb, _ := svc.GetBalance(ctx, b.ID)
	if ab+bb != 2_000 {
		t.Fatalf("money created or destroyed: %d + %d", ab, bb)
	}
	assertLedgerConsistent(t, svc, a.ID)
	assertLedgerConsistent(t, svc, b.ID)
}

/* ==== Queries ==== */

func TestListTransactionsFilterAndPaging(t *testing.T) {
	svc := newTestService(t)
	w := openFunded(t, svc, 1_000)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if ok, err := svc.Debit(ctx, w.ID, 10, "x", ""); err != nil || !ok {
			t.Fatalf("debit %d failed: %v", i, err)
		}
	}
	if _, err := svc.Refund(ctx, w.ID, 10, "refund", "r-1"); err != nil {
		t.Fatalf("refund failed: %v", err)
	}

	debits, total, err := svc.ListTransactions(ctx, w.ID, wallet.TransactionFilter{Type: wallet.TransactionTypeDebit, Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 5 || len(debits) != 2 {
		t.Fatalf("expected 2 of 5 debits, got %d of %d", len(debits), total)
	}

	all, total, _ := svc.ListTransactions(ctx, w.ID, wallet.TransactionFilter{})
	if total != 7 || all[0].Type != wallet.TransactionTypeRefund {
		t.Fatalf("expected newest-first log of 7, got %d starting with %s", total, all[0].Type)
	}

	beyond, _, _ := svc.ListTransactions(ctx, w.ID, wallet.TransactionFilter{Page: 10, Limit: 5})
	if len(beyond) != 0 {
		t.Fatalf("expected empty page, got %d", len(beyond))
	}
}

func TestOpenTwiceForSameOwner(t *testing.T) {
	svc := newTestService(t)
	owner := uuid.New()
	if _, err := svc.Open(context.Background(), owner); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if _, err := svc.Open(context.Background(), owner); !errors.Is(err, wallet.ErrWalletExists) {
		t.Fatalf("expected ErrWalletExists, got %v", err)
	}
	w, err := svc.GetByOwner(context.Background(), owner)
	if err != nil || w.OwnerID != owner {
		t.Fatalf("get by owner failed: %v", err)
	}
}
