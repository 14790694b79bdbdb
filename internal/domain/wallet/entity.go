package wallet

import (
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TransactionTypeCredit      TransactionType = "CREDIT"
	TransactionTypeDebit       TransactionType = "DEBIT"
	TransactionTypeTransferOut TransactionType = "TRANSFER_OUT"
	TransactionTypeTransferIn  TransactionType = "TRANSFER_IN"
	TransactionTypeRefund      TransactionType = "REFUND"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeCredit, TransactionTypeDebit, TransactionTypeTransferOut,
		TransactionTypeTransferIn, TransactionTypeRefund:
		return true
	}
	return false
}

// Wallet is a prepaid account. The transaction log travels with the wallet
// document so balance and log are always written together.
type Wallet struct {
	ID           uuid.UUID     `json:"id"`
	OwnerID      uuid.UUID     `json:"owner_id"`
	Balance      int64         `json:"balance"`
	Active       bool          `json:"active"`
	Transactions []Transaction `json:"transactions"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Transaction is an immutable ledger entry. Amount is signed.
type Transaction struct {
	ID            uuid.UUID       `json:"id"`
	WalletID      uuid.UUID       `json:"wallet_id"`
	Type          TransactionType `json:"type"`
	Amount        int64           `json:"amount"`
	BalanceAfter  int64           `json:"balance_after"`
	Reason        string          `json:"reason"`
	Method        string          `json:"method,omitempty"`
	ReferenceID   string          `json:"reference_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// LedgerSum is the running sum of signed transaction amounts.
func (w *Wallet) LedgerSum() int64 {
	var sum int64
	for _, tx := range w.Transactions {
		sum += tx.Amount
	}
	return sum
}

// findReference returns the transaction of txType recorded with ref.
func (w *Wallet) findReference(txType TransactionType, ref string) (Transaction, bool) {
	if ref == "" {
		return Transaction{}, false
	}
	for _, tx := range w.Transactions {
		if tx.Type == txType && tx.ReferenceID == ref {
			return tx, true
		}
	}
	return Transaction{}, false
}

// appendEntry applies a signed amount and records it. Callers check funds.
func (w *Wallet) appendEntry(entry Transaction, now time.Time) Transaction {
	w.Balance += entry.Amount
	entry.ID = uuid.New()
	entry.WalletID = w.ID
	entry.BalanceAfter = w.Balance
	entry.CreatedAt = now
	w.Transactions = append(w.Transactions, entry)
	w.UpdatedAt = now
	return entry
}

// TransactionFilter narrows ListTransactions.
type TransactionFilter struct {
	Type  TransactionType
	Page  int
	Limit int
}
