package wallet

import (
	"time"

	"github.com/google/uuid"
)

type RechargeRequest struct {
	Amount      int64  `json:"amount" validate:"gt=0"`
	Method      string `json:"method" validate:"required,payment_method"`
	ReferenceID string `json:"reference_id" validate:"omitempty,max=64"`
}

type TransferRequest struct {
	ToAccountID string `json:"to_account_id" validate:"required,uuid"`
	Amount      int64  `json:"amount" validate:"gt=0"`
	Reason      string `json:"reason" validate:"max=200"`
}

type SetActiveRequest struct {
	Active bool `json:"active"`
}

type WalletResponse struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Balance   int64     `json:"balance"`
	Active    bool      `json:"active"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (w *Wallet) ToResponse() WalletResponse {
	return WalletResponse{
		ID:        w.ID,
		OwnerID:   w.OwnerID,
		Balance:   w.Balance,
		Active:    w.Active,
		UpdatedAt: w.UpdatedAt,
	}
}

type TransferResponse struct {
	CorrelationID string `json:"correlation_id"`
	Balance       int64  `json:"balance"`
}
