package wallet

import "github.com/bookyourstay/stay-api/internal/pkg/apperr"

var (
	ErrInvalidAmount         = apperr.New(apperr.KindValidation, "INVALID_AMOUNT", "amount must be greater than zero")
	ErrRechargeLimitExceeded = apperr.New(apperr.KindValidation, "RECHARGE_LIMIT_EXCEEDED", "recharge exceeds the per-operation limit")
	ErrPaymentMethodRequired = apperr.New(apperr.KindValidation, "PAYMENT_METHOD_REQUIRED", "payment method is required")
	ErrSelfTransfer          = apperr.New(apperr.KindValidation, "SELF_TRANSFER", "cannot transfer to the same wallet")
	ErrInsufficientFunds     = apperr.New(apperr.KindInsufficientFunds, "INSUFFICIENT_FUNDS", "insufficient wallet balance")
	ErrWalletInactive        = apperr.New(apperr.KindWalletInactive, "WALLET_INACTIVE", "wallet is inactive")
	ErrWalletNotFound        = apperr.New(apperr.KindNotFound, "WALLET_NOT_FOUND", "wallet not found")
	ErrWalletExists          = apperr.New(apperr.KindConflict, "WALLET_EXISTS", "account already has a wallet")
	ErrReferenceConflict     = apperr.New(apperr.KindConflict, "REFERENCE_CONFLICT", "reference already used with a different amount")
	ErrLedgerMismatch        = apperr.New(apperr.KindConflict, "LEDGER_MISMATCH", "wallet balance does not match its transaction log")
)
