// Package apperr defines the error taxonomy shared by the booking domains.
//
// Every business failure is an *Error carrying a Kind. Domain packages declare
// their sentinels with New and callers branch either on the sentinel itself or
// on the kind:
//
//	errors.Is(err, reservation.ErrTooLateToCancel)
//	errors.Is(err, apperr.PolicyViolation)
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a business failure.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindState             Kind = "state"
	KindConflict          Kind = "conflict"
	KindNotFound          Kind = "not_found"
	KindInsufficientFunds Kind = "insufficient_funds"
	KindWalletInactive    Kind = "wallet_inactive"
	KindPolicyViolation   Kind = "policy_violation"
)

// Kind sentinels. Any *Error of the same kind matches them with errors.Is.
var (
	Validation        = &Error{Kind: KindValidation}
	State             = &Error{Kind: KindState}
	Conflict          = &Error{Kind: KindConflict}
	NotFound          = &Error{Kind: KindNotFound}
	InsufficientFunds = &Error{Kind: KindInsufficientFunds}
	WalletInactive    = &Error{Kind: KindWalletInactive}
	PolicyViolation   = &Error{Kind: KindPolicyViolation}
)

// Error is a typed business error.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

// New creates a sentinel error.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// Is matches kind sentinels by kind and coded errors by kind and code,
// so a copy made with Withf still matches its sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code == "" {
		return e.Kind == t.Kind
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// Withf returns a copy of e with a more specific message.
func (e *Error) Withf(format string, args ...interface{}) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Code != "" {
			return e.Code
		}
		return string(e.Kind)
	}
	return ""
}
