package utils

import "errors"

var (
	ErrValidation         = errors.New("invalid request")
	ErrNotFound           = errors.New("not found")
	ErrExpired            = errors.New("payment expired")
	ErrConflict           = errors.New("conflicting terminal state")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrStaleStatus signals a lost compare-and-set: the ledger entry left
	// the expected status before the write landed. Callers re-read and
	// return the committed result.
	ErrStaleStatus = errors.New("ledger status changed concurrently")

	// ErrDuplicateOrderNumber maps the unique-violation on order_number.
	// Order numbers are random-suffixed, not guaranteed unique, so the
	// insert conflict is a distinct, retryable case.
	ErrDuplicateOrderNumber = errors.New("order number already taken")
)
