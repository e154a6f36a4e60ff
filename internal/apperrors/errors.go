package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicateTransaction indicates that an external transaction with the
// same (sourceSystem, sourceID) pair was already imported. Import treats
// this as a skip, never as a batch-aborting failure.
var ErrDuplicateTransaction = errors.New("transaction already imported")

// ErrPeriodLocked indicates an attempted mutation of a ledger entry that
// belongs to a closed period. Only the transmission status of a locked
// entry may still change.
var ErrPeriodLocked = errors.New("ledger entry is locked by a closed period")

// ErrPeriodClosed indicates an operation targeting a period that has
// already transitioned to CLOSED. Closing is irreversible.
var ErrPeriodClosed = errors.New("period is already closed")

// ErrDecryptionFailure indicates that a stored credential record could not
// be decrypted. Callers must treat this like an authentication failure;
// it never carries partial plaintext.
var ErrDecryptionFailure = errors.New("credential decryption failed")

// ErrPortalRejection indicates the external portal rejected a submitted
// entry (form validation, business rule). Recorded per entry, retryable.
var ErrPortalRejection = errors.New("portal rejected the entry")

// ErrPortalUnreachable indicates a transport-level failure talking to the
// external portal (network error, timeout). Transient, retryable.
var ErrPortalUnreachable = errors.New("portal unreachable")

// ErrTransmissionBusy indicates another transmission run is already active
// for the same kindergarten. The portal session model allows one active
// login context per credential, so concurrent runs are refused outright.
var ErrTransmissionBusy = errors.New("transmission already in progress for kindergarten")

// SplitMismatchError is returned when split allocations do not sum exactly
// to the source amount. Difference is sourceAmount minus the allocation sum
// in minor currency units; a 1-unit mismatch is still a rejection.
type SplitMismatchError struct {
	SourceAmount int64
	Allocated    int64
}

func (e *SplitMismatchError) Error() string {
	return fmt.Sprintf("split allocations sum to %d but source amount is %d (difference %d)",
		e.Allocated, e.SourceAmount, e.Difference())
}

// Difference returns sourceAmount - sum(allocations).
func (e *SplitMismatchError) Difference() int64 {
	return e.SourceAmount - e.Allocated
}

// AppError wraps lower-level failures (storage, transport) with a status
// code and message suitable for the HTTP layer.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError wrapping err.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
