package elastic

import (
	"errors"
	"fmt"

	"github.com/xraph/elastic/fee"
	"github.com/xraph/elastic/journal"
	"github.com/xraph/elastic/lifecycle"
	"github.com/xraph/elastic/rebase"
	"github.com/xraph/elastic/shares"
)

var (
	// Transfer errors
	ErrInsufficientBalance   = shares.ErrInsufficientBalance
	ErrInsufficientAllowance = shares.ErrInsufficientAllowance
	ErrTradingNotOpen        = errors.New("elastic: trading not open")
	ErrInvalidAddress        = fee.ErrInvalidAddress
	ErrInvalidAmount         = errors.New("elastic: invalid amount")

	// Configuration errors
	ErrFeesTooHigh                = fee.ErrFeesTooHigh
	ErrInvalidLifecycleTransition = lifecycle.ErrInvalidTransition
	ErrInvalidSupply              = shares.ErrInvalidSupply
	ErrInvalidConfig              = errors.New("elastic: invalid configuration")

	// Rebase errors
	ErrNoPendingRebases = rebase.ErrNoPendingRebases

	// Access errors
	ErrUnauthorized = errors.New("elastic: unauthorized")

	// Store errors
	ErrNotFound       = journal.ErrEntryNotFound
	ErrDuplicateEntry = journal.ErrDuplicateEntry
	ErrCorruptEntry   = journal.ErrCorruptEntry
	ErrStoreNotReady  = errors.New("elastic: store not ready")
	ErrPersistFailed  = errors.New("elastic: persist failed")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("elastic: validation failed for %s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidConfig.
func (e ValidationError) Unwrap() error { return ErrInvalidConfig }

// MultiError represents multiple errors that occurred.
type MultiError struct {
	Errors []error
}

func (e MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "elastic: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("elastic: %d errors occurred: %v", len(e.Errors), e.Errors[0])
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e MultiError) Unwrap() []error { return e.Errors }

// Add adds an error to the multi-error.
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors.
func (e MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}

// First returns the first error or nil.
func (e MultiError) First() error {
	if len(e.Errors) > 0 {
		return e.Errors[0]
	}
	return nil
}

// IsTransferRejected returns true if a transfer was refused because of its
// inputs or the token state. Nothing was mutated.
func IsTransferRejected(err error) bool {
	return errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrInsufficientAllowance) ||
		errors.Is(err, ErrTradingNotOpen) ||
		errors.Is(err, ErrInvalidAddress) ||
		errors.Is(err, ErrInvalidAmount)
}

// IsConfigError returns true if the error is a rejected configuration change.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrFeesTooHigh) ||
		errors.Is(err, ErrInvalidLifecycleTransition) ||
		errors.Is(err, ErrInvalidSupply) ||
		errors.Is(err, ErrInvalidConfig)
}

// IsRetryable returns true if the error is temporary and the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreNotReady) ||
		errors.Is(err, ErrPersistFailed)
}
