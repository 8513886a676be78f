package domain

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies command failures for consistent user messaging.
type ErrorCategory string

const (
	ErrCategoryValidation        ErrorCategory = "validation"
	ErrCategoryWalletNotFound    ErrorCategory = "wallet_not_found"
	ErrCategoryUnsupportedToken  ErrorCategory = "unsupported_token"
	ErrCategoryInsufficientFunds ErrorCategory = "insufficient_funds"
	ErrCategoryTransport         ErrorCategory = "transport"
	ErrCategoryRemoteRejection   ErrorCategory = "remote_rejection"
	ErrCategoryVerification      ErrorCategory = "verification"
	ErrCategoryInternal          ErrorCategory = "internal"
)

// CommandError is a terminal, user-facing command failure. Message is safe
// to show to the user as-is.
type CommandError struct {
	Category ErrorCategory
	Message  string
	cause    error
}

func (e *CommandError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Category, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

func (e *CommandError) Unwrap() error {
	return e.cause
}

// WithCause attaches an underlying error for logging without changing the
// user-facing message.
func (e *CommandError) WithCause(err error) *CommandError {
	e.cause = err
	return e
}

func newError(cat ErrorCategory, format string, args ...any) *CommandError {
	return &CommandError{Category: cat, Message: fmt.Sprintf(format, args...)}
}

func ValidationErrorf(format string, args ...any) *CommandError {
	return newError(ErrCategoryValidation, format, args...)
}

func WalletNotFoundErrorf(format string, args ...any) *CommandError {
	return newError(ErrCategoryWalletNotFound, format, args...)
}

func UnsupportedTokenErrorf(format string, args ...any) *CommandError {
	return newError(ErrCategoryUnsupportedToken, format, args...)
}

func InsufficientFundsErrorf(format string, args ...any) *CommandError {
	return newError(ErrCategoryInsufficientFunds, format, args...)
}

func TransportErrorf(format string, args ...any) *CommandError {
	return newError(ErrCategoryTransport, format, args...)
}

func RemoteRejectionErrorf(format string, args ...any) *CommandError {
	return newError(ErrCategoryRemoteRejection, format, args...)
}

func VerificationErrorf(format string, args ...any) *CommandError {
	return newError(ErrCategoryVerification, format, args...)
}

// CategoryOf extracts the category from err, or ErrCategoryInternal when err
// is not a CommandError.
func CategoryOf(err error) ErrorCategory {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Category
	}
	return ErrCategoryInternal
}

// UserMessage returns the user-facing message for err, falling back to a
// generic line for unexpected internal failures.
func UserMessage(err error) string {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Message
	}
	return "Something went wrong while processing your command. Please try again."
}
