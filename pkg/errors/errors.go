// Package errors provides the coded error type shared by every component,
// its sentinel values and wrapping helpers.
package errors

import (
	"errors"
	"fmt"
)

// Code identifies an error kind independently of its message.
type Code string

const (
	CodeInvalidAddress        Code = "INVALID_ADDRESS"
	CodeInvalidAmount         Code = "INVALID_AMOUNT"
	CodeInsufficientOutput    Code = "INSUFFICIENT_OUTPUT"
	CodeProofGenerationFailed Code = "PROOF_GENERATION_FAILED"
	CodeAuditTokenNotFound    Code = "AUDIT_TOKEN_NOT_FOUND"
	CodeInvalidSlippage       Code = "INVALID_SLIPPAGE"
	CodeInvalidMinOutput      Code = "INVALID_MIN_OUTPUT"
	CodeNetworkError          Code = "NETWORK_ERROR"
	CodeInvalidSwap           Code = "INVALID_SWAP"
	CodeSwapQuoteFailed       Code = "SWAP_QUOTE_FAILED"
	CodePriceImpactTooHigh    Code = "PRICE_IMPACT_TOO_HIGH"
	CodeDoubleSpend           Code = "DOUBLE_SPEND"
	CodeStorageError          Code = "STORAGE_ERROR"
	CodeInvalidStorageType    Code = "INVALID_STORAGE_TYPE"
	CodeDecryptionFailed      Code = "DECRYPTION_FAILED"
	CodeInvalidCredential     Code = "INVALID_CREDENTIAL"
	CodeThresholdExceeded     Code = "THRESHOLD_EXCEEDED"
	CodeInvalidFeeLevel       Code = "INVALID_FEE_LEVEL"
	CodeInvalidCommitment     Code = "INVALID_COMMITMENT"
)

// Error is a coded error. Two *Error values match under errors.Is when
// their codes are equal, so callers compare against the sentinels below
// regardless of the message a component attached.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Sentinels, one per code.
var (
	ErrInvalidAddress        = &Error{Code: CodeInvalidAddress, Message: "invalid address"}
	ErrInvalidAmount         = &Error{Code: CodeInvalidAmount, Message: "amount must be positive"}
	ErrInsufficientOutput    = &Error{Code: CodeInsufficientOutput, Message: "output below minimum"}
	ErrProofGenerationFailed = &Error{Code: CodeProofGenerationFailed, Message: "proof generation failed"}
	ErrAuditTokenNotFound    = &Error{Code: CodeAuditTokenNotFound, Message: "audit token not found"}
	ErrInvalidSlippage       = &Error{Code: CodeInvalidSlippage, Message: "slippage out of range"}
	ErrInvalidMinOutput      = &Error{Code: CodeInvalidMinOutput, Message: "minimum output must be positive"}
	ErrNetwork               = &Error{Code: CodeNetworkError, Message: "network request failed"}
	ErrInvalidSwap           = &Error{Code: CodeInvalidSwap, Message: "invalid swap"}
	ErrSwapQuoteFailed       = &Error{Code: CodeSwapQuoteFailed, Message: "swap quote failed"}
	ErrPriceImpactTooHigh    = &Error{Code: CodePriceImpactTooHigh, Message: "price impact too high"}
	ErrDoubleSpend           = &Error{Code: CodeDoubleSpend, Message: "nullifier already spent"}
	ErrStorage               = &Error{Code: CodeStorageError, Message: "storage failure"}
	ErrInvalidStorageType    = &Error{Code: CodeInvalidStorageType, Message: "unknown storage backend"}
	ErrDecryptionFailed      = &Error{Code: CodeDecryptionFailed, Message: "decryption failed"}
	ErrInvalidCredential     = &Error{Code: CodeInvalidCredential, Message: "invalid audit credential"}
	ErrThresholdExceeded     = &Error{Code: CodeThresholdExceeded, Message: "compliance threshold exceeded"}
	ErrInvalidFeeLevel       = &Error{Code: CodeInvalidFeeLevel, Message: "fee level must be low, medium or high"}
	ErrInvalidCommitment     = &Error{Code: CodeInvalidCommitment, Message: "invalid note commitment"}
)

// New builds a coded error with a specific message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf is New with formatting.
func Newf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithCause builds a coded error carrying the underlying failure.
func WithCause(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Is and As re-export the standard helpers so callers need one import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
