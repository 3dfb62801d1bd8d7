package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound   ErrorType = "NOT_FOUND"
	ErrorTypeInternal   ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal   ErrorType = "EXTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed  ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidAmount     ErrorCode = "INVALID_AMOUNT"
	ErrCodeMissingMethod     ErrorCode = "MISSING_METHOD"
	ErrCodeMissingEmail      ErrorCode = "MISSING_EMAIL"
	ErrCodeUnsupportedMethod ErrorCode = "UNSUPPORTED_METHOD"

	ErrCodeNetworkError          ErrorCode = "NETWORK_ERROR"
	ErrCodePaymentCreationFailed ErrorCode = "PAYMENT_CREATION_FAILED"
	ErrCodeVerificationFailed    ErrorCode = "VERIFICATION_FAILED"
	ErrCodePaymentNotFound       ErrorCode = "PAYMENT_NOT_FOUND"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause copies so the package-level sentinels are never mutated.
func (e *AppError) WithCause(cause error) *AppError {
	copied := *e
	copied.Cause = cause
	return &copied
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	copied := *e
	copied.Details = details
	return &copied
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NewExternalError covers failures originating at the payment gateway boundary.
func NewExternalError(message string, code ErrorCode, statusCode int) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

var (
	ErrInvalidAmount = NewValidationError("donation amount must be a positive number", ErrCodeInvalidAmount)
	ErrMissingMethod = NewValidationError("payment method is required", ErrCodeMissingMethod)
	ErrMissingEmail  = NewValidationError("payer email is required", ErrCodeMissingEmail)

	ErrUnsupportedMethod = NewValidationError("payment method is not supported", ErrCodeUnsupportedMethod)

	ErrNetwork = NewExternalError("could not reach the payment gateway", ErrCodeNetworkError, http.StatusBadGateway)

	ErrVerificationFailed = NewExternalError(
		"payment could not be verified, please contact support",
		ErrCodeVerificationFailed, http.StatusBadGateway)

	ErrPaymentNotFound = NewNotFoundError("payment not found", ErrCodePaymentNotFound)
)

// NewPaymentCreationError carries the gateway's rejection message through to the caller.
func NewPaymentCreationError(gatewayMessage string) *AppError {
	msg := gatewayMessage
	if msg == "" {
		msg = "payment could not be created"
	}
	return NewExternalError(msg, ErrCodePaymentCreationFailed, http.StatusBadGateway)
}

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
