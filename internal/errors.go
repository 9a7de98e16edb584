package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeNetwork        ErrorType = "NETWORK_ERROR"
	ErrorTypeValidation     ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound       ErrorType = "NOT_FOUND"
	ErrorTypeNotImplemented ErrorType = "NOT_IMPLEMENTED"
	ErrorTypeUnauthorized   ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden      ErrorType = "FORBIDDEN"
	ErrorTypeConflict       ErrorType = "CONFLICT"
	ErrorTypeInternal       ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal       ErrorType = "EXTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidHours     ErrorCode = "INVALID_HOURS"
	ErrCodeInvalidDate      ErrorCode = "INVALID_DATE"
	ErrCodeInvalidStatus    ErrorCode = "INVALID_STATUS"
	ErrCodeInvalidMethod    ErrorCode = "INVALID_PAYMENT_METHOD"
	ErrCodeInvalidFormat    ErrorCode = "INVALID_EXPORT_FORMAT"

	ErrCodeTransportFailed ErrorCode = "TRANSPORT_FAILED"
	ErrCodeBadResponse     ErrorCode = "BAD_RESPONSE"
	ErrCodeHTTPStatus      ErrorCode = "HTTP_STATUS"
	ErrCodeFeaturePending  ErrorCode = "FEATURE_PENDING"

	ErrCodeNotAuthenticated   ErrorCode = "NOT_AUTHENTICATED"
	ErrCodeAccessDenied       ErrorCode = "ACCESS_DENIED"
	ErrCodeAlreadyReconciled  ErrorCode = "ALREADY_RECONCILED"
	ErrCodeAlreadyDecided     ErrorCode = "ALREADY_DECIDED"
	ErrCodeSessionUnavailable ErrorCode = "SESSION_UNAVAILABLE"
)

const (
	auditLogsPrefix       = "/audit-logs"
	auditLogsExportPrefix = "/audit-logs/export"

	FeaturePendingMessage       = "Audit logging endpoint not yet implemented on backend."
	ExportFeaturePendingMessage = "Audit logging export endpoint not yet implemented on backend."
)

// AppError is the structured failure every layer of the client passes
// around. StatusCode is zero for failures raised before a response
// arrived (local validation, transport errors).
type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Path       string      `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		if e.Message == "" {
			return e.Cause.Error()
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	if e.Message == "" && e.StatusCode != 0 {
		return fmt.Sprintf("%s %s returned status %d", e.Type, e.Path, e.StatusCode)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Code:    code,
		Message: message,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Code:    ErrCodeValidationFailed,
		Message: "Validation failed",
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:    ErrorTypeForbidden,
		Code:    code,
		Message: message,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:    ErrorTypeUnauthorized,
		Code:    code,
		Message: message,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:    ErrorTypeConflict,
		Code:    code,
		Message: message,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Code:    "INTERNAL_ERROR",
		Message: message,
		Cause:   cause,
	}
}

// NewSessionError reports that the local session could not be read or
// written. The backend may well have accepted the request.
func NewSessionError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Code:    ErrCodeSessionUnavailable,
		Message: message,
	}
}

// NewNetworkError reports a request that never produced a response.
func NewNetworkError(path string, cause error) *AppError {
	return &AppError{
		Type:  ErrorTypeNetwork,
		Code:  ErrCodeTransportFailed,
		Path:  path,
		Cause: cause,
	}
}

// NewHTTPError classifies a non-2xx response. message is whatever the
// backend put in its body and may be empty.
func NewHTTPError(status int, path, message string) *AppError {
	e := &AppError{
		Type:       typeForStatus(status),
		Code:       ErrCodeHTTPStatus,
		Message:    message,
		StatusCode: status,
		Path:       path,
	}
	if status == http.StatusNotFound && strings.HasPrefix(path, auditLogsPrefix) {
		e.Type = ErrorTypeNotImplemented
		e.Code = ErrCodeFeaturePending
	}
	return e
}

func typeForStatus(status int) ErrorType {
	switch {
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return ErrorTypeValidation
	case status == http.StatusUnauthorized:
		return ErrorTypeUnauthorized
	case status == http.StatusForbidden:
		return ErrorTypeForbidden
	case status == http.StatusNotFound:
		return ErrorTypeNotFound
	case status == http.StatusConflict:
		return ErrorTypeConflict
	default:
		return ErrorTypeExternal
	}
}

var (
	ErrNotAuthenticated = NewUnauthorizedError("You are not logged in", ErrCodeNotAuthenticated)
	ErrAccessDenied     = NewForbiddenError("Access denied for your role", ErrCodeAccessDenied)
	ErrAuditAccess      = NewForbiddenError("Access denied. Only Admin and Manager roles can view audit logs.", ErrCodeAccessDenied)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsAccessDenied reports whether err is an authentication or
// authorization failure (401/403 or a local role check).
func IsAccessDenied(err error) bool {
	appErr, ok := IsAppError(err)
	if !ok {
		return false
	}
	return appErr.Type == ErrorTypeForbidden || appErr.Type == ErrorTypeUnauthorized
}

func IsFeaturePending(err error) bool {
	appErr, ok := IsAppError(err)
	return ok && appErr.Type == ErrorTypeNotImplemented
}

// Describe turns err into the single line shown to a user. Missing
// backend features get their own wording, then the backend's message
// wins, then fallback.
func Describe(err error, fallback string) string {
	if err == nil {
		return ""
	}
	appErr, ok := IsAppError(err)
	if !ok {
		return fallback
	}
	if appErr.Type == ErrorTypeNotImplemented {
		if strings.HasPrefix(appErr.Path, auditLogsExportPrefix) {
			return ExportFeaturePendingMessage
		}
		return FeaturePendingMessage
	}
	if msg := appErr.GetDetailedMessage(); msg != "" && appErr.Type == ErrorTypeValidation && appErr.StatusCode == 0 {
		return msg
	}
	if appErr.Message != "" {
		return appErr.Message
	}
	return fallback
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
