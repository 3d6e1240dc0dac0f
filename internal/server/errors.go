// Package server provides the HTTP REST API for the career guidance service.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/career-compass/internal/fetch"
	"github.com/jonathan/career-compass/internal/flows"
	"github.com/jonathan/career-compass/internal/ingestion"
	"github.com/jonathan/career-compass/internal/schemas"
)

// Auth error codes. Clients switch on these to pick a message.
const (
	CodeInvalidCredential   = "auth/invalid-credential"
	CodeTooManyRequests     = "auth/too-many-requests"
	CodeUserDisabled        = "auth/user-disabled"
	CodeEmailAlreadyInUse   = "auth/email-already-in-use"
	CodeWeakPassword        = "auth/weak-password"
	CodeEmailNotVerified    = "auth/email-not-verified"
	CodeUserNotFound        = "auth/user-not-found"
	CodeDifferentCredential = "auth/account-exists-with-different-credential"
	CodeMissingEmail        = "auth/missing-email"
	CodeInvalidActionCode   = "auth/invalid-action-code"
	CodeProviderDisabled    = "auth/operation-not-allowed"
	CodeInvalidOAuthState   = "auth/invalid-oauth-state"
	CodeOAuthExchangeFailed = "auth/oauth-exchange-failed"
)

const defaultAuthFailureMessage = "Authentication failed. Please try again."

var authErrorStatus = map[string]int{
	CodeInvalidCredential:   http.StatusUnauthorized,
	CodeTooManyRequests:     http.StatusTooManyRequests,
	CodeUserDisabled:        http.StatusForbidden,
	CodeEmailAlreadyInUse:   http.StatusConflict,
	CodeWeakPassword:        http.StatusBadRequest,
	CodeEmailNotVerified:    http.StatusForbidden,
	CodeUserNotFound:        http.StatusNotFound,
	CodeDifferentCredential: http.StatusConflict,
	CodeMissingEmail:        http.StatusBadRequest,
	CodeInvalidActionCode:   http.StatusBadRequest,
	CodeProviderDisabled:    http.StatusNotImplemented,
	CodeInvalidOAuthState:   http.StatusBadRequest,
	CodeOAuthExchangeFailed: http.StatusBadGateway,
}

var authErrorMessage = map[string]string{
	CodeInvalidCredential:   "Invalid email or password.",
	CodeTooManyRequests:     "Access to this account has been temporarily disabled due to many failed login attempts.",
	CodeUserDisabled:        "This account has been disabled.",
	CodeEmailAlreadyInUse:   "This email address is already in use.",
	CodeWeakPassword:        "Password must be at least 6 characters long.",
	CodeEmailNotVerified:    "Please verify your email before logging in. A new verification link has been sent.",
	CodeUserNotFound:        "No account found with this email address.",
	CodeDifferentCredential: "An account already exists with the same email address but different sign-in credentials.",
	CodeMissingEmail:        "Please enter your email address.",
	CodeInvalidActionCode:   "The link is invalid or has expired.",
	CodeProviderDisabled:    "Google sign-in is not enabled.",
	CodeInvalidOAuthState:   "The sign-in request expired. Please try again.",
	CodeOAuthExchangeFailed: "Could not complete Google sign-in.",
}

// AuthError is an authentication failure with a stable code.
type AuthError struct {
	Code    string
	Message string
	Cause   error
}

// NewAuthError returns the error for code with its standard message.
func NewAuthError(code string) *AuthError {
	return &AuthError{Code: code, Message: authErrorMessage[code]}
}

func (e *AuthError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = defaultAuthFailureMessage
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *AuthError) Unwrap() error {
	return e.Cause
}

// ErrNotFound indicates a missing record
type ErrNotFound struct {
	Kind string
	ID   string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var authErr *AuthError
	var notFound *ErrNotFound
	var validation *ErrValidation
	var schemaErr *schemas.ValidationError
	var flowInput *flows.ValidationError
	var provider *flows.ProviderError
	var output *flows.OutputSchemaError
	var fetchErr *fetch.Error

	switch {
	case errors.As(err, &authErr):
		if status, ok := authErrorStatus[authErr.Code]; ok {
			return status
		}
		return http.StatusUnauthorized
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.As(err, &flowInput), errors.As(err, &schemaErr):
		return http.StatusBadRequest
	case errors.Is(err, ingestion.ErrDocumentTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ingestion.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ingestion.ErrInvalidDataURI), errors.Is(err, ingestion.ErrEmptyDocument):
		return http.StatusBadRequest
	case errors.As(err, &provider), errors.As(err, &output), errors.As(err, &fetchErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string               `json:"error"`
	Code    string               `json:"code,omitempty"`
	Details []schemas.FieldError `json:"details,omitempty"`
}

// errorBody builds the response for err. Internal errors are not echoed to clients.
func errorBody(err error) (int, ErrorBody) {
	status := HTTPStatus(err)

	var authErr *AuthError
	if errors.As(err, &authErr) {
		msg := authErr.Message
		if msg == "" {
			msg = defaultAuthFailureMessage
		}
		return status, ErrorBody{Error: msg, Code: authErr.Code}
	}

	body := ErrorBody{Error: err.Error()}
	var schemaErr *schemas.ValidationError
	if errors.As(err, &schemaErr) {
		body.Details = schemaErr.Errors
	}

	var provider *flows.ProviderError
	var output *flows.OutputSchemaError
	switch {
	case status == http.StatusInternalServerError:
		body.Error = "Internal server error"
	case errors.As(err, &provider):
		body.Code = "flow/provider-error"
		body.Error = "The AI service is unavailable. Please try again."
	case errors.As(err, &output):
		body.Code = "flow/output-schema-error"
		body.Error = "The AI service returned an unexpected response. Please try again."
	}
	return status, body
}
