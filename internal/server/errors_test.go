package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/career-compass/internal/fetch"
	"github.com/jonathan/career-compass/internal/flows"
	"github.com/jonathan/career-compass/internal/ingestion"
	"github.com/jonathan/career-compass/internal/llm"
	"github.com/jonathan/career-compass/internal/schemas"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid credential", NewAuthError(CodeInvalidCredential), http.StatusUnauthorized},
		{"too many requests", NewAuthError(CodeTooManyRequests), http.StatusTooManyRequests},
		{"email in use", NewAuthError(CodeEmailAlreadyInUse), http.StatusConflict},
		{"unknown auth code", &AuthError{Code: "auth/other"}, http.StatusUnauthorized},
		{"wrapped auth error", fmt.Errorf("login: %w", NewAuthError(CodeUserDisabled)), http.StatusForbidden},
		{"not found", &ErrNotFound{Kind: "job", ID: "1"}, http.StatusNotFound},
		{"validation", &ErrValidation{Field: "body", Message: "bad"}, http.StatusBadRequest},
		{"schema", &schemas.ValidationError{Schema: schemas.Course}, http.StatusBadRequest},
		{"flow input", &flows.ValidationError{Flow: flows.SkillGap}, http.StatusBadRequest},
		{"too large", fmt.Errorf("upload: %w", ingestion.ErrDocumentTooLarge), http.StatusRequestEntityTooLarge},
		{"unsupported", ingestion.ErrUnsupportedType, http.StatusUnsupportedMediaType},
		{"bad data uri", ingestion.ErrInvalidDataURI, http.StatusBadRequest},
		{"provider", &flows.ProviderError{Flow: flows.JobParser}, http.StatusBadGateway},
		{"output schema", &flows.OutputSchemaError{Flow: flows.JobParser}, http.StatusBadGateway},
		{"fetch", &fetch.Error{URL: "https://example.com", Message: "timeout"}, http.StatusBadGateway},
		{"response schema", fmt.Errorf("%s: %w", flows.SkillGap, llm.ErrInvalidSchema), http.StatusInternalServerError},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestErrorBody(t *testing.T) {
	status, body := errorBody(NewAuthError(CodeWeakPassword))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, CodeWeakPassword, body.Code)
	assert.Equal(t, "Password must be at least 6 characters long.", body.Error)

	status, body = errorBody(&AuthError{Code: "auth/other"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, defaultAuthFailureMessage, body.Error)

	_, body = errorBody(errors.New("pq: password authentication failed for user"))
	assert.Equal(t, "Internal server error", body.Error)

	_, body = errorBody(&schemas.ValidationError{
		Schema: schemas.JobListing,
		Errors: []schemas.FieldError{{Field: "title", Message: "String length must be greater than or equal to 1"}},
	})
	assert.Len(t, body.Details, 1)
	assert.Equal(t, "title", body.Details[0].Field)
}

func TestAuthError_Error(t *testing.T) {
	err := &AuthError{Code: CodeOAuthExchangeFailed, Message: "failed", Cause: errors.New("network")}
	assert.Equal(t, "auth/oauth-exchange-failed: failed: network", err.Error())
	assert.ErrorIs(t, err, err.Cause)
}
