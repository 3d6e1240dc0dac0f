package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/career-compass/internal/server/middleware"
	"github.com/jonathan/career-compass/internal/types"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	auth      *AuthService
	jwt       *JWTService
	google    GoogleIdentity
	validator *validator.Validate
}

// NewAuthHandler creates a new AuthHandler. google may be nil when Google
// sign-in is not configured.
func NewAuthHandler(auth *AuthService, jwt *JWTService, google GoogleIdentity) *AuthHandler {
	return &AuthHandler{
		auth:      auth,
		jwt:       jwt,
		google:    google,
		validator: validator.New(),
	}
}

// Register handles email/password sign-up.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.auth.Register(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Login handles user login requests.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.auth.Login(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// VerifyEmail consumes an emailed verification token.
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req types.VerifyEmailRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.auth.VerifyEmail(r.Context(), req.Token); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Email verified. You can now log in."})
}

// RequestPasswordReset emails a reset link.
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req types.PasswordResetRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.auth.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password reset email sent. Check your inbox."})
}

// ConfirmPasswordReset sets a new password from a reset token.
func (h *AuthHandler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req types.PasswordResetConfirmRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.auth.ConfirmPasswordReset(r.Context(), req.Token, req.Password); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated. You can now log in."})
}

// UpdatePassword changes the signed-in caller's password.
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		writeError(w, NewAuthError(CodeInvalidCredential))
		return
	}

	var req types.UpdatePasswordRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.auth.UpdatePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
}

// GoogleStart redirects to the Google consent page.
func (h *AuthHandler) GoogleStart(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		writeError(w, NewAuthError(CodeProviderDisabled))
		return
	}
	state, err := h.jwt.GenerateStateToken()
	if err != nil {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, h.google.AuthURL(state), http.StatusFound)
}

// GoogleCallback completes Google sign-in and returns a session.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		writeError(w, NewAuthError(CodeProviderDisabled))
		return
	}
	q := r.URL.Query()
	if q.Get("error") != "" {
		writeError(w, &AuthError{Code: CodeOAuthExchangeFailed, Message: "Google sign-in was cancelled."})
		return
	}
	if err := h.jwt.ValidateStateToken(q.Get("state")); err != nil {
		writeError(w, &AuthError{Code: CodeInvalidOAuthState, Message: authErrorMessage[CodeInvalidOAuthState], Cause: err})
		return
	}
	code := q.Get("code")
	if code == "" {
		writeError(w, &ErrValidation{Field: "code", Message: "authorization code is required"})
		return
	}

	user, err := h.google.Identify(r.Context(), code)
	if err != nil {
		writeError(w, &AuthError{Code: CodeOAuthExchangeFailed, Message: authErrorMessage[CodeOAuthExchangeFailed], Cause: err})
		return
	}
	resp, err := h.auth.GoogleSignIn(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// decode reads the JSON body into dst and validates it. It writes the error
// response and returns false on failure.
func (h *AuthHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, &ErrValidation{Field: "body", Message: "invalid JSON"})
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		writeError(w, extractValidationErrors(err))
		return false
	}
	return true
}

// extractValidationErrors maps validator errors to auth codes where one
// exists, and otherwise to an ErrValidation for the first failing field.
func extractValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return &ErrValidation{Field: "body", Message: "invalid request"}
	}

	// Return first validation error for simplicity
	ve := validationErrors[0]
	switch {
	case ve.Field() == "Email" && ve.Tag() == "required":
		return NewAuthError(CodeMissingEmail)
	case (ve.Field() == "Password" || ve.Field() == "NewPassword") && ve.Tag() == "min":
		return NewAuthError(CodeWeakPassword)
	}
	return &ErrValidation{Field: ve.Field(), Message: ve.Tag()}
}
