package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/career-compass/internal/profile"
	"github.com/jonathan/career-compass/internal/schemas"
	"github.com/jonathan/career-compass/internal/server/middleware"
	"github.com/jonathan/career-compass/internal/types"
)

// callerID returns the authenticated account ID. Routes behind
// AuthMiddleware always carry one.
func callerID(r *http.Request) (uuid.UUID, error) {
	id, err := middleware.GetUserID(r)
	if err != nil {
		return uuid.Nil, NewAuthError(CodeInvalidCredential)
	}
	return id, nil
}

// loadProfile returns the caller's profile, creating the default one on
// first access.
func (s *Server) loadProfile(ctx context.Context, accountID uuid.UUID) (*types.UserProfile, error) {
	p, err := s.store.GetProfile(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if p != nil {
		profile.Normalize(p)
		return p, nil
	}

	account, err := s.store.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, &ErrNotFound{Kind: "account", ID: accountID.String()}
	}
	p, _, err = s.store.CreateProfileIfMissing(ctx, accountID,
		profile.Default(accountID.String(), account.Email, account.FullName, account.PhotoURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	profile.Normalize(p)
	return p, nil
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	accountID, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := s.loadProfile(r.Context(), accountID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleUpdateProfile sanitizes the submitted form and merges it into the
// stored profile. id and email always come from the stored record.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	accountID, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var form profile.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, &ErrValidation{Field: "body", Message: "invalid JSON"})
		return
	}

	p, err := s.loadProfile(r.Context(), accountID)
	if err != nil {
		writeError(w, err)
		return
	}
	profile.Apply(p, &form)
	profile.Normalize(p)
	if err := schemas.Validate(schemas.UserProfile, p); err != nil {
		writeError(w, err)
		return
	}

	saved, err := s.store.SaveProfile(r.Context(), accountID, p)
	if err != nil {
		writeError(w, fmt.Errorf("failed to save profile: %w", err))
		return
	}
	profile.Normalize(saved)
	writeJSON(w, http.StatusOK, saved)
}
