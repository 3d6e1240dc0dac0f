package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/career-compass/internal/config"
	"github.com/jonathan/career-compass/internal/db"
	"github.com/jonathan/career-compass/internal/mail"
	"github.com/jonathan/career-compass/internal/profile"
	"github.com/jonathan/career-compass/internal/types"
)

// Lockout and token lifetimes.
const (
	MaxLoginAttempts = 5
	LockoutDuration  = 15 * time.Minute
	VerifyTokenTTL   = 48 * time.Hour
	ResetTokenTTL    = time.Hour
)

// AuthService provides business logic for account authentication.
type AuthService struct {
	store     Store
	passwords *config.PasswordConfig
	jwt       *JWTService
	mailer    mail.Mailer
	baseURL   string
	now       func() time.Time
}

// NewAuthService creates a new AuthService. baseURL is the web app origin
// used in emailed links.
func NewAuthService(store Store, passwords *config.PasswordConfig, jwt *JWTService, mailer mail.Mailer, baseURL string) *AuthService {
	return &AuthService{
		store:     store,
		passwords: passwords,
		jwt:       jwt,
		mailer:    mailer,
		baseURL:   strings.TrimRight(baseURL, "/"),
		now:       time.Now,
	}
}

// Register creates a password account with a default profile and emails a
// verification link. No session is issued until the email is verified.
func (s *AuthService) Register(ctx context.Context, req *types.RegisterRequest) (*types.RegisterResponse, error) {
	hash, err := s.passwords.HashPassword(req.Password)
	if err != nil {
		if isWeakPassword(err) {
			return nil, NewAuthError(CodeWeakPassword)
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account, err := s.store.CreateAccount(ctx, &db.AccountCreateInput{
		Email:        req.Email,
		FullName:     strings.TrimSpace(req.FullName()),
		PasswordHash: hash,
		Provider:     db.ProviderPassword,
	})
	if err != nil {
		if errors.Is(err, db.ErrEmailExists) {
			return nil, NewAuthError(CodeEmailAlreadyInUse)
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	if err := s.ensureProfile(ctx, account); err != nil {
		return nil, err
	}

	if err := s.sendVerification(ctx, account); err != nil {
		log.Printf("[auth] verification email to %s failed: %v", account.Email, err)
	}

	return &types.RegisterResponse{
		Account: account.Public(),
		Message: "Account created. Check your inbox to verify your email before logging in.",
	}, nil
}

// Login checks credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, req *types.LoginRequest) (*types.LoginResponse, error) {
	account, err := s.store.GetAccountByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, NewAuthError(CodeInvalidCredential)
	}
	if account.Disabled {
		return nil, NewAuthError(CodeUserDisabled)
	}
	if account.IsLocked(s.now()) {
		return nil, NewAuthError(CodeTooManyRequests)
	}
	if !account.HasPassword() {
		return nil, NewAuthError(CodeInvalidCredential)
	}

	if !s.passwords.VerifyPassword(req.Password, account.PasswordHash) {
		failure, err := s.store.RecordLoginFailure(ctx, account.ID, MaxLoginAttempts, LockoutDuration)
		if err != nil {
			return nil, fmt.Errorf("failed to record login failure: %w", err)
		}
		if failure != nil && failure.LockedUntil != nil && s.now().Before(*failure.LockedUntil) {
			return nil, NewAuthError(CodeTooManyRequests)
		}
		return nil, NewAuthError(CodeInvalidCredential)
	}

	if account.FailedAttempts > 0 || account.LockedUntil != nil {
		if err := s.store.ResetLoginFailures(ctx, account.ID); err != nil {
			return nil, fmt.Errorf("failed to reset login failures: %w", err)
		}
	}

	if !account.Verified {
		if err := s.sendVerification(ctx, account); err != nil {
			log.Printf("[auth] verification email to %s failed: %v", account.Email, err)
		}
		return nil, NewAuthError(CodeEmailNotVerified)
	}

	return s.session(account)
}

// VerifyEmail marks the account behind a verification token as verified.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	accountID, err := s.store.ConsumeAuthToken(ctx, db.TokenVerifyEmail, token)
	if err != nil {
		if errors.Is(err, db.ErrTokenInvalid) {
			return NewAuthError(CodeInvalidActionCode)
		}
		return fmt.Errorf("failed to consume verification token: %w", err)
	}
	if err := s.store.MarkVerified(ctx, accountID); err != nil {
		return fmt.Errorf("failed to mark account verified: %w", err)
	}
	return nil
}

// RequestPasswordReset emails a reset link to a password account.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return NewAuthError(CodeMissingEmail)
	}
	account, err := s.store.GetAccountByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return NewAuthError(CodeUserNotFound)
	}
	if account.Disabled {
		return NewAuthError(CodeUserDisabled)
	}

	token := uuid.NewString()
	if err := s.store.CreateAuthToken(ctx, account.ID, db.TokenPasswordReset, token, ResetTokenTTL); err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}
	msg := mail.PasswordResetEmail(account.Email, account.FullName, s.link("/reset-password", token))
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	return nil
}

// ConfirmPasswordReset sets a new password using an emailed reset token.
// Completing a reset also proves ownership of the address.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token, password string) error {
	if err := s.passwords.CheckStrength(password); err != nil {
		return NewAuthError(CodeWeakPassword)
	}
	accountID, err := s.store.ConsumeAuthToken(ctx, db.TokenPasswordReset, token)
	if err != nil {
		if errors.Is(err, db.ErrTokenInvalid) {
			return NewAuthError(CodeInvalidActionCode)
		}
		return fmt.Errorf("failed to consume reset token: %w", err)
	}
	hash, err := s.passwords.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.store.UpdatePassword(ctx, accountID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if err := s.store.MarkVerified(ctx, accountID); err != nil {
		return fmt.Errorf("failed to mark account verified: %w", err)
	}
	return nil
}

// UpdatePassword changes the password of a signed-in account after
// checking the current one.
func (s *AuthService) UpdatePassword(ctx context.Context, accountID uuid.UUID, currentPassword, newPassword string) error {
	account, err := s.store.GetAccountByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return &ErrNotFound{Kind: "account", ID: accountID.String()}
	}
	if !account.HasPassword() || !s.passwords.VerifyPassword(currentPassword, account.PasswordHash) {
		return NewAuthError(CodeInvalidCredential)
	}

	hash, err := s.passwords.HashPassword(newPassword)
	if err != nil {
		if isWeakPassword(err) {
			return NewAuthError(CodeWeakPassword)
		}
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.store.UpdatePassword(ctx, accountID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// GoogleSignIn signs in, or signs up, the owner of a Google identity.
// An email already registered with a password is not linked.
func (s *AuthService) GoogleSignIn(ctx context.Context, user *GoogleUser) (*types.LoginResponse, error) {
	if user == nil || user.Email == "" || !user.VerifiedEmail {
		return nil, NewAuthError(CodeOAuthExchangeFailed)
	}

	account, err := s.store.GetAccountByEmail(ctx, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account != nil {
		if account.Provider != db.ProviderGoogle {
			return nil, NewAuthError(CodeDifferentCredential)
		}
		if account.Disabled {
			return nil, NewAuthError(CodeUserDisabled)
		}
		return s.session(account)
	}

	account, err = s.store.CreateAccount(ctx, &db.AccountCreateInput{
		Email:    user.Email,
		FullName: user.Name,
		PhotoURL: user.Picture,
		Provider: db.ProviderGoogle,
		Verified: true,
	})
	if err != nil {
		if errors.Is(err, db.ErrEmailExists) {
			return nil, NewAuthError(CodeDifferentCredential)
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	if err := s.ensureProfile(ctx, account); err != nil {
		return nil, err
	}
	return s.session(account)
}

func (s *AuthService) session(account *db.Account) (*types.LoginResponse, error) {
	token, err := s.jwt.GenerateToken(account.ID, account.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &types.LoginResponse{Account: account.Public(), Token: token}, nil
}

func (s *AuthService) ensureProfile(ctx context.Context, account *db.Account) error {
	p := profile.Default(account.ID.String(), account.Email, account.FullName, account.PhotoURL)
	if _, _, err := s.store.CreateProfileIfMissing(ctx, account.ID, p); err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (s *AuthService) sendVerification(ctx context.Context, account *db.Account) error {
	token := uuid.NewString()
	if err := s.store.CreateAuthToken(ctx, account.ID, db.TokenVerifyEmail, token, VerifyTokenTTL); err != nil {
		return fmt.Errorf("failed to create verification token: %w", err)
	}
	msg := mail.VerificationEmail(account.Email, account.FullName, s.link("/verify-email", token))
	return s.mailer.Send(ctx, msg)
}

func (s *AuthService) link(path, token string) string {
	return s.baseURL + path + "?token=" + url.QueryEscape(token)
}

func isWeakPassword(err error) bool {
	return errors.Is(err, config.ErrPasswordTooShort) || errors.Is(err, config.ErrPasswordTooLong)
}
