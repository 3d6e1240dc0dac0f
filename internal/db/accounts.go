package db

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrEmailExists is returned when creating an account whose email is taken.
var ErrEmailExists = errors.New("email already exists")

// ErrTokenInvalid is returned when a one-time token is unknown, used or expired.
var ErrTokenInvalid = errors.New("token is invalid or expired")

const accountColumns = `id, email, full_name, photo_url, password_hash, provider, role,
	verified, disabled, failed_attempts, locked_until, created_at, updated_at`

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	var photo, hash *string
	err := row.Scan(&a.ID, &a.Email, &a.FullName, &photo, &hash, &a.Provider, &a.Role,
		&a.Verified, &a.Disabled, &a.FailedAttempts, &a.LockedUntil, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.PhotoURL = derefString(photo)
	a.PasswordHash = derefString(hash)
	return &a, nil
}

// NormalizeEmail lowercases and trims an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateAccount inserts a new account. Returns ErrEmailExists on a duplicate email.
func (db *DB) CreateAccount(ctx context.Context, input *AccountCreateInput) (*Account, error) {
	provider := input.Provider
	if provider == "" {
		provider = ProviderPassword
	}
	a, err := scanAccount(db.pool.QueryRow(ctx,
		`INSERT INTO accounts (email, full_name, photo_url, password_hash, provider, verified)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+accountColumns,
		NormalizeEmail(input.Email), strings.TrimSpace(input.FullName), nullIfEmpty(input.PhotoURL),
		nullIfEmpty(input.PasswordHash), provider, input.Verified,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return a, nil
}

// GetAccountByEmail returns nil, nil when no account matches.
func (db *DB) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	a, err := scanAccount(db.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = $1`, NormalizeEmail(email)))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}
	return a, nil
}

// GetAccountByID returns nil, nil when no account matches.
func (db *DB) GetAccountByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	a, err := scanAccount(db.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return a, nil
}

// UpdatePassword sets a new password hash and clears any lockout.
func (db *DB) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE accounts SET password_hash = $2, failed_attempts = 0, locked_until = NULL, updated_at = NOW()
		 WHERE id = $1`,
		id, passwordHash,
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("account not found: %s", id)
	}
	return nil
}

// MarkVerified flags the account's email as verified.
func (db *DB) MarkVerified(ctx context.Context, id uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE accounts SET verified = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark account verified: %w", err)
	}
	return nil
}

// SetRole changes an account's role. Returns nil, nil when the email is unknown.
func (db *DB) SetRole(ctx context.Context, email, role string) (*Account, error) {
	a, err := scanAccount(db.pool.QueryRow(ctx,
		`UPDATE accounts SET role = $2, updated_at = NOW() WHERE email = $1
		 RETURNING `+accountColumns,
		NormalizeEmail(email), role,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to set role: %w", err)
	}
	return a, nil
}

// RecordLoginFailure increments the failure counter. When it reaches
// maxAttempts the account is locked for lockFor and the counter restarts.
func (db *DB) RecordLoginFailure(ctx context.Context, id uuid.UUID, maxAttempts int, lockFor time.Duration) (*LoginFailure, error) {
	var f LoginFailure
	err := db.pool.QueryRow(ctx,
		`UPDATE accounts SET
		     locked_until = CASE WHEN failed_attempts + 1 >= $2
		                         THEN NOW() + make_interval(secs => $3)
		                         ELSE locked_until END,
		     failed_attempts = CASE WHEN failed_attempts + 1 >= $2 THEN 0 ELSE failed_attempts + 1 END,
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING failed_attempts, locked_until`,
		id, maxAttempts, lockFor.Seconds(),
	).Scan(&f.FailedAttempts, &f.LockedUntil)
	if err != nil {
		return nil, fmt.Errorf("failed to record login failure: %w", err)
	}
	return &f, nil
}

// ResetLoginFailures clears the failure counter after a successful sign-in.
func (db *DB) ResetLoginFailures(ctx context.Context, id uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE accounts SET failed_attempts = 0, locked_until = NULL WHERE id = $1 AND failed_attempts > 0`, id)
	if err != nil {
		return fmt.Errorf("failed to reset login failures: %w", err)
	}
	return nil
}

// HashToken returns the stored form of a one-time token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// CreateAuthToken stores a one-time token for purpose, replacing any unused
// token of the same purpose for the account.
func (db *DB) CreateAuthToken(ctx context.Context, accountID uuid.UUID, purpose, token string, ttl time.Duration) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`DELETE FROM auth_tokens WHERE account_id = $1 AND purpose = $2 AND used_at IS NULL`,
		accountID, purpose); err != nil {
		return fmt.Errorf("failed to clear old tokens: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO auth_tokens (token_hash, account_id, purpose, expires_at)
		 VALUES ($1, $2, $3, $4)`,
		HashToken(token), accountID, purpose, time.Now().Add(ttl)); err != nil {
		return fmt.Errorf("failed to create token: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ConsumeAuthToken marks a token used and returns its account ID.
// Returns ErrTokenInvalid for unknown, used or expired tokens.
func (db *DB) ConsumeAuthToken(ctx context.Context, purpose, token string) (uuid.UUID, error) {
	var accountID uuid.UUID
	err := db.pool.QueryRow(ctx,
		`UPDATE auth_tokens SET used_at = NOW()
		 WHERE token_hash = $1 AND purpose = $2 AND used_at IS NULL AND expires_at > NOW()
		 RETURNING account_id`,
		HashToken(token), purpose,
	).Scan(&accountID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return uuid.Nil, ErrTokenInvalid
		}
		return uuid.Nil, fmt.Errorf("failed to consume token: %w", err)
	}
	return accountID, nil
}
