package server

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/career-compass/internal/db"
	"github.com/jonathan/career-compass/internal/types"
)

// Store is the persistence the HTTP handlers need. *db.DB implements it.
type Store interface {
	CreateAccount(ctx context.Context, input *db.AccountCreateInput) (*db.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*db.Account, error)
	GetAccountByID(ctx context.Context, id uuid.UUID) (*db.Account, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	MarkVerified(ctx context.Context, id uuid.UUID) error
	RecordLoginFailure(ctx context.Context, id uuid.UUID, maxAttempts int, lockFor time.Duration) (*db.LoginFailure, error)
	ResetLoginFailures(ctx context.Context, id uuid.UUID) error
	CreateAuthToken(ctx context.Context, accountID uuid.UUID, purpose, token string, ttl time.Duration) error
	ConsumeAuthToken(ctx context.Context, purpose, token string) (uuid.UUID, error)

	GetProfile(ctx context.Context, accountID uuid.UUID) (*types.UserProfile, error)
	CreateProfileIfMissing(ctx context.Context, accountID uuid.UUID, p *types.UserProfile) (*types.UserProfile, bool, error)
	SaveProfile(ctx context.Context, accountID uuid.UUID, p *types.UserProfile) (*types.UserProfile, error)

	ListJobs(ctx context.Context) ([]types.JobListing, error)
	GetJob(ctx context.Context, id uuid.UUID) (*types.JobListing, error)
	CreateJob(ctx context.Context, job *types.JobListing) (*types.JobListing, error)
	DeleteJob(ctx context.Context, id uuid.UUID) (bool, error)
	CountJobs(ctx context.Context) (int, error)
	InsertJobsIfEmpty(ctx context.Context, jobs []types.JobListing) (int, error)

	ListCourses(ctx context.Context, query string) ([]types.Course, error)
	GetCourse(ctx context.Context, id uuid.UUID) (*types.Course, error)
	CreateCourse(ctx context.Context, course *types.Course) (*types.Course, error)
	DeleteCourse(ctx context.Context, id uuid.UUID) (bool, error)
	CountCourses(ctx context.Context) (int, error)
}

// Notifier delivers catalog change events for a set of channels until ctx
// is cancelled. *db.DB implements it with LISTEN/NOTIFY.
type Notifier interface {
	Listen(ctx context.Context, channels []string, fn func(channel string, c db.Change)) error
}

var (
	_ Store    = (*db.DB)(nil)
	_ Notifier = (*db.DB)(nil)
)
