// Package seed populates an empty jobs table with a fixed starter listing.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/career-compass/internal/schemas"
	"github.com/jonathan/career-compass/internal/types"
)

// ErrNotEmpty is returned by Store.InsertJobsIfEmpty when jobs already exist.
var ErrNotEmpty = errors.New("jobs table is not empty")

// Store is the persistence needed for seeding.
type Store interface {
	CountJobs(ctx context.Context) (int, error)
	// InsertJobsIfEmpty inserts all jobs in one transaction, or returns
	// ErrNotEmpty without writing if any job exists at commit time.
	InsertJobsIfEmpty(ctx context.Context, jobs []types.JobListing) (int, error)
}

// Result reports what a seed run did.
type Result struct {
	Inserted int  `json:"inserted"`
	Existing int  `json:"existing"`
	Aborted  bool `json:"aborted"`
}

// Seed inserts Jobs() when the jobs table is empty. On a non-empty table it
// writes nothing and reports Aborted.
func Seed(ctx context.Context, store Store) (*Result, error) {
	return SeedJobs(ctx, store, Jobs())
}

// SeedJobs is Seed with an explicit job list.
func SeedJobs(ctx context.Context, store Store, jobs []types.JobListing) (*Result, error) {
	for i := range jobs {
		if err := schemas.Validate(schemas.JobListing, jobs[i]); err != nil {
			return nil, fmt.Errorf("seed job %d (%s at %s) is invalid: %w", i, jobs[i].Title, jobs[i].Company, err)
		}
	}

	existing, err := store.CountJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count jobs: %w", err)
	}
	if existing > 0 {
		return &Result{Existing: existing, Aborted: true}, nil
	}

	inserted, err := store.InsertJobsIfEmpty(ctx, jobs)
	if errors.Is(err, ErrNotEmpty) {
		// Another seed won the race between the count and the insert.
		existing, err = store.CountJobs(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count jobs: %w", err)
		}
		return &Result{Existing: existing, Aborted: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert seed jobs: %w", err)
	}
	return &Result{Inserted: inserted}, nil
}
