package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/career-compass/internal/seed"
	"github.com/jonathan/career-compass/internal/types"
)

// -----------------------------------------------------------------------------
// Job Methods
// -----------------------------------------------------------------------------

const jobColumns = `id, title, company, location, tags, apply_link, created_at`

func scanJob(row pgx.Row) (*types.JobListing, error) {
	var j types.JobListing
	var id uuid.UUID
	var tagsJSON []byte
	if err := row.Scan(&id, &j.Title, &j.Company, &j.Location, &tagsJSON, &j.ApplyLink, &j.CreatedAt); err != nil {
		return nil, err
	}
	j.ID = id.String()
	j.Tags = []string{}
	if tagsJSON != nil {
		_ = json.Unmarshal(tagsJSON, &j.Tags)
	}
	return &j, nil
}

func marshalTags(tags []string) ([]byte, error) {
	if tags == nil {
		tags = []string{}
	}
	return json.Marshal(tags)
}

// ListJobs returns all jobs, newest first.
func (db *DB) ListJobs(ctx context.Context) ([]types.JobListing, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := []types.JobListing{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

// GetJob returns nil, nil when no job matches.
func (db *DB) GetJob(ctx context.Context, id uuid.UUID) (*types.JobListing, error) {
	j, err := scanJob(db.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return j, nil
}

// CreateJob inserts a single job.
func (db *DB) CreateJob(ctx context.Context, job *types.JobListing) (*types.JobListing, error) {
	tags, err := marshalTags(job.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tags: %w", err)
	}
	j, err := scanJob(db.pool.QueryRow(ctx,
		`INSERT INTO jobs (title, company, location, tags, apply_link)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+jobColumns,
		job.Title, job.Company, job.Location, tags, job.ApplyLink,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return j, nil
}

// DeleteJob removes a job. Returns false when it did not exist.
func (db *DB) DeleteJob(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := db.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete job: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// CountJobs returns the number of jobs.
func (db *DB) CountJobs(ctx context.Context) (int, error) {
	var n int
	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count jobs: %w", err)
	}
	return n, nil
}

// InsertJobsIfEmpty inserts jobs in one transaction while holding an
// exclusive lock on the table. Returns seed.ErrNotEmpty without writing
// when any job exists.
func (db *DB) InsertJobsIfEmpty(ctx context.Context, jobs []types.JobListing) (int, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `LOCK TABLE jobs IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return 0, fmt.Errorf("failed to lock jobs: %w", err)
	}

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM jobs)`).Scan(&exists); err != nil {
		return 0, fmt.Errorf("failed to check jobs: %w", err)
	}
	if exists {
		return 0, seed.ErrNotEmpty
	}

	batch := &pgx.Batch{}
	for i := range jobs {
		tags, err := marshalTags(jobs[i].Tags)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal tags: %w", err)
		}
		batch.Queue(
			`INSERT INTO jobs (title, company, location, tags, apply_link) VALUES ($1, $2, $3, $4, $5)`,
			jobs[i].Title, jobs[i].Company, jobs[i].Location, tags, jobs[i].ApplyLink,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return 0, fmt.Errorf("failed to insert jobs: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return len(jobs), nil
}

// -----------------------------------------------------------------------------
// Course Methods
// -----------------------------------------------------------------------------

const courseColumns = `id, title, category, description, link, image_url, created_at`

func scanCourse(row pgx.Row) (*types.Course, error) {
	var c types.Course
	var id uuid.UUID
	if err := row.Scan(&id, &c.Title, &c.Category, &c.Description, &c.Link, &c.ImageURL, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.ID = id.String()
	return &c, nil
}

// ListCourses returns courses newest first. A non-empty query keeps courses
// whose title, category or description contains it, ignoring case.
func (db *DB) ListCourses(ctx context.Context, query string) ([]types.Course, error) {
	sql := `SELECT ` + courseColumns + ` FROM courses`
	args := []any{}
	if query != "" {
		sql += ` WHERE title ILIKE $1 OR category ILIKE $1 OR description ILIKE $1`
		args = append(args, likePattern(query))
	}
	sql += ` ORDER BY created_at DESC, id`

	rows, err := db.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	defer rows.Close()

	courses := []types.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, *c)
	}
	return courses, rows.Err()
}

// GetCourse returns nil, nil when no course matches.
func (db *DB) GetCourse(ctx context.Context, id uuid.UUID) (*types.Course, error) {
	c, err := scanCourse(db.pool.QueryRow(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return c, nil
}

// CreateCourse inserts a single course.
func (db *DB) CreateCourse(ctx context.Context, course *types.Course) (*types.Course, error) {
	c, err := scanCourse(db.pool.QueryRow(ctx,
		`INSERT INTO courses (title, category, description, link, image_url)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+courseColumns,
		course.Title, course.Category, course.Description, course.Link, course.ImageURL,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}
	return c, nil
}

// DeleteCourse removes a course. Returns false when it did not exist.
func (db *DB) DeleteCourse(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := db.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete course: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// CountCourses returns the number of courses.
func (db *DB) CountCourses(ctx context.Context) (int, error) {
	var n int
	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM courses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count courses: %w", err)
	}
	return n, nil
}
