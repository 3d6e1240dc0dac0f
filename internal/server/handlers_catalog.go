package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/career-compass/internal/db"
	"github.com/jonathan/career-compass/internal/flows"
	"github.com/jonathan/career-compass/internal/schemas"
	"github.com/jonathan/career-compass/internal/types"
)

// pathID parses the {id} path value. A malformed ID cannot name a record,
// so it reports not found.
func pathID(r *http.Request, kind string) (uuid.UUID, error) {
	raw := r.PathValue("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, &ErrNotFound{Kind: kind, ID: raw}
	}
	return id, nil
}

func (s *Server) listJobs(ctx context.Context) (*types.ListResponse[types.JobListing], error) {
	jobs, err := s.store.ListJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	if jobs == nil {
		jobs = []types.JobListing{}
	}
	return &types.ListResponse[types.JobListing]{Items: jobs, Count: len(jobs)}, nil
}

func (s *Server) listCourses(ctx context.Context, query string) (*types.ListResponse[types.Course], error) {
	courses, err := s.store.ListCourses(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	if courses == nil {
		courses = []types.Course{}
	}
	return &types.ListResponse[types.Course]{Items: courses, Count: len(courses)}, nil
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	resp, err := s.listJobs(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "job")
	if err != nil {
		writeError(w, err)
		return
	}
	job, err := s.store.GetJob(r.Context(), id)
	if err != nil {
		writeError(w, fmt.Errorf("failed to get job: %w", err))
		return
	}
	if job == nil {
		writeError(w, &ErrNotFound{Kind: "job", ID: id.String()})
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var job types.JobListing
	if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
		writeError(w, &ErrValidation{Field: "body", Message: "invalid JSON"})
		return
	}
	job.ID = ""
	job.Title = strings.TrimSpace(job.Title)
	job.Company = strings.TrimSpace(job.Company)
	job.Location = strings.TrimSpace(job.Location)
	job.ApplyLink = strings.TrimSpace(job.ApplyLink)
	job.Tags = flows.NormalizeTags(job.Tags)
	job.CreatedAt = time.Time{}

	if err := schemas.Validate(schemas.JobListing, job); err != nil {
		writeError(w, err)
		return
	}
	created, err := s.store.CreateJob(r.Context(), &job)
	if err != nil {
		writeError(w, fmt.Errorf("failed to create job: %w", err))
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "job")
	if err != nil {
		writeError(w, err)
		return
	}
	deleted, err := s.store.DeleteJob(r.Context(), id)
	if err != nil {
		writeError(w, fmt.Errorf("failed to delete job: %w", err))
		return
	}
	if !deleted {
		writeError(w, &ErrNotFound{Kind: "job", ID: id.String()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	resp, err := s.listCourses(r.Context(), strings.TrimSpace(r.URL.Query().Get("q")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "course")
	if err != nil {
		writeError(w, err)
		return
	}
	course, err := s.store.GetCourse(r.Context(), id)
	if err != nil {
		writeError(w, fmt.Errorf("failed to get course: %w", err))
		return
	}
	if course == nil {
		writeError(w, &ErrNotFound{Kind: "course", ID: id.String()})
		return
	}
	writeJSON(w, http.StatusOK, course)
}

func (s *Server) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	var course types.Course
	if err := json.NewDecoder(r.Body).Decode(&course); err != nil {
		writeError(w, &ErrValidation{Field: "body", Message: "invalid JSON"})
		return
	}
	course.ID = ""
	course.Title = strings.TrimSpace(course.Title)
	course.Category = strings.TrimSpace(course.Category)
	course.Description = strings.TrimSpace(course.Description)
	course.Link = strings.TrimSpace(course.Link)
	course.ImageURL = strings.TrimSpace(course.ImageURL)
	course.CreatedAt = time.Time{}

	if err := schemas.Validate(schemas.Course, course); err != nil {
		writeError(w, err)
		return
	}
	created, err := s.store.CreateCourse(r.Context(), &course)
	if err != nil {
		writeError(w, fmt.Errorf("failed to create course: %w", err))
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteCourse(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "course")
	if err != nil {
		writeError(w, err)
		return
	}
	deleted, err := s.store.DeleteCourse(r.Context(), id)
	if err != nil {
		writeError(w, fmt.Errorf("failed to delete course: %w", err))
		return
	}
	if !deleted {
		writeError(w, &ErrNotFound{Kind: "course", ID: id.String()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleJobsStream(w http.ResponseWriter, r *http.Request) {
	s.streamCatalog(w, r, db.ChannelJobs, func(ctx context.Context) (any, error) {
		return s.listJobs(ctx)
	})
}

func (s *Server) handleCoursesStream(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	s.streamCatalog(w, r, db.ChannelCourses, func(ctx context.Context) (any, error) {
		return s.listCourses(ctx, query)
	})
}

// streamCatalog sends a "snapshot" event with the full list, then a fresh
// snapshot after every change notification on channel, until the client
// disconnects. All streams share the server's single change listener.
func (s *Server) streamCatalog(w http.ResponseWriter, r *http.Request, channel string, snapshot func(context.Context) (any, error)) {
	ctx := r.Context()

	// Subscribe first so a change between the snapshot and the loop is not lost.
	var changes <-chan db.Change
	if s.changes != nil {
		ch, unsubscribe := s.changes.Subscribe(channel)
		defer unsubscribe()
		changes = ch
	}

	first, err := snapshot(ctx)
	if err != nil {
		writeError(w, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := sse.WriteEvent("snapshot", first); err != nil {
		return
	}

	heartbeat := time.NewTicker(s.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-changes:
			snap, err := snapshot(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("[stream] %s reload failed: %v", channel, err)
				sse.WriteError("Failed to reload the list.")
				continue
			}
			if err := sse.WriteEvent("change", c); err != nil {
				return
			}
			if err := sse.WriteEvent("snapshot", snap); err != nil {
				return
			}
		case <-heartbeat.C:
			if err := sse.WriteHeartbeat(); err != nil {
				return
			}
		}
	}
}
