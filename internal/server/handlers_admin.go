package server

import (
	"log"
	"net/http"
	"strings"

	"github.com/jonathan/career-compass/internal/fetch"
	"github.com/jonathan/career-compass/internal/ingestion"
	"github.com/jonathan/career-compass/internal/seed"
	"github.com/jonathan/career-compass/internal/types"
)

type parseJobRequest struct {
	JobText string `json:"jobText"`
	URL     string `json:"url"`
}

// parseJobResponse is a parsed job for the admin to review before posting.
type parseJobResponse struct {
	Job    *types.JobListing `json:"job"`
	Source *fetch.Page       `json:"source,omitempty"`
}

// handleSeedJobs inserts the starter job listings into an empty jobs table.
func (s *Server) handleSeedJobs(w http.ResponseWriter, r *http.Request) {
	result, err := seed.Seed(r.Context(), s.store)
	if err != nil {
		writeError(w, err)
		return
	}
	if result.Aborted {
		log.Printf("[admin] seed-jobs skipped: %d jobs already exist", result.Existing)
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":    "Jobs already exist. Seeding was skipped.",
			"code":     "seed/not-empty",
			"existing": result.Existing,
		})
		return
	}
	log.Printf("[admin] seed-jobs inserted %d jobs", result.Inserted)
	writeJSON(w, http.StatusCreated, result)
}

// handleParseJob extracts a job from pasted text or a posting URL. The
// result is returned for review and is not persisted.
func (s *Server) handleParseJob(w http.ResponseWriter, r *http.Request) {
	var req parseJobRequest
	if err := decodeOptional(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	resp := parseJobResponse{}
	text := req.JobText
	if strings.TrimSpace(text) == "" {
		if strings.TrimSpace(req.URL) == "" {
			writeError(w, &ErrValidation{Field: "jobText", Message: "job text or a posting URL is required"})
			return
		}
		if _, err := fetch.ValidateURL(req.URL); err != nil {
			writeError(w, &ErrValidation{Field: "url", Message: "must be an absolute http(s) URL"})
			return
		}
		doc, page, err := ingestion.JobFromURL(r.Context(), strings.TrimSpace(req.URL), s.jobPage)
		if err != nil {
			writeError(w, err)
			return
		}
		text = doc.Text
		resp.Source = page
	}

	job, err := s.flows.ParseJobPosting(r.Context(), text)
	if err != nil {
		writeError(w, err)
		return
	}
	resp.Job = job
	writeJSON(w, http.StatusOK, resp)
}
