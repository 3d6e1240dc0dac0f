package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jonathan/career-compass/internal/ingestion"
	"github.com/jonathan/career-compass/internal/profile"
	"github.com/jonathan/career-compass/internal/types"
)

// maxFlowBody bounds flow request bodies. A base64 data URI of the largest
// accepted résumé fits.
const maxFlowBody = 8 << 20

type careerAssessmentRequest struct {
	Profile *types.UserProfile `json:"profile"`
}

type resumeOptimizationRequest struct {
	ResumeDataURI     string `json:"resumeDataUri"`
	ResumeText        string `json:"resumeText"`
	DesiredCareerPath string `json:"desiredCareerPath"`
}

// decodeOptional decodes a JSON body into dst. An empty body leaves dst
// untouched.
func decodeOptional(w http.ResponseWriter, r *http.Request, dst any) error {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxFlowBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("request body over %d bytes: %w", tooLarge.Limit, ingestion.ErrDocumentTooLarge)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return &ErrValidation{Field: "body", Message: "invalid JSON"}
	}
	return nil
}

// handleCareerAssessment recommends career paths for the submitted profile,
// or for the caller's stored profile when none is submitted.
func (s *Server) handleCareerAssessment(w http.ResponseWriter, r *http.Request) {
	accountID, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req careerAssessmentRequest
	if err := decodeOptional(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	p := req.Profile
	if p == nil {
		if p, err = s.loadProfile(r.Context(), accountID); err != nil {
			writeError(w, err)
			return
		}
	} else {
		// The caller may only assess as themselves.
		p.ID = accountID.String()
		profile.Normalize(p)
	}

	out, err := s.flows.AssessCareerPaths(r.Context(), *p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleSkillGap analyzes missing skills. userSkills defaults to the skills
// summary of the caller's profile.
func (s *Server) handleSkillGap(w http.ResponseWriter, r *http.Request) {
	accountID, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req types.SkillGapInput
	if err := decodeOptional(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.UserSkills) == "" {
		p, err := s.loadProfile(r.Context(), accountID)
		if err != nil {
			writeError(w, err)
			return
		}
		req.UserSkills = profile.SkillsSummary(p)
	}

	out, err := s.flows.AnalyzeSkillGap(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleResumeOptimization rewrites an uploaded résumé against the caller's
// profile and target role.
func (s *Server) handleResumeOptimization(w http.ResponseWriter, r *http.Request) {
	accountID, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req resumeOptimizationRequest
	if err := decodeOptional(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	var resumeText string
	switch {
	case strings.TrimSpace(req.ResumeDataURI) != "":
		doc, err := ingestion.FromDataURI(req.ResumeDataURI)
		if err != nil {
			writeError(w, err)
			return
		}
		resumeText = doc.Text
	case strings.TrimSpace(req.ResumeText) != "":
		resumeText = ingestion.CleanText(req.ResumeText)
	default:
		writeError(w, &ErrValidation{Field: "resumeDataUri", Message: "a résumé file or résumé text is required"})
		return
	}

	p, err := s.loadProfile(r.Context(), accountID)
	if err != nil {
		writeError(w, err)
		return
	}

	out, err := s.flows.OptimizeResume(r.Context(), types.ResumeOptimizationInput{
		ResumeText:        resumeText,
		UserProfile:       *p,
		DesiredCareerPath: strings.TrimSpace(req.DesiredCareerPath),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleJobParser extracts job fields from posting text. Nothing is stored.
func (s *Server) handleJobParser(w http.ResponseWriter, r *http.Request) {
	var req types.JobParserInput
	if err := decodeOptional(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	job, err := s.flows.ParseJobPosting(r.Context(), req.JobText)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}
