package server

import (
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/career-compass/internal/profile"
	"github.com/jonathan/career-compass/internal/types"
)

// Milestone statuses.
const (
	MilestoneCompleted = "completed"
	MilestoneActive    = "active"
	MilestoneUpcoming  = "upcoming"
)

// assessmentReadyPercent is the profile completeness at which the
// self-assessment step counts as done.
const assessmentReadyPercent = 50

// Milestone is one step of the career roadmap.
type Milestone struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// FeatureCard links a dashboard tile to a flow.
type FeatureCard struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Endpoint    string `json:"endpoint"`
}

// Dashboard is the signed-in landing summary.
type Dashboard struct {
	FullName     string               `json:"fullName"`
	Completeness profile.Completeness `json:"completeness"`
	JobCount     int                  `json:"jobCount"`
	CourseCount  int                  `json:"courseCount"`
	Roadmap      []Milestone          `json:"roadmap"`
	Features     []FeatureCard        `json:"features"`
}

var roadmapSteps = []Milestone{
	{Title: "Self-Assessment", Description: "Complete your profile and take the AI career assessment."},
	{Title: "Explore Careers", Description: "Review recommended career paths and what each one needs."},
	{Title: "Skill Development", Description: "Close your skill gaps with recommended courses and projects."},
	{Title: "Job Application", Description: "Optimize your résumé and apply to matching jobs."},
}

var featureCards = []FeatureCard{
	{
		Title:       "AI Career Assessment",
		Description: "Get personalized career path recommendations based on your profile.",
		Endpoint:    "/v1/flows/career-assessment",
	},
	{
		Title:       "Skill Gap Analysis",
		Description: "Find the skills you need for your target role and where to learn them.",
		Endpoint:    "/v1/flows/skill-gap",
	},
	{
		Title:       "Resume Optimizer",
		Description: "Rewrite your résumé for the role you want.",
		Endpoint:    "/v1/flows/resume-optimization",
	},
}

// Roadmap derives milestone statuses from profile completeness. Steps after
// the first completed one are not tracked yet, so the next is active and the
// rest upcoming.
func Roadmap(c profile.Completeness) []Milestone {
	active := 0
	if c.Percent >= assessmentReadyPercent {
		active = 1
	}
	out := make([]Milestone, len(roadmapSteps))
	for i, step := range roadmapSteps {
		step.Status = MilestoneUpcoming
		switch {
		case i < active:
			step.Status = MilestoneCompleted
		case i == active:
			step.Status = MilestoneActive
		}
		out[i] = step
	}
	return out
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	accountID, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var (
		p           *types.UserProfile
		jobCount    int
		courseCount int
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		p, err = s.loadProfile(ctx, accountID)
		return err
	})
	g.Go(func() error {
		var err error
		if jobCount, err = s.store.CountJobs(ctx); err != nil {
			return fmt.Errorf("failed to count jobs: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if courseCount, err = s.store.CountCourses(ctx); err != nil {
			return fmt.Errorf("failed to count courses: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		writeError(w, err)
		return
	}

	completeness := profile.Measure(p)
	features := make([]FeatureCard, len(featureCards))
	copy(features, featureCards)
	writeJSON(w, http.StatusOK, Dashboard{
		FullName:     p.FullName,
		Completeness: completeness,
		JobCount:     jobCount,
		CourseCount:  courseCount,
		Roadmap:      Roadmap(completeness),
		Features:     features,
	})
}
