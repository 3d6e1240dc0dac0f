package server

import (
	"encoding/base64"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/career-compass/internal/llm"
	"github.com/jonathan/career-compass/internal/profile"
	"github.com/jonathan/career-compass/internal/seed"
	"github.com/jonathan/career-compass/internal/types"
)

const assessmentJSON = `{
  "careerPaths": [
    {"title": "Frontend Developer", "reasoning": "React projects.", "nextSteps": "Learn TypeScript.", "growthPotential": "High."},
    {"title": "Full Stack Developer", "reasoning": "Some Node.", "nextSteps": "Build an API.", "growthPotential": "High."}
  ],
  "summary": "Web development suits you."
}`

func TestProfile_GetCreatesDefault(t *testing.T) {
	env := newTestEnv(t)
	id, token := env.login(t, types.RoleUser)

	w := env.do(t, http.MethodGet, "/v1/me/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	p := decodeBody[types.UserProfile](t, w)
	assert.Equal(t, id.String(), p.ID)
	assert.Equal(t, "Test User", p.FullName)
	assert.NotNil(t, p.Tools)
	assert.Equal(t, types.UnitPercentage, p.TenthMarks.Type)
	assert.Nil(t, p.TenthMarks.Value)

	stored, err := env.store.GetProfile(t.Context(), id)
	require.NoError(t, err)
	assert.NotNil(t, stored)
}

func TestProfile_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/v1/me/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/v1/me/profile", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProfile_UpdateSanitizes(t *testing.T) {
	env := newTestEnv(t)
	id, token := env.login(t, types.RoleUser)

	w := env.do(t, http.MethodPut, "/v1/me/profile", token, `{
		"id": "someone-else",
		"email": "hijack@example.com",
		"fullName": "  Asha Rao ",
		"bio": "Final-year CS student",
		"tenthMarks": {"value": "", "type": "percentage"},
		"twelfthMarks": {"value": "91.5", "type": "percentage"},
		"graduationMarks": {"value": 8.4, "type": "gpa"},
		"tools": ["Git", "  ", "Docker"],
		"programmingLanguages": ["JavaScript"]
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	p := decodeBody[types.UserProfile](t, w)

	assert.Equal(t, id.String(), p.ID)
	assert.NotEqual(t, "hijack@example.com", p.Email)
	assert.Equal(t, "Asha Rao", p.FullName)
	assert.Nil(t, p.TenthMarks.Value)
	require.NotNil(t, p.TwelfthMarks.Value)
	assert.Equal(t, 91.5, *p.TwelfthMarks.Value)
	assert.Equal(t, types.UnitPercentage, p.GraduationMarks.Type, "unknown unit falls back to percentage")
	assert.Equal(t, []string{"Git", "Docker"}, p.Tools)

	w = env.do(t, http.MethodGet, "/v1/me/profile", token, nil)
	reloaded := decodeBody[types.UserProfile](t, w)
	assert.Equal(t, p, reloaded)
}

func TestProfile_UpdateInvalidJSON(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.login(t, types.RoleUser)

	w := env.do(t, http.MethodPut, "/v1/me/profile", token, "{")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCatalog_JobsCRUD(t *testing.T) {
	env := newTestEnv(t)
	_, userToken := env.login(t, types.RoleUser)
	_, adminToken := env.login(t, types.RoleAdmin)

	job := map[string]any{
		"title":     " SDE I ",
		"company":   "Airtel",
		"location":  "Gurugram",
		"tags":      []string{"Freshers", "freshers", " "},
		"applyLink": "https://example.com/apply",
	}

	w := env.do(t, http.MethodPost, "/v1/admin/jobs", userToken, job)
	assert.Equal(t, http.StatusForbidden, w.Code, "users cannot post jobs")

	w = env.do(t, http.MethodPost, "/v1/admin/jobs", adminToken, job)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeBody[types.JobListing](t, w)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "SDE I", created.Title)
	assert.Equal(t, []string{"Freshers"}, created.Tags)

	w = env.do(t, http.MethodGet, "/v1/jobs", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeBody[types.ListResponse[types.JobListing]](t, w)
	assert.Equal(t, 1, list.Count)

	w = env.do(t, http.MethodGet, "/v1/jobs/"+created.ID, userToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodDelete, "/v1/admin/jobs/"+created.ID, userToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodDelete, "/v1/admin/jobs/"+created.ID, adminToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodDelete, "/v1/admin/jobs/"+created.ID, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/v1/jobs/"+created.ID, userToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/v1/jobs/not-a-uuid", userToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCatalog_CreateJobValidation(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.login(t, types.RoleAdmin)

	w := env.do(t, http.MethodPost, "/v1/admin/jobs", adminToken, map[string]any{
		"title": "", "company": "Airtel", "location": "", "tags": []string{}, "applyLink": "ftp://nope",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody[ErrorBody](t, w)
	assert.NotEmpty(t, body.Details)
	assert.Empty(t, env.store.jobs)
}

func TestCatalog_Courses(t *testing.T) {
	env := newTestEnv(t)
	_, userToken := env.login(t, types.RoleUser)
	_, adminToken := env.login(t, types.RoleAdmin)

	for _, c := range []map[string]string{
		{"title": "React Basics", "category": "Web", "description": "Components and hooks", "link": "https://example.com/react", "imageUrl": "https://example.com/react.png"},
		{"title": "SQL 101", "category": "Data", "description": "Queries", "link": "https://example.com/sql", "imageUrl": "https://example.com/sql.png"},
	} {
		w := env.do(t, http.MethodPost, "/v1/admin/courses", adminToken, c)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := env.do(t, http.MethodPost, "/v1/admin/courses", adminToken, map[string]string{
		"title": "No image", "category": "Web", "description": "x", "link": "https://example.com", "imageUrl": "",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/v1/courses?q=react", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeBody[types.ListResponse[types.Course]](t, w)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "React Basics", list.Items[0].Title)

	w = env.do(t, http.MethodGet, "/v1/courses/"+list.Items[0].ID, userToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodDelete, "/v1/admin/courses/"+list.Items[0].ID, adminToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, "/v1/courses", userToken, nil)
	assert.Equal(t, 1, decodeBody[types.ListResponse[types.Course]](t, w).Count)
}

func TestCatalog_EmptyListIsArray(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.login(t, types.RoleUser)

	w := env.do(t, http.MethodGet, "/v1/jobs", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[],"count":0}`, w.Body.String())
}

func TestAdmin_SeedJobs(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.login(t, types.RoleAdmin)
	_, userToken := env.login(t, types.RoleUser)

	w := env.do(t, http.MethodPost, "/v1/admin/seed-jobs", userToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPost, "/v1/admin/seed-jobs", adminToken, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	result := decodeBody[seed.Result](t, w)
	assert.Equal(t, len(seed.Jobs()), result.Inserted)

	w = env.do(t, http.MethodPost, "/v1/admin/seed-jobs", adminToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Len(t, env.store.jobs, len(seed.Jobs()), "second run writes nothing")
}

func TestAdmin_ParseJobFromText(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.login(t, types.RoleAdmin)
	env.llm.respond = func(llm.Request) (string, error) {
		return `{"title":"Data Analyst","company":"Acme","location":"Pune","tags":["SQL","sql"],"applyLink":"https://made.up/link"}`, nil
	}

	w := env.do(t, http.MethodPost, "/v1/admin/parse-job", adminToken, map[string]string{
		"jobText": "Acme is hiring a Data Analyst in Pune. SQL required.",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeBody[parseJobResponse](t, w)
	require.NotNil(t, resp.Job)
	assert.Equal(t, "Data Analyst", resp.Job.Title)
	assert.Equal(t, []string{"SQL"}, resp.Job.Tags)
	assert.Empty(t, resp.Job.ApplyLink, "links absent from the posting are dropped")
	assert.Nil(t, resp.Source)
	assert.Empty(t, env.store.jobs, "parsing does not persist")
}

func TestAdmin_ParseJobRequiresInput(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.login(t, types.RoleAdmin)

	w := env.do(t, http.MethodPost, "/v1/admin/parse-job", adminToken, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/v1/admin/parse-job", adminToken, map[string]string{"url": "not a url"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFlows_CareerAssessmentUsesStoredProfile(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.login(t, types.RoleUser)
	env.llm.respond = func(llm.Request) (string, error) { return assessmentJSON, nil }

	w := env.do(t, http.MethodPut, "/v1/me/profile", token, map[string]any{"bio": "Loves building UIs"})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/v1/flows/career-assessment", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decodeBody[types.CareerAssessmentOutput](t, w)
	assert.Len(t, out.CareerPaths, 2)
	assert.Contains(t, env.llm.lastPrompt(), "Loves building UIs")
}

func TestFlows_CareerAssessmentErrors(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.login(t, types.RoleUser)

	env.llm.respond = func(llm.Request) (string, error) { return "", errors.New("quota exceeded") }
	w := env.do(t, http.MethodPost, "/v1/flows/career-assessment", token, nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	body := decodeBody[ErrorBody](t, w)
	assert.Equal(t, "flow/provider-error", body.Code)
	assert.NotContains(t, body.Error, "quota")

	env.llm.respond = func(llm.Request) (string, error) {
		return `{"careerPaths":[{"title":"Only one","reasoning":"r","nextSteps":"n","growthPotential":"g"}],"summary":"s"}`, nil
	}
	w = env.do(t, http.MethodPost, "/v1/flows/career-assessment", token, nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "flow/output-schema-error", errorCode(t, w))
}

func TestFlows_SkillGapDefaultsToProfileSkills(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.login(t, types.RoleUser)
	env.llm.respond = func(llm.Request) (string, error) {
		return `{"skillGaps":"TypeScript","recommendedResources":"The TS handbook"}`, nil
	}

	w := env.do(t, http.MethodPost, "/v1/flows/skill-gap", token, map[string]string{"desiredCareerPath": "Frontend Developer"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "an empty profile has no skills to analyze")

	w = env.do(t, http.MethodPut, "/v1/me/profile", token, map[string]any{
		"programmingLanguages": []string{"JavaScript"},
		"tools":                []string{"Git"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/v1/flows/skill-gap", token, map[string]string{"desiredCareerPath": "Frontend Developer"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decodeBody[types.SkillGapOutput](t, w)
	assert.Equal(t, "TypeScript", out.SkillGaps)
	assert.Contains(t, env.llm.lastPrompt(), "JavaScript, Git")

	w = env.do(t, http.MethodPost, "/v1/flows/skill-gap", token, map[string]string{
		"userSkills": "Python", "desiredCareerPath": "Data Analyst",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, env.llm.lastPrompt(), "Python")
}

func TestFlows_ResumeOptimization(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.login(t, types.RoleUser)
	env.llm.respond = func(llm.Request) (string, error) {
		return `{"optimizedResume":"Asha Rao\nFrontend Developer"}`, nil
	}

	resume := "Asha Rao\nBuilt a portfolio site in React."
	uri := "data:text/plain;base64," + base64.StdEncoding.EncodeToString([]byte(resume))
	w := env.do(t, http.MethodPost, "/v1/flows/resume-optimization", token, map[string]string{
		"resumeDataUri": uri, "desiredCareerPath": "Frontend Developer",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, env.llm.lastPrompt(), "Built a portfolio site in React.")
	assert.Contains(t, decodeBody[types.ResumeOptimizationOutput](t, w).OptimizedResume, "Frontend Developer")

	w = env.do(t, http.MethodPost, "/v1/flows/resume-optimization", token, map[string]string{
		"resumeDataUri": "data:image/png;base64,iVBORw0KGgo=",
	})
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	w = env.do(t, http.MethodPost, "/v1/flows/resume-optimization", token, map[string]string{"resumeDataUri": "nonsense"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/v1/flows/resume-optimization", token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFlows_JobParser(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.login(t, types.RoleUser)
	env.llm.respond = func(llm.Request) (string, error) {
		return `{"title":"","company":"","location":"","tags":[],"applyLink":""}`, nil
	}

	w := env.do(t, http.MethodPost, "/v1/flows/job-parser", token, map[string]string{"jobText": "We are hiring."})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	job := decodeBody[types.JobListing](t, w)
	assert.Empty(t, job.Title)
	assert.Equal(t, []string{}, job.Tags)

	w = env.do(t, http.MethodPost, "/v1/flows/job-parser", token, map[string]string{"jobText": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.login(t, types.RoleUser)
	env.store.courses = append(env.store.courses, types.Course{ID: uuid.NewString(), Title: "x"})

	w := env.do(t, http.MethodGet, "/v1/dashboard", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	d := decodeBody[Dashboard](t, w)
	assert.Equal(t, "Test User", d.FullName)
	assert.Equal(t, 0, d.JobCount)
	assert.Equal(t, 1, d.CourseCount)
	require.Len(t, d.Roadmap, 4)
	assert.Equal(t, MilestoneActive, d.Roadmap[0].Status)
	assert.Equal(t, MilestoneUpcoming, d.Roadmap[1].Status)
	assert.Len(t, d.Features, 3)
}

func TestDashboard_StoreError(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.login(t, types.RoleUser)
	env.store.failWith = errors.New("connection refused")

	w := env.do(t, http.MethodGet, "/v1/dashboard", token, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestRoadmap(t *testing.T) {
	low := Roadmap(profile.Completeness{Percent: 20})
	assert.Equal(t, MilestoneActive, low[0].Status)
	assert.Equal(t, MilestoneUpcoming, low[3].Status)

	ready := Roadmap(profile.Completeness{Percent: 50})
	assert.Equal(t, MilestoneCompleted, ready[0].Status)
	assert.Equal(t, MilestoneActive, ready[1].Status)
	assert.Equal(t, MilestoneUpcoming, ready[2].Status)
	assert.Equal(t, "Job Application", ready[3].Title)
}
