package flows

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/career-compass/internal/llm"
	"github.com/jonathan/career-compass/internal/schemas"
	"github.com/jonathan/career-compass/internal/types"
)

// Flow names, used in errors and logs.
const (
	CareerAssessment   = "career-assessment"
	SkillGap           = "skill-gap"
	ResumeOptimization = "resume-optimization"
	JobParser          = "job-parser"
)

// Flows holds the four configured flows sharing one model client.
type Flows struct {
	Assessment *Flow[types.UserProfile, types.CareerAssessmentOutput]
	SkillGap   *Flow[types.SkillGapInput, types.SkillGapOutput]
	Resume     *Flow[types.ResumeOptimizationInput, types.ResumeOptimizationOutput]
	JobParser  *Flow[types.JobParserInput, types.JobListing]
}

// New wires the flows to client.
func New(client llm.Client) *Flows {
	return &Flows{
		Assessment: &Flow[types.UserProfile, types.CareerAssessmentOutput]{
			Name:         CareerAssessment,
			InputSchema:  schemas.UserProfile,
			OutputSchema: schemas.CareerAssessmentOutput,
			PromptKey:    CareerAssessment,
			Tier:         llm.TierAdvanced,
			Temperature:  0.4,
			Vars: func(p *types.UserProfile) (map[string]string, error) {
				profile, err := profileJSON(p)
				if err != nil {
					return nil, err
				}
				return map[string]string{"Profile": profile, "PathCount": "2-3"}, nil
			},
			client: client,
		},
		SkillGap: &Flow[types.SkillGapInput, types.SkillGapOutput]{
			Name:         SkillGap,
			InputSchema:  schemas.SkillGapInput,
			OutputSchema: schemas.SkillGapOutput,
			PromptKey:    SkillGap,
			Tier:         llm.TierStandard,
			Temperature:  0.3,
			Vars: func(in *types.SkillGapInput) (map[string]string, error) {
				return map[string]string{
					"UserSkills":        strings.TrimSpace(in.UserSkills),
					"DesiredCareerPath": strings.TrimSpace(in.DesiredCareerPath),
				}, nil
			},
			client: client,
		},
		Resume: &Flow[types.ResumeOptimizationInput, types.ResumeOptimizationOutput]{
			Name:         ResumeOptimization,
			InputSchema:  schemas.ResumeOptimizationInput,
			OutputSchema: schemas.ResumeOptimizationOutput,
			PromptKey:    ResumeOptimization,
			Tier:         llm.TierAdvanced,
			Temperature:  0.3,
			Vars: func(in *types.ResumeOptimizationInput) (map[string]string, error) {
				profile, err := profileJSON(&in.UserProfile)
				if err != nil {
					return nil, err
				}
				target := strings.TrimSpace(in.DesiredCareerPath)
				if target == "" {
					target = "(not specified; optimize for the roles the résumé already targets)"
				}
				return map[string]string{
					"ResumeText":        in.ResumeText,
					"Profile":           profile,
					"DesiredCareerPath": target,
				}, nil
			},
			client: client,
		},
		JobParser: &Flow[types.JobParserInput, types.JobListing]{
			Name:         JobParser,
			InputSchema:  schemas.JobParserInput,
			OutputSchema: schemas.JobParserOutput,
			PromptKey:    JobParser,
			Tier:         llm.TierLite,
			Vars: func(in *types.JobParserInput) (map[string]string, error) {
				return map[string]string{"JobText": in.JobText}, nil
			},
			Defaults: map[string]any{
				"title":     "",
				"company":   "",
				"location":  "",
				"tags":      []string{},
				"applyLink": "",
			},
			Post: func(in *types.JobParserInput, out *types.JobListing) {
				NormalizeParsedJob(in.JobText, out)
			},
			client: client,
		},
	}
}

// AssessCareerPaths recommends career paths for a profile.
func (f *Flows) AssessCareerPaths(ctx context.Context, profile types.UserProfile) (*types.CareerAssessmentOutput, error) {
	return f.Assessment.Run(ctx, profile)
}

// AnalyzeSkillGap compares current skills with a target role.
func (f *Flows) AnalyzeSkillGap(ctx context.Context, in types.SkillGapInput) (*types.SkillGapOutput, error) {
	return f.SkillGap.Run(ctx, in)
}

// OptimizeResume rewrites résumé text for a target role.
func (f *Flows) OptimizeResume(ctx context.Context, in types.ResumeOptimizationInput) (*types.ResumeOptimizationOutput, error) {
	return f.Resume.Run(ctx, in)
}

// ParseJobPosting extracts job fields from raw posting text.
func (f *Flows) ParseJobPosting(ctx context.Context, jobText string) (*types.JobListing, error) {
	return f.JobParser.Run(ctx, types.JobParserInput{JobText: jobText})
}

func profileJSON(p *types.UserProfile) (string, error) {
	// Identity fields carry no signal for the model.
	clean := *p
	clean.ID = ""
	clean.Email = ""
	clean.PhotoURL = ""
	data, err := json.MarshalIndent(clean, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal profile: %w", err)
	}
	return string(data), nil
}

// NormalizeParsedJob trims extracted fields, drops empty and duplicate tags,
// and clears an apply link that does not occur in the source text.
func NormalizeParsedJob(sourceText string, job *types.JobListing) {
	job.Title = strings.TrimSpace(job.Title)
	job.Company = strings.TrimSpace(job.Company)
	job.Location = strings.TrimSpace(job.Location)
	job.ApplyLink = strings.TrimSpace(job.ApplyLink)
	job.Tags = NormalizeTags(job.Tags)

	if job.ApplyLink != "" && !strings.Contains(sourceText, strings.TrimRight(job.ApplyLink, "/")) {
		job.ApplyLink = ""
	}
}

// NormalizeTags trims tags and removes empty and case-insensitive duplicates,
// keeping first occurrences in order. The result is never nil.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, tag)
	}
	return out
}
