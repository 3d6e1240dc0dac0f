//nolint:revive // types is a standard Go package name pattern
package types

// CareerPath is one recommendation produced by the career assessment.
type CareerPath struct {
	Title           string `json:"title"`
	Reasoning       string `json:"reasoning"`
	NextSteps       string `json:"nextSteps"`
	GrowthPotential string `json:"growthPotential"`
}

// CareerAssessmentOutput is the ranked list of career paths for a profile.
type CareerAssessmentOutput struct {
	CareerPaths []CareerPath `json:"careerPaths"`
	Summary     string       `json:"summary"`
}

// SkillGapInput is the input to the skill-gap analysis.
type SkillGapInput struct {
	UserSkills        string `json:"userSkills"`
	DesiredCareerPath string `json:"desiredCareerPath"`
}

// SkillGapOutput lists missing skills and resources to close them.
type SkillGapOutput struct {
	SkillGaps            string `json:"skillGaps"`
	RecommendedResources string `json:"recommendedResources"`
}

// ResumeOptimizationInput is the input to the résumé rewrite.
type ResumeOptimizationInput struct {
	ResumeText        string      `json:"resumeText"`
	UserProfile       UserProfile `json:"userProfile"`
	DesiredCareerPath string      `json:"desiredCareerPath"`
}

// ResumeOptimizationOutput holds the rewritten résumé.
type ResumeOptimizationOutput struct {
	OptimizedResume string `json:"optimizedResume"`
}

// JobParserInput is raw job posting text.
type JobParserInput struct {
	JobText string `json:"jobText"`
}
