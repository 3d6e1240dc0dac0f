package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/career-compass/internal/flows"
)

const assessmentResponse = `{
	"careerPaths": [
		{"title": "Frontend Developer", "reasoning": "Strong React projects.", "nextSteps": "Learn TypeScript.", "growthPotential": "High."},
		{"title": "Cloud Support Engineer", "reasoning": "AWS certification.", "nextSteps": "Get the associate certificate.", "growthPotential": "Steady."}
	],
	"summary": "Web development fits best."
}`

func TestAssess(t *testing.T) {
	p, err := readProfile(writeFile(t, "profile.json", sampleProfile))
	require.NoError(t, err)

	f, client := newTestFlows(assessmentResponse)
	printer, buf := newTestPrinter()
	out := filepath.Join(t.TempDir(), "assessment.json")

	require.NoError(t, assess(context.Background(), f, p, out, printer))

	prompt := client.lastPrompt(t)
	assert.Contains(t, prompt, "JavaScript")

	output := buf.String()
	assert.Contains(t, output, "PROFILE COMPLETENESS")
	assert.Contains(t, output, "Profile:  Asha Rao")
	assert.Contains(t, output, "#1  Frontend Developer")
	assert.Contains(t, output, "Web development fits best.")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Cloud Support Engineer")
}

func TestAssess_OutputSchemaError(t *testing.T) {
	p, err := readProfile(writeFile(t, "profile.json", sampleProfile))
	require.NoError(t, err)

	// A single path is below the minimum the assessment promises.
	f, _ := newTestFlows(`{"careerPaths": [{"title": "x", "reasoning": "y", "nextSteps": "z", "growthPotential": "w"}], "summary": "s"}`)
	printer, buf := newTestPrinter()

	err = assess(context.Background(), f, p, "", printer)
	var schemaErr *flows.OutputSchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.NotContains(t, buf.String(), "CAREER ASSESSMENT")
}

func TestResolveSkills(t *testing.T) {
	skills, err := resolveSkills("  JavaScript, React ", "")
	require.NoError(t, err)
	assert.Equal(t, "JavaScript, React", skills)

	skills, err = resolveSkills("", writeFile(t, "profile.json", sampleProfile))
	require.NoError(t, err)
	assert.Equal(t, "JavaScript, Python, React, Git, English, AWS Cloud Practitioner", skills)

	_, err = resolveSkills("", "")
	assert.ErrorContains(t, err, "one of --skills or --profile is required")

	_, err = resolveSkills("", writeFile(t, "empty.json", `{"fullName": "Asha"}`))
	assert.ErrorContains(t, err, "lists no skills")
}

func TestSkillGap(t *testing.T) {
	f, client := newTestFlows(`{"skillGaps": "TypeScript, testing", "recommendedResources": "TypeScript handbook"}`)
	printer, buf := newTestPrinter()

	require.NoError(t, skillGap(context.Background(), f, "JavaScript, React", "Senior Frontend Developer", printer))

	prompt := client.lastPrompt(t)
	assert.Contains(t, prompt, "JavaScript, React")
	assert.Contains(t, prompt, "Senior Frontend Developer")
	assert.Contains(t, buf.String(), "SKILL GAP ANALYSIS")
	assert.Contains(t, buf.String(), "TypeScript handbook")
}

func TestSkillGap_BlankTargetRejectedBeforeModelCall(t *testing.T) {
	f, client := newTestFlows(`{}`)
	printer, _ := newTestPrinter()

	err := skillGap(context.Background(), f, "JavaScript", "   ", printer)
	var inputErr *flows.ValidationError
	require.ErrorAs(t, err, &inputErr)
	assert.Empty(t, client.prompts)
}

func TestResumeInput(t *testing.T) {
	resume := writeFile(t, "resume.txt", "Asha Rao\n\nBuilt a React dashboard used by 200 students.\n")

	in, err := resumeInput(resume, "", "  Frontend Developer ")
	require.NoError(t, err)
	assert.Contains(t, in.ResumeText, "React dashboard")
	assert.Equal(t, "Frontend Developer", in.DesiredCareerPath)
	assert.Equal(t, localProfileID, in.UserProfile.ID)
	assert.Empty(t, in.UserProfile.FullName)

	in, err = resumeInput(resume, writeFile(t, "profile.json", sampleProfile), "")
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", in.UserProfile.FullName)

	_, err = resumeInput(filepath.Join(t.TempDir(), "missing.pdf"), "", "")
	assert.ErrorContains(t, err, "failed to read résumé")
}

func TestOptimize(t *testing.T) {
	resume := writeFile(t, "resume.txt", "Asha Rao\nBuilt a React dashboard.")
	in, err := resumeInput(resume, "", "Frontend Developer")
	require.NoError(t, err)

	t.Run("stdout", func(t *testing.T) {
		f, client := newTestFlows(`{"optimizedResume": "ASHA RAO\nFrontend Developer\nBuilt a React dashboard."}`)
		printer, buf := newTestPrinter()

		require.NoError(t, optimize(context.Background(), f, in, "", printer))
		assert.Contains(t, client.lastPrompt(t), "Built a React dashboard.")
		assert.Equal(t, "ASHA RAO\nFrontend Developer\nBuilt a React dashboard.\n", buf.String())
	})

	t.Run("file", func(t *testing.T) {
		f, _ := newTestFlows(`{"optimizedResume": "ASHA RAO"}`)
		printer, buf := newTestPrinter()
		out := filepath.Join(t.TempDir(), "resume.md")

		require.NoError(t, optimize(context.Background(), f, in, out, printer))
		assert.Empty(t, buf.String())

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, "ASHA RAO", string(data))
	})
}
