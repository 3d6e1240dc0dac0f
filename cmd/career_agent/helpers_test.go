package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jonathan/career-compass/internal/flows"
	"github.com/jonathan/career-compass/internal/llm"
	"github.com/jonathan/career-compass/internal/observability"
)

// fakeLLM answers every structured call with response.
type fakeLLM struct {
	mu       sync.Mutex
	response string
	err      error
	prompts  []string
	closed   bool
}

func (f *fakeLLM) GenerateContent(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func (f *fakeLLM) GenerateStructured(_ context.Context, req llm.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, req.Prompt)
	return f.response, f.err
}

func (f *fakeLLM) GetModel(llm.ModelTier) string { return "fake" }

func (f *fakeLLM) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeLLM) lastPrompt(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.prompts, "model was not called")
	return f.prompts[len(f.prompts)-1]
}

func newTestFlows(response string) (*flows.Flows, *fakeLLM) {
	client := &fakeLLM{response: response}
	return flows.New(client), client
}

func newTestPrinter() (*observability.Printer, *bytes.Buffer) {
	var buf bytes.Buffer
	return observability.NewPrinter(&buf), &buf
}

// writeFile writes content under t.TempDir and returns its path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const sampleProfile = `{
	"fullName": "Asha Rao",
	"bio": "Final-year CS student",
	"tenthMarks": {"value": "92.4", "type": "percentage"},
	"twelfthMarks": {"value": "", "type": "percentage"},
	"diplomaMarks": {"value": null, "type": "percentage"},
	"graduationMarks": {"value": 8.1, "type": "cgpa"},
	"programmingLanguages": ["JavaScript", " ", "Python"],
	"tools": ["React", "Git"],
	"languages": ["English"],
	"courses": [],
	"certifications": ["AWS Cloud Practitioner"]
}`
