// Package flows binds prompt templates and JSON Schemas to single,
// schema-constrained model calls. A flow validates its input, renders its
// prompt, makes exactly one provider call and validates what comes back.
// Nothing is retried or cached.
package flows

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jonathan/career-compass/internal/llm"
	"github.com/jonathan/career-compass/internal/prompts"
	"github.com/jonathan/career-compass/internal/schemas"
)

// Flow is one prompt/schema pair executed against the model.
type Flow[In, Out any] struct {
	Name         string
	InputSchema  string
	OutputSchema string
	PromptKey    string
	Tier         llm.ModelTier
	Temperature  float32

	// Vars maps the input onto the prompt template's placeholders.
	Vars func(in *In) (map[string]string, error)
	// Defaults fills top-level output keys the model left out before the
	// output is validated. Keys present with a null value are kept.
	Defaults map[string]any
	// Post, if set, adjusts a decoded, schema-valid output.
	Post func(in *In, out *Out)

	client llm.Client
}

// Run executes the flow once.
func (f *Flow[In, Out]) Run(ctx context.Context, in In) (*Out, error) {
	if err := schemas.Validate(f.InputSchema, in); err != nil {
		return nil, &ValidationError{Flow: f.Name, Cause: err}
	}

	prompt, err := f.render(&in)
	if err != nil {
		return nil, err
	}

	outputSchema, err := schemas.Raw(f.OutputSchema)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name, err)
	}

	raw, err := f.client.GenerateStructured(ctx, llm.Request{
		Prompt:      prompt,
		Schema:      outputSchema,
		Tier:        f.Tier,
		Temperature: f.Temperature,
	})
	if errors.Is(err, llm.ErrInvalidSchema) {
		return nil, fmt.Errorf("%s: %w", f.Name, err)
	}
	if err != nil {
		return nil, &ProviderError{Flow: f.Name, Message: "generation failed", Cause: err}
	}
	if raw == "" {
		return nil, &ProviderError{Flow: f.Name, Message: "empty response"}
	}

	raw = f.applyDefaults(raw)
	if err := schemas.ValidateBytes(f.OutputSchema, []byte(raw)); err != nil {
		return nil, &OutputSchemaError{Flow: f.Name, Raw: raw, Cause: err}
	}

	var out Out
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, &OutputSchemaError{Flow: f.Name, Raw: raw, Cause: err}
	}

	if f.Post != nil {
		f.Post(&in, &out)
	}
	return &out, nil
}

// applyDefaults returns raw with missing keys filled from f.Defaults. Output
// that is not a JSON object is returned unchanged for validation to reject.
func (f *Flow[In, Out]) applyDefaults(raw string) string {
	if len(f.Defaults) == 0 {
		return raw
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil || obj == nil {
		return raw
	}
	changed := false
	for key, value := range f.Defaults {
		if _, ok := obj[key]; !ok {
			obj[key] = value
			changed = true
		}
	}
	if !changed {
		return raw
	}
	filled, err := json.Marshal(obj)
	if err != nil {
		return raw
	}
	return string(filled)
}

// Prompt renders the prompt for in without calling the model.
func (f *Flow[In, Out]) Prompt(in In) (string, error) {
	return f.render(&in)
}

func (f *Flow[In, Out]) render(in *In) (string, error) {
	template, err := prompts.Get(prompts.Careers, f.PromptKey)
	if err != nil {
		return "", fmt.Errorf("%s: %w", f.Name, err)
	}
	vars, err := f.Vars(in)
	if err != nil {
		return "", &ValidationError{Flow: f.Name, Cause: err}
	}
	prompt, err := prompts.Render(template, vars)
	if err != nil {
		return "", fmt.Errorf("%s: %w", f.Name, err)
	}
	return prompt, nil
}
