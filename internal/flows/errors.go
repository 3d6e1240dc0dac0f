package flows

import "fmt"

// ValidationError means the flow input did not satisfy its schema. The provider was not called.
type ValidationError struct {
	Flow  string
	Cause error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid input: %v", e.Flow, e.Cause)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// ProviderError means the model call itself failed (network, quota, timeout, empty response).
type ProviderError struct {
	Flow    string
	Message string
	Cause   error
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: provider call failed: %s: %v", e.Flow, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: provider call failed: %s", e.Flow, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// OutputSchemaError means the model responded but the response did not match the output schema.
type OutputSchemaError struct {
	Flow  string
	Raw   string
	Cause error
}

func (e *OutputSchemaError) Error() string {
	return fmt.Sprintf("%s: response does not match output schema: %v", e.Flow, e.Cause)
}

func (e *OutputSchemaError) Unwrap() error {
	return e.Cause
}
