package llm

import (
	"context"
	"errors"
)

// PromptID names one fixed prompt template.
type PromptID string

const (
	// PromptExtractMedications turns prescription text into a JSON-shaped
	// medication list.
	PromptExtractMedications PromptID = "extract_medications"
	// PromptMedicationPurpose asks for a short free-text explanation of one
	// medication.
	PromptMedicationPurpose PromptID = "medication_purpose"
	// PromptSummarizeReport asks for a four-section free-text summary of a
	// medical report.
	PromptSummarizeReport PromptID = "summarize_report"
)

// Generation failure kinds.
var (
	// ErrMissingVariable means the prompt could not be rendered; it is raised
	// before any network call.
	ErrMissingVariable = errors.New("missing prompt variable")
	// ErrServiceUnavailable wraps network, timeout, and non-2xx failures from
	// the generation service.
	ErrServiceUnavailable = errors.New("generation service unavailable")
)

// Generator is the interface the pipeline depends on. One invocation performs
// exactly one external call; clients do not retry internally. An empty reply
// is not an error here, the parser diagnoses it downstream.
type Generator interface {
	Generate(ctx context.Context, id PromptID, vars map[string]string) (string, error)
}
