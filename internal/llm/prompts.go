package llm

import (
	"fmt"
	"strings"
)

// promptTemplate is a fixed textual pattern with named {placeholder} slots.
// A template may pin its own sampling temperature; tasks that recover strict
// structure from the reply run cold.
type promptTemplate struct {
	text        string
	vars        []string
	temperature *float32
}

const extractMedicationsTemplate = `Extract medication details from this prescription text.
Return ONLY valid JSON in this format:
{
  "medications": [
    {
      "name": "medication name",
      "dosage": "dosage amount",
      "frequency": "frequency"
    }
  ]
}

Text: {prescription_text}`

const medicationPurposeTemplate = `Briefly explain what '{medication_name}' is used for. Keep it simple and under 3 sentences.`

const summarizeReportTemplate = `You are an experienced medical assistant tasked with summarizing medical reports.
Analyze the following patient report and provide a structured summary.

Requirements:
- Use clear, concise, and professional medical language
- Avoid reproducing protected health information (PHI)
- Highlight critical findings and recommendations
- Structure the response in four sections:
  1. Overall Condition: General health status of the patient
  2. Test Results: Key laboratory or imaging findings
  3. Diagnosis: Primary diagnosis or clinical impression
  4. Follow-up: Recommended treatments or follow-up actions

Medical Report:
{report_text}

Summary (use the specified structure):`

var registry = map[PromptID]promptTemplate{
	PromptExtractMedications: {
		text:        extractMedicationsTemplate,
		vars:        []string{"prescription_text"},
		temperature: ptr(float32(0.0)),
	},
	PromptMedicationPurpose: {
		text: medicationPurposeTemplate,
		vars: []string{"medication_name"},
	},
	PromptSummarizeReport: {
		text:        summarizeReportTemplate,
		vars:        []string{"report_text"},
		temperature: ptr(float32(0.3)),
	},
}

// Render fills the template for id with the supplied variables. A missing
// required variable (or an unknown prompt id) fails with ErrMissingVariable
// before any network call is made.
func Render(id PromptID, vars map[string]string) (string, error) {
	tpl, ok := registry[id]
	if !ok {
		return "", fmt.Errorf("%w: unknown prompt id %q", ErrMissingVariable, id)
	}
	out := tpl.text
	for _, name := range tpl.vars {
		v, ok := vars[name]
		if !ok {
			return "", fmt.Errorf("%w: prompt %q requires %q", ErrMissingVariable, id, name)
		}
		out = strings.ReplaceAll(out, "{"+name+"}", v)
	}
	return out, nil
}

// TemperatureFor returns the prompt's pinned temperature, or fallback when
// the template does not override it.
func TemperatureFor(id PromptID, fallback float32) float32 {
	if tpl, ok := registry[id]; ok && tpl.temperature != nil {
		return *tpl.temperature
	}
	return fallback
}

func ptr[T any](v T) *T { return &v }
