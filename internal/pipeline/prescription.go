package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/clinidocs/summarizer/internal/extract"
	"github.com/clinidocs/summarizer/internal/llm"
	"github.com/clinidocs/summarizer/internal/parse"
)

// MedicationRecord is the caller-facing result of the prescription task: the
// generator's extraction enriched with a purpose looked up per medication.
type MedicationRecord struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
	Purpose   string `json:"purpose"`
}

// PrescriptionTask turns one prescription document into a medication list.
type PrescriptionTask struct {
	logger    *slog.Logger
	extractor *extract.Extractor
	generator llm.Generator
}

func NewPrescriptionTask(extractor *extract.Extractor, generator llm.Generator, logger *slog.Logger) *PrescriptionTask {
	if logger == nil {
		logger = slog.Default()
	}
	return &PrescriptionTask{logger: logger, extractor: extractor, generator: generator}
}

func (t *PrescriptionTask) Name() string { return "prescription" }

// Run extracts the prescription text, asks the generator for a JSON-shaped
// medication list, and fills each medication's purpose with a second call.
// A malformed extraction reply degrades to an empty list; a failed purpose
// lookup degrades to a placeholder. Extraction and the first generation call
// are the only stages that fail the document.
func (t *PrescriptionTask) Run(ctx context.Context, doc extract.Document) ([]MedicationRecord, error) {
	start := time.Now()

	text, err := t.extractor.Extract(ctx, doc)
	if err != nil {
		return nil, err
	}

	reply, err := t.generator.Generate(ctx, llm.PromptExtractMedications, map[string]string{
		"prescription_text": text.Content,
	})
	if err != nil {
		return nil, err
	}

	meds, err := parse.Medications(reply)
	if err != nil {
		// One malformed reply must not abort an otherwise-successful
		// pipeline; surface "no medications found" instead.
		t.logger.Warn("prescription.parse.degraded",
			"document", doc.Name,
			"error", err,
			"reply_len", len(reply),
		)
		meds = nil
	}

	records := make([]MedicationRecord, 0, len(meds))
	for _, m := range meds {
		records = append(records, MedicationRecord{
			Name:      m.Name,
			Dosage:    m.Dosage,
			Frequency: m.Frequency,
			Purpose:   t.lookupPurpose(ctx, m.Name),
		})
	}

	t.logger.Info("prescription.ok",
		"document", doc.Name,
		"medications", len(records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return records, nil
}

func (t *PrescriptionTask) lookupPurpose(ctx context.Context, name string) string {
	purpose, err := t.generator.Generate(ctx, llm.PromptMedicationPurpose, map[string]string{
		"medication_name": name,
	})
	if err != nil {
		t.logger.Warn("prescription.purpose.degraded", "medication", name, "error", err)
		return fmt.Sprintf("Purpose unavailable for %s", name)
	}
	return purpose
}
