package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/clinidocs/summarizer/internal/extract"
	"github.com/clinidocs/summarizer/internal/llm"
	"github.com/clinidocs/summarizer/internal/parse"
)

// ReportTask turns one medical report into a four-section summary.
type ReportTask struct {
	logger    *slog.Logger
	extractor *extract.Extractor
	generator llm.Generator
}

func NewReportTask(extractor *extract.Extractor, generator llm.Generator, logger *slog.Logger) *ReportTask {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportTask{logger: logger, extractor: extractor, generator: generator}
}

func (t *ReportTask) Name() string { return "report" }

// Run extracts the report text, asks the generator for a structured summary,
// and segments the free-text reply into the four sections. Segmentation
// never fails; sections the reply omits come back empty.
func (t *ReportTask) Run(ctx context.Context, doc extract.Document) (parse.Summary, error) {
	start := time.Now()

	text, err := t.extractor.Extract(ctx, doc)
	if err != nil {
		return parse.Summary{}, err
	}

	reply, err := t.generator.Generate(ctx, llm.PromptSummarizeReport, map[string]string{
		"report_text": text.Content,
	})
	if err != nil {
		return parse.Summary{}, err
	}

	summary := parse.Sections(reply)
	t.logger.Info("report.ok",
		"document", doc.Name,
		"reply_len", len(reply),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return summary, nil
}
