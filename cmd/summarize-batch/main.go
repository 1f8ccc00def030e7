package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/clinidocs/summarizer/constants"
	"github.com/clinidocs/summarizer/internal/common"
	"github.com/clinidocs/summarizer/internal/export"
	"github.com/clinidocs/summarizer/internal/extract"
	"github.com/clinidocs/summarizer/internal/jobs"
	"github.com/clinidocs/summarizer/internal/llm/groq"
	"github.com/clinidocs/summarizer/internal/pipeline"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir    = flag.String("dir", "", "directory with .pdf/.txt documents to process (required)")
		task   = flag.String("task", "report", "task to run: report or prescription")
		out    = flag.String("out", "", "output XLSX path for report summaries (optional, defaults next to --dir)")
		jobsDB = flag.String("jobs-db", "", "SQLite path for the jobs audit trail (optional, in-memory if empty)")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *task != "report" && *task != "prescription" {
		printError("Error: --task must be report or prescription\n")
		os.Exit(1)
	}
	if *out == "" && *task == "report" {
		*out = filepath.Join(filepath.Dir(*dir), "summaries.xlsx")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()
	cfg := common.LoadConfig()
	if cfg.LLM.APIKey == "" {
		printError("Error: GROQ_API_KEY must be set\n")
		os.Exit(1)
	}

	docs, err := loadDocuments(*dir)
	if err != nil {
		logger.Error("failed to load documents", "dir", *dir, "error", err)
		os.Exit(1)
	}

	var recorder jobs.Recorder
	store, err := openStore(*jobsDB, logger)
	if err != nil {
		logger.Error("failed to open jobs db", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Warn("jobs db close failed", "error", cerr)
		}
	}()
	recorder = store

	extractor := extract.NewExtractor(extract.Config{Pdftotext: cfg.Extract.Pdftotext}, logger)
	generator := groq.NewClient(groq.Config{
		APIKey:          cfg.LLM.APIKey,
		BaseURL:         cfg.LLM.BaseURL,
		Model:           cfg.LLM.Model,
		Temperature:     cfg.LLM.Temperature,
		MaxOutputTokens: cfg.LLM.MaxOutputTokens,
		Timeout:         cfg.LLM.Timeout,
	}, logger)

	switch *task {
	case "report":
		runReports(ctx, docs, extractor, generator, recorder, *out, logger)
	case "prescription":
		runPrescriptions(ctx, docs, extractor, generator, recorder, logger)
	}
}

func openStore(path string, logger *slog.Logger) (*jobs.Store, error) {
	if path == "" {
		return jobs.OpenInMemory(logger)
	}
	return jobs.Open(path, logger)
}

// loadDocuments reads every supported file in dir (sorted by name) into
// memory as upload documents.
func loadDocuments(dir string) ([]extract.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var docs []extract.Document
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := constants.NormalizeExt(filepath.Ext(e.Name()))
		if _, ok := constants.AllowedExtensions[ext]; !ok {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		docs = append(docs, extract.Document{Name: e.Name(), Bytes: data})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })
	return docs, nil
}

func runReports(ctx context.Context, docs []extract.Document, extractor *extract.Extractor, generator *groq.Client, recorder jobs.Recorder, out string, logger *slog.Logger) {
	result, err := pipeline.RunBatch(ctx, docs, pipeline.NewReportTask(extractor, generator, logger), recorder, logger)
	if err != nil {
		logger.Error("batch failed", "error", err)
		os.Exit(1)
	}

	var failed int
	for _, outcome := range result {
		if outcome.Failed() {
			failed++
			fmt.Printf("FAILED  %s: %s\n", outcome.Name, outcome.Err)
		} else {
			fmt.Printf("OK      %s\n", outcome.Name)
		}
	}

	xlsx, err := export.NewService(logger).SummariesXLSX(result)
	if err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(out, xlsx, 0o644); err != nil {
		logger.Error("failed to write workbook", "path", out, "error", err)
		os.Exit(1)
	}
	fmt.Printf("\n%d documents (%d failed), summaries written to %s\n", len(result), failed, out)
}

func runPrescriptions(ctx context.Context, docs []extract.Document, extractor *extract.Extractor, generator *groq.Client, recorder jobs.Recorder, logger *slog.Logger) {
	result, err := pipeline.RunBatch(ctx, docs, pipeline.NewPrescriptionTask(extractor, generator, logger), recorder, logger)
	if err != nil {
		logger.Error("batch failed", "error", err)
		os.Exit(1)
	}

	for _, outcome := range result {
		if outcome.Failed() {
			fmt.Printf("FAILED  %s: %s\n", outcome.Name, outcome.Err)
			continue
		}
		fmt.Printf("%s: %d medications\n", outcome.Name, len(outcome.Result))
		printMedications(outcome.Result)
	}
}

func printMedications(records []pipeline.MedicationRecord) {
	if len(records) == 0 {
		fmt.Println("  no medications found")
		return
	}
	for i, med := range records {
		fmt.Printf("  %d. %s\n", i+1, med.Name)
		if med.Dosage != "" {
			fmt.Printf("     Dosage: %s\n", med.Dosage)
		}
		if med.Frequency != "" {
			fmt.Printf("     Frequency: %s\n", med.Frequency)
		}
		fmt.Printf("     Purpose: %s\n", med.Purpose)
	}
}
