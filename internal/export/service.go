package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/clinidocs/summarizer/internal/parse"
	"github.com/clinidocs/summarizer/internal/pipeline"
)

// Service renders batch results as XLSX workbooks for the batch CLI.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// SummariesXLSX returns an XLSX workbook (as bytes) with one row per batch
// outcome: the four summary sections for successful documents, the error
// text for failed ones.
func (s *Service) SummariesXLSX(result pipeline.BatchResult[parse.Summary]) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Summaries"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Filename",
		"Overall Condition",
		"Test Results",
		"Diagnosis",
		"Follow-up",
		"Error",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for i, outcome := range result {
		row := []any{
			outcome.Name,
			outcome.Result.OverallCondition,
			outcome.Result.TestResults,
			outcome.Result.Diagnosis,
			outcome.Result.FollowUp,
			outcome.Err,
		}
		for j, v := range row {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("write row %d: %w", i+1, err)
			}
		}
	}

	// Drop the default sheet so the workbook opens on Summaries.
	if sheet != "Sheet1" {
		_ = f.DeleteSheet("Sheet1")
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(result),
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
