// Package server exposes the two upload endpoints of the original system:
// a single-document prescription analyzer and a multi-document report
// summarizer. Uploads are read fully into memory, handed to the pipeline,
// and never persisted.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/clinidocs/summarizer/internal/common"
	"github.com/clinidocs/summarizer/internal/extract"
	"github.com/clinidocs/summarizer/internal/jobs"
	"github.com/clinidocs/summarizer/internal/parse"
	"github.com/clinidocs/summarizer/internal/pipeline"
)

type Service struct {
	logger         *slog.Logger
	prescriptions  *pipeline.PrescriptionTask
	reports        *pipeline.ReportTask
	recorder       jobs.Recorder
	maxUploadBytes int64
}

func NewService(prescriptions *pipeline.PrescriptionTask, reports *pipeline.ReportTask, recorder jobs.Recorder, maxUploadBytes int64, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = 32 << 20
	}
	return &Service{
		logger:         logger,
		prescriptions:  prescriptions,
		reports:        reports,
		recorder:       recorder,
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes wires the upload endpoints onto a fresh mux.
func (s *Service) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /prescriptions/analyze", s.handlePrescription)
	mux.HandleFunc("POST /reports/summarize", s.handleReports)
	return s.withRequestID(mux)
}

func (s *Service) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := uuid.New().String()
		ctx := common.WithRequestID(r.Context(), rid)
		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		s.logger.Info("http.request.done",
			"req_id", rid,
			"method", r.Method,
			"path", r.URL.Path,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	})
}

// handlePrescription accepts one multipart file under "file" and returns the
// analyzed medication list.
func (s *Service) handlePrescription(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.readUpload(w, r, "file")
	if !ok {
		return
	}

	records, err := s.prescriptions.Run(r.Context(), doc)
	if err != nil {
		s.logger.Error("http.prescription.failed",
			"req_id", common.RequestIDFromContext(r.Context()),
			"document", doc.Name,
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"medications": records})
}

type reportEntry struct {
	Filename string         `json:"filename"`
	Summary  *parse.Summary `json:"summary,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// handleReports accepts multipart files under "files" (repeatable) and
// returns one entry per upload, in upload order. Individual failures are
// reported inline; only an empty upload set is a request error.
func (s *Service) handleReports(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "malformed multipart request"})
		return
	}
	var docs []extract.Document
	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["files"] {
			doc, err := readFileHeader(fh)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "unreadable upload: " + fh.Filename})
				return
			}
			docs = append(docs, doc)
		}
	}

	result, err := pipeline.RunBatch(r.Context(), docs, s.reports, s.recorder, s.logger)
	if err != nil {
		if errors.Is(err, pipeline.ErrEmptyBatch) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "No files uploaded."})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": err.Error()})
		return
	}

	entries := make([]reportEntry, 0, len(result))
	for _, outcome := range result {
		entry := reportEntry{Filename: outcome.Name}
		if outcome.Failed() {
			entry.Error = outcome.Err
		} else {
			summary := outcome.Result
			entry.Summary = &summary
		}
		entries = append(entries, entry)
	}
	writeJSON(w, http.StatusOK, entries)
}

// readUpload reads one named multipart file into a Document, writing the
// error response itself when the upload is missing or unreadable.
func (s *Service) readUpload(w http.ResponseWriter, r *http.Request, field string) (extract.Document, bool) {
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed multipart request"})
		return extract.Document{}, false
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No file provided."})
		return extract.Document{}, false
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			s.logger.Warn("http.upload.close_failed", "error", cerr)
		}
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable upload"})
		return extract.Document{}, false
	}
	return extract.Document{Name: header.Filename, Bytes: data}, true
}

func readFileHeader(fh *multipart.FileHeader) (extract.Document, error) {
	f, err := fh.Open()
	if err != nil {
		return extract.Document{}, err
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return extract.Document{}, err
	}
	return extract.Document{Name: fh.Filename, Bytes: data}, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
