package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/clinidocs/summarizer/constants"
)

// Extraction failure kinds. ErrUnsupportedFormat is raised by dispatch before
// any work is attempted; everything else that prevents recovering text from a
// supported format is ErrDecodeFailure.
var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrDecodeFailure     = errors.New("document decode failure")
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	return &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// Extract dispatches on the document's declared format and returns its plain
// text. The document's bytes are the only input; PDF bytes are staged to a
// temp file for the duration of the call and removed on every exit path.
func (e *Extractor) Extract(ctx context.Context, doc Document) (Text, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(doc.Name))

	switch doc.Format() {
	case constants.PDF:
		content, pages, err := e.extractPDF(ctx, doc)
		if err != nil {
			return Text{}, err
		}
		e.logger.Info("extract.pdf.ok",
			"document", doc.Name,
			"pages", pages,
			"bytes", len(content),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return Text{Content: content, SourceName: doc.Name}, nil

	case constants.TXT:
		if !utf8.Valid(doc.Bytes) {
			return Text{}, fmt.Errorf("%w: %s is not valid UTF-8", ErrDecodeFailure, doc.Name)
		}
		return Text{Content: strings.TrimSpace(string(doc.Bytes)), SourceName: doc.Name}, nil

	default:
		e.logger.Warn("extract.unsupported_extension", "document", doc.Name, "extension", ext)
		return Text{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// extractPDF writes the payload to a scoped temp file and shells out to
// pdftotext, which emits pages separated by form feeds. Pages with no text
// (scanned or image-only) are skipped; the rest are joined with a blank line.
func (e *Extractor) extractPDF(ctx context.Context, doc Document) (string, int, error) {
	tmp, err := os.CreateTemp("", "summarizer-*.pdf")
	if err != nil {
		return "", 0, fmt.Errorf("%w: stage temp file: %v", ErrDecodeFailure, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if rmErr := os.Remove(tmpPath); rmErr != nil {
			e.logger.Warn("extract.tempfile.remove_failed", "path", tmpPath, "error", rmErr)
		}
	}()

	if _, err := tmp.Write(doc.Bytes); err != nil {
		_ = tmp.Close()
		return "", 0, fmt.Errorf("%w: stage temp file: %v", ErrDecodeFailure, err)
	}
	if err := tmp.Close(); err != nil {
		return "", 0, fmt.Errorf("%w: stage temp file: %v", ErrDecodeFailure, err)
	}

	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", tmpPath, "-")
	if err != nil {
		return "", 0, fmt.Errorf("%w: pdftotext: %v: %s", ErrDecodeFailure, err, strings.TrimSpace(string(errb)))
	}

	// A form-feed \f is the page separator.
	rawPages := strings.Split(string(out), "\f")
	kept := make([]string, 0, len(rawPages))
	for _, p := range rawPages {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n"), len(kept), nil
}
