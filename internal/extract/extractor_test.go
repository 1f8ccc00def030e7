package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinidocs/summarizer/constants"
)

// mockRunner is a test double for the pdftotext invocation.
type mockRunner struct {
	stdout []byte
	stderr []byte
	err    error
	calls  int
}

func (m *mockRunner) Run(_ context.Context, _ string, _ ...string) ([]byte, []byte, error) {
	m.calls++
	return m.stdout, m.stderr, m.err
}

func TestDocumentFormat(t *testing.T) {
	tests := []struct {
		name string
		want constants.DocumentFormat
	}{
		{"rx.pdf", constants.PDF},
		{"RX.PDF", constants.PDF},
		{"notes.txt", constants.TXT},
		{"notes.TXT", constants.TXT},
		{"notes.csv", constants.Unsupported},
		{"noextension", constants.Unsupported},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Document{Name: tt.name}.Format(), tt.name)
	}
}

func TestExtractTxt(t *testing.T) {
	e := NewExtractor(Config{}, nil)

	text, err := e.Extract(context.Background(), Document{
		Name:  "notes.txt",
		Bytes: []byte("  Take Amoxicillin 500mg twice daily \n"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Take Amoxicillin 500mg twice daily", text.Content)
	assert.Equal(t, "notes.txt", text.SourceName)
}

func TestExtractTxtInvalidUTF8(t *testing.T) {
	e := NewExtractor(Config{}, nil)

	_, err := e.Extract(context.Background(), Document{
		Name:  "notes.txt",
		Bytes: []byte{0xff, 0xfe, 0xfd},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecodeFailure)
}

func TestExtractUnsupportedExtension(t *testing.T) {
	runner := &mockRunner{}
	e := NewExtractor(Config{}, nil)
	e.runner = runner

	_, err := e.Extract(context.Background(), Document{Name: "notes.csv", Bytes: []byte("a,b")})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), "csv")
	assert.Zero(t, runner.calls, "dispatch failure must not touch the pdf tool")
}

func TestExtractPDFJoinsPagesAndSkipsEmptyOnes(t *testing.T) {
	runner := &mockRunner{stdout: []byte("page one\n\f\n   \n\fpage three\n")}
	e := NewExtractor(Config{}, nil)
	e.runner = runner

	text, err := e.Extract(context.Background(), Document{Name: "report.pdf", Bytes: []byte("%PDF-1.4")})
	require.NoError(t, err)
	assert.Equal(t, "page one\n\npage three", text.Content)
	assert.Equal(t, 1, runner.calls)
}

func TestExtractPDFCountsKeptPages(t *testing.T) {
	runner := &mockRunner{stdout: []byte("page one\n\f\n   \n\fpage three\n")}
	e := NewExtractor(Config{}, nil)
	e.runner = runner

	_, pages, err := e.extractPDF(context.Background(), Document{Name: "report.pdf", Bytes: []byte("%PDF-1.4")})
	require.NoError(t, err)
	assert.Equal(t, 2, pages, "skipped blank pages are not counted")
}

func TestExtractPDFToolFailure(t *testing.T) {
	runner := &mockRunner{stderr: []byte("Syntax Error: couldn't read xref table"), err: errors.New("exit status 1")}
	e := NewExtractor(Config{}, nil)
	e.runner = runner

	_, err := e.Extract(context.Background(), Document{Name: "broken.pdf", Bytes: []byte("not a pdf")})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecodeFailure)
	assert.Contains(t, err.Error(), "xref")
}

func TestExtractPDFEmptyOutput(t *testing.T) {
	runner := &mockRunner{stdout: []byte("\f")}
	e := NewExtractor(Config{}, nil)
	e.runner = runner

	text, err := e.Extract(context.Background(), Document{Name: "scanned.pdf", Bytes: []byte("%PDF-1.4")})
	require.NoError(t, err)
	assert.Empty(t, text.Content)
}
