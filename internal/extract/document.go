package extract

import (
	"path/filepath"

	"github.com/clinidocs/summarizer/constants"
)

// Document is one uploaded file: a name (with extension) and its raw bytes.
// It is created at the request boundary and consumed once by the extractor.
type Document struct {
	Name  string
	Bytes []byte
}

// Format resolves the declared format from the filename extension.
func (d Document) Format() constants.DocumentFormat {
	return constants.MapExtToFormat(filepath.Ext(d.Name))
}

// Text is the plain text recovered from one document.
type Text struct {
	Content    string
	SourceName string
}
