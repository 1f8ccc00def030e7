package constants

import "strings"

// DocumentFormat is the closed set of input formats the pipeline dispatches on.
// The format is resolved once from the filename extension at ingestion.
type DocumentFormat string

const (
	PDF         DocumentFormat = "PDF"
	TXT         DocumentFormat = "TXT"
	Unsupported DocumentFormat = "UNSUPPORTED"
)

// AllowedExtensions holds the file extensions accepted for upload.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
	"txt": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat resolves a filename extension to a DocumentFormat.
func MapExtToFormat(ext string) DocumentFormat {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "txt":
		return TXT
	default:
		return Unsupported
	}
}
