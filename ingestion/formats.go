// Package ingestion turns uploaded PDFs into page-aligned chunks and persists
// them as documents.
package ingestion

import (
	"path/filepath"
	"strings"
)

// DocumentFormat enumerates supported upload formats.
type DocumentFormat string

const (
	// FormatUnknown represents an unsupported or undetected format.
	FormatUnknown DocumentFormat = ""
	// FormatPDF represents PDF documents.
	FormatPDF DocumentFormat = "pdf"
)

// DetectFormat infers a document format from the provided name's extension.
func DetectFormat(name string) DocumentFormat {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return FormatPDF
	default:
		return FormatUnknown
	}
}
