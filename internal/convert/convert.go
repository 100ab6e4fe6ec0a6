// Package convert turns non-markup include targets into markup fragments.
package convert

import (
	"io"
	"path/filepath"
	"strings"
)

// Converter renders raw file contents as markup.
type Converter interface {
	Convert(r io.Reader, filename string) (string, error)
}

// Set selects converters by file extension.
type Set struct {
	FallbackPdftotext bool
}

// ForFile returns the converter for filename. Markup files and unknown
// extensions report false and are parsed as-is.
func (s Set) ForFile(filename string) (Converter, bool) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".md", ".markdown":
		return &MarkdownConverter{}, true
	case ".txt":
		return &TextConverter{}, true
	case ".csv":
		return &CSVConverter{}, true
	case ".pdf":
		return &PDFConverter{FallbackPdftotext: s.FallbackPdftotext}, true
	case ".docx":
		return &DOCXConverter{}, true
	}
	return nil, false
}
