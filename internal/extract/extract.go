// Package extract classifies uploaded files and pulls plain text out of them.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/starford/notebook/internal/apperr"
)

// Known MIME types.
const (
	TypePDF     = "application/pdf"
	TypeUnknown = "application/octet-stream"
)

// ErrInvalidUTF8 is returned when a text upload is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("extract: text is not valid UTF-8")

// Extensions the system mime table may not know about.
var textExtensions = map[string]string{
	".txt":      "text/plain",
	".text":     "text/plain",
	".log":      "text/plain",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".csv":      "text/csv",
	".tsv":      "text/tab-separated-values",
	".htm":      "text/html",
	".html":     "text/html",
	".css":      "text/css",
	".xml":      "text/xml",
	".py":       "text/x-python",
	".rtx":      "text/richtext",
	".pdf":      TypePDF,
}

// DetectType classifies a file by its name's extension.
// Unknown extensions map to TypeUnknown.
func DetectType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return TypeUnknown
	}
	if t, ok := textExtensions[ext]; ok {
		return t
	}
	t := mime.TypeByExtension(ext)
	if t == "" {
		return TypeUnknown
	}
	mediaType, _, err := mime.ParseMediaType(t)
	if err != nil {
		return TypeUnknown
	}
	return mediaType
}

// Supported reports whether text can be extracted from fileType.
func Supported(fileType string) bool {
	return fileType == TypePDF || strings.HasPrefix(fileType, "text/")
}

// Text extracts plain text from data according to fileType.
func Text(fileType string, data []byte) (string, error) {
	switch {
	case fileType == TypePDF:
		return pdfText(data)
	case strings.HasPrefix(fileType, "text/"):
		if !utf8.Valid(data) {
			return "", ErrInvalidUTF8
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("extract %s: %w", fileType, apperr.ErrUnsupportedType)
	}
}

// pdfText concatenates the text of every page, one trailing newline per page.
func pdfText(data []byte) (text string, err error) {
	// The PDF reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extract: malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("extract: open pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if !page.V.IsNull() {
			pageText, err := page.GetPlainText(nil)
			if err != nil {
				return "", fmt.Errorf("extract: page %d: %w", i, err)
			}
			b.WriteString(pageText)
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}
