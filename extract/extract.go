// Package extract turns uploaded file bytes into plain text for
// summarization. Formats are a closed set; anything unrecognized falls back
// to interpreting the bytes as UTF-8 text rather than failing the upload.
package extract

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	digesterrors "github.com/sweetpotato0/digest/errors"
)

// Format tags a supported input format.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatPDF      Format = "pdf"
	FormatUnknown  Format = "unknown"
)

// DetectFormat maps a file name to its format tag. Unrecognized extensions
// map to FormatUnknown, never to an error.
func DetectFormat(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt":
		return FormatText
	case ".md", ".markdown":
		return FormatMarkdown
	case ".html", ".htm":
		return FormatHTML
	case ".pdf":
		return FormatPDF
	default:
		return FormatUnknown
	}
}

// Extract decodes data according to format and returns best-effort plain
// text, cleaned for prompting. FormatUnknown is decoded as raw UTF-8 text
// and reported alongside the result via ErrUnsupportedFormat so callers can
// show a diagnostic while still using the text.
func Extract(data []byte, format Format) (string, error) {
	switch format {
	case FormatText, FormatMarkdown:
		return Clean(string(data)), nil
	case FormatHTML:
		text, err := htmlToText(string(data))
		if err != nil {
			return "", fmt.Errorf("extract html: %w", err)
		}
		return Clean(text), nil
	case FormatPDF:
		text, err := pdfToText(data)
		if err != nil {
			return "", fmt.Errorf("extract pdf: %w", err)
		}
		return Clean(text), nil
	default:
		return Clean(string(data)), fmt.Errorf("%w: decoded as raw text", digesterrors.ErrUnsupportedFormat)
	}
}

// ExtractFile is the file-upload entry point: detect the format from the
// name, then decode.
func ExtractFile(filename string, data []byte) (string, error) {
	return Extract(data, DetectFormat(filename))
}

func pdfToText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single undecodable page should not lose the document.
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
