package ingest

import (
	"fmt"
	"io"
	"strings"

	"scholarnet/internal/util"

	"github.com/ledongthuc/pdf"
)

// ExtractPDFText returns the sanitised plain text of the PDF at path.
// util.ErrNoExtractableText is returned for scanned or empty documents.
func ExtractPDFText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	buf := new(strings.Builder)
	if _, err := io.Copy(buf, reader); err != nil {
		return "", fmt.Errorf("read extracted text: %w", err)
	}
	text := util.SanitizeText(buf.String())
	if text == "" {
		return "", util.ErrNoExtractableText
	}
	return text, nil
}
