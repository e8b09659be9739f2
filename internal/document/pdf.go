package document

import (
	"bytes"
	"errors"
	"io"
	"strings"

	pdf "github.com/ledongthuc/pdf"
)

var errNoPages = errors.New("pdf has no pages")

func pdfMethods() []method {
	return []method{
		{name: "plain_text", extract: extractPlainText},
		{name: "text_rows", extract: extractTextRows},
		{name: "characters", extract: extractCharacters},
	}
}

func openPDF(raw []byte) (*pdf.Reader, error) {
	r, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, err
	}
	if r.NumPage() == 0 {
		return nil, errNoPages
	}
	return r, nil
}

func extractPlainText(raw []byte) (string, error) {
	r, err := openPDF(raw)
	if err != nil {
		return "", err
	}

	rs, err := r.GetPlainText()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rs); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// extractTextRows rebuilds lines from positioned text runs page by page. Pages that
// fail are skipped.
func extractTextRows(raw []byte) (string, error) {
	r, err := openPDF(raw)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}

		for _, row := range rows {
			words := make([]string, 0, len(row.Content))
			for _, text := range row.Content {
				words = append(words, text.S)
			}
			sb.WriteString(strings.Join(words, " "))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// extractCharacters concatenates raw glyph strings as a last resort.
func extractCharacters(raw []byte) (string, error) {
	r, err := openPDF(raw)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, text := range page.Content().Text {
			sb.WriteString(text.S)
		}
		sb.WriteString("\n")
	}

	return sb.String(), nil
}
