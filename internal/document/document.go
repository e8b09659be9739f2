// Package document turns raw resume bytes into plain text.
package document

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

const (
	ReasonInvalidHeader = "invalid header"
	ReasonNoText        = "no extractable text"

	pdfSignature = "%PDF-"
	// Inputs below this size are still processed but flagged in logs.
	suspiciousSize = 1024
)

// FormatError is returned when a document cannot yield any text. It is not retried.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("document format: %s", e.Reason)
}

// Hint returns a human-actionable message for the failure reason.
func (e *FormatError) Hint() string {
	switch e.Reason {
	case ReasonInvalidHeader:
		return "the file is not a PDF document; export the resume as PDF and upload it again"
	case ReasonNoText:
		return "the PDF contains no selectable text (scanned image?); upload a text-based PDF"
	default:
		return ""
	}
}

type method struct {
	name    string
	extract func(raw []byte) (string, error)
}

// Normalizer extracts text using an ordered chain of methods, moving to the next one
// when a method fails or recovers nothing.
type Normalizer struct {
	logger  *zap.Logger
	methods []method
}

func New(logger *zap.Logger) *Normalizer {
	return newNormalizer(logger, pdfMethods())
}

func newNormalizer(logger *zap.Logger, methods []method) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{logger: logger, methods: methods}
}

// Normalize validates the document signature and returns its plain text.
func (n *Normalizer) Normalize(raw []byte) (string, error) {
	if !bytes.HasPrefix(raw, []byte(pdfSignature)) {
		n.logger.Warn("document does not have a valid pdf header", zap.Int("size", len(raw)))
		return "", &FormatError{Reason: ReasonInvalidHeader}
	}

	if len(raw) < suspiciousSize {
		n.logger.Warn("document is very small and may be corrupted", zap.Int("size", len(raw)))
	}

	for _, m := range n.methods {
		text, err := safeExtract(m, raw)
		if err != nil {
			n.logger.Debug("text extraction method failed", zap.String("method", m.name), zap.Error(err))
			continue
		}

		text = Clean(text)
		recovered := countVisible(text)
		n.logger.Debug("text extraction attempt",
			zap.String("method", m.name),
			zap.Int("characters", recovered),
		)
		if recovered == 0 {
			continue
		}

		n.logger.Info("extracted document text", zap.String("method", m.name), zap.Int("characters", len(text)))
		return text, nil
	}

	return "", &FormatError{Reason: ReasonNoText}
}

// the pdf reader panics on some malformed inputs
func safeExtract(m method, raw []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s panicked: %v", m.name, r)
		}
	}()
	return m.extract(raw)
}

var (
	reHorizontalSpace = regexp.MustCompile(`[ \t\f\v\r\x{00A0}]+`)
	reManyBreaks      = regexp.MustCompile(`\n[ ]*\n(?:[ ]*\n)+`)
)

// Clean sanitizes UTF-8, collapses horizontal whitespace and keeps paragraph breaks.
func Clean(s string) string {
	s = strings.ToValidUTF8(s, "")
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	s = reHorizontalSpace.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	s = reManyBreaks.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

func countVisible(s string) int {
	count := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			count++
		}
	}
	return count
}
