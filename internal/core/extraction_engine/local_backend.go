package extraction_engine

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// LocalParserBackend reads the PDF text layer with a pure-Go parser. No
// network, no credentials, always available, and the cheap middle of the
// fallback chain. Scanned documents produce little or no text here and
// fall through to OCR via the quality gate.
//
// Whole-document only: the orchestrator never picks it for chunked
// extraction.
type LocalParserBackend struct{}

func NewLocalParserBackend() *LocalParserBackend { return &LocalParserBackend{} }

func (l *LocalParserBackend) Name() string { return BackendLocalParser }

func (l *LocalParserBackend) IsAvailable() bool { return true }

func (l *LocalParserBackend) Extract(ctx context.Context, data []byte) (text string, err error) {
	// The parser panics on some malformed files; surface that as a
	// normal backend failure instead of taking the worker down.
	defer func() {
		if r := recover(); r != nil {
			err = &BackendError{Backend: BackendLocalParser, Err: fmt.Errorf("invalid or corrupted pdf: %v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &BackendError{Backend: BackendLocalParser, Err: fmt.Errorf("invalid pdf: %w", err)}
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", &BackendError{Backend: BackendLocalParser, Timeout: err == context.DeadlineExceeded, Err: err}
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// Image-only pages are expected; keep going.
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(strings.TrimSpace(pageText))
	}
	return b.String(), nil
}
