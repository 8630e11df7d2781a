package extraction_engine

import (
	"context"
	"fmt"
)

// Backend is one interchangeable extraction capability provider.
// The orchestrator holds them in priority order and walks the list
// until one produces acceptable text.
type Backend interface {
	// Name is a stable identifier, also used to key per-backend config.
	Name() string

	// IsAvailable reports whether the backend can be called at all
	// (e.g. required credential present). Unavailable backends are
	// skipped without logging an attempt.
	IsAvailable() bool

	// Extract returns the whole document's text. The context carries
	// the adaptive per-attempt deadline.
	Extract(ctx context.Context, data []byte) (string, error)
}

// RangeExtractor is implemented by backends that can extract an
// inclusive page range. Backends without it are never selected for
// chunked extraction.
type RangeExtractor interface {
	ExtractRange(ctx context.Context, data []byte, startPage, endPage int) (string, error)
}

// RangeOCR is implemented by backends that can OCR an inclusive page
// range, used as the per-chunk escalation when the text layer comes
// back too thin.
type RangeOCR interface {
	OCRRange(ctx context.Context, data []byte, startPage, endPage int) (string, error)
}

// BackendError is the failure surface of a backend call. StatusCode is
// the transport status if one was observed (0 otherwise); Timeout marks
// attempts cancelled by the adaptive deadline.
type BackendError struct {
	Backend    string
	StatusCode int
	Timeout    bool
	Err        error
}

func (e *BackendError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Backend, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Backend, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }
