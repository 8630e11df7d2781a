package core

import (
	"context"
	"time"
)

// ExtractionOutcome is what the extraction engine hands back to the
// rest of the system: the text plus the metadata the service persists
// alongside it.
type ExtractionOutcome struct {
	Text string

	Backend       string
	QualityTier   string // high | medium | low
	AttemptCount  int
	FallbackChain []string

	PageCount          int
	PageCountEstimated bool

	Chunked      bool
	TotalChunks  int
	FailedChunks int
	OCRChunks    int

	TimeoutHit bool
	Duration   time.Duration
}

// DocumentExtractor defines the interface for extracting text from uploaded documents.
type DocumentExtractor interface {
	// ExtractText extracts the full text of one document. The `contentType` hint
	// helps the extractor choose the right strategy (the multi-backend PDF
	// engine vs. a plain format converter).
	ExtractText(ctx context.Context, data []byte, contentType string) (*ExtractionOutcome, error)
}
