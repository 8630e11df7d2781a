package extraction_engine

import (
	"fmt"
	"strings"
	"time"
)

// Quality tiers, derived from which backend produced the text.
const (
	TierHigh   = "high"
	TierMedium = "medium"
	TierLow    = "low"
)

// Attempt records one backend call, successful or not. The attempt log
// is append-only and survives across backends within one Extract call.
type Attempt struct {
	Backend  string
	Retry    bool
	Err      error
	Class    ErrorClass
	Duration time.Duration
	TimedOut bool
}

func (a Attempt) String() string {
	label := a.Backend
	if a.Retry {
		label += " (retry)"
	}
	if a.Err == nil {
		return label + ": ok"
	}
	return fmt.Sprintf("%s: %v", label, a.Err)
}

// ExtractionResult is the single successful outcome of an Extract call.
type ExtractionResult struct {
	Text string

	Backend       string
	QualityTier   string
	AttemptCount  int
	FallbackChain []string

	// PageCount is authoritative when the chunked path counted pages,
	// estimated otherwise.
	PageCount          int
	PageCountEstimated bool

	ProcessingTime time.Duration
	TimeoutHit     bool

	Chunked      bool
	TotalChunks  int
	FailedChunks int
	OCRChunks    int
}

// ValidationError is the fatal pre-check failure: nothing was attempted
// because the document itself is out of bounds.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "validation failed: " + e.Reason }

// AggregateError is raised only after every enabled backend (and its
// permitted retries) has been exhausted. It preserves the full attempt
// log for diagnosis.
type AggregateError struct {
	Attempts []Attempt
}

func (e *AggregateError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, a.String())
	}
	return "all extraction backends failed: " + strings.Join(parts, "; ")
}
