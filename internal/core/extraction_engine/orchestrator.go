package extraction_engine

import (
	"context"
	"errors"
	"log"
	"time"
)

// PageCounter is the capability that can actually open the document and
// count its pages. The planner's estimate is only advisory; the chunked
// path asks this for the authoritative number.
type PageCounter interface {
	PageCount(data []byte) (int, error)
}

// Orchestrator composes the classifier, planner, timeout calculator and
// quality gate into the backend fallback state machine. Each Extract
// call owns its attempt log and chunk plan and shares no mutable state,
// so one Orchestrator is safe for concurrent requests.
type Orchestrator struct {
	backends []Backend
	pages    PageCounter
	cfg      Config
}

func NewOrchestrator(backends []Backend, pages PageCounter, cfg Config) *Orchestrator {
	return &Orchestrator{backends: backends, pages: pages, cfg: cfg.ApplyDefaults()}
}

const pdfSignature = "%PDF-"

// attemptOutcome carries what a single backend attempt produced beyond
// the Attempt record itself.
type attemptOutcome struct {
	text string

	chunked     bool
	pageCount   int
	pagesExact  bool
	totalChunks int
	failed      int
	ocr         int
}

// Extract runs the full fallback chain and returns exactly one
// successful result, or a *ValidationError (fatal pre-check, zero
// attempts) or *AggregateError (every backend exhausted).
//
// The adaptive timeout bounds each attempt, not the whole call; callers
// needing an overall deadline must impose it on ctx themselves.
func (o *Orchestrator) Extract(ctx context.Context, data []byte) (*ExtractionResult, error) {
	start := time.Now()

	if len(data) < len(pdfSignature) || string(data[:len(pdfSignature)]) != pdfSignature {
		return nil, &ValidationError{Reason: "bad file signature, expected a PDF"}
	}
	if int64(len(data)) > o.cfg.MaxFileSizeBytes {
		return nil, &ValidationError{Reason: "file exceeds maximum size"}
	}

	// Chunk plan is computed once and reused for every backend and
	// every retry.
	plan := PlanChunks(data)
	if plan.EstimatedPages > o.cfg.MaxPages {
		return nil, &ValidationError{Reason: "document exceeds maximum page count"}
	}

	var attempts []Attempt
	timeoutHit := false

	for _, b := range o.backends {
		bc := o.cfg.backendConfig(b.Name())
		if !bc.Enabled {
			continue
		}
		if !b.IsAvailable() {
			log.Printf("extraction: backend %s unavailable, skipping", b.Name())
			continue
		}

		for retry := false; ; retry = true {
			out, att := o.attempt(ctx, b, bc, data, plan, retry)
			attempts = append(attempts, att)
			if att.TimedOut {
				timeoutHit = true
			}

			if att.Err == nil {
				res := &ExtractionResult{
					Text:               out.text,
					Backend:            b.Name(),
					QualityTier:        tierFor(b.Name()),
					AttemptCount:       len(attempts),
					FallbackChain:      failedAttemptStrings(attempts),
					PageCount:          out.pageCount,
					PageCountEstimated: !out.pagesExact,
					ProcessingTime:     time.Since(start),
					TimeoutHit:         timeoutHit,
					Chunked:            out.chunked,
					TotalChunks:        out.totalChunks,
					FailedChunks:       out.failed,
					OCRChunks:          out.ocr,
				}
				return res, nil
			}

			log.Printf("extraction: backend %s failed (%s): %v", b.Name(), att.Class, att.Err)

			// Each backend is retried at most once, and only for
			// transient failures.
			if retry || bc.MaxRetries < 1 || !ShouldRetry(att.Class) {
				break
			}
			if err := sleepCtx(ctx, time.Duration(bc.RetryDelayMs)*time.Millisecond); err != nil {
				return nil, &AggregateError{Attempts: attempts}
			}
		}
	}

	return nil, &AggregateError{Attempts: attempts}
}

// attempt runs one backend call end to end: adaptive deadline, whole or
// chunked extraction, then the quality gate.
func (o *Orchestrator) attempt(ctx context.Context, b Backend, bc BackendConfig, data []byte, plan ChunkPlan, retry bool) (attemptOutcome, Attempt) {
	att := Attempt{Backend: b.Name(), Retry: retry}
	began := time.Now()

	timeout := CalculateTimeout(int64(len(data)), bc.BaseTimeoutMs, plan.EstimatedPages, o.cfg.HardTimeoutCapMs)
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var out attemptOutcome
	var err error

	ranged, canRange := b.(RangeExtractor)
	if plan.ShouldChunk && canRange {
		out, err = o.extractChunked(tctx, b, ranged, data, plan)
	} else {
		out.pageCount = plan.EstimatedPages
		out.text, err = b.Extract(tctx, data)
	}

	if err == nil {
		// A result that fails the quality gate is a backend failure,
		// not a success; the fallback chain keeps going.
		err = o.cfg.Quality.Validate(out.text)
	}

	att.Duration = time.Since(began)
	if err != nil {
		att.Err = err
		att.Class = Classify(err)
		if errors.Is(err, context.DeadlineExceeded) || tctx.Err() == context.DeadlineExceeded {
			att.TimedOut = true
		}
		var be *BackendError
		if errors.As(err, &be) && be.Timeout {
			att.TimedOut = true
		}
	}
	return out, att
}

func tierFor(backend string) string {
	switch backend {
	case BackendGemini:
		return TierHigh
	case BackendOCR:
		return TierLow
	default:
		return TierMedium
	}
}

func failedAttemptStrings(attempts []Attempt) []string {
	out := []string{}
	for _, a := range attempts {
		if a.Err != nil {
			out = append(out, a.String())
		}
	}
	return out
}

// sleepCtx sleeps for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
