package extraction_engine

import (
	"bytes"
	"context"
	"time"

	"github.com/markdave123-py/Extracta/internal/core"
)

var _ core.DocumentExtractor = (*EngineExtractor)(nil)

// EngineExtractor is the engine's front door for the rest of the
// service: PDFs run the full backend fallback chain, every other
// content type goes through docconv.
type EngineExtractor struct {
	orch    *Orchestrator
	docconv *DocconvExtractor
}

func NewEngineExtractor(orch *Orchestrator, dc *DocconvExtractor) *EngineExtractor {
	return &EngineExtractor{orch: orch, docconv: dc}
}

func (e *EngineExtractor) ExtractText(ctx context.Context, data []byte, contentType string) (*core.ExtractionOutcome, error) {
	if contentType == "application/pdf" || bytes.HasPrefix(data, []byte(pdfSignature)) {
		res, err := e.orch.Extract(ctx, data)
		if err != nil {
			return nil, err
		}
		return &core.ExtractionOutcome{
			Text:               res.Text,
			Backend:            res.Backend,
			QualityTier:        res.QualityTier,
			AttemptCount:       res.AttemptCount,
			FallbackChain:      res.FallbackChain,
			PageCount:          res.PageCount,
			PageCountEstimated: res.PageCountEstimated,
			Chunked:            res.Chunked,
			TotalChunks:        res.TotalChunks,
			FailedChunks:       res.FailedChunks,
			OCRChunks:          res.OCRChunks,
			TimeoutHit:         res.TimeoutHit,
			Duration:           res.ProcessingTime,
		}, nil
	}

	start := time.Now()
	text, err := e.docconv.Convert(ctx, data, contentType)
	if err != nil {
		return nil, err
	}
	return &core.ExtractionOutcome{
		Text:         text,
		Backend:      "docconv",
		QualityTier:  TierMedium,
		AttemptCount: 1,
		Duration:     time.Since(start),
	}, nil
}
