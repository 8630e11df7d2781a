package extraction_engine

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
)

// ocrBudget caps how much per-chunk OCR escalation one chunked attempt
// may spend. It is passed by value and returned updated, so the loop
// has no hidden shared counter.
type ocrBudget struct {
	chunks int
	pages  int
}

func (bgt ocrBudget) allows(pages int) bool {
	return bgt.chunks > 0 && bgt.pages >= pages
}

func (bgt ocrBudget) spend(pages int) ocrBudget {
	bgt.chunks--
	bgt.pages -= pages
	return bgt
}

// extractChunked processes the document as sequential page-range
// chunks. Ranges run one at a time with a short delay in between to
// respect backend rate limits; each range gets a single internal retry,
// and thin text-layer output escalates to ranged OCR while the budget
// lasts. The attempt is abandoned when failed chunks reach 25% of the
// total or every chunk fails.
func (o *Orchestrator) extractChunked(ctx context.Context, b Backend, ranged RangeExtractor, data []byte, plan ChunkPlan) (attemptOutcome, error) {
	out := attemptOutcome{chunked: true}

	// Authoritative page count; the planner's estimate is only the
	// fallback when the document cannot be opened.
	total := plan.EstimatedPages
	if o.pages != nil {
		if n, err := o.pages.PageCount(data); err == nil && n > 0 {
			total = n
			out.pagesExact = true
		} else if err != nil {
			log.Printf("extraction: page count failed, using estimate of %d: %v", total, err)
		}
	}
	if total > o.cfg.MaxPages {
		total = o.cfg.MaxPages
	}
	out.pageCount = total

	ranges := GeneratePageRanges(total, plan.ChunkSize)
	out.totalChunks = len(ranges)

	budget := ocrBudget{chunks: o.cfg.ChunkOCR.MaxOCRChunks, pages: o.cfg.ChunkOCR.MaxOCRPages}
	ocrCapable, canOCR := b.(RangeOCR)
	delay := time.Duration(o.cfg.InterChunkDelayMs) * time.Millisecond

	var merged strings.Builder
	for i, r := range ranges {
		if i > 0 {
			if err := sleepCtx(ctx, delay); err != nil {
				return out, err
			}
		}

		text, err := ranged.ExtractRange(ctx, data, r.Start, r.End)
		if err != nil {
			// One internal retry per range before giving up on it.
			text, err = ranged.ExtractRange(ctx, data, r.Start, r.End)
		}
		if err != nil {
			log.Printf("extraction: chunk %d-%d failed on %s: %v", r.Start, r.End, b.Name(), err)
			out.failed++
			merged.WriteString(rangeMarker(r))
			merged.WriteString("\n\n")
			continue
		}

		rangePages := r.End - r.Start + 1
		if o.cfg.ChunkOCR.Enabled && canOCR &&
			len(strings.TrimSpace(text)) < o.cfg.ChunkOCR.MinTextLengthTrigger &&
			budget.allows(rangePages) {
			ocrText, ocrErr := ocrCapable.OCRRange(ctx, data, r.Start, r.End)
			if ocrErr != nil {
				log.Printf("extraction: OCR escalation for %d-%d failed: %v", r.Start, r.End, ocrErr)
			} else if len(strings.TrimSpace(ocrText)) > o.cfg.ChunkOCR.MinTextLengthTrigger {
				text = ocrText
				budget = budget.spend(rangePages)
				out.ocr++
			}
		}

		merged.WriteString(rangeMarker(r))
		merged.WriteString("\n")
		merged.WriteString(strings.TrimSpace(text))
		merged.WriteString("\n\n")
	}

	// Equality counts as failure: 3 failed of 12 is already 25%.
	if out.totalChunks > 0 && (out.failed == out.totalChunks || out.failed*4 >= out.totalChunks) {
		return out, &BackendError{
			Backend: b.Name(),
			Err:     fmt.Errorf("chunked extraction unusable: %d of %d chunks failed", out.failed, out.totalChunks),
		}
	}

	out.text = strings.TrimSpace(merged.String())
	return out, nil
}

func rangeMarker(r PageRange) string {
	if r.Start == r.End {
		return fmt.Sprintf("--- Page %d ---", r.Start)
	}
	return fmt.Sprintf("--- Pages %d-%d ---", r.Start, r.End)
}
