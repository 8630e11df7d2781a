package extraction_engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// fakeRangeBackend extracts per page range; failRanges marks start pages
// whose ranges always fail.
type fakeRangeBackend struct {
	name       string
	failRanges map[int]bool
	thinRanges map[int]bool
	rangeCalls int
}

func (f *fakeRangeBackend) Name() string      { return f.name }
func (f *fakeRangeBackend) IsAvailable() bool { return true }

func (f *fakeRangeBackend) Extract(ctx context.Context, data []byte) (string, error) {
	return "", errors.New("whole-document path should not be used when chunking")
}

func (f *fakeRangeBackend) ExtractRange(ctx context.Context, data []byte, startPage, endPage int) (string, error) {
	f.rangeCalls++
	if f.failRanges[startPage] {
		return "", fmt.Errorf("pages %d-%d unavailable", startPage, endPage)
	}
	if f.thinRanges[startPage] {
		return "x", nil
	}
	return fmt.Sprintf("Readable content of pages %d through %d with plenty of words, comfortably past any minimum length trigger a deployment would set.", startPage, endPage), nil
}

// fakeOCRRangeBackend additionally answers ranged OCR requests.
type fakeOCRRangeBackend struct {
	fakeRangeBackend
	ocrCalls int
	ocrFail  bool
	ocrThin  bool
}

func (f *fakeOCRRangeBackend) OCRRange(ctx context.Context, data []byte, startPage, endPage int) (string, error) {
	f.ocrCalls++
	if f.ocrFail {
		return "", errors.New("tesseract crashed")
	}
	if f.ocrThin {
		return "?", nil
	}
	return fmt.Sprintf("Recognized scanned text for pages %d through %d of the document, long enough to be preferred over the thin text layer output.", startPage, endPage), nil
}

// fakePageCounter returns a fixed authoritative page count.
type fakePageCounter struct {
	n   int
	err error
}

func (f fakePageCounter) PageCount(data []byte) (int, error) { return f.n, f.err }

// 95 estimated pages: chunked, chunk size 8, 12 ranges.
var chunkedPDF = []byte("%PDF-1.4\n/Count 95\nbody")

func TestExtractChunkedHappyPath(t *testing.T) {
	b := &fakeRangeBackend{name: BackendGemini}
	o := NewOrchestrator([]Backend{b}, fakePageCounter{n: 95}, testConfig(BackendGemini))

	res, err := o.Extract(context.Background(), chunkedPDF)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !res.Chunked {
		t.Fatal("result should be chunked")
	}
	if res.TotalChunks != 12 {
		t.Errorf("TotalChunks = %d, want 12", res.TotalChunks)
	}
	if res.PageCount != 95 || res.PageCountEstimated {
		t.Errorf("PageCount = %d (estimated=%v), want authoritative 95", res.PageCount, res.PageCountEstimated)
	}
	if res.FailedChunks != 0 || res.OCRChunks != 0 {
		t.Errorf("FailedChunks = %d, OCRChunks = %d, want 0/0", res.FailedChunks, res.OCRChunks)
	}
	if !strings.Contains(res.Text, "--- Pages 1-8 ---") || !strings.Contains(res.Text, "--- Pages 89-95 ---") {
		t.Errorf("merged text is missing range markers:\n%s", res.Text)
	}
}

func TestExtractChunkedToleratesFewFailures(t *testing.T) {
	// 2 of 12 failed is under the 25% abandonment threshold.
	b := &fakeRangeBackend{name: BackendGemini, failRanges: map[int]bool{9: true, 25: true}}
	o := NewOrchestrator([]Backend{b}, fakePageCounter{n: 95}, testConfig(BackendGemini))

	res, err := o.Extract(context.Background(), chunkedPDF)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if res.FailedChunks != 2 {
		t.Errorf("FailedChunks = %d, want 2", res.FailedChunks)
	}
	// A failed range still leaves its marker so readers see the gap.
	if !strings.Contains(res.Text, "--- Pages 9-16 ---") {
		t.Errorf("failed range marker missing from:\n%s", res.Text)
	}
}

func TestExtractChunkedAbandonsAtThreshold(t *testing.T) {
	tests := []struct {
		name       string
		failRanges map[int]bool
	}{
		{
			// 3 of 12 failed is exactly 25%, which already abandons.
			name:       "equality counts as failure",
			failRanges: map[int]bool{1: true, 9: true, 25: true},
		},
		{
			// 5 of 12 failed abandons even though 7 chunks succeeded.
			name:       "well past the threshold",
			failRanges: map[int]bool{1: true, 9: true, 17: true, 25: true, 33: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &fakeRangeBackend{name: BackendGemini, failRanges: tt.failRanges}
			o := NewOrchestrator([]Backend{b}, fakePageCounter{n: 95}, testConfig(BackendGemini))

			_, err := o.Extract(context.Background(), chunkedPDF)
			var agg *AggregateError
			if !errors.As(err, &agg) {
				t.Fatalf("Extract() error = %v, want *AggregateError", err)
			}
			if !strings.Contains(err.Error(), "chunks failed") {
				t.Errorf("error %q should mention failed chunks", err)
			}
		})
	}
}

func TestExtractChunkedRetriesRangeOnce(t *testing.T) {
	b := &fakeRangeBackend{name: BackendGemini, failRanges: map[int]bool{9: true}}
	o := NewOrchestrator([]Backend{b}, fakePageCounter{n: 95}, testConfig(BackendGemini))

	res, err := o.Extract(context.Background(), chunkedPDF)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if res.FailedChunks != 1 {
		t.Errorf("FailedChunks = %d, want 1", res.FailedChunks)
	}
	// 11 ranges succeed on the first call; the failing one is tried twice.
	if b.rangeCalls != 13 {
		t.Errorf("rangeCalls = %d, want 13", b.rangeCalls)
	}
}

func TestExtractChunkedOCREscalation(t *testing.T) {
	b := &fakeOCRRangeBackend{
		fakeRangeBackend: fakeRangeBackend{
			name:       BackendGemini,
			thinRanges: map[int]bool{1: true, 17: true},
		},
	}
	o := NewOrchestrator([]Backend{b}, fakePageCounter{n: 95}, testConfig(BackendGemini))

	res, err := o.Extract(context.Background(), chunkedPDF)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if res.OCRChunks != 2 {
		t.Errorf("OCRChunks = %d, want 2", res.OCRChunks)
	}
	if b.ocrCalls != 2 {
		t.Errorf("ocrCalls = %d, want 2", b.ocrCalls)
	}
	if !strings.Contains(res.Text, "Recognized scanned text for pages 1 through 8 of the document") {
		t.Errorf("OCR output missing from merged text:\n%s", res.Text)
	}
}

func TestExtractChunkedOCRBudget(t *testing.T) {
	b := &fakeOCRRangeBackend{
		fakeRangeBackend: fakeRangeBackend{
			name:       BackendGemini,
			thinRanges: map[int]bool{1: true, 17: true, 33: true},
		},
	}
	cfg := testConfig(BackendGemini)
	cfg.ChunkOCR = ChunkOCRConfig{Enabled: true, MinTextLengthTrigger: 100, MaxOCRChunks: 1, MaxOCRPages: 25}
	o := NewOrchestrator([]Backend{b}, fakePageCounter{n: 95}, cfg)

	res, err := o.Extract(context.Background(), chunkedPDF)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if res.OCRChunks != 1 {
		t.Errorf("OCRChunks = %d, want budget-limited 1", res.OCRChunks)
	}
	if b.ocrCalls != 1 {
		t.Errorf("ocrCalls = %d, want 1", b.ocrCalls)
	}
}

func TestExtractChunkedThinOCRKeepsOriginal(t *testing.T) {
	b := &fakeOCRRangeBackend{
		fakeRangeBackend: fakeRangeBackend{
			name:       BackendGemini,
			thinRanges: map[int]bool{1: true},
		},
		ocrThin: true,
	}
	o := NewOrchestrator([]Backend{b}, fakePageCounter{n: 95}, testConfig(BackendGemini))

	res, err := o.Extract(context.Background(), chunkedPDF)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	// OCR that is no better than the text layer does not count as an
	// escalation and does not replace the text.
	if res.OCRChunks != 0 {
		t.Errorf("OCRChunks = %d, want 0", res.OCRChunks)
	}
	if b.ocrCalls != 1 {
		t.Errorf("ocrCalls = %d, want 1", b.ocrCalls)
	}
}

func TestExtractChunkedPageCountFallsBackToEstimate(t *testing.T) {
	b := &fakeRangeBackend{name: BackendGemini}
	o := NewOrchestrator([]Backend{b}, fakePageCounter{err: errors.New("cannot open")}, testConfig(BackendGemini))

	res, err := o.Extract(context.Background(), chunkedPDF)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !res.PageCountEstimated {
		t.Error("PageCountEstimated should be true when counting fails")
	}
	if res.PageCount != 95 {
		t.Errorf("PageCount = %d, want the 95 page estimate", res.PageCount)
	}
}

func TestExtractChunkedDisabledOCRNeverCalled(t *testing.T) {
	b := &fakeOCRRangeBackend{
		fakeRangeBackend: fakeRangeBackend{
			name:       BackendGemini,
			thinRanges: map[int]bool{1: true},
		},
	}
	cfg := testConfig(BackendGemini)
	cfg.ChunkOCR = ChunkOCRConfig{Enabled: false, MinTextLengthTrigger: 100, MaxOCRChunks: 5, MaxOCRPages: 25}
	o := NewOrchestrator([]Backend{b}, fakePageCounter{n: 95}, cfg)

	if _, err := o.Extract(context.Background(), chunkedPDF); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if b.ocrCalls != 0 {
		t.Errorf("ocrCalls = %d, want 0 when escalation is disabled", b.ocrCalls)
	}
}
