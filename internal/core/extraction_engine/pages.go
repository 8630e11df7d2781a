package extraction_engine

import (
	"regexp"
)

// Page estimation works on raw bytes without opening the document: it
// is used before any backend is touched, for timeout sizing and the
// chunk decision only. Never treat it as ground truth.

const (
	// metadataScanWindow bounds how much of the file we scan for the
	// page-count hint in the page tree.
	metadataScanWindow = 256 * 1024

	maxPlausiblePages = 9999
	estimateBytesPage = 50 * 1024
	estimateCapPages  = 1000
)

var (
	pageCountHintRe = regexp.MustCompile(`/Count\s+(\d+)`)
	pageObjectRe    = regexp.MustCompile(`/Type\s*/Page\b`)
)

// EstimatePageCount guesses the page count of a raw PDF. It prefers the
// /Count hint from the page tree, then falls back to counting page
// objects, then to a size heuristic (~50KB per page, capped at 1000).
func EstimatePageCount(data []byte) int {
	window := data
	if len(window) > metadataScanWindow {
		window = window[:metadataScanWindow]
	}

	if m := pageCountHintRe.FindSubmatch(window); m != nil {
		if n := atoiBytes(m[1]); n >= 1 && n <= maxPlausiblePages {
			return n
		}
	}

	if n := len(pageObjectRe.FindAll(data, -1)); n >= 1 && n <= maxPlausiblePages {
		return n
	}

	n := (len(data) + estimateBytesPage - 1) / estimateBytesPage
	if n < 1 {
		n = 1
	}
	if n > estimateCapPages {
		n = estimateCapPages
	}
	return n
}

// ChunkPlan is computed once per extraction call and reused identically
// for every backend and every retry.
type ChunkPlan struct {
	ShouldChunk    bool
	ChunkSize      int
	EstimatedPages int
}

// PlanChunks decides whether the document is large enough to split into
// page-range chunks, and how big each chunk should be.
func PlanChunks(data []byte) ChunkPlan {
	pages := EstimatePageCount(data)
	plan := ChunkPlan{EstimatedPages: pages, ChunkSize: 10}

	if pages > 30 || len(data) > 15*1024*1024 {
		plan.ShouldChunk = true
	}
	switch {
	case pages > 100:
		plan.ChunkSize = 5
	case pages > 50:
		plan.ChunkSize = 8
	}
	return plan
}

// PageRange is an inclusive page span, 1-based.
type PageRange struct {
	Start int
	End   int
}

// GeneratePageRanges splits 1..totalPages into contiguous inclusive
// ranges of chunkSize pages; the last range ends exactly at totalPages.
func GeneratePageRanges(totalPages, chunkSize int) []PageRange {
	if totalPages < 1 || chunkSize < 1 {
		return nil
	}
	ranges := make([]PageRange, 0, (totalPages+chunkSize-1)/chunkSize)
	for start := 1; start <= totalPages; start += chunkSize {
		end := start + chunkSize - 1
		if end > totalPages {
			end = totalPages
		}
		ranges = append(ranges, PageRange{Start: start, End: end})
	}
	return ranges
}

func atoiBytes(b []byte) int {
	n := 0
	for _, c := range b {
		n = n*10 + int(c-'0')
		if n > maxPlausiblePages+1 {
			return n
		}
	}
	return n
}
