package extraction_engine

import "time"

// CalculateTimeout derives the per-attempt deadline from document size
// and page count. Small documents get the backend's base timeout; pages
// 11-30 add 2s each, pages past 30 add 3s each on top of the full
// mid-range surcharge; oversized files add 2s per MB past 10. The
// result is clamped to capMs, the host runtime's execution ceiling.
//
// Monotonic non-decreasing in both size and pages.
func CalculateTimeout(sizeBytes int64, baseMs, pages, capMs int) time.Duration {
	ms := baseMs

	switch {
	case pages > 30:
		ms += 20*2000 + (pages-30)*3000
	case pages > 10:
		ms += (pages - 10) * 2000
	}

	const mb = 1024 * 1024
	if sizeBytes > 10*mb {
		ms += int((sizeBytes - 10*mb) / mb * 2000)
	}

	if capMs > 0 && ms > capMs {
		ms = capMs
	}
	return time.Duration(ms) * time.Millisecond
}
