package extraction_engine

import (
	"testing"
	"time"
)

func TestCalculateTimeout(t *testing.T) {
	const mb = 1024 * 1024

	tests := []struct {
		name  string
		size  int64
		base  int
		pages int
		cap   int
		want  time.Duration
	}{
		{
			name: "small document gets base timeout",
			size: 1 * mb, base: 30_000, pages: 5, cap: 140_000,
			want: 30 * time.Second,
		},
		{
			name: "mid range pages add 2s each past 10",
			size: 1 * mb, base: 30_000, pages: 15, cap: 140_000,
			want: 40 * time.Second,
		},
		{
			name: "large page counts add 3s each past 30",
			size: 1 * mb, base: 30_000, pages: 35, cap: 140_000,
			want: 85 * time.Second,
		},
		{
			name: "oversized file adds 2s per MB past 10",
			size: 20 * mb, base: 30_000, pages: 5, cap: 140_000,
			want: 50 * time.Second,
		},
		{
			name: "result is clamped to the cap",
			size: 1 * mb, base: 30_000, pages: 100, cap: 140_000,
			want: 140 * time.Second,
		},
		{
			name: "zero cap disables clamping",
			size: 1 * mb, base: 30_000, pages: 100, cap: 0,
			want: 280 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateTimeout(tt.size, tt.base, tt.pages, tt.cap)
			if got != tt.want {
				t.Errorf("CalculateTimeout() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCalculateTimeoutMonotonic(t *testing.T) {
	const mb = 1024 * 1024

	prev := time.Duration(0)
	for _, pages := range []int{1, 5, 10, 11, 29, 30, 31, 50, 100} {
		got := CalculateTimeout(1*mb, 30_000, pages, 0)
		if got < prev {
			t.Fatalf("timeout decreased at %d pages: %v < %v", pages, got, prev)
		}
		prev = got
	}

	prev = 0
	for _, size := range []int64{1 * mb, 9 * mb, 10 * mb, 11 * mb, 25 * mb, 50 * mb} {
		got := CalculateTimeout(size, 30_000, 5, 0)
		if got < prev {
			t.Fatalf("timeout decreased at %d bytes: %v < %v", size, got, prev)
		}
		prev = got
	}
}
