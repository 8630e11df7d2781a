package ingestion_engine

import (
	"context"
	"strings"
	"testing"

	"golang.org/x/sync/errgroup"
)

func collectChunks(t *testing.T, text string, targetTokens, overlapTokens int) []chunk {
	t.Helper()

	ing := &DocumentIngestor{}
	g, ctx := errgroup.WithContext(context.Background())

	frags := ing.streamFragments(ctx, g, text)
	out := ing.streamChunk(ctx, g, frags, targetTokens, overlapTokens)

	var chunks []chunk
	for c := range out {
		chunks = append(chunks, c)
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("pipeline error: %v", err)
	}
	return chunks
}

func TestStreamChunkGroupsFragments(t *testing.T) {
	lines := make([]string, 20)
	for i := range lines {
		lines[i] = strings.Repeat("word ", 8) // ~10 tokens per line
	}
	text := strings.Join(lines, "\n")

	chunks := collectChunks(t, text, 50, 0)
	if len(chunks) < 3 {
		t.Fatalf("got %d chunks, want several for 20 lines at 50 token target", len(chunks))
	}

	for i, c := range chunks {
		if c.Pos != i {
			t.Errorf("chunk %d has Pos %d", i, c.Pos)
		}
		if c.TokenCnt == 0 {
			t.Errorf("chunk %d has zero token count", i)
		}
	}

	// No content may be lost.
	var total int
	for _, c := range chunks {
		total += len(strings.Split(c.Text, "\n"))
	}
	if total < len(lines) {
		t.Errorf("chunks cover %d lines, want at least %d", total, len(lines))
	}
}

func TestStreamChunkOverlap(t *testing.T) {
	lines := make([]string, 10)
	for i := range lines {
		lines[i] = strings.Repeat("word ", 8)
	}
	text := strings.Join(lines, "\n")

	chunks := collectChunks(t, text, 30, 10)
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want at least 2", len(chunks))
	}

	// With overlap enabled, each chunk after the first starts with the
	// tail of its predecessor.
	firstLines := strings.Split(chunks[0].Text, "\n")
	tail := firstLines[len(firstLines)-1]
	if !strings.HasPrefix(chunks[1].Text, tail) {
		t.Errorf("second chunk does not start with the previous tail:\n%q", chunks[1].Text)
	}
}

func TestStreamFragmentsSkipsBlankLines(t *testing.T) {
	ing := &DocumentIngestor{}
	g, ctx := errgroup.WithContext(context.Background())

	frags := ing.streamFragments(ctx, g, "first\n\n   \nsecond\n")
	var got []string
	for f := range frags {
		got = append(got, f)
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("pipeline error: %v", err)
	}

	want := []string{"first", "second"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("fragment %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestApproxTokens(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"abcd", 1},
		{"abcde", 2},
		{strings.Repeat("x", 40), 10},
	}
	for _, tt := range tests {
		if got := approxTokens(tt.in); got != tt.want {
			t.Errorf("approxTokens(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseS3URL(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		wantBucket string
		wantKey    string
	}{
		{
			name:       "virtual hosted style",
			url:        "https://extracta-docs.s3.us-east-2.amazonaws.com/users/u1/documents/d1/report.pdf",
			wantBucket: "extracta-docs",
			wantKey:    "users/u1/documents/d1/report.pdf",
		},
		{
			name:       "no key",
			url:        "https://extracta-docs.s3.us-east-2.amazonaws.com",
			wantBucket: "extracta-docs",
			wantKey:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, key := parseS3URL(tt.url)
			if bucket != tt.wantBucket || key != tt.wantKey {
				t.Errorf("parseS3URL(%q) = (%q, %q), want (%q, %q)", tt.url, bucket, key, tt.wantBucket, tt.wantKey)
			}
		})
	}
}
