package extraction_engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorClass
	}{
		{
			name: "status 429 is rate limited",
			err:  &BackendError{Backend: "gemini", StatusCode: 429, Err: errors.New("quota")},
			want: ClassRateLimited,
		},
		{
			name: "status 400 is permanent",
			err:  &BackendError{Backend: "gemini", StatusCode: 400, Err: errors.New("bad request")},
			want: ClassPermanent,
		},
		{
			name: "status 401 is permanent",
			err:  &BackendError{Backend: "gemini", StatusCode: 401, Err: errors.New("no")},
			want: ClassPermanent,
		},
		{
			name: "status 403 is permanent",
			err:  &BackendError{Backend: "gemini", StatusCode: 403, Err: errors.New("no")},
			want: ClassPermanent,
		},
		{
			name: "status 503 is transient",
			err:  &BackendError{Backend: "gemini", StatusCode: 503, Err: errors.New("overloaded")},
			want: ClassTransient,
		},
		{
			name: "wrapped backend error still classified by status",
			err:  fmt.Errorf("attempt failed: %w", &BackendError{Backend: "gemini", StatusCode: 429, Err: errors.New("quota")}),
			want: ClassRateLimited,
		},
		{
			name: "deadline exceeded is transient",
			err:  context.DeadlineExceeded,
			want: ClassTransient,
		},
		{
			name: "corrupted document is permanent",
			err:  errors.New("local-parser: invalid or corrupted pdf"),
			want: ClassPermanent,
		},
		{
			name: "password protected is permanent",
			err:  errors.New("document is password-protected"),
			want: ClassPermanent,
		},
		{
			name: "api key problem is permanent",
			err:  errors.New("missing api key"),
			want: ClassPermanent,
		},
		{
			name: "network failure is transient",
			err:  errors.New("network unreachable"),
			want: ClassTransient,
		},
		{
			name: "connection reset is transient",
			err:  errors.New("read: connection reset by peer"),
			want: ClassTransient,
		},
		{
			name: "unknown failure defaults to transient",
			err:  errors.New("something odd happened"),
			want: ClassTransient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRetryPolicy(t *testing.T) {
	if !ShouldRetry(ClassTransient) {
		t.Error("transient failures should be retried")
	}
	if ShouldRetry(ClassPermanent) {
		t.Error("permanent failures should not be retried")
	}
	if ShouldRetry(ClassRateLimited) {
		t.Error("rate limited failures should not be retried")
	}
	if !ShouldFallback(ClassPermanent) || !ShouldFallback(ClassRateLimited) {
		t.Error("permanent and rate limited failures should fall back immediately")
	}
	if ShouldFallback(ClassTransient) {
		t.Error("transient failures should retry before falling back")
	}
}
