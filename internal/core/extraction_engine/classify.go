package extraction_engine

import (
	"context"
	"errors"
	"strings"
)

// ErrorClass drives the retry-vs-skip policy after a failed attempt.
type ErrorClass string

const (
	// ClassPermanent means the document itself is the problem; retrying
	// the same backend cannot help.
	ClassPermanent ErrorClass = "permanent"
	// ClassTransient means the failure looks recoverable (timeout,
	// network blip); one retry on the same backend is allowed.
	ClassTransient ErrorClass = "transient"
	// ClassRateLimited means the backend pushed back; skip straight to
	// the next backend without burning the retry budget.
	ClassRateLimited ErrorClass = "rate_limited"
)

var permanentMarkers = []string{
	"invalid", "corrupted", "encrypted", "password-protected",
	"password protected", "unauthorized", "api key", "api-key",
}

var transientMarkers = []string{
	"timeout", "timed out", "network", "unavailable",
	"connection reset", "try again",
}

// Classify maps a raw backend failure into an ErrorClass. Status codes
// win over message matching; anything unrecognized is treated as
// transient so that a flaky backend still gets its one retry.
func Classify(err error) ErrorClass {
	if err == nil {
		return ClassTransient
	}

	var be *BackendError
	if errors.As(err, &be) {
		switch be.StatusCode {
		case 429:
			return ClassRateLimited
		case 400, 401, 403:
			return ClassPermanent
		case 502, 503, 504:
			return ClassTransient
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ClassTransient
	}

	msg := strings.ToLower(err.Error())
	for _, m := range permanentMarkers {
		if strings.Contains(msg, m) {
			return ClassPermanent
		}
	}
	for _, m := range transientMarkers {
		if strings.Contains(msg, m) {
			return ClassTransient
		}
	}
	return ClassTransient
}

// ShouldRetry reports whether the same backend may be tried again.
func ShouldRetry(c ErrorClass) bool { return c == ClassTransient }

// ShouldFallback reports whether to move on to the next backend
// without retrying this one.
func ShouldFallback(c ErrorClass) bool {
	return c == ClassPermanent || c == ClassRateLimited
}
