package extraction_engine

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// QualityValidator gates extracted text before it is accepted. A result
// failing any check is treated exactly like a backend failure so the
// fallback chain keeps going instead of returning garbage.
//
// MinTextLength:        trimmed length below this is rejected.
// MaxSpecialCharRatio:  share of non-alphanumeric, non-whitespace runes
//                       above this is rejected.
type QualityValidator struct {
	MinTextLength       int
	MaxSpecialCharRatio float64
}

// maxConsecutiveRepeat is the longest run of one character we accept;
// longer runs are an extraction artifact (e.g. a ruled line read as
// thousands of dashes).
const maxConsecutiveRepeat = 20

// Validate returns nil for acceptable text and a descriptive error
// otherwise. All three checks run independently.
func (v QualityValidator) Validate(text string) error {
	trimmed := strings.TrimSpace(text)
	if n := utf8.RuneCountInString(trimmed); n < v.MinTextLength {
		return fmt.Errorf("low quality text: %d chars after trim (min %d)", n, v.MinTextLength)
	}

	var special, total int
	for _, r := range trimmed {
		total++
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r) {
			special++
		}
	}
	if total > 0 {
		if ratio := float64(special) / float64(total); ratio > v.MaxSpecialCharRatio {
			return fmt.Errorf("low quality text: special char ratio %.2f (max %.2f)", ratio, v.MaxSpecialCharRatio)
		}
	}

	var prev rune
	run := 0
	for _, r := range trimmed {
		if r == prev {
			run++
			if run > maxConsecutiveRepeat {
				return fmt.Errorf("low quality text: %q repeated %d+ times", r, maxConsecutiveRepeat+1)
			}
		} else {
			prev = r
			run = 1
		}
	}
	return nil
}

// IsAcceptable is the boolean form of Validate.
func (v QualityValidator) IsAcceptable(text string) bool {
	return v.Validate(text) == nil
}
