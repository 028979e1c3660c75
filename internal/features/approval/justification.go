package approval

import (
	"strings"
	"unicode/utf8"

	"go-negotiation/internal/common/errs"
)

// MinJustificationLength applies to exception-style requests.
const MinJustificationLength = 20

// Justification trims s and checks its length in characters.
func Justification(s string) (string, error) {
	s = strings.TrimSpace(s)
	if n := utf8.RuneCountInString(s); n < MinJustificationLength {
		return "", errs.Validation("justification must have at least %d characters, got %d", MinJustificationLength, n)
	}
	return s, nil
}
