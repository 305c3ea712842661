// Package validate sanitizes raw form and query input before it reaches
// services. Every helper trims first; helpers returning a (value, ok) pair
// hand back the cleaned value so handlers never re-trim.
package validate

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reQ     = regexp.MustCompile(`^[A-Za-z0-9 _'\\-]{1,50}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_.|:-]{1,128}$`)
	reCard  = regexp.MustCompile(`^[0-9]{16}$`)
	reCVV   = regexp.MustCompile(`^[0-9]{3}$`)
	reCat   = regexp.MustCompile(`^(rings|necklaces|earrings|bracelets)$`)
)

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 80 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Q validates a search query: trims, truncates, enforces allowed characters.
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) > 50 {
		s = s[:50]
	}
	return s, s != "" && reQ.MatchString(s)
}

// Qty parses a positive quantity, clamped to avoid abuse.
func Qty(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	return clamp(n, 1, 50)
}

// Delta parses a signed quantity adjustment. Garbage parses to zero so
// callers treat it as a no-op.
func Delta(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return clamp(n, -50, 50)
}

// ID validates a resource identifier. Cart line keys embed sorted
// axis:option pairs, so '|' and ':' are allowed.
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, reID.MatchString(s)
}

// CategoryID validates one of the fixed catalog category slugs.
func CategoryID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reCat.MatchString(s)
}

// CardNumber strips spaces and requires exactly 16 digits.
func CardNumber(s string) (string, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	return s, reCard.MatchString(s)
}

// CVV requires exactly 3 digits.
func CVV(s string) bool {
	return reCVV.MatchString(strings.TrimSpace(s))
}

// Name validates a displayable name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 60 {
		return "", false
	}
	return s, true
}

// Password enforces the signup complexity window: 8-20 chars with at least
// one lower, one upper, one digit and one symbol.
func Password(s string) bool {
	if n := len(s); n < 8 || n > 20 {
		return false
	}
	var lower, upper, digit, symbol bool
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}
