package validation

import (
	"errors"
	"strings"
)

// ErrInvalidIATA is returned when input is not a 3-letter IATA code.
var ErrInvalidIATA = errors.New("invalid IATA code")

// ErrQueryTooShort is returned when a suggestion query is under 3 characters.
var ErrQueryTooShort = errors.New("query too short")

// MinQueryLength is the shortest airport suggestion query served.
const MinQueryLength = 3

// ValidateIATA trims the input, takes a trailing 3-letter code when the user
// typed a full airport label (e.g. "Manila (MNL)"), and upper-cases it.
// Returns ErrInvalidIATA when no 3-letter code can be extracted.
func ValidateIATA(input string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(input))
	if s == "" {
		return "", ErrInvalidIATA
	}
	// Accept "NAME (MNL)" and bare "MNL"; the code is the trailing run of
	// three letters.
	s = strings.TrimRight(s, ")")
	if idx := strings.LastIndexByte(s, '('); idx >= 0 {
		s = s[idx+1:]
	}
	if len(s) != 3 {
		return "", ErrInvalidIATA
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return "", ErrInvalidIATA
		}
	}
	return s, nil
}

// ValidateQuery enforces the minimum suggestion query length.
func ValidateQuery(input string) (string, error) {
	s := strings.TrimSpace(input)
	if len(s) < MinQueryLength {
		return "", ErrQueryTooShort
	}
	return s, nil
}
