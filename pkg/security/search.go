package security

import (
	"regexp"
	"strings"
	"unicode"

	apperrors "user-pref-service/pkg/errors"
)

// MaxSearchTermLength is the longest searchTerm accepted by list endpoints.
const MaxSearchTermLength = 100

// suspiciousPatterns flag search terms that look like SQL or script injection.
var suspiciousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(union|select|insert|update|delete|drop|create|alter|exec|execute)\b`),
	regexp.MustCompile(`(?i)\b(or|and)\s+\d+\s*=\s*\d+`),
	regexp.MustCompile(`(--|/\*|\*/)`),
	regexp.MustCompile(`(?i)\b(waitfor|benchmark|sleep)\b`),
	regexp.MustCompile(`(?i)(<script|javascript:|vbscript:|onload=|onerror=)`),
}

// CleanSearchTerm trims term and rejects anything outside the safe character set.
func CleanSearchTerm(term string) (string, error) {
	if term == "" {
		return "", nil
	}
	if len(term) > MaxSearchTermLength {
		return "", apperrors.Contract("invalid search term: too long",
			apperrors.WithDetails(map[string]string{"searchTerm": "must be at most 100 characters"}))
	}

	term = strings.TrimSpace(term)
	for _, p := range suspiciousPatterns {
		if p.MatchString(term) {
			return "", invalidSearchTerm()
		}
	}
	for _, r := range term {
		if !isSearchRune(r) {
			return "", invalidSearchTerm()
		}
	}

	return term, nil
}

func invalidSearchTerm() error {
	return apperrors.Contract("invalid search term: contains invalid characters",
		apperrors.WithDetails(map[string]string{"searchTerm": "contains invalid characters"}))
}

func isSearchRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) ||
		r == ' ' || r == '-' || r == '_' || r == '.' || r == '@' || r == '+'
}

// EscapeLike escapes LIKE wildcards so term matches literally.
func EscapeLike(term string) string {
	term = strings.ReplaceAll(term, `\`, `\\`)
	term = strings.ReplaceAll(term, "%", `\%`)
	term = strings.ReplaceAll(term, "_", `\_`)
	return term
}
