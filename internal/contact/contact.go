// Package contact extracts Indian mobile numbers from free text and
// normalizes them to their 10-digit local form.
package contact

import (
	"regexp"
	"strings"
)

// Placeholder stands in for a masked number.
const Placeholder = "••••••••••"

// Patterns are tried in order. The bare form comes first so a number
// written without a prefix is never mistaken for one with a country code.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`\b[6-9](?:\d[-\s]?){8}\d\b`),
	regexp.MustCompile(`(?:\+91|\b91|\b0)[-\s]?[6-9](?:\d[-\s]?){8}\d\b`),
}

// Extract returns the first phone number found in text as 10 digits, or ""
// when none matches. Extract(Extract(s)) == Extract(s) for every s.
func Extract(text string) string {
	for _, re := range patterns {
		m := re.FindString(text)
		if m == "" {
			continue
		}
		digits := onlyDigits(m)
		if len(digits) > 10 {
			digits = digits[len(digits)-10:]
		}
		return digits
	}
	return ""
}

// Ptr is Extract returning nil for no match.
func Ptr(text string) *string {
	if c := Extract(text); c != "" {
		return &c
	}
	return nil
}

// Mask replaces every phone number in text with a fixed placeholder.
// Prefixed forms go first so the country code is masked too.
func Mask(text string) string {
	for i := len(patterns) - 1; i >= 0; i-- {
		text = patterns[i].ReplaceAllString(text, Placeholder)
	}
	return text
}

// Patterns returns copies of the phone patterns for log redaction.
func Patterns() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, re := range patterns {
		out[i] = regexp.MustCompile(re.String())
	}
	return out
}

func onlyDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
