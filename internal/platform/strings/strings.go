// Package strings provides string helpers plus unicode cleanup for inbound chat text
package strings

import (
	std "strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Clean normalizes pasted chat text so downstream parsing sees one canonical form.
// NFKC folds compatibility forms, width.Fold collapses fullwidth digits and
// punctuation, and format-class runes (zero width spaces and friends) are dropped
func Clean(s string) string {
	s = norm.NFKC.String(s)
	s = width.Fold.String(s)
	return std.Map(func(r rune) rune {
		if unicode.Is(unicode.Cf, r) {
			return -1
		}
		return r
	}, s)
}

// CollapseSpaces trims and squeezes interior whitespace runs to a single space
func CollapseSpaces(s string) string {
	return std.Join(std.Fields(s), " ")
}

// EmptyToNil returns empty string if s is all whitespace, otherwise returns s
func EmptyToNil(s string) string {
	if std.TrimSpace(s) == "" {
		return ""
	}
	return s
}

// Ptr returns a pointer to s, or nil if s is empty
func Ptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// SQLNull returns nil if s is blank/whitespace, else the original string.
// Useful for query args where NULL is desired for blanks
func SQLNull(s string) any {
	if std.TrimSpace(s) == "" {
		return nil
	}
	return s
}

// Deref returns "" if ps is nil, else *ps
func Deref(ps *string) string {
	if ps == nil {
		return ""
	}
	return *ps
}
