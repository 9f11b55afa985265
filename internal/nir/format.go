package nir

import "strings"

// groups are the field boundaries shown while typing: 1 88 02 75 123 456.
var groups = []int{1, 3, 5, 7, 10, Length}

// Clean strips every non-digit character.
func Clean(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		if c := raw[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Format groups the digits of a partially typed NIR by field. Input beyond
// 13 digits is dropped, like the input field does.
func Format(raw string) string {
	clean := Clean(raw)
	if len(clean) > Length {
		clean = clean[:Length]
	}

	parts := make([]string, 0, len(groups))
	start := 0
	for _, end := range groups {
		if start >= len(clean) {
			break
		}
		if end > len(clean) {
			end = len(clean)
		}
		parts = append(parts, clean[start:end])
		start = end
	}
	return strings.Join(parts, " ")
}
