package ical

import "strings"

// unescapeText resolves the §3.3.11 escapes into literal characters.
//
//	ESCAPED-CHAR = ("\\" / "\;" / "\," / "\N" / "\n")
func unescapeText(raw string, span Span) (string, *Error) {
	if !strings.ContainsRune(raw, '\\') {
		return raw, nil
	}
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(raw) {
			return "", errValidation(span, "incomplete escape sequence at end of text value")
		}
		i++
		switch raw[i] {
		case '\\':
			b.WriteByte('\\')
		case ';':
			b.WriteByte(';')
		case ',':
			b.WriteByte(',')
		case 'n', 'N':
			b.WriteByte('\n')
		default:
			return "", errValidation(span, `invalid escape sequence \%c in text value`, raw[i])
		}
	}
	return b.String(), nil
}

// EscapeText is the inverse: the formatter applies it before folding.
func EscapeText(s string) string {
	if !strings.ContainsAny(s, "\\;,\n") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			b.WriteString(`\\`)
		case ';':
			b.WriteString(`\;`)
		case ',':
			b.WriteString(`\,`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			// CR never survives into a value; fold back to \n form
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// splitOnUnescapedCommas divides a multi-valued raw text into its
// comma-separated parts, leaving escapes intact for unescapeText.
func splitOnUnescapedCommas(raw string) []string {
	if !strings.ContainsRune(raw, ',') {
		return []string{raw}
	}
	var parts []string
	start := 0
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case '\\':
			i++
		case ',':
			parts = append(parts, raw[start:i])
			start = i + 1
		}
	}
	parts = append(parts, raw[start:])
	return parts
}
