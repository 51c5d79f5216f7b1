package ical

import (
	"unicode/utf8"
)

type tokenKind int

const (
	tokColon tokenKind = iota
	tokSemicolon
	tokComma
	tokEquals
	tokQuote
	tokNewline
	tokWord
	tokEscape
	tokText
	tokError
)

// token is a classified lexical unit. Text aliases the source except
// for tokError, where Msg carries the diagnostic instead.
type token struct {
	Kind tokenKind
	Text string
	Span Span
	Msg  string
}

// lexer walks the source byte by byte, dropping RFC 5545 fold markers
// (CRLF followed by a single space or tab) as it goes, so every
// downstream phase sees pre-unfolded input. Spans always reference the
// original buffer.
type lexer struct {
	src string
	pos int
}

func newLexer(src string) *lexer {
	return &lexer{src: src}
}

// isWordByte reports whether b may appear in an unquoted run: printable
// ASCII minus the structural characters and backslash, plus HTAB.
func isWordByte(b byte) bool {
	if b == '\t' {
		return true
	}
	if b < 0x20 || b == 0x7f {
		return false
	}
	switch b {
	case ':', ';', ',', '=', '"', '\\':
		return false
	}
	return b < 0x80
}

// skipFolds consumes any run of fold markers at the current position.
// A bare-LF fold is honored too; the lenient newline handling below
// already admits bare LF as a terminator.
func (l *lexer) skipFolds() {
	for {
		rest := l.src[l.pos:]
		if len(rest) >= 3 && rest[0] == '\r' && rest[1] == '\n' && (rest[2] == ' ' || rest[2] == '\t') {
			l.pos += 3
			continue
		}
		if len(rest) >= 2 && rest[0] == '\n' && (rest[1] == ' ' || rest[1] == '\t') {
			l.pos += 2
			continue
		}
		return
	}
}

// next returns the following token, or false at end of input.
func (l *lexer) next() (token, bool) {
	l.skipFolds()
	if l.pos >= len(l.src) {
		return token{}, false
	}
	start := l.pos
	b := l.src[l.pos]

	switch b {
	case ':':
		l.pos++
		return l.tok(tokColon, start), true
	case ';':
		l.pos++
		return l.tok(tokSemicolon, start), true
	case ',':
		l.pos++
		return l.tok(tokComma, start), true
	case '=':
		l.pos++
		return l.tok(tokEquals, start), true
	case '"':
		l.pos++
		return l.tok(tokQuote, start), true
	case '\r':
		if l.pos+1 < len(l.src) && l.src[l.pos+1] == '\n' {
			l.pos += 2
			return l.tok(tokNewline, start), true
		}
		l.pos++
		t := l.tok(tokError, start)
		t.Msg = "bare carriage return"
		return t, true
	case '\n':
		// bare LF terminator, tolerated as a documented relaxation
		l.pos++
		return l.tok(tokNewline, start), true
	case '\\':
		if l.pos+1 >= len(l.src) || l.src[l.pos+1] == '\r' || l.src[l.pos+1] == '\n' {
			l.pos++
			t := l.tok(tokError, start)
			t.Msg = "incomplete escape sequence"
			return t, true
		}
		_, size := utf8.DecodeRuneInString(l.src[l.pos+1:])
		l.pos += 1 + size
		return l.tok(tokEscape, start), true
	}

	if isWordByte(b) {
		for l.pos < len(l.src) && isWordByte(l.src[l.pos]) {
			l.pos++
		}
		return l.tok(tokWord, start), true
	}

	if b >= 0x80 {
		// opaque non-ASCII run; RFC 5545 permits UTF-8 content
		for l.pos < len(l.src) && l.src[l.pos] >= 0x80 {
			r, size := utf8.DecodeRuneInString(l.src[l.pos:])
			if r == utf8.RuneError && size == 1 {
				if l.pos > start {
					return l.tok(tokText, start), true
				}
				l.pos++
				t := l.tok(tokError, start)
				t.Msg = "invalid utf-8 byte sequence"
				return t, true
			}
			l.pos += size
		}
		return l.tok(tokText, start), true
	}

	// remaining: control characters other than HTAB
	l.pos++
	t := l.tok(tokError, start)
	t.Msg = "control character in input"
	return t, true
}

func (l *lexer) tok(kind tokenKind, start int) token {
	return token{
		Kind: kind,
		Text: l.src[start:l.pos],
		Span: Span{start, l.pos},
	}
}
