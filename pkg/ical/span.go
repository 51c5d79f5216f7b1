package ical

import (
	"strings"
)

// Span is a half-open byte range [Start, End) into the original source
// text. Every diagnostic and every raw node carries one.
type Span struct {
	Start int
	End   int
}

func (s Span) Len() int {
	return s.End - s.Start
}

func (s Span) Empty() bool {
	return s.End <= s.Start
}

// Cover returns the smallest span containing both s and o.
func (s Span) Cover(o Span) Span {
	if s.Empty() {
		return o
	}
	if o.Empty() {
		return s
	}
	out := s
	if o.Start < out.Start {
		out.Start = o.Start
	}
	if o.End > out.End {
		out.End = o.End
	}
	return out
}

// Position resolves a byte offset into a 1-based line and column.
// Columns count bytes, not runes.
func Position(src string, offset int) (line, col int) {
	if offset > len(src) {
		offset = len(src)
	}
	line, col = 1, 1
	for i := 0; i < offset; i++ {
		if src[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

// Seg is one contiguous slice of the source. Text aliases the source
// buffer, so a Seg borrows rather than copies.
type Seg struct {
	Text string
	Span Span
}

// Segments is a run of source slices forming one logical string. A
// value folded across physical lines scans into multiple segments; an
// unfolded one into a single segment. The zero value is the empty
// string.
type Segments []Seg

func (s Segments) String() string {
	switch len(s) {
	case 0:
		return ""
	case 1:
		return s[0].Text
	}
	var b strings.Builder
	for _, seg := range s {
		b.WriteString(seg.Text)
	}
	return b.String()
}

func (s Segments) Len() int {
	n := 0
	for _, seg := range s {
		n += len(seg.Text)
	}
	return n
}

// Span returns the covering source range, including any fold markers
// that sit between segments.
func (s Segments) Span() Span {
	if len(s) == 0 {
		return Span{}
	}
	out := s[0].Span
	for _, seg := range s[1:] {
		out = out.Cover(seg.Span)
	}
	return out
}

// SplitAt splits the logical string at byte offset n, keeping spans
// intact on both sides.
func (s Segments) SplitAt(n int) (Segments, Segments) {
	var left Segments
	for i, seg := range s {
		if n >= len(seg.Text) {
			left = append(left, seg)
			n -= len(seg.Text)
			continue
		}
		if n > 0 {
			left = append(left, Seg{
				Text: seg.Text[:n],
				Span: Span{seg.Span.Start, seg.Span.Start + n},
			})
		}
		right := Segments{{
			Text: seg.Text[n:],
			Span: Span{seg.Span.Start + n, seg.Span.End},
		}}
		right = append(right, s[i+1:]...)
		return left, right
	}
	return left, nil
}

// IndexByte locates b in the logical string, returning its byte offset
// or -1.
func (s Segments) IndexByte(b byte) int {
	off := 0
	for _, seg := range s {
		if i := strings.IndexByte(seg.Text, b); i >= 0 {
			return off + i
		}
		off += len(seg.Text)
	}
	return -1
}

// Owned returns an equivalent Segments whose text no longer aliases
// the source buffer.
func (s Segments) Owned() Segments {
	if s == nil {
		return nil
	}
	out := make(Segments, len(s))
	for i, seg := range s {
		out[i] = Seg{Text: strings.Clone(seg.Text), Span: seg.Span}
	}
	return out
}
