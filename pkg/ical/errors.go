package ical

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yzx9/aim/pkg/terrors"
)

// ErrorClass partitions parse errors by the phase that produced them.
type ErrorClass int

const (
	ClassLexical ErrorClass = iota
	ClassStructural
	ClassValidation
	ClassSemantic
)

func (c ErrorClass) String() string {
	switch c {
	case ClassLexical:
		return "lexical"
	case ClassStructural:
		return "structural"
	case ClassValidation:
		return "validation"
	case ClassSemantic:
		return "semantic"
	default:
		return "unknown"
	}
}

// Error is a parse diagnostic with a source span. It unwraps to the
// terrors sentinel of its class so callers can filter with errors.Is.
type Error struct {
	Class ErrorClass
	Span  Span
	Msg   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error at %d..%d: %s", e.Class, e.Span.Start, e.Span.End, e.Msg)
}

func (e *Error) Unwrap() error {
	switch e.Class {
	case ClassLexical:
		return terrors.ErrLexical
	case ClassStructural:
		return terrors.ErrStructural
	case ClassValidation:
		return terrors.ErrValidation
	case ClassSemantic:
		return terrors.ErrSemantic
	default:
		return terrors.ErrParse
	}
}

// Render produces a human-readable diagnostic quoting the offending
// source line with a position marker.
func (e *Error) Render(src string) string {
	line, col := Position(src, e.Span.Start)
	start := strings.LastIndexByte(src[:min(e.Span.Start, len(src))], '\n') + 1
	end := strings.IndexByte(src[start:], '\n')
	if end < 0 {
		end = len(src)
	} else {
		end += start
	}
	quoted := strings.TrimRight(src[start:end], "\r")

	var b strings.Builder
	fmt.Fprintf(&b, "%d:%d: %s error: %s\n", line, col, e.Class, e.Msg)
	fmt.Fprintf(&b, "  | %s\n", quoted)
	marker := e.Span.Len()
	if avail := len(quoted) - (col - 1); marker > avail {
		marker = avail
	}
	if marker < 1 {
		marker = 1
	}
	fmt.Fprintf(&b, "  | %s%s", strings.Repeat(" ", col-1), strings.Repeat("^", marker))
	return b.String()
}

func errLexical(span Span, format string, args ...any) *Error {
	return &Error{Class: ClassLexical, Span: span, Msg: fmt.Sprintf(format, args...)}
}

func errStructural(span Span, format string, args ...any) *Error {
	return &Error{Class: ClassStructural, Span: span, Msg: fmt.Sprintf(format, args...)}
}

func errValidation(span Span, format string, args ...any) *Error {
	return &Error{Class: ClassValidation, Span: span, Msg: fmt.Sprintf(format, args...)}
}

func errSemantic(span Span, format string, args ...any) *Error {
	return &Error{Class: ClassSemantic, Span: span, Msg: fmt.Sprintf(format, args...)}
}

// sortAndDedupe orders errors by source position and drops exact
// duplicates. The sort is stable so same-position errors keep their
// phase order.
func sortAndDedupe(errs []*Error) []*Error {
	if len(errs) < 2 {
		return errs
	}
	sort.SliceStable(errs, func(i, j int) bool {
		if errs[i].Span.Start != errs[j].Span.Start {
			return errs[i].Span.Start < errs[j].Span.Start
		}
		return errs[i].Span.End < errs[j].Span.End
	})
	out := errs[:1]
	for _, e := range errs[1:] {
		last := out[len(out)-1]
		if e.Class == last.Class && e.Span == last.Span && e.Msg == last.Msg {
			continue
		}
		out = append(out, e)
	}
	return out
}
