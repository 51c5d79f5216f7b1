package ical

import "strings"

// DefaultMaxDepth bounds component nesting so adversarial input
// cannot grow the builder stack without limit.
const DefaultMaxDepth = 16

// Mode selects how Parse treats a non-empty error list.
type Mode int

const (
	// ModeLenient returns every calendar that validated successfully
	// alongside the full error list.
	ModeLenient Mode = iota
	// ModeStrict returns calendars only when the error list is empty.
	ModeStrict
)

// Options configures a parse. The zero value is lenient parsing with
// the default nesting bound.
type Options struct {
	Mode     Mode
	MaxDepth int
}

// Parse runs the whole pipeline over source text: lexing, scanning,
// tree building, typed analysis, and semantic analysis. Every
// top-level VCALENDAR is returned; errors from all phases come back
// in one position-ordered, deduplicated list.
func Parse(src string, opts Options) ([]*ICalendar, []*Error) {
	lines, errs := scanLines(src)
	roots, treeErrs := buildTree(lines, opts.MaxDepth)
	errs = append(errs, treeErrs...)

	if len(roots) == 0 {
		// nothing usable: report the structural picture only
		return nil, sortAndDedupe(errs)
	}

	var cals []*ICalendar
	for _, root := range roots {
		if !strings.EqualFold(root.Name, "VCALENDAR") {
			errs = append(errs, errStructural(root.Span, "top-level component must be VCALENDAR, found %s", root.Name))
			continue
		}
		cal, calErrs := analyzeCalendar(root)
		errs = append(errs, calErrs...)
		if cal != nil {
			cals = append(cals, cal)
		}
	}

	errs = sortAndDedupe(errs)
	if opts.Mode == ModeStrict && len(errs) > 0 {
		return nil, errs
	}
	return cals, errs
}

// ParseStrict parses with ModeStrict: any error means zero calendars.
func ParseStrict(src string) ([]*ICalendar, []*Error) {
	return Parse(src, Options{Mode: ModeStrict})
}

// ParseLenient parses with ModeLenient: best-effort calendars plus
// the full error list.
func ParseLenient(src string) ([]*ICalendar, []*Error) {
	return Parse(src, Options{Mode: ModeLenient})
}

// ParseRaw stops after the tree builder, returning the zero-copy raw
// component trees. The trees alias src; use Owned to detach them.
func ParseRaw(src string, opts Options) ([]*RawComponent, []*Error) {
	lines, errs := scanLines(src)
	roots, treeErrs := buildTree(lines, opts.MaxDepth)
	return roots, sortAndDedupe(append(errs, treeErrs...))
}
