package ical

import "strings"

// propSet is the working state of semantic analysis over one
// component: the typed properties produced by the property pass,
// indexed by kind, plus the accumulated error list.
type propSet struct {
	comp   string
	span   Span
	byKind map[PropertyKind][]Property
	exts   []ExtensionProp
	errs   []*Error
}

// analyzeProperties runs the typed passes over every property of a
// raw component and indexes the results.
func analyzeProperties(c *RawComponent) *propSet {
	s := &propSet{
		comp:   strings.ToUpper(c.Name),
		span:   c.Span,
		byKind: make(map[PropertyKind][]Property),
	}
	for _, raw := range c.Properties {
		prop, errs := analyzeProperty(raw)
		s.errs = append(s.errs, errs...)
		if prop == nil {
			continue
		}
		if ext, ok := prop.(ExtensionProp); ok {
			s.exts = append(s.exts, ext)
			continue
		}
		s.byKind[prop.Kind()] = append(s.byKind[prop.Kind()], prop)
	}
	return s
}

// requireOne enforces exactly-one cardinality. Zero or duplicate
// occurrences record a semantic error; the zero value (or the first
// occurrence) is returned so analysis can continue.
func requireOne[T Property](s *propSet, kind PropertyKind) T {
	var zero T
	ps := s.byKind[kind]
	s.consume(kind)
	switch len(ps) {
	case 0:
		s.errs = append(s.errs, errSemantic(s.span, "%s is missing required property %s", s.comp, kind))
		return zero
	case 1:
		return ps[0].(T)
	default:
		s.errs = append(s.errs, errSemantic(propSpan(ps[1]), "%s must carry exactly one %s, found %d", s.comp, kind, len(ps)))
		return ps[0].(T)
	}
}

// atMostOne enforces 0-or-1 cardinality, returning nil when absent.
func atMostOne[T Property](s *propSet, kind PropertyKind) *T {
	ps := s.byKind[kind]
	s.consume(kind)
	if len(ps) == 0 {
		return nil
	}
	if len(ps) > 1 {
		s.errs = append(s.errs, errSemantic(propSpan(ps[1]), "%s may carry at most one %s, found %d", s.comp, kind, len(ps)))
	}
	v := ps[0].(T)
	return &v
}

// each collects every occurrence of an any-cardinality property.
func each[T Property](s *propSet, kind PropertyKind) []T {
	ps := s.byKind[kind]
	s.consume(kind)
	if len(ps) == 0 {
		return nil
	}
	out := make([]T, len(ps))
	for i, p := range ps {
		out[i] = p.(T)
	}
	return out
}

func propSpan(p Property) Span {
	if b, ok := p.(interface{ base() Prop }); ok {
		return b.base().Span
	}
	if ext, ok := p.(ExtensionProp); ok {
		return ext.Span
	}
	return Span{}
}

// unexpected flags kinds that are never legal on this component.
// Anything not consumed by the component's builder passes through
// here.
func (s *propSet) unexpected() {
	for kind, ps := range s.byKind {
		for _, p := range ps {
			s.errs = append(s.errs, errSemantic(propSpan(p), "property %s is not legal on %s", kind, s.comp))
		}
	}
}

// consume removes a kind from the index so unexpected() will not
// flag it. The cardinality helpers call it implicitly.
func (s *propSet) consume(kind PropertyKind) {
	delete(s.byKind, kind)
}

// statusValue maps a STATUS property's text through a closed value
// set, recording a semantic error on anything outside it.
func statusValue[T ~int](s *propSet, prop *Status, names map[T]string) *T {
	if prop == nil {
		return nil
	}
	text := prop.Value().Text
	for t, name := range names {
		if strings.EqualFold(text, name) {
			return &t
		}
	}
	s.errs = append(s.errs, errSemantic(prop.Span, "invalid STATUS %q on %s", text, s.comp))
	return nil
}

// EventStatus is the STATUS value set legal on a VEVENT.
type EventStatus int

const (
	EventTentative EventStatus = iota
	EventConfirmed
	EventCancelled
)

var eventStatusNames = map[EventStatus]string{
	EventTentative: "TENTATIVE",
	EventConfirmed: "CONFIRMED",
	EventCancelled: "CANCELLED",
}

func (s EventStatus) String() string { return eventStatusNames[s] }

// TodoStatus is the STATUS value set legal on a VTODO.
type TodoStatus int

const (
	TodoNeedsAction TodoStatus = iota
	TodoCompleted
	TodoInProcess
	TodoCancelled
)

var todoStatusNames = map[TodoStatus]string{
	TodoNeedsAction: "NEEDS-ACTION",
	TodoCompleted:   "COMPLETED",
	TodoInProcess:   "IN-PROCESS",
	TodoCancelled:   "CANCELLED",
}

func (s TodoStatus) String() string { return todoStatusNames[s] }

// JournalStatus is the STATUS value set legal on a VJOURNAL.
type JournalStatus int

const (
	JournalDraft JournalStatus = iota
	JournalFinal
	JournalCancelled
)

var journalStatusNames = map[JournalStatus]string{
	JournalDraft:     "DRAFT",
	JournalFinal:     "FINAL",
	JournalCancelled: "CANCELLED",
}

func (s JournalStatus) String() string { return journalStatusNames[s] }

// Transparency is the TRANSP value set.
type Transparency int

const (
	TranspOpaque Transparency = iota
	TranspTransparent
)

func (t Transparency) String() string {
	if t == TranspTransparent {
		return "TRANSPARENT"
	}
	return "OPAQUE"
}
