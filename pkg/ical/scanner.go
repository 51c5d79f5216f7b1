package ical

import "strings"

// ContentLine is one logical (post-unfolding) RFC 5545 line.
//
//	contentline = name *(";" param) ":" value CRLF
//	name        = [group "."] iana-token / x-name
//
// Group and Name alias the source whenever the line was not folded
// through them. Value keeps its segment structure so the raw layer
// stays zero-copy.
type ContentLine struct {
	Group      string
	Name       string
	Parameters []RawParameter
	Value      Segments
	Span       Span
}

// RawParameter is a scanned parameter with its verbatim values.
// Duplicates of the same name are kept as separate entries.
type RawParameter struct {
	Name   string
	Values []RawParameterValue
	Span   Span
}

// RawParameterValue distinguishes ;X=foo from ;X="foo" since quoting
// widens the allowed character set.
type RawParameterValue struct {
	Value  string
	Quoted bool
	Span   Span
}

func (p RawParameter) owned() RawParameter {
	out := p
	out.Name = strings.Clone(p.Name)
	out.Values = make([]RawParameterValue, len(p.Values))
	for i, v := range p.Values {
		out.Values[i] = RawParameterValue{Value: strings.Clone(v.Value), Quoted: v.Quoted, Span: v.Span}
	}
	return out
}

type scanner struct {
	lx     *lexer
	peeked *token
	eof    bool
	errs   []*Error
}

func newScanner(src string) *scanner {
	return &scanner{lx: newLexer(src)}
}

// scanLines runs the scanner over the whole source.
func scanLines(src string) ([]ContentLine, []*Error) {
	sc := newScanner(src)
	var lines []ContentLine
	for {
		line, ok := sc.next()
		if !ok {
			break
		}
		if line != nil {
			lines = append(lines, *line)
		}
	}
	return lines, sc.errs
}

func (s *scanner) peek() (token, bool) {
	if s.peeked != nil {
		return *s.peeked, true
	}
	if s.eof {
		return token{}, false
	}
	tok, ok := s.lx.next()
	if !ok {
		s.eof = true
		return token{}, false
	}
	s.peeked = &tok
	return tok, true
}

func (s *scanner) advance() (token, bool) {
	tok, ok := s.peek()
	if ok {
		s.peeked = nil
	}
	return tok, ok
}

// take consumes the next token when it carries data for the current
// construct, transparently recording lexical error tokens.
func (s *scanner) takeData() (token, bool) {
	for {
		tok, ok := s.peek()
		if !ok {
			return token{}, false
		}
		if tok.Kind == tokError {
			s.advance()
			s.errs = append(s.errs, errLexical(tok.Span, "%s", tok.Msg))
			continue
		}
		return tok, true
	}
}

// recover consumes tokens up to and including the next newline.
func (s *scanner) recover() {
	for {
		tok, ok := s.advance()
		if !ok || tok.Kind == tokNewline {
			return
		}
	}
}

// next scans one content line. A nil line with ok=true means the line
// was malformed (or blank) and recovery advanced past it.
func (s *scanner) next() (*ContentLine, bool) {
	tok, ok := s.takeData()
	if !ok {
		return nil, false
	}
	if tok.Kind == tokNewline {
		// blank line, tolerated
		s.advance()
		return nil, true
	}

	nameSegs, ok := s.scanName()
	if !ok {
		s.recover()
		return nil, true
	}
	group, name, ok := splitGroup(nameSegs)
	if !ok {
		s.errs = append(s.errs, errStructural(nameSegs.Span(), "invalid property name %q", nameSegs.String()))
		s.recover()
		return nil, true
	}

	line := ContentLine{Group: group, Name: name, Span: nameSegs.Span()}

	for {
		tok, ok := s.takeData()
		if !ok {
			s.errs = append(s.errs, errStructural(line.Span, "property %q has no ':' before end of input", line.Name))
			return nil, true
		}
		switch tok.Kind {
		case tokSemicolon:
			s.advance()
			param, ok := s.scanParameter()
			if !ok {
				s.recover()
				return nil, true
			}
			line.Parameters = append(line.Parameters, param)
			line.Span = line.Span.Cover(param.Span)
		case tokColon:
			s.advance()
			value, span := s.scanValue()
			line.Value = value
			line.Span = line.Span.Cover(span)
			return &line, true
		default:
			s.errs = append(s.errs, errStructural(tok.Span, "expected ':' or ';' after property name, found %q", tok.Text))
			s.recover()
			return nil, true
		}
	}
}

// scanName gathers the leading word run forming [group "."] name.
func (s *scanner) scanName() (Segments, bool) {
	var segs Segments
	for {
		tok, ok := s.takeData()
		if !ok || tok.Kind != tokWord {
			break
		}
		s.advance()
		segs = append(segs, Seg{Text: tok.Text, Span: tok.Span})
	}
	if len(segs) == 0 {
		tok, ok := s.takeData()
		span := Span{}
		found := "end of input"
		if ok {
			span = tok.Span
			found = "'" + tok.Text + "'"
		}
		s.errs = append(s.errs, errStructural(span, "expected property name, found %s", found))
		return nil, false
	}
	return segs, true
}

// ianaToken reports whether s is a non-empty run of letters, digits,
// and '-'.
func ianaToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch {
		case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9', b == '-':
		default:
			return false
		}
	}
	return true
}

// splitGroup separates an optional group prefix and validates that
// both halves are iana-tokens (letters, digits, '-'). A second dot
// fails the name's token check.
func splitGroup(segs Segments) (group, name string, ok bool) {
	dot := segs.IndexByte('.')
	if dot < 0 {
		name = segs.String()
		return "", name, ianaToken(name)
	}
	left, rest := segs.SplitAt(dot)
	_, right := rest.SplitAt(1)
	group, name = left.String(), right.String()
	if !ianaToken(group) || !ianaToken(name) {
		return "", "", false
	}
	return group, name, true
}

// scanParameter parses one ";" param after its semicolon has been
// consumed.
//
//	param       = param-name "=" param-value *("," param-value)
//	param-value = paramtext / quoted-string
func (s *scanner) scanParameter() (RawParameter, bool) {
	nameSegs, ok := s.scanName()
	if !ok {
		return RawParameter{}, false
	}
	group, name, valid := splitGroup(nameSegs)
	if !valid || group != "" {
		s.errs = append(s.errs, errStructural(nameSegs.Span(), "invalid parameter name %q", nameSegs.String()))
		return RawParameter{}, false
	}
	param := RawParameter{Name: name, Span: nameSegs.Span()}

	tok, ok := s.takeData()
	if !ok || tok.Kind != tokEquals {
		span := param.Span
		if ok {
			span = tok.Span
		}
		s.errs = append(s.errs, errStructural(span, "expected '=' after parameter name %q", name))
		return RawParameter{}, false
	}
	s.advance()

	for {
		value, ok := s.scanParameterValue()
		if !ok {
			return RawParameter{}, false
		}
		param.Values = append(param.Values, value)
		param.Span = param.Span.Cover(value.Span)
		tok, ok := s.takeData()
		if !ok || tok.Kind != tokComma {
			return param, true
		}
		s.advance()
	}
}

func (s *scanner) scanParameterValue() (RawParameterValue, bool) {
	tok, ok := s.takeData()
	if ok && tok.Kind == tokQuote {
		s.advance()
		return s.scanQuotedValue(tok.Span)
	}

	// paramtext: anything except ; : , " and newline
	var segs Segments
	span := Span{}
	if ok {
		span = Span{tok.Span.Start, tok.Span.Start}
	}
	for {
		tok, ok := s.takeData()
		if !ok {
			break
		}
		stop := false
		switch tok.Kind {
		case tokNewline, tokColon, tokSemicolon, tokComma:
			stop = true
		case tokQuote:
			s.errs = append(s.errs, errStructural(tok.Span, "'\"' not allowed inside an unquoted parameter value"))
			return RawParameterValue{}, false
		}
		if stop {
			break
		}
		s.advance()
		segs = append(segs, Seg{Text: tok.Text, Span: tok.Span})
	}
	if len(segs) > 0 {
		span = segs.Span()
	}
	return RawParameterValue{Value: segs.String(), Span: span}, true
}

// scanQuotedValue parses a quoted-string after its opening quote.
func (s *scanner) scanQuotedValue(open Span) (RawParameterValue, bool) {
	var segs Segments
	for {
		tok, ok := s.takeData()
		if !ok || tok.Kind == tokNewline {
			span := open
			if ok {
				span = open.Cover(tok.Span)
			}
			s.errs = append(s.errs, errStructural(span, "unterminated quoted parameter value"))
			return RawParameterValue{}, false
		}
		s.advance()
		if tok.Kind == tokQuote {
			return RawParameterValue{
				Value:  segs.String(),
				Quoted: true,
				Span:   open.Cover(tok.Span),
			}, true
		}
		segs = append(segs, Seg{Text: tok.Text, Span: tok.Span})
	}
}

// scanValue gathers everything up to the line terminator verbatim.
// Escapes stay raw here; the value pass interprets them.
func (s *scanner) scanValue() (Segments, Span) {
	var segs Segments
	var span Span
	for {
		tok, ok := s.takeData()
		if !ok {
			return segs, span
		}
		s.advance()
		if tok.Kind == tokNewline {
			return segs, span.Cover(tok.Span)
		}
		span = span.Cover(tok.Span)
		if n := len(segs); n > 0 && segs[n-1].Span.End == tok.Span.Start {
			// contiguous in source, re-slice instead of copying
			segs[n-1].Span.End = tok.Span.End
			segs[n-1].Text = s.lx.src[segs[n-1].Span.Start:segs[n-1].Span.End]
			continue
		}
		segs = append(segs, Seg{Text: tok.Text, Span: tok.Span})
	}
}
