package ical

import "strings"

// RawComponent is a BEGIN/END block with its properties and children,
// before any type interpretation. Property order is preserved.
type RawComponent struct {
	Name       string
	Properties []RawProperty
	Children   []*RawComponent
	Span       Span
}

// RawProperty keeps a property exactly as scanned: verbatim parameter
// values and the raw (still escaped) value text.
type RawProperty struct {
	Group      string
	Name       string
	Parameters []RawParameter
	Value      Segments
	Span       Span
}

// Owned returns a deep copy whose strings no longer alias the source
// buffer, so the tree can outlive the text it was parsed from.
func (c *RawComponent) Owned() *RawComponent {
	if c == nil {
		return nil
	}
	out := &RawComponent{Name: strings.Clone(c.Name), Span: c.Span}
	out.Properties = make([]RawProperty, len(c.Properties))
	for i, p := range c.Properties {
		out.Properties[i] = p.Owned()
	}
	out.Children = make([]*RawComponent, len(c.Children))
	for i, ch := range c.Children {
		out.Children[i] = ch.Owned()
	}
	return out
}

func (p RawProperty) Owned() RawProperty {
	out := RawProperty{
		Group: strings.Clone(p.Group),
		Name:  strings.Clone(p.Name),
		Value: p.Value.Owned(),
		Span:  p.Span,
	}
	out.Parameters = make([]RawParameter, len(p.Parameters))
	for i, param := range p.Parameters {
		out.Parameters[i] = param.owned()
	}
	return out
}

type treeFrame struct {
	component *RawComponent
	beginSpan Span
}

// buildTree assembles content lines into component trees using an
// explicit stack. Structural errors never abort: whatever well-formed
// fragments exist are still returned alongside the error list.
func buildTree(lines []ContentLine, maxDepth int) ([]*RawComponent, []*Error) {
	if maxDepth < 1 {
		maxDepth = DefaultMaxDepth
	}
	var (
		roots     []*RawComponent
		stack     []treeFrame
		errs      []*Error
		skipDepth int
	)
	for _, line := range lines {
		isBegin := strings.EqualFold(line.Name, "BEGIN")
		isEnd := strings.EqualFold(line.Name, "END")

		// inside an over-deep subtree: count the nesting and drop
		// everything until the matching END
		if skipDepth > 0 {
			switch {
			case isBegin:
				skipDepth++
			case isEnd:
				skipDepth--
			}
			continue
		}

		// BEGIN/END take no parameters; the line still counts for
		// nesting so one stray parameter cannot unbalance the tree.
		if (isBegin || isEnd) && len(line.Parameters) > 0 {
			errs = append(errs, errStructural(line.Span, "%s line must not have parameters", strings.ToUpper(line.Name)))
		}

		switch {
		case isBegin:
			name := line.Value.String()
			if name == "" {
				errs = append(errs, errStructural(line.Span, "BEGIN with empty component name"))
				continue
			}
			if len(stack) >= maxDepth {
				errs = append(errs, errStructural(line.Span, "component nesting exceeds maximum depth %d", maxDepth))
				skipDepth = 1
				continue
			}
			stack = append(stack, treeFrame{
				component: &RawComponent{Name: name, Span: line.Span},
				beginSpan: line.Span,
			})
		case isEnd:
			name := line.Value.String()
			if len(stack) == 0 {
				errs = append(errs, errStructural(line.Span, "END:%s without a matching BEGIN", name))
				continue
			}
			frame := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !strings.EqualFold(frame.component.Name, name) {
				errs = append(errs, errStructural(
					frame.beginSpan.Cover(line.Span),
					"END:%s does not match BEGIN:%s", name, frame.component.Name))
			}
			frame.component.Span = frame.component.Span.Cover(line.Span)
			if len(stack) == 0 {
				roots = append(roots, frame.component)
			} else {
				parent := stack[len(stack)-1].component
				parent.Children = append(parent.Children, frame.component)
			}
		default:
			if len(stack) == 0 {
				errs = append(errs, errStructural(line.Span, "property %q outside any component", line.Name))
				continue
			}
			top := stack[len(stack)-1].component
			top.Properties = append(top.Properties, RawProperty{
				Group:      line.Group,
				Name:       line.Name,
				Parameters: line.Parameters,
				Value:      line.Value,
				Span:       line.Span,
			})
		}
	}
	for i := len(stack) - 1; i >= 0; i-- {
		errs = append(errs, errStructural(stack[i].beginSpan,
			"component %s is never closed", stack[i].component.Name))
	}
	return roots, errs
}
