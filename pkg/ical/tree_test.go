package ical

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func mustTree(t *testing.T, src string, maxDepth int) ([]*RawComponent, []*Error) {
	t.Helper()
	lines, errs := scanLines(src)
	assert.Empty(t, errs)
	return buildTree(lines, maxDepth)
}

func TestBuildTree(t *testing.T) {
	assert := assert.New(t)
	src := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"PRODID:-//test//EN",
		"BEGIN:VEVENT",
		"SUMMARY:a",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")
	roots, errs := mustTree(t, src, 0)
	assert.Empty(errs)
	if assert.Len(roots, 1) {
		cal := roots[0]
		assert.Equal("VCALENDAR", cal.Name)
		if assert.Len(cal.Properties, 1) {
			assert.Equal("PRODID", cal.Properties[0].Name)
		}
		if assert.Len(cal.Children, 1) {
			assert.Equal("VEVENT", cal.Children[0].Name)
		}
	}
}

func TestBuildTreeErrors(t *testing.T) {
	assert := assert.New(t)
	t.Run("unclosed component", func(t *testing.T) {
		roots, errs := mustTree(t, "BEGIN:VCALENDAR\r\nBEGIN:VEVENT\r\n", 0)
		assert.Empty(roots)
		if assert.Len(errs, 2) {
			assert.Contains(errs[0].Msg, "VEVENT is never closed")
			assert.Contains(errs[1].Msg, "VCALENDAR is never closed")
		}
	})
	t.Run("end without begin", func(t *testing.T) {
		_, errs := mustTree(t, "END:VCALENDAR\r\n", 0)
		if assert.Len(errs, 1) {
			assert.Contains(errs[0].Msg, "without a matching BEGIN")
		}
	})
	t.Run("name mismatch still pops", func(t *testing.T) {
		roots, errs := mustTree(t, "BEGIN:VEVENT\r\nEND:VTODO\r\n", 0)
		if assert.Len(errs, 1) {
			assert.Contains(errs[0].Msg, "END:VTODO does not match BEGIN:VEVENT")
		}
		assert.Len(roots, 1)
	})
	t.Run("empty begin name", func(t *testing.T) {
		_, errs := mustTree(t, "BEGIN:\r\n", 0)
		if assert.Len(errs, 1) {
			assert.Contains(errs[0].Msg, "empty component name")
		}
	})
	t.Run("parameters on BEGIN", func(t *testing.T) {
		roots, errs := mustTree(t, "BEGIN;X-A=1:VEVENT\r\nEND:VEVENT\r\n", 0)
		if assert.Len(errs, 1) {
			assert.Contains(errs[0].Msg, "BEGIN line must not have parameters")
		}
		// the line still opens the component
		assert.Len(roots, 1)
	})
	t.Run("parameters on END", func(t *testing.T) {
		roots, errs := mustTree(t, "BEGIN:VEVENT\r\nEND;X-A=1:VEVENT\r\n", 0)
		if assert.Len(errs, 1) {
			assert.Contains(errs[0].Msg, "END line must not have parameters")
		}
		assert.Len(roots, 1)
	})
	t.Run("property outside component", func(t *testing.T) {
		_, errs := mustTree(t, "SUMMARY:a\r\n", 0)
		if assert.Len(errs, 1) {
			assert.Contains(errs[0].Msg, "outside any component")
		}
	})
}

func TestBuildTreeDepthLimit(t *testing.T) {
	assert := assert.New(t)
	src := strings.Join([]string{
		"BEGIN:A",
		"BEGIN:B",
		"BEGIN:C",
		"X-DEEP:value",
		"END:C",
		"END:B",
		"END:A",
		"",
	}, "\r\n")
	roots, errs := mustTree(t, src, 2)
	if assert.Len(errs, 1) {
		assert.Contains(errs[0].Msg, "exceeds maximum depth 2")
	}
	// the over-deep subtree is dropped, the rest survives
	if assert.Len(roots, 1) {
		assert.Equal("A", roots[0].Name)
		if assert.Len(roots[0].Children, 1) {
			b := roots[0].Children[0]
			assert.Equal("B", b.Name)
			assert.Empty(b.Children)
			assert.Empty(b.Properties)
		}
	}
}

func TestRawComponentOwned(t *testing.T) {
	assert := assert.New(t)
	src := "BEGIN:VEVENT\r\nSUMMARY;X-A=b:hello\r\nEND:VEVENT\r\n"
	roots, errs := mustTree(t, src, 0)
	assert.Empty(errs)
	if !assert.Len(roots, 1) {
		return
	}
	owned := roots[0].Owned()
	assert.Equal("VEVENT", owned.Name)
	if assert.Len(owned.Properties, 1) {
		p := owned.Properties[0]
		assert.Equal("SUMMARY", p.Name)
		assert.Equal("hello", p.Value.String())
		if assert.Len(p.Parameters, 1) {
			assert.Equal("X-A", p.Parameters[0].Name)
		}
	}
	assert.Equal(roots[0].Span, owned.Span)
}
