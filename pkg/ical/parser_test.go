package ical

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yzx9/aim/pkg/terrors"
)

func TestParseMinimalEvent(t *testing.T) {
	assert := assert.New(t)
	src := "BEGIN:VCALENDAR\r\nBEGIN:VEVENT\r\nUID:1\r\nDTSTAMP:20250101T000000Z\r\nDTSTART:20250101T100000Z\r\nSUMMARY:Test\r\nEND:VEVENT\r\nEND:VCALENDAR\r\n"
	// missing PRODID/VERSION is a semantic problem, not a fatal one:
	// lenient mode still yields the calendar alongside the errors
	cals, errs := ParseLenient(src)
	assert.NotEmpty(errs)
	if assert.Len(cals, 1) && assert.Len(cals[0].Events, 1) {
		ev := cals[0].Events[0]
		if assert.NotNil(ev.Summary) {
			assert.Equal("Test", ev.Summary.Value().Text)
		}
		if assert.NotNil(ev.DtStart) {
			v := ev.DtStart.Value()
			assert.Equal(ValueDateTime, v.Type)
			assert.True(v.DateTime.Time.UTC)
			assert.Equal(time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC), v.DateTime.GoTime(nil))
		}
	}
}

func TestParseUnclosedComponent(t *testing.T) {
	assert := assert.New(t)
	src := ics(
		"BEGIN:VCALENDAR",
		"PRODID:-//test//EN",
		"VERSION:2.0",
		"BEGIN:VEVENT",
		"UID:1",
		"DTSTAMP:20250101T000000Z",
	)
	cals, errs := ParseStrict(src)
	assert.Nil(cals)
	assert.True(containsMsg(errs, "component VEVENT is never closed"), errMsgs(errs))
	assert.True(containsMsg(errs, "component VCALENDAR is never closed"), errMsgs(errs))
}

func TestParseUnfoldsValues(t *testing.T) {
	assert := assert.New(t)
	src := ics(
		"BEGIN:VCALENDAR",
		"PRODID:-//test//EN",
		"VERSION:2.0",
		"BEGIN:VEVENT",
		"UID:1",
		"DTSTAMP:20250101T000000Z",
		"DTSTART:20250101T100000Z",
		"SUMMARY:Hello",
		" World",
		"END:VEVENT",
		"END:VCALENDAR",
	)
	cals, errs := ParseStrict(src)
	assert.Empty(errs, errMsgs(errs))
	// the fold marker is CRLF plus the leading space, removed whole
	assert.Equal("HelloWorld", cals[0].Events[0].Summary.Value().Text)
}

func TestParseModes(t *testing.T) {
	assert := assert.New(t)
	src := ics(
		"BEGIN:VCALENDAR",
		"PRODID:-//test//EN",
		"VERSION:2.0",
		"BEGIN:VEVENT",
		"UID:1",
		"DTSTAMP:20250101T000000Z",
		"DTSTART:20250101T100000Z",
		"PRIORITY:99",
		"END:VEVENT",
		"END:VCALENDAR",
	)
	t.Run("strict refuses on any error", func(t *testing.T) {
		cals, errs := ParseStrict(src)
		assert.Nil(cals)
		assert.NotEmpty(errs)
	})
	t.Run("lenient returns best effort", func(t *testing.T) {
		cals, errs := ParseLenient(src)
		assert.NotEmpty(errs)
		assert.Len(cals, 1)
	})
}

func TestParseMultipleCalendars(t *testing.T) {
	assert := assert.New(t)
	one := ics(
		"BEGIN:VCALENDAR",
		"PRODID:-//a//EN",
		"VERSION:2.0",
		"END:VCALENDAR",
	)
	two := ics(
		"BEGIN:VCALENDAR",
		"PRODID:-//b//EN",
		"VERSION:2.0",
		"END:VCALENDAR",
	)
	cals, errs := ParseStrict(one + two)
	assert.Empty(errs, errMsgs(errs))
	if assert.Len(cals, 2) {
		assert.Equal("-//a//EN", cals[0].ProdID.Value().Text)
		assert.Equal("-//b//EN", cals[1].ProdID.Value().Text)
	}
}

func TestParseTopLevelMustBeCalendar(t *testing.T) {
	assert := assert.New(t)
	cals, errs := ParseStrict("BEGIN:VEVENT\r\nUID:1\r\nEND:VEVENT\r\n")
	assert.Nil(cals)
	assert.True(containsMsg(errs, "top-level component must be VCALENDAR, found VEVENT"), errMsgs(errs))
}

func TestParseErrorOrdering(t *testing.T) {
	assert := assert.New(t)
	src := ics(
		"BEGIN:VCALENDAR",
		"PRODID:-//test//EN",
		"VERSION:2.0",
		"BEGIN:VEVENT",
		"UID:1",
		"DTSTAMP:20250101T000000Z",
		"DTSTART:not-a-date",
		"PRIORITY:banana",
		"END:VEVENT",
		"END:VCALENDAR",
	)
	_, errs := ParseLenient(src)
	if assert.GreaterOrEqual(len(errs), 2) {
		for i := 1; i < len(errs); i++ {
			assert.LessOrEqual(errs[i-1].Span.Start, errs[i].Span.Start)
		}
	}
}

func TestParseErrorClasses(t *testing.T) {
	assert := assert.New(t)
	src := ics(
		"BEGIN:VCALENDAR",
		"PRODID:-//test//EN",
		"VERSION:2.0",
		"NOT A NAME",
		"BEGIN:VEVENT",
		"UID:1",
		"DTSTART:nope",
		"END:VEVENT",
		"END:VCALENDAR",
	)
	_, errs := ParseLenient(src)
	var sawValidation, sawStructural, sawSemantic bool
	for _, e := range errs {
		assert.True(errors.Is(e, terrors.ErrParse), e.Error())
		switch {
		case errors.Is(e, terrors.ErrValidation):
			sawValidation = true
		case errors.Is(e, terrors.ErrStructural):
			sawStructural = true
		case errors.Is(e, terrors.ErrSemantic):
			sawSemantic = true
		}
	}
	assert.True(sawValidation, errMsgs(errs)) // DTSTART:nope
	assert.True(sawStructural, errMsgs(errs)) // malformed content line
	assert.True(sawSemantic, errMsgs(errs))   // missing DTSTAMP
}

func TestErrorRender(t *testing.T) {
	assert := assert.New(t)
	src := ics(
		"BEGIN:VCALENDAR",
		"PRODID:-//test//EN",
		"VERSION:1.0",
		"END:VCALENDAR",
	)
	_, errs := ParseLenient(src)
	if !assert.True(containsMsg(errs, "unsupported iCalendar VERSION"), errMsgs(errs)) {
		return
	}
	var target *Error
	for _, e := range errs {
		if strings.Contains(e.Msg, "unsupported iCalendar VERSION") {
			target = e
		}
	}
	out := target.Render(src)
	assert.Contains(out, `semantic error: unsupported iCalendar VERSION "1.0"`)
	assert.Contains(out, "| VERSION:1.0")
	assert.Contains(out, "^")
	// position is 1-based line:column
	assert.True(strings.HasPrefix(out, "3:"), out)
}

func TestParseRaw(t *testing.T) {
	assert := assert.New(t)
	src := ics(
		"BEGIN:VCALENDAR",
		"NOT-RFC-PROP;X=1:anything goes",
		"BEGIN:WHATEVER",
		"END:WHATEVER",
		"END:VCALENDAR",
	)
	roots, errs := ParseRaw(src, Options{})
	assert.Empty(errs)
	if assert.Len(roots, 1) {
		root := roots[0]
		assert.Equal("VCALENDAR", root.Name)
		if assert.Len(root.Properties, 1) {
			assert.Equal("NOT-RFC-PROP", root.Properties[0].Name)
			assert.Equal("anything goes", root.Properties[0].Value.String())
		}
		if assert.Len(root.Children, 1) {
			assert.Equal("WHATEVER", root.Children[0].Name)
		}
	}
}

func TestParseEmptyInput(t *testing.T) {
	assert := assert.New(t)
	cals, errs := ParseStrict("")
	assert.Nil(cals)
	assert.Empty(errs)

	cals, errs = ParseStrict("\r\n\r\n")
	assert.Nil(cals)
	assert.Empty(errs)
}
