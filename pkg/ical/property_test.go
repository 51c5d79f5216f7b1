package ical

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// rawPropFromLine scans a single content line into the raw property
// shape the analysis passes consume.
func rawPropFromLine(t *testing.T, src string) RawProperty {
	t.Helper()
	lines, errs := scanLines(src + "\r\n")
	if len(errs) > 0 || len(lines) != 1 {
		t.Fatalf("bad fixture %q: %d lines, %d errors", src, len(lines), len(errs))
	}
	l := lines[0]
	return RawProperty{Group: l.Group, Name: l.Name, Parameters: l.Parameters, Value: l.Value, Span: l.Span}
}

func TestAnalyzePropertyTyping(t *testing.T) {
	assert := assert.New(t)
	t.Run("default type", func(t *testing.T) {
		p, errs := analyzeProperty(rawPropFromLine(t, `SUMMARY:Board meeting\, rescheduled`))
		assert.Empty(errs)
		sum, ok := p.(Summary)
		if assert.True(ok) {
			assert.Equal(ValueText, sum.Value().Type)
			assert.Equal("Board meeting, rescheduled", sum.Value().Text)
		}
	})
	t.Run("declared VALUE wins", func(t *testing.T) {
		p, errs := analyzeProperty(rawPropFromLine(t, "DTSTART;VALUE=DATE:20250704"))
		assert.Empty(errs)
		dt, ok := p.(DtStart)
		if assert.True(ok) {
			assert.Equal(ValueDate, dt.Value().Type)
			assert.Equal(Date{2025, 7, 4}, dt.Value().Date)
		}
	})
	t.Run("declared VALUE not allowed", func(t *testing.T) {
		p, errs := analyzeProperty(rawPropFromLine(t, "SUMMARY;VALUE=INTEGER:42"))
		assert.Nil(p)
		if assert.Len(errs, 1) {
			assert.Contains(errs[0].Msg, "does not support VALUE=INTEGER")
		}
	})
	t.Run("date shape inferred", func(t *testing.T) {
		p, errs := analyzeProperty(rawPropFromLine(t, "DTSTART:20250704"))
		assert.Empty(errs)
		assert.Equal(ValueDate, p.(DtStart).Value().Type)

		p, errs = analyzeProperty(rawPropFromLine(t, "DTSTART:20250704T120000Z"))
		assert.Empty(errs)
		assert.Equal(ValueDateTime, p.(DtStart).Value().Type)
	})
	t.Run("trigger shape inferred", func(t *testing.T) {
		p, errs := analyzeProperty(rawPropFromLine(t, "TRIGGER:-PT15M"))
		assert.Empty(errs)
		v := p.(Trigger).Value()
		assert.Equal(ValueDuration, v.Type)
		assert.Equal(Duration{Negative: true, Minutes: 15}, v.Duration)

		p, errs = analyzeProperty(rawPropFromLine(t, "TRIGGER;VALUE=DATE-TIME:20250101T000000Z"))
		assert.Empty(errs)
		assert.Equal(ValueDateTime, p.(Trigger).Value().Type)
	})
	t.Run("rdate period inferred", func(t *testing.T) {
		p, errs := analyzeProperty(rawPropFromLine(t, "RDATE:19970101T180000Z/PT1H"))
		assert.Empty(errs)
		assert.Equal(ValuePeriod, p.(RDate).Value().Type)
	})
}

func TestAnalyzePropertyParameters(t *testing.T) {
	assert := assert.New(t)
	t.Run("tzid carried", func(t *testing.T) {
		p, errs := analyzeProperty(rawPropFromLine(t, "DTSTART;TZID=America/New_York:20250101T100000"))
		assert.Empty(errs)
		dt := p.(DtStart)
		tz, ok := dt.TzID()
		assert.True(ok)
		assert.Equal("America/New_York", tz)
		assert.False(dt.Value().DateTime.Time.UTC)
	})
	t.Run("duplicate parameter skipped", func(t *testing.T) {
		p, errs := analyzeProperty(rawPropFromLine(t, "SUMMARY;LANGUAGE=en;LANGUAGE=fr:hi"))
		if assert.Len(errs, 1) {
			assert.Contains(errs[0].Msg, "duplicate parameter LANGUAGE")
		}
		// the property itself survives with the first occurrence
		sum := p.(Summary)
		lang, ok := sum.Language()
		assert.True(ok)
		assert.Equal("en", lang)
	})
	t.Run("illegal parameter skipped", func(t *testing.T) {
		p, errs := analyzeProperty(rawPropFromLine(t, "SUMMARY;PARTSTAT=ACCEPTED:hi"))
		if assert.Len(errs, 1) {
			assert.Contains(errs[0].Msg, "parameter PARTSTAT is not legal on property SUMMARY")
		}
		assert.NotNil(p)
	})
	t.Run("x-parameter always legal", func(t *testing.T) {
		p, errs := analyzeProperty(rawPropFromLine(t, "SUMMARY;X-WEIGHT=3:hi"))
		assert.Empty(errs)
		assert.Len(p.(Summary).Params, 1)
	})
}

func TestAnalyzePropertyValues(t *testing.T) {
	assert := assert.New(t)
	t.Run("multi text splits on unescaped commas", func(t *testing.T) {
		p, errs := analyzeProperty(rawPropFromLine(t, `CATEGORIES:WORK,MEETING\,WEEKLY`))
		assert.Empty(errs)
		assert.Equal([]string{"WORK", "MEETING,WEEKLY"}, p.(Categories).Texts())
	})
	t.Run("multi dates split plainly", func(t *testing.T) {
		p, errs := analyzeProperty(rawPropFromLine(t, "EXDATE;VALUE=DATE:20250101,20250108"))
		assert.Empty(errs)
		assert.Len(p.(ExDate).Values, 2)
	})
	t.Run("geo", func(t *testing.T) {
		p, errs := analyzeProperty(rawPropFromLine(t, "GEO:37.386013;-122.082932"))
		assert.Empty(errs)
		g := p.(Geo)
		assert.Equal("37.386013", g.Lat().String())
		assert.Equal("-122.082932", g.Lon().String())
	})
	t.Run("geo range", func(t *testing.T) {
		p, errs := analyzeProperty(rawPropFromLine(t, "GEO:91.0;0.0"))
		assert.Nil(p)
		if assert.Len(errs, 1) {
			assert.Contains(errs[0].Msg, "latitude")
		}
	})
	t.Run("geo shape", func(t *testing.T) {
		_, errs := analyzeProperty(rawPropFromLine(t, "GEO:37.386013"))
		if assert.Len(errs, 1) {
			assert.Contains(errs[0].Msg, "want lat;lon")
		}
	})
	t.Run("binary attach", func(t *testing.T) {
		p, errs := analyzeProperty(rawPropFromLine(t, "ATTACH;ENCODING=BASE64;VALUE=BINARY:aGVsbG8="))
		assert.Empty(errs)
		assert.Equal([]byte("hello"), p.(Attach).Value().Binary)
	})
	t.Run("uri attach", func(t *testing.T) {
		p, errs := analyzeProperty(rawPropFromLine(t, "ATTACH:https://example.com/agenda.pdf"))
		assert.Empty(errs)
		v := p.(Attach).Value()
		assert.Equal(ValueURI, v.Type)
		assert.Equal("https://example.com/agenda.pdf", v.URI)
	})
	t.Run("url comma stays whole", func(t *testing.T) {
		p, errs := analyzeProperty(rawPropFromLine(t, "URL:https://example.com/cal?ids=1,2,3"))
		assert.Empty(errs)
		u := p.(URL)
		assert.Len(u.Values, 1)
		assert.Equal("https://example.com/cal?ids=1,2,3", u.Value().URI)
	})
	t.Run("attendee comma stays whole", func(t *testing.T) {
		p, errs := analyzeProperty(rawPropFromLine(t, `ATTENDEE:mailto:"doe,jane"@example.com`))
		assert.Empty(errs)
		a := p.(Attendee)
		assert.Len(a.Values, 1)
		assert.Equal(`mailto:"doe,jane"@example.com`, a.Value().CalAddress)
	})
	t.Run("bad value yields no property", func(t *testing.T) {
		p, errs := analyzeProperty(rawPropFromLine(t, "DTSTART:tomorrow"))
		assert.Nil(p)
		assert.NotEmpty(errs)
	})
}

func TestAnalyzePropertyExtensions(t *testing.T) {
	assert := assert.New(t)
	t.Run("x-property preserved verbatim", func(t *testing.T) {
		p, errs := analyzeProperty(rawPropFromLine(t, `X-APPLE-TRAVEL-TIME;VALUE=DURATION:PT30M`))
		assert.Empty(errs)
		ext, ok := p.(ExtensionProp)
		if assert.True(ok) {
			assert.Equal("X-APPLE-TRAVEL-TIME", ext.Name)
			assert.Equal("PT30M", ext.Raw)
			assert.Len(ext.Parameters, 1)
		}
	})
	t.Run("unknown iana name preserved", func(t *testing.T) {
		p, errs := analyzeProperty(rawPropFromLine(t, "COLOR:tomato"))
		assert.Empty(errs)
		_, ok := p.(ExtensionProp)
		assert.True(ok)
	})
	t.Run("group prefix preserved", func(t *testing.T) {
		p, errs := analyzeProperty(rawPropFromLine(t, "work.SUMMARY:standup"))
		assert.Empty(errs)
		assert.Equal("work", p.(Summary).Group)
	})
}
