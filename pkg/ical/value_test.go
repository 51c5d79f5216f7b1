package ical

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseBoolean(t *testing.T) {
	assert := assert.New(t)
	v, err := parseBoolean("TRUE", Span{})
	assert.Nil(err)
	assert.True(v)
	v, err = parseBoolean("false", Span{})
	assert.Nil(err)
	assert.False(v)
	_, err = parseBoolean("YES", Span{})
	if assert.NotNil(err) {
		assert.Contains(err.Msg, "must be TRUE or FALSE")
	}
}

func TestParseInteger(t *testing.T) {
	assert := assert.New(t)
	n, err := parseInteger("-42", Span{})
	assert.Nil(err)
	assert.Equal(int64(-42), n)
	_, err = parseInteger("2147483648", Span{})
	if assert.NotNil(err) {
		assert.Contains(err.Msg, "out of range")
	}
	_, err = parseInteger("1.5", Span{})
	assert.NotNil(err)
}

func TestParseFloat(t *testing.T) {
	assert := assert.New(t)
	d, err := parseFloat("37.386013", Span{})
	assert.Nil(err)
	assert.Equal("37.386013", d.String())
	_, err = parseFloat("", Span{})
	assert.NotNil(err)
	_, err = parseFloat("1e5x", Span{})
	assert.NotNil(err)
}

func TestParseBinary(t *testing.T) {
	assert := assert.New(t)
	data, err := parseBinary("aGVsbG8=", Span{}, true)
	assert.Nil(err)
	assert.Equal([]byte("hello"), data)
	_, err = parseBinary("aGVsbG8=", Span{}, false)
	if assert.NotNil(err) {
		assert.Contains(err.Msg, "ENCODING=BASE64")
	}
	_, err = parseBinary("not base64!", Span{}, true)
	assert.NotNil(err)
}

func TestParseUTCOffset(t *testing.T) {
	assert := assert.New(t)
	t.Run("hhmm", func(t *testing.T) {
		o, err := parseUTCOffset("-0500", Span{})
		assert.Nil(err)
		assert.Equal(UTCOffset{Negative: true, Hours: 5}, o)
		assert.Equal("-0500", o.String())
	})
	t.Run("hhmmss", func(t *testing.T) {
		o, err := parseUTCOffset("+013030", Span{})
		assert.Nil(err)
		assert.Equal(UTCOffset{Hours: 1, Minutes: 30, Seconds: 30}, o)
	})
	t.Run("negative zero rejected", func(t *testing.T) {
		_, err := parseUTCOffset("-0000", Span{})
		assert.NotNil(err)
	})
	t.Run("missing sign", func(t *testing.T) {
		_, err := parseUTCOffset("05000", Span{})
		assert.NotNil(err)
	})
}

func TestParseDate(t *testing.T) {
	assert := assert.New(t)
	d, err := parseDate("20250131", Span{})
	assert.Nil(err)
	assert.Equal(Date{2025, 1, 31}, d)
	assert.Equal("20250131", d.String())

	t.Run("leap day", func(t *testing.T) {
		_, err := parseDate("20240229", Span{})
		assert.Nil(err)
		_, err = parseDate("20250229", Span{})
		assert.NotNil(err)
	})
	t.Run("impossible day", func(t *testing.T) {
		_, err := parseDate("20250230", Span{})
		if assert.NotNil(err) {
			assert.Contains(err.Msg, "invalid day")
		}
	})
	t.Run("wrong length", func(t *testing.T) {
		_, err := parseDate("2025-01-31", Span{})
		assert.NotNil(err)
	})
}

func TestParseTime(t *testing.T) {
	assert := assert.New(t)
	tm, err := parseTime("233000", Span{})
	assert.Nil(err)
	assert.Equal(Time{Hour: 23, Minute: 30}, tm)
	assert.False(tm.UTC)

	tm, err = parseTime("100000Z", Span{})
	assert.Nil(err)
	assert.True(tm.UTC)
	assert.Equal("100000Z", tm.String())

	t.Run("leap second", func(t *testing.T) {
		tm, err := parseTime("235960Z", Span{})
		assert.Nil(err)
		assert.Equal(60, tm.Second)
	})
	t.Run("out of range", func(t *testing.T) {
		_, err := parseTime("240000", Span{})
		assert.NotNil(err)
		_, err = parseTime("126000", Span{})
		assert.NotNil(err)
	})
}

func TestParseDateTime(t *testing.T) {
	assert := assert.New(t)
	dt, err := parseDateTime("20250101T100000Z", Span{})
	assert.Nil(err)
	assert.Equal("20250101T100000Z", dt.String())
	assert.Equal(time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC), dt.GoTime(nil))

	_, err = parseDateTime("20250101100000", Span{})
	if assert.NotNil(err) {
		assert.Contains(err.Msg, "missing 'T'")
	}
}

func TestParsePeriod(t *testing.T) {
	assert := assert.New(t)
	t.Run("explicit", func(t *testing.T) {
		p, err := parsePeriod("19970101T180000Z/19970102T070000Z", Span{})
		assert.Nil(err)
		if assert.NotNil(p.End) {
			assert.Equal("19970102T070000Z", p.End.String())
		}
		assert.Nil(p.Duration)
	})
	t.Run("start plus duration", func(t *testing.T) {
		p, err := parsePeriod("19970101T180000Z/PT5H30M", Span{})
		assert.Nil(err)
		if assert.NotNil(p.Duration) {
			assert.Equal(Duration{Hours: 5, Minutes: 30}, *p.Duration)
		}
		assert.Equal("19970101T180000Z/PT5H30M", p.String())
	})
	t.Run("negative duration rejected", func(t *testing.T) {
		_, err := parsePeriod("19970101T180000Z/-PT1H", Span{})
		assert.NotNil(err)
	})
	t.Run("missing slash", func(t *testing.T) {
		_, err := parsePeriod("19970101T180000Z", Span{})
		assert.NotNil(err)
	})
}

func TestParseDuration(t *testing.T) {
	assert := assert.New(t)
	cases := []struct {
		raw  string
		want Duration
	}{
		{"P15DT5H0M20S", Duration{Days: 15, Hours: 5, Seconds: 20}},
		{"PT15M", Duration{Minutes: 15}},
		{"P7W", Duration{Weeks: 7}},
		{"-PT30M", Duration{Negative: true, Minutes: 30}},
		{"+P1D", Duration{Days: 1}},
	}
	for _, c := range cases {
		d, err := parseDuration(c.raw, Span{})
		assert.Nil(err, c.raw)
		assert.Equal(c.want, d, c.raw)
	}

	t.Run("errors", func(t *testing.T) {
		for _, raw := range []string{"", "P", "PT", "15D", "P1W2D", "PT5X", "P1H", "PT1DT2H"} {
			_, err := parseDuration(raw, Span{})
			assert.NotNil(err, raw)
		}
	})
	t.Run("zero renders as PT0S", func(t *testing.T) {
		assert.Equal("PT0S", Duration{}.String())
	})
	t.Run("go duration", func(t *testing.T) {
		assert.Equal(-30*time.Minute, Duration{Negative: true, Minutes: 30}.GoDuration())
		assert.Equal(7*24*time.Hour, Duration{Weeks: 1}.GoDuration())
	})
}

func TestParseRecurrenceRule(t *testing.T) {
	assert := assert.New(t)
	t.Run("full rule", func(t *testing.T) {
		r, err := parseRecurrenceRule("FREQ=MONTHLY;INTERVAL=2;BYDAY=1SU,-1SU;WKST=MO", Span{})
		assert.Nil(err)
		assert.Equal(FreqMonthly, r.Freq)
		if assert.NotNil(r.Interval) {
			assert.Equal(2, *r.Interval)
		}
		assert.Equal([]WeekDayNum{
			{Occurrence: 1, Day: WeekdaySunday},
			{Occurrence: -1, Day: WeekdaySunday},
		}, r.ByDay)
		if assert.NotNil(r.WeekStart) {
			assert.Equal(WeekdayMonday, *r.WeekStart)
		}
	})
	t.Run("canonical string order", func(t *testing.T) {
		r, err := parseRecurrenceRule("BYMONTH=3;FREQ=YEARLY;COUNT=4", Span{})
		assert.Nil(err)
		assert.Equal("FREQ=YEARLY;COUNT=4;BYMONTH=3", r.String())
	})
	t.Run("until forms", func(t *testing.T) {
		r, err := parseRecurrenceRule("FREQ=DAILY;UNTIL=20250601", Span{})
		assert.Nil(err)
		assert.Equal(ValueDate, r.Until.Type)
		r, err = parseRecurrenceRule("FREQ=DAILY;UNTIL=20250601T000000Z", Span{})
		assert.Nil(err)
		assert.Equal(ValueDateTime, r.Until.Type)
	})
	t.Run("errors", func(t *testing.T) {
		cases := []struct{ raw, want string }{
			{"COUNT=3", "missing FREQ"},
			{"FREQ=FORTNIGHTLY", "invalid recurrence frequency"},
			{"FREQ=DAILY;UNTIL=20250601;COUNT=3", "both UNTIL and COUNT"},
			{"FREQ=DAILY;BYHOUR=24", "out of range"},
			{"FREQ=DAILY;BYMONTHDAY=0", "out of range"},
			{"FREQ=DAILY;BYMINUTE=-5", "out of range"},
			{"FREQ=DAILY;BYDAY=60MO", "ordinal out of range"},
			{"FREQ=DAILY;BOGUS=1", "unknown recurrence rule part"},
			{"FREQ=DAILY;COUNT=0", "positive integer"},
			{"", "empty recurrence rule"},
		}
		for _, c := range cases {
			_, err := parseRecurrenceRule(c.raw, Span{})
			if assert.NotNil(err, c.raw) {
				assert.Contains(err.Msg, c.want, c.raw)
			}
		}
	})
}

func TestTextEscapes(t *testing.T) {
	assert := assert.New(t)
	t.Run("unescape", func(t *testing.T) {
		s, err := unescapeText(`a\,b\;c\\d\ne\Nf`, Span{})
		assert.Nil(err)
		assert.Equal("a,b;c\\d\ne\nf", s)
	})
	t.Run("invalid escape", func(t *testing.T) {
		_, err := unescapeText(`a\tb`, Span{})
		if assert.NotNil(err) {
			assert.Contains(err.Msg, "invalid escape")
		}
	})
	t.Run("trailing backslash", func(t *testing.T) {
		_, err := unescapeText(`abc\`, Span{})
		assert.NotNil(err)
	})
	t.Run("escape round trip", func(t *testing.T) {
		orig := "line one\nsemi; comma, back\\slash"
		escaped := EscapeText(orig)
		s, err := unescapeText(escaped, Span{})
		assert.Nil(err)
		assert.Equal(orig, s)
	})
	t.Run("split on unescaped commas", func(t *testing.T) {
		assert.Equal([]string{`a\,b`, "c", ""}, splitOnUnescapedCommas(`a\,b,c,`))
		assert.Equal([]string{"solo"}, splitOnUnescapedCommas("solo"))
	})
}

func TestParseValueDispatch(t *testing.T) {
	assert := assert.New(t)
	v, err := parseValue(ValueText, `hello\, world`, Span{3, 17}, false)
	assert.Nil(err)
	assert.Equal(ValueText, v.Type)
	assert.Equal("hello, world", v.Text)
	assert.Equal(Span{3, 17}, v.Span)

	v, err = parseValue(ValueURI, "https://example.com/a,b", Span{}, false)
	assert.Nil(err)
	assert.Equal("https://example.com/a,b", v.URI)

	_, err = parseValue(ValueDate, "not-a-date", Span{}, false)
	assert.NotNil(err)
}
