package ical

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanContentLine(t *testing.T) {
	assert := assert.New(t)
	lines, errs := scanLines("SUMMARY:Staff meeting\r\n")
	assert.Empty(errs)
	if assert.Len(lines, 1) {
		assert.Equal("SUMMARY", lines[0].Name)
		assert.Equal("", lines[0].Group)
		assert.Equal("Staff meeting", lines[0].Value.String())
	}
}

func TestScanGroup(t *testing.T) {
	assert := assert.New(t)
	t.Run("grouped name", func(t *testing.T) {
		lines, errs := scanLines("work.SUMMARY:x\r\n")
		assert.Empty(errs)
		if assert.Len(lines, 1) {
			assert.Equal("work", lines[0].Group)
			assert.Equal("SUMMARY", lines[0].Name)
		}
	})
	t.Run("two dots rejected", func(t *testing.T) {
		lines, errs := scanLines("a.b.SUMMARY:x\r\n")
		assert.Empty(lines)
		if assert.Len(errs, 1) {
			assert.Contains(errs[0].Msg, "invalid property name")
		}
	})
}

func TestScanParameters(t *testing.T) {
	assert := assert.New(t)
	t.Run("unquoted", func(t *testing.T) {
		lines, errs := scanLines("DTSTART;TZID=America/New_York:20250101T100000\r\n")
		assert.Empty(errs)
		if assert.Len(lines, 1) && assert.Len(lines[0].Parameters, 1) {
			p := lines[0].Parameters[0]
			assert.Equal("TZID", p.Name)
			if assert.Len(p.Values, 1) {
				assert.Equal("America/New_York", p.Values[0].Value)
				assert.False(p.Values[0].Quoted)
			}
		}
	})
	t.Run("quoted value keeps reserved characters", func(t *testing.T) {
		lines, errs := scanLines("ATTENDEE;CN=\"Doe, John\":mailto:j@example.com\r\n")
		assert.Empty(errs)
		if assert.Len(lines, 1) && assert.Len(lines[0].Parameters, 1) {
			p := lines[0].Parameters[0]
			if assert.Len(p.Values, 1) {
				assert.Equal("Doe, John", p.Values[0].Value)
				assert.True(p.Values[0].Quoted)
			}
		}
	})
	t.Run("multi-valued parameter", func(t *testing.T) {
		lines, errs := scanLines("X-P;M=\"a\",\"b\",c:v\r\n")
		assert.Empty(errs)
		if assert.Len(lines, 1) && assert.Len(lines[0].Parameters, 1) {
			vals := lines[0].Parameters[0].Values
			if assert.Len(vals, 3) {
				assert.Equal("a", vals[0].Value)
				assert.Equal("b", vals[1].Value)
				assert.Equal("c", vals[2].Value)
				assert.False(vals[2].Quoted)
			}
		}
	})
	t.Run("missing equals", func(t *testing.T) {
		lines, errs := scanLines("DTSTART;TZID:20250101\r\n")
		assert.Empty(lines)
		if assert.Len(errs, 1) {
			assert.Contains(errs[0].Msg, "expected '='")
		}
	})
	t.Run("quote inside unquoted value", func(t *testing.T) {
		_, errs := scanLines("X-P;A=fo\"o:v\r\n")
		if assert.Len(errs, 1) {
			assert.Contains(errs[0].Msg, "not allowed inside")
		}
	})
	t.Run("unterminated quote", func(t *testing.T) {
		_, errs := scanLines("X-P;A=\"foo\r\nX-Q:v\r\n")
		if assert.Len(errs, 1) {
			assert.Contains(errs[0].Msg, "unterminated")
		}
	})
}

func TestScanRecovery(t *testing.T) {
	assert := assert.New(t)
	lines, errs := scanLines("BAD LINE\r\nSUMMARY:ok\r\n")
	assert.NotEmpty(errs)
	if assert.Len(lines, 1) {
		assert.Equal("SUMMARY", lines[0].Name)
		assert.Equal("ok", lines[0].Value.String())
	}
}

func TestScanBlankLines(t *testing.T) {
	assert := assert.New(t)
	lines, errs := scanLines("SUMMARY:a\r\n\r\n\r\nDESCRIPTION:b\r\n")
	assert.Empty(errs)
	assert.Len(lines, 2)
}

func TestScanValueStaysZeroCopy(t *testing.T) {
	assert := assert.New(t)
	// structural characters are legal verbatim inside a value
	lines, errs := scanLines("RRULE:FREQ=DAILY;COUNT=3\r\n")
	assert.Empty(errs)
	if assert.Len(lines, 1) {
		assert.Equal("FREQ=DAILY;COUNT=3", lines[0].Value.String())
		// contiguous tokens collapse into a single segment
		assert.Len(lines[0].Value, 1)
	}
}

func TestScanFoldedValue(t *testing.T) {
	assert := assert.New(t)
	lines, errs := scanLines("SUMMARY:Hello\r\n World\r\n")
	assert.Empty(errs)
	if assert.Len(lines, 1) {
		// the fold marker vanishes entirely, including its leading space
		assert.Equal("HelloWorld", lines[0].Value.String())
		assert.Len(lines[0].Value, 2)
	}
}

func TestScanMissingColon(t *testing.T) {
	assert := assert.New(t)
	_, errs := scanLines("SUMMARY")
	if assert.Len(errs, 1) {
		assert.Contains(errs[0].Msg, "no ':' before end of input")
	}
}
