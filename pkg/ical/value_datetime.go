package ical

import (
	"strings"
	"time"
)

// Date is a calendar date.
//
//	date = date-fullyear date-month date-mday
type Date struct {
	Year  int
	Month int
	Day   int
}

func (d Date) String() string {
	var b strings.Builder
	writeDigits(&b, d.Year, 4)
	writeDigits(&b, d.Month, 2)
	writeDigits(&b, d.Day, 2)
	return b.String()
}

// GoTime places the date at midnight in the given location.
func (d Date) GoTime(loc *time.Location) time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, loc)
}

func daysInMonth(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
			return 29
		}
		return 28
	}
	return 0
}

func parseDate(raw string, span Span) (Date, *Error) {
	var d Date
	if len(raw) != 8 {
		return d, errValidation(span, "invalid date %q: want YYYYMMDD", raw)
	}
	var ok bool
	if d.Year, ok = atoiFixed(raw[:4]); !ok {
		return d, errValidation(span, "invalid year in date %q", raw)
	}
	if d.Month, ok = atoiFixed(raw[4:6]); !ok || d.Month < 1 || d.Month > 12 {
		return d, errValidation(span, "invalid month in date %q", raw)
	}
	if d.Day, ok = atoiFixed(raw[6:8]); !ok || d.Day < 1 || d.Day > daysInMonth(d.Year, d.Month) {
		return d, errValidation(span, "invalid day in date %q", raw)
	}
	return d, nil
}

// Time is a time of day. UTC marks the trailing Z form; otherwise the
// time is floating, or zone-qualified via a TZID parameter on the
// owning property.
//
//	time = time-hour time-minute time-second [time-utc]
type Time struct {
	Hour   int
	Minute int
	Second int
	UTC    bool
}

func (t Time) String() string {
	var b strings.Builder
	writeDigits(&b, t.Hour, 2)
	writeDigits(&b, t.Minute, 2)
	writeDigits(&b, t.Second, 2)
	if t.UTC {
		b.WriteByte('Z')
	}
	return b.String()
}

func parseTime(raw string, span Span) (Time, *Error) {
	var t Time
	s := raw
	if strings.HasSuffix(s, "Z") || strings.HasSuffix(s, "z") {
		t.UTC = true
		s = s[:len(s)-1]
	}
	if len(s) != 6 {
		return t, errValidation(span, "invalid time %q: want HHMMSS[Z]", raw)
	}
	var ok bool
	if t.Hour, ok = atoiFixed(s[:2]); !ok || t.Hour > 23 {
		return t, errValidation(span, "invalid hour in time %q", raw)
	}
	if t.Minute, ok = atoiFixed(s[2:4]); !ok || t.Minute > 59 {
		return t, errValidation(span, "invalid minute in time %q", raw)
	}
	// 60 admits a positive leap second per the RFC grammar
	if t.Second, ok = atoiFixed(s[4:6]); !ok || t.Second > 60 {
		return t, errValidation(span, "invalid second in time %q", raw)
	}
	return t, nil
}

// DateTime is a date bound to a time of day.
//
//	date-time = date "T" time
type DateTime struct {
	Date Date
	Time Time
}

func (dt DateTime) String() string {
	return dt.Date.String() + "T" + dt.Time.String()
}

// GoTime resolves the date-time in loc; UTC values ignore loc.
func (dt DateTime) GoTime(loc *time.Location) time.Time {
	if dt.Time.UTC {
		loc = time.UTC
	} else if loc == nil {
		loc = time.Local
	}
	return time.Date(dt.Date.Year, time.Month(dt.Date.Month), dt.Date.Day,
		dt.Time.Hour, dt.Time.Minute, dt.Time.Second, 0, loc)
}

func parseDateTime(raw string, span Span) (DateTime, *Error) {
	var dt DateTime
	ti := strings.IndexAny(raw, "Tt")
	if ti < 0 {
		return dt, errValidation(span, "invalid date-time %q: missing 'T' separator", raw)
	}
	var err *Error
	if dt.Date, err = parseDate(raw[:ti], span); err != nil {
		return dt, err
	}
	if dt.Time, err = parseTime(raw[ti+1:], span); err != nil {
		return dt, err
	}
	return dt, nil
}

// Period is a span of time, either explicit or start+duration.
//
//	period = period-explicit / period-start
type Period struct {
	Start    DateTime
	End      *DateTime
	Duration *Duration
}

func (p Period) String() string {
	if p.End != nil {
		return p.Start.String() + "/" + p.End.String()
	}
	if p.Duration != nil {
		return p.Start.String() + "/" + p.Duration.String()
	}
	return p.Start.String()
}

func parsePeriod(raw string, span Span) (Period, *Error) {
	var p Period
	slash := strings.IndexByte(raw, '/')
	if slash < 0 {
		return p, errValidation(span, "invalid period %q: missing '/'", raw)
	}
	var err *Error
	if p.Start, err = parseDateTime(raw[:slash], span); err != nil {
		return p, err
	}
	rest := raw[slash+1:]
	if len(rest) > 0 && (rest[0] == 'P' || rest[0] == 'p' || rest[0] == '+' || rest[0] == '-') {
		dur, err := parseDuration(rest, span)
		if err != nil {
			return p, err
		}
		if dur.Negative {
			return p, errValidation(span, "period duration must be positive in %q", raw)
		}
		p.Duration = &dur
		return p, nil
	}
	end, err := parseDateTime(rest, span)
	if err != nil {
		return p, err
	}
	p.End = &end
	return p, nil
}
