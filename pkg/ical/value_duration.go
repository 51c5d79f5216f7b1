package ical

import (
	"strings"
	"time"
)

// Duration is a signed RFC 5545 duration. Weeks never combine with the
// other units.
//
//	dur-value = ["+" / "-"] "P" (dur-date / dur-time / dur-week)
//	dur-date  = dur-day [dur-time]
//	dur-time  = "T" (dur-hour / dur-minute / dur-second)
type Duration struct {
	Negative bool
	Weeks    int
	Days     int
	Hours    int
	Minutes  int
	Seconds  int
}

func (d Duration) String() string {
	var b strings.Builder
	if d.Negative {
		b.WriteByte('-')
	}
	b.WriteByte('P')
	if d.Weeks != 0 {
		writeDigits(&b, d.Weeks, 1)
		b.WriteByte('W')
		return b.String()
	}
	if d.Days != 0 {
		writeDigits(&b, d.Days, 1)
		b.WriteByte('D')
	}
	if d.Hours != 0 || d.Minutes != 0 || d.Seconds != 0 {
		b.WriteByte('T')
		if d.Hours != 0 {
			writeDigits(&b, d.Hours, 1)
			b.WriteByte('H')
		}
		if d.Minutes != 0 {
			writeDigits(&b, d.Minutes, 1)
			b.WriteByte('M')
		}
		if d.Seconds != 0 {
			writeDigits(&b, d.Seconds, 1)
			b.WriteByte('S')
		}
	}
	if b.Len() == 1 || (d.Negative && b.Len() == 2) {
		// zero duration
		b.WriteString("T0S")
	}
	return b.String()
}

// GoDuration converts to a time.Duration, treating a day as 24h and a
// week as 7 days.
func (d Duration) GoDuration() time.Duration {
	total := time.Duration(d.Weeks)*7*24*time.Hour +
		time.Duration(d.Days)*24*time.Hour +
		time.Duration(d.Hours)*time.Hour +
		time.Duration(d.Minutes)*time.Minute +
		time.Duration(d.Seconds)*time.Second
	if d.Negative {
		return -total
	}
	return total
}

func parseDuration(raw string, span Span) (Duration, *Error) {
	var d Duration
	s := raw
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		d.Negative = s[0] == '-'
		s = s[1:]
	}
	if len(s) == 0 || (s[0] != 'P' && s[0] != 'p') {
		return d, errValidation(span, "invalid duration %q: missing 'P'", raw)
	}
	s = s[1:]
	if s == "" {
		return d, errValidation(span, "invalid duration %q: no components", raw)
	}

	inTime := false
	sawUnit := false
	for len(s) > 0 {
		if s[0] == 'T' || s[0] == 't' {
			if inTime {
				return d, errValidation(span, "invalid duration %q: repeated 'T'", raw)
			}
			inTime = true
			s = s[1:]
			if s == "" {
				return d, errValidation(span, "invalid duration %q: 'T' with no time components", raw)
			}
			continue
		}
		i := 0
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if i == 0 || i == len(s) {
			return d, errValidation(span, "invalid duration %q", raw)
		}
		n, _ := atoiFixed(s[:i])
		unit := s[i]
		s = s[i+1:]
		switch {
		case !inTime && (unit == 'W' || unit == 'w'):
			if sawUnit {
				return d, errValidation(span, "invalid duration %q: weeks cannot combine with other units", raw)
			}
			d.Weeks = n
			if s != "" {
				return d, errValidation(span, "invalid duration %q: weeks cannot combine with other units", raw)
			}
		case !inTime && (unit == 'D' || unit == 'd'):
			d.Days = n
		case inTime && (unit == 'H' || unit == 'h'):
			d.Hours = n
		case inTime && (unit == 'M' || unit == 'm'):
			d.Minutes = n
		case inTime && (unit == 'S' || unit == 's'):
			d.Seconds = n
		default:
			return d, errValidation(span, "invalid duration %q: unexpected unit %q", raw, string(unit))
		}
		sawUnit = true
	}
	if !sawUnit {
		return d, errValidation(span, "invalid duration %q: no components", raw)
	}
	return d, nil
}
