package ical

import (
	"strconv"
	"strings"
)

// Frequency is the FREQ part of a recurrence rule.
type Frequency int

const (
	FreqSecondly Frequency = iota
	FreqMinutely
	FreqHourly
	FreqDaily
	FreqWeekly
	FreqMonthly
	FreqYearly
)

var frequencyNames = map[Frequency]string{
	FreqSecondly: "SECONDLY",
	FreqMinutely: "MINUTELY",
	FreqHourly:   "HOURLY",
	FreqDaily:    "DAILY",
	FreqWeekly:   "WEEKLY",
	FreqMonthly:  "MONTHLY",
	FreqYearly:   "YEARLY",
}

func (f Frequency) String() string {
	if name, ok := frequencyNames[f]; ok {
		return name
	}
	return "DAILY"
}

func parseFrequency(s string) (Frequency, bool) {
	for f, name := range frequencyNames {
		if strings.EqualFold(s, name) {
			return f, true
		}
	}
	return 0, false
}

// Weekday is a recurrence weekday code (SU..SA).
type Weekday int

const (
	WeekdaySunday Weekday = iota
	WeekdayMonday
	WeekdayTuesday
	WeekdayWednesday
	WeekdayThursday
	WeekdayFriday
	WeekdaySaturday
)

var weekdayNames = [...]string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}

func (w Weekday) String() string {
	if w >= 0 && int(w) < len(weekdayNames) {
		return weekdayNames[w]
	}
	return "MO"
}

func parseWeekday(s string) (Weekday, bool) {
	for i, name := range weekdayNames {
		if strings.EqualFold(s, name) {
			return Weekday(i), true
		}
	}
	return 0, false
}

// WeekDayNum is a BYDAY entry: a weekday with an optional ordinal
// occurrence, e.g. 2TU or -1SU.
type WeekDayNum struct {
	Occurrence int // 0 when absent
	Day        Weekday
}

func (w WeekDayNum) String() string {
	if w.Occurrence != 0 {
		return strconv.Itoa(w.Occurrence) + w.Day.String()
	}
	return w.Day.String()
}

// RecurrenceRule holds a parsed RRULE value. Parsing only: expanding a
// rule into concrete occurrences happens in higher layers.
//
//	recur = recur-rule-part *( ";" recur-rule-part )
type RecurrenceRule struct {
	Freq       Frequency
	Until      *Value // DATE or DATE-TIME
	Count      *int
	Interval   *int
	BySecond   []int
	ByMinute   []int
	ByHour     []int
	ByDay      []WeekDayNum
	ByMonthDay []int
	ByYearDay  []int
	ByWeekNo   []int
	ByMonth    []int
	BySetPos   []int
	WeekStart  *Weekday
}

func (r *RecurrenceRule) String() string {
	var b strings.Builder
	b.WriteString("FREQ=")
	b.WriteString(r.Freq.String())
	if r.Until != nil {
		b.WriteString(";UNTIL=")
		if r.Until.Type == ValueDate {
			b.WriteString(r.Until.Date.String())
		} else {
			b.WriteString(r.Until.DateTime.String())
		}
	}
	if r.Count != nil {
		b.WriteString(";COUNT=")
		b.WriteString(strconv.Itoa(*r.Count))
	}
	if r.Interval != nil {
		b.WriteString(";INTERVAL=")
		b.WriteString(strconv.Itoa(*r.Interval))
	}
	writeIntList(&b, "BYSECOND", r.BySecond)
	writeIntList(&b, "BYMINUTE", r.ByMinute)
	writeIntList(&b, "BYHOUR", r.ByHour)
	if len(r.ByDay) > 0 {
		b.WriteString(";BYDAY=")
		for i, d := range r.ByDay {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(d.String())
		}
	}
	writeIntList(&b, "BYMONTHDAY", r.ByMonthDay)
	writeIntList(&b, "BYYEARDAY", r.ByYearDay)
	writeIntList(&b, "BYWEEKNO", r.ByWeekNo)
	writeIntList(&b, "BYMONTH", r.ByMonth)
	writeIntList(&b, "BYSETPOS", r.BySetPos)
	if r.WeekStart != nil {
		b.WriteString(";WKST=")
		b.WriteString(r.WeekStart.String())
	}
	return b.String()
}

func writeIntList(b *strings.Builder, key string, vals []int) {
	if len(vals) == 0 {
		return
	}
	b.WriteByte(';')
	b.WriteString(key)
	b.WriteByte('=')
	for i, v := range vals {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(v))
	}
}

func parseRecurrenceRule(raw string, span Span) (*RecurrenceRule, *Error) {
	rule := &RecurrenceRule{}
	sawFreq := false
	if strings.TrimSpace(raw) == "" {
		return nil, errValidation(span, "empty recurrence rule")
	}
	for _, part := range strings.Split(raw, ";") {
		eq := strings.IndexByte(part, '=')
		if eq < 0 {
			return nil, errValidation(span, "invalid recurrence rule part %q: missing '='", part)
		}
		key, val := part[:eq], part[eq+1:]
		var err *Error
		switch strings.ToUpper(key) {
		case "FREQ":
			freq, ok := parseFrequency(val)
			if !ok {
				return nil, errValidation(span, "invalid recurrence frequency %q", val)
			}
			rule.Freq = freq
			sawFreq = true
		case "UNTIL":
			until, uerr := parseUntil(val, span)
			if uerr != nil {
				return nil, uerr
			}
			rule.Until = &until
		case "COUNT":
			rule.Count, err = parseRulePositive(key, val, span)
		case "INTERVAL":
			rule.Interval, err = parseRulePositive(key, val, span)
		case "BYSECOND":
			rule.BySecond, err = parseRuleIntList(key, val, 0, 60, false, span)
		case "BYMINUTE":
			rule.ByMinute, err = parseRuleIntList(key, val, 0, 59, false, span)
		case "BYHOUR":
			rule.ByHour, err = parseRuleIntList(key, val, 0, 23, false, span)
		case "BYDAY":
			rule.ByDay, err = parseRuleDayList(val, span)
		case "BYMONTHDAY":
			rule.ByMonthDay, err = parseRuleIntList(key, val, 1, 31, true, span)
		case "BYYEARDAY":
			rule.ByYearDay, err = parseRuleIntList(key, val, 1, 366, true, span)
		case "BYWEEKNO":
			rule.ByWeekNo, err = parseRuleIntList(key, val, 1, 53, true, span)
		case "BYMONTH":
			rule.ByMonth, err = parseRuleIntList(key, val, 1, 12, false, span)
		case "BYSETPOS":
			rule.BySetPos, err = parseRuleIntList(key, val, 1, 366, true, span)
		case "WKST":
			day, ok := parseWeekday(val)
			if !ok {
				return nil, errValidation(span, "invalid WKST value %q", val)
			}
			rule.WeekStart = &day
		default:
			return nil, errValidation(span, "unknown recurrence rule part %q", key)
		}
		if err != nil {
			return nil, err
		}
	}
	if !sawFreq {
		return nil, errValidation(span, "recurrence rule is missing FREQ")
	}
	if rule.Until != nil && rule.Count != nil {
		return nil, errValidation(span, "recurrence rule cannot carry both UNTIL and COUNT")
	}
	return rule, nil
}

// parseUntil accepts either the DATE or DATE-TIME form.
func parseUntil(val string, span Span) (Value, *Error) {
	if strings.ContainsAny(val, "Tt") {
		dt, err := parseDateTime(val, span)
		if err != nil {
			return Value{}, err
		}
		return Value{Type: ValueDateTime, DateTime: dt, Span: span}, nil
	}
	d, err := parseDate(val, span)
	if err != nil {
		return Value{}, err
	}
	return Value{Type: ValueDate, Date: d, Span: span}, nil
}

func parseRulePositive(key, val string, span Span) (*int, *Error) {
	n, err := strconv.Atoi(val)
	if err != nil || n < 1 {
		return nil, errValidation(span, "invalid %s value %q: want a positive integer", key, val)
	}
	return &n, nil
}

func parseRuleIntList(key, val string, lo, hi int, signed bool, span Span) ([]int, *Error) {
	var out []int
	for _, part := range strings.Split(val, ",") {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, errValidation(span, "invalid %s entry %q", key, part)
		}
		abs := n
		if abs < 0 {
			abs = -abs
		}
		if (n < 0 && !signed) || abs < lo || abs > hi {
			return nil, errValidation(span, "%s entry %q out of range", key, part)
		}
		out = append(out, n)
	}
	return out, nil
}

func parseRuleDayList(val string, span Span) ([]WeekDayNum, *Error) {
	var out []WeekDayNum
	for _, part := range strings.Split(val, ",") {
		s := part
		num := 0
		neg := false
		if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
			neg = s[0] == '-'
			s = s[1:]
		}
		i := 0
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if i > 0 {
			num, _ = atoiFixed(s[:i])
			if num < 1 || num > 53 {
				return nil, errValidation(span, "BYDAY ordinal out of range in %q", part)
			}
			if neg {
				num = -num
			}
			s = s[i:]
		} else if neg {
			return nil, errValidation(span, "invalid BYDAY entry %q", part)
		}
		day, ok := parseWeekday(s)
		if !ok {
			return nil, errValidation(span, "invalid BYDAY weekday in %q", part)
		}
		out = append(out, WeekDayNum{Occurrence: num, Day: day})
	}
	return out, nil
}
