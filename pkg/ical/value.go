package ical

import (
	"encoding/base64"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ValueType enumerates RFC 5545 §3.3 value data types, matching the
// names legal in a VALUE= parameter.
type ValueType int

const (
	ValueBinary ValueType = iota
	ValueBoolean
	ValueCalAddress
	ValueDate
	ValueDateTime
	ValueDuration
	ValueFloat
	ValueInteger
	ValuePeriod
	ValueRecur
	ValueText
	ValueTime
	ValueURI
	ValueUTCOffset
)

var valueTypeNames = map[ValueType]string{
	ValueBinary:     "BINARY",
	ValueBoolean:    "BOOLEAN",
	ValueCalAddress: "CAL-ADDRESS",
	ValueDate:       "DATE",
	ValueDateTime:   "DATE-TIME",
	ValueDuration:   "DURATION",
	ValueFloat:      "FLOAT",
	ValueInteger:    "INTEGER",
	ValuePeriod:     "PERIOD",
	ValueRecur:      "RECUR",
	ValueText:       "TEXT",
	ValueTime:       "TIME",
	ValueURI:        "URI",
	ValueUTCOffset:  "UTC-OFFSET",
}

func (t ValueType) String() string {
	if name, ok := valueTypeNames[t]; ok {
		return name
	}
	return "TEXT"
}

// parseValueType resolves a VALUE= parameter value, case-insensitively.
func parseValueType(s string) (ValueType, bool) {
	for t, name := range valueTypeNames {
		if strings.EqualFold(s, name) {
			return t, true
		}
	}
	return 0, false
}

// Value is the tagged union over all §3.3 value types. Exactly the
// field matching Type is meaningful.
type Value struct {
	Type ValueType
	Span Span

	Binary     []byte
	Boolean    bool
	CalAddress string
	Date       Date
	DateTime   DateTime
	Duration   Duration
	Float      decimal.Decimal
	Integer    int64
	Period     Period
	Recur      *RecurrenceRule
	Text       string
	Time       Time
	URI        string
	UTCOffset  UTCOffset
}

// parseValue parses raw value text as the given type. base64Encoded
// reflects an ENCODING=BASE64 parameter on the owning property.
func parseValue(typ ValueType, raw string, span Span, base64Encoded bool) (Value, *Error) {
	v := Value{Type: typ, Span: span}
	var err *Error
	switch typ {
	case ValueBinary:
		v.Binary, err = parseBinary(raw, span, base64Encoded)
	case ValueBoolean:
		v.Boolean, err = parseBoolean(raw, span)
	case ValueCalAddress:
		v.CalAddress = raw
	case ValueDate:
		v.Date, err = parseDate(raw, span)
	case ValueDateTime:
		v.DateTime, err = parseDateTime(raw, span)
	case ValueDuration:
		v.Duration, err = parseDuration(raw, span)
	case ValueFloat:
		v.Float, err = parseFloat(raw, span)
	case ValueInteger:
		v.Integer, err = parseInteger(raw, span)
	case ValuePeriod:
		v.Period, err = parsePeriod(raw, span)
	case ValueRecur:
		v.Recur, err = parseRecurrenceRule(raw, span)
	case ValueText:
		v.Text, err = unescapeText(raw, span)
	case ValueTime:
		v.Time, err = parseTime(raw, span)
	case ValueURI:
		v.URI = raw
	case ValueUTCOffset:
		v.UTCOffset, err = parseUTCOffset(raw, span)
	default:
		err = errValidation(span, "unsupported value type")
	}
	if err != nil {
		return Value{}, err
	}
	return v, nil
}

// boolean = "TRUE" / "FALSE"
func parseBoolean(raw string, span Span) (bool, *Error) {
	switch {
	case strings.EqualFold(raw, "TRUE"):
		return true, nil
	case strings.EqualFold(raw, "FALSE"):
		return false, nil
	}
	return false, errValidation(span, "invalid boolean %q: must be TRUE or FALSE", raw)
}

// integer = [sign] 1*DIGIT ; constrained to int32 range per RFC 5545
func parseInteger(raw string, span Span) (int64, *Error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errValidation(span, "invalid integer %q", raw)
	}
	if n < -2147483648 || n > 2147483647 {
		return 0, errValidation(span, "integer %q out of range", raw)
	}
	return n, nil
}

// float = [sign] 1*DIGIT ["." 1*DIGIT]
// Parsed into a decimal so GEO coordinates survive round-trips without
// binary float drift.
func parseFloat(raw string, span Span) (decimal.Decimal, *Error) {
	if raw == "" {
		return decimal.Decimal{}, errValidation(span, "empty float value")
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, errValidation(span, "invalid float %q", raw)
	}
	return d, nil
}

func parseBinary(raw string, span Span, base64Encoded bool) ([]byte, *Error) {
	if !base64Encoded {
		return nil, errValidation(span, "BINARY value requires ENCODING=BASE64")
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, errValidation(span, "invalid base64 data: %v", err)
	}
	return data, nil
}

// UTCOffset is a fixed offset from UTC.
//
//	utc-offset = ("+" / "-") time-hour time-minute [time-second]
type UTCOffset struct {
	Negative bool
	Hours    int
	Minutes  int
	Seconds  int
}

func (o UTCOffset) String() string {
	sign := "+"
	if o.Negative {
		sign = "-"
	}
	var b strings.Builder
	b.WriteString(sign)
	writeDigits(&b, o.Hours, 2)
	writeDigits(&b, o.Minutes, 2)
	if o.Seconds != 0 {
		writeDigits(&b, o.Seconds, 2)
	}
	return b.String()
}

func parseUTCOffset(raw string, span Span) (UTCOffset, *Error) {
	var o UTCOffset
	if len(raw) != 5 && len(raw) != 7 {
		return o, errValidation(span, "invalid utc offset %q", raw)
	}
	switch raw[0] {
	case '+':
	case '-':
		o.Negative = true
	default:
		return o, errValidation(span, "utc offset %q must start with '+' or '-'", raw)
	}
	var ok bool
	if o.Hours, ok = atoiFixed(raw[1:3]); !ok {
		return o, errValidation(span, "invalid utc offset hours in %q", raw)
	}
	if o.Minutes, ok = atoiFixed(raw[3:5]); !ok || o.Minutes > 59 {
		return o, errValidation(span, "invalid utc offset minutes in %q", raw)
	}
	if len(raw) == 7 {
		if o.Seconds, ok = atoiFixed(raw[5:7]); !ok || o.Seconds > 59 {
			return o, errValidation(span, "invalid utc offset seconds in %q", raw)
		}
	}
	if o.Negative && o.Hours == 0 && o.Minutes == 0 && o.Seconds == 0 {
		return o, errValidation(span, "-0000 is not a legal utc offset")
	}
	return o, nil
}

// atoiFixed parses an all-digit string, rejecting signs and spaces
// that strconv would not.
func atoiFixed(s string) (int, bool) {
	n := 0
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b < '0' || b > '9' {
			return 0, false
		}
		n = n*10 + int(b-'0')
	}
	return n, true
}

func writeDigits(b *strings.Builder, n, width int) {
	s := strconv.Itoa(n)
	for i := len(s); i < width; i++ {
		b.WriteByte('0')
	}
	b.WriteString(s)
}
