package ical

import "strings"

// propertySpec describes how one RFC 5545 §3.8 property is typed:
// its default value type, the full set of types it may declare via
// VALUE=, whether its value is a comma-separated list, and which
// parameters are legal on it. X- parameters are legal everywhere and
// are not listed.
type propertySpec struct {
	Default ValueType
	Allowed []ValueType
	Multi   bool
	Params  []ParameterKind
}

func (s propertySpec) allows(t ValueType) bool {
	for _, a := range s.Allowed {
		if a == t {
			return true
		}
	}
	return false
}

func (s propertySpec) allowsParam(k ParameterKind) bool {
	if k == ParamOther || k == ParamValue {
		return true
	}
	for _, p := range s.Params {
		if p == k {
			return true
		}
	}
	return false
}

var (
	textOnly     = []ValueType{ValueText}
	dateOrDT     = []ValueType{ValueDateTime, ValueDate}
	textParams   = []ParameterKind{ParamAltRep, ParamLanguage}
	dtParams     = []ParameterKind{ParamTzID}
	attendeePar  = []ParameterKind{ParamCUType, ParamMember, ParamRole, ParamPartStat, ParamRSVP, ParamDelegatedTo, ParamDelegatedFrom, ParamSentBy, ParamCommonName, ParamDir, ParamLanguage}
	organizerPar = []ParameterKind{ParamCommonName, ParamDir, ParamSentBy, ParamLanguage}
)

// propertySpecs is immutable lookup data, keyed by canonical
// (uppercase) property name.
var propertySpecs = map[string]propertySpec{
	// calendar properties
	"CALSCALE": {Default: ValueText, Allowed: textOnly},
	"METHOD":   {Default: ValueText, Allowed: textOnly},
	"PRODID":   {Default: ValueText, Allowed: textOnly},
	"VERSION":  {Default: ValueText, Allowed: textOnly},

	// descriptive
	"ATTACH":           {Default: ValueURI, Allowed: []ValueType{ValueURI, ValueBinary}, Params: []ParameterKind{ParamFmtType, ParamEncoding}},
	"CATEGORIES":       {Default: ValueText, Allowed: textOnly, Multi: true, Params: []ParameterKind{ParamLanguage}},
	"CLASS":            {Default: ValueText, Allowed: textOnly},
	"COMMENT":          {Default: ValueText, Allowed: textOnly, Multi: true, Params: textParams},
	"DESCRIPTION":      {Default: ValueText, Allowed: textOnly, Params: textParams},
	"GEO":              {Default: ValueFloat, Allowed: []ValueType{ValueFloat}},
	"LOCATION":         {Default: ValueText, Allowed: textOnly, Params: textParams},
	"PERCENT-COMPLETE": {Default: ValueInteger, Allowed: []ValueType{ValueInteger}},
	"PRIORITY":         {Default: ValueInteger, Allowed: []ValueType{ValueInteger}},
	"RESOURCES":        {Default: ValueText, Allowed: textOnly, Multi: true, Params: textParams},
	"STATUS":           {Default: ValueText, Allowed: textOnly},
	"SUMMARY":          {Default: ValueText, Allowed: textOnly, Params: textParams},

	// date and time
	"COMPLETED": {Default: ValueDateTime, Allowed: []ValueType{ValueDateTime}},
	"DTEND":     {Default: ValueDateTime, Allowed: dateOrDT, Params: dtParams},
	"DUE":       {Default: ValueDateTime, Allowed: dateOrDT, Params: dtParams},
	"DTSTART":   {Default: ValueDateTime, Allowed: dateOrDT, Params: dtParams},
	"DURATION":  {Default: ValueDuration, Allowed: []ValueType{ValueDuration}},
	"FREEBUSY":  {Default: ValuePeriod, Allowed: []ValueType{ValuePeriod}, Multi: true, Params: []ParameterKind{ParamFBType}},
	"TRANSP":    {Default: ValueText, Allowed: textOnly},

	// time zone
	"TZID":         {Default: ValueText, Allowed: textOnly},
	"TZNAME":       {Default: ValueText, Allowed: textOnly, Multi: true, Params: []ParameterKind{ParamLanguage}},
	"TZOFFSETFROM": {Default: ValueUTCOffset, Allowed: []ValueType{ValueUTCOffset}},
	"TZOFFSETTO":   {Default: ValueUTCOffset, Allowed: []ValueType{ValueUTCOffset}},
	"TZURL":        {Default: ValueURI, Allowed: []ValueType{ValueURI}},

	// relationship
	"ATTENDEE":      {Default: ValueCalAddress, Allowed: []ValueType{ValueCalAddress}, Params: attendeePar},
	"CONTACT":       {Default: ValueText, Allowed: textOnly, Multi: true, Params: textParams},
	"ORGANIZER":     {Default: ValueCalAddress, Allowed: []ValueType{ValueCalAddress}, Params: organizerPar},
	"RECURRENCE-ID": {Default: ValueDateTime, Allowed: dateOrDT, Params: []ParameterKind{ParamTzID, ParamRange}},
	"RELATED-TO":    {Default: ValueText, Allowed: textOnly, Multi: true, Params: []ParameterKind{ParamRelType}},
	"URL":           {Default: ValueURI, Allowed: []ValueType{ValueURI}},
	"UID":           {Default: ValueText, Allowed: textOnly},

	// recurrence
	"EXDATE": {Default: ValueDateTime, Allowed: dateOrDT, Multi: true, Params: dtParams},
	"RDATE":  {Default: ValueDateTime, Allowed: []ValueType{ValueDateTime, ValueDate, ValuePeriod}, Multi: true, Params: dtParams},
	"RRULE":  {Default: ValueRecur, Allowed: []ValueType{ValueRecur}},

	// alarm
	"ACTION":  {Default: ValueText, Allowed: textOnly},
	"REPEAT":  {Default: ValueInteger, Allowed: []ValueType{ValueInteger}},
	"TRIGGER": {Default: ValueDuration, Allowed: []ValueType{ValueDuration, ValueDateTime}, Params: []ParameterKind{ParamRelated}},

	// change management
	"CREATED":       {Default: ValueDateTime, Allowed: []ValueType{ValueDateTime}},
	"DTSTAMP":       {Default: ValueDateTime, Allowed: []ValueType{ValueDateTime}},
	"LAST-MODIFIED": {Default: ValueDateTime, Allowed: []ValueType{ValueDateTime}},
	"SEQUENCE":      {Default: ValueInteger, Allowed: []ValueType{ValueInteger}},

	// miscellaneous
	"REQUEST-STATUS": {Default: ValueText, Allowed: textOnly, Multi: true, Params: []ParameterKind{ParamLanguage}},
}

// inferValueType resolves the value type when no VALUE parameter is
// given. Properties with a single legal type use it directly; the
// multi-typed ones are disambiguated by value shape, so a bare
// YYYYMMDD DTSTART comes out as DATE rather than DATE-TIME.
func inferValueType(spec propertySpec, raw string, base64Encoded bool) ValueType {
	if len(spec.Allowed) < 2 {
		return spec.Default
	}
	switch {
	case spec.allows(ValueDate) && spec.allows(ValueDateTime):
		if spec.allows(ValuePeriod) && strings.ContainsRune(raw, '/') {
			return ValuePeriod
		}
		if strings.ContainsAny(raw, "Tt") {
			return ValueDateTime
		}
		return ValueDate
	case spec.allows(ValueBinary):
		if base64Encoded {
			return ValueBinary
		}
		return ValueURI
	case spec.allows(ValueDuration) && spec.allows(ValueDateTime):
		if raw != "" && (raw[0] == 'P' || raw[0] == 'p' || raw[0] == '+' || raw[0] == '-') {
			return ValueDuration
		}
		return ValueDateTime
	}
	return spec.Default
}
