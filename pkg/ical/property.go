package ical

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PropertyKind enumerates RFC 5545 §3.8 properties plus the opaque
// extension variant.
type PropertyKind int

const (
	PropAction PropertyKind = iota
	PropAttach
	PropAttendee
	PropCalScale
	PropCategories
	PropClass
	PropComment
	PropCompleted
	PropContact
	PropCreated
	PropDescription
	PropDtEnd
	PropDtStamp
	PropDtStart
	PropDue
	PropDuration
	PropExDate
	PropFreeBusy
	PropGeo
	PropLastModified
	PropLocation
	PropMethod
	PropOrganizer
	PropPercentComplete
	PropPriority
	PropProdID
	PropRDate
	PropRecurrenceID
	PropRelatedTo
	PropRepeat
	PropRequestStatus
	PropResources
	PropRRule
	PropSequence
	PropStatus
	PropSummary
	PropTransp
	PropTrigger
	PropTzID
	PropTzName
	PropTzOffsetFrom
	PropTzOffsetTo
	PropTzURL
	PropUID
	PropURL
	PropVersion
	PropExtension
)

var propertyKindNames = map[PropertyKind]string{
	PropAction:          "ACTION",
	PropAttach:          "ATTACH",
	PropAttendee:        "ATTENDEE",
	PropCalScale:        "CALSCALE",
	PropCategories:      "CATEGORIES",
	PropClass:           "CLASS",
	PropComment:         "COMMENT",
	PropCompleted:       "COMPLETED",
	PropContact:         "CONTACT",
	PropCreated:         "CREATED",
	PropDescription:     "DESCRIPTION",
	PropDtEnd:           "DTEND",
	PropDtStamp:         "DTSTAMP",
	PropDtStart:         "DTSTART",
	PropDue:             "DUE",
	PropDuration:        "DURATION",
	PropExDate:          "EXDATE",
	PropFreeBusy:        "FREEBUSY",
	PropGeo:             "GEO",
	PropLastModified:    "LAST-MODIFIED",
	PropLocation:        "LOCATION",
	PropMethod:          "METHOD",
	PropOrganizer:       "ORGANIZER",
	PropPercentComplete: "PERCENT-COMPLETE",
	PropPriority:        "PRIORITY",
	PropProdID:          "PRODID",
	PropRDate:           "RDATE",
	PropRecurrenceID:    "RECURRENCE-ID",
	PropRelatedTo:       "RELATED-TO",
	PropRepeat:          "REPEAT",
	PropRequestStatus:   "REQUEST-STATUS",
	PropResources:       "RESOURCES",
	PropRRule:           "RRULE",
	PropSequence:        "SEQUENCE",
	PropStatus:          "STATUS",
	PropSummary:         "SUMMARY",
	PropTransp:          "TRANSP",
	PropTrigger:         "TRIGGER",
	PropTzID:            "TZID",
	PropTzName:          "TZNAME",
	PropTzOffsetFrom:    "TZOFFSETFROM",
	PropTzOffsetTo:      "TZOFFSETTO",
	PropTzURL:           "TZURL",
	PropUID:             "UID",
	PropURL:             "URL",
	PropVersion:         "VERSION",
}

func (k PropertyKind) String() string {
	if name, ok := propertyKindNames[k]; ok {
		return name
	}
	return "X-"
}

// Property is the tagged union over typed properties: one wrapper type
// per RFC 5545 property, each reporting its kind. Unknown properties
// are preserved in ExtensionProp and never fail the parse.
type Property interface {
	Kind() PropertyKind
}

// Prop is the shared shape embedded by every typed property wrapper:
// the group prefix, the typed parameters, and the parsed value(s).
// Single-valued properties hold exactly one entry in Values.
type Prop struct {
	Group  string
	Params []Parameter
	Values []Value
	Span   Span
}

func (p Prop) base() Prop { return p }

// Value returns the first parsed value.
func (p Prop) Value() Value {
	if len(p.Values) == 0 {
		return Value{}
	}
	return p.Values[0]
}

// TzID returns the TZID parameter, when present.
func (p Prop) TzID() (string, bool) {
	for _, param := range p.Params {
		if t, ok := param.(TzIDParam); ok {
			return t.ID, true
		}
	}
	return "", false
}

// Language returns the LANGUAGE parameter, when present.
func (p Prop) Language() (string, bool) {
	for _, param := range p.Params {
		if l, ok := param.(Language); ok {
			return l.Tag, true
		}
	}
	return "", false
}

// Texts collects the text of every value, for multi-valued text
// properties like CATEGORIES.
func (p Prop) Texts() []string {
	out := make([]string, 0, len(p.Values))
	for _, v := range p.Values {
		out = append(out, v.Text)
	}
	return out
}

type Action struct{ Prop }
type Attach struct{ Prop }
type Attendee struct{ Prop }
type CalScale struct{ Prop }
type Categories struct{ Prop }
type Class struct{ Prop }
type Comment struct{ Prop }
type Completed struct{ Prop }
type Contact struct{ Prop }
type Created struct{ Prop }
type Description struct{ Prop }
type DtEnd struct{ Prop }
type DtStamp struct{ Prop }
type DtStart struct{ Prop }
type Due struct{ Prop }
type DurationProp struct{ Prop }
type ExDate struct{ Prop }
type FreeBusy struct{ Prop }
type Geo struct{ Prop }
type LastModified struct{ Prop }
type Location struct{ Prop }
type Method struct{ Prop }
type Organizer struct{ Prop }
type PercentComplete struct{ Prop }
type Priority struct{ Prop }
type ProdID struct{ Prop }
type RDate struct{ Prop }
type RecurrenceID struct{ Prop }
type RelatedTo struct{ Prop }
type Repeat struct{ Prop }
type RequestStatus struct{ Prop }
type Resources struct{ Prop }
type RRule struct{ Prop }
type Sequence struct{ Prop }
type Status struct{ Prop }
type Summary struct{ Prop }
type Transp struct{ Prop }
type Trigger struct{ Prop }
type TzID struct{ Prop }
type TzName struct{ Prop }
type TzOffsetFrom struct{ Prop }
type TzOffsetTo struct{ Prop }
type TzURL struct{ Prop }
type UID struct{ Prop }
type URL struct{ Prop }
type Version struct{ Prop }

func (Action) Kind() PropertyKind          { return PropAction }
func (Attach) Kind() PropertyKind          { return PropAttach }
func (Attendee) Kind() PropertyKind        { return PropAttendee }
func (CalScale) Kind() PropertyKind        { return PropCalScale }
func (Categories) Kind() PropertyKind      { return PropCategories }
func (Class) Kind() PropertyKind           { return PropClass }
func (Comment) Kind() PropertyKind         { return PropComment }
func (Completed) Kind() PropertyKind       { return PropCompleted }
func (Contact) Kind() PropertyKind         { return PropContact }
func (Created) Kind() PropertyKind         { return PropCreated }
func (Description) Kind() PropertyKind     { return PropDescription }
func (DtEnd) Kind() PropertyKind           { return PropDtEnd }
func (DtStamp) Kind() PropertyKind         { return PropDtStamp }
func (DtStart) Kind() PropertyKind         { return PropDtStart }
func (Due) Kind() PropertyKind             { return PropDue }
func (DurationProp) Kind() PropertyKind    { return PropDuration }
func (ExDate) Kind() PropertyKind          { return PropExDate }
func (FreeBusy) Kind() PropertyKind        { return PropFreeBusy }
func (Geo) Kind() PropertyKind             { return PropGeo }
func (LastModified) Kind() PropertyKind    { return PropLastModified }
func (Location) Kind() PropertyKind        { return PropLocation }
func (Method) Kind() PropertyKind          { return PropMethod }
func (Organizer) Kind() PropertyKind       { return PropOrganizer }
func (PercentComplete) Kind() PropertyKind { return PropPercentComplete }
func (Priority) Kind() PropertyKind        { return PropPriority }
func (ProdID) Kind() PropertyKind          { return PropProdID }
func (RDate) Kind() PropertyKind           { return PropRDate }
func (RecurrenceID) Kind() PropertyKind    { return PropRecurrenceID }
func (RelatedTo) Kind() PropertyKind       { return PropRelatedTo }
func (Repeat) Kind() PropertyKind          { return PropRepeat }
func (RequestStatus) Kind() PropertyKind   { return PropRequestStatus }
func (Resources) Kind() PropertyKind       { return PropResources }
func (RRule) Kind() PropertyKind           { return PropRRule }
func (Sequence) Kind() PropertyKind        { return PropSequence }
func (Status) Kind() PropertyKind          { return PropStatus }
func (Summary) Kind() PropertyKind         { return PropSummary }
func (Transp) Kind() PropertyKind          { return PropTransp }
func (Trigger) Kind() PropertyKind         { return PropTrigger }
func (TzID) Kind() PropertyKind            { return PropTzID }
func (TzName) Kind() PropertyKind          { return PropTzName }
func (TzOffsetFrom) Kind() PropertyKind    { return PropTzOffsetFrom }
func (TzOffsetTo) Kind() PropertyKind      { return PropTzOffsetTo }
func (TzURL) Kind() PropertyKind           { return PropTzURL }
func (UID) Kind() PropertyKind             { return PropUID }
func (URL) Kind() PropertyKind             { return PropURL }
func (Version) Kind() PropertyKind         { return PropVersion }

// Lat returns the latitude of a GEO property.
func (g Geo) Lat() decimal.Decimal { return g.Values[0].Float }

// Lon returns the longitude of a GEO property.
func (g Geo) Lon() decimal.Decimal { return g.Values[1].Float }

// ExtensionProp preserves an unrecognized or X- property verbatim:
// raw parameters and the still-escaped value text.
type ExtensionProp struct {
	Group      string
	Name       string
	Parameters []RawParameter
	Raw        string
	Span       Span
}

func (ExtensionProp) Kind() PropertyKind { return PropExtension }

var propertyConstructors = map[string]func(Prop) Property{
	"ACTION":           func(p Prop) Property { return Action{p} },
	"ATTACH":           func(p Prop) Property { return Attach{p} },
	"ATTENDEE":         func(p Prop) Property { return Attendee{p} },
	"CALSCALE":         func(p Prop) Property { return CalScale{p} },
	"CATEGORIES":       func(p Prop) Property { return Categories{p} },
	"CLASS":            func(p Prop) Property { return Class{p} },
	"COMMENT":          func(p Prop) Property { return Comment{p} },
	"COMPLETED":        func(p Prop) Property { return Completed{p} },
	"CONTACT":          func(p Prop) Property { return Contact{p} },
	"CREATED":          func(p Prop) Property { return Created{p} },
	"DESCRIPTION":      func(p Prop) Property { return Description{p} },
	"DTEND":            func(p Prop) Property { return DtEnd{p} },
	"DTSTAMP":          func(p Prop) Property { return DtStamp{p} },
	"DTSTART":          func(p Prop) Property { return DtStart{p} },
	"DUE":              func(p Prop) Property { return Due{p} },
	"DURATION":         func(p Prop) Property { return DurationProp{p} },
	"EXDATE":           func(p Prop) Property { return ExDate{p} },
	"FREEBUSY":         func(p Prop) Property { return FreeBusy{p} },
	"GEO":              func(p Prop) Property { return Geo{p} },
	"LAST-MODIFIED":    func(p Prop) Property { return LastModified{p} },
	"LOCATION":         func(p Prop) Property { return Location{p} },
	"METHOD":           func(p Prop) Property { return Method{p} },
	"ORGANIZER":        func(p Prop) Property { return Organizer{p} },
	"PERCENT-COMPLETE": func(p Prop) Property { return PercentComplete{p} },
	"PRIORITY":         func(p Prop) Property { return Priority{p} },
	"PRODID":           func(p Prop) Property { return ProdID{p} },
	"RDATE":            func(p Prop) Property { return RDate{p} },
	"RECURRENCE-ID":    func(p Prop) Property { return RecurrenceID{p} },
	"RELATED-TO":       func(p Prop) Property { return RelatedTo{p} },
	"REPEAT":           func(p Prop) Property { return Repeat{p} },
	"REQUEST-STATUS":   func(p Prop) Property { return RequestStatus{p} },
	"RESOURCES":        func(p Prop) Property { return Resources{p} },
	"RRULE":            func(p Prop) Property { return RRule{p} },
	"SEQUENCE":         func(p Prop) Property { return Sequence{p} },
	"STATUS":           func(p Prop) Property { return Status{p} },
	"SUMMARY":          func(p Prop) Property { return Summary{p} },
	"TRANSP":           func(p Prop) Property { return Transp{p} },
	"TRIGGER":          func(p Prop) Property { return Trigger{p} },
	"TZID":             func(p Prop) Property { return TzID{p} },
	"TZNAME":           func(p Prop) Property { return TzName{p} },
	"TZOFFSETFROM":     func(p Prop) Property { return TzOffsetFrom{p} },
	"TZOFFSETTO":       func(p Prop) Property { return TzOffsetTo{p} },
	"TZURL":            func(p Prop) Property { return TzURL{p} },
	"UID":              func(p Prop) Property { return UID{p} },
	"URL":              func(p Prop) Property { return URL{p} },
	"VERSION":          func(p Prop) Property { return Version{p} },
}

// analyzeProperty runs the parameter and value passes over one raw
// property and wraps the result in its typed property. A nil Property
// with errors means the property could not be typed; an ExtensionProp
// means the name was unknown and the content was preserved verbatim.
func analyzeProperty(raw RawProperty) (Property, []*Error) {
	name := strings.ToUpper(raw.Name)
	spec, known := propertySpecs[name]
	if !known || isExtensionName(raw.Name) {
		return newExtensionProp(raw), nil
	}

	var errs []*Error

	// parameter pass
	params := make([]Parameter, 0, len(raw.Parameters))
	seen := make(map[ParameterKind]bool)
	for _, rp := range raw.Parameters {
		param, err := parseParameter(rp)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		kind := param.Kind()
		if kind != ParamOther {
			if seen[kind] {
				errs = append(errs, errValidation(rp.Span, "duplicate parameter %s on property %s", kind, name))
				continue
			}
			seen[kind] = true
			if !spec.allowsParam(kind) {
				errs = append(errs, errValidation(rp.Span, "parameter %s is not legal on property %s", kind, name))
				continue
			}
		}
		params = append(params, param)
	}

	base64Encoded := false
	declared := (*ValueType)(nil)
	for _, param := range params {
		switch p := param.(type) {
		case EncodingParam:
			base64Encoded = p.Encoding == EncodingBase64
		case ValueParam:
			t := p.Type
			declared = &t
		}
	}

	rawValue := strings.Clone(raw.Value.String())
	valueSpan := raw.Value.Span()
	if valueSpan.Empty() {
		valueSpan = raw.Span
	}

	typ := spec.Default
	if declared != nil {
		if !spec.allows(*declared) {
			errs = append(errs, errValidation(valueSpan, "property %s does not support VALUE=%s", name, *declared))
			return nil, errs
		}
		typ = *declared
	} else {
		typ = inferValueType(spec, rawValue, base64Encoded)
	}

	// value pass
	var values []Value
	if name == "GEO" {
		values, errs = parseGeoValue(rawValue, valueSpan, errs)
	} else {
		var pieces []string
		switch {
		case !spec.Multi:
			pieces = []string{rawValue}
		case typ == ValueText:
			pieces = splitOnUnescapedCommas(rawValue)
		default:
			pieces = strings.Split(rawValue, ",")
		}
		for _, piece := range pieces {
			v, err := parseValue(typ, piece, valueSpan, base64Encoded)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		if len(errs) == 0 {
			errs = append(errs, errValidation(valueSpan, "property %s has no usable value", name))
		}
		return nil, errs
	}

	prop := Prop{
		Group:  strings.Clone(raw.Group),
		Params: params,
		Values: values,
		Span:   raw.Span,
	}
	return propertyConstructors[name](prop), errs
}

// geo-value = float ";" float
func parseGeoValue(raw string, span Span, errs []*Error) ([]Value, []*Error) {
	parts := strings.Split(raw, ";")
	if len(parts) != 2 {
		return nil, append(errs, errValidation(span, "invalid GEO value %q: want lat;lon", raw))
	}
	var values []Value
	for _, part := range parts {
		v, err := parseValue(ValueFloat, part, span, false)
		if err != nil {
			return nil, append(errs, err)
		}
		values = append(values, v)
	}
	lat, _ := values[0].Float.Float64()
	lon, _ := values[1].Float.Float64()
	if lat < -90 || lat > 90 {
		return nil, append(errs, errValidation(span, "GEO latitude %q out of range", parts[0]))
	}
	if lon < -180 || lon > 180 {
		return nil, append(errs, errValidation(span, "GEO longitude %q out of range", parts[1]))
	}
	return values, errs
}

func newExtensionProp(raw RawProperty) ExtensionProp {
	params := make([]RawParameter, len(raw.Parameters))
	for i, p := range raw.Parameters {
		params[i] = p.owned()
	}
	return ExtensionProp{
		Group:      strings.Clone(raw.Group),
		Name:       strings.Clone(raw.Name),
		Parameters: params,
		Raw:        strings.Clone(raw.Value.String()),
		Span:       raw.Span,
	}
}
