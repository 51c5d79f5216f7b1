package ical

import "strings"

// ParameterKind enumerates RFC 5545 §3.2 property parameters plus the
// opaque extension variant.
type ParameterKind int

const (
	ParamAltRep ParameterKind = iota
	ParamCommonName
	ParamCUType
	ParamDelegatedFrom
	ParamDelegatedTo
	ParamDir
	ParamEncoding
	ParamFmtType
	ParamFBType
	ParamLanguage
	ParamMember
	ParamPartStat
	ParamRange
	ParamRelated
	ParamRelType
	ParamRole
	ParamRSVP
	ParamSentBy
	ParamTzID
	ParamValue
	ParamOther
)

var parameterKindNames = map[ParameterKind]string{
	ParamAltRep:        "ALTREP",
	ParamCommonName:    "CN",
	ParamCUType:        "CUTYPE",
	ParamDelegatedFrom: "DELEGATED-FROM",
	ParamDelegatedTo:   "DELEGATED-TO",
	ParamDir:           "DIR",
	ParamEncoding:      "ENCODING",
	ParamFmtType:       "FMTTYPE",
	ParamFBType:        "FBTYPE",
	ParamLanguage:      "LANGUAGE",
	ParamMember:        "MEMBER",
	ParamPartStat:      "PARTSTAT",
	ParamRange:         "RANGE",
	ParamRelated:       "RELATED",
	ParamRelType:       "RELTYPE",
	ParamRole:          "ROLE",
	ParamRSVP:          "RSVP",
	ParamSentBy:        "SENT-BY",
	ParamTzID:          "TZID",
	ParamValue:         "VALUE",
}

func (k ParameterKind) String() string {
	if name, ok := parameterKindNames[k]; ok {
		return name
	}
	return "X-"
}

// Parameter is the tagged union over typed parameters. Each variant
// reports its kind; unknown and experimental parameters live in
// OtherParam and are never rejected.
type Parameter interface {
	Kind() ParameterKind
}

type AltRep struct{ URI string }
type CommonName struct{ Name string }
type CUType struct{ Type CalendarUserType }
type DelegatedFrom struct{ Addresses []string }
type DelegatedTo struct{ Addresses []string }
type Dir struct{ URI string }
type EncodingParam struct{ Encoding Encoding }
type FmtType struct{ MediaType string }
type FBType struct{ Type FreeBusyType }
type Language struct{ Tag string }
type Member struct{ Addresses []string }
type PartStat struct{ Status ParticipationStatus }
type RangeParam struct{} // THISANDFUTURE is the only legal value
type Related struct{ Relation TriggerRelation }
type RelType struct{ Type RelationType }
type Role struct{ Role ParticipationRole }
type RSVP struct{ Expected bool }
type SentBy struct{ Address string }
type TzIDParam struct{ ID string }
type ValueParam struct{ Type ValueType }

// OtherParam preserves an X- or unregistered IANA parameter verbatim
// for round-trip output.
type OtherParam struct {
	Name   string
	Values []RawParameterValue
}

func (AltRep) Kind() ParameterKind        { return ParamAltRep }
func (CommonName) Kind() ParameterKind    { return ParamCommonName }
func (CUType) Kind() ParameterKind        { return ParamCUType }
func (DelegatedFrom) Kind() ParameterKind { return ParamDelegatedFrom }
func (DelegatedTo) Kind() ParameterKind   { return ParamDelegatedTo }
func (Dir) Kind() ParameterKind           { return ParamDir }
func (EncodingParam) Kind() ParameterKind { return ParamEncoding }
func (FmtType) Kind() ParameterKind       { return ParamFmtType }
func (FBType) Kind() ParameterKind        { return ParamFBType }
func (Language) Kind() ParameterKind      { return ParamLanguage }
func (Member) Kind() ParameterKind        { return ParamMember }
func (PartStat) Kind() ParameterKind      { return ParamPartStat }
func (RangeParam) Kind() ParameterKind    { return ParamRange }
func (Related) Kind() ParameterKind       { return ParamRelated }
func (RelType) Kind() ParameterKind       { return ParamRelType }
func (Role) Kind() ParameterKind          { return ParamRole }
func (RSVP) Kind() ParameterKind          { return ParamRSVP }
func (SentBy) Kind() ParameterKind        { return ParamSentBy }
func (TzIDParam) Kind() ParameterKind     { return ParamTzID }
func (ValueParam) Kind() ParameterKind    { return ParamValue }
func (OtherParam) Kind() ParameterKind    { return ParamOther }

// CalendarUserType is CUTYPE. UNKNOWN is itself a registered value.
type CalendarUserType int

const (
	CUIndividual CalendarUserType = iota
	CUGroup
	CUResource
	CURoom
	CUUnknown
)

var cuTypeNames = map[CalendarUserType]string{
	CUIndividual: "INDIVIDUAL",
	CUGroup:      "GROUP",
	CUResource:   "RESOURCE",
	CURoom:       "ROOM",
	CUUnknown:    "UNKNOWN",
}

func (t CalendarUserType) String() string { return cuTypeNames[t] }

// Encoding is the inline ENCODING parameter.
type Encoding int

const (
	Encoding8Bit Encoding = iota
	EncodingBase64
)

func (e Encoding) String() string {
	if e == EncodingBase64 {
		return "BASE64"
	}
	return "8BIT"
}

// FreeBusyType is FBTYPE.
type FreeBusyType int

const (
	FBFree FreeBusyType = iota
	FBBusy
	FBBusyUnavailable
	FBBusyTentative
)

var fbTypeNames = map[FreeBusyType]string{
	FBFree:            "FREE",
	FBBusy:            "BUSY",
	FBBusyUnavailable: "BUSY-UNAVAILABLE",
	FBBusyTentative:   "BUSY-TENTATIVE",
}

func (t FreeBusyType) String() string { return fbTypeNames[t] }

// ParticipationStatus is PARTSTAT.
type ParticipationStatus int

const (
	PartStatNeedsAction ParticipationStatus = iota
	PartStatAccepted
	PartStatDeclined
	PartStatTentative
	PartStatDelegated
	PartStatCompleted
	PartStatInProcess
)

var partStatNames = map[ParticipationStatus]string{
	PartStatNeedsAction: "NEEDS-ACTION",
	PartStatAccepted:    "ACCEPTED",
	PartStatDeclined:    "DECLINED",
	PartStatTentative:   "TENTATIVE",
	PartStatDelegated:   "DELEGATED",
	PartStatCompleted:   "COMPLETED",
	PartStatInProcess:   "IN-PROCESS",
}

func (s ParticipationStatus) String() string { return partStatNames[s] }

// TriggerRelation is the RELATED parameter on TRIGGER.
type TriggerRelation int

const (
	RelatedStart TriggerRelation = iota
	RelatedEnd
)

func (r TriggerRelation) String() string {
	if r == RelatedEnd {
		return "END"
	}
	return "START"
}

// RelationType is RELTYPE on RELATED-TO.
type RelationType int

const (
	RelParent RelationType = iota
	RelChild
	RelSibling
)

var relTypeNames = map[RelationType]string{
	RelParent:  "PARENT",
	RelChild:   "CHILD",
	RelSibling: "SIBLING",
}

func (t RelationType) String() string { return relTypeNames[t] }

// ParticipationRole is ROLE.
type ParticipationRole int

const (
	RoleChair ParticipationRole = iota
	RoleReqParticipant
	RoleOptParticipant
	RoleNonParticipant
)

var roleNames = map[ParticipationRole]string{
	RoleChair:          "CHAIR",
	RoleReqParticipant: "REQ-PARTICIPANT",
	RoleOptParticipant: "OPT-PARTICIPANT",
	RoleNonParticipant: "NON-PARTICIPANT",
}

func (r ParticipationRole) String() string { return roleNames[r] }

func isExtensionName(name string) bool {
	return len(name) > 2 && (name[0] == 'X' || name[0] == 'x') && name[1] == '-'
}

// parseParameter converts one scanned parameter into its typed
// variant. Unknown names are preserved, never rejected.
func parseParameter(raw RawParameter) (Parameter, *Error) {
	name := strings.ToUpper(raw.Name)
	switch name {
	case "ALTREP":
		v, err := paramSingleQuoted(raw)
		if err != nil {
			return nil, err
		}
		return AltRep{URI: v}, nil
	case "CN":
		v, err := paramSingle(raw)
		if err != nil {
			return nil, err
		}
		return CommonName{Name: v}, nil
	case "CUTYPE":
		v, err := paramSingle(raw)
		if err != nil {
			return nil, err
		}
		t, err := paramEnum(raw, v, cuTypeNames)
		if err != nil {
			return nil, err
		}
		return CUType{Type: t}, nil
	case "DELEGATED-FROM":
		vs, err := paramMultiQuoted(raw)
		if err != nil {
			return nil, err
		}
		return DelegatedFrom{Addresses: vs}, nil
	case "DELEGATED-TO":
		vs, err := paramMultiQuoted(raw)
		if err != nil {
			return nil, err
		}
		return DelegatedTo{Addresses: vs}, nil
	case "DIR":
		v, err := paramSingleQuoted(raw)
		if err != nil {
			return nil, err
		}
		return Dir{URI: v}, nil
	case "ENCODING":
		v, err := paramSingle(raw)
		if err != nil {
			return nil, err
		}
		switch strings.ToUpper(v) {
		case "8BIT":
			return EncodingParam{Encoding: Encoding8Bit}, nil
		case "BASE64":
			return EncodingParam{Encoding: EncodingBase64}, nil
		}
		return nil, errValidation(raw.Span, "invalid ENCODING value %q: must be 8BIT or BASE64", v)
	case "FMTTYPE":
		v, err := paramSingle(raw)
		if err != nil {
			return nil, err
		}
		if !strings.Contains(v, "/") {
			return nil, errValidation(raw.Span, "invalid FMTTYPE value %q: want type/subtype", v)
		}
		return FmtType{MediaType: v}, nil
	case "FBTYPE":
		v, err := paramSingle(raw)
		if err != nil {
			return nil, err
		}
		t, err := paramEnum(raw, v, fbTypeNames)
		if err != nil {
			return nil, err
		}
		return FBType{Type: t}, nil
	case "LANGUAGE":
		v, err := paramSingle(raw)
		if err != nil {
			return nil, err
		}
		return Language{Tag: v}, nil
	case "MEMBER":
		vs, err := paramMultiQuoted(raw)
		if err != nil {
			return nil, err
		}
		return Member{Addresses: vs}, nil
	case "PARTSTAT":
		v, err := paramSingle(raw)
		if err != nil {
			return nil, err
		}
		s, err := paramEnum(raw, v, partStatNames)
		if err != nil {
			return nil, err
		}
		return PartStat{Status: s}, nil
	case "RANGE":
		v, err := paramSingle(raw)
		if err != nil {
			return nil, err
		}
		if !strings.EqualFold(v, "THISANDFUTURE") {
			return nil, errValidation(raw.Span, "invalid RANGE value %q: must be THISANDFUTURE", v)
		}
		return RangeParam{}, nil
	case "RELATED":
		v, err := paramSingle(raw)
		if err != nil {
			return nil, err
		}
		switch strings.ToUpper(v) {
		case "START":
			return Related{Relation: RelatedStart}, nil
		case "END":
			return Related{Relation: RelatedEnd}, nil
		}
		return nil, errValidation(raw.Span, "invalid RELATED value %q: must be START or END", v)
	case "RELTYPE":
		v, err := paramSingle(raw)
		if err != nil {
			return nil, err
		}
		t, err := paramEnum(raw, v, relTypeNames)
		if err != nil {
			return nil, err
		}
		return RelType{Type: t}, nil
	case "ROLE":
		v, err := paramSingle(raw)
		if err != nil {
			return nil, err
		}
		r, err := paramEnum(raw, v, roleNames)
		if err != nil {
			return nil, err
		}
		return Role{Role: r}, nil
	case "RSVP":
		v, err := paramSingle(raw)
		if err != nil {
			return nil, err
		}
		b, berr := parseBoolean(v, raw.Span)
		if berr != nil {
			return nil, berr
		}
		return RSVP{Expected: b}, nil
	case "SENT-BY":
		v, err := paramSingleQuoted(raw)
		if err != nil {
			return nil, err
		}
		return SentBy{Address: v}, nil
	case "TZID":
		v, err := paramSingle(raw)
		if err != nil {
			return nil, err
		}
		if v == "" {
			return nil, errValidation(raw.Span, "empty TZID value")
		}
		return TzIDParam{ID: v}, nil
	case "VALUE":
		v, err := paramSingle(raw)
		if err != nil {
			return nil, err
		}
		t, ok := parseValueType(v)
		if !ok {
			return nil, errValidation(raw.Span, "unknown VALUE type %q", v)
		}
		return ValueParam{Type: t}, nil
	}
	return OtherParam{Name: raw.Name, Values: raw.Values}, nil
}

// paramSingle enforces the single-value rule most parameters carry.
func paramSingle(raw RawParameter) (string, *Error) {
	if len(raw.Values) != 1 {
		return "", errValidation(raw.Span, "parameter %s takes exactly one value, got %d", strings.ToUpper(raw.Name), len(raw.Values))
	}
	return raw.Values[0].Value, nil
}

// paramSingleQuoted additionally requires the quoted form, as RFC 5545
// mandates for URI-valued parameters.
func paramSingleQuoted(raw RawParameter) (string, *Error) {
	v, err := paramSingle(raw)
	if err != nil {
		return "", err
	}
	if !raw.Values[0].Quoted {
		return "", errValidation(raw.Values[0].Span, "parameter %s requires a quoted value", strings.ToUpper(raw.Name))
	}
	return v, nil
}

func paramMultiQuoted(raw RawParameter) ([]string, *Error) {
	if len(raw.Values) == 0 {
		return nil, errValidation(raw.Span, "parameter %s requires at least one value", strings.ToUpper(raw.Name))
	}
	out := make([]string, len(raw.Values))
	for i, v := range raw.Values {
		if !v.Quoted {
			return nil, errValidation(v.Span, "parameter %s requires quoted values", strings.ToUpper(raw.Name))
		}
		out[i] = v.Value
	}
	return out, nil
}

func paramEnum[T ~int](raw RawParameter, val string, names map[T]string) (T, *Error) {
	for t, name := range names {
		if strings.EqualFold(val, name) {
			return t, nil
		}
	}
	var zero T
	return zero, errValidation(raw.Span, "invalid %s value %q", strings.ToUpper(raw.Name), val)
}
