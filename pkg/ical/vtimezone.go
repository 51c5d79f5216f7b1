package ical

import "strings"

// VTimeZone is a validated VTIMEZONE with its STANDARD/DAYLIGHT
// observance rules.
type VTimeZone struct {
	ID           TzID
	LastModified *LastModified
	URL          *TzURL

	Standards []TzObservance
	Daylights []TzObservance

	Extensions []ExtensionProp
	Others     []*RawComponent
	Span       Span
}

// TzObservance is one STANDARD or DAYLIGHT sub-rule.
type TzObservance struct {
	Daylight bool

	DtStart    DtStart
	OffsetFrom TzOffsetFrom
	OffsetTo   TzOffsetTo

	RRule    *RRule
	RDates   []RDate
	Comments []Comment
	Names    []TzName

	Extensions []ExtensionProp
	Others     []*RawComponent
	Span       Span
}

func analyzeTimeZone(c *RawComponent) (*VTimeZone, []*Error) {
	tz := &VTimeZone{Span: c.Span}
	s := analyzeProperties(c)

	tz.ID = requireOne[TzID](s, PropTzID)
	tz.LastModified = atMostOne[LastModified](s, PropLastModified)
	tz.URL = atMostOne[TzURL](s, PropTzURL)
	tz.Extensions = s.exts
	s.unexpected()

	errs := s.errs
	for _, child := range c.Children {
		name := strings.ToUpper(child.Name)
		switch {
		case name == "STANDARD" || name == "DAYLIGHT":
			obs, obsErrs := analyzeObservance(child, name == "DAYLIGHT")
			errs = append(errs, obsErrs...)
			if obs == nil {
				continue
			}
			if obs.Daylight {
				tz.Daylights = append(tz.Daylights, *obs)
			} else {
				tz.Standards = append(tz.Standards, *obs)
			}
		case isExtensionName(child.Name):
			tz.Others = append(tz.Others, child.Owned())
		default:
			errs = append(errs, errSemantic(child.Span, "%s cannot nest inside VTIMEZONE", name))
		}
	}
	if len(tz.Standards)+len(tz.Daylights) == 0 {
		errs = append(errs, errSemantic(c.Span, "VTIMEZONE requires at least one STANDARD or DAYLIGHT rule"))
	}
	return tz, errs
}

func analyzeObservance(c *RawComponent, daylight bool) (*TzObservance, []*Error) {
	obs := &TzObservance{Daylight: daylight, Span: c.Span}
	s := analyzeProperties(c)

	obs.DtStart = requireOne[DtStart](s, PropDtStart)
	obs.OffsetFrom = requireOne[TzOffsetFrom](s, PropTzOffsetFrom)
	obs.OffsetTo = requireOne[TzOffsetTo](s, PropTzOffsetTo)
	obs.RRule = atMostOne[RRule](s, PropRRule)
	obs.RDates = each[RDate](s, PropRDate)
	obs.Comments = each[Comment](s, PropComment)
	obs.Names = each[TzName](s, PropTzName)
	obs.Extensions = s.exts
	s.unexpected()

	// observance starts are local date-times by definition
	if v := obs.DtStart.Value(); v.Type == ValueDateTime && v.DateTime.Time.UTC {
		s.errs = append(s.errs, errSemantic(obs.DtStart.Span, "observance DTSTART must be a local date-time"))
	}

	errs := append(s.errs, rejectChildren(c, &obs.Others)...)
	return obs, errs
}
