package ical

import "strings"

// ICalendar is a fully validated VCALENDAR. Required properties are
// plain fields; RFC-optional ones are pointers or slices. Unknown
// child components are preserved raw for round-trip output.
type ICalendar struct {
	ProdID   ProdID
	Version  Version
	CalScale *CalScale
	Method   *Method

	Events    []VEvent
	Todos     []VTodo
	Journals  []VJournal
	FreeBusys []VFreeBusy
	TimeZones []VTimeZone

	Extensions []ExtensionProp
	Others     []*RawComponent
	Span       Span
}

// HasMethod reports whether the calendar carries an iTIP METHOD,
// which relaxes the DTSTART requirement on contained events.
func (cal *ICalendar) HasMethod() bool {
	return cal != nil && cal.Method != nil
}

// analyzeCalendar validates one top-level VCALENDAR tree.
func analyzeCalendar(c *RawComponent) (*ICalendar, []*Error) {
	cal := &ICalendar{Span: c.Span}
	s := analyzeProperties(c)

	cal.ProdID = requireOne[ProdID](s, PropProdID)
	cal.Version = requireOne[Version](s, PropVersion)
	cal.CalScale = atMostOne[CalScale](s, PropCalScale)
	cal.Method = atMostOne[Method](s, PropMethod)
	cal.Extensions = s.exts
	s.unexpected()

	if v := cal.Version.Value().Text; v != "" && v != "2.0" {
		s.errs = append(s.errs, errSemantic(cal.Version.Span, "unsupported iCalendar VERSION %q", v))
	}

	errs := s.errs
	hasMethod := cal.Method != nil
	for _, child := range c.Children {
		switch strings.ToUpper(child.Name) {
		case "VEVENT":
			ev, evErrs := analyzeEvent(child, hasMethod)
			errs = append(errs, evErrs...)
			if ev != nil {
				cal.Events = append(cal.Events, *ev)
			}
		case "VTODO":
			todo, tdErrs := analyzeTodo(child)
			errs = append(errs, tdErrs...)
			if todo != nil {
				cal.Todos = append(cal.Todos, *todo)
			}
		case "VJOURNAL":
			jr, jrErrs := analyzeJournal(child)
			errs = append(errs, jrErrs...)
			if jr != nil {
				cal.Journals = append(cal.Journals, *jr)
			}
		case "VFREEBUSY":
			fb, fbErrs := analyzeFreeBusy(child)
			errs = append(errs, fbErrs...)
			if fb != nil {
				cal.FreeBusys = append(cal.FreeBusys, *fb)
			}
		case "VTIMEZONE":
			tz, tzErrs := analyzeTimeZone(child)
			errs = append(errs, tzErrs...)
			if tz != nil {
				cal.TimeZones = append(cal.TimeZones, *tz)
			}
		case "VALARM", "STANDARD", "DAYLIGHT":
			errs = append(errs, errSemantic(child.Span, "%s cannot appear directly under VCALENDAR", strings.ToUpper(child.Name)))
		default:
			cal.Others = append(cal.Others, child.Owned())
		}
	}
	return cal, errs
}

// analyzeAlarms validates the VALARM children of an event or todo and
// flags everything else nested there.
func analyzeAlarms(c *RawComponent, others *[]*RawComponent) ([]VAlarm, []*Error) {
	var (
		alarms []VAlarm
		errs   []*Error
	)
	for _, child := range c.Children {
		name := strings.ToUpper(child.Name)
		switch {
		case name == "VALARM":
			alarm, aErrs := analyzeAlarm(child)
			errs = append(errs, aErrs...)
			if alarm != nil {
				alarms = append(alarms, *alarm)
			}
		case isExtensionName(child.Name):
			*others = append(*others, child.Owned())
		default:
			errs = append(errs, errSemantic(child.Span, "%s cannot nest inside %s", name, strings.ToUpper(c.Name)))
		}
	}
	return alarms, errs
}

// rejectChildren flags any known component nested where nesting is
// not allowed, preserving unknown ones.
func rejectChildren(c *RawComponent, others *[]*RawComponent) []*Error {
	var errs []*Error
	for _, child := range c.Children {
		if isExtensionName(child.Name) {
			*others = append(*others, child.Owned())
			continue
		}
		errs = append(errs, errSemantic(child.Span, "%s cannot nest inside %s",
			strings.ToUpper(child.Name), strings.ToUpper(c.Name)))
	}
	return errs
}
