package ical

import "strings"

// AlarmAction is the ACTION value of a VALARM. Experimental actions
// keep their name in the owning alarm.
type AlarmAction int

const (
	ActionAudio AlarmAction = iota
	ActionDisplay
	ActionEmail
	ActionOther
)

var alarmActionNames = map[AlarmAction]string{
	ActionAudio:   "AUDIO",
	ActionDisplay: "DISPLAY",
	ActionEmail:   "EMAIL",
}

func (a AlarmAction) String() string {
	if name, ok := alarmActionNames[a]; ok {
		return name
	}
	return "X-"
}

// VAlarm is a validated VALARM nested in a VEVENT or VTODO.
type VAlarm struct {
	Action     AlarmAction
	ActionName string // verbatim ACTION text, meaningful for ActionOther
	ActionProp *Prop  // parsed ACTION property, parameters intact
	Trigger    Trigger

	Duration *DurationProp
	Repeat   *Repeat

	Description *Description
	Summary     *Summary
	Attendees   []Attendee
	Attachments []Attach

	Extensions []ExtensionProp
	Others     []*RawComponent
	Span       Span
}

func analyzeAlarm(c *RawComponent) (*VAlarm, []*Error) {
	alarm := &VAlarm{Span: c.Span}
	s := analyzeProperties(c)

	action := requireOne[Action](s, PropAction)
	alarm.Trigger = requireOne[Trigger](s, PropTrigger)
	alarm.Duration = atMostOne[DurationProp](s, PropDuration)
	alarm.Repeat = atMostOne[Repeat](s, PropRepeat)
	alarm.Description = atMostOne[Description](s, PropDescription)
	alarm.Summary = atMostOne[Summary](s, PropSummary)
	alarm.Attendees = each[Attendee](s, PropAttendee)
	alarm.Attachments = each[Attach](s, PropAttach)
	alarm.Extensions = s.exts
	s.unexpected()

	alarm.ActionName = action.Value().Text
	if len(action.Values) > 0 {
		p := action.base()
		alarm.ActionProp = &p
	}
	switch {
	case strings.EqualFold(alarm.ActionName, "AUDIO"):
		alarm.Action = ActionAudio
	case strings.EqualFold(alarm.ActionName, "DISPLAY"):
		alarm.Action = ActionDisplay
	case strings.EqualFold(alarm.ActionName, "EMAIL"):
		alarm.Action = ActionEmail
	case isExtensionName(alarm.ActionName):
		alarm.Action = ActionOther
	case alarm.ActionName != "":
		s.errs = append(s.errs, errSemantic(action.Span, "invalid alarm ACTION %q", alarm.ActionName))
	}

	if (alarm.Duration == nil) != (alarm.Repeat == nil) {
		s.errs = append(s.errs, errSemantic(c.Span, "VALARM DURATION and REPEAT must both be present or both absent"))
	}
	switch alarm.Action {
	case ActionDisplay:
		if alarm.Description == nil {
			s.errs = append(s.errs, errSemantic(c.Span, "DISPLAY alarm requires DESCRIPTION"))
		}
	case ActionEmail:
		if alarm.Description == nil {
			s.errs = append(s.errs, errSemantic(c.Span, "EMAIL alarm requires DESCRIPTION"))
		}
		if alarm.Summary == nil {
			s.errs = append(s.errs, errSemantic(c.Span, "EMAIL alarm requires SUMMARY"))
		}
		if len(alarm.Attendees) == 0 {
			s.errs = append(s.errs, errSemantic(c.Span, "EMAIL alarm requires at least one ATTENDEE"))
		}
	case ActionAudio:
		if len(alarm.Attachments) > 1 {
			s.errs = append(s.errs, errSemantic(c.Span, "AUDIO alarm may carry at most one ATTACH"))
		}
	}

	errs := append(s.errs, rejectChildren(c, &alarm.Others)...)
	return alarm, errs
}
