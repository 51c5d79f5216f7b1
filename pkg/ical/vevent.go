package ical

// VEvent is a validated VEVENT.
type VEvent struct {
	UID     UID
	DtStamp DtStamp

	DtStart  *DtStart
	DtEnd    *DtEnd
	Duration *DurationProp

	Summary      *Summary
	Description  *Description
	Location     *Location
	Geo          *Geo
	Class        *Class
	Priority     *Priority
	Sequence     *Sequence
	Status       *EventStatus
	StatusProp   *Prop // parsed STATUS property, parameters intact
	Transparency *Transparency
	TranspProp   *Prop
	URL          *URL
	Organizer    *Organizer
	RecurrenceID *RecurrenceID
	Created      *Created
	LastModified *LastModified

	Attendees       []Attendee
	Categories      []Categories
	Comments        []Comment
	Contacts        []Contact
	Resources       []Resources
	Attachments     []Attach
	RelatedTos      []RelatedTo
	RequestStatuses []RequestStatus

	RRule   *RRule
	RDates  []RDate
	ExDates []ExDate

	Alarms     []VAlarm
	Extensions []ExtensionProp
	Others     []*RawComponent
	Span       Span
}

// analyzeEvent validates one VEVENT. hasMethod reflects a METHOD on
// the parent calendar, which lifts the DTSTART requirement.
func analyzeEvent(c *RawComponent, hasMethod bool) (*VEvent, []*Error) {
	ev := &VEvent{Span: c.Span}
	s := analyzeProperties(c)

	ev.UID = requireOne[UID](s, PropUID)
	ev.DtStamp = requireOne[DtStamp](s, PropDtStamp)
	ev.DtStart = atMostOne[DtStart](s, PropDtStart)
	ev.DtEnd = atMostOne[DtEnd](s, PropDtEnd)
	ev.Duration = atMostOne[DurationProp](s, PropDuration)
	ev.Summary = atMostOne[Summary](s, PropSummary)
	ev.Description = atMostOne[Description](s, PropDescription)
	ev.Location = atMostOne[Location](s, PropLocation)
	ev.Geo = atMostOne[Geo](s, PropGeo)
	ev.Class = atMostOne[Class](s, PropClass)
	ev.Priority = atMostOne[Priority](s, PropPriority)
	ev.Sequence = atMostOne[Sequence](s, PropSequence)
	status := atMostOne[Status](s, PropStatus)
	ev.Status = statusValue(s, status, eventStatusNames)
	if status != nil {
		p := status.base()
		ev.StatusProp = &p
	}
	ev.URL = atMostOne[URL](s, PropURL)
	ev.Organizer = atMostOne[Organizer](s, PropOrganizer)
	ev.RecurrenceID = atMostOne[RecurrenceID](s, PropRecurrenceID)
	ev.Created = atMostOne[Created](s, PropCreated)
	ev.LastModified = atMostOne[LastModified](s, PropLastModified)
	ev.Attendees = each[Attendee](s, PropAttendee)
	ev.Categories = each[Categories](s, PropCategories)
	ev.Comments = each[Comment](s, PropComment)
	ev.Contacts = each[Contact](s, PropContact)
	ev.Resources = each[Resources](s, PropResources)
	ev.Attachments = each[Attach](s, PropAttach)
	ev.RelatedTos = each[RelatedTo](s, PropRelatedTo)
	ev.RequestStatuses = each[RequestStatus](s, PropRequestStatus)
	ev.RRule = atMostOne[RRule](s, PropRRule)
	ev.RDates = each[RDate](s, PropRDate)
	ev.ExDates = each[ExDate](s, PropExDate)
	ev.Extensions = s.exts

	if transp := atMostOne[Transp](s, PropTransp); transp != nil {
		p := transp.base()
		ev.TranspProp = &p
		switch text := transp.Value().Text; text {
		case "OPAQUE":
			v := TranspOpaque
			ev.Transparency = &v
		case "TRANSPARENT":
			v := TranspTransparent
			ev.Transparency = &v
		default:
			s.errs = append(s.errs, errSemantic(transp.Span, "invalid TRANSP %q on VEVENT", text))
		}
	}
	s.unexpected()

	if ev.DtStart == nil && !hasMethod {
		s.errs = append(s.errs, errSemantic(c.Span, "VEVENT requires DTSTART when the calendar has no METHOD"))
	}
	if ev.DtEnd != nil && ev.Duration != nil {
		s.errs = append(s.errs, errSemantic(ev.DtEnd.Span, "VEVENT cannot carry both DTEND and DURATION"))
	}
	if pr := ev.Priority; pr != nil {
		if n := pr.Value().Integer; n < 0 || n > 9 {
			s.errs = append(s.errs, errSemantic(pr.Span, "PRIORITY must be between 0 and 9, got %d", n))
		}
	}
	if ev.DtStart != nil && ev.DtEnd != nil {
		startDate := ev.DtStart.Value().Type == ValueDate
		endDate := ev.DtEnd.Value().Type == ValueDate
		if startDate != endDate {
			s.errs = append(s.errs, errSemantic(ev.DtEnd.Span, "DTEND value type must match DTSTART"))
		}
	}

	alarms, alarmErrs := analyzeAlarms(c, &ev.Others)
	ev.Alarms = alarms
	return ev, append(s.errs, alarmErrs...)
}
