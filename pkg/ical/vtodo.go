package ical

// VTodo is a validated VTODO.
type VTodo struct {
	UID     UID
	DtStamp DtStamp

	DtStart         *DtStart
	Due             *Due
	Duration        *DurationProp
	Completed       *Completed
	PercentComplete *PercentComplete

	Summary      *Summary
	Description  *Description
	Location     *Location
	Geo          *Geo
	Class        *Class
	Priority     *Priority
	Sequence     *Sequence
	Status       *TodoStatus
	StatusProp   *Prop // parsed STATUS property, parameters intact
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

func analyzeTodo(c *RawComponent) (*VTodo, []*Error) {
	todo := &VTodo{Span: c.Span}
	s := analyzeProperties(c)

	todo.UID = requireOne[UID](s, PropUID)
	todo.DtStamp = requireOne[DtStamp](s, PropDtStamp)
	todo.DtStart = atMostOne[DtStart](s, PropDtStart)
	todo.Due = atMostOne[Due](s, PropDue)
	todo.Duration = atMostOne[DurationProp](s, PropDuration)
	todo.Completed = atMostOne[Completed](s, PropCompleted)
	todo.PercentComplete = atMostOne[PercentComplete](s, PropPercentComplete)
	todo.Summary = atMostOne[Summary](s, PropSummary)
	todo.Description = atMostOne[Description](s, PropDescription)
	todo.Location = atMostOne[Location](s, PropLocation)
	todo.Geo = atMostOne[Geo](s, PropGeo)
	todo.Class = atMostOne[Class](s, PropClass)
	todo.Priority = atMostOne[Priority](s, PropPriority)
	todo.Sequence = atMostOne[Sequence](s, PropSequence)
	status := atMostOne[Status](s, PropStatus)
	todo.Status = statusValue(s, status, todoStatusNames)
	if status != nil {
		p := status.base()
		todo.StatusProp = &p
	}
	todo.URL = atMostOne[URL](s, PropURL)
	todo.Organizer = atMostOne[Organizer](s, PropOrganizer)
	todo.RecurrenceID = atMostOne[RecurrenceID](s, PropRecurrenceID)
	todo.Created = atMostOne[Created](s, PropCreated)
	todo.LastModified = atMostOne[LastModified](s, PropLastModified)
	todo.Attendees = each[Attendee](s, PropAttendee)
	todo.Categories = each[Categories](s, PropCategories)
	todo.Comments = each[Comment](s, PropComment)
	todo.Contacts = each[Contact](s, PropContact)
	todo.Resources = each[Resources](s, PropResources)
	todo.Attachments = each[Attach](s, PropAttach)
	todo.RelatedTos = each[RelatedTo](s, PropRelatedTo)
	todo.RequestStatuses = each[RequestStatus](s, PropRequestStatus)
	todo.RRule = atMostOne[RRule](s, PropRRule)
	todo.RDates = each[RDate](s, PropRDate)
	todo.ExDates = each[ExDate](s, PropExDate)
	todo.Extensions = s.exts
	s.unexpected()

	if todo.Due != nil && todo.Duration != nil {
		s.errs = append(s.errs, errSemantic(todo.Due.Span, "VTODO cannot carry both DUE and DURATION"))
	}
	if todo.Duration != nil && todo.DtStart == nil {
		s.errs = append(s.errs, errSemantic(todo.Duration.Span, "VTODO DURATION requires DTSTART"))
	}
	if pc := todo.PercentComplete; pc != nil {
		if n := pc.Value().Integer; n < 0 || n > 100 {
			s.errs = append(s.errs, errSemantic(pc.Span, "PERCENT-COMPLETE must be between 0 and 100, got %d", n))
		}
	}
	if pr := todo.Priority; pr != nil {
		if n := pr.Value().Integer; n < 0 || n > 9 {
			s.errs = append(s.errs, errSemantic(pr.Span, "PRIORITY must be between 0 and 9, got %d", n))
		}
	}

	alarms, alarmErrs := analyzeAlarms(c, &todo.Others)
	todo.Alarms = alarms
	return todo, append(s.errs, alarmErrs...)
}
