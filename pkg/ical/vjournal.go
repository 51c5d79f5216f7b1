package ical

// VJournal is a validated VJOURNAL. DESCRIPTION may repeat here,
// unlike on events and todos.
type VJournal struct {
	UID     UID
	DtStamp DtStamp

	DtStart      *DtStart
	Summary      *Summary
	Class        *Class
	Sequence     *Sequence
	Status       *JournalStatus
	StatusProp   *Prop // parsed STATUS property, parameters intact
	URL          *URL
	Organizer    *Organizer
	RecurrenceID *RecurrenceID
	Created      *Created
	LastModified *LastModified

	Descriptions    []Description
	Attendees       []Attendee
	Categories      []Categories
	Comments        []Comment
	Contacts        []Contact
	Attachments     []Attach
	RelatedTos      []RelatedTo
	RequestStatuses []RequestStatus

	RRule   *RRule
	RDates  []RDate
	ExDates []ExDate

	Extensions []ExtensionProp
	Others     []*RawComponent
	Span       Span
}

func analyzeJournal(c *RawComponent) (*VJournal, []*Error) {
	jr := &VJournal{Span: c.Span}
	s := analyzeProperties(c)

	jr.UID = requireOne[UID](s, PropUID)
	jr.DtStamp = requireOne[DtStamp](s, PropDtStamp)
	jr.DtStart = atMostOne[DtStart](s, PropDtStart)
	jr.Summary = atMostOne[Summary](s, PropSummary)
	jr.Class = atMostOne[Class](s, PropClass)
	jr.Sequence = atMostOne[Sequence](s, PropSequence)
	status := atMostOne[Status](s, PropStatus)
	jr.Status = statusValue(s, status, journalStatusNames)
	if status != nil {
		p := status.base()
		jr.StatusProp = &p
	}
	jr.URL = atMostOne[URL](s, PropURL)
	jr.Organizer = atMostOne[Organizer](s, PropOrganizer)
	jr.RecurrenceID = atMostOne[RecurrenceID](s, PropRecurrenceID)
	jr.Created = atMostOne[Created](s, PropCreated)
	jr.LastModified = atMostOne[LastModified](s, PropLastModified)
	jr.Descriptions = each[Description](s, PropDescription)
	jr.Attendees = each[Attendee](s, PropAttendee)
	jr.Categories = each[Categories](s, PropCategories)
	jr.Comments = each[Comment](s, PropComment)
	jr.Contacts = each[Contact](s, PropContact)
	jr.Attachments = each[Attach](s, PropAttach)
	jr.RelatedTos = each[RelatedTo](s, PropRelatedTo)
	jr.RequestStatuses = each[RequestStatus](s, PropRequestStatus)
	jr.RRule = atMostOne[RRule](s, PropRRule)
	jr.RDates = each[RDate](s, PropRDate)
	jr.ExDates = each[ExDate](s, PropExDate)
	jr.Extensions = s.exts
	s.unexpected()

	errs := append(s.errs, rejectChildren(c, &jr.Others)...)
	return jr, errs
}
