package ical

// VFreeBusy is a validated VFREEBUSY.
type VFreeBusy struct {
	UID     UID
	DtStamp DtStamp

	DtStart   *DtStart
	DtEnd     *DtEnd
	Contact   *Contact
	Organizer *Organizer
	URL       *URL

	Attendees       []Attendee
	Comments        []Comment
	FreeBusys       []FreeBusy
	RequestStatuses []RequestStatus

	Extensions []ExtensionProp
	Others     []*RawComponent
	Span       Span
}

func analyzeFreeBusy(c *RawComponent) (*VFreeBusy, []*Error) {
	fb := &VFreeBusy{Span: c.Span}
	s := analyzeProperties(c)

	fb.UID = requireOne[UID](s, PropUID)
	fb.DtStamp = requireOne[DtStamp](s, PropDtStamp)
	fb.DtStart = atMostOne[DtStart](s, PropDtStart)
	fb.DtEnd = atMostOne[DtEnd](s, PropDtEnd)
	fb.Contact = atMostOne[Contact](s, PropContact)
	fb.Organizer = atMostOne[Organizer](s, PropOrganizer)
	fb.URL = atMostOne[URL](s, PropURL)
	fb.Attendees = each[Attendee](s, PropAttendee)
	fb.Comments = each[Comment](s, PropComment)
	fb.FreeBusys = each[FreeBusy](s, PropFreeBusy)
	fb.RequestStatuses = each[RequestStatus](s, PropRequestStatus)
	fb.Extensions = s.exts
	s.unexpected()

	// free/busy windows must be UTC date-times
	for _, dt := range []*Span{dtSpanIfLocal(fb.DtStart), dtSpanIfLocalEnd(fb.DtEnd)} {
		if dt != nil {
			s.errs = append(s.errs, errSemantic(*dt, "VFREEBUSY times must be in UTC"))
		}
	}
	errs := append(s.errs, rejectChildren(c, &fb.Others)...)
	return fb, errs
}

func dtSpanIfLocal(p *DtStart) *Span {
	if p == nil {
		return nil
	}
	if v := p.Value(); v.Type == ValueDateTime && !v.DateTime.Time.UTC {
		return &p.Span
	}
	return nil
}

func dtSpanIfLocalEnd(p *DtEnd) *Span {
	if p == nil {
		return nil
	}
	if v := p.Value(); v.Type == ValueDateTime && !v.DateTime.Time.UTC {
		return &p.Span
	}
	return nil
}
