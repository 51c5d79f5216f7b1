package ical

import (
	"encoding/base64"
	"strconv"
	"strings"
)

// FoldWidth is the RFC 5545 recommended maximum physical line length
// in octets.
const FoldWidth = 75

// FormatOptions controls serialization. A zero FoldWidth folds at the
// RFC default; a negative one disables folding.
type FormatOptions struct {
	FoldWidth int
}

func (o FormatOptions) width() int {
	switch {
	case o.FoldWidth == 0:
		return FoldWidth
	case o.FoldWidth < 0:
		return 0
	}
	return o.FoldWidth
}

// Format serializes a validated calendar back to RFC 5545 text with
// CRLF line endings.
func Format(cal *ICalendar, opts FormatOptions) []byte {
	w := &formatWriter{width: opts.width()}
	w.calendar(cal)
	return []byte(w.b.String())
}

// FormatRaw serializes a raw component tree verbatim, re-folding as
// needed.
func FormatRaw(c *RawComponent, opts FormatOptions) []byte {
	w := &formatWriter{width: opts.width()}
	w.rawComponent(c)
	return []byte(w.b.String())
}

type formatWriter struct {
	b     strings.Builder
	width int
}

// line folds one logical content line at a UTF-8-safe boundary and
// terminates it with CRLF. Escape sequences are treated as atoms so a
// fold never lands between a backslash and its escaped character.
func (w *formatWriter) line(s string) {
	if w.width <= 0 || len(s) <= w.width {
		w.b.WriteString(s)
		w.b.WriteString("\r\n")
		return
	}
	lineLen := 0
	for i := 0; i < len(s); {
		atom := 1
		if s[i] == '\\' && i+1 < len(s) {
			atom = 2
		}
		for i+atom < len(s) && s[i+atom]&0xC0 == 0x80 {
			// never split a multi-byte rune
			atom++
		}
		if lineLen+atom > w.width && lineLen > 0 {
			w.b.WriteString("\r\n ")
			lineLen = 1
		}
		w.b.WriteString(s[i : i+atom])
		lineLen += atom
		i += atom
	}
	w.b.WriteString("\r\n")
}

func (w *formatWriter) begin(name string) { w.line("BEGIN:" + name) }
func (w *formatWriter) end(name string)   { w.line("END:" + name) }

// simple writes a bare NAME:VALUE line.
func (w *formatWriter) simple(name, value string) {
	w.line(name + ":" + value)
}

// property writes one typed property: group, parameters, then the
// serialized value list.
func (w *formatWriter) property(kind PropertyKind, p Prop) {
	var b strings.Builder
	if p.Group != "" {
		b.WriteString(p.Group)
		b.WriteByte('.')
	}
	b.WriteString(kind.String())
	for _, param := range p.Params {
		b.WriteByte(';')
		b.WriteString(formatParameter(param))
	}
	b.WriteByte(':')
	sep := byte(',')
	if kind == PropGeo {
		sep = ';'
	}
	for i, v := range p.Values {
		if i > 0 {
			b.WriteByte(sep)
		}
		b.WriteString(formatValue(v))
	}
	w.line(b.String())
}

// enumLine writes an enum-valued property. A surviving parsed Prop
// contributes its group and parameters; the value text always comes
// from the enum, so a mutated enum overrides the parsed text.
func (w *formatWriter) enumLine(kind PropertyKind, src *Prop, text string) {
	if src == nil {
		w.simple(kind.String(), text)
		return
	}
	p := *src
	p.Values = []Value{{Type: ValueText, Text: text}}
	w.property(kind, p)
}

// extension writes an unknown property back verbatim.
func (w *formatWriter) extension(ext ExtensionProp) {
	var b strings.Builder
	if ext.Group != "" {
		b.WriteString(ext.Group)
		b.WriteByte('.')
	}
	b.WriteString(ext.Name)
	for _, param := range ext.Parameters {
		b.WriteByte(';')
		b.WriteString(formatRawParameter(param))
	}
	b.WriteByte(':')
	b.WriteString(ext.Raw)
	w.line(b.String())
}

func writeReq[T interface{ base() Prop }](w *formatWriter, kind PropertyKind, p T) {
	w.property(kind, p.base())
}

func writeOpt[T interface{ base() Prop }](w *formatWriter, kind PropertyKind, p *T) {
	if p != nil {
		w.property(kind, (*p).base())
	}
}

func writeAll[T interface{ base() Prop }](w *formatWriter, kind PropertyKind, ps []T) {
	for _, p := range ps {
		w.property(kind, p.base())
	}
}

func (w *formatWriter) extensions(exts []ExtensionProp) {
	for _, ext := range exts {
		w.extension(ext)
	}
}

func (w *formatWriter) rawComponents(cs []*RawComponent) {
	for _, c := range cs {
		w.rawComponent(c)
	}
}

func (w *formatWriter) calendar(cal *ICalendar) {
	w.begin("VCALENDAR")
	writeReq(w, PropProdID, cal.ProdID)
	writeReq(w, PropVersion, cal.Version)
	writeOpt(w, PropCalScale, cal.CalScale)
	writeOpt(w, PropMethod, cal.Method)
	w.extensions(cal.Extensions)
	for i := range cal.TimeZones {
		w.timezone(&cal.TimeZones[i])
	}
	for i := range cal.Events {
		w.event(&cal.Events[i])
	}
	for i := range cal.Todos {
		w.todo(&cal.Todos[i])
	}
	for i := range cal.Journals {
		w.journal(&cal.Journals[i])
	}
	for i := range cal.FreeBusys {
		w.freebusy(&cal.FreeBusys[i])
	}
	w.rawComponents(cal.Others)
	w.end("VCALENDAR")
}

func (w *formatWriter) event(ev *VEvent) {
	w.begin("VEVENT")
	writeReq(w, PropUID, ev.UID)
	writeReq(w, PropDtStamp, ev.DtStamp)
	writeOpt(w, PropDtStart, ev.DtStart)
	writeOpt(w, PropDtEnd, ev.DtEnd)
	writeOpt(w, PropDuration, ev.Duration)
	writeOpt(w, PropSummary, ev.Summary)
	writeOpt(w, PropDescription, ev.Description)
	writeOpt(w, PropLocation, ev.Location)
	writeOpt(w, PropGeo, ev.Geo)
	writeOpt(w, PropClass, ev.Class)
	writeOpt(w, PropPriority, ev.Priority)
	writeOpt(w, PropSequence, ev.Sequence)
	if ev.Status != nil {
		w.enumLine(PropStatus, ev.StatusProp, ev.Status.String())
	}
	if ev.Transparency != nil {
		w.enumLine(PropTransp, ev.TranspProp, ev.Transparency.String())
	}
	writeOpt(w, PropURL, ev.URL)
	writeOpt(w, PropOrganizer, ev.Organizer)
	writeOpt(w, PropRecurrenceID, ev.RecurrenceID)
	writeOpt(w, PropCreated, ev.Created)
	writeOpt(w, PropLastModified, ev.LastModified)
	writeAll(w, PropAttendee, ev.Attendees)
	writeAll(w, PropCategories, ev.Categories)
	writeAll(w, PropComment, ev.Comments)
	writeAll(w, PropContact, ev.Contacts)
	writeAll(w, PropResources, ev.Resources)
	writeAll(w, PropAttach, ev.Attachments)
	writeAll(w, PropRelatedTo, ev.RelatedTos)
	writeAll(w, PropRequestStatus, ev.RequestStatuses)
	writeOpt(w, PropRRule, ev.RRule)
	writeAll(w, PropRDate, ev.RDates)
	writeAll(w, PropExDate, ev.ExDates)
	w.extensions(ev.Extensions)
	for i := range ev.Alarms {
		w.alarm(&ev.Alarms[i])
	}
	w.rawComponents(ev.Others)
	w.end("VEVENT")
}

func (w *formatWriter) todo(todo *VTodo) {
	w.begin("VTODO")
	writeReq(w, PropUID, todo.UID)
	writeReq(w, PropDtStamp, todo.DtStamp)
	writeOpt(w, PropDtStart, todo.DtStart)
	writeOpt(w, PropDue, todo.Due)
	writeOpt(w, PropDuration, todo.Duration)
	writeOpt(w, PropCompleted, todo.Completed)
	writeOpt(w, PropPercentComplete, todo.PercentComplete)
	writeOpt(w, PropSummary, todo.Summary)
	writeOpt(w, PropDescription, todo.Description)
	writeOpt(w, PropLocation, todo.Location)
	writeOpt(w, PropGeo, todo.Geo)
	writeOpt(w, PropClass, todo.Class)
	writeOpt(w, PropPriority, todo.Priority)
	writeOpt(w, PropSequence, todo.Sequence)
	if todo.Status != nil {
		w.enumLine(PropStatus, todo.StatusProp, todo.Status.String())
	}
	writeOpt(w, PropURL, todo.URL)
	writeOpt(w, PropOrganizer, todo.Organizer)
	writeOpt(w, PropRecurrenceID, todo.RecurrenceID)
	writeOpt(w, PropCreated, todo.Created)
	writeOpt(w, PropLastModified, todo.LastModified)
	writeAll(w, PropAttendee, todo.Attendees)
	writeAll(w, PropCategories, todo.Categories)
	writeAll(w, PropComment, todo.Comments)
	writeAll(w, PropContact, todo.Contacts)
	writeAll(w, PropResources, todo.Resources)
	writeAll(w, PropAttach, todo.Attachments)
	writeAll(w, PropRelatedTo, todo.RelatedTos)
	writeAll(w, PropRequestStatus, todo.RequestStatuses)
	writeOpt(w, PropRRule, todo.RRule)
	writeAll(w, PropRDate, todo.RDates)
	writeAll(w, PropExDate, todo.ExDates)
	w.extensions(todo.Extensions)
	for i := range todo.Alarms {
		w.alarm(&todo.Alarms[i])
	}
	w.rawComponents(todo.Others)
	w.end("VTODO")
}

func (w *formatWriter) journal(jr *VJournal) {
	w.begin("VJOURNAL")
	writeReq(w, PropUID, jr.UID)
	writeReq(w, PropDtStamp, jr.DtStamp)
	writeOpt(w, PropDtStart, jr.DtStart)
	writeOpt(w, PropSummary, jr.Summary)
	writeAll(w, PropDescription, jr.Descriptions)
	writeOpt(w, PropClass, jr.Class)
	writeOpt(w, PropSequence, jr.Sequence)
	if jr.Status != nil {
		w.enumLine(PropStatus, jr.StatusProp, jr.Status.String())
	}
	writeOpt(w, PropURL, jr.URL)
	writeOpt(w, PropOrganizer, jr.Organizer)
	writeOpt(w, PropRecurrenceID, jr.RecurrenceID)
	writeOpt(w, PropCreated, jr.Created)
	writeOpt(w, PropLastModified, jr.LastModified)
	writeAll(w, PropAttendee, jr.Attendees)
	writeAll(w, PropCategories, jr.Categories)
	writeAll(w, PropComment, jr.Comments)
	writeAll(w, PropContact, jr.Contacts)
	writeAll(w, PropAttach, jr.Attachments)
	writeAll(w, PropRelatedTo, jr.RelatedTos)
	writeAll(w, PropRequestStatus, jr.RequestStatuses)
	writeOpt(w, PropRRule, jr.RRule)
	writeAll(w, PropRDate, jr.RDates)
	writeAll(w, PropExDate, jr.ExDates)
	w.extensions(jr.Extensions)
	w.rawComponents(jr.Others)
	w.end("VJOURNAL")
}

func (w *formatWriter) freebusy(fb *VFreeBusy) {
	w.begin("VFREEBUSY")
	writeReq(w, PropUID, fb.UID)
	writeReq(w, PropDtStamp, fb.DtStamp)
	writeOpt(w, PropDtStart, fb.DtStart)
	writeOpt(w, PropDtEnd, fb.DtEnd)
	writeOpt(w, PropContact, fb.Contact)
	writeOpt(w, PropOrganizer, fb.Organizer)
	writeOpt(w, PropURL, fb.URL)
	writeAll(w, PropAttendee, fb.Attendees)
	writeAll(w, PropComment, fb.Comments)
	writeAll(w, PropFreeBusy, fb.FreeBusys)
	writeAll(w, PropRequestStatus, fb.RequestStatuses)
	w.extensions(fb.Extensions)
	w.rawComponents(fb.Others)
	w.end("VFREEBUSY")
}

func (w *formatWriter) timezone(tz *VTimeZone) {
	w.begin("VTIMEZONE")
	writeReq(w, PropTzID, tz.ID)
	writeOpt(w, PropLastModified, tz.LastModified)
	writeOpt(w, PropTzURL, tz.URL)
	w.extensions(tz.Extensions)
	for i := range tz.Standards {
		w.observance("STANDARD", &tz.Standards[i])
	}
	for i := range tz.Daylights {
		w.observance("DAYLIGHT", &tz.Daylights[i])
	}
	w.rawComponents(tz.Others)
	w.end("VTIMEZONE")
}

func (w *formatWriter) observance(name string, obs *TzObservance) {
	w.begin(name)
	writeReq(w, PropDtStart, obs.DtStart)
	writeReq(w, PropTzOffsetFrom, obs.OffsetFrom)
	writeReq(w, PropTzOffsetTo, obs.OffsetTo)
	writeOpt(w, PropRRule, obs.RRule)
	writeAll(w, PropRDate, obs.RDates)
	writeAll(w, PropComment, obs.Comments)
	writeAll(w, PropTzName, obs.Names)
	w.extensions(obs.Extensions)
	w.rawComponents(obs.Others)
	w.end(name)
}

func (w *formatWriter) alarm(alarm *VAlarm) {
	w.begin("VALARM")
	text := alarm.Action.String()
	if alarm.Action == ActionOther {
		text = alarm.ActionName
	}
	w.enumLine(PropAction, alarm.ActionProp, text)
	writeReq(w, PropTrigger, alarm.Trigger)
	writeOpt(w, PropDuration, alarm.Duration)
	writeOpt(w, PropRepeat, alarm.Repeat)
	writeOpt(w, PropDescription, alarm.Description)
	writeOpt(w, PropSummary, alarm.Summary)
	writeAll(w, PropAttendee, alarm.Attendees)
	writeAll(w, PropAttach, alarm.Attachments)
	w.extensions(alarm.Extensions)
	w.rawComponents(alarm.Others)
	w.end("VALARM")
}

func (w *formatWriter) rawComponent(c *RawComponent) {
	w.begin(c.Name)
	for _, p := range c.Properties {
		var b strings.Builder
		if p.Group != "" {
			b.WriteString(p.Group)
			b.WriteByte('.')
		}
		b.WriteString(p.Name)
		for _, param := range p.Parameters {
			b.WriteByte(';')
			b.WriteString(formatRawParameter(param))
		}
		b.WriteByte(':')
		b.WriteString(p.Value.String())
		w.line(b.String())
	}
	for _, child := range c.Children {
		w.rawComponent(child)
	}
	w.end(c.Name)
}

// formatValue serializes one value per its type.
func formatValue(v Value) string {
	switch v.Type {
	case ValueBinary:
		return base64.StdEncoding.EncodeToString(v.Binary)
	case ValueBoolean:
		if v.Boolean {
			return "TRUE"
		}
		return "FALSE"
	case ValueCalAddress:
		return v.CalAddress
	case ValueDate:
		return v.Date.String()
	case ValueDateTime:
		return v.DateTime.String()
	case ValueDuration:
		return v.Duration.String()
	case ValueFloat:
		return v.Float.String()
	case ValueInteger:
		return strconv.FormatInt(v.Integer, 10)
	case ValuePeriod:
		return v.Period.String()
	case ValueRecur:
		if v.Recur == nil {
			return ""
		}
		return v.Recur.String()
	case ValueText:
		return EscapeText(v.Text)
	case ValueTime:
		return v.Time.String()
	case ValueURI:
		return v.URI
	case ValueUTCOffset:
		return v.UTCOffset.String()
	}
	return ""
}

// paramNeedsQuoting reports whether a parameter value must use the
// quoted form.
func paramNeedsQuoting(s string) bool {
	return strings.ContainsAny(s, ":;,")
}

func formatParamValue(s string, forceQuote bool) string {
	if forceQuote || paramNeedsQuoting(s) {
		return `"` + s + `"`
	}
	return s
}

func formatQuotedList(name string, vals []string) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('=')
	for i, v := range vals {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(formatParamValue(v, true))
	}
	return b.String()
}

// formatParameter serializes one typed parameter. URI-valued
// parameters always take the quoted form per RFC 5545.
func formatParameter(p Parameter) string {
	switch p := p.(type) {
	case AltRep:
		return `ALTREP="` + p.URI + `"`
	case CommonName:
		return "CN=" + formatParamValue(p.Name, false)
	case CUType:
		return "CUTYPE=" + p.Type.String()
	case DelegatedFrom:
		return formatQuotedList("DELEGATED-FROM", p.Addresses)
	case DelegatedTo:
		return formatQuotedList("DELEGATED-TO", p.Addresses)
	case Dir:
		return `DIR="` + p.URI + `"`
	case EncodingParam:
		return "ENCODING=" + p.Encoding.String()
	case FmtType:
		return "FMTTYPE=" + p.MediaType
	case FBType:
		return "FBTYPE=" + p.Type.String()
	case Language:
		return "LANGUAGE=" + p.Tag
	case Member:
		return formatQuotedList("MEMBER", p.Addresses)
	case PartStat:
		return "PARTSTAT=" + p.Status.String()
	case RangeParam:
		return "RANGE=THISANDFUTURE"
	case Related:
		return "RELATED=" + p.Relation.String()
	case RelType:
		return "RELTYPE=" + p.Type.String()
	case Role:
		return "ROLE=" + p.Role.String()
	case RSVP:
		if p.Expected {
			return "RSVP=TRUE"
		}
		return "RSVP=FALSE"
	case SentBy:
		return `SENT-BY="` + p.Address + `"`
	case TzIDParam:
		return "TZID=" + formatParamValue(p.ID, false)
	case ValueParam:
		return "VALUE=" + p.Type.String()
	case OtherParam:
		return formatRawParameter(RawParameter{Name: p.Name, Values: p.Values})
	}
	return ""
}

// formatRawParameter re-emits a scanned parameter with its original
// quoting.
func formatRawParameter(p RawParameter) string {
	var b strings.Builder
	b.WriteString(p.Name)
	b.WriteByte('=')
	for i, v := range p.Values {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(formatParamValue(v.Value, v.Quoted))
	}
	return b.String()
}
