// Package draft builds well-formed calendar objects from the loose
// field input the CLI collects. Every draft is rendered to wire form
// and pushed back through the parser, so anything that leaves this
// package already passed the same checks imported data does.
package draft

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/yzx9/aim/pkg/ical"
	"github.com/yzx9/aim/pkg/terrors"
)

const prodID = "-//aim//aim//EN"

const (
	dateLayout     = "20060102"
	dateTimeLayout = "20060102T150405Z"
)

// Draft is a validated single-entity calendar ready to write to disk
// or PUT to a server.
type Draft struct {
	UID      string
	Calendar *ical.ICalendar
	ICS      []byte
}

// Event collects the fields of a new VEVENT. UID and Now exist for
// tests; left zero they default to a random UUID and the wall clock.
type Event struct {
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	AllDay      bool

	UID string
	Now time.Time
}

// Todo collects the fields of a new VTODO. A zero Due means no due
// date; Priority 0 means unset.
type Todo struct {
	Summary     string
	Description string
	Due         time.Time
	Priority    int

	UID string
	Now time.Time
}

// Build renders the event and re-parses it.
func (e Event) Build() (*Draft, error) {
	if strings.TrimSpace(e.Summary) == "" {
		return nil, fmt.Errorf("%w: summary", terrors.ErrEmptyText)
	}
	if e.Start.IsZero() {
		return nil, fmt.Errorf("event needs a start time")
	}
	uid, now := fill(e.UID, e.Now)

	b := newBuilder("VEVENT", uid, now)
	if e.AllDay {
		b.line("DTSTART;VALUE=DATE:" + e.Start.Format(dateLayout))
		if !e.End.IsZero() {
			b.line("DTEND;VALUE=DATE:" + e.End.Format(dateLayout))
		}
	} else {
		b.line("DTSTART:" + e.Start.UTC().Format(dateTimeLayout))
		if !e.End.IsZero() {
			b.line("DTEND:" + e.End.UTC().Format(dateTimeLayout))
		}
	}
	b.text("SUMMARY", e.Summary)
	b.text("DESCRIPTION", e.Description)
	b.text("LOCATION", e.Location)
	return b.finish()
}

// Build renders the todo and re-parses it.
func (t Todo) Build() (*Draft, error) {
	if strings.TrimSpace(t.Summary) == "" {
		return nil, fmt.Errorf("%w: summary", terrors.ErrEmptyText)
	}
	if t.Priority < 0 || t.Priority > 9 {
		return nil, fmt.Errorf("priority must be between 0 and 9, got %d", t.Priority)
	}
	uid, now := fill(t.UID, t.Now)

	b := newBuilder("VTODO", uid, now)
	if !t.Due.IsZero() {
		b.line("DUE:" + t.Due.UTC().Format(dateTimeLayout))
	}
	b.text("SUMMARY", t.Summary)
	b.text("DESCRIPTION", t.Description)
	if t.Priority > 0 {
		b.line("PRIORITY:" + strconv.Itoa(t.Priority))
	}
	b.line("STATUS:NEEDS-ACTION")
	return b.finish()
}

func fill(uid string, now time.Time) (string, time.Time) {
	if uid == "" {
		uid = uuid.New().String()
	}
	if now.IsZero() {
		now = time.Now()
	}
	return uid, now
}

// builder accumulates the content lines of a one-component calendar.
type builder struct {
	comp  string
	uid   string
	lines []string
}

func newBuilder(comp, uid string, now time.Time) *builder {
	return &builder{
		comp: comp,
		uid:  uid,
		lines: []string{
			"BEGIN:VCALENDAR",
			"PRODID:" + prodID,
			"VERSION:2.0",
			"BEGIN:" + comp,
			"UID:" + uid,
			"DTSTAMP:" + now.UTC().Format(dateTimeLayout),
		},
	}
}

func (b *builder) line(l string) {
	b.lines = append(b.lines, l)
}

// text appends a TEXT property, NFC-normalized and escaped. Empty
// values are dropped rather than written as blank properties.
func (b *builder) text(name, val string) {
	if val == "" {
		return
	}
	val = norm.NFC.String(val)
	b.lines = append(b.lines, name+":"+ical.EscapeText(val))
}

func (b *builder) finish() (*Draft, error) {
	b.lines = append(b.lines, "END:"+b.comp, "END:VCALENDAR")
	src := strings.Join(b.lines, "\r\n") + "\r\n"

	cals, errs := ical.ParseStrict(src)
	if len(errs) > 0 {
		return nil, fmt.Errorf("draft did not validate: %w", errs[0])
	}
	cal := cals[0]
	return &Draft{
		UID:      b.uid,
		Calendar: cal,
		ICS:      ical.Format(cal, ical.FormatOptions{}),
	}, nil
}
