// Package agenda flattens parsed calendars into a time-ordered list of
// occurrences for display. Recurring events are expanded here, at the
// presentation edge, so the parsing layer stays a faithful record of
// what the file said.
package agenda

import (
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/yzx9/aim/pkg/ical"
)

// DefaultMaxPerEvent caps how many occurrences one recurring event may
// contribute, as a guard against FREQ=SECONDLY style rules.
const DefaultMaxPerEvent = 100

// Occurrence is one concrete instance of an event inside the window.
type Occurrence struct {
	UID     string
	Summary string
	Start   time.Time
	End     time.Time
	AllDay  bool
}

// Options bound the expansion window. Zero MaxPerEvent means
// DefaultMaxPerEvent.
type Options struct {
	From        time.Time
	To          time.Time
	MaxPerEvent int
}

// Expand walks every event of every calendar and returns the
// occurrences falling inside [From, To), soonest first. Events whose
// RRULE cannot be fed to the expander are reported once as a plain
// occurrence at their DTSTART.
func Expand(cals []*ical.ICalendar, opts Options) []Occurrence {
	maxPer := opts.MaxPerEvent
	if maxPer <= 0 {
		maxPer = DefaultMaxPerEvent
	}

	var out []Occurrence
	for _, cal := range cals {
		for i := range cal.Events {
			out = append(out, expandEvent(&cal.Events[i], opts.From, opts.To, maxPer)...)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].UID < out[j].UID
	})
	return out
}

func expandEvent(ev *ical.VEvent, from, to time.Time, maxPer int) []Occurrence {
	if ev.DtStart == nil {
		return nil
	}
	start, allDay := startOf(ev.DtStart.Value())
	dur := durationOf(ev, start, allDay)

	base := Occurrence{
		UID:    uidOf(ev),
		Start:  start,
		End:    start.Add(dur),
		AllDay: allDay,
	}
	if ev.Summary != nil {
		base.Summary = ev.Summary.Value().Text
	}

	if ev.RRule == nil {
		if base.Start.Before(to) && !base.End.Before(from) {
			return []Occurrence{base}
		}
		return nil
	}

	r, err := rrule.StrToRRule(ev.RRule.Value().Recur.String())
	if err != nil {
		// The rule parsed upstream but the expander rejects it;
		// degrade to the first instance.
		if base.Start.Before(to) && !base.End.Before(from) {
			return []Occurrence{base}
		}
		return nil
	}
	r.DTStart(start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		for _, v := range ex.Values {
			if t, ok := instantOf(v, start); ok {
				set.ExDate(t.In(start.Location()))
			}
		}
	}
	for _, rd := range ev.RDates {
		for _, v := range rd.Values {
			if t, ok := instantOf(v, start); ok {
				set.RDate(t.In(start.Location()))
			}
		}
	}

	times := set.Between(from.In(start.Location()), to.In(start.Location()), true)
	if len(times) > maxPer {
		times = times[:maxPer]
	}

	occs := make([]Occurrence, 0, len(times))
	for _, t := range times {
		// Between is inclusive on both ends; keep the window half-open.
		if !t.Before(to) {
			continue
		}
		occ := base
		occ.Start = t
		occ.End = t.Add(dur)
		occs = append(occs, occ)
	}
	return occs
}

func uidOf(ev *ical.VEvent) string {
	return ev.UID.Value().Text
}

func startOf(v ical.Value) (time.Time, bool) {
	if v.Type == ical.ValueDate {
		return v.Date.GoTime(time.Local), true
	}
	return v.DateTime.GoTime(time.Local), false
}

// instantOf resolves an EXDATE/RDATE value; RDATE periods contribute
// their start.
func instantOf(v ical.Value, ref time.Time) (time.Time, bool) {
	switch v.Type {
	case ical.ValueDate:
		return v.Date.GoTime(ref.Location()), true
	case ical.ValueDateTime:
		return v.DateTime.GoTime(ref.Location()), true
	case ical.ValuePeriod:
		return v.Period.Start.GoTime(ref.Location()), true
	}
	return time.Time{}, false
}

func durationOf(ev *ical.VEvent, start time.Time, allDay bool) time.Duration {
	if ev.DtEnd != nil {
		end, _ := startOf(ev.DtEnd.Value())
		if d := end.Sub(start); d > 0 {
			return d
		}
	}
	if ev.Duration != nil {
		if d := ev.Duration.Value().Duration.GoDuration(); d > 0 {
			return d
		}
	}
	if allDay {
		return 24 * time.Hour
	}
	return 0
}
