package caldav

import (
	"bytes"
	"fmt"
	"time"

	"github.com/antchfx/xmlquery"
)

const reportTimeLayout = "20060102T150405Z"

// Request bodies are assembled by hand: the CalDAV vocabulary is tiny
// and fixed, and encoding/xml cannot emit the namespace-prefixed shape
// some servers insist on.

func buildPropfindXML(props ...string) []byte {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="utf-8"?>`)
	buf.WriteString(`<D:propfind xmlns:D="DAV:" xmlns:C="urn:ietf:params:xml:ns:caldav" xmlns:CS="http://calendarserver.org/ns/">`)
	buf.WriteString(`<D:prop>`)
	for _, p := range props {
		switch p {
		case "current-user-principal":
			buf.WriteString(`<D:current-user-principal/>`)
		case "calendar-home-set":
			buf.WriteString(`<C:calendar-home-set/>`)
		case "displayname":
			buf.WriteString(`<D:displayname/>`)
		case "resourcetype":
			buf.WriteString(`<D:resourcetype/>`)
		case "calendar-description":
			buf.WriteString(`<C:calendar-description/>`)
		case "supported-calendar-component-set":
			buf.WriteString(`<C:supported-calendar-component-set/>`)
		case "getctag":
			buf.WriteString(`<CS:getctag/>`)
		case "getetag":
			buf.WriteString(`<D:getetag/>`)
		}
	}
	buf.WriteString(`</D:prop>`)
	buf.WriteString(`</D:propfind>`)
	return buf.Bytes()
}

// buildCalendarQueryXML filters on one component name (VEVENT, VTODO)
// and an optional half-open time range.
func buildCalendarQueryXML(component string, start, end *time.Time) []byte {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="utf-8"?>`)
	buf.WriteString(`<C:calendar-query xmlns:D="DAV:" xmlns:C="urn:ietf:params:xml:ns:caldav">`)
	buf.WriteString(`<D:prop><D:getetag/><C:calendar-data/></D:prop>`)
	buf.WriteString(`<C:filter><C:comp-filter name="VCALENDAR">`)
	if component != "" {
		buf.WriteString(fmt.Sprintf(`<C:comp-filter name="%s">`, component))
		if start != nil || end != nil {
			buf.WriteString(`<C:time-range`)
			if start != nil {
				buf.WriteString(fmt.Sprintf(` start="%s"`, start.UTC().Format(reportTimeLayout)))
			}
			if end != nil {
				buf.WriteString(fmt.Sprintf(` end="%s"`, end.UTC().Format(reportTimeLayout)))
			}
			buf.WriteString(`/>`)
		}
		buf.WriteString(`</C:comp-filter>`)
	}
	buf.WriteString(`</C:comp-filter></C:filter>`)
	buf.WriteString(`</C:calendar-query>`)
	return buf.Bytes()
}

func buildMultigetXML(hrefs []string) []byte {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="utf-8"?>`)
	buf.WriteString(`<C:calendar-multiget xmlns:D="DAV:" xmlns:C="urn:ietf:params:xml:ns:caldav">`)
	buf.WriteString(`<D:prop><D:getetag/><C:calendar-data/></D:prop>`)
	for _, h := range hrefs {
		buf.WriteString(`<D:href>`)
		xmlEscapeTo(&buf, h)
		buf.WriteString(`</D:href>`)
	}
	buf.WriteString(`</C:calendar-multiget>`)
	return buf.Bytes()
}

func xmlEscapeTo(buf *bytes.Buffer, s string) {
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		default:
			buf.WriteRune(r)
		}
	}
}

// Multistatus bodies are queried by local element name so the parser
// does not care which prefix a server binds DAV: to.

func parseMultistatus(data []byte) ([]*xmlquery.Node, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse multistatus: %w", err)
	}
	return xmlquery.QueryAll(doc, "//*[local-name()='response']")
}

// responseText returns the text of the first node matching expr under
// a response element, or "".
func responseText(resp *xmlquery.Node, expr string) string {
	n, err := xmlquery.Query(resp, expr)
	if err != nil || n == nil {
		return ""
	}
	return n.InnerText()
}

func responseHref(resp *xmlquery.Node) string {
	return responseText(resp, "*[local-name()='href']")
}
