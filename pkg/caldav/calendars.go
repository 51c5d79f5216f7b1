package caldav

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/antchfx/xmlquery"
)

// Calendar is one calendar collection on the server.
type Calendar struct {
	Href        string
	DisplayName string
	Description string
	CTag        string
	Components  []string
}

// SupportsComponent reports whether the collection accepts the given
// component name. A collection that advertises no set accepts any.
func (c *Calendar) SupportsComponent(name string) bool {
	if len(c.Components) == 0 {
		return true
	}
	for _, comp := range c.Components {
		if comp == name {
			return true
		}
	}
	return false
}

// Object is one calendar resource: a href, its version tag, and the
// raw iCalendar payload.
type Object struct {
	Href string
	ETag string
	Data string
}

// CurrentUserPrincipal resolves the principal URL for the
// authenticated user, the first hop of RFC 4791 discovery.
func (c *Client) CurrentUserPrincipal(ctx context.Context) (string, error) {
	body, err := c.propfind(ctx, "/", "0", buildPropfindXML("current-user-principal"))
	if err != nil {
		return "", err
	}
	href, err := firstHref(body, "current-user-principal")
	if err != nil {
		return "", fmt.Errorf("discover principal: %w", err)
	}
	return href, nil
}

// CalendarHome resolves the calendar home collection of a principal.
func (c *Client) CalendarHome(ctx context.Context, principal string) (string, error) {
	body, err := c.propfind(ctx, principal, "0", buildPropfindXML("calendar-home-set"))
	if err != nil {
		return "", err
	}
	href, err := firstHref(body, "calendar-home-set")
	if err != nil {
		return "", fmt.Errorf("discover calendar home: %w", err)
	}
	return href, nil
}

func firstHref(body []byte, prop string) (string, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	n, err := xmlquery.Query(doc,
		fmt.Sprintf("//*[local-name()='%s']/*[local-name()='href']", prop))
	if err != nil {
		return "", err
	}
	if n == nil {
		return "", fmt.Errorf("server did not return %s", prop)
	}
	return n.InnerText(), nil
}

// ListCalendars enumerates the calendar collections under a home set.
// Plain (non-calendar) collections in the multistatus are skipped.
func (c *Client) ListCalendars(ctx context.Context, home string) ([]Calendar, error) {
	body, err := c.propfind(ctx, home, "1", buildPropfindXML(
		"displayname", "resourcetype", "getctag",
		"calendar-description", "supported-calendar-component-set"))
	if err != nil {
		return nil, err
	}

	responses, err := parseMultistatus(body)
	if err != nil {
		return nil, err
	}

	var cals []Calendar
	for _, resp := range responses {
		rt, _ := xmlquery.Query(resp, ".//*[local-name()='resourcetype']/*[local-name()='calendar']")
		if rt == nil {
			continue
		}
		cal := Calendar{
			Href:        responseHref(resp),
			DisplayName: responseText(resp, ".//*[local-name()='displayname']"),
			Description: responseText(resp, ".//*[local-name()='calendar-description']"),
			CTag:        responseText(resp, ".//*[local-name()='getctag']"),
		}
		comps, _ := xmlquery.QueryAll(resp, ".//*[local-name()='comp']")
		for _, comp := range comps {
			if name := comp.SelectAttr("name"); name != "" {
				cal.Components = append(cal.Components, name)
			}
		}
		cals = append(cals, cal)
	}
	c.logger.Debugf("found %d calendars under %s", len(cals), home)
	return cals, nil
}

// QueryObjects runs a calendar-query REPORT against one collection.
// component narrows to VEVENT or VTODO ("" fetches everything), and a
// non-nil start/end add a time-range filter.
func (c *Client) QueryObjects(ctx context.Context, calHref, component string, start, end *time.Time) ([]Object, error) {
	body, err := c.report(ctx, calHref, buildCalendarQueryXML(component, start, end))
	if err != nil {
		return nil, err
	}
	return objectsFromMultistatus(body)
}

// MultigetObjects fetches specific resources by href in one REPORT.
func (c *Client) MultigetObjects(ctx context.Context, calHref string, hrefs []string) ([]Object, error) {
	if len(hrefs) == 0 {
		return nil, nil
	}
	body, err := c.report(ctx, calHref, buildMultigetXML(hrefs))
	if err != nil {
		return nil, err
	}
	return objectsFromMultistatus(body)
}

func objectsFromMultistatus(body []byte) ([]Object, error) {
	responses, err := parseMultistatus(body)
	if err != nil {
		return nil, err
	}
	var objs []Object
	for _, resp := range responses {
		obj := Object{
			Href: responseHref(resp),
			ETag: responseText(resp, ".//*[local-name()='getetag']"),
			Data: responseText(resp, ".//*[local-name()='calendar-data']"),
		}
		if obj.Href == "" && obj.Data == "" {
			continue
		}
		objs = append(objs, obj)
	}
	return objs, nil
}
