package caldav

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listCalendarsBody = `<?xml version="1.0" encoding="utf-8"?>
<d:multistatus xmlns:d="DAV:" xmlns:cal="urn:ietf:params:xml:ns:caldav" xmlns:cs="http://calendarserver.org/ns/">
  <d:response>
    <d:href>/calendars/alice/</d:href>
    <d:propstat>
      <d:prop><d:resourcetype><d:collection/></d:resourcetype></d:prop>
      <d:status>HTTP/1.1 200 OK</d:status>
    </d:propstat>
  </d:response>
  <d:response>
    <d:href>/calendars/alice/work/</d:href>
    <d:propstat>
      <d:prop>
        <d:displayname>Work</d:displayname>
        <d:resourcetype><d:collection/><cal:calendar/></d:resourcetype>
        <cs:getctag>ctag-42</cs:getctag>
        <cal:calendar-description>Meetings and such</cal:calendar-description>
        <cal:supported-calendar-component-set>
          <cal:comp name="VEVENT"/>
          <cal:comp name="VTODO"/>
        </cal:supported-calendar-component-set>
      </d:prop>
      <d:status>HTTP/1.1 200 OK</d:status>
    </d:propstat>
  </d:response>
</d:multistatus>`

const queryBody = `<?xml version="1.0" encoding="utf-8"?>
<D:multistatus xmlns:D="DAV:" xmlns:C="urn:ietf:params:xml:ns:caldav">
  <D:response>
    <D:href>/calendars/alice/work/1.ics</D:href>
    <D:propstat>
      <D:prop>
        <D:getetag>"etag-1"</D:getetag>
        <C:calendar-data>BEGIN:VCALENDAR
VERSION:2.0
END:VCALENDAR
</C:calendar-data>
      </D:prop>
      <D:status>HTTP/1.1 200 OK</D:status>
    </D:propstat>
  </D:response>
  <D:response>
    <D:href>/calendars/alice/work/2.ics</D:href>
    <D:propstat>
      <D:prop><D:getetag>"etag-2"</D:getetag></D:prop>
      <D:status>HTTP/1.1 200 OK</D:status>
    </D:propstat>
  </D:response>
</D:multistatus>`

// recordedRequest captures what the handler saw for later assertions.
type recordedRequest struct {
	method string
	path   string
	depth  string
	header http.Header
	body   string
}

func newTestClient(t *testing.T, status int, respBody string, etag string) (*Client, *recordedRequest) {
	t.Helper()
	rec := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.depth = r.Header.Get("Depth")
		rec.header = r.Header.Clone()
		rec.body = string(b)
		if etag != "" {
			w.Header().Set("ETag", etag)
		}
		w.WriteHeader(status)
		io.WriteString(w, respBody)
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "alice", "secret"), rec
}

func TestDiscovery(t *testing.T) {
	assert := assert.New(t)

	t.Run("principal", func(t *testing.T) {
		body := `<?xml version="1.0"?>
<d:multistatus xmlns:d="DAV:">
  <d:response>
    <d:href>/</d:href>
    <d:propstat>
      <d:prop>
        <d:current-user-principal><d:href>/principals/alice/</d:href></d:current-user-principal>
      </d:prop>
    </d:propstat>
  </d:response>
</d:multistatus>`
		c, rec := newTestClient(t, http.StatusMultiStatus, body, "")
		href, err := c.CurrentUserPrincipal(context.Background())
		assert.NoError(err)
		assert.Equal("/principals/alice/", href)
		assert.Equal("PROPFIND", rec.method)
		assert.Equal("0", rec.depth)
		assert.Contains(rec.body, "current-user-principal")
		assert.Contains(rec.header.Get("Authorization"), "Basic ")
	})

	t.Run("calendar home", func(t *testing.T) {
		body := `<?xml version="1.0"?>
<d:multistatus xmlns:d="DAV:" xmlns:c="urn:ietf:params:xml:ns:caldav">
  <d:response>
    <d:href>/principals/alice/</d:href>
    <d:propstat>
      <d:prop>
        <c:calendar-home-set><d:href>/calendars/alice/</d:href></c:calendar-home-set>
      </d:prop>
    </d:propstat>
  </d:response>
</d:multistatus>`
		c, rec := newTestClient(t, http.StatusMultiStatus, body, "")
		href, err := c.CalendarHome(context.Background(), "/principals/alice/")
		assert.NoError(err)
		assert.Equal("/calendars/alice/", href)
		assert.Equal("/principals/alice/", rec.path)
	})

	t.Run("missing property", func(t *testing.T) {
		c, _ := newTestClient(t, http.StatusMultiStatus,
			`<d:multistatus xmlns:d="DAV:"/>`, "")
		_, err := c.CurrentUserPrincipal(context.Background())
		assert.ErrorContains(err, "current-user-principal")
	})
}

func TestListCalendars(t *testing.T) {
	assert := assert.New(t)
	c, rec := newTestClient(t, http.StatusMultiStatus, listCalendarsBody, "")

	cals, err := c.ListCalendars(context.Background(), "/calendars/alice/")
	require.NoError(t, err)
	assert.Equal("1", rec.depth)

	// The home collection itself lacks the calendar resourcetype.
	require.Len(t, cals, 1)
	cal := cals[0]
	assert.Equal("/calendars/alice/work/", cal.Href)
	assert.Equal("Work", cal.DisplayName)
	assert.Equal("Meetings and such", cal.Description)
	assert.Equal("ctag-42", cal.CTag)
	assert.Equal([]string{"VEVENT", "VTODO"}, cal.Components)
	assert.True(cal.SupportsComponent("VTODO"))
	assert.False(cal.SupportsComponent("VJOURNAL"))
}

func TestQueryObjects(t *testing.T) {
	assert := assert.New(t)
	c, rec := newTestClient(t, http.StatusMultiStatus, queryBody, "")

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)
	objs, err := c.QueryObjects(context.Background(), "/calendars/alice/work/", "VEVENT", &start, &end)
	require.NoError(t, err)

	assert.Equal("REPORT", rec.method)
	assert.Contains(rec.body, `comp-filter name="VEVENT"`)
	assert.Contains(rec.body, `start="20260901T000000Z"`)
	assert.Contains(rec.body, `end="20260908T000000Z"`)

	require.Len(t, objs, 2)
	assert.Equal("/calendars/alice/work/1.ics", objs[0].Href)
	assert.Equal(`"etag-1"`, objs[0].ETag)
	assert.Contains(objs[0].Data, "BEGIN:VCALENDAR")
	assert.Equal(`"etag-2"`, objs[1].ETag)
	assert.Empty(objs[1].Data)
}

func TestMultigetObjects(t *testing.T) {
	assert := assert.New(t)
	c, rec := newTestClient(t, http.StatusMultiStatus, queryBody, "")

	objs, err := c.MultigetObjects(context.Background(), "/calendars/alice/work/",
		[]string{"/calendars/alice/work/1.ics", "/calendars/alice/work/2.ics"})
	assert.NoError(err)
	assert.Len(objs, 2)
	assert.Contains(rec.body, "calendar-multiget")
	assert.Contains(rec.body, "<D:href>/calendars/alice/work/1.ics</D:href>")

	// No hrefs, no request.
	objs, err = c.MultigetObjects(context.Background(), "/calendars/alice/work/", nil)
	assert.NoError(err)
	assert.Nil(objs)
}

func TestPutObject(t *testing.T) {
	assert := assert.New(t)

	t.Run("create", func(t *testing.T) {
		c, rec := newTestClient(t, http.StatusCreated, "", `"new-etag"`)
		etag, err := c.PutObject(context.Background(), "/cal/x.ics", []byte("BEGIN:VCALENDAR"), "")
		assert.NoError(err)
		assert.Equal(`"new-etag"`, etag)
		assert.Equal("PUT", rec.method)
		assert.Equal("*", rec.header.Get("If-None-Match"))
		assert.Empty(rec.header.Get("If-Match"))
		assert.Contains(rec.header.Get("Content-Type"), "text/calendar")
	})

	t.Run("update guarded by etag", func(t *testing.T) {
		c, rec := newTestClient(t, http.StatusNoContent, "", "")
		_, err := c.PutObject(context.Background(), "/cal/x.ics", []byte("data"), `"old"`)
		assert.NoError(err)
		assert.Equal(`"old"`, rec.header.Get("If-Match"))
		assert.Empty(rec.header.Get("If-None-Match"))
	})

	t.Run("precondition failed", func(t *testing.T) {
		c, _ := newTestClient(t, http.StatusPreconditionFailed, "", "")
		_, err := c.PutObject(context.Background(), "/cal/x.ics", []byte("data"), `"stale"`)
		assert.ErrorContains(err, "remote changed")
	})
}

func TestDeleteObject(t *testing.T) {
	assert := assert.New(t)

	t.Run("deletes with etag guard", func(t *testing.T) {
		c, rec := newTestClient(t, http.StatusNoContent, "", "")
		assert.NoError(c.DeleteObject(context.Background(), "/cal/x.ics", `"e1"`))
		assert.Equal("DELETE", rec.method)
		assert.Equal(`"e1"`, rec.header.Get("If-Match"))
	})

	t.Run("already gone is fine", func(t *testing.T) {
		c, _ := newTestClient(t, http.StatusNotFound, "", "")
		assert.NoError(c.DeleteObject(context.Background(), "/cal/x.ics", ""))
	})

	t.Run("precondition failed", func(t *testing.T) {
		c, _ := newTestClient(t, http.StatusPreconditionFailed, "", "")
		assert.ErrorContains(c.DeleteObject(context.Background(), "/cal/x.ics", `"e1"`), "remote changed")
	})
}
