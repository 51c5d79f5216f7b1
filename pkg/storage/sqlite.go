// Package storage caches parsed calendar entities in a local sqlite
// database so listing commands do not have to re-read ICS files or hit
// the CalDAV server. It stores whatever the parser produced and never
// re-checks cardinality or semantics.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yzx9/aim/pkg/ical"

	_ "github.com/mattn/go-sqlite3"
)

// Item kinds as stored in the kind column.
const (
	KindEvent = "event"
	KindTodo  = "todo"
)

// Item is one cached VEVENT or VTODO, flattened to the fields the CLI
// displays. End holds DTEND for events and DUE for todos.
type Item struct {
	UID         string
	Kind        string
	Summary     string
	Description string
	Status      string
	Start       *time.Time
	End         *time.Time
	AllDay      bool
	Priority    int64
	Percent     int64
	Href        string
	ETag        string
}

type Storage struct {
	db *sql.DB
}

func New(dbPath string) (*Storage, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	s := &Storage{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS items (
			uid TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			summary TEXT DEFAULT '',
			description TEXT DEFAULT '',
			status TEXT DEFAULT '',
			dtstart TEXT,
			dtend TEXT,
			all_day INTEGER DEFAULT 0,
			priority INTEGER DEFAULT 0,
			percent_complete INTEGER DEFAULT 0,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_items_kind ON items(kind)`,
		`CREATE INDEX IF NOT EXISTS idx_items_dtstart ON items(dtstart)`,
		// CalDAV bookkeeping
		`ALTER TABLE items ADD COLUMN href TEXT DEFAULT ''`,
		`ALTER TABLE items ADD COLUMN etag TEXT DEFAULT ''`,
		`CREATE INDEX IF NOT EXISTS idx_items_href ON items(href)`,
		`CREATE TABLE IF NOT EXISTS collections (
			href TEXT PRIMARY KEY,
			ctag TEXT DEFAULT '',
			synced_at DATETIME
		)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			// Ignore "duplicate column" errors for ALTER TABLE
			if !strings.Contains(err.Error(), "duplicate column") {
				return fmt.Errorf("exec migration: %w", err)
			}
		}
	}
	return nil
}

// === Items ===

func (s *Storage) UpsertItem(it *Item) error {
	_, err := s.db.Exec(
		`INSERT INTO items (uid, kind, summary, description, status, dtstart, dtend,
			all_day, priority, percent_complete, href, etag, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(uid) DO UPDATE SET
			kind = excluded.kind,
			summary = excluded.summary,
			description = excluded.description,
			status = excluded.status,
			dtstart = excluded.dtstart,
			dtend = excluded.dtend,
			all_day = excluded.all_day,
			priority = excluded.priority,
			percent_complete = excluded.percent_complete,
			href = excluded.href,
			etag = excluded.etag,
			updated_at = CURRENT_TIMESTAMP`,
		it.UID, it.Kind, it.Summary, it.Description, it.Status,
		timeCol(it.Start), timeCol(it.End), it.AllDay, it.Priority, it.Percent,
		it.Href, it.ETag,
	)
	return err
}

func (s *Storage) GetItem(uid string) (*Item, error) {
	row := s.db.QueryRow(
		`SELECT uid, kind, summary, description, status, dtstart, dtend,
			all_day, priority, percent_complete, href, etag
		FROM items WHERE uid = ?`, uid)
	it, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return it, err
}

func (s *Storage) DeleteItem(uid string) error {
	_, err := s.db.Exec(`DELETE FROM items WHERE uid = ?`, uid)
	return err
}

// ListEvents returns cached events starting inside [from, to), soonest
// first. Events without a DTSTART are skipped.
func (s *Storage) ListEvents(from, to time.Time) ([]*Item, error) {
	rows, err := s.db.Query(
		`SELECT uid, kind, summary, description, status, dtstart, dtend,
			all_day, priority, percent_complete, href, etag
		FROM items
		WHERE kind = ? AND dtstart IS NOT NULL AND dtstart >= ? AND dtstart < ?
		ORDER BY dtstart`,
		KindEvent, from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectItems(rows)
}

// ListTodos returns cached todos, due-date order with undated last.
// Completed and cancelled todos are excluded unless includeDone is set.
func (s *Storage) ListTodos(includeDone bool) ([]*Item, error) {
	q := `SELECT uid, kind, summary, description, status, dtstart, dtend,
			all_day, priority, percent_complete, href, etag
		FROM items WHERE kind = ?`
	if !includeDone {
		q += ` AND status NOT IN ('COMPLETED', 'CANCELLED')`
	}
	q += ` ORDER BY dtend IS NULL, dtend, priority = 0, priority`
	rows, err := s.db.Query(q, KindTodo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectItems(rows)
}

// MarkDone flips a todo to COMPLETED at 100 percent.
func (s *Storage) MarkDone(uid string) error {
	res, err := s.db.Exec(
		`UPDATE items SET status = 'COMPLETED', percent_complete = 100,
			updated_at = CURRENT_TIMESTAMP
		WHERE uid = ? AND kind = ?`, uid, KindTodo)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no todo with uid %q", uid)
	}
	return nil
}

// UpsertCalendar caches every event and todo of a parsed calendar.
// href and etag tag the CalDAV resource the calendar came from; both
// may be empty for local imports.
func (s *Storage) UpsertCalendar(cal *ical.ICalendar, href, etag string) error {
	for i := range cal.Events {
		it := ItemFromEvent(&cal.Events[i])
		it.Href, it.ETag = href, etag
		if err := s.UpsertItem(it); err != nil {
			return fmt.Errorf("upsert event %s: %w", it.UID, err)
		}
	}
	for i := range cal.Todos {
		it := ItemFromTodo(&cal.Todos[i])
		it.Href, it.ETag = href, etag
		if err := s.UpsertItem(it); err != nil {
			return fmt.Errorf("upsert todo %s: %w", it.UID, err)
		}
	}
	return nil
}

// DeleteByHref drops every item cached from one CalDAV resource.
func (s *Storage) DeleteByHref(href string) error {
	_, err := s.db.Exec(`DELETE FROM items WHERE href = ?`, href)
	return err
}

// ETagByHref returns the cached etag for a resource, or "" when the
// resource is unknown.
func (s *Storage) ETagByHref(href string) (string, error) {
	var etag string
	err := s.db.QueryRow(`SELECT etag FROM items WHERE href = ? LIMIT 1`, href).Scan(&etag)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return etag, err
}

// === Collections ===

func (s *Storage) SetCollectionTag(href, ctag string) error {
	_, err := s.db.Exec(
		`INSERT INTO collections (href, ctag, synced_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(href) DO UPDATE SET ctag = excluded.ctag, synced_at = CURRENT_TIMESTAMP`,
		href, ctag,
	)
	return err
}

func (s *Storage) CollectionTag(href string) (string, error) {
	var ctag string
	err := s.db.QueryRow(`SELECT ctag FROM collections WHERE href = ?`, href).Scan(&ctag)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return ctag, err
}

// === Mapping ===

// ItemFromEvent flattens a parsed VEVENT. Date-only starts mark the
// item all-day; zoned times resolve in the process-local zone since
// TZID lookup is out of scope.
func ItemFromEvent(ev *ical.VEvent) *Item {
	it := &Item{
		UID:  ev.UID.Value().Text,
		Kind: KindEvent,
	}
	if ev.Summary != nil {
		it.Summary = ev.Summary.Value().Text
	}
	if ev.Description != nil {
		it.Description = ev.Description.Value().Text
	}
	if ev.Status != nil {
		it.Status = ev.Status.String()
	}
	if ev.Priority != nil {
		it.Priority = ev.Priority.Value().Integer
	}
	if ev.DtStart != nil {
		it.Start, it.AllDay = timeOf(ev.DtStart.Value())
	}
	if ev.DtEnd != nil {
		it.End, _ = timeOf(ev.DtEnd.Value())
	} else if ev.Duration != nil && it.Start != nil {
		end := it.Start.Add(ev.Duration.Value().Duration.GoDuration())
		it.End = &end
	}
	return it
}

// ItemFromTodo flattens a parsed VTODO; DUE lands in End.
func ItemFromTodo(td *ical.VTodo) *Item {
	it := &Item{
		UID:  td.UID.Value().Text,
		Kind: KindTodo,
	}
	if td.Summary != nil {
		it.Summary = td.Summary.Value().Text
	}
	if td.Description != nil {
		it.Description = td.Description.Value().Text
	}
	if td.Status != nil {
		it.Status = td.Status.String()
	}
	if td.Priority != nil {
		it.Priority = td.Priority.Value().Integer
	}
	if td.PercentComplete != nil {
		it.Percent = td.PercentComplete.Value().Integer
	}
	if td.DtStart != nil {
		it.Start, it.AllDay = timeOf(td.DtStart.Value())
	}
	if td.Due != nil {
		it.End, _ = timeOf(td.Due.Value())
	}
	return it
}

func timeOf(v ical.Value) (*time.Time, bool) {
	switch v.Type {
	case ical.ValueDate:
		t := v.Date.GoTime(time.Local)
		return &t, true
	case ical.ValueDateTime:
		t := v.DateTime.GoTime(time.Local)
		return &t, false
	}
	return nil, false
}

func timeCol(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*Item, error) {
	it := &Item{}
	var start, end sql.NullString
	err := row.Scan(&it.UID, &it.Kind, &it.Summary, &it.Description, &it.Status,
		&start, &end, &it.AllDay, &it.Priority, &it.Percent, &it.Href, &it.ETag)
	if err != nil {
		return nil, err
	}
	if it.Start, err = timeVal(start); err != nil {
		return nil, err
	}
	if it.End, err = timeVal(end); err != nil {
		return nil, err
	}
	return it, nil
}

func timeVal(col sql.NullString) (*time.Time, error) {
	if !col.Valid || col.String == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, col.String)
	if err != nil {
		return nil, fmt.Errorf("parse stored time %q: %w", col.String, err)
	}
	return &t, nil
}

func collectItems(rows *sql.Rows) ([]*Item, error) {
	var items []*Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
