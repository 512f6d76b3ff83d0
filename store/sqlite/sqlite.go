/*
Package sqlite provides a SQLite-backed implementation of the repository
interfaces.

PURPOSE:
  Implements every absence repository using SQLite. The same patterns apply
  to a server database - only minor SQL dialect differences.

KEY TABLES:
  users, departments, accounts:   The people side
  right_renewals:                 Entitlement grant windows
  absence_elements:               The consumption ledger (read-mostly)
  requests:                       Leave requests (soft-deleted, never removed)
  overtimes, calendar_events:     Overtime records and their events
  account_collections:            Collection membership periods

DOCUMENT COLUMNS:
  Snapshot fields (user name/department) and id lists are stored as JSON
  text columns; referential fields are plain id columns with indexes.

CONCURRENCY:
  WAL mode, single writer. The membership unique index on
  (account, collection, start) is the backstop for the validate-then-write
  race described in service/memberships.go.

MIGRATION:
  Schema is auto-migrated on New(). For production, use a versioned
  migration tool.

USAGE:
  store, err := sqlite.New("./data/absence.db")   // or ":memory:"
  if err != nil { ... }
  defer store.Close()

SEE ALSO:
  - absence/repository.go: Interface definitions
  - store/memory: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/meridian/absence-engine/absence"
)

// Store implements all repository interfaces using SQLite.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		department_id TEXT,
		account_id TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS departments (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		parent_id TEXT
	);

	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS right_renewals (
		id TEXT PRIMARY KEY,
		right_id TEXT NOT NULL,
		start_at TEXT NOT NULL,
		end_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS absence_elements (
		id TEXT PRIMARY KEY,
		renewal_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		quantity_value TEXT NOT NULL,
		quantity_unit TEXT NOT NULL,
		request_status TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_elements_renewal_user
		ON absence_elements(renewal_id, user_id);

	CREATE TABLE IF NOT EXISTS requests (
		id TEXT PRIMARY KEY,
		user_json TEXT NOT NULL,
		user_id TEXT NOT NULL,
		status_created TEXT NOT NULL DEFAULT '',
		status_deleted TEXT NOT NULL DEFAULT '',
		event_ids_json TEXT,
		element_ids_json TEXT,
		created_by_json TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_requests_user ON requests(user_id);
	CREATE INDEX IF NOT EXISTS idx_requests_created ON requests(created_at);

	CREATE TABLE IF NOT EXISTS overtimes (
		id TEXT PRIMARY KEY,
		user_json TEXT NOT NULL,
		quantity_value TEXT NOT NULL,
		quantity_unit TEXT NOT NULL,
		settled INTEGER NOT NULL DEFAULT 0,
		event_ids_json TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS calendar_events (
		id TEXT PRIMARY KEY,
		user_json TEXT NOT NULL,
		start_at TEXT NOT NULL,
		end_at TEXT NOT NULL,
		summary TEXT NOT NULL,
		status TEXT NOT NULL,
		overtime_id TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_overtime ON calendar_events(overtime_id);

	CREATE TABLE IF NOT EXISTS account_collections (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		collection_id TEXT NOT NULL,
		start_at TEXT NOT NULL,
		end_at TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_memberships_account ON account_collections(account_id);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_memberships_unique
		ON account_collections(account_id, collection_id, start_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ENCODING HELPERS
// =============================================================================

func encodeTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func decodeTime(s string) (time.Time, error) { return time.Parse(time.RFC3339Nano, s) }

func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeSnapshot(s string) (absence.UserSnapshot, error) {
	var snap absence.UserSnapshot
	if s == "" {
		return snap, nil
	}
	err := json.Unmarshal([]byte(s), &snap)
	return snap, err
}

func decodeQuantity(value, unit string) (absence.Quantity, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return absence.Quantity{}, fmt.Errorf("bad quantity %q: %w", value, err)
	}
	return absence.Quantity{Value: d, Unit: absence.Unit(unit)}, nil
}

// =============================================================================
// USERS, DEPARTMENTS, ACCOUNTS
// =============================================================================

func (s *Store) SaveUser(ctx context.Context, u *absence.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO users (id, name, email, department_id, account_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		string(u.ID), u.Name, u.Email, string(u.Department), string(u.AccountID), encodeTime(u.Created))
	return err
}

func (s *Store) FindUser(ctx context.Context, id absence.UserID) (*absence.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, department_id, account_id, created_at
		FROM users WHERE id = ?`, string(id))

	var u absence.User
	var createdAt string
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Department, &u.AccountID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, absence.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if u.Created, err = decodeTime(createdAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) SaveDepartment(ctx context.Context, d *absence.Department) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO departments (id, name, parent_id) VALUES (?, ?, ?)`,
		string(d.ID), d.Name, string(d.Parent))
	return err
}

func (s *Store) FindDepartment(ctx context.Context, id absence.DepartmentID) (*absence.Department, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, parent_id FROM departments WHERE id = ?`, string(id))

	var d absence.Department
	err := row.Scan(&d.ID, &d.Name, &d.Parent)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, absence.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Store) SaveAccount(ctx context.Context, a *absence.Account) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO accounts (id, user_id, created_at) VALUES (?, ?, ?)`,
		string(a.ID), string(a.UserID), encodeTime(a.Created))
	return err
}

func (s *Store) FindAccount(ctx context.Context, id absence.AccountID) (*absence.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, created_at FROM accounts WHERE id = ?`, string(id))

	var a absence.Account
	var createdAt string
	err := row.Scan(&a.ID, &a.UserID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, absence.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if a.Created, err = decodeTime(createdAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// =============================================================================
// RENEWALS AND ELEMENTS
// =============================================================================

func (s *Store) SaveRenewal(ctx context.Context, r *absence.RightRenewal) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO right_renewals (id, right_id, start_at, end_at)
		VALUES (?, ?, ?, ?)`,
		string(r.ID), r.RightID, encodeTime(r.Start), encodeTime(r.End))
	return err
}

func (s *Store) FindRenewal(ctx context.Context, id absence.RenewalID) (*absence.RightRenewal, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, right_id, start_at, end_at FROM right_renewals WHERE id = ?`, string(id))

	var r absence.RightRenewal
	var start, end string
	err := row.Scan(&r.ID, &r.RightID, &start, &end)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, absence.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if r.Start, err = decodeTime(start); err != nil {
		return nil, err
	}
	if r.End, err = decodeTime(end); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) SaveElement(ctx context.Context, el *absence.AbsenceElement) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO absence_elements
			(id, renewal_id, user_id, quantity_value, quantity_unit, request_status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		string(el.ID), string(el.RenewalID), string(el.UserID),
		el.ConsumedQuantity.Value.String(), string(el.ConsumedQuantity.Unit),
		string(el.RequestStatus))
	return err
}

func (s *Store) ElementsByRenewalAndUser(ctx context.Context, renewal absence.RenewalID, user absence.UserID) ([]absence.AbsenceElement, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, renewal_id, user_id, quantity_value, quantity_unit, request_status
		FROM absence_elements WHERE renewal_id = ? AND user_id = ?`,
		string(renewal), string(user))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []absence.AbsenceElement
	for rows.Next() {
		var el absence.AbsenceElement
		var value, unit string
		if err := rows.Scan(&el.ID, &el.RenewalID, &el.UserID, &value, &unit, &el.RequestStatus); err != nil {
			return nil, err
		}
		if el.ConsumedQuantity, err = decodeQuantity(value, unit); err != nil {
			return nil, err
		}
		out = append(out, el)
	}
	return out, rows.Err()
}

// =============================================================================
// REQUESTS
// =============================================================================

func (s *Store) SaveRequest(ctx context.Context, req *absence.Request) error {
	userJSON, err := encodeJSON(req.User)
	if err != nil {
		return err
	}
	eventsJSON, err := encodeJSON(req.EventIDs)
	if err != nil {
		return err
	}
	elementsJSON, err := encodeJSON(req.ElementIDs)
	if err != nil {
		return err
	}
	createdByJSON, err := encodeJSON(req.CreatedBy)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO requests
			(id, user_json, user_id, status_created, status_deleted,
			 event_ids_json, element_ids_json, created_by_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(req.ID), userJSON, string(req.User.ID),
		string(req.Status.Created), string(req.Status.Deleted),
		eventsJSON, elementsJSON, createdByJSON, encodeTime(req.Created))
	return err
}

func (s *Store) FindRequest(ctx context.Context, id absence.RequestID, filter absence.RequestFilter) (*absence.Request, error) {
	query := `
		SELECT id, user_json, status_created, status_deleted,
		       event_ids_json, element_ids_json, created_by_json, created_at
		FROM requests WHERE id = ?`
	args := []any{string(id)}

	if filter.User != "" {
		query += " AND user_id = ?"
		args = append(args, string(filter.User))
	}
	query, args = appendDeletionFilter(query, args, filter.Deleted)

	req, err := scanRequest(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, absence.ErrNotFound
	}
	return req, err
}

func (s *Store) ListRequests(ctx context.Context, filter absence.RequestFilter, opts absence.ListOptions) ([]absence.Request, error) {
	query := `
		SELECT id, user_json, status_created, status_deleted,
		       event_ids_json, element_ids_json, created_by_json, created_at
		FROM requests WHERE 1=1`
	var args []any

	if filter.User != "" {
		query += " AND user_id = ?"
		args = append(args, string(filter.User))
	}

	deleted := filter.Deleted
	if deleted == nil {
		deleted = absence.DefaultDeletionFilter()
	}
	query, args = appendDeletionFilter(query, args, deleted)

	query += " ORDER BY created_at ASC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}
	if opts.Offset > 0 {
		if opts.Limit <= 0 {
			// SQLite requires a LIMIT clause before OFFSET; -1 means no limit.
			query += " LIMIT -1"
		}
		query += " OFFSET ?"
		args = append(args, opts.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []absence.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *req)
	}
	return out, rows.Err()
}

func appendDeletionFilter(query string, args []any, deleted []absence.DeletionStatus) (string, []any) {
	if len(deleted) == 0 {
		return query, args
	}
	query += " AND status_deleted IN (?"
	args = append(args, string(deleted[0]))
	for _, d := range deleted[1:] {
		query += ", ?"
		args = append(args, string(d))
	}
	query += ")"
	return query, args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*absence.Request, error) {
	var req absence.Request
	var userJSON, eventsJSON, elementsJSON, createdByJSON, createdAt string

	err := row.Scan(&req.ID, &userJSON, &req.Status.Created, &req.Status.Deleted,
		&eventsJSON, &elementsJSON, &createdByJSON, &createdAt)
	if err != nil {
		return nil, err
	}

	if req.User, err = decodeSnapshot(userJSON); err != nil {
		return nil, err
	}
	if req.CreatedBy, err = decodeSnapshot(createdByJSON); err != nil {
		return nil, err
	}
	if eventsJSON != "" && eventsJSON != "null" {
		if err := json.Unmarshal([]byte(eventsJSON), &req.EventIDs); err != nil {
			return nil, err
		}
	}
	if elementsJSON != "" && elementsJSON != "null" {
		if err := json.Unmarshal([]byte(elementsJSON), &req.ElementIDs); err != nil {
			return nil, err
		}
	}
	if req.Created, err = decodeTime(createdAt); err != nil {
		return nil, err
	}
	return &req, nil
}

// =============================================================================
// OVERTIMES AND EVENTS
// =============================================================================

func (s *Store) SaveOvertime(ctx context.Context, ot *absence.Overtime) error {
	userJSON, err := encodeJSON(ot.User)
	if err != nil {
		return err
	}
	eventsJSON, err := encodeJSON(ot.EventIDs)
	if err != nil {
		return err
	}

	settled := 0
	if ot.Settled {
		settled = 1
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO overtimes
			(id, user_json, quantity_value, quantity_unit, settled, event_ids_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(ot.ID), userJSON,
		ot.Quantity.Value.String(), string(ot.Quantity.Unit),
		settled, eventsJSON, encodeTime(ot.Created))
	return err
}

func (s *Store) FindOvertime(ctx context.Context, id absence.OvertimeID) (*absence.Overtime, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_json, quantity_value, quantity_unit, settled, event_ids_json, created_at
		FROM overtimes WHERE id = ?`, string(id))

	var ot absence.Overtime
	var userJSON, value, unit, eventsJSON, createdAt string
	var settled int

	err := row.Scan(&ot.ID, &userJSON, &value, &unit, &settled, &eventsJSON, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, absence.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if ot.User, err = decodeSnapshot(userJSON); err != nil {
		return nil, err
	}
	if ot.Quantity, err = decodeQuantity(value, unit); err != nil {
		return nil, err
	}
	ot.Settled = settled != 0
	if eventsJSON != "" && eventsJSON != "null" {
		if err := json.Unmarshal([]byte(eventsJSON), &ot.EventIDs); err != nil {
			return nil, err
		}
	}
	if ot.Created, err = decodeTime(createdAt); err != nil {
		return nil, err
	}
	return &ot, nil
}

func (s *Store) SaveEvent(ctx context.Context, ev *absence.CalendarEvent) error {
	userJSON, err := encodeJSON(ev.User)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO calendar_events
			(id, user_json, start_at, end_at, summary, status, overtime_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(ev.ID), userJSON, encodeTime(ev.Start), encodeTime(ev.End),
		ev.Summary, string(ev.Status), string(ev.Overtime), encodeTime(ev.Created))
	return err
}

func (s *Store) FindEvent(ctx context.Context, id absence.EventID) (*absence.CalendarEvent, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_json, start_at, end_at, summary, status, overtime_id, created_at
		FROM calendar_events WHERE id = ?`, string(id))

	var ev absence.CalendarEvent
	var userJSON, start, end, createdAt string

	err := row.Scan(&ev.ID, &userJSON, &start, &end, &ev.Summary, &ev.Status, &ev.Overtime, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, absence.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if ev.User, err = decodeSnapshot(userJSON); err != nil {
		return nil, err
	}
	if ev.Start, err = decodeTime(start); err != nil {
		return nil, err
	}
	if ev.End, err = decodeTime(end); err != nil {
		return nil, err
	}
	if ev.Created, err = decodeTime(createdAt); err != nil {
		return nil, err
	}
	return &ev, nil
}

// =============================================================================
// MEMBERSHIPS
// =============================================================================

func (s *Store) SaveMembership(ctx context.Context, m *absence.AccountCollection) error {
	var end any
	if m.End != nil {
		end = encodeTime(*m.End)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO account_collections
			(id, account_id, collection_id, start_at, end_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		string(m.ID), string(m.AccountID), string(m.CollectionID),
		encodeTime(m.Start), end, encodeTime(m.Created))
	return err
}

func (s *Store) MembershipsByAccount(ctx context.Context, account absence.AccountID) ([]absence.AccountCollection, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, collection_id, start_at, end_at, created_at
		FROM account_collections WHERE account_id = ?
		ORDER BY start_at ASC`, string(account))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []absence.AccountCollection
	for rows.Next() {
		var m absence.AccountCollection
		var start, createdAt string
		var end sql.NullString

		if err := rows.Scan(&m.ID, &m.AccountID, &m.CollectionID, &start, &end, &createdAt); err != nil {
			return nil, err
		}
		if m.Start, err = decodeTime(start); err != nil {
			return nil, err
		}
		if end.Valid {
			t, err := decodeTime(end.String)
			if err != nil {
				return nil, err
			}
			m.End = &t
		}
		if m.Created, err = decodeTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
