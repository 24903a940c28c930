package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/veldt-lang/veldt/internal/config"
	"github.com/veldt-lang/veldt/internal/pipeline"
	"github.com/veldt-lang/veldt/internal/printer"
	"github.com/veldt-lang/veldt/internal/report"
)

// createdLayout is fixed width so lexicographic order matches
// chronological order for UTC stamps.
const createdLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schemaDDL = `
CREATE TABLE IF NOT EXISTS schema_info (
	version INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS traces (
	id         TEXT PRIMARY KEY,
	file       TEXT NOT NULL,
	line       INTEGER NOT NULL,
	col        INTEGER NOT NULL,
	target     TEXT NOT NULL,
	iface      TEXT NOT NULL,
	args       TEXT NOT NULL,
	verdict    TEXT NOT NULL,
	impl       TEXT NOT NULL,
	candidates INTEGER NOT NULL,
	created    TIMESTAMP NOT NULL
);
`

// TraceEntry is one recorded resolution outcome.
type TraceEntry struct {
	ID         string
	File       string
	Line       int
	Column     int
	Target     string
	Interface  string
	Args       string
	Verdict    string
	Impl       string
	Candidates int
	Created    time.Time
}

// EntryFor flattens one resolution outcome for recording. The result
// and the report must describe the same require.
func EntryFor(result pipeline.RequireResult, rep *report.Report) TraceEntry {
	entry := TraceEntry{
		File:      rep.Site.File,
		Line:      rep.Site.Line,
		Column:    rep.Site.Column,
		Target:    printer.TypeRef(result.Query.Target),
		Interface: result.Query.Interface,
		Verdict:   string(rep.Status),
	}
	parts := make([]string, len(result.Query.Args))
	for i, term := range result.Query.Args {
		parts[i] = printer.Term(term)
	}
	entry.Args = strings.Join(parts, ", ")
	if rep.Resolved != nil {
		entry.Impl = rep.Resolved.Signature
		entry.Candidates = 1
	} else {
		entry.Candidates = len(rep.NearMisses) + len(rep.Candidates)
	}
	return entry
}

type StoreOption func(*Store) *Store

func WithLogger(logger zerolog.Logger) StoreOption {
	return func(s *Store) *Store {
		s.logger = logger
		return s
	}
}

var defaultOptions = []StoreOption{
	WithLogger(zerolog.Nop()),
}

// Store is an append-only SQLite trace of resolution outcomes.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

// Open opens or creates the trace database at path and verifies its
// schema version.
func Open(path string, options ...StoreOption) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening trace store %s: %w", path, err)
	}
	// SQLite allows one writer; funnel everything through a single
	// connection instead of surfacing SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	for _, opt := range append(defaultOptions, options...) {
		s = opt(s)
	}
	if err := s.init(path); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init(path string) error {
	if _, err := s.db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("creating trace schema in %s: %w", path, err)
	}
	var version int
	err := s.db.QueryRow(`SELECT version FROM schema_info`).Scan(&version)
	switch {
	case err == sql.ErrNoRows:
		if _, err := s.db.Exec(`INSERT INTO schema_info (version) VALUES (?)`, config.StoreSchemaVersion); err != nil {
			return fmt.Errorf("writing schema version to %s: %w", path, err)
		}
	case err != nil:
		return fmt.Errorf("reading schema version from %s: %w", path, err)
	case version != config.StoreSchemaVersion:
		return fmt.Errorf("trace store %s has schema version %d, expected %d", path, version, config.StoreSchemaVersion)
	}
	s.logger.Debug().Str("path", path).Msg("trace store ready")
	return nil
}

// Record inserts one entry. A missing id or timestamp is filled in.
func (s *Store) Record(entry TraceEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Created.IsZero() {
		entry.Created = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO traces (id, file, line, col, target, iface, args, verdict, impl, candidates, created)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.File, entry.Line, entry.Column, entry.Target, entry.Interface,
		entry.Args, entry.Verdict, entry.Impl, entry.Candidates,
		entry.Created.UTC().Format(createdLayout),
	)
	if err != nil {
		return fmt.Errorf("recording trace %s: %w", entry.ID, err)
	}
	s.logger.Debug().Str("id", entry.ID).Str("verdict", entry.Verdict).Msg("trace recorded")
	return nil
}

// List returns all entries in insertion order.
func (s *Store) List() ([]TraceEntry, error) {
	return s.queryEntries(`SELECT id, file, line, col, target, iface, args, verdict, impl, candidates, created
		FROM traces ORDER BY rowid`)
}

// ByVerdict returns the entries with the given verdict kind in
// insertion order.
func (s *Store) ByVerdict(kind string) ([]TraceEntry, error) {
	return s.queryEntries(`SELECT id, file, line, col, target, iface, args, verdict, impl, candidates, created
		FROM traces WHERE verdict = ? ORDER BY rowid`, kind)
}

func (s *Store) queryEntries(query string, args ...interface{}) ([]TraceEntry, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying traces: %w", err)
	}
	defer rows.Close()

	var entries []TraceEntry
	for rows.Next() {
		var entry TraceEntry
		var created string
		if err := rows.Scan(&entry.ID, &entry.File, &entry.Line, &entry.Column, &entry.Target,
			&entry.Interface, &entry.Args, &entry.Verdict, &entry.Impl, &entry.Candidates, &created); err != nil {
			return nil, fmt.Errorf("scanning trace row: %w", err)
		}
		entry.Created, err = time.Parse(createdLayout, created)
		if err != nil {
			return nil, fmt.Errorf("parsing trace timestamp %q: %w", created, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading traces: %w", err)
	}
	return entries, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
