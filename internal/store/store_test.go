package store

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldt-lang/veldt/internal/constgen"
	"github.com/veldt-lang/veldt/internal/pipeline"
	"github.com/veldt-lang/veldt/internal/registry"
	"github.com/veldt-lang/veldt/internal/report"
	"github.com/veldt-lang/veldt/internal/resolve"
)

func openStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trace.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func sampleEntry(id, verdict string) TraceEntry {
	return TraceEntry{
		ID:         id,
		File:       "main.vd",
		Line:       5,
		Column:     1,
		Target:     "u32",
		Interface:  "Traitor",
		Args:       "1, 1",
		Verdict:    verdict,
		Candidates: 2,
		Created:    time.Date(2026, 8, 25, 10, 30, 0, 123456789, time.UTC),
	}
}

func TestOpenCreatesSchema(t *testing.T) {
	s, path := openStore(t)

	entries, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
	require.NoError(t, s.Close())

	// Reopening verifies the stored schema version.
	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()
}

func TestRecordAndList(t *testing.T) {
	s, _ := openStore(t)

	first := sampleEntry("trace-1", "not-found")
	second := sampleEntry("trace-2", "resolved")
	second.Impl = "impl Traitor[1, 2] for u32"
	second.Candidates = 1
	second.Created = first.Created.Add(time.Second)

	require.NoError(t, s.Record(first))
	require.NoError(t, s.Record(second))

	entries, err := s.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "trace-1", entries[0].ID)
	assert.Equal(t, "trace-2", entries[1].ID)
	assert.Equal(t, "u32", entries[0].Target)
	assert.Equal(t, "Traitor", entries[0].Interface)
	assert.Equal(t, "1, 1", entries[0].Args)
	assert.Equal(t, "not-found", entries[0].Verdict)
	assert.Equal(t, 2, entries[0].Candidates)
	assert.Equal(t, "impl Traitor[1, 2] for u32", entries[1].Impl)
	assert.True(t, entries[0].Created.Equal(first.Created),
		"created round-trip: got %v, want %v", entries[0].Created, first.Created)
}

func TestRecordFillsIDAndTimestamp(t *testing.T) {
	s, _ := openStore(t)

	entry := sampleEntry("", "ambiguous")
	entry.Created = time.Time{}
	require.NoError(t, s.Record(entry))

	entries, err := s.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	_, err = uuid.Parse(entries[0].ID)
	assert.NoError(t, err, "generated id %q is not a UUID", entries[0].ID)
	assert.WithinDuration(t, time.Now().UTC(), entries[0].Created, time.Minute)
}

func TestByVerdict(t *testing.T) {
	s, _ := openStore(t)

	require.NoError(t, s.Record(sampleEntry("trace-1", "not-found")))
	require.NoError(t, s.Record(sampleEntry("trace-2", "resolved")))
	require.NoError(t, s.Record(sampleEntry("trace-3", "not-found")))

	entries, err := s.ByVerdict("not-found")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "trace-1", entries[0].ID)
	assert.Equal(t, "trace-3", entries[1].ID)

	entries, err = s.ByVerdict("resolved")
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestSchemaVersionMismatch(t *testing.T) {
	s, path := openStore(t)
	require.NoError(t, s.Close())

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`UPDATE schema_info SET version = 99`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = Open(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema version")
}

func mustLit(t *testing.T, kind constgen.Kind, value uint64) constgen.Lit {
	t.Helper()
	lit, err := constgen.ParseLit(kind, false, value)
	require.NoError(t, err)
	return lit
}

func TestEntryFor(t *testing.T) {
	result := pipeline.RequireResult{
		Query: &resolve.Query{
			Target:    registry.TypeRef{Name: "u32"},
			Interface: "Traitor",
			Args:      []constgen.Term{mustLit(t, constgen.U8, 1), mustLit(t, constgen.U8, 1)},
		},
	}
	rep := &report.Report{
		Goal:   "u32 : Traitor[1, 1]",
		Site:   report.Site{File: "main.vd", Line: 5, Column: 1},
		Status: report.StatusNotFound,
		NearMisses: []report.Impl{
			{Signature: "impl Traitor[1, 2] for u32"},
			{Signature: "impl[N: u8] Traitor[N, 2] for u32"},
		},
	}

	entry := EntryFor(result, rep)
	assert.Equal(t, "main.vd", entry.File)
	assert.Equal(t, 5, entry.Line)
	assert.Equal(t, "u32", entry.Target)
	assert.Equal(t, "Traitor", entry.Interface)
	assert.Equal(t, "1, 1", entry.Args)
	assert.Equal(t, "not-found", entry.Verdict)
	assert.Equal(t, "", entry.Impl)
	assert.Equal(t, 2, entry.Candidates)
}

func TestEntryForResolved(t *testing.T) {
	result := pipeline.RequireResult{
		Query: &resolve.Query{
			Target:    registry.TypeRef{Name: "u32"},
			Interface: "Traitor",
			Args:      []constgen.Term{mustLit(t, constgen.U8, 1), mustLit(t, constgen.U8, 2)},
		},
	}
	rep := &report.Report{
		Goal:     "u32 : Traitor[1, 2]",
		Status:   report.StatusResolved,
		Resolved: &report.Impl{Signature: "impl Traitor[1, 2] for u32"},
		Bindings: []report.Binding{{Name: "N", Term: "1"}},
	}

	entry := EntryFor(result, rep)
	assert.Equal(t, "resolved", entry.Verdict)
	assert.Equal(t, "impl Traitor[1, 2] for u32", entry.Impl)
	assert.Equal(t, 1, entry.Candidates)
}
