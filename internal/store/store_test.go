package store

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "snapshots.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLoad(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save("FTTH", "FY26", json.RawMessage(`{"total": 100}`)))

	snap, err := s.Load("FTTH", "FY26")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "FTTH", snap.LOB)
	assert.Equal(t, "FY26", snap.FiscalYear)
	assert.JSONEq(t, `{"total": 100}`, string(snap.Data))
	assert.NotEmpty(t, snap.ID)
	assert.False(t, snap.UpdatedAt.IsZero())
}

func TestSaveUpserts(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save("FTTH", "FY26", json.RawMessage(`{"v": 1}`)))
	require.NoError(t, s.Save("FTTH", "FY26", json.RawMessage(`{"v": 2}`)))

	snap, err := s.Load("FTTH", "FY26")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v": 2}`, string(snap.Data))

	index, err := s.List()
	require.NoError(t, err)
	assert.Len(t, index, 1, "Upsert must not create a second row")
}

func TestLoadLatestWithoutFiscalYear(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save("FTTH", "FY25", json.RawMessage(`{"year": "old"}`)))
	require.NoError(t, s.Save("FTTH", "FY26", json.RawMessage(`{"year": "new"}`)))

	snap, err := s.Load("FTTH", "")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.JSONEq(t, `{"year": "new"}`, string(snap.Data), "Latest updated snapshot wins")
}

func TestLoadMissingReturnsNil(t *testing.T) {
	s := newTestStore(t)

	snap, err := s.Load("SDU", "FY26")
	require.NoError(t, err)
	assert.Nil(t, snap, "Not found is not an error")
}

func TestSaveRejectsInvalidInput(t *testing.T) {
	s := newTestStore(t)

	assert.Error(t, s.Save("", "FY26", json.RawMessage(`{}`)), "LOB is mandatory")
	assert.Error(t, s.Save("FTTH", "FY26", json.RawMessage(`{not json`)))
}

func TestSnapshotsIsolatedPerLOB(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save("FTTH", "FY26", json.RawMessage(`{"lob": "ftth"}`)))
	require.NoError(t, s.Save("SDU", "FY26", json.RawMessage(`{"lob": "sdu"}`)))

	snap, err := s.Load("SDU", "FY26")
	require.NoError(t, err)
	assert.JSONEq(t, `{"lob": "sdu"}`, string(snap.Data))
}
