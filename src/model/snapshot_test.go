package model

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/ustax/src/database"
)

func TestSnapshotRoundTrip(t *testing.T) {
	db, err := database.Open(filepath.Join(t.TempDir(), "snap.db"))
	require.NoError(t, err)
	defer db.Close()

	base := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	older := &Snapshot{ID: "s1", Owner: "alice", Kind: SnapshotFederal, TaxYear: 2025, InputJSON: `{"a":1}`, ResultJSON: `{"b":2}`, ETag: "e1", CreatedAt: base}
	newer := &Snapshot{ID: "s2", Owner: "alice", Kind: SnapshotJurisdiction, TaxYear: 2025, Jurisdiction: "NY", InputJSON: `{}`, ResultJSON: `{}`, CreatedAt: base.Add(time.Hour)}
	other := &Snapshot{ID: "s3", Owner: "bob", Kind: SnapshotFederal, TaxYear: 2024, InputJSON: `{}`, ResultJSON: `{}`}
	for _, s := range []*Snapshot{older, newer, other} {
		require.NoError(t, s.CreateSnapshot(db))
	}

	got, err := GetSnapshotByID(db, "s1", "alice")
	require.NoError(t, err)
	assert.Equal(t, SnapshotFederal, got.Kind)
	assert.Equal(t, `{"a":1}`, got.InputJSON)
	assert.Equal(t, `{"b":2}`, got.ResultJSON)
	assert.Equal(t, "e1", got.ETag)
	assert.True(t, base.Equal(got.CreatedAt))

	_, err = GetSnapshotByID(db, "s1", "bob")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	list, err := ListSnapshotsByOwner(db, "alice", 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "s2", list[0].ID)
	assert.Equal(t, "NY", list[0].Jurisdiction)
	assert.Empty(t, list[0].InputJSON)

	require.NoError(t, DeleteSnapshot(db, "s1", "alice"))
	assert.ErrorIs(t, DeleteSnapshot(db, "s1", "alice"), ErrSnapshotNotFound)
}
