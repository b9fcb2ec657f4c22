package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gobmr/gobmr/internal/override"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.json")
	s := NewFileStore(path)

	now := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	m := override.NewMap()
	m.Set(3, override.New(21.5, now, 4*time.Hour))
	m.Set(7, override.New(19.0, now, 0))

	require.NoError(t, s.Save(m.Records()))

	records, err := s.Load()
	require.NoError(t, err)

	got := override.MapFromRecords(records)
	require.Equal(t, 2, got.Len())
	assert.Equal(t, 21.5, got.Get(3).Temperature)
	assert.WithinDuration(t, now, got.Get(3).CreatedAt, time.Microsecond)
	require.NotNil(t, got.Get(3).StopAt)
	assert.Nil(t, got.Get(7).StopAt)
}

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "nope.json"))

	records, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFileStoreSkipsMalformedEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.json")
	doc := `{
		"3": {"temperature": 21.5, "created_at": 1709984096.5, "stop_at": null},
		"4": {"temperature": "garbage"}
	}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	records, err := NewFileStore(path).Load()
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, 21.5, records["3"].Temperature)
}

func TestFileStoreLoadsLegacyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.json")
	doc := `{"12": {"temperature": 23, "created_at": "2024-03-09T12:34:56.789012", "stop_at": null}}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	records, err := NewFileStore(path).Load()
	require.NoError(t, err)

	m := override.MapFromRecords(records)
	require.NotNil(t, m.Get(12))
	assert.Equal(t, 23.0, m.Get(12).Temperature)
	assert.Equal(t, m.Get(12).CreatedAt, m.Get(12).LastSet)
}

func TestFileStoreCorruptDocumentFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, err := NewFileStore(path).Load()
	assert.Error(t, err)
}

func TestFileStoreSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overrides.json")
	s := NewFileStore(path)

	require.NoError(t, s.Save(map[string]override.Record{}))

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
