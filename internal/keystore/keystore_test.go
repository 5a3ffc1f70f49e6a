package keystore

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKB = "D0112P0AE00E0000B82679114F470F540165EDFBF7E250FCEA43F810D215F8D2" +
	"07E2E417C07156A27E8E31DA05F7425509593D03A457DC34"

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "keys.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })

	return s
}

func TestPutGetDelete(t *testing.T) {
	t.Parallel()
	s := openStore(t)

	e, err := s.Put("pin key", testKB)
	require.NoError(t, err)
	assert.Equal(t, "P0", e.KeyUsage)
	assert.Equal(t, "A", e.Algorithm)
	assert.Equal(t, byte(7), byte(e.ID.Version()))

	got, err := s.Get(e.ID)
	require.NoError(t, err)
	assert.Equal(t, "pin key", got.Label)
	assert.Equal(t, testKB, got.KeyBlock)
	assert.True(t, e.CreatedAt.Equal(got.CreatedAt))

	require.NoError(t, s.Delete(e.ID))
	_, err = s.Get(e.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, s.Delete(e.ID), ErrNotFound)
}

func TestListOrder(t *testing.T) {
	t.Parallel()
	s := openStore(t)

	var ids []uuid.UUID
	for _, label := range []string{"first", "second", "third"} {
		e, err := s.Put(label, testKB)
		require.NoError(t, err)
		ids = append(ids, e.ID)
	}

	entries, err := s.List()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, e := range entries {
		assert.Equal(t, ids[i], e.ID)
	}
}

func TestPutRejectsInvalidBlocks(t *testing.T) {
	t.Parallel()
	s := openStore(t)

	tests := []struct {
		name string
		kb   string
	}{
		{"short", "D0112"},
		{"bad usage", "D0112ZZAE00E0000" + testKB[16:]},
		{"length mismatch", testKB[:100]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := s.Put("x", tt.kb)
			require.ErrorIs(t, err, ErrInvalidEntry)
		})
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "keys.db")

	s, err := Open(path)
	require.NoError(t, err)
	e, err := s.Put("kept", testKB)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(e.ID)
	require.NoError(t, err)
	assert.Equal(t, "kept", got.Label)
	assert.Equal(t, path, s.Path())
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()
	_, err := Open("")
	require.Error(t, err)
}
