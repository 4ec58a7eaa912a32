package prefs

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, KeyUnit)
	require.NoError(t, err)
	assert.False(t, ok, "fresh store must be empty")

	require.NoError(t, s.Set(ctx, KeyUnit, "fahrenheit"))
	require.NoError(t, s.Set(ctx, KeyLastCity, "Lisbon"))

	v, ok, err := s.Get(ctx, KeyUnit)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "fahrenheit", v)

	require.NoError(t, s.Set(ctx, KeyUnit, "celsius"))
	v, _, err = s.Get(ctx, KeyUnit)
	require.NoError(t, err)
	assert.Equal(t, "celsius", v)

	v, _, err = s.Get(ctx, KeyLastCity)
	require.NoError(t, err)
	assert.Equal(t, "Lisbon", v)
}

func TestMemory(t *testing.T) {
	s := NewMemory()
	defer s.Close()
	testStore(t, s)
}

func TestSQLite(t *testing.T) {
	s, err := NewSQLite(filepath.Join(t.TempDir(), "prefs.db"))
	require.NoError(t, err)
	defer s.Close()
	testStore(t, s)
}

func TestSQLite_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.db")
	ctx := context.Background()

	s, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, KeyLastCity, "São Paulo"))
	require.NoError(t, s.Close())

	s, err = NewSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	v, ok, err := s.Get(ctx, KeyLastCity)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "São Paulo", v)
}
