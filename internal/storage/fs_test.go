package storage_test

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-norms/internal/storage"
)

func TestFSStore_PutGet(t *testing.T) {
	dir := t.TempDir()
	s, err := storage.NewFSStore(dir)
	require.NoError(t, err)

	key, err := s.Put("bands/6-7.json", strings.NewReader(`{"id":"6-7"}`))
	require.NoError(t, err)
	assert.Equal(t, "bands/6-7.json", key)

	rc, err := s.Get("bands/6-7.json")
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, `{"id":"6-7"}`, string(b))
}

func TestFSStore_KeysStayInsideBase(t *testing.T) {
	dir := t.TempDir()
	s, err := storage.NewFSStore(filepath.Join(dir, "base"))
	require.NoError(t, err)

	key, err := s.Put("../../escape.json", strings.NewReader("{}"))
	require.NoError(t, err)
	assert.Equal(t, "escape.json", key)
	_, err = os.Stat(filepath.Join(dir, "base", "escape.json"))
	assert.NoError(t, err)

	_, err = s.Put("  ", strings.NewReader("{}"))
	assert.ErrorIs(t, err, storage.ErrBadKey)
}
