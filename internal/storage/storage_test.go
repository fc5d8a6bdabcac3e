package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLoader struct {
	rows []ConfigRow
	err  error
}

func (s stubLoader) LoadPhraseConfigs(context.Context) ([]ConfigRow, error) {
	return s.rows, s.err
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func TestFileStore_LoadPhraseConfigs(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.txt": "a = x\n---\nfoo",
		"b.txt": "b = y\n---\nbar",
	})
	paths := []string{filepath.Join(dir, "b.txt"), filepath.Join(dir, "a.txt")}

	rows, err := NewFileStore(paths).LoadPhraseConfigs(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, paths[0], rows[0].Name)
	assert.Equal(t, "b = y\n---\nbar", rows[0].Body)
	assert.Equal(t, paths[1], rows[1].Name)
}

func TestFileStore_MissingFile(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.txt": "a = x\n---\nfoo"})
	fsStore := NewFileStore([]string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "missing.txt")})

	_, err := fsStore.LoadPhraseConfigs(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestFileStore_Empty(t *testing.T) {
	rows, err := NewFileStore(nil).LoadPhraseConfigs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestMultiLoader(t *testing.T) {
	tests := []struct {
		name     string
		loaders  MultiLoader
		wantRows []string
		wantErr  bool
	}{
		{
			name: "concatenates in order",
			loaders: MultiLoader{
				stubLoader{rows: []ConfigRow{{Name: "one"}}},
				stubLoader{rows: []ConfigRow{{Name: "two"}, {Name: "three"}}},
			},
			wantRows: []string{"one", "two", "three"},
		},
		{
			name: "first error wins",
			loaders: MultiLoader{
				stubLoader{rows: []ConfigRow{{Name: "one"}}},
				stubLoader{err: context.DeadlineExceeded},
			},
			wantErr: true,
		},
		{
			name:    "no loaders",
			loaders: MultiLoader{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := tt.loaders.LoadPhraseConfigs(context.Background())
			if tt.wantErr {
				assert.ErrorIs(t, err, context.DeadlineExceeded)
				return
			}
			require.NoError(t, err)
			var names []string
			for _, r := range rows {
				names = append(names, r.Name)
			}
			assert.Equal(t, tt.wantRows, names)
		})
	}
}

func TestStore_ListenChannelDefault(t *testing.T) {
	assert.Equal(t, "phrase_config_change", (&Store{}).ListenChannel())
	assert.Equal(t, "custom", (&Store{channel: "custom"}).ListenChannel())
}
