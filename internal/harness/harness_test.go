package harness

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProfiler reports a heap that grows by 1 KiB per reading.
func fakeProfiler() *Profiler {
	var heap uint64
	return &Profiler{read: func(m *runtime.MemStats) {
		heap += 1024
		m.HeapAlloc = heap
		m.HeapInuse = heap
	}}
}

func writeConfig(t *testing.T, body string) []string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "phrases.txt")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return []string{path}
}

func TestConfigPaths(t *testing.T) {
	paths, err := ConfigPaths()
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.True(t, filepath.IsAbs(paths[0]))
	assert.Equal(t, "threat_statement.txt", filepath.Base(paths[0]))

	_, err = os.Stat(paths[0])
	assert.NoError(t, err)
}

func TestRun(t *testing.T) {
	p := fakeProfiler()
	require.NoError(t, Run(p))

	var steps []string
	for _, s := range p.Samples() {
		steps = append(steps, s.Step)
	}
	assert.Equal(t, []string{
		"resolve config",
		"construct runtime",
		`analyze "i will kill you."`,
		`release result "i will kill you."`,
		`analyze "blah blah some string"`,
		`release result "blah blah some string"`,
		"release runtime",
	}, steps)
}

func TestRun_NilProfiler(t *testing.T) {
	assert.NoError(t, Run(nil))
}

func TestRunWithConfig_Failures(t *testing.T) {
	tests := []struct {
		name      string
		config    func(t *testing.T) []string
		wantErrIs error
	}{
		{
			name: "missing config",
			config: func(t *testing.T) []string {
				return []string{filepath.Join(t.TempDir(), "missing.txt")}
			},
			wantErrIs: fs.ErrNotExist,
		},
		{
			name: "threat not matched",
			config: func(t *testing.T) []string {
				return writeConfig(t, "greeting = word\n---\nhello\n")
			},
			wantErrIs: ErrAssertion,
		},
		{
			name: "benign text matched",
			config: func(t *testing.T) []string {
				return writeConfig(t, "noise = a b\n---\ni\nblah\n---\nwill\nblah\n")
			},
			wantErrIs: ErrAssertion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RunWithConfig(fakeProfiler(), tt.config(t))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErrIs), "got %v", err)
		})
	}
}

func TestProfiler_Deltas(t *testing.T) {
	p := fakeProfiler()
	p.Mark("one")
	p.Mark("two")

	s := p.Samples()
	require.Len(t, s, 2)
	assert.Equal(t, int64(0), s[0].Delta)
	assert.Equal(t, int64(1024), s[1].Delta)
	assert.Equal(t, uint64(2048), s[1].HeapAlloc)

	var buf bytes.Buffer
	require.NoError(t, p.WriteReport(&buf))
	assert.Contains(t, buf.String(), "two")
	assert.Contains(t, buf.String(), "+1.0")
}

func TestProfiler_Nil(t *testing.T) {
	var p *Profiler
	p.Mark("ignored")
	assert.Nil(t, p.Samples())
}
