package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "application.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFile_DefaultsApplied(t *testing.T) {
	path := writeConfig(t, "server:\n  addr: \":9090\"\n")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, 5432, cfg.Postgres.Port)
	assert.Equal(t, "disable", cfg.Postgres.SSLMode)
	assert.False(t, cfg.Postgres.Enabled)
	assert.Equal(t, "phrase_config_change", cfg.Listener.Channel)
	assert.Equal(t, 5*time.Second, cfg.Backoff())
	assert.Equal(t, 3, cfg.Analysis.DestutterMaxConsecutive)
	assert.True(t, cfg.Analysis.ReplaceHTMLEntities)
	assert.Empty(t, cfg.Phrases.Files)
}

func TestLoadFile_Values(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":7000"
  log_level: debug
phrases:
  files:
    - testdata/threat_statement.txt
    - testdata/plaudit.txt
analysis:
  destutter_max_consecutive: 2
  replace_html_entities: false
postgres:
  enabled: true
  host: db
  user: phraser
  password: secret
  db_name: phrases
listener:
  reconnect_seconds: 1
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"testdata/threat_statement.txt", "testdata/plaudit.txt"}, cfg.Phrases.Files)
	assert.Equal(t, 2, cfg.Analysis.DestutterMaxConsecutive)
	assert.False(t, cfg.Analysis.ReplaceHTMLEntities)
	assert.True(t, cfg.Postgres.Enabled)
	assert.Equal(t, "postgres://phraser:secret@db:5432/phrases?sslmode=disable", cfg.DSN())
	assert.Equal(t, "postgres://***:***@db:5432/phrases", cfg.DSNRedacted())
	assert.Equal(t, time.Second, cfg.Backoff())
}

func TestLoadFile_EnvOverride(t *testing.T) {
	path := writeConfig(t, "server:\n  addr: \":9090\"\n")
	t.Setenv("PHRASER_SERVER_ADDR", ":9999")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Server.Addr)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("whatever"))
}
