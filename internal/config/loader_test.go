package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
server:
  port: 8081
  write_timeout: 2m
database:
  driver: sqlite
  path: /tmp/prologos-test.db
redis:
  addr: localhost:6379
kafka:
  brokers: ["localhost:9092"]
  group_id: harvest-workers
datajud:
  api_key: secret-key
  history_size: 25
classifier:
  domains:
    - label: penal
      keywords: [crime, furto]
    - label: civil
      keywords: [contrato]
log:
  level: debug
  format: console
`

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FromFile_ValidConfig(t *testing.T) {
	cfg, err := Load(createTempConfigFile(t, validConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, 2*time.Minute, cfg.Server.WriteTimeout)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "/tmp/prologos-test.db", cfg.Database.Path)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "secret-key", cfg.DataJud.APIKey)
	assert.Equal(t, 25, cfg.DataJud.HistorySize)
	assert.Equal(t, DefaultDataJudBaseURL, cfg.DataJud.BaseURL)

	require.Len(t, cfg.Classifier.Domains, 2)
	assert.Equal(t, "penal", cfg.Classifier.Domains[0].Label)
	assert.Equal(t, []string{"crime", "furto"}, cfg.Classifier.Domains[0].Keywords)
	assert.Len(t, cfg.Classifier.Risks, 3, "risk table falls back to defaults")
}

func TestLoad_FromFile_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrConfigFileNotFound)
}

func TestLoad_FromFile_InvalidYAML(t *testing.T) {
	_, err := Load(createTempConfigFile(t, "server: ["))
	assert.ErrorIs(t, err, ErrConfigParseError)
}

func TestLoad_FromFile_ValidationFailure(t *testing.T) {
	_, err := Load(createTempConfigFile(t, "server:\n  port: 70000\n"))
	assert.ErrorIs(t, err, ErrConfigValidation)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	t.Setenv("JURIS_SERVER_PORT", "9999")
	t.Setenv("JURIS_DATAJUD_TIMEOUT", "5s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.DataJud.Timeout)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("JURIS_DATABASE_DRIVER", "sqlite")
	t.Setenv("JURIS_DATABASE_PATH", "/var/lib/prologos.db")
	t.Setenv("JURIS_LLM_API_KEY", "gsk_test")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "/var/lib/prologos.db", cfg.Database.Path)
	assert.Equal(t, "gsk_test", cfg.LLM.APIKey)
}

func TestLoadAuto_UsesEnvPath(t *testing.T) {
	t.Setenv(ConfigPathEnv, createTempConfigFile(t, validConfigYAML))

	cfg, err := LoadAuto("")
	require.NoError(t, err)
	assert.Equal(t, 8081, cfg.Server.Port)
}

func TestMustLoad_PanicsOnMissingFile(t *testing.T) {
	assert.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "nope.yaml")) })
}

func TestWatch_ReportsChanges(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)

	changed := make(chan *Config, 16)
	notify := func(c *Config) {
		select {
		case changed <- c:
		default:
		}
	}
	require.NoError(t, Watch(path, notify, nil))

	updated := []byte(validConfigYAML + "\nmetrics:\n  enabled: true\n")
	require.NoError(t, os.WriteFile(path, updated, 0o644))

	// A rewrite may surface as several write events; wait for the final state.
	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-changed:
			if cfg.Metrics.Enabled {
				return
			}
		case <-deadline:
			t.Fatal("expected a config change notification with metrics enabled")
		}
	}
}

func TestWatch_MissingFile(t *testing.T) {
	err := Watch(filepath.Join(t.TempDir(), "absent.yaml"), func(*Config) {}, nil)
	assert.ErrorIs(t, err, ErrConfigParseError)
}

//Personal.AI order the ending
