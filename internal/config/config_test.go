package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/recordprep/internal/parse"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 80.0, cfg.Mapping.Threshold)
	assert.True(t, cfg.Cleaning.Transliterate)
	assert.True(t, cfg.Cleaning.CorrectStates)
	assert.False(t, cfg.Rules.RejectPOBoxes)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.False(t, cfg.Database.Enabled())
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeFile(t, "recordprep.yaml", `
mapping:
  threshold: 85
  scorer: jaro-winkler
  address_synonyms:
    zip_code: [post_zone]
cleaning:
  transliterate: false
rules:
  reject_po_boxes: true
batch:
  workers: 4
server:
  port: 9090
  read_timeout: 5s
database:
  driver: postgres
  dsn: postgres://localhost/recordprep
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 85.0, cfg.Mapping.Threshold)
	assert.Equal(t, "jaro-winkler", cfg.Mapping.Scorer)
	assert.Equal(t, []string{"post_zone"}, cfg.Mapping.AddressSynonyms["zip_code"])
	assert.False(t, cfg.Cleaning.Transliterate)
	assert.True(t, cfg.Cleaning.CorrectStates, "unset keys keep their defaults")
	assert.True(t, cfg.Rules.RejectPOBoxes)
	assert.Equal(t, 4, cfg.Batch.Workers)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.True(t, cfg.Database.Enabled())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "recordprep.yaml", "batch:\n  workers: 4\n")
	t.Setenv("RECORDPREP_WORKERS", "2")
	t.Setenv("RECORDPREP_REJECT_PO_BOXES", "yes")
	t.Setenv("RECORDPREP_API_KEY", "secret")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Batch.Workers)
	assert.True(t, cfg.Rules.RejectPOBoxes)
	assert.Equal(t, "secret", cfg.Auth.APIKey)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"threshold", "mapping:\n  threshold: 120\n"},
		{"scorer", "mapping:\n  scorer: cosine\n"},
		{"workers", "batch:\n  workers: 0\n"},
		{"driver", "database:\n  driver: mysql\n"},
		{"log level", "log:\n  level: chatty\n"},
		{"syntax", "mapping: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "bad.yaml", tt.yaml))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLogger(t *testing.T) {
	log, err := LogConfig{Level: "warn"}.Logger()
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))

	dev, err := LogConfig{Level: "debug", Development: true}.Logger()
	require.NoError(t, err)
	assert.True(t, dev.Core().Enabled(zapcore.DebugLevel))

	_, err = LogConfig{Level: "loud"}.Logger()
	assert.Error(t, err)
}

func TestStandardizerOptions(t *testing.T) {
	cfg := Default()
	cfg.Batch.Workers = 3
	cfg.Mapping.NameSynonyms = map[string][]string{"first_name": {"vorname"}}

	opts, err := cfg.StandardizerOptions()
	require.NoError(t, err)
	assert.Equal(t, 3, opts.Workers)
	assert.NotNil(t, opts.Scorer)
	assert.Equal(t, cfg.Mapping.NameSynonyms, opts.ExtraNameSynonyms)
	assert.Nil(t, opts.ExternalAddress)

	cfg.Parsing.Libpostal = true
	_, err = cfg.StandardizerOptions()
	if parse.LibpostalAvailable {
		assert.NoError(t, err)
	} else {
		assert.ErrorIs(t, err, parse.ErrLibpostalUnavailable)
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := writeFile(t, ".env", `
# comment
export RECORDPREP_TEST_A="quoted value"
RECORDPREP_TEST_B=plain
RECORDPREP_TEST_C=from-file
not a pair
`)
	t.Setenv("RECORDPREP_TEST_C", "from-env")
	t.Cleanup(func() {
		os.Unsetenv("RECORDPREP_TEST_A")
		os.Unsetenv("RECORDPREP_TEST_B")
	})

	require.NoError(t, LoadEnv(filepath.Join(t.TempDir(), "absent.env"), path))
	assert.Equal(t, "quoted value", os.Getenv("RECORDPREP_TEST_A"))
	assert.Equal(t, "plain", GetEnv("RECORDPREP_TEST_B", "default"))
	assert.Equal(t, "from-env", os.Getenv("RECORDPREP_TEST_C"))
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("RECORDPREP_TEST_INT", "7")
	t.Setenv("RECORDPREP_TEST_BAD_INT", "seven")
	t.Setenv("RECORDPREP_TEST_FLOAT", "82.5")
	t.Setenv("RECORDPREP_TEST_BOOL", "off")

	assert.Equal(t, 7, GetEnvInt("RECORDPREP_TEST_INT", 1))
	assert.Equal(t, 1, GetEnvInt("RECORDPREP_TEST_BAD_INT", 1))
	assert.Equal(t, 82.5, GetEnvFloat("RECORDPREP_TEST_FLOAT", 80))
	assert.False(t, GetEnvBool("RECORDPREP_TEST_BOOL", true))
	assert.True(t, GetEnvBool("RECORDPREP_TEST_UNSET", true))
	assert.Equal(t, "fallback", GetEnv("RECORDPREP_TEST_UNSET", "fallback"))
}
