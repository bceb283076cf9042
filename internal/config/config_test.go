package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
server:
  port: "9090"
  rateLimit: 30
admin:
  password: secret
timer:
  panicTickRate: 250ms
quiz:
  catalog:
    - id: quiz-1
      title: Arithmetic
      questions:
        - type: QCM
          text: What is 2 + 2?
          points: 10
          choices:
            - text: "3"
            - text: "4"
              isCorrect: true
`

func TestLoadParsesYAMLAndCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 30, cfg.Server.RateLimit)
	assert.Equal(t, "secret", cfg.Admin.Password)
	require.Len(t, cfg.Quiz.Catalog, 1)
	assert.Equal(t, "Arithmetic", cfg.Quiz.Catalog[0].Title)
	require.Len(t, cfg.Quiz.Catalog[0].Questions[0].Choices, 2)
	assert.True(t, cfg.Quiz.Catalog[0].Questions[0].Choices[1].IsCorrect)
	assert.Equal(t, 250*time.Millisecond, TTLDuration(cfg.Timer.PanicTickRate, time.Second))
}

func TestLoadMissingFileUsesEnv(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "from-env")
	t.Setenv("PORT", "7000")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Admin.Password)
	assert.Equal(t, "7000", cfg.Server.Port)
}

func TestTTLDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, TTLDuration("", time.Minute))
	assert.Equal(t, time.Minute, TTLDuration("garbage", time.Minute))
	assert.Equal(t, 5*time.Second, TTLDuration("5s", time.Minute))
}
