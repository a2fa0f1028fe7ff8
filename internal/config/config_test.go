package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
server:
  port: 8080
database:
  driver: postgres
  host: db.internal
  port: 5432
  user: analyst
  password: secret
  name: memos
minio:
  endpoint: minio.internal:9000
  accessKey: ak
  secretKey: sk
  bucketName: memos
  region: us-east-1
  useSSL: true
ai:
  provider: gemini
  apiKey: test-key
  model: gemini-2.5-pro
auth:
  apiKeys:
    fund-a: key-a
rateLimit:
  capacity: 10
  refillRate: 2
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeTemp(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "gemini", cfg.AI.Provider)
	assert.Equal(t, "gemini-2.5-pro", cfg.AI.Model)
	assert.Equal(t, "key-a", cfg.Auth.APIKeys["fund-a"])
	assert.Equal(t, 10, cfg.RateLimit.Capacity)
	assert.True(t, cfg.Minio.UseSSL)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeTemp(t, "server:\n  port: 9090\n"))
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "openai", cfg.AI.Provider)
}

func TestLoadEnvOverridesSecrets(t *testing.T) {
	t.Setenv("AI_API_KEY", "from-env")
	t.Setenv("DB_PASSWORD", "env-secret")

	cfg, err := Load(writeTemp(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.AI.APIKey)
	assert.Equal(t, "env-secret", cfg.Database.Password)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDSNHelpers(t *testing.T) {
	cfg, err := Load(writeTemp(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t,
		"analyst:secret@tcp(db.internal:5432)/memos?parseTime=true&charset=utf8mb4&loc=UTC",
		cfg.MySQLDSN())
	assert.Equal(t,
		"host=db.internal port=5432 user=analyst password=secret dbname=memos sslmode=disable",
		cfg.PostgresDSN())
}
