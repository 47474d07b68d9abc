package blogvault_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogvault/blogvault"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := blogvault.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, blogvault.BackendBBolt, cfg.Backend)
	assert.Equal(t, 30, cfg.CoverMaxAgeDays)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blogvault.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr = ":9090"
backend = "sqlite"
data_dir = "/tmp/blog"
admin_password = "hunter2"
cors_origins = ["https://blog.example.com"]
cover_max_age_days = 7
`), 0644))

	cfg, err := blogvault.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, blogvault.BackendSQLite, cfg.Backend)
	assert.Equal(t, "/tmp/blog", cfg.DataDir)
	assert.Equal(t, "hunter2", cfg.AdminPassword)
	assert.Equal(t, []string{"https://blog.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, 7, cfg.CoverMaxAgeDays)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("BLOGVAULT_ADDR", ":7070")
	t.Setenv("BLOGVAULT_BACKEND", "sqlite")
	t.Setenv("BLOGVAULT_CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := blogvault.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Addr)
	assert.Equal(t, blogvault.BackendSQLite, cfg.Backend)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
}

func TestLoadConfig_UnknownBackend(t *testing.T) {
	t.Setenv("BLOGVAULT_BACKEND", "redis")

	_, err := blogvault.LoadConfig("")
	assert.Error(t, err)
}
