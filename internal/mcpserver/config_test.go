package mcpserver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// configEnvKeys lists every variable loadConfig reads.
var configEnvKeys = []string{
	"DOTMAP_SKIP_NULL", "DOTMAP_REINDEX_WILDCARD",
	"DOTMAP_PATH_CACHE_SIZE", "DOTMAP_TEMPLATE_CACHE_SIZE",
	"DOTMAP_MAX_INPUT_SIZE", "DOTMAP_ALLOW_PRIVATE_IPS", "DOTMAP_FETCH_TIMEOUT",
}

// clearDotmapEnv clears all DOTMAP_* env vars to isolate tests from the ambient environment.
func clearDotmapEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvKeys {
		t.Setenv(key, "")
	}
}

func TestServerInstructions_ListSettings(t *testing.T) {
	for _, key := range configEnvKeys {
		assert.Contains(t, serverInstructions, "- "+key+" (default: ", "instructions should document %s", key)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearDotmapEnv(t)

	c := loadConfig()

	assert.True(t, c.SkipNull)
	assert.True(t, c.ReindexWildcard)
	assert.Equal(t, 4096, c.PathCacheSize)
	assert.Equal(t, 64, c.TemplateCacheSize)
	assert.Equal(t, int64(10*1024*1024), c.MaxInputSize)
	assert.False(t, c.AllowPrivateIPs)
	assert.Equal(t, 30*time.Second, c.FetchTimeout)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearDotmapEnv(t)
	t.Setenv("DOTMAP_SKIP_NULL", "false")
	t.Setenv("DOTMAP_REINDEX_WILDCARD", "0")
	t.Setenv("DOTMAP_PATH_CACHE_SIZE", "128")
	t.Setenv("DOTMAP_TEMPLATE_CACHE_SIZE", "8")
	t.Setenv("DOTMAP_MAX_INPUT_SIZE", "5242880")
	t.Setenv("DOTMAP_ALLOW_PRIVATE_IPS", "true")
	t.Setenv("DOTMAP_FETCH_TIMEOUT", "2m")

	c := loadConfig()

	assert.False(t, c.SkipNull)
	assert.False(t, c.ReindexWildcard)
	assert.Equal(t, 128, c.PathCacheSize)
	assert.Equal(t, 8, c.TemplateCacheSize)
	assert.Equal(t, int64(5242880), c.MaxInputSize)
	assert.True(t, c.AllowPrivateIPs)
	assert.Equal(t, 2*time.Minute, c.FetchTimeout)
}

func TestLoadConfig_InvalidValues_UseDefaults(t *testing.T) {
	clearDotmapEnv(t)
	t.Setenv("DOTMAP_SKIP_NULL", "maybe")
	t.Setenv("DOTMAP_PATH_CACHE_SIZE", "banana")
	t.Setenv("DOTMAP_TEMPLATE_CACHE_SIZE", "-5")
	t.Setenv("DOTMAP_MAX_INPUT_SIZE", "0")
	t.Setenv("DOTMAP_FETCH_TIMEOUT", "soon")

	c := loadConfig()

	assert.True(t, c.SkipNull)
	assert.Equal(t, 4096, c.PathCacheSize)
	assert.Equal(t, 64, c.TemplateCacheSize)
	assert.Equal(t, int64(10*1024*1024), c.MaxInputSize)
	assert.Equal(t, 30*time.Second, c.FetchTimeout)
}

func TestParseTimeout(t *testing.T) {
	d, err := parseTimeout("15")
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, d)

	d, err = parseTimeout("1m30s")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)

	_, err = parseTimeout("later")
	assert.Error(t, err)
}

func TestLoadConfig_PartialOverrides(t *testing.T) {
	clearDotmapEnv(t)
	t.Setenv("DOTMAP_REINDEX_WILDCARD", "false")

	c := loadConfig()

	assert.False(t, c.ReindexWildcard)
	assert.True(t, c.SkipNull)
	assert.Equal(t, 4096, c.PathCacheSize)
}
