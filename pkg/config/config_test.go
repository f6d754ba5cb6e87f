package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	c := DefaultConfig()
	require.NoError(t, c.Validate())
	assert.Equal(t, "plt", c.Extract.Prefix)
	assert.Equal(t, "matplotlib.pyplot", c.Extract.ImportModule)
	assert.Equal(t, "text", c.Report.Format)
	assert.Equal(t, 3, c.Report.Precision)
}

func TestInitConfigCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	c, err := InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), c)
	assert.FileExists(t, path)

	again, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, c, again)
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.toml", `
[extract]
prefix = "ax"
require_parens = true
trim_parens = true

[report]
limit = 5
format = "json"
`)
	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "ax", c.Extract.Prefix)
	assert.True(t, c.Extract.RequireParens)
	assert.True(t, c.Extract.TrimParens)
	assert.Equal(t, 5, c.Report.Limit)
	assert.Equal(t, "json", c.Report.Format)
	// untouched sections keep defaults
	assert.Equal(t, 3, c.Report.Precision)
	assert.Equal(t, 16, c.Server.CacheSize)
}

func TestLoadConfigPartialRecovery(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.toml", `
[extract]
prefix = "ax"

[analysis]
workers = "four"

[server]
http_addr = ":9999"
`)
	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "ax", c.Extract.Prefix)
	assert.Equal(t, DefaultConfig().Analysis.Workers, c.Analysis.Workers)
	assert.Equal(t, ":9999", c.Server.HTTPAddr)
}

func TestLoadConfigGarbage(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.toml", "[[[ not toml")
	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), c)
}

func TestLoadConfigWithPriorityEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(EnvPrefix, "sns")
	t.Setenv(EnvFormat, "MSGPACK")
	t.Setenv(EnvHTTPAddr, "127.0.0.1:0")

	path := writeFile(t, t.TempDir(), "custom.toml", "[extract]\nprefix = \"ax\"\n")
	c, used, err := LoadConfigWithPriority(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, "sns", c.Extract.Prefix)
	assert.Equal(t, "msgpack", c.Report.Format)
	assert.Equal(t, "127.0.0.1:0", c.Server.HTTPAddr)
}

func TestLoadConfigWithPriorityInvalid(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	path := writeFile(t, t.TempDir(), "custom.toml", "[report]\nformat = \"xml\"\n")
	_, _, err := LoadConfigWithPriority(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		mutate      func(*Config)
		description string
	}{
		{func(c *Config) { c.Extract.Prefix = "" }, "empty prefix"},
		{func(c *Config) { c.Extract.Prefix = "plt(" }, "prefix with special chars"},
		{func(c *Config) { c.Report.Format = "yaml" }, "unknown format"},
		{func(c *Config) { c.Report.Limit = -1 }, "negative limit"},
		{func(c *Config) { c.Report.Precision = 20 }, "precision too large"},
		{func(c *Config) { c.Analysis.Workers = 0 }, "no workers"},
		{func(c *Config) { c.Server.CacheSize = 0 }, "empty cache"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			c := DefaultConfig()
			tc.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestAnalysisOptions(t *testing.T) {
	c := DefaultConfig()
	c.Extract.RequireParens = true
	c.Extract.DetectPrefix = true
	c.Report.Limit = 2

	opts := c.AnalysisOptions()
	assert.True(t, opts.Extract.RequireParens)
	assert.False(t, opts.Extract.TrimParens)
	c.Extract.TrimParens = true
	assert.True(t, c.AnalysisOptions().Extract.TrimParens)
	assert.True(t, opts.DetectPrefix)
	assert.Equal(t, "plt", opts.Prefix)
	assert.Equal(t, 2, opts.Limit)
	assert.Equal(t, c.Analysis.Workers, opts.Workers)
}
