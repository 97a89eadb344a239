package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/seogen/internal/foundation/errors"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "florustic.ru", cfg.Site.Domain)
	assert.Equal(t, 8, cfg.Generation.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.Sources.Timeout.Duration())
	assert.Equal(t, filepath.Join("dist", "index.html"), cfg.Output.ShellPath())

	paths := make([]string, 0, len(cfg.StaticPages))
	for _, p := range cfg.StaticPages {
		paths = append(paths, p.Path)
	}
	assert.Equal(t, []string{"catalog", "delivery", "about", "contacts", "reviews"}, paths)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultDomain, cfg.Site.Domain)
}

func TestLoadFile(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "seogen.yaml")
	content := `
site:
  domain: example.ru
sources:
  cities_url: http://127.0.0.1:9/cities
  timeout: 5s
  retry:
    max_retries: 2
    initial: 10
    mode: exponential
output:
  dir: out
  shell: out/shell.html
generation:
  concurrency: 3
static_pages:
  - path: catalog
    title: Каталог
    description: Все букеты
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "example.ru", cfg.Site.Domain)
	assert.Equal(t, "FloRustic", cfg.Site.Name, "unset keys keep defaults")
	assert.Equal(t, 5*time.Second, cfg.Sources.Timeout.Duration())
	assert.Equal(t, 10*time.Second, cfg.Sources.Retry.Initial.Duration())
	assert.Equal(t, 2, cfg.Sources.Retry.MaxRetries)
	assert.Equal(t, "out/shell.html", cfg.Output.ShellPath())
	assert.Equal(t, 3, cfg.Generation.Concurrency)
	require.Len(t, cfg.StaticPages, 1)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("site: [unclosed"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvCitiesURL:   "http://localhost/c",
		EnvProductsURL: "http://localhost/p",
		EnvDomain:      "shop.example",
		EnvOutputDir:   "/tmp/out",
		EnvConcurrency: "2",
		EnvTimeout:     "45s",
	}
	lookup := func(k string) (string, bool) { v, ok := env[k]; return v, ok }

	cfg := Default()
	require.NoError(t, ApplyEnv(cfg, lookup))
	assert.Equal(t, "http://localhost/c", cfg.Sources.CitiesURL)
	assert.Equal(t, "http://localhost/p", cfg.Sources.ProductsURL)
	assert.Equal(t, "shop.example", cfg.Site.Domain)
	assert.Equal(t, "/tmp/out", cfg.Output.Dir)
	assert.Equal(t, 2, cfg.Generation.Concurrency)
	assert.Equal(t, 45*time.Second, cfg.Sources.Timeout.Duration())
}

func TestApplyEnvInvalidConcurrency(t *testing.T) {
	lookup := func(k string) (string, bool) {
		if k == EnvConcurrency {
			return "many", true
		}
		return "", false
	}
	err := ApplyEnv(Default(), lookup)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestLoadEnvFilesDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(".env", []byte("SEOGEN_DOMAIN=from-file.ru\nSEOGEN_OUTPUT_DIR=envdist\n"), 0o600))
	t.Setenv(EnvDomain, "from-process.ru")
	t.Setenv(EnvOutputDir, "")
	require.NoError(t, os.Unsetenv(EnvOutputDir))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-process.ru", cfg.Site.Domain)
	assert.Equal(t, "envdist", cfg.Output.Dir)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty domain", func(c *Config) { c.Site.Domain = "" }},
		{"domain with scheme", func(c *Config) { c.Site.Domain = "https://florustic.ru" }},
		{"zero concurrency", func(c *Config) { c.Generation.Concurrency = 0 }},
		{"relative cities url", func(c *Config) { c.Sources.CitiesURL = "/api/cities" }},
		{"unknown retry mode", func(c *Config) { c.Sources.Retry.Mode = "random" }},
		{"empty static path", func(c *Config) { c.StaticPages[0].Path = "" }},
		{"absolute static path", func(c *Config) { c.StaticPages[0].Path = "/catalog" }},
		{"escaping static path", func(c *Config) { c.StaticPages[0].Path = "../etc" }},
		{"duplicate static path", func(c *Config) { c.StaticPages[1].Path = c.StaticPages[0].Path }},
		{"indexnow without key", func(c *Config) { c.Notify.IndexNow.Endpoint = "https://yandex.com/indexnow" }},
		{"empty output dir", func(c *Config) { c.Output.Dir = " " }},
		{"unknown changefreq", func(c *Config) { c.StaticPages[0].ChangeFreq = "sometimes" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
		})
	}
}

func TestParseDuration(t *testing.T) {
	d, err := ParseDuration("1m30s")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d.Duration())

	d, err = ParseDuration("7")
	require.NoError(t, err)
	assert.Equal(t, 7*time.Second, d.Duration())

	_, err = ParseDuration("soon")
	require.Error(t, err)
}

func TestNormalizeRetryBackoff(t *testing.T) {
	assert.Equal(t, RetryBackoffExponential, NormalizeRetryBackoff(" Exponential "))
	assert.Equal(t, RetryBackoffMode(""), NormalizeRetryBackoff("jitter"))
}

func TestNormalizeLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelWarn, NormalizeLogLevel("WARNING"))
	assert.Equal(t, LogLevelInfo, NormalizeLogLevel(""))
	assert.Equal(t, LogFormatJSON, NormalizeLogFormat("JSON"))
}
