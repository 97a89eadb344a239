package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/seogen/internal/foundation/errors"
)

// Config represents the generator configuration.
type Config struct {
	Site        SiteConfig       `yaml:"site"`
	Sources     SourcesConfig    `yaml:"sources"`
	Output      OutputConfig     `yaml:"output"`
	Generation  GenerationConfig `yaml:"generation"`
	StaticPages []StaticPage     `yaml:"static_pages"`
	Sitemap     SitemapConfig    `yaml:"sitemap"`
	Robots      RobotsConfig     `yaml:"robots"`
	Notify      NotifyConfig     `yaml:"notify"`
	History     HistoryConfig    `yaml:"history"`
	Metrics     MetricsConfig    `yaml:"metrics"`
	Log         LogConfig        `yaml:"log"`
}

// SiteConfig describes the public storefront the pages are generated for.
type SiteConfig struct {
	Domain string `yaml:"domain"`
	Name   string `yaml:"name"`
	Locale string `yaml:"locale"`
	// LocativeSuffix is appended to city names missing from the locative table.
	LocativeSuffix string `yaml:"default_locative_suffix"`
	// Image is the absolute URL used for og:image when an entity has none.
	Image string `yaml:"image,omitempty"`
}

// SourcesConfig holds the remote JSON endpoints.
type SourcesConfig struct {
	CitiesURL   string      `yaml:"cities_url"`
	ProductsURL string      `yaml:"products_url"`
	Timeout     Duration    `yaml:"timeout"`
	Retry       RetryConfig `yaml:"retry"`
}

// RetryConfig mirrors retry.Policy in config form.
type RetryConfig struct {
	MaxRetries int      `yaml:"max_retries"`
	Initial    Duration `yaml:"initial"`
	Max        Duration `yaml:"max"`
	Mode       string   `yaml:"mode"`
}

// OutputConfig locates the build output and the shell document inside it.
type OutputConfig struct {
	Dir string `yaml:"dir"`
	// Shell defaults to <dir>/index.html.
	Shell         string `yaml:"shell,omitempty"`
	Atomic        bool   `yaml:"atomic"`
	SkipUnchanged bool   `yaml:"skip_unchanged"`
	// Report, when set, receives the generation report as JSON.
	Report string `yaml:"report,omitempty"`
}

// ShellPath returns the configured shell path or the default inside Dir.
func (o OutputConfig) ShellPath() string {
	if o.Shell != "" {
		return o.Shell
	}
	return filepath.Join(o.Dir, "index.html")
}

// GenerationConfig tunes the per-entity worker pool and the verify stage.
type GenerationConfig struct {
	Concurrency   int `yaml:"concurrency"`
	VerifySamples int `yaml:"verify_samples"`
}

// StaticPage is a fixed route generated on every run.
type StaticPage struct {
	Path        string  `yaml:"path"`
	Title       string  `yaml:"title"`
	Description string  `yaml:"description"`
	Priority    float64 `yaml:"priority,omitempty"`
	ChangeFreq  string  `yaml:"changefreq,omitempty"`
}

type SitemapConfig struct {
	Enabled bool `yaml:"enabled"`
	// LastMod is written verbatim into every <lastmod>; empty omits the element.
	LastMod string `yaml:"lastmod,omitempty"`
}

type RobotsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// NotifyConfig configures post-run notifications. Both sinks are optional.
type NotifyConfig struct {
	IndexNow IndexNowConfig `yaml:"indexnow"`
	NATS     NATSConfig     `yaml:"nats"`
}

type IndexNowConfig struct {
	Endpoint string `yaml:"endpoint"`
	Key      string `yaml:"key"`
}

// Enabled reports whether IndexNow submission is configured.
func (c IndexNowConfig) Enabled() bool { return c.Endpoint != "" && c.Key != "" }

type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

func (c NATSConfig) Enabled() bool { return c.URL != "" }

type HistoryConfig struct {
	DB string `yaml:"db"`
}

type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads the YAML file at path over the defaults, then applies .env files and
// SEOGEN_* environment overrides. A missing file is not an error so the tool runs
// with no flags at all.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, errors.WrapError(err, errors.CategoryConfig, "parse config file").
					WithContext("path", path).Fatal().Build()
			}
		case os.IsNotExist(err):
		default:
			return nil, errors.WrapError(err, errors.CategoryConfig, "read config file").
				WithContext("path", path).Fatal().Build()
		}
	}
	LoadEnvFiles()
	if err := ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
