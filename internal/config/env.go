package config

import (
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/seogen/internal/foundation/errors"
)

// Environment variables recognised on top of the config file.
const (
	EnvCitiesURL   = "SEOGEN_CITIES_URL"
	EnvProductsURL = "SEOGEN_PRODUCTS_URL"
	EnvDomain      = "SEOGEN_DOMAIN"
	EnvOutputDir   = "SEOGEN_OUTPUT_DIR"
	EnvConcurrency = "SEOGEN_CONCURRENCY"
	EnvTimeout     = "SEOGEN_TIMEOUT"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// LoadEnvFiles loads .env and .env.local when present. Variables already set in the
// process environment win.
func LoadEnvFiles() {
	for _, p := range []string{".env", ".env.local"} {
		_ = godotenv.Load(p)
	}
}

// ApplyEnv overrides cfg with SEOGEN_* variables resolved through lookup.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str(EnvCitiesURL, &cfg.Sources.CitiesURL)
	str(EnvProductsURL, &cfg.Sources.ProductsURL)
	str(EnvDomain, &cfg.Site.Domain)
	str(EnvOutputDir, &cfg.Output.Dir)

	if v, ok := lookup(EnvConcurrency); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return errors.WrapError(err, errors.CategoryConfig, "invalid concurrency in environment").
				WithContext("var", EnvConcurrency).Fatal().Build()
		}
		cfg.Generation.Concurrency = n
	}
	if v, ok := lookup(EnvTimeout); ok && v != "" {
		d, err := ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return errors.WrapError(err, errors.CategoryConfig, "invalid timeout in environment").
				WithContext("var", EnvTimeout).Fatal().Build()
		}
		cfg.Sources.Timeout = d
	}
	return nil
}
