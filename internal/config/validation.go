package config

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"git.home.luguber.info/inful/seogen/internal/foundation/errors"
	"git.home.luguber.info/inful/seogen/internal/foundation/normalization"
)

// changeFreqs are the sitemap protocol's changefreq values.
var changeFreqs = normalization.NewNormalizer(map[string]string{
	"always":  "always",
	"hourly":  "hourly",
	"daily":   "daily",
	"weekly":  "weekly",
	"monthly": "monthly",
	"yearly":  "yearly",
	"never":   "never",
}, "")

// Validate checks the configuration for values the generator cannot run with.
func (c *Config) Validate() error {
	return newConfigurationValidator(c).validate()
}

type configurationValidator struct {
	config *Config
}

func newConfigurationValidator(config *Config) *configurationValidator {
	return &configurationValidator{config: config}
}

func (cv *configurationValidator) validate() error {
	for _, check := range []func() error{
		cv.validateSite,
		cv.validateSources,
		cv.validateGeneration,
		cv.validateStaticPages,
		cv.validateNotify,
	} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (cv *configurationValidator) validateSite() error {
	domain := strings.TrimSpace(cv.config.Site.Domain)
	if domain == "" {
		return errors.ValidationError("site domain must not be empty").Build()
	}
	if strings.Contains(domain, "/") || strings.Contains(domain, " ") {
		return errors.ValidationError("site domain must be a bare host name").
			WithContext("domain", domain).Build()
	}
	if cv.config.Site.Name == "" {
		return errors.ValidationError("site name must not be empty").Build()
	}
	return nil
}

func (cv *configurationValidator) validateSources() error {
	for name, raw := range map[string]string{
		"cities_url":   cv.config.Sources.CitiesURL,
		"products_url": cv.config.Sources.ProductsURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return errors.ValidationError(fmt.Sprintf("sources.%s must be an absolute http(s) URL", name)).
				WithContext("url", raw).Build()
		}
	}
	if cv.config.Sources.Timeout < 0 {
		return errors.ValidationError("sources.timeout must not be negative").Build()
	}
	rc := cv.config.Sources.Retry
	if rc.MaxRetries < 0 {
		return errors.ValidationError("sources.retry.max_retries must not be negative").Build()
	}
	if rc.Mode != "" && NormalizeRetryBackoff(rc.Mode) == "" {
		return errors.ValidationError("sources.retry.mode must be fixed, linear or exponential").
			WithContext("mode", rc.Mode).Build()
	}
	return nil
}

func (cv *configurationValidator) validateGeneration() error {
	if cv.config.Generation.Concurrency <= 0 {
		return errors.ValidationError("generation.concurrency must be positive").
			WithContext("concurrency", cv.config.Generation.Concurrency).Build()
	}
	if cv.config.Generation.VerifySamples < 0 {
		return errors.ValidationError("generation.verify_samples must not be negative").Build()
	}
	if strings.TrimSpace(cv.config.Output.Dir) == "" {
		return errors.ValidationError("output.dir must not be empty").Build()
	}
	return nil
}

func (cv *configurationValidator) validateStaticPages() error {
	seen := make(map[string]struct{}, len(cv.config.StaticPages))
	for i, p := range cv.config.StaticPages {
		if err := ValidateStaticPath(p.Path); err != nil {
			return errors.ValidationError(err.Error()).WithContext("index", i).Build()
		}
		if _, dup := seen[p.Path]; dup {
			return errors.ValidationError("duplicate static page path").
				WithContext("path", p.Path).Build()
		}
		seen[p.Path] = struct{}{}
		if p.Priority < 0 || p.Priority > 1 {
			return errors.ValidationError("static page priority must be within [0,1]").
				WithContext("path", p.Path).Build()
		}
		if p.ChangeFreq != "" {
			if _, err := changeFreqs.NormalizeWithError(p.ChangeFreq); err != nil {
				return errors.WrapError(err, errors.CategoryValidation, "invalid static page changefreq").
					WithContext("path", p.Path).Build()
			}
		}
	}
	return nil
}

func (cv *configurationValidator) validateNotify() error {
	in := cv.config.Notify.IndexNow
	if (in.Endpoint == "") != (in.Key == "") {
		return errors.ValidationError("notify.indexnow requires both endpoint and key").Build()
	}
	if cv.config.Notify.NATS.URL != "" && cv.config.Notify.NATS.Subject == "" {
		return errors.ValidationError("notify.nats.subject must not be empty").Build()
	}
	return nil
}

// ValidateStaticPath rejects empty, absolute and escaping static route paths.
func ValidateStaticPath(p string) error {
	if strings.TrimSpace(p) == "" {
		return fmt.Errorf("static page path must not be empty")
	}
	if strings.HasPrefix(p, "/") || strings.Contains(p, "\\") {
		return fmt.Errorf("static page path %q must be relative", p)
	}
	if path.Clean(p) != p {
		return fmt.Errorf("static page path %q is not clean", p)
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." || seg == "." {
			return fmt.Errorf("static page path %q escapes the output directory", p)
		}
	}
	return nil
}
