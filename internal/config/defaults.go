package config

import "time"

const (
	DefaultDomain         = "florustic.ru"
	DefaultSiteName       = "FloRustic"
	DefaultLocale         = "ru_RU"
	DefaultLocativeSuffix = "е"
	DefaultOutputDir      = "dist"
	DefaultConcurrency    = 8
	DefaultVerifySamples  = 5
	DefaultTimeout        = 30 * time.Second
	DefaultNATSSubject    = "seogen.run.completed"

	DefaultCitiesURL   = "https://functions.poehali.dev/3f4d37f0-b84f-4157-83b7-55bdb568e459?action=list"
	DefaultProductsURL = "https://functions.poehali.dev/f3ffc9b4-fbea-48e8-959d-c34ea68e6531?action=list"
)

// Default returns the storefront configuration used when no file is given.
func Default() *Config {
	return &Config{
		Site: SiteConfig{
			Domain:         DefaultDomain,
			Name:           DefaultSiteName,
			Locale:         DefaultLocale,
			LocativeSuffix: DefaultLocativeSuffix,
		},
		Sources: SourcesConfig{
			CitiesURL:   DefaultCitiesURL,
			ProductsURL: DefaultProductsURL,
			Timeout:     Duration(DefaultTimeout),
			Retry: RetryConfig{
				MaxRetries: 0,
				Initial:    Duration(time.Second),
				Max:        Duration(30 * time.Second),
				Mode:       string(RetryBackoffLinear),
			},
		},
		Output: OutputConfig{
			Dir:    DefaultOutputDir,
			Atomic: true,
		},
		Generation: GenerationConfig{
			Concurrency:   DefaultConcurrency,
			VerifySamples: DefaultVerifySamples,
		},
		StaticPages: DefaultStaticPages(),
		Sitemap:     SitemapConfig{Enabled: true},
		Robots:      RobotsConfig{Enabled: true},
		Notify: NotifyConfig{
			NATS: NATSConfig{Subject: DefaultNATSSubject},
		},
		Log: LogConfig{Level: string(LogLevelInfo), Format: string(LogFormatText)},
	}
}

// DefaultStaticPages returns the fixed storefront routes.
func DefaultStaticPages() []StaticPage {
	return []StaticPage{
		{
			Path:        "catalog",
			Title:       "Каталог букетов | FloRustic — Доставка цветов",
			Description: "Служба доставки цветов FloRustic. Каталог: более 500 букетов. Розы, тюльпаны, пионы. Цены от 990₽!",
			Priority:    0.9,
			ChangeFreq:  "daily",
		},
		{
			Path:        "delivery",
			Title:       "Доставка цветов по России | FloRustic",
			Description: "Служба доставки цветов FloRustic по России. Доставка за 1.5 часа. Работаем 24/7 без выходных!",
			Priority:    0.7,
			ChangeFreq:  "monthly",
		},
		{
			Path:        "about",
			Title:       "О нас | FloRustic — Доставка цветов",
			Description: "Служба доставки цветов FloRustic. Профессиональные флористы, свежие букеты, доставка за 2 часа.",
			Priority:    0.6,
			ChangeFreq:  "monthly",
		},
		{
			Path:        "contacts",
			Title:       "Контакты | FloRustic — Доставка цветов",
			Description: "Контакты службы доставки цветов FloRustic. Работаем 24/7 по всей России.",
			Priority:    0.6,
			ChangeFreq:  "monthly",
		},
		{
			Path:        "reviews",
			Title:       "Отзывы клиентов | FloRustic — Доставка цветов",
			Description: "Отзывы клиентов о доставке цветов FloRustic. Реальные отзывы о качестве букетов и сервисе.",
			Priority:    0.7,
			ChangeFreq:  "weekly",
		},
	}
}
