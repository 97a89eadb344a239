package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"git.home.luguber.info/inful/seogen/internal/foundation/errors"
	"git.home.luguber.info/inful/seogen/internal/logfields"
	"git.home.luguber.info/inful/seogen/internal/retry"
)

// Entity classes as used in logs, errors and the report.
const (
	ClassCities   = "cities"
	ClassProducts = "products"
)

const maxBodyBytes = 32 << 20

// Client fetches the remote datasets. Retry behaviour is an implementation detail.
type Client interface {
	FetchCities(ctx context.Context) ([]City, error)
	FetchProducts(ctx context.Context) ([]Product, error)
}

// HTTPClient implements Client over plain HTTP GET requests.
type HTTPClient struct {
	citiesURL   string
	productsURL string
	timeout     time.Duration
	policy      retry.Policy
	http        *http.Client
	sanitizer   *bluemonday.Policy
	logger      *slog.Logger
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) { h.http = c }
}

// WithRetryPolicy enables retries of failed fetches.
func WithRetryPolicy(p retry.Policy) Option {
	return func(h *HTTPClient) { h.policy = p }
}

// WithTimeout bounds each request attempt.
func WithTimeout(d time.Duration) Option {
	return func(h *HTTPClient) { h.timeout = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(h *HTTPClient) { h.logger = l }
}

// NewHTTPClient creates a client for the two endpoints.
func NewHTTPClient(citiesURL, productsURL string, opts ...Option) *HTTPClient {
	h := &HTTPClient{
		citiesURL:   citiesURL,
		productsURL: productsURL,
		timeout:     30 * time.Second,
		policy:      retry.DefaultPolicy(),
		http:        &http.Client{},
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *HTTPClient) FetchCities(ctx context.Context) ([]City, error) {
	var cities []City
	err := h.fetch(ctx, ClassCities, h.citiesURL, func(body []byte) error {
		var err error
		cities, err = DecodeCities(body)
		return err
	})
	return cities, err
}

func (h *HTTPClient) FetchProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	err := h.fetch(ctx, ClassProducts, h.productsURL, func(body []byte) error {
		var err error
		products, err = DecodeProducts(body, h.sanitizer)
		return err
	})
	return products, err
}

// fetch performs the GET with retries and hands the body to decode. Every failure
// surfaces as source_unavailable for the class.
func (h *HTTPClient) fetch(ctx context.Context, class, url string, decode func([]byte) error) error {
	start := time.Now()
	retries, err := h.policy.Do(ctx, isTransient, func(ctx context.Context) error {
		body, err := h.get(ctx, url)
		if err != nil {
			return err
		}
		if err := decode(body); err != nil {
			return &statusError{msg: err.Error(), permanent: true}
		}
		return nil
	})
	if err != nil {
		h.logger.Warn("Fetch failed",
			logfields.Class(class), logfields.URL(url), logfields.Attempt(retries+1), logfields.Error(err))
		return errors.SourceUnavailableError(class, url, err)
	}
	h.logger.Debug("Fetched dataset",
		logfields.Class(class), logfields.URL(url), logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
	return nil
}

func (h *HTTPClient) get(ctx context.Context, url string) ([]byte, error) {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &statusError{msg: err.Error(), permanent: true}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "seogen")

	resp, err := h.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &statusError{
			msg:       fmt.Sprintf("unexpected status %d", resp.StatusCode),
			permanent: resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests,
		}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

type statusError struct {
	msg       string
	permanent bool
}

func (e *statusError) Error() string { return e.msg }

func isTransient(err error) bool {
	if se, ok := err.(*statusError); ok {
		return !se.permanent
	}
	return true
}
