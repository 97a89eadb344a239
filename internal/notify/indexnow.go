package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"git.home.luguber.info/inful/seogen/internal/foundation/errors"
)

// MaxIndexNowURLs is the protocol limit on URLs per submission.
const MaxIndexNowURLs = 10000

type indexNowRequest struct {
	Host        string   `json:"host"`
	Key         string   `json:"key"`
	KeyLocation string   `json:"keyLocation"`
	URLList     []string `json:"urlList"`
}

// IndexNow submits changed URLs to an IndexNow endpoint.
type IndexNow struct {
	Endpoint string
	Host     string
	Key      string
	// KeyLocation defaults to https://<host>/<key>.txt.
	KeyLocation string
	Client      *http.Client
}

// NewIndexNow returns an IndexNow notifier with a bounded HTTP client.
func NewIndexNow(endpoint, host, key string) *IndexNow {
	return &IndexNow{
		Endpoint: endpoint,
		Host:     host,
		Key:      key,
		Client:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (n *IndexNow) Name() string { return "indexnow" }

func (n *IndexNow) keyLocation() string {
	if n.KeyLocation != "" {
		return n.KeyLocation
	}
	return "https://" + n.Host + "/" + n.Key + ".txt"
}

// Notify posts the summary URLs in batches of MaxIndexNowURLs.
func (n *IndexNow) Notify(ctx context.Context, s Summary) error {
	for start := 0; start < len(s.URLs); start += MaxIndexNowURLs {
		end := min(start+MaxIndexNowURLs, len(s.URLs))
		if err := n.submit(ctx, s.URLs[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (n *IndexNow) submit(ctx context.Context, urls []string) error {
	body, err := json.Marshal(indexNowRequest{
		Host:        n.Host,
		Key:         n.Key,
		KeyLocation: n.keyLocation(),
		URLList:     urls,
	})
	if err != nil {
		return fmt.Errorf("marshal indexnow request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.Endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.WrapError(err, errors.CategoryNetwork, "build indexnow request").
			WithContext("endpoint", n.Endpoint).Build()
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	client := n.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return errors.WrapError(err, errors.CategoryNetwork, "indexnow request failed").
			WithContext("endpoint", n.Endpoint).Retryable().Build()
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return errors.NetworkError(fmt.Sprintf("indexnow returned status %d", resp.StatusCode)).
			WithContext("endpoint", n.Endpoint).
			WithContext("status", resp.StatusCode).Build()
	}
	return nil
}
