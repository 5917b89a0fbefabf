package membership

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"profiling/pkg/platform/sentinel"
)

// Client looks up a membership record downstream. Implementations return
// sentinel.ErrNotFound when the downstream answers that the record does not
// exist, and sentinel.ErrUnavailable (wrapped) for any transport or
// availability fault.
type Client interface {
	Lookup(ctx context.Context, bearer string, membershipID int) (Membership, error)
}

// HTTPClient calls the membership authority over HTTP, forwarding the caller's
// bearer credential.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient builds a client for the authority at baseURL, e.g.
// "http://membership:8080/membership".
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Lookup(ctx context.Context, bearer string, membershipID int) (Membership, error) {
	url := fmt.Sprintf("%s/%d", c.baseURL, membershipID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Membership{}, fmt.Errorf("build membership request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Membership{}, fmt.Errorf("membership lookup: %w", sentinel.ErrUnavailable)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Membership{}, sentinel.ErrNotFound
	case resp.StatusCode != http.StatusOK:
		// Any fault class we don't recognize maps to unavailable, conservatively.
		return Membership{}, fmt.Errorf("membership lookup status %d: %w", resp.StatusCode, sentinel.ErrUnavailable)
	}

	var m Membership
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return Membership{}, fmt.Errorf("decode membership response: %w", sentinel.ErrUnavailable)
	}
	return m, nil
}

// MockClient serves deterministic data with a configurable latency to mimic
// real-world calls. Used in dev mode when no membership URL is configured.
type MockClient struct {
	Latency time.Duration
	// Known lists the membership ids the mock considers valid.
	Known map[int]Membership
}

func (c MockClient) Lookup(ctx context.Context, _ string, membershipID int) (Membership, error) {
	select {
	case <-time.After(c.Latency):
	case <-ctx.Done():
		return Membership{}, fmt.Errorf("membership lookup: %w", sentinel.ErrUnavailable)
	}
	if m, ok := c.Known[membershipID]; ok {
		return m, nil
	}
	return Membership{}, sentinel.ErrNotFound
}
