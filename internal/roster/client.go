// Package roster is the HTTP client for the legacy membership roster. It is
// consulted only to gate first-time migration into the directory.
package roster

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/mobydigital/login-service/pkg/httpclient"
)

// HTTPDoer is the interface for executing HTTP requests.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client checks active membership in the legacy roster.
type Client struct {
	httpClient HTTPDoer
	checkURL   string
	timeout    time.Duration
	logger     *slog.Logger
}

// New creates a roster client. checkURL is the base the email is appended to.
func New(httpClient HTTPDoer, checkURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		checkURL:   checkURL,
		timeout:    timeout,
		logger:     logger,
	}
}

// IsActive reports whether the email belongs to an active roster member.
//
// A 4xx answer means the roster does not know the email and counts as
// inactive, not as a failure. A 5xx answer or a transport error is returned
// as an error so the caller can surface a server-side failure instead of
// silently treating an outage as "inactive".
func (c *Client) IsActive(ctx context.Context, email string) (bool, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.checkURL+url.PathEscape(email), http.NoBody)
	if err != nil {
		return false, fmt.Errorf("create roster check request: %w", err)
	}

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return false, fmt.Errorf("call roster service: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case httpclient.IsClientError(resp.StatusCode):
		c.logger.DebugContext(ctx, "email not present in roster",
			slog.String("email", email),
			slog.Int("status", resp.StatusCode),
		)
		return false, nil
	default:
		return false, httpclient.ParseResponseError(resp, "roster")
	}

	var active bool
	if err := json.NewDecoder(resp.Body).Decode(&active); err != nil {
		return false, fmt.Errorf("decode roster response: %w", err)
	}

	return active, nil
}
