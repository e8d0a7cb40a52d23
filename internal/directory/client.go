// Package directory is the HTTP client for the intranet user directory, the
// system of record for authenticated users' profile data.
package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/mobydigital/login-service/internal/domain"
	apperrors "github.com/mobydigital/login-service/pkg/errors"
	"github.com/mobydigital/login-service/pkg/httpclient"
	"github.com/mobydigital/login-service/pkg/validator"
)

// HTTPDoer is the interface for executing HTTP requests.
// Both httpclient.Client and httpclient.CircuitBreakerClient satisfy this.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client queries and updates the user directory.
type Client struct {
	httpClient HTTPDoer
	baseURL    string
	timeout    time.Duration
	logger     *slog.Logger
}

// New creates a directory client. A zero timeout means calls inherit the
// parent context deadline.
func New(httpClient HTTPDoer, baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		timeout:    timeout,
		logger:     logger,
	}
}

// FindByEmail looks up the directory record for an email address.
// A missing record is reported as a not-found AppError so callers can
// distinguish it from directory outages.
func (c *Client) FindByEmail(ctx context.Context, email string) (domain.DirectoryRecord, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	lookupURL := c.baseURL + "/user?email=" + url.QueryEscape(email)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, http.NoBody)
	if err != nil {
		return domain.DirectoryRecord{}, fmt.Errorf("create directory lookup request: %w", err)
	}

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return domain.DirectoryRecord{}, fmt.Errorf("call directory service: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return domain.DirectoryRecord{}, apperrors.NotFound("user", email)
	default:
		return domain.DirectoryRecord{}, httpclient.ParseResponseError(resp, "directory")
	}

	var record domain.DirectoryRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return domain.DirectoryRecord{}, fmt.Errorf("decode directory record: %w", err)
	}

	c.logger.DebugContext(ctx, "directory record found",
		slog.String("email", email),
		slog.String("record_id", record.ID),
	)

	return record, nil
}

// Migrate creates a directory record for a legacy roster user and returns the
// record as stored. This call is never retried by the underlying client since
// a duplicate POST would create a duplicate record.
func (c *Client) Migrate(ctx context.Context, payload domain.MigrationPayload) (domain.DirectoryRecord, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := validator.Validate(payload); err != nil {
		return domain.DirectoryRecord{}, apperrors.InvalidInput(err.Error())
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return domain.DirectoryRecord{}, fmt.Errorf("marshal migration payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/migrateUser", bytes.NewReader(body))
	if err != nil {
		return domain.DirectoryRecord{}, fmt.Errorf("create migration request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// Drop GetBody so the retrying client sends this POST exactly once.
	req.GetBody = nil

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return domain.DirectoryRecord{}, fmt.Errorf("call directory migration: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return domain.DirectoryRecord{}, httpclient.ParseResponseError(resp, "directory")
	}

	var record domain.DirectoryRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return domain.DirectoryRecord{}, fmt.Errorf("decode migrated record: %w", err)
	}

	c.logger.InfoContext(ctx, "legacy user migrated into directory",
		slog.String("email", payload.Email),
		slog.String("record_id", record.ID),
	)

	return record, nil
}
