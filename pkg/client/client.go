// Package client holds the HTTP clients the services use to talk to
// each other. Every call goes through a circuit breaker; an open
// circuit, a transport failure, and an unexpected upstream status all
// surface as the same service_unavailable error, while an upstream 404
// stays a distinct not-found.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"roomly/pkg/breaker"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/logger"
)

type Options struct {
	BaseURL         string
	Timeout         time.Duration
	BreakerFailures uint32
	BreakerReset    time.Duration
}

type httpClient struct {
	baseURL string
	client  *http.Client
	breaker *breaker.Breaker
	log     *logger.Logger
}

func newHTTPClient(name string, opts Options, log *logger.Logger) *httpClient {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &httpClient{
		baseURL: opts.BaseURL,
		client:  &http.Client{Timeout: timeout},
		breaker: breaker.New(name, opts.BreakerFailures, opts.BreakerReset, log),
		log:     log,
	}
}

type response struct {
	status int
	body   []byte
}

func (r *response) decode(target any) error {
	return json.Unmarshal(r.body, target)
}

// get runs a GET through the breaker. Only transport-level failures
// count against the breaker; HTTP error statuses are answers, not
// failures, and are left for the caller to interpret.
func (c *httpClient) get(ctx context.Context, path string) (*response, error) {
	result, err := c.breaker.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, fmt.Errorf("client: building request: %w", err)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("client: %s: %w", path, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("client: reading %s: %w", path, err)
		}

		return &response{status: resp.StatusCode, body: body}, nil
	})
	if err != nil {
		if breaker.IsOpen(err) {
			c.log.Warn("circuit open, call rejected", "path", path)
		} else {
			c.log.Warn("dependency call failed", "path", path, "error", err)
		}
		return nil, apperrors.Unavailable()
	}
	return result.(*response), nil
}
