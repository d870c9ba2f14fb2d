// Package executor runs queries against the upstream SPARQL endpoint.
package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/mohammed-shakir/dggs-ldapi/internal/core/observability"
	"github.com/mohammed-shakir/dggs-ldapi/internal/core/sparql"
)

type Interface interface {
	Select(ctx context.Context, query string) (sparql.Results, error)
}

type Executor struct {
	logger   *slog.Logger
	client   *http.Client
	endpoint *url.URL
	startNow func() time.Time // for tests
}

func New(logger *slog.Logger, client *http.Client, endpoint string) (*Executor, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse sparql endpoint: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("sparql endpoint %q is not absolute", endpoint)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Executor{
		logger:   logger,
		client:   client,
		endpoint: u,
		startNow: time.Now,
	}, nil
}

// Select runs a SELECT query with the protocol GET binding.
func (e *Executor) Select(ctx context.Context, query string) (sparql.Results, error) {
	u := *e.endpoint
	q := u.Query()
	for k, vs := range sparql.SelectParams(query) {
		q[k] = vs
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return sparql.Results{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", sparql.ResultsMediaType)

	start := e.startNow()
	resp, err := e.client.Do(req)
	if err != nil {
		return sparql.Results{}, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	dur := time.Since(start)
	observability.ObserveUpstreamLatency("sparql", dur.Seconds())
	e.logger.DebugContext(ctx, "sparql select done",
		"status", resp.StatusCode,
		"duration", dur.String())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		return sparql.Results{}, fmt.Errorf("upstream status %d: %s", resp.StatusCode, string(b))
	}

	var out sparql.Results
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return sparql.Results{}, fmt.Errorf("decode sparql results: %w", err)
	}
	return out, nil
}
