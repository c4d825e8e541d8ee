package pitchsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kailas-cloud/pitchsearch/internal/domain"
)

const (
	maxErrorBody     = 4 << 10
	msgQueryRequired = "Query is required"
)

// Client talks to a pitchsearch server.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	apiKey  string
	origin  string
	obs     *observer
}

// New creates a Client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("pitchsearch: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("pitchsearch: base url %q must be http or https", baseURL)
	}

	cfg := &clientConfig{
		timeout: defaultTimeout,
		origin:  domain.DefaultReviewOrigin,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.timeout}
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL: u,
		http:    hc,
		apiKey:  cfg.apiKey,
		origin:  cfg.origin,
		obs:     obs,
	}, nil
}

func (c *Client) endpoint(path string) string {
	return c.baseURL.JoinPath(path).String()
}

// do sends the request and decodes a 2xx JSON body into out.
// okStatuses lists additional statuses whose body is decoded instead of treated as an error.
func (c *Client) do(req *http.Request, out any, okStatuses ...int) (int, error) {
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("pitchsearch: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	for _, s := range okStatuses {
		ok = ok || resp.StatusCode == s
	}
	if !ok {
		return resp.StatusCode, decodeError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("pitchsearch: decode response: %w", err)
	}
	return resp.StatusCode, nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var er errorResponse
	if json.Unmarshal(body, &er) == nil && er.Error != "" {
		apiErr.Message = er.Error
	} else {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest && apiErr.Message == msgQueryRequired:
		apiErr.sentinel = ErrQueryRequired
	case resp.StatusCode == http.StatusBadRequest:
		apiErr.sentinel = ErrInvalidRequest
	case resp.StatusCode == http.StatusUnauthorized:
		apiErr.sentinel = ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		apiErr.sentinel = ErrRateLimited
	case resp.StatusCode >= http.StatusInternalServerError:
		apiErr.sentinel = ErrSearchFailed
	}
	return apiErr
}

func newJSONRequest(ctx context.Context, method, target string, body any) (*http.Request, error) {
	var r io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("pitchsearch: encode request: %w", err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, r)
	if err != nil {
		return nil, fmt.Errorf("pitchsearch: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// Search runs a semantic search. A blank query fails locally with ErrQueryRequired.
func (c *Client) Search(ctx context.Context, query string) (_ []Result, err error) {
	defer func(start time.Time) { c.obs.observe("search", start, err) }(time.Now())

	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("pitchsearch: %w", ErrQueryRequired)
	}

	req, err := newJSONRequest(ctx, http.MethodPost, c.endpoint("/api/search"), searchRequest{Query: query})
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if _, err := c.do(req, &resp); err != nil {
		return nil, err
	}

	results := resp.Result
	if results == nil {
		results = []Result{}
	}
	for i := range results {
		results[i].origin = c.origin
	}
	return results, nil
}

// Health fetches the server health. A degraded server still yields a status;
// err is set only when no report could be read.
func (c *Client) Health(ctx context.Context) (_ HealthStatus, err error) {
	defer func(start time.Time) { c.obs.observe("health", start, err) }(time.Now())

	req, err := newJSONRequest(ctx, http.MethodGet, c.endpoint("/health"), nil)
	if err != nil {
		return HealthStatus{}, err
	}

	var hs HealthStatus
	if _, err := c.do(req, &hs, http.StatusServiceUnavailable); err != nil {
		return HealthStatus{}, err
	}
	return hs, nil
}

// IsRetryable reports whether err is worth retrying later.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrSearchFailed)
}
