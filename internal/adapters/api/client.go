package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/lynnxiaofeng/parkyoga/internal/domain"
)

const maxResponseBytes = 1 << 20

// Client talks JSON to the Park Yoga backend. The zero value is unusable;
// BaseURL must point at the API root.
type Client struct {
	BaseURL        string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

type request struct {
	method   string
	path     string
	query    url.Values
	token    string
	body     any
	fallback string

	// jsonErrors treats a non-JSON error body as an invalid response
	// rather than falling back to the generic message.
	jsonErrors bool
}

// do sends req and decodes a 2xx body into out when out is non-nil. Non-2xx
// answers become *domain.APIError carrying the server "error" field.
func (c Client) do(ctx context.Context, req request, out any) error {
	endpoint, err := buildAPIURL(c.BaseURL, req.path)
	if err != nil {
		return err
	}
	if len(req.query) > 0 {
		endpoint += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		encoded, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()
	httpReq, err := http.NewRequestWithContext(requestCtx, req.method, endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}

	resp, err := c.httpClient().Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: read response: %w", domain.ErrTransport, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		if req.jsonErrors && resp.StatusCode != http.StatusTooManyRequests && !json.Valid(payload) {
			return fmt.Errorf("%w: status %d with non-JSON body", domain.ErrInvalidResponse, resp.StatusCode)
		}
		return decodeAPIError(resp.StatusCode, payload, req.fallback)
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidResponse, err)
	}
	return nil
}

func (c Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	requestTimeout := c.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}

	return context.WithTimeout(ctx, requestTimeout)
}

func decodeAPIError(status int, payload []byte, fallback string) error {
	apiErr := &domain.APIError{Status: status, Message: fallback}

	var body errorResponse
	if err := json.Unmarshal(payload, &body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
	}
	if apiErr.Message == "" && status == http.StatusTooManyRequests {
		apiErr.Message = "Too many requests, please try again later"
	}
	return apiErr
}

func buildAPIURL(baseURL string, path string) (string, error) {
	if baseURL == "" {
		return "", domain.ErrAPIBaseURLMissing
	}
	if path == "" {
		return "", errors.New("api path is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("api base url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("api base url host is required")
	}

	return parsed.JoinPath(path).String(), nil
}
