package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Ensure HTTPClient implements Client at compile time.
var _ Client = (*HTTPClient)(nil)

// HTTPClient talks GraphQL over HTTP POST.
type HTTPClient struct {
	endpoint  *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultEndpoint   = "http://127.0.0.1:4000/graphql"
	defaultUserAgent  = "cardwatch/0.1"
	defaultReqTimeout = 5 * time.Second
)

// NewHTTPClient builds a client for the given endpoint URL. A zero timeout uses
// the default.
func NewHTTPClient(endpoint string, timeout time.Duration) (*HTTPClient, error) {
	u, err := parseEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = defaultReqTimeout
	}
	return &HTTPClient{
		endpoint: u,
		http: &http.Client{
			Timeout: timeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// Query executes a read operation.
func (c *HTTPClient) Query(ctx context.Context, op Operation, vars Variables) (Payload, error) {
	return c.do(ctx, op, vars)
}

// Mutate executes a write operation. The wire format is identical to Query.
func (c *HTTPClient) Mutate(ctx context.Context, op Operation, vars Variables) (Payload, error) {
	return c.do(ctx, op, vars)
}

type request struct {
	Query         string    `json:"query"`
	OperationName string    `json:"operationName,omitempty"`
	Variables     Variables `json:"variables,omitempty"`
}

type response struct {
	Data   Payload       `json:"data"`
	Errors []ServerError `json:"errors"`
}

func (c *HTTPClient) do(ctx context.Context, op Operation, vars Variables) (Payload, error) {
	if c == nil {
		return nil, &Error{Op: op.Name, Message: "client is nil"}
	}
	body, err := json.Marshal(request{Query: op.Document, OperationName: op.Name, Variables: vars})
	if err != nil {
		return nil, &Error{Op: op.Name, Message: "encode request", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Op: op.Name, Message: "create request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Op: op.Name, Message: fmt.Sprintf("execute request: %v", err), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return nil, &Error{Op: op.Name, Message: fmt.Sprintf("endpoint returned status %d", resp.StatusCode)}
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &Error{Op: op.Name, Message: fmt.Sprintf("decode response: %v", err), Err: err}
	}
	if len(payload.Errors) > 0 {
		return nil, &Error{Op: op.Name, Message: joinServerErrors(payload.Errors)}
	}
	if payload.Data == nil {
		payload.Data = Payload{}
	}
	return payload.Data, nil
}

func parseEndpoint(endpoint string) (*url.URL, error) {
	trimmed := strings.TrimSpace(endpoint)
	if trimmed == "" {
		trimmed = defaultEndpoint
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint %q: %w", endpoint, err)
	}
	if u.Path == "" {
		u.Path = "/graphql"
	}
	u.Fragment = ""
	return u, nil
}
