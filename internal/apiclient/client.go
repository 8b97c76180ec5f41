// Package apiclient talks to the calculation and configuration endpoints.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Simplici0/costcalc/internal/model"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-Id"

const maxResponseBytes = 4 << 20

var (
	// ErrTransport wraps failures to reach the service.
	ErrTransport = errors.New("transport failure")
	// ErrDecode wraps responses that are not the expected JSON.
	ErrDecode = errors.New("malformed response")
	// ErrStatus is matched by every *StatusError.
	ErrStatus = errors.New("service error")
	// ErrRejected is returned when the service answers {"success": false}.
	ErrRejected = errors.New("request rejected")
)

// StatusError reports a non-2xx response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("service returned %d", e.Code)
	}
	return fmt.Sprintf("service returned %d: %s", e.Code, e.Message)
}

// Is makes errors.Is(err, ErrStatus) hold for any status error.
func (e *StatusError) Is(target error) bool {
	return target == ErrStatus
}

// Client is a JSON client for the cost calculation service.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient returns an http.Client with dial and overall timeouts.
func NewHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

// New returns a client for the service at baseURL. A nil httpClient uses a 10s timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = NewHTTPClient(10 * time.Second)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// Calculate posts the form state and returns the computed breakdown.
func (c *Client) Calculate(ctx context.Context, state model.FormState) (model.CalculationResult, error) {
	var result model.CalculationResult
	if err := c.do(ctx, http.MethodPost, "/api/calculate", state, &result); err != nil {
		return model.CalculationResult{}, fmt.Errorf("calculate: %w", err)
	}
	return result, nil
}

// SaveConfiguration stores the form state as a new configuration.
func (c *Client) SaveConfiguration(ctx context.Context, state model.FormState) error {
	var resp model.StatusResponse
	if err := c.do(ctx, http.MethodPost, "/api/configuration", state, &resp); err != nil {
		return fmt.Errorf("save configuration: %w", err)
	}
	if !resp.Success {
		return fmt.Errorf("save configuration: %w: %s", ErrRejected, resp.Message)
	}
	return nil
}

// ListConfigurations returns every saved configuration.
func (c *Client) ListConfigurations(ctx context.Context) ([]model.SavedConfiguration, error) {
	configs := make([]model.SavedConfiguration, 0)
	if err := c.do(ctx, http.MethodGet, "/api/configurations", nil, &configs); err != nil {
		return nil, fmt.Errorf("list configurations: %w", err)
	}
	return configs, nil
}

// GetConfiguration fetches one configuration by id.
func (c *Client) GetConfiguration(ctx context.Context, id int64) (model.SavedConfiguration, error) {
	var cfg model.SavedConfiguration
	if err := c.do(ctx, http.MethodGet, configurationPath(id), nil, &cfg); err != nil {
		return model.SavedConfiguration{}, fmt.Errorf("get configuration %d: %w", id, err)
	}
	return cfg, nil
}

// DeleteConfiguration removes a configuration by id.
func (c *Client) DeleteConfiguration(ctx context.Context, id int64) error {
	var resp model.StatusResponse
	if err := c.do(ctx, http.MethodDelete, configurationPath(id), nil, &resp); err != nil {
		return fmt.Errorf("delete configuration %d: %w", id, err)
	}
	if !resp.Success {
		return fmt.Errorf("delete configuration %d: %w: %s", id, ErrRejected, resp.Message)
	}
	return nil
}

func configurationPath(id int64) string {
	return "/api/configuration/" + strconv.FormatInt(id, 10)
}

// ExportConfiguration downloads the xlsx workbook of a configuration.
func (c *Client) ExportConfiguration(ctx context.Context, id int64) ([]byte, error) {
	data, err := c.send(ctx, http.MethodGet, configurationPath(id)+"/export.xlsx", nil, "application/octet-stream")
	if err != nil {
		return nil, fmt.Errorf("export configuration %d: %w", id, err)
	}
	return data, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	data, err := c.send(ctx, method, path, body, "application/json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, body any, accept string) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Message: errorMessage(data)}
	}
	return data, nil
}

// errorMessage extracts "error" or "message" from a JSON error body.
func errorMessage(data []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return strings.TrimSpace(string(data))
	}
	if body.Error != "" {
		return body.Error
	}
	return body.Message
}
