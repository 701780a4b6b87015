// Package buildium implements the lease platform client against a
// Buildium-style REST API.
package buildium

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/leasing"
	"github.com/propman/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// maxResponseSize is the maximum allowed response size from the platform (10MB)
const maxResponseSize = 10 * 1024 * 1024

// ErrMissingLeaseID indicates a 2xx creation response without a usable lease id
var ErrMissingLeaseID = errors.New("buildium: creation response carries no lease id")

// Ensure Client implements LeasePlatform
var _ leasing.LeasePlatform = (*Client)(nil)

// Client talks to the property platform REST API
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	uploadClient *http.Client
	logger       *zap.Logger
}

// ClientOption is a functional option for configuring the Client
type ClientOption func(*Client)

// WithLogger sets a custom logger for the Client
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient replaces the default HTTP clients, mainly for tests
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
		c.uploadClient = hc
	}
}

// NewClient creates a platform client from configuration
func NewClient(cfg *config.BuildiumConfig, opts ...ClientOption) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("buildium configuration is required")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("buildium base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid buildium base URL: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	uploadTimeout := cfg.UploadTimeout
	if uploadTimeout <= 0 {
		uploadTimeout = 2 * time.Minute
	}

	client := &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient:   &http.Client{Timeout: timeout},
		uploadClient: &http.Client{Timeout: uploadTimeout},
		logger:       zap.NewNop(),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// CreateLease creates a lease on the platform and returns the platform
// lease id extracted from the response
func (c *Client) CreateLease(ctx context.Context, payload *leasing.LeaseCreationPayload) (int64, error) {
	if payload == nil {
		return 0, errors.New("buildium: payload is required")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("buildium: failed to encode payload: %w", err)
	}

	endpoint := c.baseURL + "/leases"
	if payload.SyncBuildium {
		endpoint += "?syncBuildium=true"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("buildium: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuth(req)

	respBody, err := c.do(c.httpClient, req)
	if err != nil {
		return 0, err
	}

	leaseID, err := extractLeaseID(respBody)
	if err != nil {
		return 0, err
	}

	c.logger.Info("Lease created on platform", zap.Int64("lease_id", leaseID))
	return leaseID, nil
}

// UploadLeaseDocument uploads one document for a created lease
func (c *Client) UploadLeaseDocument(ctx context.Context, leaseID int64, file *leasing.PendingFile) error {
	if leaseID <= 0 {
		return errors.New("buildium: lease ID is required")
	}
	if file == nil || len(file.Content) == 0 {
		return errors.New("buildium: file content is required")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", file.Name)
	if err != nil {
		return fmt.Errorf("buildium: failed to build multipart body: %w", err)
	}
	if _, err := part.Write(file.Content); err != nil {
		return fmt.Errorf("buildium: failed to write file content: %w", err)
	}

	fields := map[string]string{
		"entityType": "lease",
		"entityId":   fmt.Sprintf("%d", leaseID),
		"fileName":   file.Name,
		"category":   "Lease",
		"isPrivate":  "true",
	}
	if file.ContentType != "" {
		fields["mimeType"] = file.ContentType
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return fmt.Errorf("buildium: failed to write form field: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("buildium: failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/files/upload", &buf)
	if err != nil {
		return fmt.Errorf("buildium: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.setAuth(req)

	if _, err := c.do(c.uploadClient, req); err != nil {
		return err
	}

	c.logger.Debug("Lease document uploaded",
		zap.Int64("lease_id", leaseID),
		zap.String("file", file.Name),
	)
	return nil
}

// ListUnitLeases returns the platform leases of a unit
func (c *Client) ListUnitLeases(ctx context.Context, unitID uuid.UUID) ([]leasing.PlatformLease, error) {
	endpoint := fmt.Sprintf("%s/units/%s/leases", c.baseURL, unitID.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("buildium: failed to create request: %w", err)
	}
	c.setAuth(req)

	body, err := c.do(c.httpClient, req)
	if err != nil {
		return nil, err
	}

	var leases []leasing.PlatformLease
	if err := json.Unmarshal(body, &leases); err != nil {
		return nil, fmt.Errorf("buildium: failed to decode lease list: %w", err)
	}
	return leases, nil
}

// setAuth attaches the platform credentials when configured
func (c *Client) setAuth(req *http.Request) {
	if c.clientID != "" {
		req.Header.Set("x-buildium-client-id", c.clientID)
	}
	if c.clientSecret != "" {
		req.Header.Set("x-buildium-client-secret", c.clientSecret)
	}
}

// do executes the request and returns the body of a 2xx response.
// Transport errors and non-2xx statuses are both reported as errors.
func (c *Client) do(hc *http.Client, req *http.Request) ([]byte, error) {
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("buildium: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("buildium: failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("buildium: HTTP %d: %s", resp.StatusCode, errorMessage(body))
	}

	return body, nil
}

// errorMessage pulls the {error} field from a failure body, falling back
// to the raw body
func errorMessage(body []byte) string {
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != "" {
		return envelope.Error
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	if msg == "" {
		msg = "no error detail"
	}
	return msg
}

// extractLeaseID pulls the created lease id out of a 2xx response body.
// Platform deployments differ in where they put it, so strategies are
// tried in order and the first numeric value wins.
func extractLeaseID(body []byte) (int64, error) {
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return 0, fmt.Errorf("buildium: failed to decode creation response: %w", err)
	}

	strategies := []func(map[string]any) (int64, bool){
		func(d map[string]any) (int64, bool) { return nestedID(d, "lease") },
		func(d map[string]any) (int64, bool) { return nestedID(d, "Lease") },
		func(d map[string]any) (int64, bool) { return numericField(d, "lease_id") },
		func(d map[string]any) (int64, bool) { return numericField(d, "leaseId") },
	}

	for _, strategy := range strategies {
		if id, ok := strategy(doc); ok {
			return id, nil
		}
	}

	return 0, ErrMissingLeaseID
}

// nestedID reads {key: {id|Id|ID: n}} from the document
func nestedID(doc map[string]any, key string) (int64, bool) {
	nested, ok := doc[key].(map[string]any)
	if !ok {
		return 0, false
	}
	for _, idKey := range []string{"id", "Id", "ID"} {
		if id, ok := numericField(nested, idKey); ok {
			return id, true
		}
	}
	return 0, false
}

// numericField coerces a JSON field to a positive int64
func numericField(doc map[string]any, key string) (int64, bool) {
	value, ok := doc[key]
	if !ok {
		return 0, false
	}

	switch v := value.(type) {
	case float64:
		if v > 0 && v == float64(int64(v)) {
			return int64(v), true
		}
	case json.Number:
		if id, err := v.Int64(); err == nil && id > 0 {
			return id, true
		}
	case string:
		var id int64
		if _, err := fmt.Sscanf(strings.TrimSpace(v), "%d", &id); err == nil && id > 0 {
			return id, true
		}
	}
	return 0, false
}
