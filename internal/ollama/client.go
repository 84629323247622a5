// Package ollama is a small client for the local Ollama text-generation service.
package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// ClientError represents an error from the Ollama client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is matches sentinel errors by type so wrapped instances still compare equal.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	if !ok {
		return false
	}
	return t.Type == e.Type && t.Cause == nil
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNotRunning
	ErrTypeTimeout
	ErrTypeModelNotFound
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	ErrNotRunning      = &ClientError{Type: ErrTypeNotRunning, Message: "Ollama is not running"}
	ErrTimeout         = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrModelNotFound   = &ClientError{Type: ErrTypeModelNotFound, Message: "model not found"}
	ErrInvalidResponse = &ClientError{Type: ErrTypeInvalidResponse, Message: "invalid response from Ollama"}
)

// ClientConfig holds configuration options for the Ollama client.
type ClientConfig struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434)
	BaseURL string

	// Timeout for a single HTTP request (default: 30s). Callers usually bound
	// requests tighter through the context.
	Timeout time.Duration

	// DefaultModel is used when a request names no model (default: llama3.2:3b)
	DefaultModel string
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:      "http://localhost:11434",
		Timeout:      30 * time.Second,
		DefaultModel: "llama3.2:3b",
	}
}

// Client handles communication with the Ollama API. It is safe for concurrent use.
type Client struct {
	config *ClientConfig
	http   *resty.Client
}

// NewClient creates a new Ollama client. Zero fields in config take defaults.
func NewClient(config *ClientConfig) *Client {
	defaults := DefaultConfig()
	if config == nil {
		config = defaults
	}
	if config.BaseURL == "" {
		config.BaseURL = defaults.BaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = defaults.Timeout
	}
	if config.DefaultModel == "" {
		config.DefaultModel = defaults.DefaultModel
	}

	httpClient := resty.New().
		SetBaseURL(config.BaseURL).
		SetTimeout(config.Timeout).
		SetHeader("Content-Type", "application/json")

	return &Client{config: config, http: httpClient}
}

// DefaultModel returns the model used when a request names none.
func (c *Client) DefaultModel() string {
	return c.config.DefaultModel
}

// Generate runs a non-streaming completion.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if req.Model == "" {
		req.Model = c.config.DefaultModel
	}
	req.Stream = false

	resp, err := c.http.R().SetContext(ctx).SetBody(req).Post("/api/generate")
	if err != nil {
		return nil, transportError(err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, &ClientError{Type: ErrTypeModelNotFound, Message: "model not found: " + req.Model}
	}
	if resp.IsError() {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "generate failed: " + resp.Status()}
	}

	var out GenerateResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode generate response", Cause: err}
	}
	return &out, nil
}

// ListModels retrieves all locally available models.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	resp, err := c.http.R().SetContext(ctx).Get("/api/tags")
	if err != nil {
		return nil, transportError(err)
	}
	if resp.IsError() {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to list models: " + resp.Status()}
	}

	var out ListModelsResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode tags response", Cause: err}
	}
	return out.Models, nil
}

// Ping reports whether Ollama answers the tags endpoint.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.ListModels(ctx)
	return err
}

func transportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &ClientError{Type: ErrTypeTimeout, Message: "request timed out", Cause: err}
	}
	return &ClientError{Type: ErrTypeNotRunning, Message: "Ollama is not reachable", Cause: err}
}

// IsNotRunning reports whether err means the service could not be reached.
func IsNotRunning(err error) bool {
	return errors.Is(err, ErrNotRunning)
}

// IsTimeout reports whether err is a request timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}
