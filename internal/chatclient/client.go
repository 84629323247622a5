// Package chatclient is the terminal-side client of the intake API: a thin
// HTTP client plus the session state a chat front end renders.
package chatclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Categorization mirrors the classification block returned on creation.
type Categorization struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// CategoryInfo is the subset of the category the client displays.
type CategoryInfo struct {
	Key            string   `json:"key"`
	Name           string   `json:"name"`
	RequiredFields []string `json:"required_fields"`
	Questions      []string `json:"questions"`
}

type CreateConversationResponse struct {
	ConversationID   string         `json:"conversation_id"`
	Categorization   Categorization `json:"categorization"`
	FollowUpQuestion string         `json:"follow_up_question"`
	CategoryInfo     CategoryInfo   `json:"category_info"`
}

type AddMessageResponse struct {
	Message    string `json:"message"`
	IsComplete bool   `json:"is_complete"`
	Category   string `json:"category"`
}

type HealthResponse struct {
	Status            string    `json:"status"`
	Timestamp         time.Time `json:"timestamp"`
	OllamaConnected   bool      `json:"ollama_connected"`
	DatabaseConnected bool      `json:"database_connected"`
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// API is the server surface a Session needs.
type API interface {
	CreateConversation(ctx context.Context, initialMessage string) (*CreateConversationResponse, error)
	AddMessage(ctx context.Context, conversationID, content string) (*AddMessageResponse, error)
}

// Client talks to the HTTP API. baseURL includes the /api prefix.
type Client struct {
	http *resty.Client
	root string
}

var _ API = (*Client)(nil)

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	root := strings.TrimSuffix(strings.TrimRight(baseURL, "/"), "/api")
	return &Client{http: httpClient, root: root}
}

func (c *Client) CreateConversation(ctx context.Context, initialMessage string) (*CreateConversationResponse, error) {
	var out CreateConversationResponse
	err := c.post(ctx, "/conversations", map[string]string{"initial_message": initialMessage}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddMessage(ctx context.Context, conversationID, content string) (*AddMessageResponse, error) {
	var out AddMessageResponse
	err := c.post(ctx, "/conversations/"+conversationID+"/messages", map[string]string{"content": content}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Health calls GET /health, which lives at the server root rather than under
// the API prefix.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.http.R().SetContext(ctx).Get(c.root + "/health")
	if err != nil {
		return nil, fmt.Errorf("health request failed: %w", err)
	}
	if resp.IsError() {
		return nil, decodeAPIError(resp)
	}
	var out HealthResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("failed to decode health response: %w", err)
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	resp, err := c.http.R().SetContext(ctx).SetBody(body).Post(path)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	if resp.IsError() {
		return decodeAPIError(resp)
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

func decodeAPIError(resp *resty.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode()}
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(resp.Body(), &envelope) == nil {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
	}
	return apiErr
}
