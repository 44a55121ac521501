package weave

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout is the per-request budget for the generation service.
const DefaultTimeout = 30 * time.Second

// UpstreamError reports a failed call to the generation service. Callers are
// expected to branch on it and fall back to local generation; it must never
// surface to the HTTP layer as a hard failure.
type UpstreamError struct {
	StatusCode int    // 0 for transport failures and timeouts
	Detail     string // human-readable detail from the remote error body, if any
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("generation service unreachable: %s", e.Detail)
	}
	return fmt.Sprintf("generation service returned status %d: %s", e.StatusCode, e.Detail)
}

// Client wraps the external story-generation service. All operations are
// side-effect-free with respect to local state.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

// NewClient creates a generation service client. A zero timeout falls back
// to DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		logger:     logger.Named("WeaveClient"),
	}
}

// Generate requests a new story for the user.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	var resp GenerateResponse
	if err := c.post(ctx, "/story/generate", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Continue requests the next chapter for an external story. req.Choice must
// already be normalized to "A" or "B".
func (c *Client) Continue(ctx context.Context, req ContinueRequest) (*ContinuationPayload, error) {
	var resp ContinuationPayload
	if err := c.post(ctx, "/story/continue", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RegisterPreferences syncs a new user's preferences upstream. Callers treat
// this as fire-and-forget; a failure must not block local registration.
func (c *Client) RegisterPreferences(ctx context.Context, req RegisterRequest) error {
	return c.post(ctx, "/register", req, nil)
}

// Genres lists available genres.
func (c *Client) Genres(ctx context.Context) ([]Genre, error) {
	var resp []Genre
	if err := c.get(ctx, "/genres", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Authors lists authors, optionally filtered by genre.
func (c *Client) Authors(ctx context.Context, genreID *int) ([]Author, error) {
	var query url.Values
	if genreID != nil {
		query = url.Values{"genre_id": []string{strconv.Itoa(*genreID)}}
	}
	var resp []Author
	if err := c.get(ctx, "/authors", query, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Suggestions lists prompt suggestions, optionally filtered by genre.
func (c *Client) Suggestions(ctx context.Context, genre string) ([]Suggestion, error) {
	var query url.Values
	if genre != "" {
		query = url.Values{"genre": []string{genre}}
	}
	var resp []Suggestion
	if err := c.get(ctx, "/suggestions", query, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &UpstreamError{Detail: fmt.Sprintf("failed to encode request: %v", err)}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return &UpstreamError{Detail: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return &UpstreamError{Detail: err.Error()}
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Generation service request failed",
			zap.String("path", req.URL.Path), zap.Error(err))
		return &UpstreamError{Detail: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &UpstreamError{StatusCode: resp.StatusCode, Detail: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := extractDetail(respBody)
		c.logger.Warn("Generation service returned error",
			zap.String("path", req.URL.Path),
			zap.Int("status", resp.StatusCode),
			zap.String("detail", detail))
		return &UpstreamError{StatusCode: resp.StatusCode, Detail: detail}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		c.logger.Warn("Generation service returned unparseable body",
			zap.String("path", req.URL.Path), zap.Error(err))
		return &UpstreamError{StatusCode: resp.StatusCode, Detail: fmt.Sprintf("unparseable response: %v", err)}
	}
	return nil
}

// extractDetail pulls the human-readable message from the remote error body.
// The service answers errors as {"detail": "..."}.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Detail != "" {
			return parsed.Detail
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	if len(body) > 256 {
		body = body[:256]
	}
	return string(body)
}
