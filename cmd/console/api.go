package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"weave-server/pkg/storyflow"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type apiChoice struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type apiChapter struct {
	ID          string      `json:"id"`
	Order       int         `json:"order"`
	Content     string      `json:"content"`
	Choices     []apiChoice `json:"choices"`
	IsGenerated bool        `json:"isGenerated"`
	CreatedAt   time.Time   `json:"createdAt"`
}

type createStoryResponse struct {
	Story struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"story"`
	Chapter apiChapter `json:"chapter"`
}

type generateStoryResponse struct {
	StoryID  string `json:"story_id"`
	Title    string `json:"title"`
	Chapters []struct {
		ChapterNum int      `json:"chapter_num"`
		Content    string   `json:"content"`
		Choices    []string `json:"choices"`
	} `json:"chapters"`
	Source string `json:"source"`
}

type continueResponse struct {
	ID         string      `json:"id"`
	ChapterNum int         `json:"chapter_num"`
	Content    string      `json:"content"`
	Choices    []apiChoice `json:"choices"`
	Source     string      `json:"source"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Credits int    `json:"credits"`
	} `json:"user"`
}

// apiClient talks to the weave server and implements storyflow.API.
type apiClient struct {
	client  *http.Client
	baseURL string
	token   string
}

func newAPIClient(client *http.Client, baseURL string) *apiClient {
	return &apiClient{client: client, baseURL: baseURL}
}

func (a *apiClient) Register(ctx context.Context, email, name, password string) error {
	body := map[string]string{"email": email, "name": name, "password": password}
	return a.postJSON(ctx, "/auth/register", body, http.StatusCreated, nil)
}

// Login authenticates and stores the bearer token for later requests.
func (a *apiClient) Login(ctx context.Context, email, password string) (*loginResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var resp loginResponse
	if err := a.postJSON(ctx, "/auth/login", body, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	a.token = resp.Token
	return &resp, nil
}

func (a *apiClient) StartStory(ctx context.Context, prompt string) (string, *storyflow.Segment, error) {
	body := map[string]interface{}{
		"title":         trimTitle(prompt),
		"initialPrompt": prompt,
	}
	var resp createStoryResponse
	if err := a.postJSON(ctx, "/api/stories", body, http.StatusOK, &resp); err != nil {
		return "", nil, err
	}
	return resp.Story.ID, chapterToSegment(resp.Chapter), nil
}

func (a *apiClient) GenerateStory(ctx context.Context, genre, customPrompt string) (string, *storyflow.Segment, error) {
	body := map[string]string{"genre": genre}
	if customPrompt != "" {
		body["custom_prompt"] = customPrompt
	}
	var resp generateStoryResponse
	if err := a.postJSON(ctx, "/api/story/generate", body, http.StatusOK, &resp); err != nil {
		return "", nil, err
	}
	if len(resp.Chapters) == 0 {
		return "", nil, fmt.Errorf("server returned a story without chapters")
	}

	last := resp.Chapters[len(resp.Chapters)-1]
	segment := &storyflow.Segment{
		ID:          fmt.Sprintf("%s-%d", resp.StoryID, last.ChapterNum),
		Text:        last.Content,
		IsGenerated: resp.Source == "external",
		Timestamp:   time.Now(),
	}
	for i, text := range last.Choices {
		segment.Choices = append(segment.Choices, storyflow.Choice{
			ID:   fmt.Sprintf("choice%d", i+1),
			Text: text,
		})
	}
	return resp.StoryID, segment, nil
}

func (a *apiClient) ContinueStory(ctx context.Context, storyID string, choice storyflow.Choice) (*storyflow.Segment, error) {
	body := map[string]interface{}{
		"story_id": storyID,
		"choice":   map[string]string{"id": choice.ID, "text": choice.Text},
	}
	var resp continueResponse
	if err := a.postJSON(ctx, "/api/story/continue", body, http.StatusOK, &resp); err != nil {
		return nil, err
	}

	segment := &storyflow.Segment{
		ID:          resp.ID,
		Text:        resp.Content,
		IsGenerated: resp.Source == "external",
		Timestamp:   time.Now(),
	}
	for _, c := range resp.Choices {
		segment.Choices = append(segment.Choices, storyflow.Choice{ID: c.ID, Text: c.Text})
	}
	return segment, nil
}

func (a *apiClient) listGenres(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/api/genres", nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var payload struct {
		Genres []struct {
			GenreName string `json:"genre_name"`
		} `json:"genres"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse genres response: %w", err)
	}

	names := make([]string, 0, len(payload.Genres))
	for _, g := range payload.Genres {
		names = append(names, g.GenreName)
	}
	return names, nil
}

func (a *apiClient) postJSON(ctx context.Context, path string, body interface{}, wantStatus int, out interface{}) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != wantStatus {
		var errorResp ErrorResponse
		if err := json.Unmarshal(respBody, &errorResp); err != nil || errorResp.Error == "" {
			return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(respBody))
		}
		return fmt.Errorf("%s", errorResp.Error)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func chapterToSegment(ch apiChapter) *storyflow.Segment {
	segment := &storyflow.Segment{
		ID:          ch.ID,
		Text:        ch.Content,
		IsGenerated: ch.IsGenerated,
		Timestamp:   ch.CreatedAt,
	}
	for _, c := range ch.Choices {
		segment.Choices = append(segment.Choices, storyflow.Choice{ID: c.ID, Text: c.Text})
	}
	return segment
}

func trimTitle(prompt string) string {
	const maxTitle = 60
	if len(prompt) <= maxTitle {
		return prompt
	}
	return prompt[:maxTitle] + "..."
}
