package weave

import (
	"encoding/json"
	"fmt"
)

// GenerateRequest is the body of POST /story/generate.
type GenerateRequest struct {
	UserID       string `json:"user_id"`
	Genre        string `json:"genre"`
	CustomPrompt string `json:"custom_prompt,omitempty"`
}

// ContinueRequest is the body of POST /story/continue. Choice carries the
// positional label "A" or "B".
type ContinueRequest struct {
	UserID  string `json:"user_id"`
	StoryID int64  `json:"story_id"`
	Choice  string `json:"choice"`
}

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	UserID           string `json:"user_id"`
	Email            string `json:"email"`
	Name             string `json:"name"`
	ProfilePicURL    string `json:"profile_pic_url,omitempty"`
	PreferredAuthors []int  `json:"preferred_authors"`
}

// ChapterPayload is one chapter as returned by the generation service.
type ChapterPayload struct {
	ChapterNum int      `json:"chapter_num"`
	Content    string   `json:"content"`
	Choices    []string `json:"choices"`
}

// GenerateResponse is the body of a successful POST /story/generate.
type GenerateResponse struct {
	StoryID        int64            `json:"story_id"`
	Title          string           `json:"title"`
	Genre          string           `json:"genre"`
	Chapters       []ChapterPayload `json:"chapters"`
	CurrentChapter int              `json:"current_chapter"`
}

// ContinuationPayload is the body of a successful POST /story/continue.
//
// Deployed versions of the service answer with incompatible shapes:
//
//	{"content": ..., "choices": [...]}
//	{"chapter_num": N, "content": ..., "choices": [...]}
//	{"chapter": {"chapter_num": N, "content": ..., "choices": [...]}}
//
// UnmarshalJSON collapses all of them. ChapterNum is 0 when the shape did
// not carry it; callers must compute the order locally in that case.
type ContinuationPayload struct {
	ChapterNum int
	Content    string
	Choices    []string
}

func (p *ContinuationPayload) UnmarshalJSON(data []byte) error {
	var flat struct {
		ChapterNum int      `json:"chapter_num"`
		Content    string   `json:"content"`
		Choices    []string `json:"choices"`
		Chapter    *struct {
			ChapterNum int      `json:"chapter_num"`
			Content    string   `json:"content"`
			Choices    []string `json:"choices"`
		} `json:"chapter"`
	}
	if err := json.Unmarshal(data, &flat); err != nil {
		return fmt.Errorf("unrecognized continuation payload: %w", err)
	}

	if flat.Chapter != nil {
		p.ChapterNum = flat.Chapter.ChapterNum
		p.Content = flat.Chapter.Content
		p.Choices = flat.Chapter.Choices
		return nil
	}

	p.ChapterNum = flat.ChapterNum
	p.Content = flat.Content
	p.Choices = flat.Choices
	if p.Content == "" {
		return fmt.Errorf("continuation payload has no content: %s", string(data))
	}
	return nil
}

// Genre is a reference-data entry from GET /genres.
type Genre struct {
	GenreID   int    `json:"genre_id"`
	GenreName string `json:"genre_name"`
}

// Author is a reference-data entry from GET /authors.
type Author struct {
	AuthorID   int    `json:"author_id"`
	AuthorName string `json:"author_name"`
	GenreID    *int   `json:"genre_id,omitempty"`
}

// Suggestion is a reference-data entry from GET /suggestions.
type Suggestion struct {
	Genre   string   `json:"genre"`
	Prompts []string `json:"prompts"`
}
