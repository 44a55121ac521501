package models

import (
	"time"

	"github.com/google/uuid"
)

// Chapter provenance tags.
const (
	SourceExternal = "external"
	SourceLocal    = "local"
)

// Story is a narrative thread owned by a single author.
//
// ExternalStoryID is the generation service's own identifier for this story.
// It is nil for stories created without the external service; continuation
// falls back to local generation in that case.
type Story struct {
	ID              uuid.UUID `json:"id" db:"id"`
	Title           string    `json:"title" db:"title"`
	Description     string    `json:"description" db:"description"`
	AuthorID        uuid.UUID `json:"authorId" db:"author_id"`
	ExternalStoryID *int64    `json:"externalStoryId,omitempty" db:"external_story_id"`
	IsPublic        bool      `json:"isPublic" db:"is_public"`
	Tags            []string  `json:"tags" db:"tags"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
}

// Choice is one of the two options presented at the end of a chapter.
// Index 0 always maps to positional label "A", index 1 to "B".
type Choice struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Chapter is one immutable narrative unit of a story. Orders form a gapless
// 1-based sequence per story; the chapter with the maximum order is the
// continuation point.
type Chapter struct {
	ID          uuid.UUID `json:"id" db:"id"`
	StoryID     uuid.UUID `json:"storyId" db:"story_id"`
	Order       int       `json:"order" db:"chapter_order"`
	Content     string    `json:"content" db:"content"`
	Choices     []Choice  `json:"choices" db:"choices"`
	IsGenerated bool      `json:"isGenerated" db:"is_generated"`
	PromptUsed  string    `json:"promptUsed" db:"prompt_used"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// ChoiceTexts returns the display texts in positional order.
func (c *Chapter) ChoiceTexts() []string {
	texts := make([]string, 0, len(c.Choices))
	for _, choice := range c.Choices {
		texts = append(texts, choice.Text)
	}
	return texts
}

// ChoicesFromTexts builds structured choices from the external API's bare
// string representation.
func ChoicesFromTexts(texts []string) []Choice {
	choices := make([]Choice, 0, len(texts))
	for i, text := range texts {
		choices = append(choices, Choice{ID: choiceID(i), Text: text})
	}
	return choices
}

func choiceID(i int) string {
	switch i {
	case 0:
		return "choice1"
	case 1:
		return "choice2"
	default:
		return "choice" + string(rune('1'+i))
	}
}
