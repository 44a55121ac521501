package service

import (
	"fmt"
	"strings"

	"weave-server/internal/models"
)

// Deterministic local generation used whenever the external service is
// unreachable, errors out, or the story has no external correlation id.
// Content always embeds the literal selected choice or prompt text so the
// reader sees their input reflected.

const fallbackOpening = "The story begins at the edge of something unknown, and the first step is yours to take."

func fallbackFirstChapterContent(initialPrompt string) string {
	return initialPrompt + " " + fallbackOpening
}

func fallbackGenreChapterContent(genre, customPrompt string) string {
	if customPrompt != "" {
		return fmt.Sprintf("Welcome to your %s adventure! Your prompt: %s", genre, customPrompt)
	}
	return fmt.Sprintf("Welcome to your %s adventure! The story begins...", genre)
}

func fallbackContinuationContent(selected string) string {
	return fmt.Sprintf("Continuing from your choice: %q. The story unfolds further...", selected)
}

func fallbackFirstChoices() []models.Choice {
	return []models.Choice{
		{ID: "choice1", Text: "Continue the adventure"},
		{ID: "choice2", Text: "Take a different path"},
	}
}

func fallbackContinuationChoices() []models.Choice {
	return []models.Choice{
		{ID: "choice1", Text: "Take the left path"},
		{ID: "choice2", Text: "Take the right path"},
	}
}

func titleForGenre(genre string) string {
	if genre == "" {
		return "Adventure"
	}
	return strings.ToUpper(genre[:1]) + genre[1:] + " Adventure"
}
