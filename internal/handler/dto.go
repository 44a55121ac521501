package handler

import (
	"weave-server/internal/models"
	"weave-server/internal/service"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type createStoryRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	IsPublic      bool   `json:"isPublic"`
	InitialPrompt string `json:"initialPrompt"`
}

type createStoryResponse struct {
	Story   *models.Story   `json:"story"`
	Chapter *models.Chapter `json:"chapter"`
}

type chapterChoiceRequest struct {
	Choice service.ChoiceInput `json:"choice"`
}

type continueRequest struct {
	StoryID string              `json:"story_id"`
	Choice  service.ChoiceInput `json:"choice"`
}

type generateRequest struct {
	Genre        string `json:"genre"`
	CustomPrompt string `json:"custom_prompt"`
}

type suggestionsRequest struct {
	Genre string `json:"genre"`
}

type listStoriesResponse struct {
	Stories    []models.Story `json:"stories"`
	Pagination pagination     `json:"pagination"`
}

type pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}
