package handler

import (
	"net/http"
	"strconv"

	"weave-server/internal/middleware"
	"weave-server/internal/models"
	"weave-server/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *StoryHandler) createStory(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req createStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request data: " + err.Error()})
		return
	}
	if req.Title == "" || req.InitialPrompt == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Title and initial prompt are required"})
		return
	}

	story, chapter, err := h.stories.CreateStory(c.Request.Context(), userID, service.CreateStoryParams{
		Title:         req.Title,
		Description:   req.Description,
		IsPublic:      req.IsPublic,
		InitialPrompt: req.InitialPrompt,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	storiesCreatedTotal.WithLabelValues(models.SourceLocal).Inc()
	c.JSON(http.StatusOK, createStoryResponse{Story: story, Chapter: chapter})
}

// appendChapter advances a story by one chapter from a structured choice.
func (h *StoryHandler) appendChapter(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	storyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid story id"})
		return
	}

	var req chapterChoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Choice is required"})
		return
	}
	if req.Choice.IsZero() {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Choice is required"})
		return
	}

	result, err := h.continuations.Continue(c.Request.Context(), userID, storyID, req.Choice)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	chaptersGeneratedTotal.WithLabelValues(result.Source).Inc()
	c.JSON(http.StatusOK, result)
}

func (h *StoryHandler) listChapters(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}
	_ = userID

	storyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid story id"})
		return
	}

	chapters, err := h.stories.ListChapters(c.Request.Context(), storyID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, chapters)
}

func (h *StoryHandler) generateStory(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request data: " + err.Error()})
		return
	}
	if req.Genre == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Missing required field: genre"})
		return
	}

	result, err := h.stories.GenerateStory(c.Request.Context(), userID, req.Genre, req.CustomPrompt)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	storiesCreatedTotal.WithLabelValues(result.Source).Inc()
	c.JSON(http.StatusOK, result)
}

// continueStory is the continuation endpoint keyed by story_id in the body.
func (h *StoryHandler) continueStory(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req continueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Missing required fields: story_id and choice"})
		return
	}
	if req.StoryID == "" || req.Choice.IsZero() {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Missing required fields: story_id and choice"})
		return
	}

	storyID, err := uuid.Parse(req.StoryID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid story id"})
		return
	}

	result, err := h.continuations.Continue(c.Request.Context(), userID, storyID, req.Choice)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	chaptersGeneratedTotal.WithLabelValues(result.Source).Inc()
	c.JSON(http.StatusOK, result)
}

func (h *StoryHandler) listStories(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "12"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 12
	}

	stories, total, err := h.stories.ListPublic(c.Request.Context(), limit, (page-1)*limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	pages := (total + limit - 1) / limit
	c.JSON(http.StatusOK, listStoriesResponse{
		Stories: stories,
		Pagination: pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: pages,
		},
	})
}
