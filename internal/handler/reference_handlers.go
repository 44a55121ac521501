package handler

import (
	"net/http"
	"strconv"

	"weave-server/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *StoryHandler) getGenres(c *gin.Context) {
	genres, source := h.reference.Genres(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"genres": genres,
		"source": source,
	})
}

func (h *StoryHandler) getAuthors(c *gin.Context) {
	var genreID *int
	if raw := c.Query("genre_id"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid genre_id"})
			return
		}
		genreID = &parsed
	}

	authors, source := h.reference.Authors(c.Request.Context(), genreID)
	c.JSON(http.StatusOK, gin.H{
		"authors": authors,
		"source":  source,
	})
}

func (h *StoryHandler) getSuggestions(c *gin.Context) {
	var req suggestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Genre == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Missing required field: genre"})
		return
	}

	suggestions, source := h.reference.Suggestions(c.Request.Context(), req.Genre)
	c.JSON(http.StatusOK, gin.H{
		"suggestions": suggestions,
		"source":      source,
	})
}
