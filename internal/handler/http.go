package handler

import (
	"weave-server/internal/auth"
	"weave-server/internal/middleware"
	"weave-server/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StoryHandler wires the HTTP surface to the services.
type StoryHandler struct {
	stories       service.StoryService
	continuations service.ContinuationService
	reference     service.ReferenceService
	authService   auth.Service
	logger        *zap.Logger
}

func NewStoryHandler(
	stories service.StoryService,
	continuations service.ContinuationService,
	reference service.ReferenceService,
	authService auth.Service,
	logger *zap.Logger,
) *StoryHandler {
	return &StoryHandler{
		stories:       stories,
		continuations: continuations,
		reference:     reference,
		authService:   authService,
		logger:        logger.Named("StoryHandler"),
	}
}

// RegisterRoutes registers all routes on the gin engine.
func (h *StoryHandler) RegisterRoutes(router *gin.Engine) {
	authMiddleware := middleware.Auth(h.authService.VerifyToken, h.logger)

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", h.register)
		authGroup.POST("/login", h.login)
	}

	api := router.Group("/api")
	{
		api.GET("/stories", h.listStories)
		api.GET("/genres", h.getGenres)
		api.GET("/authors", h.getAuthors)
		api.POST("/suggestions", h.getSuggestions)

		protected := api.Group("", authMiddleware)
		{
			protected.POST("/stories", h.createStory)
			protected.POST("/stories/:id/chapters", h.appendChapter)
			protected.GET("/stories/:id/chapters", h.listChapters)
			protected.POST("/story/generate", h.generateStory)
			protected.POST("/story/continue", h.continueStory)
		}
	}
}
