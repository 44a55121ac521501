package handler

import (
	"net/http"

	"weave-server/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *StoryHandler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request data: " + err.Error()})
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	registrationsTotal.Inc()

	c.JSON(http.StatusCreated, gin.H{
		"id":      user.ID.String(),
		"email":   user.Email,
		"name":    user.Name,
		"credits": user.Credits,
	})
}

func (h *StoryHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request data: " + err.Error()})
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":      user.ID.String(),
			"email":   user.Email,
			"name":    user.Name,
			"credits": user.Credits,
		},
	})
}
