package handlers

import (
	"net/http"

	"collab-service/internal/ai"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	aiClient *ai.Client
}

func NewHealthHandler(aiClient *ai.Client) *HealthHandler {
	return &HealthHandler{aiClient: aiClient}
}

func (h *HealthHandler) Health(c *gin.Context) {
	aiStatus := "unavailable"
	if h.aiClient != nil && h.aiClient.Healthy(c.Request.Context()) {
		aiStatus = "healthy"
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"ai":     aiStatus,
	})
}
