package pipeline

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Engine *Engine
}

func NewHandler(engine *Engine) *Handler {
	return &Handler{Engine: engine}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/home", h.home)
	rg.POST("/home/refresh", h.refresh)
}

func (h *Handler) home(c *gin.Context) {
	userID := c.GetString("user_id")

	snap, err := h.Engine.ViewFor(userID).Current(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build home feed"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *Handler) refresh(c *gin.Context) {
	userID := c.GetString("user_id")

	h.Engine.ViewFor(userID).Refresh()
	c.JSON(http.StatusAccepted, gin.H{"status": "refresh scheduled"})
}
