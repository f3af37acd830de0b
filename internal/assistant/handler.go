package assistant

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Client *Client
}

func NewHandler(client *Client) *Handler {
	return &Handler{Client: client}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/assistant/chat", h.chat)
	rg.GET("/assistant/history", h.history)
	rg.DELETE("/assistant/history", h.clear)
}

type chatReq struct {
	Message string `json:"message"`
}

func (h *Handler) chat(c *gin.Context) {
	if !h.Client.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "assistant is not configured"})
		return
	}

	userID := c.GetString("user_id")

	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message required"})
		return
	}

	answer, err := h.Client.Chat(c.Request.Context(), userID, msg)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "assistant unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reply": answer})
}

func (h *Handler) history(c *gin.Context) {
	userID := c.GetString("user_id")
	c.JSON(http.StatusOK, gin.H{"messages": h.Client.History.For(userID)})
}

func (h *Handler) clear(c *gin.Context) {
	userID := c.GetString("user_id")
	h.Client.History.Clear(userID)
	c.JSON(http.StatusOK, gin.H{"message": "history cleared"})
}
