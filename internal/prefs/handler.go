package prefs

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"offersmonkey/internal/changefeed"
	"offersmonkey/pkg/models"
)

// Handler exposes the preference endpoints. OnChange, when set, is
// called after every successful mutation so downstream read models can
// drop their cached filtered view for the user.
type Handler struct {
	Repo     *Repo
	Hub      *changefeed.Hub
	OnChange func(userID string)
}

func NewHandler(repo *Repo, hub *changefeed.Hub) *Handler {
	return &Handler{Repo: repo, Hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/users/preferences", h.get)
	rg.PUT("/users/preferences", h.replace)
	rg.POST("/users/preferences/:type/:id", h.add)
	rg.DELETE("/users/preferences/:type/:id", h.remove)
	rg.DELETE("/users/preferences", h.clear)
}

func (h *Handler) changed(userID string) {
	if h.OnChange != nil {
		h.OnChange(userID)
	}
	if h.Hub != nil {
		go h.Hub.Broadcast(changefeed.NewPreferenceEvent(userID))
	}
}

func (h *Handler) get(c *gin.Context) {
	userID := c.GetString("user_id")

	p, err := h.Repo.Load(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load preferences"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) replace(c *gin.Context) {
	userID := c.GetString("user_id")

	var p models.Preferences
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.Repo.Replace(c.Request.Context(), userID, p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save preferences"})
		return
	}

	h.changed(userID)

	saved, err := h.Repo.Load(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load preferences"})
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *Handler) add(c *gin.Context) {
	userID := c.GetString("user_id")

	if err := h.Repo.Add(c.Request.Context(), userID, c.Param("type"), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.changed(userID)
	c.JSON(http.StatusOK, gin.H{"message": "preference added"})
}

func (h *Handler) remove(c *gin.Context) {
	userID := c.GetString("user_id")

	removed, err := h.Repo.Remove(c.Request.Context(), userID, c.Param("type"), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "preference not found"})
		return
	}

	h.changed(userID)
	c.JSON(http.StatusOK, gin.H{"message": "preference removed"})
}

func (h *Handler) clear(c *gin.Context) {
	userID := c.GetString("user_id")

	if err := h.Repo.Clear(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear preferences"})
		return
	}

	h.changed(userID)
	c.JSON(http.StatusOK, gin.H{"message": "preferences cleared"})
}
