package admin

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"offersmonkey/internal/changefeed"
	"offersmonkey/internal/feed"
	"offersmonkey/internal/offers"
	"offersmonkey/internal/pipeline"
	"offersmonkey/pkg/models"
)

// Handler is the back-office surface. Every route must sit behind
// AuthMiddleware plus RequireAdmin.
type Handler struct {
	Offers *offers.Repo
	Syncer *feed.Syncer
	Quota  *feed.Quota
	Hub    *changefeed.Hub
	Engine *pipeline.Engine
}

func NewHandler(offerRepo *offers.Repo, syncer *feed.Syncer, quota *feed.Quota, hub *changefeed.Hub, engine *pipeline.Engine) *Handler {
	return &Handler{Offers: offerRepo, Syncer: syncer, Quota: quota, Hub: hub, Engine: engine}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/admin/offers", h.createOffer)
	rg.PUT("/admin/offers/:id", h.updateOffer)
	rg.DELETE("/admin/offers/:id", h.deleteOffer)
	rg.POST("/admin/offers/:id/feature", h.setFeatured)
	rg.POST("/admin/offers/import", h.importOffersCSV)
	rg.GET("/admin/offers/export", h.exportOffersCSV)
	rg.POST("/admin/sync", h.forceSync)
	rg.GET("/admin/stats", h.stats)
}

// offersChanged pushes the new catalog to every live client and view.
func (h *Handler) offersChanged() {
	if h.Hub != nil {
		go h.Hub.Broadcast(changefeed.NewOfferEvent(1))
	}
	if h.Engine != nil {
		h.Engine.InvalidateAll()
	}
}

func (h *Handler) createOffer(c *gin.Context) {
	var o models.Offer
	if err := c.ShouldBindJSON(&o); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	o.Title = strings.TrimSpace(o.Title)
	if o.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title required"})
		return
	}
	if o.ID == "" {
		o.ID = "data-" + uuid.NewString()
	}
	if o.Status == "" {
		o.Status = "active"
	}

	if err := h.Offers.Create(c.Request.Context(), o); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	h.offersChanged()
	c.JSON(http.StatusCreated, o)
}

func (h *Handler) updateOffer(c *gin.Context) {
	var o models.Offer
	if err := c.ShouldBindJSON(&o); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	o.ID = c.Param("id")

	ok, err := h.Offers.Update(c.Request.Context(), o)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "offer not found"})
		return
	}

	h.offersChanged()
	c.JSON(http.StatusOK, o)
}

func (h *Handler) deleteOffer(c *gin.Context) {
	ok, err := h.Offers.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "offer not found"})
		return
	}

	h.offersChanged()
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

type featureReq struct {
	Featured bool `json:"featured"`
}

func (h *Handler) setFeatured(c *gin.Context) {
	var req featureReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	ok, err := h.Offers.SetFeatured(c.Request.Context(), c.Param("id"), req.Featured)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "offer not found"})
		return
	}

	h.offersChanged()
	c.JSON(http.StatusOK, gin.H{"message": "updated"})
}

// forceSync runs a feed sync immediately, bypassing the daily quota.
func (h *Handler) forceSync(c *gin.Context) {
	if h.Syncer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sync not configured"})
		return
	}

	stats, err := h.Syncer.Run(c.Request.Context(), true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sync failed"})
		return
	}

	// the syncer already broadcast to the hub; just rebuild the views
	if h.Engine != nil {
		h.Engine.InvalidateAll()
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) stats(c *gin.Context) {
	total, err := h.Offers.Count(c.Request.Context(), offers.ListQuery{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats failed"})
		return
	}

	out := gin.H{"total_offers": total}

	if h.Hub != nil {
		out["connections"] = h.Hub.Stats()
	}
	if h.Quota != nil {
		at, count, err := h.Quota.LastSync(c.Request.Context())
		if err == nil && !at.IsZero() {
			out["last_sync"] = gin.H{
				"at":    at.UTC().Format(time.RFC3339),
				"count": count,
			}
		}
	}

	c.JSON(http.StatusOK, out)
}
