package saved

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"offersmonkey/internal/offers"
	"offersmonkey/pkg/models"
)

type Handler struct {
	Repo   *Repo
	Offers *offers.Repo
}

func NewHandler(repo *Repo, offerRepo *offers.Repo) *Handler {
	return &Handler{Repo: repo, Offers: offerRepo}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/users/saved", h.list)
	rg.POST("/users/saved/:offerID", h.save)
	rg.DELETE("/users/saved/:offerID", h.unsave)
	rg.POST("/users/saved/:offerID/redeem", h.redeem)
}

func (h *Handler) list(c *gin.Context) {
	userID := c.GetString("user_id")
	status := c.Query("status")

	entries, err := h.Repo.List(c.Request.Context(), userID, status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list saved offers"})
		return
	}

	// join in the offer details so the client renders without N extra
	// round trips
	type savedOffer struct {
		models.SavedOffer
		Offer *models.Offer `json:"offer,omitempty"`
	}
	out := make([]savedOffer, 0, len(entries))
	for _, e := range entries {
		o, err := h.Offers.GetByID(c.Request.Context(), e.OfferID)
		if err != nil {
			continue
		}
		out = append(out, savedOffer{SavedOffer: e, Offer: o})
	}

	c.JSON(http.StatusOK, gin.H{"saved": out, "count": len(out)})
}

func (h *Handler) save(c *gin.Context) {
	userID := c.GetString("user_id")
	offerID := c.Param("offerID")

	o, err := h.Offers.GetByID(c.Request.Context(), offerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load offer"})
		return
	}
	if o == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "offer not found"})
		return
	}

	if err := h.Repo.Save(c.Request.Context(), userID, offerID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save offer"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "offer saved"})
}

func (h *Handler) unsave(c *gin.Context) {
	userID := c.GetString("user_id")

	removed, err := h.Repo.Unsave(c.Request.Context(), userID, c.Param("offerID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove saved offer"})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "offer not saved"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "offer removed"})
}

func (h *Handler) redeem(c *gin.Context) {
	userID := c.GetString("user_id")

	updated, err := h.Repo.MarkRedeemed(c.Request.Context(), userID, c.Param("offerID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark redeemed"})
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"error": "offer not saved"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "offer marked redeemed"})
}
