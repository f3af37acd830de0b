package admin

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"offersmonkey/internal/feed"
	"offersmonkey/pkg/models"
)

// importOffersCSV ingests a CSV body whose header names feed columns
// (lmd_id, title, offer_value, ...). Rows go through the same
// normalizer as the live feed so estimated prices come out consistent.
func (h *Handler) importOffersCSV(c *gin.Context) {
	r := csv.NewReader(c.Request.Body)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing csv header"})
		return
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.ToLower(header[i]))
	}

	norm := feed.NewNormalizer(nil)
	var imported []models.Offer
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("bad csv row: %v", err)})
			return
		}

		row := feed.Row{}
		for i, name := range header {
			if i < len(record) && record[i] != "" {
				row[name] = record[i]
			}
		}
		if len(row) == 0 {
			continue
		}
		imported = append(imported, norm.Normalize(row))
	}

	if len(imported) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no rows to import"})
		return
	}

	if err := feed.SaveToDatabase(c.Request.Context(), h.Offers.DB, imported); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "import failed"})
		return
	}

	h.offersChanged()
	c.JSON(http.StatusOK, gin.H{"imported": len(imported)})
}

func (h *Handler) exportOffersCSV(c *gin.Context) {
	all, err := h.Offers.All(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="offers.csv"`)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{
		"id", "feed_id", "title", "description", "store", "categories", "code",
		"price", "original_price", "price_estimated", "savings", "featured", "status", "url",
	})
	for _, o := range all {
		_ = w.Write([]string{
			o.ID,
			fmt.Sprintf("%d", o.FeedID),
			o.Title,
			o.Description,
			o.Store,
			o.Categories,
			o.Code,
			fmt.Sprintf("%.2f", o.Price),
			fmt.Sprintf("%.2f", o.OriginalPrice),
			fmt.Sprintf("%t", o.PriceEstimated),
			o.Savings,
			fmt.Sprintf("%t", o.Featured),
			o.Status,
			o.URL,
		})
	}
	w.Flush()
}
