package feed

import (
	"context"
	"database/sql"
	"fmt"

	"offersmonkey/pkg/models"
)

// SaveToDatabase upserts normalized offers into the offers table in one
// transaction. Rows are superseded wholesale: every column is taken
// from the incoming offer (last write wins; there are no partial
// updates).
func SaveToDatabase(ctx context.Context, db *sql.DB, offers []models.Offer) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO offers (
			id, feed_id, title, description, long_offer, terms, store,
			categories, image_url, code, price, original_price,
			price_estimated, savings, start_date, end_date, featured,
			publisher_exclusive, sponsored, status, url, smartlink,
			merchant_homepage, is_amazon, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			feed_id = excluded.feed_id,
			title = excluded.title,
			description = excluded.description,
			long_offer = excluded.long_offer,
			terms = excluded.terms,
			store = excluded.store,
			categories = excluded.categories,
			image_url = excluded.image_url,
			code = excluded.code,
			price = excluded.price,
			original_price = excluded.original_price,
			price_estimated = excluded.price_estimated,
			savings = excluded.savings,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			featured = excluded.featured,
			publisher_exclusive = excluded.publisher_exclusive,
			sponsored = excluded.sponsored,
			status = excluded.status,
			url = excluded.url,
			smartlink = excluded.smartlink,
			merchant_homepage = excluded.merchant_homepage,
			is_amazon = excluded.is_amazon,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return fmt.Errorf("prepare stmt: %w", err)
	}
	defer stmt.Close()

	for _, o := range offers {
		if _, err := stmt.ExecContext(
			ctx,
			o.ID, o.FeedID, o.Title, o.Description, o.LongOffer, o.Terms,
			o.Store, o.Categories, o.ImageURL, o.Code, o.Price,
			o.OriginalPrice, o.PriceEstimated, o.Savings, o.StartDate,
			o.EndDate, o.Featured, o.PublisherExclusive, o.Sponsored,
			o.Status, o.URL, o.Smartlink, o.MerchantHomepage, o.IsAmazon,
		); err != nil {
			return fmt.Errorf("exec upsert for %s: %w", o.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
