package offers

import (
	"context"
	"fmt"

	"offersmonkey/pkg/models"
)

// Back-office mutations. The consumer surface is read-only; these are
// reached through the admin routes and the CSV import tool.

func (r *Repo) Create(ctx context.Context, o models.Offer) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO offers (
			id, feed_id, title, description, long_offer, terms, store,
			categories, image_url, code, price, original_price,
			price_estimated, savings, start_date, end_date, featured,
			publisher_exclusive, sponsored, status, url, smartlink,
			merchant_homepage, is_amazon
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, o.ID, o.FeedID, o.Title, o.Description, o.LongOffer, o.Terms,
		o.Store, o.Categories, o.ImageURL, o.Code, o.Price,
		o.OriginalPrice, o.PriceEstimated, o.Savings, o.StartDate,
		o.EndDate, o.Featured, o.PublisherExclusive, o.Sponsored,
		o.Status, o.URL, o.Smartlink, o.MerchantHomepage, o.IsAmazon)
	if err != nil {
		return fmt.Errorf("create offer: %w", err)
	}
	return nil
}

func (r *Repo) Update(ctx context.Context, o models.Offer) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE offers SET
			title = ?, description = ?, long_offer = ?, terms = ?,
			store = ?, categories = ?, image_url = ?, code = ?,
			price = ?, original_price = ?, price_estimated = ?,
			savings = ?, start_date = ?, end_date = ?, featured = ?,
			publisher_exclusive = ?, sponsored = ?, status = ?, url = ?,
			smartlink = ?, merchant_homepage = ?, is_amazon = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, o.Title, o.Description, o.LongOffer, o.Terms, o.Store,
		o.Categories, o.ImageURL, o.Code, o.Price, o.OriginalPrice,
		o.PriceEstimated, o.Savings, o.StartDate, o.EndDate, o.Featured,
		o.PublisherExclusive, o.Sponsored, o.Status, o.URL, o.Smartlink,
		o.MerchantHomepage, o.IsAmazon, o.ID)
	if err != nil {
		return false, fmt.Errorf("update offer: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM offers WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete offer: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *Repo) SetFeatured(ctx context.Context, id string, featured bool) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE offers SET featured = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, featured, id)
	if err != nil {
		return false, fmt.Errorf("set featured: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
