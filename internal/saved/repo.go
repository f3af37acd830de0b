package saved

import (
	"context"
	"database/sql"
	"fmt"

	"offersmonkey/pkg/models"
)

const (
	StatusSaved    = "saved"
	StatusRedeemed = "redeemed"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Save bookmarks an offer for the user. Saving an already saved offer
// is a no-op and keeps its current status.
func (r *Repo) Save(ctx context.Context, userID, offerID string) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT OR IGNORE INTO saved_offers (user_id, offer_id, status)
		VALUES (?, ?, ?)
	`, userID, offerID, StatusSaved)
	if err != nil {
		return fmt.Errorf("save offer: %w", err)
	}
	return nil
}

func (r *Repo) Unsave(ctx context.Context, userID, offerID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM saved_offers WHERE user_id = ? AND offer_id = ?
	`, userID, offerID)
	if err != nil {
		return false, fmt.Errorf("unsave offer: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// MarkRedeemed flips a saved offer to redeemed. It reports false when
// the offer was never saved.
func (r *Repo) MarkRedeemed(ctx context.Context, userID, offerID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE saved_offers SET status = ?
		WHERE user_id = ? AND offer_id = ?
	`, StatusRedeemed, userID, offerID)
	if err != nil {
		return false, fmt.Errorf("mark redeemed: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// List returns the user's saved offers joined with the offer rows,
// newest first. Saved rows whose offer has since been deleted are
// skipped. Pass an empty status to list everything.
func (r *Repo) List(ctx context.Context, userID, status string) ([]models.SavedOffer, error) {
	query := `
		SELECT s.user_id, s.offer_id, s.status, s.saved_at
		FROM saved_offers s
		JOIN offers o ON o.id = s.offer_id
		WHERE s.user_id = ?`
	args := []any{userID}
	if status != "" {
		query += ` AND s.status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY s.saved_at DESC, s.offer_id ASC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list saved: %w", err)
	}
	defer rows.Close()

	var out []models.SavedOffer
	for rows.Next() {
		var s models.SavedOffer
		if err := rows.Scan(&s.UserID, &s.OfferID, &s.Status, &s.SavedAt); err != nil {
			return nil, fmt.Errorf("scan saved: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// OfferIDs returns just the ids of the user's saved offers.
func (r *Repo) OfferIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT offer_id FROM saved_offers WHERE user_id = ?
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("saved offer ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
