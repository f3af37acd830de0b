package prefs

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"offersmonkey/pkg/models"
)

// Repo persists preferences as individual (user_id, preference_type,
// preference_id) rows and reconstitutes them into the three-array
// Preferences record on load.
type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func validKind(kind string) bool {
	switch kind {
	case models.PreferenceStore, models.PreferenceBrand, models.PreferenceBank:
		return true
	}
	return false
}

// Load returns the full preference set for a user. Unknown
// preference_type rows are ignored rather than failing the load.
func (r *Repo) Load(ctx context.Context, userID string) (models.Preferences, error) {
	p := models.Preferences{
		Stores: []string{},
		Brands: []string{},
		Banks:  []string{},
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT preference_type, preference_id
		FROM user_preferences
		WHERE user_id = ?
	`, userID)
	if err != nil {
		return p, fmt.Errorf("load preferences: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind, id string
		if err := rows.Scan(&kind, &id); err != nil {
			return p, fmt.Errorf("scan preference: %w", err)
		}
		switch kind {
		case models.PreferenceStore:
			p.Stores = append(p.Stores, id)
		case models.PreferenceBrand:
			p.Brands = append(p.Brands, id)
		case models.PreferenceBank:
			p.Banks = append(p.Banks, id)
		}
	}
	if err := rows.Err(); err != nil {
		return p, fmt.Errorf("rows err: %w", err)
	}

	// stable output regardless of row order
	sort.Strings(p.Stores)
	sort.Strings(p.Brands)
	sort.Strings(p.Banks)
	return p, nil
}

func (r *Repo) Add(ctx context.Context, userID, kind, id string) error {
	kind = strings.ToLower(strings.TrimSpace(kind))
	id = strings.TrimSpace(id)
	if !validKind(kind) {
		return fmt.Errorf("invalid preference type %q", kind)
	}
	if id == "" {
		return fmt.Errorf("preference id required")
	}

	_, err := r.DB.ExecContext(ctx, `
		INSERT OR IGNORE INTO user_preferences (user_id, preference_type, preference_id)
		VALUES (?, ?, ?)
	`, userID, kind, id)
	if err != nil {
		return fmt.Errorf("add preference: %w", err)
	}
	return nil
}

func (r *Repo) Remove(ctx context.Context, userID, kind, id string) (bool, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if !validKind(kind) {
		return false, fmt.Errorf("invalid preference type %q", kind)
	}

	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM user_preferences
		WHERE user_id = ? AND preference_type = ? AND preference_id = ?
	`, userID, kind, strings.TrimSpace(id))
	if err != nil {
		return false, fmt.Errorf("remove preference: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Replace swaps the user's entire preference set in one transaction.
func (r *Repo) Replace(ctx context.Context, userID string, p models.Preferences) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM user_preferences WHERE user_id = ?
	`, userID); err != nil {
		return fmt.Errorf("clear preferences: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO user_preferences (user_id, preference_type, preference_id)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	insert := func(kind string, ids []string) error {
		for _, id := range ids {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			if _, err := stmt.ExecContext(ctx, userID, kind, id); err != nil {
				return fmt.Errorf("insert %s %q: %w", kind, id, err)
			}
		}
		return nil
	}

	if err := insert(models.PreferenceStore, p.Stores); err != nil {
		return err
	}
	if err := insert(models.PreferenceBrand, p.Brands); err != nil {
		return err
	}
	if err := insert(models.PreferenceBank, p.Banks); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return nil
}

// Clear removes every preference for a user.
func (r *Repo) Clear(ctx context.Context, userID string) error {
	if _, err := r.DB.ExecContext(ctx, `
		DELETE FROM user_preferences WHERE user_id = ?
	`, userID); err != nil {
		return fmt.Errorf("clear preferences: %w", err)
	}
	return nil
}
