package categories

import (
	"context"
	"database/sql"
	"fmt"

	"offersmonkey/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Defaults is the admin-curated starter set seeded on first run.
func Defaults() []models.Category {
	names := []string{
		"Electronics", "Fashion", "Food & Dining", "Home & Kitchen",
		"Travel", "Beauty", "Health", "Toys & Kids",
	}
	out := make([]models.Category, 0, len(names))
	for _, n := range names {
		out = append(out, models.Category{ID: Slugify(n), Name: n, Icon: IconFor(n)})
	}
	return out
}

func (r *Repo) List(ctx context.Context) ([]models.Category, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, name, icon FROM categories ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) Upsert(ctx context.Context, c models.Category) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO categories (id, name, icon)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			icon = excluded.icon
	`, c.ID, c.Name, c.Icon)
	if err != nil {
		return fmt.Errorf("upsert category: %w", err)
	}
	return nil
}

// Seed inserts the default curated set; existing rows are left alone.
func (r *Repo) Seed(ctx context.Context) error {
	for _, c := range Defaults() {
		if _, err := r.DB.ExecContext(ctx, `
			INSERT OR IGNORE INTO categories (id, name, icon) VALUES (?, ?, ?)
		`, c.ID, c.Name, c.Icon); err != nil {
			return fmt.Errorf("seed category %s: %w", c.ID, err)
		}
	}
	return nil
}
