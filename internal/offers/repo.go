package offers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"offersmonkey/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

type ListQuery struct {
	Q          string   // keyword search in title/description/store
	Stores     []string // any-match
	Categories []string // any-match against the comma-separated text
	Featured   bool     // only featured offers
	Status     string
	Limit      int
	Offset     int
}

// ClampPaging normalizes Limit and Offset to the bounds the queries
// run with, so callers can echo the effective paging back.
func (q *ListQuery) ClampPaging() {
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

const offerColumns = `
	id, feed_id, title, description, long_offer, terms, store, categories,
	image_url, code, price, original_price, price_estimated, savings,
	start_date, end_date, featured, publisher_exclusive, sponsored,
	status, url, smartlink, merchant_homepage, is_amazon
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOffer(row rowScanner) (models.Offer, error) {
	var (
		o        models.Offer
		feedID   sql.NullInt64
		desc     sql.NullString
		long     sql.NullString
		terms    sql.NullString
		store    sql.NullString
		cats     sql.NullString
		img      sql.NullString
		code     sql.NullString
		price    sql.NullFloat64
		orig     sql.NullFloat64
		savings  sql.NullString
		start    sql.NullString
		end      sql.NullString
		status   sql.NullString
		u        sql.NullString
		smart    sql.NullString
		homepage sql.NullString
	)

	if err := row.Scan(
		&o.ID, &feedID, &o.Title, &desc, &long, &terms, &store, &cats,
		&img, &code, &price, &orig, &o.PriceEstimated, &savings,
		&start, &end, &o.Featured, &o.PublisherExclusive, &o.Sponsored,
		&status, &u, &smart, &homepage, &o.IsAmazon,
	); err != nil {
		return models.Offer{}, err
	}

	o.FeedID = feedID.Int64
	o.Description = desc.String
	o.LongOffer = long.String
	o.Terms = terms.String
	o.Store = store.String
	o.Categories = cats.String
	o.ImageURL = img.String
	o.Code = code.String
	o.Price = price.Float64
	o.OriginalPrice = orig.Float64
	o.Savings = savings.String
	o.StartDate = start.String
	o.EndDate = end.String
	o.Status = status.String
	o.URL = u.String
	o.Smartlink = smart.String
	o.MerchantHomepage = homepage.String
	return o, nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.Offer, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+offerColumns+` FROM offers WHERE id = ?`, id)

	o, err := scanOffer(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan getByID: %w", err)
	}
	return &o, nil
}

func (r *Repo) Count(ctx context.Context, q ListQuery) (int, error) {
	sqlStr, args := buildListSQL(q, true)
	var total int
	if err := r.DB.QueryRowContext(ctx, sqlStr, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count scan: %w", err)
	}
	return total, nil
}

func (r *Repo) List(ctx context.Context, q ListQuery) ([]models.Offer, error) {
	sqlStr, args := buildListSQL(q, false)

	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	out := make([]models.Offer, 0, q.Limit)
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("list scan: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// All returns the entire current offer set in feed order (most recently
// updated first). This is the pipeline's raw input.
func (r *Repo) All(ctx context.Context) ([]models.Offer, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+offerColumns+` FROM offers ORDER BY updated_at DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("all query: %w", err)
	}
	defer rows.Close()

	var out []models.Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("all scan: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// buildListSQL builds either COUNT(*) or the SELECT list. Store and
// category filters are any-match LIKE searches.
func buildListSQL(q ListQuery, countOnly bool) (string, []any) {
	baseSelect := `SELECT ` + offerColumns + ` FROM offers`
	if countOnly {
		baseSelect = `SELECT COUNT(*) FROM offers`
	}

	var where []string
	var args []any

	if kw := strings.TrimSpace(q.Q); kw != "" {
		where = append(where, "(LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(store) LIKE ?)")
		pat := "%" + strings.ToLower(kw) + "%"
		args = append(args, pat, pat, pat)
	}

	if len(q.Stores) > 0 {
		var or []string
		for _, s := range q.Stores {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			or = append(or, "LOWER(store) LIKE ?")
			args = append(args, "%"+strings.ToLower(s)+"%")
		}
		if len(or) > 0 {
			where = append(where, "("+strings.Join(or, " OR ")+")")
		}
	}

	if len(q.Categories) > 0 {
		var or []string
		for _, c := range q.Categories {
			c = strings.TrimSpace(c)
			if c == "" {
				continue
			}
			or = append(or, "LOWER(categories) LIKE ?")
			args = append(args, "%"+strings.ToLower(c)+"%")
		}
		if len(or) > 0 {
			where = append(where, "("+strings.Join(or, " OR ")+")")
		}
	}

	if q.Featured {
		where = append(where, "featured = 1")
	}

	if s := strings.TrimSpace(q.Status); s != "" {
		where = append(where, "LOWER(status) = ?")
		args = append(args, strings.ToLower(s))
	}

	sqlStr := baseSelect
	if len(where) > 0 {
		sqlStr += " WHERE " + strings.Join(where, " AND ")
	}

	if !countOnly {
		sqlStr += " ORDER BY featured DESC, updated_at DESC, id ASC"
		sqlStr += " LIMIT ? OFFSET ?"
		q.ClampPaging()
		args = append(args, q.Limit, q.Offset)
	}

	return sqlStr, args
}
