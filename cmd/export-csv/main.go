package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"offersmonkey/internal/offers"
	"offersmonkey/pkg/config"
	"offersmonkey/pkg/database"
)

func main() {
	var (
		offersOut = flag.String("offers", "data/offers.csv", "output CSV path for offers")
		savedOut  = flag.String("saved", "data/saved_offers.csv", "output CSV path for saved offers")
	)
	flag.Parse()

	cfg := config.MustLoad()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.Config{Path: cfg.Database.Path})
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	if err := exportOffers(ctx, db, *offersOut); err != nil {
		log.Fatalf("export offers failed: %v", err)
	}
	if err := exportSaved(ctx, db, *savedOut); err != nil {
		log.Fatalf("export saved offers failed: %v", err)
	}

	log.Printf("exported offers to %s and saved offers to %s", *offersOut, *savedOut)
}

func exportOffers(ctx context.Context, db *sql.DB, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		"id", "feed_id", "title", "description", "store", "categories", "code",
		"price", "original_price", "price_estimated", "savings", "featured", "status", "url",
	}); err != nil {
		return err
	}

	all, err := offers.NewRepo(db).All(ctx)
	if err != nil {
		return err
	}

	for _, o := range all {
		if err := w.Write([]string{
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
		}); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func exportSaved(ctx context.Context, db *sql.DB, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"user_id", "offer_id", "status", "saved_at"}); err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, `
        SELECT user_id, offer_id, status, saved_at
        FROM saved_offers
        ORDER BY saved_at DESC
    `)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			userID  string
			offerID string
			status  string
			savedAt time.Time
		)
		if err := rows.Scan(&userID, &offerID, &status, &savedAt); err != nil {
			return err
		}

		if err := w.Write([]string{
			userID,
			offerID,
			status,
			savedAt.Format(time.RFC3339),
		}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}
