package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"offersmonkey/internal/feed"
	"offersmonkey/pkg/config"
	"offersmonkey/pkg/database"
	"offersmonkey/pkg/models"
)

// import-csv loads offers and saved-offer rows from CSV snapshots.
// Offer rows go through the same normalizer as the live feed, so the
// CSV can use feed column names (lmd_id, offer_value, ...) as well as
// the canonical ones.
func main() {
	var (
		offersIn = flag.String("offers", "data/offers.csv", "input CSV path for offers")
		savedIn  = flag.String("saved", "", "optional input CSV path for saved offers")
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

	n, err := importOffers(ctx, db, *offersIn)
	if err != nil {
		log.Fatalf("import offers failed: %v", err)
	}
	log.Printf("imported %d offers from %s", n, *offersIn)

	if *savedIn != "" {
		n, err := importSaved(ctx, db, *savedIn)
		if err != nil {
			log.Fatalf("import saved offers failed: %v", err)
		}
		log.Printf("imported %d saved offers from %s", n, *savedIn)
	}
}

func importOffers(ctx context.Context, db *sql.DB, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return 0, err
	}

	normalizer := feed.NewNormalizer(nil)
	var offers []models.Offer

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
		if len(record) == 0 {
			continue
		}

		row := make(feed.Row, len(header))
		for name, idx := range header {
			if idx < len(record) && strings.TrimSpace(record[idx]) != "" {
				row[name] = strings.TrimSpace(record[idx])
			}
		}
		if len(row) == 0 {
			continue
		}
		offers = append(offers, normalizer.Normalize(row))
	}

	if err := feed.SaveToDatabase(ctx, db, offers); err != nil {
		return 0, err
	}
	return len(offers), nil
}

func importSaved(ctx context.Context, db *sql.DB, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return 0, err
	}

	stmt, err := db.PrepareContext(ctx, `
		INSERT INTO saved_offers (user_id, offer_id, status)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id, offer_id) DO UPDATE SET
			status = excluded.status
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}

		userID := valueAt(header, record, "user_id")
		offerID := valueAt(header, record, "offer_id")
		if userID == "" || offerID == "" {
			continue
		}
		status := valueAt(header, record, "status")
		if status == "" {
			status = "saved"
		}

		if _, err := stmt.ExecContext(ctx, userID, offerID, status); err != nil {
			return 0, err
		}
		count++
	}
	return count, nil
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
