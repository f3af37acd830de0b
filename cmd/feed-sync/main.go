package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"time"

	"offersmonkey/internal/feed"
	"offersmonkey/pkg/config"
	"offersmonkey/pkg/database"
)

func main() {
	force := flag.Bool("force", false, "bypass the once-per-day quota")
	flag.Parse()

	cfg := config.MustLoad()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db := database.MustOpen(database.Config{Path: cfg.Database.Path})
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	var sources []feed.Source
	if cfg.Feed.URL != "" && cfg.Feed.APIKey != "" {
		sources = append(sources, feed.NewLinkMyDeals(cfg.Feed.URL, cfg.Feed.APIKey))
	}
	if cfg.Feed.MirrorURL != "" {
		sources = append(sources, feed.NewMirror(cfg.Feed.MirrorURL))
	}
	if len(sources) == 0 {
		log.Fatal("no feed sources configured; set OFFERSMONKEY_FEED_URL/OFFERSMONKEY_FEED_API_KEY or OFFERSMONKEY_FEED_MIRROR_URL")
	}

	syncer := feed.NewSyncer(db, sources...)

	stats, err := syncer.Run(ctx, *force)
	if errors.Is(err, feed.ErrQuotaExhausted) {
		log.Println("full sync already ran today; rerun with -force to override")
		return
	}
	if err != nil {
		log.Fatalf("sync failed: %v", err)
	}

	log.Printf("sync complete: %d rows fetched from %d sources, %d offers upserted",
		stats.Fetched, stats.Sources, stats.Upserted)
}
