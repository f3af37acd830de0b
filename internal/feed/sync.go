package feed

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"offersmonkey/internal/changefeed"
	"offersmonkey/internal/notify"
	"offersmonkey/pkg/models"
)

// ErrQuotaExhausted is returned when a full sync already ran today and
// force was not requested.
var ErrQuotaExhausted = errors.New("feed: full sync already ran today")

// SyncStats summarizes one sync run.
type SyncStats struct {
	Fetched  int       `json:"fetched"`
	Upserted int       `json:"upserted"`
	Sources  int       `json:"sources"`
	At       time.Time `json:"at"`
}

// Syncer runs the full fetch → normalize → upsert pipeline and fans the
// result out. Hub and Push are optional.
type Syncer struct {
	DB         *sql.DB
	Sources    []Source
	Normalizer *Normalizer
	Quota      *Quota
	Hub        *changefeed.Hub
	Push       *notify.Server
}

func NewSyncer(db *sql.DB, sources ...Source) *Syncer {
	return &Syncer{
		DB:         db,
		Sources:    sources,
		Normalizer: NewNormalizer(nil),
		Quota:      NewQuota(db),
	}
}

// Run performs one sync. Unless force is set, the daily quota guard is
// consulted first. Individual source failures are logged and skipped; a
// run fails only when persistence does.
func (s *Syncer) Run(ctx context.Context, force bool) (SyncStats, error) {
	if !force {
		ok, err := s.Quota.AllowFullSync(ctx)
		if err != nil {
			return SyncStats{}, err
		}
		if !ok {
			return SyncStats{}, ErrQuotaExhausted
		}
	}

	byID := make(map[string]models.Offer)
	order := make([]string, 0, 256)
	fetched := 0
	okSources := 0

	for _, src := range s.Sources {
		log.Printf("[feed] fetching from %s", src.Name())
		rows, err := src.FetchAll(ctx)
		if err != nil {
			// one broken source should not kill the whole sync
			log.Printf("[feed] source %s error: %v", src.Name(), err)
			continue
		}
		okSources++
		fetched += len(rows)

		for _, row := range rows {
			o := s.Normalizer.Normalize(row)
			if _, seen := byID[o.ID]; !seen {
				order = append(order, o.ID)
			}
			// last write wins on duplicate ids across sources
			byID[o.ID] = o
		}
	}

	offers := make([]models.Offer, 0, len(order))
	for _, id := range order {
		offers = append(offers, byID[id])
	}

	if err := SaveToDatabase(ctx, s.DB, offers); err != nil {
		return SyncStats{}, err
	}
	if err := s.Quota.MarkSynced(ctx, len(offers)); err != nil {
		return SyncStats{}, err
	}

	stats := SyncStats{
		Fetched:  fetched,
		Upserted: len(offers),
		Sources:  okSources,
		At:       time.Now().UTC(),
	}
	log.Printf("[feed] sync done: %d rows from %d sources, %d upserted",
		stats.Fetched, stats.Sources, stats.Upserted)

	if s.Hub != nil && len(offers) > 0 {
		go s.Hub.Broadcast(changefeed.NewOfferEvent(len(offers)))
	}
	if s.Push != nil && len(offers) > 0 {
		go s.Push.BroadcastNewOffers(len(offers), offers)
	}

	return stats, nil
}
