package feed

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Quota guards the metered upstream feed: at most one full extract per
// UTC calendar day. Completed syncs are recorded in feed_sync_log.
type Quota struct {
	DB  *sql.DB
	Now func() time.Time
}

func NewQuota(db *sql.DB) *Quota {
	return &Quota{DB: db, Now: time.Now}
}

func (q *Quota) today() string {
	return q.Now().UTC().Format("2006-01-02")
}

// AllowFullSync reports whether no full sync has completed yet today.
func (q *Quota) AllowFullSync(ctx context.Context) (bool, error) {
	var n int
	err := q.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM feed_sync_log WHERE sync_day = ?
	`, q.today()).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check sync quota: %w", err)
	}
	return n == 0, nil
}

// MarkSynced records a completed full sync for today. Re-running on the
// same day (forced syncs) just refreshes the row.
func (q *Quota) MarkSynced(ctx context.Context, count int) error {
	_, err := q.DB.ExecContext(ctx, `
		INSERT INTO feed_sync_log (sync_day, synced_at, count)
		VALUES (?, CURRENT_TIMESTAMP, ?)
		ON CONFLICT(sync_day) DO UPDATE SET
			synced_at = CURRENT_TIMESTAMP,
			count = excluded.count
	`, q.today(), count)
	if err != nil {
		return fmt.Errorf("record sync: %w", err)
	}
	return nil
}

// LastSync returns the most recent sync time and row count, or zero
// values when no sync has ever run.
func (q *Quota) LastSync(ctx context.Context) (time.Time, int, error) {
	var at time.Time
	var count int
	err := q.DB.QueryRowContext(ctx, `
		SELECT synced_at, count FROM feed_sync_log
		ORDER BY sync_day DESC LIMIT 1
	`).Scan(&at, &count)
	if err == sql.ErrNoRows {
		return time.Time{}, 0, nil
	}
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("last sync: %w", err)
	}
	return at, count, nil
}
