package pipeline

import (
	"context"
	"log"
	"sync"
	"time"

	"offersmonkey/internal/cache"
	"offersmonkey/internal/categories"
	"offersmonkey/internal/filter"
	"offersmonkey/internal/offers"
	"offersmonkey/internal/prefs"
	"offersmonkey/pkg/models"
)

const rebuildTimeout = 30 * time.Second

// Deps are the data sources a view reads from. Sample defaults to
// SampleOffers when nil.
type Deps struct {
	Cache      *cache.Cache
	Offers     *offers.Repo
	Prefs      *prefs.Repo
	Categories *categories.Repo
	Sample     func() []models.Offer
}

// Snapshot is one fully materialized home screen for a user.
type Snapshot struct {
	Offers      []models.Offer    `json:"offers"`
	Categories  []models.Category `json:"categories"`
	TotalOffers int               `json:"total_offers"`
	Fallback    bool              `json:"fallback"`
	UsingSample bool              `json:"using_sample"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// filteredEntry is the cached shape of a user's filtered offer list.
// The fallback flag travels with the list so a cache hit reproduces the
// same response the filter computed.
type filteredEntry struct {
	Offers   []models.Offer `json:"offers"`
	Fallback bool           `json:"fallback"`
}

// View maintains the home snapshot for one user. Rebuilds are
// sequenced: each rebuild takes the next sequence number and a
// completed rebuild is applied only if no newer rebuild finished first,
// so a slow stale rebuild can never clobber fresher data. Concurrent
// refresh requests coalesce into at most one queued follow-up.
type View struct {
	userID string
	deps   Deps

	mu       sync.Mutex
	seq      uint64 // last rebuild started
	applied  uint64 // rebuild whose result is in cur
	inflight bool
	pending  bool
	ready    bool
	cur      Snapshot
}

func newView(userID string, deps Deps) *View {
	if deps.Sample == nil {
		deps.Sample = SampleOffers
	}
	return &View{userID: userID, deps: deps}
}

// Current returns the user's snapshot, building it read-through on
// first access.
func (v *View) Current(ctx context.Context) (Snapshot, error) {
	v.mu.Lock()
	if v.ready {
		snap := v.cur
		v.mu.Unlock()
		return snap, nil
	}
	v.seq++
	seq := v.seq
	v.mu.Unlock()

	snap, err := v.rebuild(ctx, false)
	if err != nil {
		return Snapshot{}, err
	}
	v.apply(seq, snap)
	return snap, nil
}

// Refresh schedules an asynchronous rebuild that bypasses the caches.
// If one is already running the request is coalesced into a single
// queued follow-up run.
func (v *View) Refresh() {
	v.mu.Lock()
	if v.inflight {
		v.pending = true
		v.mu.Unlock()
		return
	}
	v.inflight = true
	v.mu.Unlock()

	go v.refreshLoop()
}

func (v *View) refreshLoop() {
	for {
		v.mu.Lock()
		v.seq++
		seq := v.seq
		v.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), rebuildTimeout)
		snap, err := v.rebuild(ctx, true)
		cancel()
		if err != nil {
			log.Printf("[pipeline] rebuild for %s failed: %v", v.userID, err)
		} else {
			v.apply(seq, snap)
		}

		v.mu.Lock()
		if !v.pending {
			v.inflight = false
			v.mu.Unlock()
			return
		}
		v.pending = false
		v.mu.Unlock()
	}
}

// apply installs a rebuilt snapshot unless a newer rebuild already
// landed.
func (v *View) apply(seq uint64, snap Snapshot) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if seq < v.applied {
		return
	}
	v.applied = seq
	v.cur = snap
	v.ready = true
}

// rebuild materializes a snapshot. With fresh set, cache reads are
// skipped and every layer is recomputed and written back; otherwise
// each layer is read through its cache.
func (v *View) rebuild(ctx context.Context, fresh bool) (Snapshot, error) {
	all, usingSample := v.loadOffers(ctx, fresh)
	pref := v.loadPrefs(ctx, fresh)

	visible, fallback := v.loadFiltered(ctx, fresh, all, pref)
	cats := v.loadCategories(ctx, fresh, all)

	return Snapshot{
		Offers:      visible,
		Categories:  cats,
		TotalOffers: len(all),
		Fallback:    fallback,
		UsingSample: usingSample,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

func (v *View) loadOffers(ctx context.Context, fresh bool) ([]models.Offer, bool) {
	if !fresh {
		var cached []models.Offer
		if v.deps.Cache.GetJSON(ctx, cache.KeyOffers, &cached) && len(cached) > 0 {
			return cached, false
		}
	}

	all, err := v.deps.Offers.All(ctx)
	if err != nil {
		log.Printf("[pipeline] load offers failed: %v", err)
	}
	if len(all) == 0 {
		return v.deps.Sample(), true
	}
	v.deps.Cache.PutJSON(ctx, cache.KeyOffers, all)
	return all, false
}

func (v *View) loadPrefs(ctx context.Context, fresh bool) models.Preferences {
	key := cache.KeyUserPreferences + ":" + v.userID
	if !fresh {
		var cached models.Preferences
		if v.deps.Cache.GetJSON(ctx, key, &cached) {
			return cached
		}
	}

	p, err := v.deps.Prefs.Load(ctx, v.userID)
	if err != nil {
		// filtering degrades to the unfiltered list
		log.Printf("[pipeline] load preferences for %s failed: %v", v.userID, err)
		return models.Preferences{}
	}
	v.deps.Cache.PutJSON(ctx, key, p)
	return p
}

func (v *View) loadFiltered(ctx context.Context, fresh bool, all []models.Offer, p models.Preferences) ([]models.Offer, bool) {
	key := cache.KeyFilteredOffers + ":" + v.userID
	if !fresh {
		var cached filteredEntry
		if v.deps.Cache.GetJSON(ctx, key, &cached) && cached.Offers != nil {
			return cached.Offers, cached.Fallback
		}
	}

	visible, fallback := filter.Visible(all, p)
	v.deps.Cache.PutJSON(ctx, key, filteredEntry{Offers: visible, Fallback: fallback})
	return visible, fallback
}

func (v *View) loadCategories(ctx context.Context, fresh bool, all []models.Offer) []models.Category {
	if !fresh {
		var cached []models.Category
		if v.deps.Cache.GetJSON(ctx, cache.KeyCategories, &cached) && len(cached) > 0 {
			return cached
		}
	}

	known, err := v.deps.Categories.List(ctx)
	if err != nil || len(known) == 0 {
		known = categories.Defaults()
	}

	cats := categories.DeriveDynamic(all, known)
	if len(cats) == 0 {
		cats = known
	}
	v.deps.Cache.PutJSON(ctx, cache.KeyCategories, cats)
	return cats
}
