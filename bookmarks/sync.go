package bookmarks

import (
	"context"

	"github.com/avast/retry-go/v4"
	"github.com/movienight/movienight/store"
)

// SyncResult lists which guest bookmarks reached the account store.
type SyncResult struct {
	Migrated []store.MovieID
	Failed   []store.MovieID
}

func (r *SyncResult) Empty() bool {
	return len(r.Migrated) == 0 && len(r.Failed) == 0
}

// SyncGuestToOnline drains the guest store into the account store, one
// bookmark at a time in list order. A failed item is logged and skipped. The
// guest store is cleared afterwards no matter how many items failed, so failed
// items are lost. Nothing is copied or cleared unless the identity reports the
// same signed-in account before and after the copy.
func (m *Manager) SyncGuestToOnline(ctx context.Context) *SyncResult {
	result := &SyncResult{
		Migrated: make([]store.MovieID, 0),
		Failed:   make([]store.MovieID, 0),
	}

	owner, ok := m.signedIn(ctx)
	if !ok {
		return result
	}

	guest, err := m.local.ListBookmarks(ctx)
	if err != nil {
		m.log.Errorw("failed to read guest bookmarks", "error", err)
		return result
	}

	if len(guest) == 0 {
		return result
	}

	m.log.Infow("syncing guest bookmarks", "count", len(guest))
	for _, item := range guest {
		numericID, err := item.MovieID.Int64()
		if err != nil {
			m.log.Errorw("failed to migrate bookmark", "movie_id", item.MovieID, "error", err)
			result.Failed = append(result.Failed, item.MovieID)
			continue
		}

		bookmark := &store.Bookmark{
			MovieID:      store.NewMovieID(numericID),
			Title:        item.Title,
			Overview:     item.Overview,
			PosterPath:   item.PosterPath,
			BackdropPath: item.BackdropPath,
			Type:         item.Type,
			Status:       item.Status,
		}

		err = retry.Do(
			func() error {
				return m.remote.AddBookmark(ctx, bookmark)
			},
			retry.Context(ctx),
			retry.Attempts(m.attempts),
			retry.Delay(m.delay),
			retry.DelayType(retry.FixedDelay),
			retry.LastErrorOnly(true),
		)
		if err != nil {
			m.log.Errorw("failed to migrate bookmark", "movie_id", item.MovieID, "error", err)
			result.Failed = append(result.Failed, item.MovieID)
			continue
		}

		result.Migrated = append(result.Migrated, bookmark.MovieID)
	}

	// a sign-out during the copy leaves the guest store untouched
	if current, ok := m.signedIn(ctx); !ok || current != owner {
		m.log.Warnw("account changed during sync, keeping guest bookmarks", "user_id", owner, "migrated", len(result.Migrated))
		return result
	}

	if err := m.local.ClearBookmarks(ctx); err != nil {
		m.log.Errorw("failed to clear guest bookmarks", "error", err)
	}

	if len(result.Failed) > 0 {
		m.log.Warnw("guest bookmarks dropped during sync", "failed", result.Failed, "migrated", len(result.Migrated))
	} else {
		m.log.Infow("guest bookmarks synced", "migrated", len(result.Migrated))
	}

	return result
}

// signedIn returns the account the account store writes to. Without an
// identity the account store is trusted as is.
func (m *Manager) signedIn(ctx context.Context) (string, bool) {
	if m.identity == nil {
		return "", true
	}

	owner, err := m.identity.UserID(ctx)
	if err != nil {
		m.log.Errorw("failed to resolve account for sync", "error", err)
		return "", false
	}

	if owner == "" {
		m.log.Warn("no account signed in, skipping guest sync")
		return "", false
	}

	return owner, true
}
