// Package bookmarks is the single bookmark API used by the application. It
// routes every call to the guest (local) or account (remote) store depending on
// the current mode and moves guest bookmarks into the account on sign-in.
package bookmarks

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/movienight/movienight/state"
	"github.com/movienight/movienight/store"
	"go.uber.org/zap"
)

// ModeReader reports which store backs bookmark operations right now.
type ModeReader interface {
	Mode() state.Mode
}

// LocalStore is the guest store. Init creates its schema.
type LocalStore interface {
	store.BookmarkStore
	Init(ctx context.Context) error
}

type Manager struct {
	mode   ModeReader
	local  LocalStore
	remote store.BookmarkStore
	log    *zap.SugaredLogger

	identity store.Identity
	attempts uint
	delay    time.Duration
}

type Option func(*Manager)

// WithRetry retries each remote write during migration. attempts counts the
// first try, so 1 disables retries.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(m *Manager) {
		if attempts == 0 {
			attempts = 1
		}

		m.attempts = attempts
		m.delay = delay
	}
}

// WithIdentity makes migration confirm an account is signed in before writing
// to the account store and again before clearing the guest store.
func WithIdentity(identity store.Identity) Option {
	return func(m *Manager) {
		m.identity = identity
	}
}

func NewManager(mode ModeReader, local LocalStore, remote store.BookmarkStore, log *zap.SugaredLogger, opts ...Option) *Manager {
	m := &Manager{
		mode:     mode,
		local:    local,
		remote:   remote,
		log:      log,
		attempts: 1,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Init ensures the guest store schema exists. Call once before anything else.
func (m *Manager) Init(ctx context.Context) error {
	return m.local.Init(ctx)
}

// backend reads the mode once; an operation finishes on the store that was
// active when it started even if the mode flips meanwhile.
func (m *Manager) backend() (store.BookmarkStore, state.Mode) {
	mode := m.mode.Mode()
	if mode == state.Account {
		return m.remote, mode
	}

	return m.local, mode
}

func (m *Manager) Add(ctx context.Context, bookmark *store.Bookmark) {
	b, mode := m.backend()
	normalized := *bookmark
	normalized.MovieID = canonical(bookmark.MovieID)
	normalized.Status = normalizeStatus(bookmark.Status)

	if err := b.AddBookmark(ctx, &normalized); err != nil {
		m.log.Errorw("failed to add bookmark", "mode", mode, "movie_id", bookmark.MovieID, "error", err)
	}
}

// List returns an empty slice on failure.
func (m *Manager) List(ctx context.Context) []*store.Bookmark {
	b, mode := m.backend()
	bookmarks, err := b.ListBookmarks(ctx)
	if err != nil {
		m.log.Errorw("failed to list bookmarks", "mode", mode, "error", err)
		return make([]*store.Bookmark, 0)
	}

	return bookmarks
}

func (m *Manager) Remove(ctx context.Context, id store.MovieID) {
	b, mode := m.backend()
	id = canonical(id)
	if err := b.DeleteBookmark(ctx, id); err != nil {
		m.log.Errorw("failed to remove bookmark", "mode", mode, "movie_id", id, "error", err)
	}
}

func (m *Manager) Clear(ctx context.Context) {
	b, mode := m.backend()
	if err := b.ClearBookmarks(ctx); err != nil {
		m.log.Errorw("failed to clear bookmarks", "mode", mode, "error", err)
	}
}

// Status reports the bookmark status of id. ok is false when the title is not
// bookmarked or the lookup failed.
func (m *Manager) Status(ctx context.Context, id store.MovieID) (status store.Status, ok bool) {
	b, mode := m.backend()
	id = canonical(id)
	status, err := b.BookmarkStatus(ctx, id)
	switch {
	case errors.Is(err, store.ErrBookmarkNotFound):
		return "", false
	case err != nil:
		m.log.Errorw("failed to check bookmark", "mode", mode, "movie_id", id, "error", err)
		return "", false
	}

	return status, true
}

func (m *Manager) UpdateStatus(ctx context.Context, id store.MovieID, status store.Status) {
	b, mode := m.backend()
	id, status = canonical(id), normalizeStatus(status)
	if err := b.UpdateBookmarkStatus(ctx, id, status); err != nil {
		m.log.Errorw("failed to update bookmark status", "mode", mode, "movie_id", id, "status", status, "error", err)
	}
}

// canonical rewrites numeric ids to their base 10 form so both stores key a
// title the same way. Other ids are only trimmed.
func canonical(id store.MovieID) store.MovieID {
	if n, err := id.Int64(); err == nil {
		return store.NewMovieID(n)
	}

	return store.MovieID(strings.TrimSpace(string(id)))
}

// normalizeStatus maps spellings such as "watchlater" to the stored form.
// Unknown values pass through for the store to reject.
func normalizeStatus(status store.Status) store.Status {
	if parsed, err := store.ParseStatus(string(status)); err == nil {
		return parsed
	}

	return status
}
