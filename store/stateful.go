package store

import (
	"context"
	"errors"
	"strings"

	cache "github.com/patrickmn/go-cache"
)

// StatefulStore caches an owner's bookmark list and statuses in front of a
// remote BookmarkStore.
type StatefulStore struct {
	BookmarkStore
	identity Identity
	cache    *cache.Cache
}

func NewStatefulStore(store BookmarkStore, identity Identity, c *cache.Cache) BookmarkStore {
	return &StatefulStore{
		BookmarkStore: store,
		identity:      identity,
		cache:         c,
	}
}

func (s *StatefulStore) AddBookmark(ctx context.Context, bookmark *Bookmark) error {
	owner := s.owner(ctx)
	if err := s.BookmarkStore.AddBookmark(ctx, bookmark); err != nil {
		if owner != "" {
			s.evict(owner, bookmark.MovieID)
		}

		return err
	}

	if owner == "" {
		return nil
	}

	s.cache.Delete(listKey(owner))
	s.cache.SetDefault(statusKey(owner, bookmark.MovieID), bookmark.Status)
	return nil
}

func (s *StatefulStore) ListBookmarks(ctx context.Context) ([]*Bookmark, error) {
	owner := s.owner(ctx)
	if owner == "" {
		return s.BookmarkStore.ListBookmarks(ctx)
	}

	if b, ok := s.cache.Get(listKey(owner)); ok {
		return copyBookmarks(b.([]*Bookmark)), nil
	}

	bookmarks, err := s.BookmarkStore.ListBookmarks(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.SetDefault(listKey(owner), copyBookmarks(bookmarks))
	return bookmarks, nil
}

func (s *StatefulStore) DeleteBookmark(ctx context.Context, id MovieID) error {
	owner := s.owner(ctx)
	if owner != "" {
		defer s.evict(owner, id)
	}

	return s.BookmarkStore.DeleteBookmark(ctx, id)
}

func (s *StatefulStore) ClearBookmarks(ctx context.Context) error {
	owner := s.owner(ctx)
	if owner != "" {
		defer s.evictOwner(owner)
	}

	return s.BookmarkStore.ClearBookmarks(ctx)
}

func (s *StatefulStore) BookmarkStatus(ctx context.Context, id MovieID) (Status, error) {
	owner := s.owner(ctx)
	if owner == "" {
		return s.BookmarkStore.BookmarkStatus(ctx, id)
	}

	if st, ok := s.cache.Get(statusKey(owner, id)); ok {
		status := st.(Status)
		if status == "" {
			return "", ErrBookmarkNotFound
		}

		return status, nil
	}

	status, err := s.BookmarkStore.BookmarkStatus(ctx, id)
	switch {
	case errors.Is(err, ErrBookmarkNotFound):
		s.cache.SetDefault(statusKey(owner, id), Status(""))
		return "", err
	case err != nil:
		return "", err
	}

	s.cache.SetDefault(statusKey(owner, id), status)
	return status, nil
}

func (s *StatefulStore) UpdateBookmarkStatus(ctx context.Context, id MovieID, status Status) error {
	owner := s.owner(ctx)
	if owner != "" {
		defer s.evict(owner, id)
	}

	return s.BookmarkStore.UpdateBookmarkStatus(ctx, id, status)
}

// owner returns an empty string when nobody is signed in or the identity
// lookup fails; both cases skip the cache.
func (s *StatefulStore) owner(ctx context.Context) string {
	id, err := s.identity.UserID(ctx)
	if err != nil {
		return ""
	}

	return id
}

func (s *StatefulStore) evict(owner string, id MovieID) {
	s.cache.Delete(listKey(owner))
	s.cache.Delete(statusKey(owner, id))
}

func (s *StatefulStore) evictOwner(owner string) {
	prefix := listKey(owner)
	for key := range s.cache.Items() {
		if key == prefix || strings.HasPrefix(key, prefix+":") {
			s.cache.Delete(key)
		}
	}
}

func listKey(owner string) string {
	return "bookmarks:" + owner
}

func statusKey(owner string, id MovieID) string {
	if n, err := id.Int64(); err == nil {
		id = NewMovieID(n)
	}

	return "bookmarks:" + owner + ":" + string(id)
}

func copyBookmarks(bookmarks []*Bookmark) []*Bookmark {
	copied := make([]*Bookmark, 0, len(bookmarks))
	for _, b := range bookmarks {
		bookmark := *b
		copied = append(copied, &bookmark)
	}

	return copied
}
