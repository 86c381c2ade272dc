package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/movienight/movienight/store"
)

var _ store.BookmarkStore = (*Store)(nil)

func (s *Store) AddBookmark(ctx context.Context, bookmark *store.Bookmark) error {
	if err := bookmark.Validate(); err != nil {
		return err
	}

	createdAt := bookmark.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bookmarks (movie_id, title, overview, poster_path, backdrop_path, type, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(movie_id) DO UPDATE SET
			title = excluded.title,
			overview = excluded.overview,
			poster_path = excluded.poster_path,
			backdrop_path = excluded.backdrop_path,
			type = excluded.type,
			status = excluded.status`,
		key(bookmark.MovieID), bookmark.Title, bookmark.Overview, bookmark.PosterPath,
		bookmark.BackdropPath, string(bookmark.Type), string(bookmark.Status), createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert bookmark: %w", err)
	}

	return nil
}

func (s *Store) ListBookmarks(ctx context.Context) ([]*store.Bookmark, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT movie_id, title, overview, poster_path, backdrop_path, type, status, created_at
		FROM bookmarks
		ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookmarks: %w", err)
	}
	defer rows.Close()

	bookmarks := make([]*store.Bookmark, 0)
	for rows.Next() {
		var (
			b               store.Bookmark
			id, typ, status string
		)

		if err := rows.Scan(&id, &b.Title, &b.Overview, &b.PosterPath, &b.BackdropPath, &typ, &status, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bookmark: %w", err)
		}

		b.MovieID = store.MovieID(id)
		b.Type = store.MediaType(typ)
		b.Status = store.Status(status)
		bookmarks = append(bookmarks, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookmarks: %w", err)
	}

	return bookmarks, nil
}

func (s *Store) DeleteBookmark(ctx context.Context, id store.MovieID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM bookmarks WHERE movie_id = ?`, key(id)); err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}

	return nil
}

func (s *Store) ClearBookmarks(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM bookmarks`); err != nil {
		return fmt.Errorf("failed to clear bookmarks: %w", err)
	}

	return nil
}

func (s *Store) BookmarkStatus(ctx context.Context, id store.MovieID) (store.Status, error) {
	var status string
	err := s.db.QueryRowContext(ctx, `SELECT status FROM bookmarks WHERE movie_id = ?`, key(id)).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", store.ErrBookmarkNotFound
	}

	if err != nil {
		return "", fmt.Errorf("failed to find bookmark: %w", err)
	}

	return store.Status(status), nil
}

// UpdateBookmarkStatus is a no-op when the bookmark does not exist.
func (s *Store) UpdateBookmarkStatus(ctx context.Context, id store.MovieID, status store.Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", store.ErrInvalidStatus, status)
	}

	if _, err := s.db.ExecContext(ctx, `UPDATE bookmarks SET status = ? WHERE movie_id = ?`, string(status), key(id)); err != nil {
		return fmt.Errorf("failed to update bookmark status: %w", err)
	}

	return nil
}

func key(id store.MovieID) string {
	return strings.TrimSpace(string(id))
}
