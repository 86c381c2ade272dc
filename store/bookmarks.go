package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type BookmarkStore interface {
	AddBookmark(ctx context.Context, bookmark *Bookmark) error
	ListBookmarks(ctx context.Context) ([]*Bookmark, error)
	DeleteBookmark(ctx context.Context, id MovieID) error
	ClearBookmarks(ctx context.Context) error
	BookmarkStatus(ctx context.Context, id MovieID) (Status, error)
	UpdateBookmarkStatus(ctx context.Context, id MovieID, status Status) error
}

type Bookmark struct {
	MovieID      MovieID   `json:"movieID" bson:"movie_id"`
	Title        string    `json:"title" bson:"title"`
	Overview     string    `json:"overview" bson:"overview"`
	PosterPath   string    `json:"poster_path" bson:"poster_path"`
	BackdropPath string    `json:"backdrop_path" bson:"backdrop_path"`
	Type         MediaType `json:"type" bson:"type"`
	Status       Status    `json:"status" bson:"status"`
	CreatedAt    time.Time `json:"created_at,omitempty" bson:"created_at"`
}

// Validate reports whether the bookmark can be persisted by any store.
func (b *Bookmark) Validate() error {
	if strings.TrimSpace(string(b.MovieID)) == "" {
		return ErrInvalidMovieID
	}

	if !b.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, b.Type)
	}

	if !b.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, b.Status)
	}

	return nil
}

// Movie is the display metadata shared by every owner's bookmark of a title.
type Movie struct {
	ID           int64     `json:"movie_id" bson:"movie_id"`
	Title        string    `json:"title" bson:"title"`
	Overview     string    `json:"overview" bson:"overview"`
	PosterPath   string    `json:"poster_path" bson:"poster_path"`
	BackdropPath string    `json:"backdrop_path" bson:"backdrop_path"`
	Type         MediaType `json:"type" bson:"type"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// MovieID is the content API identifier in its canonical string form.
type MovieID string

func NewMovieID(id int64) MovieID {
	return MovieID(strconv.FormatInt(id, 10))
}

// Int64 parses the identifier as a base 10 integer. Surrounding whitespace is
// ignored, anything else that is not a digit is rejected.
func (id MovieID) Int64() (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(string(id)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMovieID, string(id))
	}

	return n, nil
}

func (id MovieID) String() string {
	return string(id)
}

type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

func (t MediaType) Valid() bool {
	return t == MediaTypeMovie || t == MediaTypeTV
}

type Status string

const (
	StatusWatching   Status = "Watching"
	StatusWatchLater Status = "Watch Later"
	StatusCompleted  Status = "Completed"
	StatusDropped    Status = "Dropped"
)

var statuses = map[string]Status{
	"watching":    StatusWatching,
	"watch later": StatusWatchLater,
	"watchlater":  StatusWatchLater,
	"completed":   StatusCompleted,
	"dropped":     StatusDropped,
}

func (s Status) Valid() bool {
	switch s {
	case StatusWatching, StatusWatchLater, StatusCompleted, StatusDropped:
		return true
	}

	return false
}

// ParseStatus accepts any casing of the four statuses, including the compact
// "WatchLater" spelling.
func ParseStatus(s string) (Status, error) {
	if status, ok := statuses[strings.ToLower(strings.TrimSpace(s))]; ok {
		return status, nil
	}

	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Order is a sort direction in the form mongo sort documents take.
type Order int

const Descending Order = -1
