package store

import (
	"context"
	"errors"
)

// Identity resolves the owner of remote records. An empty ID means nobody is
// signed in.
type Identity interface {
	UserID(ctx context.Context) (string, error)
}

type ConfigStore interface {
	LatestConfig(ctx context.Context) (*AppConfig, error)
}

var (
	ErrBookmarkNotFound = errors.New("bookmark not found")
	ErrConfigNotFound   = errors.New("app config not found")
	ErrInvalidStatus    = errors.New("invalid bookmark status")
	ErrInvalidType      = errors.New("invalid media type")
	ErrInvalidMovieID   = errors.New("invalid movie id")
)
