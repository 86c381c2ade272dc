// Package app wires the bookmark manager, the session observer and the config
// gate around one shared application state.
package app

import (
	"context"
	"fmt"

	"github.com/movienight/movienight/auth"
	"github.com/movienight/movienight/bookmarks"
	"github.com/movienight/movienight/gate"
	"github.com/movienight/movienight/internal/config"
	"github.com/movienight/movienight/session"
	"github.com/movienight/movienight/state"
	"github.com/movienight/movienight/store"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Stores are the persistence backends the application runs on.
type Stores struct {
	Local  bookmarks.LocalStore
	Remote store.BookmarkStore
	Config store.ConfigStore
}

type App struct {
	Log    *zap.SugaredLogger
	Config *config.Config
	State  *state.State

	Auth      auth.Provider
	Bookmarks *bookmarks.Manager
	Gate      *gate.Gate
	Observer  *session.Observer
}

func New(cfg *config.Config, stores *Stores, provider auth.Provider, log *zap.SugaredLogger) *App {
	st := state.New(cfg.AppVersion)

	manager := bookmarks.NewManager(
		st, stores.Local, stores.Remote, log.Named("bookmarks"),
		bookmarks.WithRetry(cfg.Migration.Attempts, cfg.Migration.Delay()),
		bookmarks.WithIdentity(identity{provider}),
	)

	return &App{
		Log:       log,
		Config:    cfg,
		State:     st,
		Auth:      provider,
		Bookmarks: manager,
		Gate:      gate.New(stores.Config, st, log.Named("gate"), gate.WithInterval(cfg.Gate.Interval())),
		Observer:  session.NewObserver(provider, st, manager, log.Named("session")),
	}
}

// identity exposes the provider's current user to the bookmark manager.
type identity struct {
	auth.Provider
}

func (i identity) UserID(ctx context.Context) (string, error) {
	user, err := i.User(ctx)
	if err != nil || user == nil {
		return "", err
	}

	return user.ID, nil
}

// Run prepares the guest store and then follows the session and refreshes the
// remote config until ctx is done.
func (a *App) Run(ctx context.Context) error {
	if err := a.Bookmarks.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialise guest store: %w", err)
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return a.Observer.Run(ctx)
	})

	eg.Go(func() error {
		return a.Gate.Run(ctx)
	})

	a.Log.Infow("movienight started", "version", a.State.Version())
	return eg.Wait()
}
