// Package session follows the identity provider and switches bookmark storage
// between guest and account mode.
package session

import (
	"context"

	"github.com/movienight/movienight/auth"
	"github.com/movienight/movienight/bookmarks"
	"github.com/movienight/movienight/state"
	"go.uber.org/zap"
)

// Syncer moves guest bookmarks into the account store.
type Syncer interface {
	SyncGuestToOnline(ctx context.Context) *bookmarks.SyncResult
}

// Observer owns every mode and user transition. Provider callbacks only queue
// events; they are handled one at a time on the goroutine running Run.
type Observer struct {
	provider auth.Provider
	state    *state.State
	syncer   Syncer
	log      *zap.SugaredLogger
}

func NewObserver(provider auth.Provider, st *state.State, syncer Syncer, log *zap.SugaredLogger) *Observer {
	return &Observer{
		provider: provider,
		state:    st,
		syncer:   syncer,
		log:      log,
	}
}

// Run subscribes to session changes, checks for a session that already exists
// and then handles events until ctx is done. The subscription is removed
// before Run returns.
func (o *Observer) Run(ctx context.Context) error {
	events := make(chan auth.Event, 8)
	unsubscribe := o.provider.OnSessionChange(func(e auth.Event) {
		select {
		case events <- e:
		case <-ctx.Done():
		}
	})
	defer unsubscribe()

	user, err := o.provider.User(ctx)
	if err != nil {
		o.log.Errorw("failed to check existing session", "error", err)
	}

	o.apply(ctx, user)

	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-events:
			o.log.Debugw("session changed", "event", e.Type)

			var user *auth.User
			if e.Session != nil {
				user = e.Session.User
			}

			o.apply(ctx, user)
		}
	}
}

func (o *Observer) apply(ctx context.Context, user *auth.User) {
	o.state.SetUser(user)
	if user == nil {
		o.state.SetMode(state.Guest)
		return
	}

	o.state.SetMode(state.Account)
	res := o.syncer.SyncGuestToOnline(ctx)
	if !res.Empty() {
		o.log.Infow("guest bookmarks moved to account", "user_id", user.ID, "migrated", len(res.Migrated), "failed", len(res.Failed))
	}
}
