// Package gate keeps the remote app config fresh and decides whether the
// running version may be used.
package gate

import (
	"context"
	"time"

	"github.com/movienight/movienight/state"
	"github.com/movienight/movienight/store"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultInterval = 30 * time.Minute

	MaintenanceMessage    = "App is under maintenance."
	UpdateRequiredMessage = "This version of the app is no longer supported. Please update to continue."
)

type Gate struct {
	source   store.ConfigStore
	state    *state.State
	log      *zap.SugaredLogger
	interval time.Duration
	group    singleflight.Group
}

type Option func(*Gate)

func WithInterval(d time.Duration) Option {
	return func(g *Gate) {
		if d > 0 {
			g.interval = d
		}
	}
}

func New(source store.ConfigStore, st *state.State, log *zap.SugaredLogger, opts ...Option) *Gate {
	g := &Gate{
		source:   source,
		state:    st,
		log:      log,
		interval: DefaultInterval,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Fetch loads the latest config and publishes it together with its block
// state. On failure the previous config and block state stay in force and
// Fetch returns false. Calls made while a fetch is running share its result.
func (g *Gate) Fetch(ctx context.Context) bool {
	ok, _, _ := g.group.Do("config", func() (any, error) {
		cfg, err := g.source.LatestConfig(ctx)
		if err != nil {
			g.log.Errorw("failed to fetch app config", "error", err)
			return false, nil
		}

		block := Evaluate(cfg, g.state.Version())
		g.state.Apply(cfg, block)

		if block.Reason != state.ReasonNone {
			g.log.Infow("app config applied", "blocked", block.Blocked, "reason", block.Reason, "version", g.state.Version())
		}

		return true, nil
	})

	return ok.(bool)
}

// Run fetches immediately and then once per interval until ctx is done.
func (g *Gate) Run(ctx context.Context) error {
	g.Fetch(ctx)

	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			g.log.Debug("config refresh stopped")
			return nil
		case <-ticker.C:
			g.Fetch(ctx)
		}
	}
}

// Evaluate decides the block state of version under cfg. Rules apply in order:
// force stop, minimum version, latest version. Empty version fields are ignored.
func Evaluate(cfg *store.AppConfig, version string) state.BlockState {
	if cfg == nil {
		return state.BlockState{}
	}

	if cfg.ForceStop {
		msg := cfg.ForceMessage
		if msg == "" {
			msg = MaintenanceMessage
		}

		return state.BlockState{Blocked: true, Reason: state.ReasonMaintenance, Message: msg}
	}

	if cfg.MinAppVersion != "" && IsVersionLower(version, cfg.MinAppVersion) {
		return state.BlockState{Blocked: true, Reason: state.ReasonUpdateRequired, Message: UpdateRequiredMessage}
	}

	if cfg.LatestAppVersion != "" && IsVersionLower(version, cfg.LatestAppVersion) {
		return state.BlockState{Reason: state.ReasonUpdateAvailable, Message: cfg.LatestAppVersion}
	}

	return state.BlockState{}
}
