package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/movienight/movienight/app"
	"github.com/movienight/movienight/auth"
	"github.com/movienight/movienight/internal/config"
	"github.com/movienight/movienight/internal/logger"
	"github.com/movienight/movienight/store"
	"github.com/movienight/movienight/store/mongo"
	"github.com/movienight/movienight/store/sqlite"
	cache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

func newSessionStore(t string, redisURI string) (auth.SessionStore, error) {
	if t == "redis" {
		sessions, err := auth.NewRedis(redisURI)
		if err != nil {
			return nil, err
		}

		return sessions, nil
	}

	return auth.NewMemory(), nil
}

func initRemote(cfg *config.Config) (*mongo.Mongo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mongo, err := mongo.New(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		return nil, err
	}

	if err := mongo.Init(ctx); err != nil {
		return nil, err
	}

	return mongo, nil
}

func newAuth(cfg *config.Config, log *zap.SugaredLogger) (*auth.Client, error) {
	sessions, err := newSessionStore(cfg.Sessions.Type, cfg.Sessions.RedisURI)
	if err != nil {
		return nil, err
	}

	client := auth.NewClient(
		cfg.Auth.JWTSecret, sessions,
		auth.WithSessionTTL(cfg.Auth.SessionTTL()),
		auth.WithLookupCache(cfg.Auth.LookupCache()),
	)

	if cfg.Auth.AccessToken == "" {
		return client, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	session, err := client.SignIn(ctx, cfg.Auth.AccessToken)
	if err != nil {
		// guest mode is a valid fallback for a stale token
		log.Warnw("failed to restore session", "error", err)
		return client, nil
	}

	log.Infow("restored session", "user_id", session.User.ID)
	return client, nil
}

func main() {
	configPath := flag.String("config", "config.json", "path to the JSON config file")
	flag.Parse()

	if err := config.LoadEnv(".env"); err != nil {
		fmt.Println("failed to load .env: ", err)
		os.Exit(1)
	}

	cfg, err := config.FromFile(*configPath)
	if err != nil {
		fmt.Println("invalid config: ", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Sentry, cfg.AppVersion)
	if err != nil {
		fmt.Println("failed to initialise logger: ", err)
		os.Exit(1)
	}
	defer logger.Flush(log)

	local, err := sqlite.New(cfg.SQLite.Path)
	if err != nil {
		log.Fatalf("failed to open guest store: %v", err)
	}

	remote, err := initRemote(cfg)
	if err != nil {
		log.Fatalf("failed to initialise a database: %v", err)
	}

	client, err := newAuth(cfg, log.Named("auth"))
	if err != nil {
		log.Fatalf("failed to initialise a session store: %v", err)
	}

	bookmarks := store.NewStatefulStore(
		mongo.BookmarksStore(remote.Database, client),
		client,
		cache.New(cfg.Cache.Expiration(), cfg.Cache.Cleanup()),
	)

	a := app.New(cfg, &app.Stores{
		Local:  local,
		Remote: bookmarks,
		Config: mongo.ConfigStore(remote.Database),
	}, client, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	if err := a.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Errorf("application stopped: %v", err)
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	remote.Close(closeCtx)
	local.Close()
	client.Close()
}
