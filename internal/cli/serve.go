package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/erdsync/internal/config"
	"github.com/matzehuels/erdsync/internal/server"
	"github.com/matzehuels/erdsync/pkg/buildinfo"
	"github.com/matzehuels/erdsync/pkg/cache"
	"github.com/matzehuels/erdsync/pkg/dsl"
	"github.com/matzehuels/erdsync/pkg/pipeline"
	"github.com/matzehuels/erdsync/pkg/session"
)

// artifactPrefix namespaces server cache keys in a shared Redis.
const artifactPrefix = "erdsync:artifact:"

type serveOpts struct {
	addr    string
	store   string
	noCache bool
}

func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve exposes parsing, position write-back, rendering and editing sessions
over HTTP. Sessions live in memory, on disk, in Redis or in MongoDB depending
on --store. With the redis store, rendered artifacts are cached in the same
Redis so replicas share them.`,
		Example: `  erdsync serve --addr :9000
  erdsync serve --store redis`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&opts.store, "store", "", "session store: memory, file, redis, mongo")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	logger := loggerFromContext(ctx)
	cfg, err := c.config()
	if err != nil {
		return err
	}
	if opts.addr != "" {
		cfg.Server.Addr = opts.addr
	}
	if opts.store != "" {
		cfg.Server.Store = opts.store
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	store, err := openStore(ctx, cfg.Server)
	if err != nil {
		return err
	}
	defer store.Close()

	artifacts, keyer, err := serverCache(ctx, cfg.Server, opts.noCache)
	if err != nil {
		return err
	}
	defer artifacts.Close()

	srv := server.New(server.Options{
		Store:  store,
		Runner: pipeline.NewRunner(artifacts, keyer, logger),
		Parse:  dsl.Options{Layout: cfg.LayoutConfig()},
		Logger: logger,
	})
	srv.RegisterHooks()

	printInfo("Listening on %s (store: %s)", cfg.Server.Addr, cfg.Server.Store)
	return srv.Run(ctx, cfg.Server.Addr)
}

// openStore connects the configured session backend.
func openStore(ctx context.Context, cfg config.ServerConfig) (session.Store, error) {
	switch cfg.Store {
	case config.StoreMemory, "":
		return session.NewMemoryStore(), nil
	case config.StoreFile:
		dir := cfg.SessionDir
		if dir == "" {
			base, err := cacheDir()
			if err != nil {
				return nil, err
			}
			dir = filepath.Join(base, "sessions")
		}
		return session.NewFileStore(dir)
	case config.StoreRedis:
		return session.NewRedisStore(ctx, session.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: os.Getenv("ERDSYNC_REDIS_PASSWORD"),
		})
	case config.StoreMongo:
		return session.NewMongoStore(ctx, session.MongoConfig{URI: cfg.MongoURI})
	}
	return nil, fmt.Errorf("unknown session store %q", cfg.Store)
}

// serverCache picks the artifact cache for the server: Redis when sessions
// are in Redis, the local file cache otherwise.
func serverCache(ctx context.Context, cfg config.ServerConfig, noCache bool) (cache.Cache, cache.Keyer, error) {
	if noCache {
		return cache.NewNullCache(), nil, nil
	}
	if cfg.Store == config.StoreRedis {
		rc, err := cache.NewRedisCache(ctx, cfg.RedisAddr, artifactPrefix)
		if err != nil {
			return nil, nil, err
		}
		// Replicas running different builds must not share renders.
		return rc, cache.NewScopedKeyer(nil, buildinfo.Version+":"), nil
	}
	c, err := newCache(false)
	return c, nil, err
}
