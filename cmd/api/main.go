// @title           Quillpress Blog API
// @version         1.0
// @description     Articles, users and authentication for the Quillpress blog.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quillpress/blog-system/internal/api"
	"github.com/quillpress/blog-system/internal/api/handler"
	"github.com/quillpress/blog-system/internal/core/ports"
	"github.com/quillpress/blog-system/internal/core/service"
	"github.com/quillpress/blog-system/internal/core/token"
	"github.com/quillpress/blog-system/internal/infrastructure/config"
	"github.com/quillpress/blog-system/internal/infrastructure/db/mongo"
	"github.com/quillpress/blog-system/internal/infrastructure/db/redis"
	"github.com/quillpress/blog-system/internal/infrastructure/db/sqlstore"
	"github.com/quillpress/blog-system/internal/infrastructure/queue"
	"github.com/quillpress/blog-system/internal/infrastructure/storage"
	"github.com/quillpress/blog-system/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type repositories struct {
	users    ports.UserRepository
	articles ports.ArticleRepository
	ping     handler.Check
	close    func(context.Context) error
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.Production(),
		Service: "blog-api",
	})

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := repos.close(closeCtx); err != nil {
			log.Warn().Err(err).Msg("closing database")
		}
	}()

	checks := map[string]handler.Check{"database": repos.ping}

	var revocations ports.RevocationStore
	if cfg.Revocation.Enabled {
		store, closeRedis, err := redis.OpenRevocationStore(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer closeRedis()
		revocations = store
		checks["redis"] = store.Ping
		log.Info().Str("addr", cfg.Redis.Addr).Msg("token revocation enabled")
	}

	images, err := storage.NewDiskStore(cfg.Uploads.Dir)
	if err != nil {
		return err
	}
	cleanup := queue.NewDispatcher(cfg.Uploads.CleanupWorkers, images, log.With().Str("component", "cleanup").Logger())
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	cleanup.Start(workerCtx)
	defer cleanup.Stop()

	codec := token.NewCodec(cfg.JWTSecret, cfg.JWTTTL)
	authService := service.NewAuthService(repos.users, codec, revocations, log)
	articleService := service.NewArticleService(repos.articles, images, cleanup, log)
	userService := service.NewUserService(repos.users, repos.articles, cleanup, log)

	if cfg.SeedAdmin.Enabled() {
		if err := authService.SeedAdmin(ctx, cfg.SeedAdmin.Email, cfg.SeedAdmin.Username, cfg.SeedAdmin.Password); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
	}

	e, err := api.NewRouter(api.Options{
		FrontendOrigin: cfg.FrontendOrigin,
		UploadDir:      images.Dir(),
		MaxUploadSize:  cfg.Uploads.MaxBytes,
		SecureCookies:  cfg.Production(),
		Log:            log,
	}, api.Dependencies{
		Auth:     authService,
		Articles: articleService,
		Users:    userService,
		Checks:   checks,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("db_driver", cfg.DBDriver).Msg("blog api listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func openRepositories(ctx context.Context, cfg *config.Config) (*repositories, error) {
	switch cfg.DBDriver {
	case config.DriverMongo:
		store, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		return &repositories{users: store.Users, articles: store.Articles, ping: store.Ping, close: store.Close}, nil
	case config.DriverPostgres, config.DriverSQLite:
		dsn := cfg.Postgres.DSN
		if cfg.DBDriver == config.DriverSQLite {
			dsn = cfg.SQLite.Path
		}
		store, err := sqlstore.Open(ctx, sqlstore.Config{Driver: cfg.DBDriver, DSN: dsn})
		if err != nil {
			return nil, err
		}
		return &repositories{
			users:    store.Users,
			articles: store.Articles,
			ping:     store.Ping,
			close:    func(context.Context) error { return store.Close() },
		}, nil
	}
	return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
}

