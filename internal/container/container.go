// Package container wires the survey services for every command.
package container

import (
	"context"
	"os"
	"strconv"

	"survey/internal/interfaces"
	"survey/internal/pkg/caching"
	"survey/internal/pkg/database"
	"survey/internal/pkg/limiter"
	"survey/internal/pkg/storage"
	"survey/internal/services"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/hiendaovinh/toolkit/pkg/db"
	"github.com/hiendaovinh/toolkit/pkg/env"
	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

const (
	DefaultUploadDir = "/tmp/uploads"
	DefaultMode      = "production"
	DefaultOrigins   = "*"
)

var optionalEnvs = []string{
	"DB_DSN",
	"DB_PASSWORD",
	"DB_DSN_READONLY",
	"API_MODE",
	"API_ORIGINS",
	"UPLOAD_DIR",
	"UPLOAD_BUCKET",
	"UPLOAD_PREFIX",
	"REDIS_CACHE",
	"ADMIN_API_KEY",
	"TELEGRAM_BOT_TOKEN",
	"TELEGRAM_CHAT_ID",
}

// LoadEnvs reads the process environment and applies defaults. Keys that
// only make sense together are checked as a group.
func LoadEnvs() (map[string]string, error) {
	vs := map[string]string{}
	for _, key := range optionalEnvs {
		vs[key] = os.Getenv(key)
	}

	if vs["TELEGRAM_BOT_TOKEN"] != "" || vs["TELEGRAM_CHAT_ID"] != "" {
		telegram, err := env.EnvsRequired("TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID")
		if err != nil {
			return nil, err
		}
		if _, err := strconv.ParseInt(telegram["TELEGRAM_CHAT_ID"], 10, 64); err != nil {
			return nil, goerr.Wrap(err, "TELEGRAM_CHAT_ID must be an integer")
		}
	}

	if vs["DB_DSN"] == "" {
		vs["DB_DSN"] = database.DefaultDSN
	}
	if vs["API_MODE"] == "" {
		vs["API_MODE"] = DefaultMode
	}
	if vs["API_ORIGINS"] == "" {
		vs["API_ORIGINS"] = DefaultOrigins
	}
	if vs["UPLOAD_DIR"] == "" {
		vs["UPLOAD_DIR"] = DefaultUploadDir
	}

	return vs, nil
}

func New(vs map[string]string) *do.Injector {
	injector := do.New()
	debug := vs["API_MODE"] == "debug"

	do.ProvideNamedValue(injector, "envs", vs)

	do.Provide(injector, func(i *do.Injector) (*bun.DB, error) {
		return database.Open(database.Config{
			DSN:      vs["DB_DSN"],
			Password: vs["DB_PASSWORD"],
			Debug:    debug,
		})
	})

	do.ProvideNamed(injector, "db-readonly", func(i *do.Injector) (*bun.DB, error) {
		if vs["DB_DSN_READONLY"] == "" {
			return do.Invoke[*bun.DB](i)
		}
		return database.Open(database.Config{
			DSN:      vs["DB_DSN_READONLY"],
			Password: vs["DB_PASSWORD"],
			Debug:    debug,
		})
	})

	// nil when no redis is configured, consumers fall back to local state
	do.ProvideNamed(injector, "redis-cache", func(i *do.Injector) (redis.UniversalClient, error) {
		if vs["REDIS_CACHE"] == "" {
			return nil, nil
		}
		return db.InitRedis(&db.RedisConfig{
			URL: vs["REDIS_CACHE"],
		})
	})

	do.Provide(injector, func(i *do.Injector) (caching.Cache, error) {
		dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-cache")
		if err != nil {
			return nil, err
		}

		return caching.NewCacheRedis(dbRedis, false)
	})

	do.Provide(injector, func(i *do.Injector) (caching.ReadOnlyCache, error) {
		return do.Invoke[caching.Cache](i)
	})

	do.Provide(injector, func(i *do.Injector) (interfaces.Limiter, error) {
		dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-cache")
		if err != nil {
			return nil, err
		}
		if dbRedis == nil {
			return limiter.Noop{}, nil
		}

		return limiter.NewLimiter(dbRedis)
	})

	do.Provide(injector, func(i *do.Injector) (*redsync.Redsync, error) {
		dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-cache")
		if err != nil || dbRedis == nil {
			return nil, err
		}

		pool := goredis.NewPool(dbRedis)
		return redsync.New(pool), nil
	})

	do.Provide(injector, func(i *do.Injector) (interfaces.FileStore, error) {
		if vs["UPLOAD_BUCKET"] != "" {
			return storage.NewGCSStore(context.Background(), vs["UPLOAD_BUCKET"], vs["UPLOAD_PREFIX"])
		}
		return storage.NewLocalStore(vs["UPLOAD_DIR"])
	})

	do.Provide(injector, func(i *do.Injector) (interfaces.Notifier, error) {
		if vs["TELEGRAM_BOT_TOKEN"] == "" {
			return services.NoopNotifier{}, nil
		}

		chatID, err := strconv.ParseInt(vs["TELEGRAM_CHAT_ID"], 10, 64)
		if err != nil {
			return nil, goerr.Wrap(err, "TELEGRAM_CHAT_ID must be an integer")
		}
		return services.NewBot(vs["TELEGRAM_BOT_TOKEN"], chatID)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceConfig, error) {
		return services.NewServiceConfig(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceQuestion, error) {
		return services.NewServiceQuestion(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceResponse, error) {
		return services.NewServiceResponse(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceCertificate, error) {
		return services.NewServiceCertificate(injector)
	})

	return injector
}
