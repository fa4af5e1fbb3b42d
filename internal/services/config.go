package services

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"survey/internal/datastore"
	"survey/internal/models"
	"survey/internal/pkg/caching"

	"github.com/m-mizutani/goerr/v2"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceConfig struct {
	container          *do.Injector
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache
}

func NewServiceConfig(container *do.Injector) (*ServiceConfig, error) {
	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	readonlyPostgresDB, err := do.InvokeNamed[*bun.DB](container, "db-readonly")
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	readOnlyCache, err := do.Invoke[caching.ReadOnlyCache](container)
	if err != nil {
		return nil, err
	}

	return &ServiceConfig{container, postgresDB, readonlyPostgresDB, cache, readOnlyCache}, nil
}

// GetStringConfig caches misses as the default value so absent keys do not hit the database.
func (service *ServiceConfig) GetStringConfig(ctx context.Context, key string, defaultValue string) (string, error) {
	callback := func() (string, error) {
		config, err := datastore.GetConfigByKey(ctx, service.readonlyPostgresDB, key)
		if errors.Is(err, sql.ErrNoRows) {
			return defaultValue, nil
		}
		if err != nil {
			return defaultValue, goerr.Wrap(err, "failed to load config", goerr.V("key", key))
		}
		return config.Value, nil
	}

	value, err := caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyConfig(key), CACHE_TTL_5_MINS, callback)
	if err != nil {
		return defaultValue, err
	}

	return value, nil
}

func (service *ServiceConfig) GetIntConfig(ctx context.Context, key string, defaultValue int) (int, error) {
	value, err := service.GetStringConfig(ctx, key, strconv.Itoa(defaultValue))
	if err != nil {
		return defaultValue, err
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue, goerr.Wrap(err, "config is not an integer", goerr.V("key", key), goerr.V("value", value))
	}

	return intValue, nil
}

// GetTimeConfig returns nil when the key is unset or empty.
func (service *ServiceConfig) GetTimeConfig(ctx context.Context, key string) (*time.Time, error) {
	value, err := service.GetStringConfig(ctx, key, "")
	if err != nil || value == "" {
		return nil, err
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, goerr.Wrap(err, "config is not an RFC 3339 time", goerr.V("key", key), goerr.V("value", value))
	}

	return &t, nil
}

func (service *ServiceConfig) SetConfig(ctx context.Context, key string, value string) error {
	err := datastore.UpsertConfig(ctx, service.postgresDB, &models.Config{Key: key, Value: value})
	if err != nil {
		return goerr.Wrap(err, "failed to save config", goerr.V("key", key))
	}

	return service.cache.Delete(ctx, DBKeyConfig(key))
}
