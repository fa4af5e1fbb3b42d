package datastore

import (
	"context"
	"time"

	"survey/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableConfig(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Config)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}
	return nil
}

func UpsertConfig(ctx context.Context, db bun.IDB, config *models.Config) error {
	config.UpdatedAt = time.Now().UTC()
	_, err := db.NewInsert().
		Model(config).
		On(`CONFLICT ("key") DO UPDATE`).
		Set(`"value" = EXCLUDED."value"`).
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func GetConfigByKey(ctx context.Context, db bun.IDB, key string) (*models.Config, error) {
	var config models.Config
	err := db.NewSelect().Model(&config).Where("? = ?", bun.Ident("key"), key).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// InsertConfigIfMissing keeps an existing value and reports whether a row was added.
func InsertConfigIfMissing(ctx context.Context, db bun.IDB, config *models.Config) (bool, error) {
	config.UpdatedAt = time.Now().UTC()
	res, err := db.NewInsert().
		Model(config).
		On(`CONFLICT ("key") DO NOTHING`).
		Exec(ctx)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
