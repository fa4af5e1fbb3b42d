package datastore

import (
	"context"

	"github.com/uptrace/bun"
)

// Migrate creates every table in dependency order. It is safe to run repeatedly.
func Migrate(ctx context.Context, db *bun.DB) error {
	steps := []func(context.Context, *bun.DB) error{
		CreateTableConfig,
		CreateTableSurveyQuestion,
		CreateTableQuestionOption,
		CreateTableSurveyResponse,
		CreateTableCertificate,
	}

	for _, step := range steps {
		if err := step(ctx, db); err != nil {
			return err
		}
	}

	return nil
}
