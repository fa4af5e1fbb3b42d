package services

import (
	"context"

	"survey/internal/datastore"
	"survey/internal/models"
	"survey/internal/pkg/caching"
	"survey/internal/pkg/logging"

	"github.com/go-redsync/redsync/v4"
	"github.com/m-mizutani/goerr/v2"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceQuestion struct {
	container          *do.Injector
	rs                 *redsync.Redsync
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache
}

func NewServiceQuestion(container *do.Injector) (*ServiceQuestion, error) {
	rs, err := do.Invoke[*redsync.Redsync](container)
	if err != nil {
		return nil, err
	}

	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	readonlyPostgresDB, err := do.InvokeNamed[*bun.DB](container, "db-readonly")
	if err != nil {
		return nil, err
	}

	readonlyCache, err := do.Invoke[caching.ReadOnlyCache](container)
	if err != nil {
		return nil, err
	}

	return &ServiceQuestion{container, rs, postgresDB, readonlyPostgresDB, cache, readonlyCache}, nil
}

// GetQuestions returns every question definition in display order, options included.
func (service *ServiceQuestion) GetQuestions(ctx context.Context) ([]*models.SurveyQuestion, error) {
	callback := func() ([]*models.SurveyQuestion, error) {
		questions, err := datastore.GetSurveyQuestions(ctx, service.readonlyPostgresDB)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to load questions")
		}
		return questions, nil
	}

	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyQuestions(), CACHE_TTL_15_MINS, callback)
}

func (service *ServiceQuestion) GetQuestionList(ctx context.Context) (*models.QuestionList, error) {
	questions, err := service.GetQuestions(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]models.QuestionItem, 0, len(questions))
	for _, q := range questions {
		items = append(items, RenderQuestion(q))
	}

	return &models.QuestionList{Question: items}, nil
}

// RenderQuestion shapes a question definition the way clients consume it.
func RenderQuestion(q *models.SurveyQuestion) models.QuestionItem {
	item := models.QuestionItem{
		Name:     q.Name,
		Type:     q.Type,
		Required: models.YesNoOf(q.Required),
		Text:     q.Text,
	}
	if q.Description != nil {
		item.Description = *q.Description
	}

	switch q.Type {
	case models.QuestionChoice:
		options := make([]models.QuestionOptionItem, 0, len(q.Options))
		for _, o := range q.Options {
			options = append(options, models.QuestionOptionItem{Value: o.Value, Text: o.Text})
		}
		item.Options = &models.QuestionOptionList{
			Multiple: models.YesNoOf(q.MultipleChoice),
			Option:   options,
		}
	case models.QuestionFile:
		props := &models.FileProperties{Multiple: models.YesNoOf(q.MultipleFiles)}
		if q.FileFormat != nil {
			props.Format = *q.FileFormat
		}
		if q.MaxFileSize != nil {
			props.MaxFileSize = *q.MaxFileSize
		}
		if q.MaxFileSizeUnit != nil {
			props.MaxFileSizeUnit = *q.MaxFileSizeUnit
		}
		item.FileProperties = props
	}

	return item
}

// SeedQuestions inserts the given set when no question exists yet. It reports
// whether anything was written.
func (service *ServiceQuestion) SeedQuestions(ctx context.Context, questions []*models.SurveyQuestion) (bool, error) {
	if service.rs != nil {
		mutex := service.rs.NewMutex(LockKeySeedQuestions())
		if err := mutex.LockContext(ctx); err != nil {
			return false, goerr.Wrap(err, "failed to acquire seed lock")
		}
		//nolint:errcheck
		defer mutex.UnlockContext(context.WithoutCancel(ctx))
	}

	seeded := false
	err := service.postgresDB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		count, err := datastore.CountSurveyQuestions(ctx, tx)
		if err != nil {
			return err
		}
		if count > 0 {
			logging.From(ctx).Info("questions already seeded", "count", count)
			return nil
		}

		for _, q := range questions {
			if err := datastore.InsertSurveyQuestion(ctx, tx, q); err != nil {
				return goerr.Wrap(err, "failed to insert question", goerr.V("name", q.Name))
			}
		}
		seeded = true
		return nil
	})
	if err != nil {
		return false, goerr.Wrap(err, "failed to seed questions")
	}

	if seeded {
		logging.From(ctx).Info("questions seeded", "count", len(questions))
		if err := service.cache.Delete(ctx, DBKeyQuestions()); err != nil {
			logging.From(ctx).Warn("failed to invalidate question cache", "error", err)
		}
	}

	return seeded, nil
}
