package interfaces

import (
	"context"
	"io"

	"survey/internal/models"
	"survey/internal/pkg/storage"

	"github.com/go-redis/redis_rate/v10"
)

type Limiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) error
}

type FileStore interface {
	Save(ctx context.Context, key string, r io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]storage.ObjectInfo, error)
}

type Notifier interface {
	NotifySubmission(ctx context.Context, response *models.SurveyResponse) error
}
