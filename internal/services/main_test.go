package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"survey/internal/datastore"
	"survey/internal/interfaces"
	"survey/internal/models"
	"survey/internal/pkg/caching"
	"survey/internal/pkg/database"
	"survey/internal/pkg/limiter"
	"survey/internal/pkg/storage"
	"survey/internal/seed"

	"github.com/go-redis/redis_rate/v10"
	"github.com/go-redsync/redsync/v4"
	"github.com/samber/do"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open(database.Config{DSN: "file:" + name + "?mode=memory&cache=shared"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, datastore.Migrate(context.Background(), db))
	return db
}

type testEnv struct {
	container *do.Injector
	db        *bun.DB
	store     *storage.LocalStore
	notifier  *recordingNotifier
}

type testOption func(injector *do.Injector)

func withFileStore(store interfaces.FileStore) testOption {
	return func(injector *do.Injector) {
		do.OverrideValue[interfaces.FileStore](injector, store)
	}
}

func withLimiter(l interfaces.Limiter) testOption {
	return func(injector *do.Injector) {
		do.OverrideValue[interfaces.Limiter](injector, l)
	}
}

func newTestEnv(t *testing.T, opts ...testOption) *testEnv {
	t.Helper()

	db := newTestDB(t)
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	cache, err := caching.NewCacheRedis(nil, true)
	require.NoError(t, err)
	notifier := &recordingNotifier{sent: make(chan *models.SurveyResponse, 10)}

	injector := do.New()
	do.ProvideValue(injector, db)
	do.ProvideNamedValue(injector, "db-readonly", db)
	do.ProvideValue[caching.Cache](injector, cache)
	do.ProvideValue[caching.ReadOnlyCache](injector, cache)
	do.ProvideValue[interfaces.Limiter](injector, limiter.Noop{})
	do.ProvideValue[*redsync.Redsync](injector, nil)
	do.ProvideValue[interfaces.FileStore](injector, store)
	do.ProvideValue[interfaces.Notifier](injector, notifier)
	for _, opt := range opts {
		opt(injector)
	}

	do.Provide(injector, func(i *do.Injector) (*ServiceConfig, error) { return NewServiceConfig(i) })
	do.Provide(injector, func(i *do.Injector) (*ServiceQuestion, error) { return NewServiceQuestion(i) })
	do.Provide(injector, func(i *do.Injector) (*ServiceResponse, error) { return NewServiceResponse(i) })
	do.Provide(injector, func(i *do.Injector) (*ServiceCertificate, error) { return NewServiceCertificate(i) })

	return &testEnv{injector, db, store, notifier}
}

func (env *testEnv) seed(t *testing.T) {
	t.Helper()

	questions, err := seed.Questions()
	require.NoError(t, err)
	_, err = do.MustInvoke[*ServiceQuestion](env.container).SeedQuestions(context.Background(), questions)
	require.NoError(t, err)
}

type recordingNotifier struct {
	sent chan *models.SurveyResponse
}

func (n *recordingNotifier) NotifySubmission(ctx context.Context, response *models.SurveyResponse) error {
	n.sent <- response
	return nil
}

// failingStore accepts a fixed number of saves and fails the rest.
type failingStore struct {
	interfaces.FileStore
	allowed int
}

func (s *failingStore) Save(ctx context.Context, key string, r io.Reader) error {
	if s.allowed <= 0 {
		return errors.New("disk full")
	}
	s.allowed--
	return s.FileStore.Save(ctx, key, r)
}

type deniedLimiter struct{}

func (deniedLimiter) Allow(ctx context.Context, key string, limit redis_rate.Limit) error {
	return limiter.ErrRateLimited
}

func pdfUpload(name string, content string) *models.UploadedFile {
	return &models.UploadedFile{
		Filename: name,
		Size:     int64(len(content)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

func validSubmission() *models.Submission {
	return &models.Submission{
		FullName:         "Doe Jane",
		EmailAddress:     "jane@example.com",
		Description:      "Backend developer",
		Gender:           "FEMALE",
		ProgrammingStack: "GO, SQL",
		Certificates:     []*models.UploadedFile{pdfUpload("cert.pdf", "%PDF-1.4 cert")},
	}
}

func insertResponse(t *testing.T, db bun.IDB, email string, at time.Time, certificates ...string) *models.SurveyResponse {
	t.Helper()

	ctx := context.Background()
	response := &models.SurveyResponse{
		FullName:         "Someone",
		EmailAddress:     email,
		Description:      "about",
		Gender:           "OTHER",
		ProgrammingStack: "GO",
		DateResponded:    at,
	}
	require.NoError(t, datastore.InsertSurveyResponse(ctx, db, response))

	rows := make([]*models.Certificate, 0, len(certificates))
	for _, name := range certificates {
		rows = append(rows, &models.Certificate{ResponseID: response.ID, Filename: name, Filepath: storage.NewKey(name)})
	}
	require.NoError(t, datastore.InsertCertificates(ctx, db, rows))
	response.Certificates = rows
	return response
}
