package services

import (
	"context"
	"strings"
	"time"

	"survey/internal/datastore"
	"survey/internal/interfaces"
	"survey/internal/models"
	"survey/internal/pkg"
	"survey/internal/pkg/logging"
	"survey/internal/pkg/storage"

	"github.com/go-redis/redis_rate/v10"
	"github.com/m-mizutani/goerr/v2"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceResponse struct {
	container          *do.Injector
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	limiter            interfaces.Limiter
	store              interfaces.FileStore
	notifier           interfaces.Notifier

	serviceConfig   *ServiceConfig
	serviceQuestion *ServiceQuestion
}

func NewServiceResponse(container *do.Injector) (*ServiceResponse, error) {
	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	readonlyPostgresDB, err := do.InvokeNamed[*bun.DB](container, "db-readonly")
	if err != nil {
		return nil, err
	}

	limiter, err := do.Invoke[interfaces.Limiter](container)
	if err != nil {
		return nil, err
	}

	store, err := do.Invoke[interfaces.FileStore](container)
	if err != nil {
		return nil, err
	}

	notifier, err := do.Invoke[interfaces.Notifier](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	serviceQuestion, err := do.Invoke[*ServiceQuestion](container)
	if err != nil {
		return nil, err
	}

	return &ServiceResponse{
		container:          container,
		postgresDB:         postgresDB,
		readonlyPostgresDB: readonlyPostgresDB,
		limiter:            limiter,
		store:              store,
		notifier:           notifier,
		serviceConfig:      serviceConfig,
		serviceQuestion:    serviceQuestion,
	}, nil
}

// CheckSubmissionWindow rejects submissions outside the configured survey period.
func (service *ServiceResponse) CheckSubmissionWindow(ctx context.Context, now time.Time) error {
	start, err := service.serviceConfig.GetTimeConfig(ctx, CONFIG_SURVEY_START_TIME)
	if err != nil {
		return err
	}
	if start != nil && now.Before(*start) {
		return goerr.Wrap(ErrSurveyNotStarted, "submission before survey start", goerr.V("start", *start))
	}

	end, err := service.serviceConfig.GetTimeConfig(ctx, CONFIG_SURVEY_END_TIME)
	if err != nil {
		return err
	}
	if end != nil && !now.Before(*end) {
		return goerr.Wrap(ErrSurveyEnded, "submission after survey end", goerr.V("end", *end))
	}

	return nil
}

func (service *ServiceResponse) allowSubmission(ctx context.Context, clientKey string) error {
	perMinute, err := service.serviceConfig.GetIntConfig(ctx, CONFIG_SUBMISSION_RATE_LIMIT_PER_MINUTE, SUBMISSION_RATE_LIMIT_PER_MINUTE)
	if err != nil {
		logging.From(ctx).Warn("falling back to default rate limit", "error", err)
	}
	if perMinute <= 0 {
		return nil
	}

	err = service.limiter.Allow(ctx, LimitKeySubmission(clientKey), redis_rate.PerMinute(perMinute))
	if err != nil {
		return goerr.Wrap(err, "submission rejected by limiter", goerr.V("client", clientKey))
	}
	return nil
}

// Submit validates a submission, then stores the response, its files and
// certificate rows atomically. Files already written are removed when any
// later step fails.
func (service *ServiceResponse) Submit(ctx context.Context, clientKey string, submission *models.Submission) (*models.SubmittedResponse, error) {
	if err := service.allowSubmission(ctx, clientKey); err != nil {
		return nil, err
	}

	questions, err := service.serviceQuestion.GetQuestions(ctx)
	if err != nil {
		return nil, err
	}

	if err := ValidateSubmission(indexQuestions(questions), submission); err != nil {
		return nil, goerr.Wrap(err, "submission rejected")
	}

	response := &models.SurveyResponse{
		FullName:         strings.TrimSpace(submission.FullName),
		EmailAddress:     strings.TrimSpace(submission.EmailAddress),
		Description:      strings.TrimSpace(submission.Description),
		Gender:           strings.TrimSpace(submission.Gender),
		ProgrammingStack: strings.Join(splitChoices(submission.ProgrammingStack), ","),
		DateResponded:    time.Now().UTC().Truncate(time.Second),
	}

	var stored []string
	err = service.postgresDB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := datastore.InsertSurveyResponse(ctx, tx, response); err != nil {
			return goerr.Wrap(err, "failed to insert response")
		}

		certificates := make([]*models.Certificate, 0, len(submission.Certificates))
		for _, file := range submission.Certificates {
			key := storage.NewKey(file.Filename)
			if err := service.saveUpload(ctx, key, file); err != nil {
				return err
			}
			stored = append(stored, key)

			certificates = append(certificates, &models.Certificate{
				ResponseID: response.ID,
				Filename:   file.Filename,
				Filepath:   key,
			})
		}

		if err := datastore.InsertCertificates(ctx, tx, certificates); err != nil {
			return goerr.Wrap(err, "failed to insert certificates", goerr.V("response_id", response.ID))
		}
		response.Certificates = certificates
		return nil
	})
	if err != nil {
		service.removeUploads(context.WithoutCancel(ctx), stored)
		return nil, err
	}

	go service.notify(context.WithoutCancel(ctx), response)

	names := make([]string, 0, len(response.Certificates))
	for _, c := range response.Certificates {
		names = append(names, c.Filename)
	}

	return &models.SubmittedResponse{
		FullName:         response.FullName,
		EmailAddress:     response.EmailAddress,
		Description:      response.Description,
		Gender:           response.Gender,
		ProgrammingStack: response.ProgrammingStack,
		Certificates:     models.SubmittedCertificates{Certificate: names},
		DateResponded:    response.DateResponded.Format(models.DateRespondedLayout),
	}, nil
}

func (service *ServiceResponse) saveUpload(ctx context.Context, key string, file *models.UploadedFile) error {
	r, err := file.Open()
	if err != nil {
		return goerr.Wrap(err, "failed to open upload", goerr.V("filename", file.Filename))
	}
	defer r.Close()

	if err := service.store.Save(ctx, key, r); err != nil {
		return goerr.Wrap(err, "failed to store upload", goerr.V("filename", file.Filename), goerr.V("key", key))
	}
	return nil
}

func (service *ServiceResponse) removeUploads(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := service.store.Delete(ctx, key); err != nil {
			logging.From(ctx).Error("failed to remove upload", "key", key, "error", err)
		}
	}
}

func (service *ServiceResponse) notify(ctx context.Context, response *models.SurveyResponse) {
	ctx, cancel := context.WithTimeout(ctx, NOTIFY_TIMEOUT)
	defer cancel()

	if err := service.notifier.NotifySubmission(ctx, response); err != nil {
		logging.From(ctx).Warn("failed to notify submission", "response_id", response.ID, "error", err)
	}
}

// ListResponses returns one page of responses, newest first. Callers apply
// pkg.DefaultPage and pkg.DefaultPageSize for absent parameters.
func (service *ServiceResponse) ListResponses(ctx context.Context, filter models.ResponseFilter) (*models.ResponsePage, error) {
	filter.EmailAddress = strings.TrimSpace(filter.EmailAddress)

	if filter.Page < 1 {
		return nil, invalidQuery("page", "page must be greater than or equal to 1")
	}
	if filter.PageSize < 1 || filter.PageSize > pkg.MaxPageSize {
		return nil, invalidQuery("page_size", "page_size must be between 1 and 100")
	}

	total, err := datastore.CountSurveyResponses(ctx, service.readonlyPostgresDB, filter)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to count responses")
	}

	items := make([]models.ResponseItem, 0, filter.PageSize)
	offset := pkg.Offset(filter.Page, filter.PageSize)
	if offset < total {
		responses, err := datastore.GetSurveyResponsesPaging(ctx, service.readonlyPostgresDB, filter, filter.PageSize, offset)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to load responses", goerr.V("page", filter.Page))
		}
		for _, r := range responses {
			items = append(items, r.ToItem())
		}
	}

	return &models.ResponsePage{
		CurrentPage:      filter.Page,
		LastPage:         pkg.LastPage(total, filter.PageSize),
		PageSize:         filter.PageSize,
		TotalCount:       total,
		QuestionResponse: items,
	}, nil
}
