package services

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"survey/internal/datastore"
	"survey/internal/interfaces"
	"survey/internal/models"

	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ResponseSuite struct {
	suite.Suite
	env     *testEnv
	service *ServiceResponse
	ctx     context.Context
}

func (s *ResponseSuite) SetupTest() {
	s.env = newTestEnv(s.T())
	s.env.seed(s.T())
	s.service = do.MustInvoke[*ServiceResponse](s.env.container)
	s.ctx = context.Background()
}

func (s *ResponseSuite) storedFiles() []os.DirEntry {
	entries, err := os.ReadDir(s.env.store.Root())
	s.Require().NoError(err)
	return entries
}

func (s *ResponseSuite) TestSubmit() {
	submission := validSubmission()
	submission.Certificates = append(submission.Certificates, pdfUpload("second.PDF", "%PDF-1.4 second"))

	result, err := s.service.Submit(s.ctx, "127.0.0.1", submission)
	s.Require().NoError(err)

	s.Equal("Doe Jane", result.FullName)
	s.Equal("GO,SQL", result.ProgrammingStack)
	s.Equal([]string{"cert.pdf", "second.PDF"}, result.Certificates.Certificate)
	_, err = time.Parse(models.DateRespondedLayout, result.DateResponded)
	s.NoError(err)

	page, err := s.service.ListResponses(s.ctx, models.ResponseFilter{Page: 1, PageSize: 10})
	s.Require().NoError(err)
	s.Require().Len(page.QuestionResponse, 1)
	item := page.QuestionResponse[0]
	s.Equal("jane@example.com", item.EmailAddress)
	s.Require().Len(item.Certificates.Certificate, 2)
	s.Equal("cert.pdf", item.Certificates.Certificate[0].Text)

	files := s.storedFiles()
	s.Require().Len(files, 2)
	for _, f := range files {
		s.Equal(".pdf", filepath.Ext(f.Name()))
	}

	select {
	case notified := <-s.env.notifier.sent:
		s.Equal("jane@example.com", notified.EmailAddress)
	case <-time.After(5 * time.Second):
		s.Fail("submission was not notified")
	}
}

func (s *ResponseSuite) TestSubmitRejectsNonPDF() {
	submission := validSubmission()
	submission.Certificates = append(submission.Certificates, pdfUpload("notes.txt", "plain"))

	_, err := s.service.Submit(s.ctx, "127.0.0.1", submission)
	s.Require().Error(err)
	s.ErrorIs(err, ErrInvalidSubmission)

	count, err := datastore.CountSurveyResponses(s.ctx, s.env.db, models.ResponseFilter{})
	s.Require().NoError(err)
	s.Zero(count)
	s.Empty(s.storedFiles())
}

func (s *ResponseSuite) TestSubmitRateLimited() {
	withLimiter(deniedLimiter{})(s.env.container)
	service, err := NewServiceResponse(s.env.container)
	s.Require().NoError(err)

	_, err = service.Submit(s.ctx, "127.0.0.1", validSubmission())
	s.ErrorIs(err, ErrRateLimited)
}

func (s *ResponseSuite) TestListResponsesPaging() {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		insertResponse(s.T(), s.env.db, "a@example.com", base.Add(time.Duration(i)*time.Hour))
	}
	insertResponse(s.T(), s.env.db, "b@example.com", base.Add(-time.Hour), "b.pdf")

	page, err := s.service.ListResponses(s.ctx, models.ResponseFilter{Page: 1, PageSize: 10})
	s.Require().NoError(err)
	s.Equal(26, page.TotalCount)
	s.Equal(3, page.LastPage)
	s.Equal(10, page.PageSize)
	s.Require().Len(page.QuestionResponse, 10)
	s.Equal("2024-01-02 00:00:00", page.QuestionResponse[0].DateResponded)
	for i := 1; i < len(page.QuestionResponse); i++ {
		s.GreaterOrEqual(page.QuestionResponse[i-1].DateResponded, page.QuestionResponse[i].DateResponded)
	}

	page, err = s.service.ListResponses(s.ctx, models.ResponseFilter{Page: 3, PageSize: 10})
	s.Require().NoError(err)
	s.Len(page.QuestionResponse, 6)
	last := page.QuestionResponse[len(page.QuestionResponse)-1]
	s.Equal("b@example.com", last.EmailAddress)
	s.Require().Len(last.Certificates.Certificate, 1)
	s.Equal("b.pdf", last.Certificates.Certificate[0].Text)

	page, err = s.service.ListResponses(s.ctx, models.ResponseFilter{Page: 9, PageSize: 10})
	s.Require().NoError(err)
	s.Empty(page.QuestionResponse)
	s.NotNil(page.QuestionResponse)
	s.Equal(3, page.LastPage)

	page, err = s.service.ListResponses(s.ctx, models.ResponseFilter{Page: 1 << 62, PageSize: 100})
	s.Require().NoError(err)
	s.Empty(page.QuestionResponse)
	s.Equal(26, page.TotalCount)

	page, err = s.service.ListResponses(s.ctx, models.ResponseFilter{Page: 1, PageSize: 100, EmailAddress: "b@example.com"})
	s.Require().NoError(err)
	s.Equal(1, page.TotalCount)
	s.Equal(1, page.LastPage)
}

func (s *ResponseSuite) TestListResponsesEmpty() {
	page, err := s.service.ListResponses(s.ctx, models.ResponseFilter{Page: 1, PageSize: 10})
	s.Require().NoError(err)
	s.Zero(page.TotalCount)
	s.Zero(page.LastPage)
	s.Empty(page.QuestionResponse)
}

func (s *ResponseSuite) TestListResponsesInvalid() {
	for _, filter := range []models.ResponseFilter{
		{Page: 0, PageSize: 10},
		{Page: -1, PageSize: 10},
		{Page: 1, PageSize: 0},
		{Page: 1, PageSize: 101},
	} {
		_, err := s.service.ListResponses(s.ctx, filter)
		s.ErrorIs(err, ErrInvalidQuery, "%+v", filter)
	}
}

func (s *ResponseSuite) TestCheckSubmissionWindow() {
	config := do.MustInvoke[*ServiceConfig](s.env.container)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	s.NoError(s.service.CheckSubmissionWindow(s.ctx, now))

	s.Require().NoError(config.SetConfig(s.ctx, CONFIG_SURVEY_START_TIME, "2024-07-01T00:00:00Z"))
	s.ErrorIs(s.service.CheckSubmissionWindow(s.ctx, now), ErrSurveyNotStarted)

	s.Require().NoError(config.SetConfig(s.ctx, CONFIG_SURVEY_START_TIME, "2024-01-01T00:00:00Z"))
	s.Require().NoError(config.SetConfig(s.ctx, CONFIG_SURVEY_END_TIME, "2024-05-01T00:00:00Z"))
	s.ErrorIs(s.service.CheckSubmissionWindow(s.ctx, now), ErrSurveyEnded)
}

func TestResponseSuite(t *testing.T) {
	suite.Run(t, new(ResponseSuite))
}

func TestSubmitRemovesStoredFilesOnFailure(t *testing.T) {
	var store *failingStore
	env := newTestEnv(t, func(injector *do.Injector) {
		inner := do.MustInvoke[interfaces.FileStore](injector)
		store = &failingStore{FileStore: inner, allowed: 1}
		withFileStore(store)(injector)
	})
	env.seed(t)
	service := do.MustInvoke[*ServiceResponse](env.container)

	submission := validSubmission()
	submission.Certificates = append(submission.Certificates, pdfUpload("second.pdf", "%PDF second"))

	_, err := service.Submit(context.Background(), "127.0.0.1", submission)
	require.Error(t, err)

	count, err := datastore.CountSurveyResponses(context.Background(), env.db, models.ResponseFilter{})
	require.NoError(t, err)
	assert.Zero(t, count)

	entries, err := os.ReadDir(env.store.Root())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSubmitOpenFailure(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)
	service := do.MustInvoke[*ServiceResponse](env.container)

	submission := validSubmission()
	submission.Certificates = append(submission.Certificates, &models.UploadedFile{
		Filename: "broken.pdf",
		Open:     func() (io.ReadCloser, error) { return nil, os.ErrClosed },
	})

	_, err := service.Submit(context.Background(), "127.0.0.1", submission)
	require.ErrorIs(t, err, os.ErrClosed)

	entries, err := os.ReadDir(env.store.Root())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSubmitWithoutQuestions(t *testing.T) {
	env := newTestEnv(t)
	service := do.MustInvoke[*ServiceResponse](env.container)
	ctx := context.Background()

	_, err := service.Submit(ctx, "127.0.0.1", &models.Submission{})
	require.ErrorIs(t, err, ErrInvalidSubmission)

	count, err := datastore.CountSurveyResponses(ctx, env.db, models.ResponseFilter{})
	require.NoError(t, err)
	assert.Zero(t, count)

	result, err := service.Submit(ctx, "127.0.0.1", validSubmission())
	require.NoError(t, err)
	assert.Equal(t, []string{"cert.pdf"}, result.Certificates.Certificate)
}
