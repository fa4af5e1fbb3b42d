package services

import (
	"errors"
	"strings"
	"testing"

	"survey/internal/models"
	"survey/internal/seed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededIndex(t *testing.T) map[string]*models.SurveyQuestion {
	t.Helper()
	questions, err := seed.Questions()
	require.NoError(t, err)
	return indexQuestions(questions)
}

func TestValidateSubmission(t *testing.T) {
	questions := seededIndex(t)

	tests := []struct {
		name    string
		mutate  func(s *models.Submission)
		field   string
		message string
	}{
		{
			name:   "valid",
			mutate: func(s *models.Submission) {},
		},
		{
			name:   "missing full name",
			mutate: func(s *models.Submission) { s.FullName = "   " },
			field:  "full_name",
		},
		{
			name:   "bad email",
			mutate: func(s *models.Submission) { s.EmailAddress = "not-an-email" },
			field:  "email_address",
		},
		{
			name:   "email with display name",
			mutate: func(s *models.Submission) { s.EmailAddress = "Jane <jane@example.com>" },
			field:  "email_address",
		},
		{
			name:   "unknown gender",
			mutate: func(s *models.Submission) { s.Gender = "ROBOT" },
			field:  "gender",
		},
		{
			name:   "two genders",
			mutate: func(s *models.Submission) { s.Gender = "MALE,FEMALE" },
			field:  "gender",
		},
		{
			name:   "unknown stack",
			mutate: func(s *models.Submission) { s.ProgrammingStack = "GO,COBOL" },
			field:  "programming_stack",
		},
		{
			name:    "repeated stack",
			mutate:  func(s *models.Submission) { s.ProgrammingStack = "GO, SQL,GO" },
			field:   "programming_stack",
			message: "programming_stack repeats option: GO",
		},
		{
			name:   "multiple stacks",
			mutate: func(s *models.Submission) { s.ProgrammingStack = "GO,RUST,PYTHON" },
		},
		{
			name:   "no certificates",
			mutate: func(s *models.Submission) { s.Certificates = nil },
			field:  "certificates",
		},
		{
			name:    "not a pdf",
			mutate:  func(s *models.Submission) { s.Certificates = []*models.UploadedFile{pdfUpload("cert.docx", "x")} },
			field:   "certificates",
			message: "Only PDF files are allowed",
		},
		{
			name:   "upper case extension",
			mutate: func(s *models.Submission) { s.Certificates = []*models.UploadedFile{pdfUpload("CERT.PDF", "x")} },
		},
		{
			name: "too large",
			mutate: func(s *models.Submission) {
				s.Certificates = []*models.UploadedFile{pdfUpload("big.pdf", strings.Repeat("x", 1<<20+1))}
			},
			field: "certificates",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			submission := validSubmission()
			tt.mutate(submission)

			err := ValidateSubmission(questions, submission)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidSubmission)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
			if tt.message != "" {
				assert.Equal(t, tt.message, verr.Message)
			}
		})
	}
}

func TestValidateSubmissionSingleFile(t *testing.T) {
	questions := seededIndex(t)
	questions[FILE_QUESTION_NAME].MultipleFiles = false

	submission := validSubmission()
	submission.Certificates = append(submission.Certificates, pdfUpload("other.pdf", "x"))

	err := ValidateSubmission(questions, submission)
	assert.ErrorIs(t, err, ErrInvalidSubmission)
}

func TestValidateSubmissionWithoutDefinitions(t *testing.T) {
	none := map[string]*models.SurveyQuestion{}

	err := ValidateSubmission(none, &models.Submission{})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "full_name", verr.Field)

	submission := validSubmission()
	submission.Certificates = nil
	err = ValidateSubmission(none, submission)
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, FILE_QUESTION_NAME, verr.Field)

	submission.Certificates = []*models.UploadedFile{pdfUpload("cert.txt", "x")}
	err = ValidateSubmission(none, submission)
	require.Error(t, err)
	assert.Equal(t, "Only PDF files are allowed", err.Error())

	// free text is accepted as is without a definition
	submission = validSubmission()
	submission.Gender = "anything"
	assert.NoError(t, ValidateSubmission(none, submission))
}
