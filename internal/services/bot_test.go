package services

import (
	"testing"
	"time"

	"survey/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestFormatSubmission(t *testing.T) {
	text := formatSubmission(&models.SurveyResponse{
		FullName:         "Doe <Jane>",
		EmailAddress:     "jane@example.com",
		Gender:           "FEMALE",
		ProgrammingStack: "GO,SQL",
		DateResponded:    time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC),
		Certificates:     []*models.Certificate{{Filename: "a.pdf"}, {Filename: "b.pdf"}},
	})

	assert.Contains(t, text, "Doe &lt;Jane&gt;")
	assert.Contains(t, text, "GO, SQL")
	assert.Contains(t, text, "<b>Certificates:</b> 2")
	assert.Contains(t, text, "2024-01-02 15:04:05 UTC")
}
