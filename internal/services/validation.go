package services

import (
	"fmt"
	"net/mail"
	"path"
	"strings"

	"survey/internal/models"
)

// ValidateSubmission checks a submission against the question definitions.
// Nothing is written before it passes, so it must stay free of side effects.
// A field without a definition, as on a database that was never seeded, is
// still required.
func ValidateSubmission(questions map[string]*models.SurveyQuestion, submission *models.Submission) error {
	for _, name := range []string{"full_name", "email_address", "description", "gender", "programming_stack"} {
		value, _ := submission.Field(name)
		if err := validateTextAnswer(name, questions[name], value); err != nil {
			return err
		}
	}

	return validateFiles(questions[FILE_QUESTION_NAME], submission.Certificates)
}

func validateTextAnswer(name string, q *models.SurveyQuestion, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		if q == nil || q.Required {
			return invalidSubmission(name, fmt.Sprintf("%s is required", name))
		}
		return nil
	}
	if q == nil {
		return nil
	}

	switch q.Type {
	case models.QuestionEmail:
		addr, err := mail.ParseAddress(value)
		if err != nil || addr.Address != value {
			return invalidSubmission(name, fmt.Sprintf("%s must be a valid email address", name))
		}
	case models.QuestionChoice:
		return validateChoice(name, q, value)
	}

	return nil
}

func splitChoices(value string) []string {
	parts := strings.Split(value, ",")
	choices := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			choices = append(choices, p)
		}
	}
	return choices
}

func validateChoice(name string, q *models.SurveyQuestion, value string) error {
	choices := splitChoices(value)
	if len(choices) == 0 {
		if q.Required {
			return invalidSubmission(name, fmt.Sprintf("%s is required", name))
		}
		return nil
	}

	if !q.MultipleChoice && len(choices) > 1 {
		return invalidSubmission(name, fmt.Sprintf("%s accepts a single option", name))
	}

	allowed := q.OptionValues()
	seen := make(map[string]bool, len(choices))
	for _, c := range choices {
		if !allowed[c] {
			return invalidSubmission(name, fmt.Sprintf("%s has an invalid option: %s", name, c))
		}
		if seen[c] {
			return invalidSubmission(name, fmt.Sprintf("%s repeats option: %s", name, c))
		}
		seen[c] = true
	}

	return nil
}

func formatMessage(format string) string {
	return fmt.Sprintf("Only %s files are allowed", strings.ToUpper(strings.TrimPrefix(format, ".")))
}

func validateFiles(q *models.SurveyQuestion, files []*models.UploadedFile) error {
	format := DEFAULT_FILE_FORMAT
	var maxBytes int64
	required, multiple := true, true
	if q != nil {
		if q.FileFormat != nil && *q.FileFormat != "" {
			format = strings.ToLower(*q.FileFormat)
		}
		maxBytes = q.MaxFileBytes()
		required, multiple = q.Required, q.MultipleFiles
	}

	if len(files) == 0 {
		if required {
			return invalidSubmission(FILE_QUESTION_NAME, fmt.Sprintf("%s is required", FILE_QUESTION_NAME))
		}
		return nil
	}

	if !multiple && len(files) > 1 {
		return invalidSubmission(FILE_QUESTION_NAME, fmt.Sprintf("%s accepts a single file", FILE_QUESTION_NAME))
	}

	for _, f := range files {
		if strings.ToLower(path.Ext(f.Filename)) != format {
			return invalidSubmission(FILE_QUESTION_NAME, formatMessage(format))
		}
		if maxBytes > 0 && f.Size > maxBytes {
			return invalidSubmission(FILE_QUESTION_NAME, fmt.Sprintf("%s exceeds the maximum file size", f.Filename))
		}
	}

	return nil
}

func indexQuestions(questions []*models.SurveyQuestion) map[string]*models.SurveyQuestion {
	byName := make(map[string]*models.SurveyQuestion, len(questions))
	for _, q := range questions {
		byName[q.Name] = q
	}
	return byName
}
