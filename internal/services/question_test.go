package services

import (
	"context"
	"testing"

	"survey/internal/datastore"
	"survey/internal/models"
	"survey/internal/seed"

	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderQuestion(t *testing.T) {
	description := "pick one"
	choice := &models.SurveyQuestion{
		Name:     "gender",
		Type:     models.QuestionChoice,
		Required: true,
		Text:     "What is your gender?",
		Options: []*models.QuestionOption{
			{Value: "MALE", Text: "Male"},
			{Value: "FEMALE", Text: "Female"},
		},
		Description: &description,
	}

	item := RenderQuestion(choice)
	assert.Equal(t, models.Yes, item.Required)
	assert.Equal(t, "pick one", item.Description)
	assert.Nil(t, item.FileProperties)
	require.NotNil(t, item.Options)
	assert.Equal(t, models.No, item.Options.Multiple)
	assert.Equal(t, []models.QuestionOptionItem{{Value: "MALE", Text: "Male"}, {Value: "FEMALE", Text: "Female"}}, item.Options.Option)

	format, size, unit := ".pdf", 1, "mb"
	file := &models.SurveyQuestion{
		Name:            "certificates",
		Type:            models.QuestionFile,
		FileFormat:      &format,
		MaxFileSize:     &size,
		MaxFileSizeUnit: &unit,
		MultipleFiles:   true,
	}

	item = RenderQuestion(file)
	assert.Equal(t, models.No, item.Required)
	assert.Equal(t, "", item.Description)
	assert.Nil(t, item.Options)
	assert.Equal(t, &models.FileProperties{Format: ".pdf", MaxFileSize: 1, MaxFileSizeUnit: "mb", Multiple: models.Yes}, item.FileProperties)

	text := RenderQuestion(&models.SurveyQuestion{Name: "full_name", Type: models.QuestionShortText})
	assert.Nil(t, text.Options)
	assert.Nil(t, text.FileProperties)
}

func TestSeedQuestionsIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	service := do.MustInvoke[*ServiceQuestion](env.container)

	questions, err := seed.Questions()
	require.NoError(t, err)
	seeded, err := service.SeedQuestions(ctx, questions)
	require.NoError(t, err)
	assert.True(t, seeded)

	again, err := seed.Questions()
	require.NoError(t, err)
	seeded, err = service.SeedQuestions(ctx, again)
	require.NoError(t, err)
	assert.False(t, seeded)

	count, err := datastore.CountSurveyQuestions(ctx, env.db)
	require.NoError(t, err)
	assert.Equal(t, 6, count)
}

func TestGetQuestionList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	service := do.MustInvoke[*ServiceQuestion](env.container)

	list, err := service.GetQuestionList(ctx)
	require.NoError(t, err)
	assert.Empty(t, list.Question)

	// seeding drops the cached empty list
	env.seed(t)

	list, err = service.GetQuestionList(ctx)
	require.NoError(t, err)
	require.Len(t, list.Question, 6)

	names := make([]string, 0, len(list.Question))
	for _, q := range list.Question {
		names = append(names, q.Name)
	}
	assert.Equal(t, []string{"full_name", "email_address", "description", "gender", "programming_stack", "certificates"}, names)

	fullName := list.Question[0]
	assert.Equal(t, "[Surname] [First Name] [Other Names]", fullName.Description)
	assert.Nil(t, fullName.Options)

	email := list.Question[1]
	assert.Equal(t, models.QuestionEmail, email.Type)
	assert.Equal(t, "", email.Description)

	stack := list.Question[4]
	require.NotNil(t, stack.Options)
	assert.Equal(t, models.Yes, stack.Options.Multiple)
	assert.Len(t, stack.Options.Option, 13)
	assert.Equal(t, "REACT", stack.Options.Option[0].Value)

	certificates := list.Question[5]
	require.NotNil(t, certificates.FileProperties)
	assert.Equal(t, ".pdf", certificates.FileProperties.Format)
	assert.Equal(t, models.Yes, certificates.FileProperties.Multiple)
}
